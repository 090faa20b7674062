package common

import "time"

// UpdateType names a daemon method. Requests carry one in their
// "method" field and responses echo the type they answer.
type UpdateType string

const (
	UPDATE_RUN      UpdateType = "run"
	UPDATE_VALIDATE UpdateType = "validate"
	UPDATE_ATTACH   UpdateType = "attach"
	UPDATE_LIST     UpdateType = "list"
	UPDATE_EVENTS   UpdateType = "events"
	UPDATE_STOP     UpdateType = "stop"
	UPDATE_FLUSH    UpdateType = "flush"
	UPDATE_VERSION  UpdateType = "version"

	// UPDATE_TICKING is pushed by the daemon to attached connections
	// while a simulation is ticking. Clients never send it.
	UPDATE_TICKING UpdateType = "ticking"
)

// RunAction discriminates the ticking updates streamed for a run.
type RunAction string

const (
	ActionProgress   RunAction = "progress"
	ActionSignal     RunAction = "signal"
	ActionComplete   RunAction = "complete"
	ActionTerminated RunAction = "terminated"
	ActionStopped    RunAction = "stopped"
	ActionFailed     RunAction = "failed"
)

const (
	// TCPHost is the loopback address used when the daemon falls back
	// from a unix socket to TCP.
	TCPHost = "127.0.0.1"

	// DefaultPort is the daemon's request port. The web bridge listens
	// on the next port up.
	DefaultPort = 4340

	// MaxMessageSize caps a single framed message on the daemon socket.
	// Event journals are paged, so nothing legitimate comes close.
	MaxMessageSize = 8 << 20
)

// DefaultDialTimeout bounds a single connection attempt to the daemon.
const DefaultDialTimeout = 2 * time.Second
