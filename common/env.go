package common

// Environment variables honoured by both the daemon and the clients.
const (
	// SocketPathEnv overrides the unix socket path.
	SocketPathEnv = "AGROS_SOCKET_PATH"

	// TCPPortEnv overrides the TCP port used when unix sockets are
	// unavailable or disabled.
	TCPPortEnv = "AGROS_TCP_PORT"

	// ForceTCPEnv, when set to "1" or "true", makes the daemon and the
	// clients skip unix sockets entirely.
	ForceTCPEnv = "AGROS_FORCE_TCP"

	// PipeNameEnv overrides the named pipe used on Windows.
	PipeNameEnv = "AGROS_PIPE_NAME"

	// DebugEnv enables verbose daemon logging.
	DebugEnv = "AGROS_DEBUG"
)
