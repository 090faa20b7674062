package server

import (
	"encoding/json"

	"github.com/agroslabs/agros/common"
)

// HandlerFunc is the signature of daemon request handlers. It receives
// the caller's synchronized connection, the connection pool, and the raw
// JSON message body, and returns the update type of the response, the
// response payload, and any error.
type HandlerFunc func(
	conn *SyncConn,
	pool *Pool,
	body json.RawMessage,
) (
	common.UpdateType,
	any,
	error,
)
