package server

// ErrorType represents the severity of an asynchronous run error.
type ErrorType int

const (
	// ErrorTypeCritical indicates a failure that ended the run.
	ErrorTypeCritical ErrorType = iota
	// ErrorTypeWarning indicates a problem the run survived.
	ErrorTypeWarning
)

// Error is a run error kept in the pool so clients that poll or attach
// later still see what went wrong. It implements the error interface.
type Error struct {
	Type    ErrorType `json:"error_type"`
	Message string    `json:"message"`
}

// Error returns the message, implementing the error interface.
func (e *Error) Error() string {
	return e.Message
}
