package errors

import "fmt"

var (
	ErrWorkerPanic     = fmt.Errorf("worker panic")
	ErrNameConflict    = fmt.Errorf("name already in use")
	ErrNameInvalid     = fmt.Errorf("name is empty or malformed")
	ErrMalformedDirect = fmt.Errorf("direct message has no body")
	ErrTargetNotFound  = fmt.Errorf("target user not found")
	ErrSendFailed      = fmt.Errorf("send to peer failed")
	ErrLineTooLong     = fmt.Errorf("line exceeds maximum length")
	ErrSessionClosed   = fmt.Errorf("session already closed")
)
