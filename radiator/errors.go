package radiator

import (
	"encoding/hex"
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredentials means the server rejected the login. Not
	// retryable: the credentials will not get better on their own.
	ErrInvalidCredentials = errors.New("radiator: invalid credentials")

	// ErrReaderGone means the connection died between writing a command
	// and receiving its response. The command may or may not have been
	// processed; callers retry at their own discretion.
	ErrReaderGone = errors.New("radiator: connection lost while awaiting response")

	// ErrClientClosed means the client was shut down.
	ErrClientClosed = errors.New("radiator: client closed")
)

// UnexpectedLoginResponseError carries the raw bytes the server sent
// instead of LOGGEDIN or BADLOGIN, for diagnosis against whatever is
// actually listening on the management port.
type UnexpectedLoginResponseError struct {
	Response []byte
}

func (e *UnexpectedLoginResponseError) Error() string {
	return fmt.Sprintf("radiator: unexpected login response (%d bytes)", len(e.Response))
}

// Dump renders the response as a hex dump for logging.
func (e *UnexpectedLoginResponseError) Dump() string {
	return hex.Dump(e.Response)
}
