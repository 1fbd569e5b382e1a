package att

import (
	"fmt"

	"github.com/pkg/errors"

	ble "github.com/ComputeCycles/Bluetooth"
)

// Error is a wire Error Response surfaced to callers: the request opcode the
// server rejected, the attribute handle in error, and the verbatim code.
type Error struct {
	Request byte
	Handle  uint16
	Code    ble.AttError
}

func newError(rsp ErrorResponse) *Error {
	return &Error{
		Request: rsp.RequestOpcodeInError(),
		Handle:  rsp.AttributeInError(),
		Code:    ble.AttError(rsp.ErrorCode()),
	}
}

func (e *Error) Error() string {
	return fmt.Sprintf("att: request 0x%02X on handle 0x%04X: %s", e.Request, e.Handle, e.Code.Error())
}

// IsError reports whether err is a wire Error Response carrying the given code.
func IsError(err error, code ble.AttError) bool {
	e, ok := errors.Cause(err).(*Error)
	return ok && e.Code == code
}
