package att

import (
	ble "github.com/ComputeCycles/Bluetooth"
)

// Validate checks that b is a well-formed ATT PDU: known opcode, exact length
// for fixed-layout PDUs, minimum length plus stride alignment for list-shaped
// PDUs. It returns ble.ErrMalformed otherwise.
//
// Fragmentation is not handled here; the transport delivers whole PDUs.
func Validate(b []byte) error {
	if len(b) == 0 {
		return ble.ErrMalformed
	}
	switch b[0] {
	case ErrorResponseCode:
		return exactly(b, 5)
	case ExchangeMTURequestCode, ExchangeMTUResponseCode:
		return exactly(b, 3)
	case FindInformationRequestCode:
		return exactly(b, 5)
	case FindInformationResponseCode:
		if len(b) < 2 {
			return ble.ErrMalformed
		}
		var stride int
		switch b[1] {
		case FindInformationFormatUUID16:
			stride = 2 + 2
		case FindInformationFormatUUID128:
			stride = 2 + 16
		default:
			return ble.ErrMalformed
		}
		return list(b, 2, stride)
	case FindByTypeValueRequestCode:
		return atLeast(b, 7)
	case FindByTypeValueResponseCode:
		return list(b, 1, 4)
	case ReadByTypeRequestCode, ReadByGroupTypeRequestCode:
		// The attribute type is a 16- or 128-bit UUID; 32-bit is not allowed.
		if len(b) != 5+2 && len(b) != 5+16 {
			return ble.ErrMalformed
		}
		return nil
	case ReadByTypeResponseCode:
		if len(b) < 2 || int(b[1]) < 2 {
			return ble.ErrMalformed
		}
		return list(b, 2, int(b[1]))
	case ReadByGroupTypeResponseCode:
		if len(b) < 2 || int(b[1]) < 4 {
			return ble.ErrMalformed
		}
		return list(b, 2, int(b[1]))
	case ReadRequestCode:
		return exactly(b, 3)
	case ReadBlobRequestCode:
		return exactly(b, 5)
	case ReadResponseCode, ReadBlobResponseCode, ReadMultipleResponseCode:
		return nil // opcode plus any tail, including an empty one
	case ReadMultipleRequestCode:
		// At least two handles, whole handles only.
		if len(b) < 1+4 || (len(b)-1)%2 != 0 {
			return ble.ErrMalformed
		}
		return nil
	case WriteRequestCode, WriteCommandCode:
		return atLeast(b, 3)
	case WriteResponseCode:
		return exactly(b, 1)
	case SignedWriteCommandCode:
		return atLeast(b, 1+2+12)
	case PrepareWriteRequestCode, PrepareWriteResponseCode:
		return atLeast(b, 5)
	case ExecuteWriteRequestCode:
		return exactly(b, 2)
	case ExecuteWriteResponseCode, HandleValueConfirmationCode:
		return exactly(b, 1)
	case HandleValueNotificationCode, HandleValueIndicationCode:
		return atLeast(b, 3)
	}
	return ble.ErrMalformed
}

func exactly(b []byte, n int) error {
	if len(b) != n {
		return ble.ErrMalformed
	}
	return nil
}

func atLeast(b []byte, n int) error {
	if len(b) < n {
		return ble.ErrMalformed
	}
	return nil
}

// list checks a PDU whose tail, starting at off, is one or more records of
// the given stride.
func list(b []byte, off, stride int) error {
	tail := len(b) - off
	if tail < stride || tail%stride != 0 {
		return ble.ErrMalformed
	}
	return nil
}
