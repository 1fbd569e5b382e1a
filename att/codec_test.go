package att

import (
	"bytes"
	"testing"

	ble "github.com/ComputeCycles/Bluetooth"
)

func TestValidateFixedLengths(t *testing.T) {
	cases := []struct {
		name string
		pdu  []byte
		n    int
	}{
		{"error rsp", []byte{ErrorResponseCode}, 5},
		{"mtu req", []byte{ExchangeMTURequestCode}, 3},
		{"mtu rsp", []byte{ExchangeMTUResponseCode}, 3},
		{"find info req", []byte{FindInformationRequestCode}, 5},
		{"read req", []byte{ReadRequestCode}, 3},
		{"read blob req", []byte{ReadBlobRequestCode}, 5},
		{"write rsp", []byte{WriteResponseCode}, 1},
		{"exec write req", []byte{ExecuteWriteRequestCode}, 2},
		{"exec write rsp", []byte{ExecuteWriteResponseCode}, 1},
		{"confirmation", []byte{HandleValueConfirmationCode}, 1},
	}
	for _, c := range cases {
		good := make([]byte, c.n)
		good[0] = c.pdu[0]
		if err := Validate(good); err != nil {
			t.Errorf("%s: valid length %d rejected: %v", c.name, c.n, err)
		}
		long := make([]byte, c.n+1)
		long[0] = c.pdu[0]
		if err := Validate(long); err != ble.ErrMalformed {
			t.Errorf("%s: length %d accepted", c.name, c.n+1)
		}
		if c.n > 1 {
			short := make([]byte, c.n-1)
			short[0] = c.pdu[0]
			if err := Validate(short); err != ble.ErrMalformed {
				t.Errorf("%s: length %d accepted", c.name, c.n-1)
			}
		}
	}
}

func TestValidateStrides(t *testing.T) {
	cases := []struct {
		name string
		pdu  []byte
		ok   bool
	}{
		{"find info 16-bit single", []byte{0x05, 0x01, 0x04, 0x00, 0x02, 0x29}, true},
		{"find info 16-bit ragged", []byte{0x05, 0x01, 0x04, 0x00, 0x02}, false},
		{"find info empty list", []byte{0x05, 0x01}, false},
		{"find info bad format", []byte{0x05, 0x03, 0x04, 0x00, 0x02, 0x29}, false},
		{"find info 128-bit short", append([]byte{0x05, 0x02}, make([]byte, 17)...), false},
		{"find info 128-bit single", append([]byte{0x05, 0x02}, make([]byte, 18)...), true},

		{"find by type value rsp single", []byte{0x07, 0x01, 0x00, 0x05, 0x00}, true},
		{"find by type value rsp ragged", []byte{0x07, 0x01, 0x00, 0x05}, false},

		{"read by type rsp", []byte{0x09, 0x03, 0x03, 0x00, 0x64}, true},
		{"read by type rsp ragged", []byte{0x09, 0x03, 0x03, 0x00, 0x64, 0x65}, false},
		{"read by type rsp len<2", []byte{0x09, 0x01, 0x03}, false},

		{"read by group rsp", []byte{0x11, 0x06, 0x01, 0x00, 0x05, 0x00, 0x00, 0x18}, true},
		{"read by group rsp ragged", []byte{0x11, 0x06, 0x01, 0x00, 0x05, 0x00, 0x00}, false},
		{"read by group rsp len<4", []byte{0x11, 0x03, 0x01, 0x00, 0x05}, false},

		{"read by type req 16-bit", []byte{0x08, 0x01, 0x00, 0xFF, 0xFF, 0x03, 0x28}, true},
		{"read by type req 32-bit", append([]byte{0x08, 0x01, 0x00, 0xFF, 0xFF}, make([]byte, 4)...), false},
		{"read by type req 128-bit", append([]byte{0x08, 0x01, 0x00, 0xFF, 0xFF}, make([]byte, 16)...), true},

		{"read multiple req two handles", []byte{0x0E, 0x02, 0x00, 0x03, 0x00}, true},
		{"read multiple req one handle", []byte{0x0E, 0x02, 0x00}, false},
		{"read multiple req half handle", []byte{0x0E, 0x02, 0x00, 0x03, 0x00, 0x04}, false},

		{"signed write minimum", append([]byte{0xD2, 0x05, 0x00}, make([]byte, 12)...), true},
		{"signed write too short", append([]byte{0xD2, 0x05, 0x00}, make([]byte, 11)...), false},

		{"read rsp empty value", []byte{0x0B}, true},
		{"notification truncated handle", []byte{0x1B, 0x05}, false},

		{"unknown opcode", []byte{0x55, 0x00}, false},
		{"empty pdu", []byte{}, false},
	}
	for _, c := range cases {
		err := Validate(c.pdu)
		if c.ok && err != nil {
			t.Errorf("%s: rejected: %v", c.name, err)
		}
		if !c.ok && err != ble.ErrMalformed {
			t.Errorf("%s: accepted [% X]", c.name, c.pdu)
		}
	}
}

func TestOpcodeBits(t *testing.T) {
	if Method(WriteCommandCode) != WriteRequestCode {
		t.Errorf("write command method = 0x%02X, want 0x%02X", Method(WriteCommandCode), WriteRequestCode)
	}
	if !IsCommand(WriteCommandCode) || IsSigned(WriteCommandCode) {
		t.Error("write command flag bits wrong")
	}
	if !IsCommand(SignedWriteCommandCode) || !IsSigned(SignedWriteCommandCode) {
		t.Error("signed write command flag bits wrong")
	}
	if IsCommand(ReadRequestCode) || IsSigned(ReadRequestCode) {
		t.Error("read request flag bits wrong")
	}
}

func TestErrorResponseFields(t *testing.T) {
	rsp := ErrorResponse([]byte{0x01, 0x10, 0x0B, 0x00, 0x0A})
	if rsp.RequestOpcodeInError() != ReadByGroupTypeRequestCode {
		t.Errorf("request opcode = 0x%02X", rsp.RequestOpcodeInError())
	}
	if rsp.AttributeInError() != 0x000B {
		t.Errorf("handle = 0x%04X", rsp.AttributeInError())
	}
	if ble.AttError(rsp.ErrorCode()) != ble.ErrAttrNotFound {
		t.Errorf("code = 0x%02X", rsp.ErrorCode())
	}
}

func TestSignedWriteCommandLayout(t *testing.T) {
	value := []byte{0xAA, 0xBB, 0xCC}
	var sig [12]byte
	for i := range sig {
		sig[i] = byte(i)
	}
	cmd := SignedWriteCommand(make([]byte, 3+len(value)+12))
	cmd.SetAttributeOpcode()
	cmd.SetAttributeHandle(0x0042)
	cmd.SetAttributeValue(value)
	cmd.SetAuthenticationSignature(sig)

	if cmd.AttributeHandle() != 0x0042 {
		t.Errorf("handle = 0x%04X", cmd.AttributeHandle())
	}
	if !bytes.Equal(cmd.AttributeValue(), value) {
		t.Errorf("value = [% X]", cmd.AttributeValue())
	}
	if cmd.AuthenticationSignature() != sig {
		t.Errorf("signature = [% X]", cmd.AuthenticationSignature())
	}
}

func TestReadMultipleRequestLayout(t *testing.T) {
	req := ReadMultipleRequest(make([]byte, 1+2*3))
	req.SetAttributeOpcode()
	for i, h := range []uint16{0x0002, 0x0003, 0x0010} {
		req.SetHandle(i, h)
	}
	want := []byte{0x0E, 0x02, 0x00, 0x03, 0x00, 0x10, 0x00}
	if !bytes.Equal(req, want) {
		t.Errorf("encoded [% X], want [% X]", []byte(req), want)
	}
}

func TestFindByTypeValueRequestLayout(t *testing.T) {
	uuid := []byte{0x00, 0x18} // 0x1800, little-endian
	req := FindByTypeValueRequest(make([]byte, 7+len(uuid)))
	req.SetAttributeOpcode()
	req.SetStartingHandle(0x0001)
	req.SetEndingHandle(0xFFFF)
	req.SetAttributeType(0x2800)
	req.SetAttributeValue(uuid)

	want := []byte{0x06, 0x01, 0x00, 0xFF, 0xFF, 0x00, 0x28, 0x00, 0x18}
	if !bytes.Equal(req, want) {
		t.Errorf("encoded [% X], want [% X]", []byte(req), want)
	}
	if err := Validate(req); err != nil {
		t.Errorf("own request rejected: %v", err)
	}
}
