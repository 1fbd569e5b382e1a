package ble

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"strings"

	"github.com/pkg/errors"

	"github.com/ComputeCycles/Bluetooth/sliceops"
)

// A UUID is a BLE UUID, stored in little-endian wire order.
// Valid lengths are 2 (16-bit) and 16 (128-bit) bytes.
type UUID []byte

// UUID16 converts a uint16 (such as 0x1800) to a UUID.
func UUID16(i uint16) UUID {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, i)
	return UUID(b)
}

// Parse parses a standard-format UUID string, such
// as "1800" or "34DA3AD1-7110-41A1-B1EF-4430F509CDE7".
func Parse(s string) (UUID, error) {
	s = strings.Replace(s, "-", "", -1)
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Wrap(err, "can't parse uuid string")
	}
	if err := lenErr(len(b)); err != nil {
		return nil, err
	}
	return UUID(Reverse(b)), nil
}

// MustParse parses a standard-format UUID string,
// like Parse, but panics in case of error.
func MustParse(s string) UUID {
	u, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return u
}

func lenErr(n int) error {
	switch n {
	case 2, 16:
		return nil
	}
	return errors.Errorf("uuids must have length of 2 or 16 bytes, got %d", n)
}

// Len returns the length of the UUID in bytes.
func (u UUID) Len() int {
	return len(u)
}

// Uint16 returns the numeric value of a 16-bit UUID, or 0 for other widths.
func (u UUID) Uint16() uint16 {
	if len(u) != 2 {
		return 0
	}
	return binary.LittleEndian.Uint16(u)
}

// String hex-encodes a UUID in its big-endian display form.
func (u UUID) String() string {
	return hex.EncodeToString(Reverse(u))
}

// Equal returns a boolean reporting whether v represents the same UUID as u.
func (u UUID) Equal(v UUID) bool {
	return bytes.Equal(u, v)
}

// Contains returns a boolean reporting whether u is in the slice s.
// A nil slice acts as a wildcard and matches any UUID.
func Contains(s []UUID, u UUID) bool {
	if s == nil {
		return true
	}
	for _, a := range s {
		if a.Equal(u) {
			return true
		}
	}
	return false
}

// Reverse returns a reversed copy of u, converting between the wire order
// and the display order.
func Reverse(u []byte) []byte {
	if len(u) == 2 {
		return []byte{u[1], u[0]}
	}
	return sliceops.SwapBuf(u)
}
