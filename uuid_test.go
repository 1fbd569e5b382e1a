package ble

import (
	"bytes"
	"testing"
)

func TestParse(t *testing.T) {
	u, err := Parse("1800")
	if err != nil {
		t.Fatal(err)
	}
	if !u.Equal(UUID16(0x1800)) {
		t.Fatalf("parsed [% X]", []byte(u))
	}

	long, err := Parse("34DA3AD1-7110-41A1-B1EF-4430F509CDE7")
	if err != nil {
		t.Fatal(err)
	}
	if long.Len() != 16 {
		t.Fatalf("parsed length %d", long.Len())
	}
	if long.String() != "34da3ad1711041a1b1ef4430f509cde7" {
		t.Fatalf("string form %q", long.String())
	}

	for _, bad := range []string{"18", "180", "123456", "xyzw"} {
		if _, err := Parse(bad); err == nil {
			t.Errorf("parsed invalid uuid %q", bad)
		}
	}
}

func TestReverse(t *testing.T) {
	if !bytes.Equal(Reverse([]byte{0x00, 0x18}), []byte{0x18, 0x00}) {
		t.Fatal("16-bit reverse wrong")
	}
	in := []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}
	got := Reverse(in)
	for i := range in {
		if got[i] != in[len(in)-1-i] {
			t.Fatalf("reverse [% X]", got)
		}
	}
	if &in[0] == &got[0] {
		t.Fatal("reverse mutated its input")
	}
}

func TestContains(t *testing.T) {
	set := []UUID{UUID16(0x1800), UUID16(0x180D)}
	if !Contains(set, UUID16(0x180D)) {
		t.Fatal("member not found")
	}
	if Contains(set, UUID16(0x1801)) {
		t.Fatal("non-member found")
	}
	if !Contains(nil, UUID16(0x1801)) {
		t.Fatal("nil filter must match anything")
	}
}

func TestUint16(t *testing.T) {
	if UUID16(0x2800).Uint16() != 0x2800 {
		t.Fatal("uint16 round trip failed")
	}
	if MustParse("34DA3AD1-7110-41A1-B1EF-4430F509CDE7").Uint16() != 0 {
		t.Fatal("128-bit uuid must not have a 16-bit value")
	}
}
