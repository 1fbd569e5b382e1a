package cache

import (
	"os"
	"reflect"
	"testing"

	ble "github.com/ComputeCycles/Bluetooth"
)

func testProfile() ble.Profile {
	return ble.Profile{
		Services: []*ble.Service{
			{
				UUID:      ble.MustParse("180d"),
				Primary:   true,
				Handle:    0x0001,
				EndHandle: 0x0005,
				Characteristics: []*ble.Characteristic{
					{
						UUID:        ble.MustParse("2a37"),
						Property:    ble.CharNotify,
						Handle:      0x0002,
						ValueHandle: 0x0003,
						EndHandle:   0x0005,
						Descriptors: []*ble.Descriptor{
							{UUID: ble.UUID16(0x2902), Handle: 0x0004},
						},
					},
				},
			},
		},
	}
}

func TestStoreLoad(t *testing.T) {
	defer os.Remove("./test.cache")

	p := testProfile()
	c := New("./test.cache")
	if err := c.Store(ble.NewAddr("12:34:56:78:90:ab"), p, false); err != nil {
		t.Fatalf("expected nil error but got %s instead", err)
	}

	loaded, err := c.Load(ble.NewAddr("12:34:56:78:90:ab"))
	if err != nil {
		t.Fatalf("expected to find mac in cache but did not: %s", err)
	}
	if !reflect.DeepEqual(p, loaded) {
		t.Fatalf("stored and loaded profiles are not equal")
	}
}

func TestStoreNoReplace(t *testing.T) {
	defer os.Remove("./test.cache")

	c := New("./test.cache")
	a := ble.NewAddr("12:34:56:78:90:ab")
	if err := c.Store(a, testProfile(), false); err != nil {
		t.Fatal(err)
	}
	if err := c.Store(a, ble.Profile{}, false); err == nil {
		t.Fatal("expected an error storing a duplicate without replace")
	}
	if err := c.Store(a, ble.Profile{}, true); err != nil {
		t.Fatalf("replace store failed: %s", err)
	}
}

func TestLoadMissing(t *testing.T) {
	defer os.Remove("./test.cache")

	c := New("./test.cache")
	if _, err := c.Load(ble.NewAddr("aa:bb:cc:dd:ee:ff")); err == nil {
		t.Fatal("expected an error loading a missing entry")
	}
}

func TestClear(t *testing.T) {
	c := New("./test.cache")
	if err := c.Store(ble.NewAddr("12:34:56:78:90:ab"), testProfile(), false); err != nil {
		t.Fatal(err)
	}
	if err := c.Clear(); err != nil {
		t.Fatalf("clear failed: %s", err)
	}
	if _, err := os.Stat("./test.cache"); !os.IsNotExist(err) {
		t.Fatal("cache file still present after clear")
	}
	// Clearing an already-absent cache is not an error.
	if err := c.Clear(); err != nil {
		t.Fatalf("second clear failed: %s", err)
	}
}
