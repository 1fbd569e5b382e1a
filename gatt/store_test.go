package gatt

import (
	"testing"

	ble "github.com/ComputeCycles/Bluetooth"
)

func svc(u uint16, start, end uint16) *ble.Service {
	return &ble.Service{UUID: ble.UUID16(u), Primary: true, Handle: start, EndHandle: end}
}

func uuids(svcs []*ble.Service) map[string]bool {
	out := make(map[string]bool, len(svcs))
	for _, s := range svcs {
		out[s.UUID.String()] = true
	}
	return out
}

func TestCompleteSetEvictsAbsentees(t *testing.T) {
	s := newProfileStore()
	s.upsertServices([]*ble.Service{svc(0x1800, 1, 5), svc(0x1801, 6, 10)}, true)
	s.upsertServices([]*ble.Service{svc(0x1801, 6, 10), svc(0x180D, 11, 20)}, true)

	got := uuids(s.svcs)
	if len(got) != 2 || !got["1801"] || !got["180d"] {
		t.Fatalf("services after complete-set insert: %v", got)
	}
}

func TestPartialInsertNeverEvicts(t *testing.T) {
	s := newProfileStore()
	s.upsertServices([]*ble.Service{svc(0x1800, 1, 5), svc(0x1801, 6, 10)}, true)
	s.upsertServices([]*ble.Service{svc(0x180D, 11, 20)}, false)

	got := uuids(s.svcs)
	if len(got) != 3 || !got["1800"] || !got["1801"] || !got["180d"] {
		t.Fatalf("services after partial insert: %v", got)
	}
}

func TestRediscoveryKeepsChildrenWhenRangeUnchanged(t *testing.T) {
	s := newProfileStore()
	s.upsertServices([]*ble.Service{svc(0x1800, 1, 5)}, true)
	s.upsertCharacteristics(s.svcs[0], []*ble.Characteristic{
		{UUID: ble.UUID16(0x2A00), Handle: 2, ValueHandle: 3, EndHandle: 5},
	}, true)

	s.upsertServices([]*ble.Service{svc(0x1800, 1, 5)}, true)
	if len(s.svcs[0].Characteristics) != 1 {
		t.Fatal("unchanged service lost its characteristics on rediscovery")
	}

	// A moved handle range invalidates the children.
	s.upsertServices([]*ble.Service{svc(0x1800, 1, 8)}, true)
	if len(s.svcs[0].Characteristics) != 0 {
		t.Fatal("stale characteristics survived a range change")
	}
}

func TestUpsertDescriptorsLinksCCCD(t *testing.T) {
	s := newProfileStore()
	c := &ble.Characteristic{UUID: ble.UUID16(0x2A37), Handle: 2, ValueHandle: 3, EndHandle: 5}

	s.upsertDescriptors(c, []*ble.Descriptor{
		{UUID: ble.UUID16(0x2901), Handle: 5},
	}, true)
	if c.CCCD != nil {
		t.Fatal("cccd linked without a 2902 descriptor")
	}

	s.upsertDescriptors(c, []*ble.Descriptor{
		{UUID: ble.UUID16(0x2901), Handle: 5},
		{UUID: ble.UUID16(0x2902), Handle: 4},
	}, true)
	if c.CCCD == nil || c.CCCD.Handle != 4 {
		t.Fatalf("cccd not linked: %+v", c.CCCD)
	}
}

func TestEndHandleOf(t *testing.T) {
	s := newProfileStore()
	s.upsertServices([]*ble.Service{svc(0x180D, 1, 10)}, true)
	first := &ble.Characteristic{UUID: ble.UUID16(0x2A37), Handle: 2, ValueHandle: 3, EndHandle: 10}
	second := &ble.Characteristic{UUID: ble.UUID16(0x2A38), Handle: 6, ValueHandle: 7, EndHandle: 10}
	s.upsertCharacteristics(s.svcs[0], []*ble.Characteristic{first, second}, true)

	if got := s.endHandleOf(first); got != 5 {
		t.Fatalf("end handle of first = %d, want 5", got)
	}
	if got := s.endHandleOf(second); got != 10 {
		t.Fatalf("end handle of second = %d, want 10", got)
	}
}

func TestSetProfileRelinksCCCD(t *testing.T) {
	s := newProfileStore()
	p := ble.Profile{
		Services: []*ble.Service{{
			UUID: ble.UUID16(0x180D), Handle: 1, EndHandle: 5,
			Characteristics: []*ble.Characteristic{{
				UUID: ble.UUID16(0x2A37), Handle: 2, ValueHandle: 3, EndHandle: 5,
				Descriptors: []*ble.Descriptor{{UUID: ble.UUID16(0x2902), Handle: 4}},
			}},
		}},
	}
	s.setProfile(p)

	c := s.svcs[0].Characteristics[0]
	if c.CCCD == nil || c.CCCD != c.Descriptors[0] {
		t.Fatal("cccd not re-linked after profile load")
	}
}
