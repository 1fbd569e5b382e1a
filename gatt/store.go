package gatt

import (
	ble "github.com/ComputeCycles/Bluetooth"
)

// profileStore is the client's local view of the remote attribute hierarchy:
// services keyed by UUID, each holding characteristics keyed by UUID, each
// holding descriptors keyed by UUID. Entries are created or refreshed only by
// completed discovery procedures.
//
// A complete-set insert (a discovery that scanned the full range) evicts
// entries whose UUIDs are absent from the new list. A partial insert (by-UUID
// discovery) only upserts and never evicts unrelated entries.
type profileStore struct {
	svcs []*ble.Service
}

func newProfileStore() *profileStore {
	return &profileStore{}
}

func (s *profileStore) profile() *ble.Profile {
	return &ble.Profile{Services: s.svcs}
}

// setProfile replaces the whole store, typically with a profile loaded from a
// persistent cache, and re-links each characteristic's CCCD pointer.
func (s *profileStore) setProfile(p ble.Profile) {
	s.svcs = p.Services
	for _, svc := range s.svcs {
		for _, c := range svc.Characteristics {
			c.CCCD = nil
			for _, d := range c.Descriptors {
				if d.UUID.Equal(ble.ClientCharacteristicConfigUUID) {
					c.CCCD = d
				}
			}
		}
	}
}

func (s *profileStore) findService(u ble.UUID) *ble.Service {
	for _, svc := range s.svcs {
		if svc.UUID.Equal(u) {
			return svc
		}
	}
	return nil
}

// serviceWithHandle returns the service whose handle range contains h.
func (s *profileStore) serviceWithHandle(h uint16) *ble.Service {
	for _, svc := range s.svcs {
		if svc.Handle <= h && h <= svc.EndHandle {
			return svc
		}
	}
	return nil
}

// upsertServices folds a discovery result into the store. Existing entries
// with an unchanged handle range keep their characteristics; entries whose
// range moved are refreshed and drop stale children.
func (s *profileStore) upsertServices(found []*ble.Service, completeSet bool) []*ble.Service {
	merged := make([]*ble.Service, 0, len(found))
	for _, f := range found {
		merged = append(merged, s.mergeService(f))
	}
	if completeSet {
		s.svcs = merged
		return merged
	}
	for _, m := range merged {
		if s.findService(m.UUID) == nil {
			s.svcs = append(s.svcs, m)
		}
	}
	return merged
}

func (s *profileStore) mergeService(f *ble.Service) *ble.Service {
	old := s.findService(f.UUID)
	if old == nil {
		return f
	}
	if old.Handle == f.Handle && old.EndHandle == f.EndHandle {
		return old
	}
	*old = *f
	return old
}

// upsertCharacteristics folds discovered characteristics into a service.
func (s *profileStore) upsertCharacteristics(svc *ble.Service, found []*ble.Characteristic, completeSet bool) []*ble.Characteristic {
	merged := make([]*ble.Characteristic, 0, len(found))
	for _, f := range found {
		merged = append(merged, mergeCharacteristic(svc, f))
	}
	if completeSet {
		svc.Characteristics = merged
		return merged
	}
	for _, m := range merged {
		if findCharacteristic(svc, m.UUID) == nil {
			svc.Characteristics = append(svc.Characteristics, m)
		}
	}
	return merged
}

func mergeCharacteristic(svc *ble.Service, f *ble.Characteristic) *ble.Characteristic {
	old := findCharacteristic(svc, f.UUID)
	if old == nil {
		return f
	}
	if old.Handle == f.Handle && old.ValueHandle == f.ValueHandle {
		old.Property = f.Property
		old.EndHandle = f.EndHandle
		return old
	}
	*old = *f
	return old
}

func findCharacteristic(svc *ble.Service, u ble.UUID) *ble.Characteristic {
	for _, c := range svc.Characteristics {
		if c.UUID.Equal(u) {
			return c
		}
	}
	return nil
}

// upsertDescriptors folds discovered descriptors into a characteristic and
// re-links the CCCD pointer.
func (s *profileStore) upsertDescriptors(c *ble.Characteristic, found []*ble.Descriptor, completeSet bool) []*ble.Descriptor {
	merged := make([]*ble.Descriptor, 0, len(found))
	for _, f := range found {
		merged = append(merged, mergeDescriptor(c, f))
	}
	if completeSet {
		c.Descriptors = merged
	} else {
		for _, m := range merged {
			if findDescriptor(c, m.UUID) == nil {
				c.Descriptors = append(c.Descriptors, m)
			}
		}
	}
	c.CCCD = nil
	for _, d := range c.Descriptors {
		if d.UUID.Equal(ble.ClientCharacteristicConfigUUID) {
			c.CCCD = d
		}
	}
	return merged
}

func mergeDescriptor(c *ble.Characteristic, f *ble.Descriptor) *ble.Descriptor {
	old := findDescriptor(c, f.UUID)
	if old == nil {
		return f
	}
	old.Handle = f.Handle
	return old
}

func findDescriptor(c *ble.Characteristic, u ble.UUID) *ble.Descriptor {
	for _, d := range c.Descriptors {
		if d.UUID.Equal(u) {
			return d
		}
	}
	return nil
}

// endHandleOf returns the last handle belonging to c: one below the next
// characteristic's declaration within the enclosing service, or the service
// end handle when c is the last one. This is the upper bound for descriptor
// discovery.
func (s *profileStore) endHandleOf(c *ble.Characteristic) uint16 {
	svc := s.serviceWithHandle(c.Handle)
	if svc == nil {
		return c.EndHandle
	}
	end := svc.EndHandle
	for _, cc := range svc.Characteristics {
		if cc.Handle > c.Handle && cc.Handle-1 < end {
			end = cc.Handle - 1
		}
	}
	return end
}
