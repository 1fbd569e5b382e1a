package ble

// Property is the characteristic property bitmask [Vol 3, Part G, 3.3.1.1].
type Property int

const (
	CharBroadcast   Property = 0x01 // may be broadcast
	CharRead        Property = 0x02 // may be read
	CharWriteNR     Property = 0x04 // may be written, with no reply
	CharWrite       Property = 0x08 // may be written, with a reply
	CharNotify      Property = 0x10 // supports notifications
	CharIndicate    Property = 0x20 // supports indications
	CharSignedWrite Property = 0x40 // supports signed write
	CharExtended    Property = 0x80 // supports extended properties
)

// A Profile is the discovered attribute hierarchy of a remote server:
// services, their characteristics, and their descriptors.
type Profile struct {
	Services []*Service
}

// A Service is a discovered GATT service with its declaration handle range.
type Service struct {
	UUID            UUID
	Primary         bool
	Handle          uint16
	EndHandle       uint16
	Characteristics []*Characteristic
}

// A Characteristic is a discovered GATT characteristic.
//
// Handle is the declaration handle; ValueHandle points at the attribute
// carrying the value. EndHandle is one below the next characteristic's
// declaration, or the enclosing service's end handle for the last one.
type Characteristic struct {
	UUID        UUID
	Property    Property
	Handle      uint16
	ValueHandle uint16
	EndHandle   uint16
	Descriptors []*Descriptor
	CCCD        *Descriptor
}

// A Descriptor is a discovered GATT descriptor.
type Descriptor struct {
	UUID   UUID
	Handle uint16
}

// FindService returns the service with the given UUID, or nil.
func (p *Profile) FindService(u UUID) *Service {
	for _, s := range p.Services {
		if s.UUID.Equal(u) {
			return s
		}
	}
	return nil
}

// FindCharacteristic returns the first characteristic with the given UUID
// across all services, or nil.
func (p *Profile) FindCharacteristic(u UUID) *Characteristic {
	for _, s := range p.Services {
		for _, c := range s.Characteristics {
			if c.UUID.Equal(u) {
				return c
			}
		}
	}
	return nil
}

// FindDescriptor returns the first descriptor with the given UUID across all
// characteristics, or nil.
func (p *Profile) FindDescriptor(u UUID) *Descriptor {
	for _, s := range p.Services {
		for _, c := range s.Characteristics {
			for _, d := range c.Descriptors {
				if d.UUID.Equal(u) {
					return d
				}
			}
		}
	}
	return nil
}

// FindServiceWithHandle returns the service whose handle range contains h,
// or nil. Parent pointers are not stored; the enclosing service of a
// characteristic is recovered through this lookup.
func (p *Profile) FindServiceWithHandle(h uint16) *Service {
	for _, s := range p.Services {
		if s.Handle <= h && h <= s.EndHandle {
			return s
		}
	}
	return nil
}

// FindCharacteristicWithValueHandle returns the characteristic whose value
// handle is h, or nil.
func (p *Profile) FindCharacteristicWithValueHandle(h uint16) *Characteristic {
	for _, s := range p.Services {
		for _, c := range s.Characteristics {
			if c.ValueHandle == h {
				return c
			}
		}
	}
	return nil
}
