package ble

// NotificationHandler handles notification or indication values from the
// server. The argument is the raw attribute value.
type NotificationHandler func(req []byte)

// A Client is a GATT client.
type Client interface {
	// Address is the platform specific unique ID of the remote peripheral.
	Address() Addr

	// Profile returns the discovered profile.
	Profile() *Profile

	// DiscoverProfile discovers the whole hierarchy of a server.
	// If force is false and a persistent cache holds a profile for the peer,
	// the cached profile is returned without touching the air.
	DiscoverProfile(force bool) (*Profile, error)

	// DiscoverServices discovers all the primary services on a server, or the
	// subset matching filter if it is non-nil. [Vol 3, Part G, 4.4.1]
	DiscoverServices(filter []UUID) ([]*Service, error)

	// DiscoverServicesByUUID discovers the primary services with the given
	// UUID using the Find By Type Value procedure. [Vol 3, Part G, 4.4.2]
	DiscoverServicesByUUID(u UUID) ([]*Service, error)

	// DiscoverCharacteristics discovers the characteristics of a service, or
	// the subset matching filter if it is non-nil. [Vol 3, Part G, 4.6.1]
	DiscoverCharacteristics(filter []UUID, s *Service) ([]*Characteristic, error)

	// DiscoverDescriptors discovers the descriptors of a characteristic, or
	// the subset matching filter if it is non-nil. [Vol 3, Part G, 4.7.1]
	DiscoverDescriptors(filter []UUID, c *Characteristic) ([]*Descriptor, error)

	// ReadCharacteristic reads a characteristic value, escalating to the blob
	// procedure if the first response fills the MTU. [Vol 3, Part G, 4.8.1]
	ReadCharacteristic(c *Characteristic) ([]byte, error)

	// ReadLongCharacteristic reads a characteristic value longer than one MTU.
	// [Vol 3, Part G, 4.8.3]
	ReadLongCharacteristic(c *Characteristic) ([]byte, error)

	// ReadByUUID reads the values of all characteristics with the given UUID
	// inside the handle range, returning handle/value pairs. [Vol 3, Part G, 4.8.2]
	ReadByUUID(u UUID, start, end uint16) ([]HandleValue, error)

	// ReadMultiple reads two or more attribute values in a single round trip.
	// The returned buffer is the server's undelimited concatenation; parsing
	// fixed-width fields out of it is the caller's job. [Vol 3, Part F, 3.4.4.7]
	ReadMultiple(handles []uint16) ([]byte, error)

	// WriteCharacteristic writes a characteristic value. With noRsp, a Write
	// Command is used and anything beyond MTU-3 bytes is silently truncated.
	WriteCharacteristic(c *Characteristic, v []byte, noRsp bool) error

	// WriteLongCharacteristic writes a value longer than MTU-3 bytes using
	// queued prepare writes followed by an execute write. In reliable mode
	// every echoed fragment is verified before execution. [Vol 3, Part G, 4.9.5]
	WriteLongCharacteristic(c *Characteristic, v []byte, reliable bool) error

	// ReadDescriptor reads a descriptor value.
	ReadDescriptor(d *Descriptor) ([]byte, error)

	// WriteDescriptor writes a descriptor value.
	WriteDescriptor(d *Descriptor, v []byte) error

	// Subscribe enables notifications (or indications, if ind is true) on a
	// characteristic by writing its CCCD, and routes incoming values to h.
	// A nil handler disables the subscription.
	Subscribe(c *Characteristic, ind bool, h NotificationHandler) error

	// Unsubscribe disables notifications or indications on a characteristic.
	Unsubscribe(c *Characteristic, ind bool) error

	// ClearSubscriptions clears all subscriptions of notifications and
	// indications.
	ClearSubscriptions() error

	// ExchangeMTU exchanges the receive MTU with the server and returns the
	// negotiated bearer MTU. [Vol 3, Part F, 3.4.2.1]
	ExchangeMTU(rxMTU int) (txMTU int, err error)

	// CancelConnection disconnects the connection.
	CancelConnection() error
}

// HandleValue is one handle/value pair returned by the read-by-UUID procedure.
type HandleValue struct {
	Handle uint16
	Value  []byte
}
