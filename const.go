package ble

// GATT declaration and descriptor UUIDs used by the discovery procedures
// [Vol 3, Part G, 3].
var (
	PrimaryServiceUUID   = UUID16(0x2800)
	SecondaryServiceUUID = UUID16(0x2801)
	IncludeUUID          = UUID16(0x2802)
	CharacteristicUUID   = UUID16(0x2803)

	ClientCharacteristicConfigUUID = UUID16(0x2902)
	ServerCharacteristicConfigUUID = UUID16(0x2903)

	DeviceNameUUID = UUID16(0x2A00)
	AppearanceUUID = UUID16(0x2A01)
)

// CCC bits written to the Client Characteristic Configuration descriptor.
const (
	CCCNotify   = 0x0001
	CCCIndicate = 0x0002
)
