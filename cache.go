package ble

// GattCache persists discovered profiles between connections, keyed by the
// peer's address.
type GattCache interface {
	// Store saves the profile for the peer. With replace false, an existing
	// entry is an error.
	Store(a Addr, p Profile, replace bool) error

	// Load returns the stored profile for the peer.
	Load(a Addr) (Profile, error)

	// Clear drops every stored profile.
	Clear() error
}
