package ble

// ClientConfig collects the tunables of a GATT client.
type ClientConfig struct {
	// RxMTU is the receive MTU announced in the Exchange MTU Request.
	RxMTU int

	// Cache, when set, persists discovered profiles per peer address.
	Cache GattCache

	// Logger overrides the package logger for this client.
	Logger Logger
}

// DefaultClientConfig returns the configuration used when no options are given.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{RxMTU: MaxMTU}
}

// A ClientOption configures a GATT client.
type ClientOption func(*ClientConfig) error

// OptRxMTU sets the receive MTU the client announces during the MTU exchange.
func OptRxMTU(mtu int) ClientOption {
	return func(cfg *ClientConfig) error {
		if mtu < DefaultMTU {
			return ErrMTUTooSmall
		}
		if mtu > MaxMTU {
			return ErrInvalidArgument
		}
		cfg.RxMTU = mtu
		return nil
	}
}

// OptGattCache attaches a persistent profile cache to the client.
func OptGattCache(c GattCache) ClientOption {
	return func(cfg *ClientConfig) error {
		cfg.Cache = c
		return nil
	}
}

// OptLogger overrides the logger used by the client and its ATT bearer.
func OptLogger(l Logger) ClientOption {
	return func(cfg *ClientConfig) error {
		cfg.Logger = l
		return nil
	}
}
