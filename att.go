package ble

import "errors"

// DefaultMTU is the ATT_MTU every bearer starts with, before the optional
// exchange renegotiates it [Vol 3, Part F, 3.2.8].
const DefaultMTU = 23

// MaxMTU is the largest ATT_MTU a bearer may negotiate.
const MaxMTU = 517

var (
	// ErrInvalidArgument means one or more of the arguments are invalid.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidResponse means the peer answered with a PDU that is
	// well-formed but violates the protocol, such as a pagination cycle or
	// a prepare write echo mismatch.
	ErrInvalidResponse = errors.New("invalid response")

	// ErrInLongWrite means a long write is already in flight on the bearer.
	ErrInLongWrite = errors.New("long write in progress")

	// ErrCCCDNotFound means the characteristic has no Client Characteristic
	// Configuration descriptor, so notifications can't be configured.
	ErrCCCDNotFound = errors.New("cccd not found")

	// ErrMTUTooSmall means the requested receive MTU is below the minimum of 23.
	ErrMTUTooSmall = errors.New("mtu too small")

	// ErrMalformed means an inbound PDU failed to decode.
	ErrMalformed = errors.New("malformed pdu")

	// ErrClosed means the transport is closed and the bearer is unusable.
	ErrClosed = errors.New("connection closed")

	// ErrNotFound means the requested service, characteristic, or descriptor
	// has not been discovered.
	ErrNotFound = errors.New("not found")
)
