package ble

import (
	"context"
	"io"
)

// Conn implements a message-framed ATT bearer, typically an L2CAP channel.
//
// Each Read returns exactly one inbound ATT PDU, and each Write transmits
// exactly one outbound ATT PDU; message boundaries are preserved by the
// underlying transport and are never reassembled above it.
type Conn interface {
	io.ReadWriteCloser

	// Context returns the context that is used by this Conn.
	Context() context.Context

	// SetContext sets the context that is used by this Conn.
	SetContext(ctx context.Context)

	// LocalAddr returns local device's address.
	LocalAddr() Addr

	// RemoteAddr returns remote device's address.
	RemoteAddr() Addr

	// RxMTU returns the ATT_MTU which the local device is capable of accepting.
	RxMTU() int

	// SetRxMTU sets the ATT_MTU which the local device is capable of accepting.
	SetRxMTU(mtu int)

	// TxMTU returns the ATT_MTU which the remote device is capable of accepting.
	TxMTU() int

	// SetTxMTU sets the ATT_MTU which the remote device is capable of accepting.
	SetTxMTU(mtu int)

	// Disconnected returns a receiving channel, which is closed when the
	// connection disconnects.
	Disconnected() <-chan struct{}
}
