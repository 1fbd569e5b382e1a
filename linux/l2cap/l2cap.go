//go:build linux

// Package l2cap provides a ble.Conn over a BlueZ L2CAP socket bound to the
// ATT channel, so the GATT client can run against the kernel's LE transport
// without an in-process HCI.
package l2cap

import (
	"context"
	"io"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	ble "github.com/ComputeCycles/Bluetooth"
)

// cidLEAtt is the fixed L2CAP channel for the Attribute Protocol
// [Vol 3, Part A, 2.1].
const cidLEAtt = 0x0004

// Peer address types of the kernel's sockaddr_l2.
const (
	addrLEPublic = 0x01
	addrLERandom = 0x02
)

var _ ble.Conn = (*Conn)(nil)

// Conn is an ATT bearer over an L2CAP SOCK_SEQPACKET socket. The kernel
// preserves message boundaries, so every Read yields one PDU and every Write
// sends one.
type Conn struct {
	fd int

	ctx    context.Context
	local  ble.Addr
	remote ble.Addr

	rxMTU int
	txMTU int

	rmu  sync.Mutex
	wmu  sync.Mutex
	cmu  sync.Mutex
	done chan struct{}
}

// Dial connects to the ATT channel of the peer with the given address.
// Set random for peers using an LE random (static or resolvable) address.
func Dial(remote ble.Addr, random bool) (*Conn, error) {
	fd, err := unix.Socket(unix.AF_BLUETOOTH, unix.SOCK_SEQPACKET, unix.BTPROTO_L2CAP)
	if err != nil {
		return nil, errors.Wrap(err, "can't create l2cap socket")
	}

	if err := unix.Bind(fd, &unix.SockaddrL2{CID: cidLEAtt, AddrType: addrLEPublic}); err != nil {
		unix.Close(fd)
		return nil, errors.Wrap(err, "can't bind l2cap socket")
	}

	sa := &unix.SockaddrL2{CID: cidLEAtt, AddrType: addrLEPublic}
	if random {
		sa.AddrType = addrLERandom
	}
	bd, err := bdaddr(remote)
	if err != nil {
		unix.Close(fd)
		return nil, err
	}
	sa.Addr = bd

	if err := unix.Connect(fd, sa); err != nil {
		unix.Close(fd)
		return nil, errors.Wrapf(err, "can't connect to %s", remote)
	}

	return &Conn{
		fd:     fd,
		ctx:    context.Background(),
		remote: remote,
		rxMTU:  ble.DefaultMTU,
		txMTU:  ble.DefaultMTU,
		done:   make(chan struct{}),
	}, nil
}

// bdaddr converts an Addr into the kernel's little-endian six-byte form.
func bdaddr(a ble.Addr) ([6]uint8, error) {
	var out [6]uint8
	b := a.Bytes()
	if len(b) != 6 {
		return out, errors.Errorf("invalid bluetooth address %q", a.String())
	}
	for i := 0; i < 6; i++ {
		out[i] = b[5-i]
	}
	return out, nil
}

func (c *Conn) Read(p []byte) (int, error) {
	if !c.isOpen() {
		return 0, io.EOF
	}
	c.rmu.Lock()
	defer c.rmu.Unlock()

	n, err := unix.Read(c.fd, p)
	if err != nil {
		return 0, errors.Wrap(err, "can't read l2cap socket")
	}
	if n == 0 || !c.isOpen() {
		return 0, io.EOF
	}
	return n, nil
}

func (c *Conn) Write(p []byte) (int, error) {
	if !c.isOpen() {
		return 0, io.EOF
	}
	c.wmu.Lock()
	defer c.wmu.Unlock()

	n, err := unix.Write(c.fd, p)
	return n, errors.Wrap(err, "can't write l2cap socket")
}

func (c *Conn) Close() error {
	c.cmu.Lock()
	defer c.cmu.Unlock()

	select {
	case <-c.done:
		return nil
	default:
		close(c.done)
		return errors.Wrap(unix.Close(c.fd), "can't close l2cap socket")
	}
}

func (c *Conn) isOpen() bool {
	select {
	case <-c.done:
		return false
	default:
		return true
	}
}

// Context returns the context that is used by this Conn.
func (c *Conn) Context() context.Context { return c.ctx }

// SetContext sets the context that is used by this Conn.
func (c *Conn) SetContext(ctx context.Context) { c.ctx = ctx }

// LocalAddr returns the local address, when known.
func (c *Conn) LocalAddr() ble.Addr { return c.local }

// RemoteAddr returns the peer address.
func (c *Conn) RemoteAddr() ble.Addr { return c.remote }

func (c *Conn) RxMTU() int       { return c.rxMTU }
func (c *Conn) SetRxMTU(mtu int) { c.rxMTU = mtu }
func (c *Conn) TxMTU() int       { return c.txMTU }
func (c *Conn) SetTxMTU(mtu int) { c.txMTU = mtu }

// Disconnected returns a channel closed when the connection goes away.
func (c *Conn) Disconnected() <-chan struct{} { return c.done }
