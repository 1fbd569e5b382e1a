package gatt

import (
	"bytes"
	"encoding/binary"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"

	ble "github.com/ComputeCycles/Bluetooth"
	"github.com/ComputeCycles/Bluetooth/att"
)

var _ ble.Client = (*Client)(nil)

// Client implements ble.Client over a single ATT bearer.
//
// Procedures serialize on the client mutex; the subscription table has its
// own lock so notifications keep flowing while a procedure waits on a
// response.
type Client struct {
	sync.Mutex

	conn   ble.Conn
	ac     *att.Client
	store  *profileStore
	cache  ble.GattCache
	logger ble.Logger

	subsMu sync.RWMutex
	subs   map[uint16]*sub

	inLongWrite int32
}

type sub struct {
	cccdh    uint16
	ccc      uint16
	nHandler ble.NotificationHandler
	iHandler ble.NotificationHandler
}

// NewClient starts a GATT client on conn and performs the initial MTU
// exchange. A server that doesn't support the exchange leaves the bearer at
// the default MTU of 23.
func NewClient(conn ble.Conn, opts ...ble.ClientOption) (*Client, error) {
	cfg := ble.DefaultClientConfig()
	for _, o := range opts {
		if err := o(&cfg); err != nil {
			return nil, err
		}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = ble.GetLogger()
	}
	p := &Client{
		conn:   conn,
		store:  newProfileStore(),
		cache:  cfg.Cache,
		subs:   make(map[uint16]*sub),
		logger: logger.ChildLogger(map[string]interface{}{"component": "gatt"}),
	}
	p.ac = att.NewClient(conn, p)
	p.ac.SetLogger(logger.ChildLogger(map[string]interface{}{"component": "att"}))
	go p.ac.Loop()

	if _, err := p.ac.ExchangeMTU(cfg.RxMTU); err != nil {
		if !att.IsError(err, ble.ErrReqNotSupp) {
			return nil, errors.Wrap(err, "mtu exchange")
		}
		p.logger.Debug("server doesn't support mtu exchange, staying at default")
	}
	return p, nil
}

// Address returns the address of the remote peripheral.
func (p *Client) Address() ble.Addr {
	return p.conn.RemoteAddr()
}

// Profile returns the discovered profile.
func (p *Client) Profile() *ble.Profile {
	p.Lock()
	defer p.Unlock()
	return p.store.profile()
}

// DiscoverProfile discovers the whole hierarchy of the server. With force
// false, a profile found in the persistent cache is used instead of going
// over the air; a fresh discovery is stored back into the cache.
func (p *Client) DiscoverProfile(force bool) (*ble.Profile, error) {
	p.Lock()
	defer p.Unlock()

	if !force && p.cache != nil {
		if prof, err := p.cache.Load(p.conn.RemoteAddr()); err == nil {
			p.store.setProfile(prof)
			return p.store.profile(), nil
		}
	}

	svcs, err := p.discoverServices(nil)
	if err != nil {
		return nil, errors.Wrap(err, "discover services")
	}
	for _, s := range svcs {
		chars, err := p.discoverCharacteristics(nil, s)
		if err != nil {
			return nil, errors.Wrapf(err, "discover characteristics of %s", s.UUID)
		}
		for _, c := range chars {
			if _, err := p.discoverDescriptors(nil, c); err != nil {
				return nil, errors.Wrapf(err, "discover descriptors of %s", c.UUID)
			}
		}
	}

	prof := p.store.profile()
	if p.cache != nil {
		if err := p.cache.Store(p.conn.RemoteAddr(), *prof, true); err != nil {
			p.logger.Warnf("can't cache profile: %v", err)
		}
	}
	return prof, nil
}

// DiscoverServices discovers all primary services, or the subset matching
// filter if it is non-nil. [Vol 3, Part G, 4.4.1]
func (p *Client) DiscoverServices(filter []ble.UUID) ([]*ble.Service, error) {
	p.Lock()
	defer p.Unlock()
	return p.discoverServices(filter)
}

func (p *Client) discoverServices(filter []ble.UUID) ([]*ble.Service, error) {
	var found []*ble.Service
	start := uint16(0x0001)
	for {
		length, b, err := p.ac.ReadByGroupType(start, 0xFFFF, ble.PrimaryServiceUUID)
		if att.IsError(err, ble.ErrAttrNotFound) {
			break
		}
		if err != nil {
			return nil, err
		}
		if length-4 != 2 && length-4 != 16 {
			return nil, ble.ErrInvalidResponse
		}
		prevStart := start
		done := false
		for len(b) != 0 {
			h := binary.LittleEndian.Uint16(b[:2])
			endh := binary.LittleEndian.Uint16(b[2:4])
			if endh < h {
				return nil, ble.ErrInvalidResponse
			}
			u := uuidAt(b, 4, length)
			if filter == nil || ble.Contains(filter, u) {
				found = append(found, &ble.Service{
					UUID:      u,
					Primary:   true,
					Handle:    h,
					EndHandle: endh,
				})
			}
			if endh == 0xFFFF {
				done = true
				break
			}
			start = endh + 1
			b = b[length:]
		}
		if done {
			break
		}
		// A server that pages backwards would loop forever.
		if start <= prevStart {
			return nil, ble.ErrInvalidResponse
		}
	}
	return p.store.upsertServices(found, filter == nil), nil
}

// DiscoverServicesByUUID discovers the primary services with the given UUID
// using the Find By Type Value procedure. The responses don't echo the UUID,
// so the result records carry the one that was asked for. [Vol 3, Part G, 4.4.2]
func (p *Client) DiscoverServicesByUUID(u ble.UUID) ([]*ble.Service, error) {
	p.Lock()
	defer p.Unlock()

	if u.Len() != 2 && u.Len() != 16 {
		return nil, ble.ErrInvalidArgument
	}
	var found []*ble.Service
	start := uint16(0x0001)
	for {
		b, err := p.ac.FindByTypeValue(start, 0xFFFF, ble.PrimaryServiceUUID.Uint16(), u)
		if att.IsError(err, ble.ErrAttrNotFound) {
			break
		}
		if err != nil {
			return nil, err
		}
		prevStart := start
		done := false
		for len(b) != 0 {
			h := binary.LittleEndian.Uint16(b[:2])
			endh := binary.LittleEndian.Uint16(b[2:4])
			if endh < h {
				return nil, ble.ErrInvalidResponse
			}
			found = append(found, &ble.Service{
				UUID:      append(ble.UUID(nil), u...),
				Primary:   true,
				Handle:    h,
				EndHandle: endh,
			})
			if endh == 0xFFFF {
				done = true
				break
			}
			start = endh + 1
			b = b[4:]
		}
		if done {
			break
		}
		if start <= prevStart {
			return nil, ble.ErrInvalidResponse
		}
	}
	return p.store.upsertServices(found, false), nil
}

// DiscoverCharacteristics discovers the characteristics of s, or the subset
// matching filter if it is non-nil. Discovery by UUID stops as soon as every
// requested characteristic has been seen. [Vol 3, Part G, 4.6.1]
func (p *Client) DiscoverCharacteristics(filter []ble.UUID, s *ble.Service) ([]*ble.Characteristic, error) {
	p.Lock()
	defer p.Unlock()
	return p.discoverCharacteristics(filter, s)
}

func (p *Client) discoverCharacteristics(filter []ble.UUID, s *ble.Service) ([]*ble.Characteristic, error) {
	var found []*ble.Characteristic
	var lastChar *ble.Characteristic
	start := s.Handle
	for start != 0 && start <= s.EndHandle {
		length, b, err := p.ac.ReadByType(start, s.EndHandle, ble.CharacteristicUUID)
		if att.IsError(err, ble.ErrAttrNotFound) {
			break
		}
		if err != nil {
			return nil, err
		}
		// Each record is handle(2) | properties(1) | value handle(2) | uuid.
		if length-5 != 2 && length-5 != 16 {
			return nil, ble.ErrInvalidResponse
		}
		prevStart := start
		short := false
		for len(b) != 0 {
			h := binary.LittleEndian.Uint16(b[:2])
			props := ble.Property(b[2])
			vh := binary.LittleEndian.Uint16(b[3:5])
			if vh <= h || vh > s.EndHandle {
				return nil, ble.ErrInvalidResponse
			}
			c := &ble.Characteristic{
				UUID:        uuidAt(b, 5, length),
				Property:    props,
				Handle:      h,
				ValueHandle: vh,
				EndHandle:   s.EndHandle,
			}
			if lastChar != nil {
				lastChar.EndHandle = c.Handle - 1
			}
			lastChar = c
			if filter == nil || ble.Contains(filter, c.UUID) {
				found = append(found, c)
			}
			if filter != nil && len(found) >= len(filter) {
				short = true
				break
			}
			if vh == 0xFFFF {
				short = true
				break
			}
			start = vh + 1
			b = b[length:]
		}
		if short {
			break
		}
		if start <= prevStart {
			return nil, ble.ErrInvalidResponse
		}
	}
	return p.store.upsertCharacteristics(s, found, filter == nil), nil
}

// DiscoverDescriptors discovers the descriptors of c, or the subset matching
// filter if it is non-nil. [Vol 3, Part G, 4.7.1]
func (p *Client) DiscoverDescriptors(filter []ble.UUID, c *ble.Characteristic) ([]*ble.Descriptor, error) {
	p.Lock()
	defer p.Unlock()
	return p.discoverDescriptors(filter, c)
}

func (p *Client) discoverDescriptors(filter []ble.UUID, c *ble.Characteristic) ([]*ble.Descriptor, error) {
	var found []*ble.Descriptor
	start := c.ValueHandle + 1
	end := p.store.endHandleOf(c)
	for start != 0 && start <= end {
		format, b, err := p.ac.FindInformation(start, end)
		if att.IsError(err, ble.ErrAttrNotFound) {
			break
		}
		if err != nil {
			return nil, err
		}
		length := 2 + 2
		if format == att.FindInformationFormatUUID128 {
			length = 2 + 16
		}
		prevStart := start
		for len(b) != 0 {
			h := binary.LittleEndian.Uint16(b[:2])
			d := &ble.Descriptor{UUID: uuidAt(b, 2, length), Handle: h}
			if filter == nil || ble.Contains(filter, d.UUID) {
				found = append(found, d)
			}
			start = h + 1
			b = b[length:]
			if h == 0xFFFF {
				break
			}
		}
		if start == 0 || start <= prevStart {
			if start != 0 {
				return nil, ble.ErrInvalidResponse
			}
			break
		}
	}
	return p.store.upsertDescriptors(c, found, filter == nil), nil
}

// ReadCharacteristic reads the value of c. A response that fills the MTU may
// be truncated, so the read escalates to the blob procedure from that offset.
// [Vol 3, Part G, 4.8.1]
func (p *Client) ReadCharacteristic(c *ble.Characteristic) ([]byte, error) {
	p.Lock()
	defer p.Unlock()
	return p.readLong(c.ValueHandle)
}

// ReadLongCharacteristic reads a value longer than one MTU. [Vol 3, Part G, 4.8.3]
func (p *Client) ReadLongCharacteristic(c *ble.Characteristic) ([]byte, error) {
	p.Lock()
	defer p.Unlock()
	return p.readLong(c.ValueHandle)
}

func (p *Client) readLong(h uint16) ([]byte, error) {
	v, err := p.ac.Read(h)
	if err != nil {
		return nil, err
	}
	buf := append([]byte(nil), v...)
	// A full first response means the value may continue past the MTU.
	for len(v) == p.conn.TxMTU()-1 {
		v, err = p.ac.ReadBlob(h, uint16(len(buf)))
		if err != nil {
			if att.IsError(err, ble.ErrInvalidOffset) && len(buf) != 0 {
				return buf, nil
			}
			return nil, err
		}
		buf = append(buf, v...)
	}
	return buf, nil
}

// ReadByUUID reads the values of every characteristic with the given UUID in
// [start, end], returning handle/value pairs. [Vol 3, Part G, 4.8.2]
func (p *Client) ReadByUUID(u ble.UUID, start, end uint16) ([]ble.HandleValue, error) {
	p.Lock()
	defer p.Unlock()

	var out []ble.HandleValue
	for start != 0 && start <= end {
		length, b, err := p.ac.ReadByType(start, end, u)
		if att.IsError(err, ble.ErrAttrNotFound) {
			break
		}
		if err != nil {
			return nil, err
		}
		prevStart := start
		for len(b) != 0 {
			h := binary.LittleEndian.Uint16(b[:2])
			out = append(out, ble.HandleValue{
				Handle: h,
				Value:  append([]byte(nil), b[2:length]...),
			})
			start = h + 1
			b = b[length:]
			if h == 0xFFFF {
				break
			}
		}
		if start != 0 && start <= prevStart {
			return nil, ble.ErrInvalidResponse
		}
	}
	return out, nil
}

// ReadMultiple reads two or more attribute values in one round trip. The
// returned buffer is undelimited; it is the caller's job to slice fixed-width
// fields out of it. [Vol 3, Part F, 3.4.4.7]
func (p *Client) ReadMultiple(handles []uint16) ([]byte, error) {
	p.Lock()
	defer p.Unlock()
	return p.ac.ReadMultiple(handles)
}

// WriteCharacteristic writes the value of c. With noRsp, a Write Command is
// used and anything past MTU-3 bytes is silently truncated. [Vol 3, Part G, 4.9]
func (p *Client) WriteCharacteristic(c *ble.Characteristic, v []byte, noRsp bool) error {
	p.Lock()
	defer p.Unlock()
	if noRsp {
		return p.ac.WriteCommand(c.ValueHandle, v)
	}
	return p.ac.Write(c.ValueHandle, v)
}

// WriteLongCharacteristic writes a value longer than MTU-3 bytes with queued
// prepare writes followed by an execute write. In reliable mode each echoed
// fragment is verified; a mismatch cancels the queue before reporting
// ble.ErrInvalidResponse. [Vol 3, Part G, 4.9.4 / 4.9.5]
func (p *Client) WriteLongCharacteristic(c *ble.Characteristic, v []byte, reliable bool) error {
	if !atomic.CompareAndSwapInt32(&p.inLongWrite, 0, 1) {
		return ble.ErrInLongWrite
	}
	defer atomic.StoreInt32(&p.inLongWrite, 0)

	p.Lock()
	defer p.Unlock()

	chunk := p.conn.TxMTU() - 5
	for offset := 0; offset < len(v); offset += chunk {
		n := chunk
		if offset+n > len(v) {
			n = len(v) - offset
		}
		part := v[offset : offset+n]
		rsp, err := p.ac.PrepareWrite(c.ValueHandle, uint16(offset), part)
		if err != nil {
			return err
		}
		if reliable && !echoMatches(rsp, c.ValueHandle, uint16(offset), part) {
			if cerr := p.ac.ExecuteWrite(att.ExecuteWriteCancel); cerr != nil {
				p.logger.Warnf("can't cancel prepare queue: %v", cerr)
			}
			return ble.ErrInvalidResponse
		}
	}
	return p.ac.ExecuteWrite(att.ExecuteWriteCommit)
}

func echoMatches(rsp att.PrepareWriteResponse, h, offset uint16, part []byte) bool {
	return rsp.AttributeHandle() == h &&
		rsp.ValueOffset() == offset &&
		bytes.Equal(rsp.PartAttributeValue(), part)
}

// ReadDescriptor reads the value of d.
func (p *Client) ReadDescriptor(d *ble.Descriptor) ([]byte, error) {
	p.Lock()
	defer p.Unlock()
	return p.readLong(d.Handle)
}

// WriteDescriptor writes the value of d.
func (p *Client) WriteDescriptor(d *ble.Descriptor, v []byte) error {
	p.Lock()
	defer p.Unlock()
	return p.ac.Write(d.Handle, v)
}

// Subscribe enables notifications (or indications, with ind) on c by writing
// its CCCD and routes incoming values to h. A nil handler disables the
// subscription. [Vol 3, Part G, 4.10 / 4.11]
func (p *Client) Subscribe(c *ble.Characteristic, ind bool, h ble.NotificationHandler) error {
	p.Lock()
	defer p.Unlock()
	if ind {
		return p.setHandlers(c, ble.CCCIndicate, h)
	}
	return p.setHandlers(c, ble.CCCNotify, h)
}

// Unsubscribe disables notifications or indications on c.
func (p *Client) Unsubscribe(c *ble.Characteristic, ind bool) error {
	return p.Subscribe(c, ind, nil)
}

func (p *Client) setHandlers(c *ble.Characteristic, flag uint16, h ble.NotificationHandler) error {
	cccd, err := p.cccdOf(c)
	if err != nil {
		return err
	}

	p.subsMu.Lock()
	s, ok := p.subs[c.ValueHandle]
	if !ok {
		s = &sub{cccdh: cccd.Handle}
		p.subs[c.ValueHandle] = s
	}
	ccc := s.ccc
	if h != nil {
		ccc |= flag
	} else {
		ccc &^= flag
	}
	changed := ccc != s.ccc
	p.subsMu.Unlock()

	if changed {
		v := make([]byte, 2)
		binary.LittleEndian.PutUint16(v, ccc)
		if err := p.ac.Write(s.cccdh, v); err != nil {
			return err
		}
	}

	p.subsMu.Lock()
	s.ccc = ccc
	if flag == ble.CCCNotify {
		s.nHandler = h
	} else {
		s.iHandler = h
	}
	p.subsMu.Unlock()
	return nil
}

func (p *Client) cccdOf(c *ble.Characteristic) (*ble.Descriptor, error) {
	if c.CCCD == nil {
		if _, err := p.discoverDescriptors(nil, c); err != nil {
			return nil, err
		}
	}
	if c.CCCD == nil {
		return nil, ble.ErrCCCDNotFound
	}
	return c.CCCD, nil
}

// ClearSubscriptions writes zero to every subscribed CCCD and drops the
// handlers.
func (p *Client) ClearSubscriptions() error {
	p.Lock()
	defer p.Unlock()

	p.subsMu.Lock()
	pending := make(map[uint16]*sub, len(p.subs))
	for vh, s := range p.subs {
		pending[vh] = s
	}
	p.subsMu.Unlock()

	zero := make([]byte, 2)
	for vh, s := range pending {
		if s.ccc != 0 {
			if err := p.ac.Write(s.cccdh, zero); err != nil {
				return err
			}
		}
		p.subsMu.Lock()
		delete(p.subs, vh)
		p.subsMu.Unlock()
	}
	return nil
}

// ExchangeMTU exchanges the receive MTU with the server and returns the
// negotiated bearer MTU. [Vol 3, Part F, 3.4.2.1]
func (p *Client) ExchangeMTU(rxMTU int) (int, error) {
	return p.ac.ExchangeMTU(rxMTU)
}

// CancelConnection disconnects the connection.
func (p *Client) CancelConnection() error {
	return p.conn.Close()
}

// HandleNotification routes a Handle Value Notification or Indication to the
// subscriber of its value handle. It runs on the ATT dispatch path, so a
// value observed between a request and its response reaches the subscriber
// before the request completes.
func (p *Client) HandleNotification(req []byte) {
	vh := att.HandleValueNotification(req).AttributeHandle()

	p.subsMu.RLock()
	s := p.subs[vh]
	p.subsMu.RUnlock()

	if s == nil {
		p.logger.Warnf("notification for unsubscribed handle 0x%04X", vh)
		return
	}
	fn := s.nHandler
	if req[0] == att.HandleValueIndicationCode {
		fn = s.iHandler
	}
	if fn != nil {
		fn(req[3:])
	}
}

// uuidAt copies the UUID occupying b[off:length] out of a response record.
func uuidAt(b []byte, off, length int) ble.UUID {
	return ble.UUID(append([]byte(nil), b[off:length]...))
}
