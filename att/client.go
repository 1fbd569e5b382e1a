package att

import (
	"sync"
	"sync/atomic"

	ble "github.com/ComputeCycles/Bluetooth"
)

// NotificationHandler receives server-initiated PDUs. The argument is the
// whole Handle Value Notification or Indication PDU, opcode included.
type NotificationHandler interface {
	HandleNotification(req []byte)
}

// Client implements an Attribute Protocol client over one bearer.
//
// ATT permits a single outstanding request per bearer [Vol 3, Part F, 3.3.2];
// request methods serialize on the client mutex, so calls made while a
// response is pending wait until it completes. The mutex does not guarantee
// that waiting callers are served in arrival order. Commands and the confirmation
// emitted for an indication bypass that gate and only contend for the
// transmit token.
type Client struct {
	sync.Mutex

	conn    ble.Conn
	handler NotificationHandler
	logger  ble.Logger

	rspc    chan []byte
	chErr   chan error
	chTxBuf chan struct{}
	rxBuf   []byte

	// pending holds the in-flight request and expected response opcodes,
	// packed req<<8|rsp. Zero means nothing is outstanding.
	pending uint32
}

// NewClient returns an ATT client on conn, delivering notifications and
// indications to h. Callers must start Loop in its own goroutine.
func NewClient(conn ble.Conn, h NotificationHandler) *Client {
	c := &Client{
		conn:    conn,
		handler: h,
		logger:  ble.GetLogger().ChildLogger(map[string]interface{}{"component": "att"}),
		rspc:    make(chan []byte),
		chErr:   make(chan error, 1),
		chTxBuf: make(chan struct{}, 1),
		rxBuf:   make([]byte, ble.MaxMTU),
	}
	c.chTxBuf <- struct{}{}
	return c
}

// SetLogger replaces the client logger.
func (c *Client) SetLogger(l ble.Logger) { c.logger = l }

// ExchangeMTU informs the server of the client's receive MTU and returns the
// negotiated bearer MTU, min(client, server) clamped to no less than the
// default of 23. [Vol 3, Part F, 3.4.2.1]
func (c *Client) ExchangeMTU(rxMTU int) (int, error) {
	if rxMTU < ble.DefaultMTU {
		return 0, ble.ErrMTUTooSmall
	}
	if rxMTU > ble.MaxMTU {
		return 0, ble.ErrInvalidArgument
	}
	req := ExchangeMTURequest(make([]byte, 3))
	req.SetAttributeOpcode()
	req.SetClientRxMTU(uint16(rxMTU))

	c.conn.SetRxMTU(rxMTU)

	b, err := c.sendReq(req, ExchangeMTUResponseCode)
	if err != nil {
		return 0, err
	}
	txMTU := int(ExchangeMTUResponse(b).ServerRxMTU())
	if txMTU > rxMTU {
		txMTU = rxMTU
	}
	if txMTU < ble.DefaultMTU {
		txMTU = ble.DefaultMTU
	}
	c.conn.SetTxMTU(txMTU)
	return txMTU, nil
}

// FindInformation requests the type of every attribute in [starth, endh] and
// returns the response format along with the handle/UUID records.
// [Vol 3, Part F, 3.4.3.1]
func (c *Client) FindInformation(starth, endh uint16) (int, []byte, error) {
	req := FindInformationRequest(make([]byte, 5))
	req.SetAttributeOpcode()
	req.SetStartingHandle(starth)
	req.SetEndingHandle(endh)

	b, err := c.sendReq(req, FindInformationResponseCode)
	if err != nil {
		return 0, nil, err
	}
	rsp := FindInformationResponse(b)
	return int(rsp.Format()), rsp.InformationData(), nil
}

// FindByTypeValue returns the found/group-end handle pairs of the attributes
// with the given 16-bit type and value in [starth, endh]. [Vol 3, Part F, 3.4.3.3]
func (c *Client) FindByTypeValue(starth, endh, typ uint16, value []byte) ([]byte, error) {
	if 7+len(value) > c.conn.TxMTU() {
		return nil, ble.ErrInvalidArgument
	}
	req := FindByTypeValueRequest(make([]byte, 7+len(value)))
	req.SetAttributeOpcode()
	req.SetStartingHandle(starth)
	req.SetEndingHandle(endh)
	req.SetAttributeType(typ)
	req.SetAttributeValue(value)

	b, err := c.sendReq(req, FindByTypeValueResponseCode)
	if err != nil {
		return nil, err
	}
	return FindByTypeValueResponse(b).HandleInformationList(), nil
}

// ReadByType returns the per-record length and the handle/value records of
// the attributes with the given type in [starth, endh]. The type must be a
// 16- or 128-bit UUID. [Vol 3, Part F, 3.4.4.1]
func (c *Client) ReadByType(starth, endh uint16, typ ble.UUID) (int, []byte, error) {
	if typ.Len() != 2 && typ.Len() != 16 {
		return 0, nil, ble.ErrInvalidArgument
	}
	req := ReadByTypeRequest(make([]byte, 5+typ.Len()))
	req.SetAttributeOpcode()
	req.SetStartingHandle(starth)
	req.SetEndingHandle(endh)
	req.SetAttributeType(typ)

	b, err := c.sendReq(req, ReadByTypeResponseCode)
	if err != nil {
		return 0, nil, err
	}
	rsp := ReadByTypeResponse(b)
	return int(rsp.Length()), rsp.AttributeDataList(), nil
}

// ReadByGroupType returns the per-record length and the grouping records of
// the attributes with the given group type in [starth, endh].
// [Vol 3, Part F, 3.4.4.9]
func (c *Client) ReadByGroupType(starth, endh uint16, typ ble.UUID) (int, []byte, error) {
	if typ.Len() != 2 && typ.Len() != 16 {
		return 0, nil, ble.ErrInvalidArgument
	}
	req := ReadByGroupTypeRequest(make([]byte, 5+typ.Len()))
	req.SetAttributeOpcode()
	req.SetStartingHandle(starth)
	req.SetEndingHandle(endh)
	req.SetAttributeGroupType(typ)

	b, err := c.sendReq(req, ReadByGroupTypeResponseCode)
	if err != nil {
		return 0, nil, err
	}
	rsp := ReadByGroupTypeResponse(b)
	return int(rsp.Length()), rsp.AttributeDataList(), nil
}

// Read requests the value of the attribute at h. A value that fills the
// whole response may be truncated; callers escalate to ReadBlob.
// [Vol 3, Part F, 3.4.4.3]
func (c *Client) Read(h uint16) ([]byte, error) {
	req := ReadRequest(make([]byte, 3))
	req.SetAttributeOpcode()
	req.SetAttributeHandle(h)

	b, err := c.sendReq(req, ReadResponseCode)
	if err != nil {
		return nil, err
	}
	return ReadResponse(b).AttributeValue(), nil
}

// ReadBlob requests part of the value of the attribute at h, starting at
// offset. [Vol 3, Part F, 3.4.4.5]
func (c *Client) ReadBlob(h, offset uint16) ([]byte, error) {
	req := ReadBlobRequest(make([]byte, 5))
	req.SetAttributeOpcode()
	req.SetAttributeHandle(h)
	req.SetValueOffset(offset)

	b, err := c.sendReq(req, ReadBlobResponseCode)
	if err != nil {
		return nil, err
	}
	return ReadBlobResponse(b).PartAttributeValue(), nil
}

// ReadMultiple requests the values of two or more attributes in one round
// trip. The response is the server's undelimited concatenation of the values.
// [Vol 3, Part F, 3.4.4.7]
func (c *Client) ReadMultiple(handles []uint16) ([]byte, error) {
	if len(handles) < 2 || 1+2*len(handles) > c.conn.TxMTU() {
		return nil, ble.ErrInvalidArgument
	}
	req := ReadMultipleRequest(make([]byte, 1+2*len(handles)))
	req.SetAttributeOpcode()
	for i, h := range handles {
		req.SetHandle(i, h)
	}

	b, err := c.sendReq(req, ReadMultipleResponseCode)
	if err != nil {
		return nil, err
	}
	return ReadMultipleResponse(b).SetOfValues(), nil
}

// Write requests the server to write the attribute at h. Only the first
// MTU-3 bytes of v are carried. [Vol 3, Part F, 3.4.5.1]
func (c *Client) Write(h uint16, v []byte) error {
	v = clip(v, c.conn.TxMTU()-3)
	req := WriteRequest(make([]byte, 3+len(v)))
	req.SetAttributeOpcode()
	req.SetAttributeHandle(h)
	req.SetAttributeValue(v)

	_, err := c.sendReq(req, WriteResponseCode)
	return err
}

// WriteCommand writes the attribute at h without a response. Truncation to
// MTU-3 bytes is silent. [Vol 3, Part F, 3.4.5.3]
func (c *Client) WriteCommand(h uint16, v []byte) error {
	v = clip(v, c.conn.TxMTU()-3)
	req := WriteCommand(make([]byte, 3+len(v)))
	req.SetAttributeOpcode()
	req.SetAttributeHandle(h)
	req.SetAttributeValue(v)

	return c.write(req)
}

// PrepareWrite queues part of a long write on the server and returns the
// echoed handle, offset, and part value for verification.
// [Vol 3, Part F, 3.4.6.1]
func (c *Client) PrepareWrite(h, offset uint16, v []byte) (PrepareWriteResponse, error) {
	if 5+len(v) > c.conn.TxMTU() {
		return nil, ble.ErrInvalidArgument
	}
	req := PrepareWriteRequest(make([]byte, 5+len(v)))
	req.SetAttributeOpcode()
	req.SetAttributeHandle(h)
	req.SetValueOffset(offset)
	req.SetPartAttributeValue(v)

	b, err := c.sendReq(req, PrepareWriteResponseCode)
	if err != nil {
		return nil, err
	}
	return PrepareWriteResponse(b), nil
}

// ExecuteWrite commits (ExecuteWriteCommit) or discards (ExecuteWriteCancel)
// the server's prepare queue. [Vol 3, Part F, 3.4.6.3]
func (c *Client) ExecuteWrite(flags uint8) error {
	req := ExecuteWriteRequest(make([]byte, 2))
	req.SetAttributeOpcode()
	req.SetFlags(flags)

	_, err := c.sendReq(req, ExecuteWriteResponseCode)
	return err
}

// sendReq transmits a request and blocks until the matching response, an
// Error Response naming the request opcode, or a transport failure.
func (c *Client) sendReq(req []byte, rspCode byte) ([]byte, error) {
	c.Lock()
	defer c.Unlock()

	atomic.StoreUint32(&c.pending, uint32(req[0])<<8|uint32(rspCode))
	defer atomic.StoreUint32(&c.pending, 0)

	if err := c.write(req); err != nil {
		return nil, err
	}
	select {
	case rsp := <-c.rspc:
		if rsp[0] == ErrorResponseCode {
			return nil, newError(ErrorResponse(rsp))
		}
		return rsp, nil
	case err := <-c.chErr:
		c.logger.Debugf("transport failed mid-transaction: %v", err)
		return nil, ble.ErrClosed
	case <-c.conn.Disconnected():
		return nil, ble.ErrClosed
	}
}

// write transmits one PDU, serialized against every other writer on the
// bearer via the transmit token.
func (c *Client) write(pdu []byte) error {
	<-c.chTxBuf
	defer func() { c.chTxBuf <- struct{}{} }()

	select {
	case <-c.conn.Disconnected():
		return ble.ErrClosed
	default:
	}
	if _, err := c.conn.Write(pdu); err != nil {
		c.logger.Debugf("write failed: %v", err)
		return ble.ErrClosed
	}
	return nil
}

// Loop reads inbound PDUs and dispatches them until the transport fails or
// closes. Malformed or out-of-state PDUs are logged and skipped; a
// misbehaving peer never takes the bearer down from here.
func (c *Client) Loop() {
	for {
		n, err := c.conn.Read(c.rxBuf)
		if err != nil {
			select {
			case c.chErr <- err:
			default:
			}
			return
		}
		if n == 0 {
			continue
		}
		b := make([]byte, n)
		copy(b, c.rxBuf[:n])

		if err := Validate(b); err != nil {
			c.logger.Warnf("dropping malformed pdu [% X]", b)
			continue
		}

		switch b[0] {
		case HandleValueNotificationCode:
			if c.handler != nil {
				c.handler.HandleNotification(b)
			}
		case HandleValueIndicationCode:
			c.handleIndication(b)
		case ErrorResponseCode:
			p := atomic.LoadUint32(&c.pending)
			if p != 0 && ErrorResponse(b).RequestOpcodeInError() == byte(p>>8) {
				c.rspc <- b
				continue
			}
			c.logger.Warnf("dropping unmatched error response [% X]", b)
		default:
			p := atomic.LoadUint32(&c.pending)
			if p != 0 && b[0] == byte(p) {
				c.rspc <- b
				continue
			}
			c.logger.Warnf("dropping unexpected pdu [% X]", b)
		}
	}
}

// handleIndication delivers the indication and then transmits the
// confirmation. The confirmation takes the transmit token from within the
// dispatch path, so it goes out before any request issued afterwards.
// [Vol 3, Part F, 3.4.7.3]
func (c *Client) handleIndication(b []byte) {
	if c.handler != nil {
		c.handler.HandleNotification(b)
	}
	cfm := HandleValueConfirmation(make([]byte, 1))
	cfm.SetAttributeOpcode()
	if err := c.write(cfm); err != nil {
		c.logger.Warnf("can't send confirmation: %v", err)
	}
}

func clip(v []byte, max int) []byte {
	if len(v) > max {
		return v[:max]
	}
	return v
}
