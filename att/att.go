package att

import "encoding/binary"

// ATT PDU opcodes [Vol 3, Part F, 3.4.8].
const (
	ErrorResponseCode           = 0x01
	ExchangeMTURequestCode      = 0x02
	ExchangeMTUResponseCode     = 0x03
	FindInformationRequestCode  = 0x04
	FindInformationResponseCode = 0x05
	FindByTypeValueRequestCode  = 0x06
	FindByTypeValueResponseCode = 0x07
	ReadByTypeRequestCode       = 0x08
	ReadByTypeResponseCode      = 0x09
	ReadRequestCode             = 0x0A
	ReadResponseCode            = 0x0B
	ReadBlobRequestCode         = 0x0C
	ReadBlobResponseCode        = 0x0D
	ReadMultipleRequestCode     = 0x0E
	ReadMultipleResponseCode    = 0x0F
	ReadByGroupTypeRequestCode  = 0x10
	ReadByGroupTypeResponseCode = 0x11
	WriteRequestCode            = 0x12
	WriteResponseCode           = 0x13
	WriteCommandCode            = 0x52
	SignedWriteCommandCode      = 0xD2
	PrepareWriteRequestCode     = 0x16
	PrepareWriteResponseCode    = 0x17
	ExecuteWriteRequestCode     = 0x18
	ExecuteWriteResponseCode    = 0x19
	HandleValueNotificationCode = 0x1B
	HandleValueIndicationCode   = 0x1D
	HandleValueConfirmationCode = 0x1E
)

// Opcode byte layout: bits 0-5 are the method, bit 6 is the command flag
// (no response expected), bit 7 is the authentication signature flag.
const (
	methodMask  = 0x3F
	commandFlag = 0x40
	signedFlag  = 0x80
)

// Method extracts the method bits of an opcode.
func Method(op byte) byte { return op & methodMask }

// IsCommand reports whether the opcode has the command flag set.
func IsCommand(op byte) bool { return op&commandFlag != 0 }

// IsSigned reports whether the opcode carries an authentication signature.
func IsSigned(op byte) bool { return op&signedFlag != 0 }

// Execute Write Request flags [Vol 3, Part F, 3.4.6.3].
const (
	ExecuteWriteCancel = 0x00
	ExecuteWriteCommit = 0x01
)

// Find Information Response formats [Vol 3, Part F, 3.4.3.2].
const (
	FindInformationFormatUUID16  = 0x01
	FindInformationFormatUUID128 = 0x02
)

func handleAt(b []byte, i int) uint16     { return binary.LittleEndian.Uint16(b[i:]) }
func putHandle(b []byte, i int, v uint16) { binary.LittleEndian.PutUint16(b[i:], v) }

// ErrorResponse implements Error Response (0x01) [Vol 3, Part F, 3.4.1.1].
type ErrorResponse []byte

func (r ErrorResponse) AttributeOpcode() uint8          { return r[0] }
func (r ErrorResponse) SetAttributeOpcode()             { r[0] = ErrorResponseCode }
func (r ErrorResponse) RequestOpcodeInError() uint8     { return r[1] }
func (r ErrorResponse) SetRequestOpcodeInError(v uint8) { r[1] = v }
func (r ErrorResponse) AttributeInError() uint16        { return handleAt(r, 2) }
func (r ErrorResponse) SetAttributeInError(v uint16)    { putHandle(r, 2, v) }
func (r ErrorResponse) ErrorCode() uint8                { return r[4] }
func (r ErrorResponse) SetErrorCode(v uint8)            { r[4] = v }

// ExchangeMTURequest implements Exchange MTU Request (0x02) [Vol 3, Part F, 3.4.2.1].
type ExchangeMTURequest []byte

func (r ExchangeMTURequest) AttributeOpcode() uint8  { return r[0] }
func (r ExchangeMTURequest) SetAttributeOpcode()     { r[0] = ExchangeMTURequestCode }
func (r ExchangeMTURequest) ClientRxMTU() uint16     { return handleAt(r, 1) }
func (r ExchangeMTURequest) SetClientRxMTU(v uint16) { putHandle(r, 1, v) }

// ExchangeMTUResponse implements Exchange MTU Response (0x03) [Vol 3, Part F, 3.4.2.2].
type ExchangeMTUResponse []byte

func (r ExchangeMTUResponse) AttributeOpcode() uint8  { return r[0] }
func (r ExchangeMTUResponse) SetAttributeOpcode()     { r[0] = ExchangeMTUResponseCode }
func (r ExchangeMTUResponse) ServerRxMTU() uint16     { return handleAt(r, 1) }
func (r ExchangeMTUResponse) SetServerRxMTU(v uint16) { putHandle(r, 1, v) }

// FindInformationRequest implements Find Information Request (0x04) [Vol 3, Part F, 3.4.3.1].
type FindInformationRequest []byte

func (r FindInformationRequest) AttributeOpcode() uint8     { return r[0] }
func (r FindInformationRequest) SetAttributeOpcode()        { r[0] = FindInformationRequestCode }
func (r FindInformationRequest) StartingHandle() uint16     { return handleAt(r, 1) }
func (r FindInformationRequest) SetStartingHandle(v uint16) { putHandle(r, 1, v) }
func (r FindInformationRequest) EndingHandle() uint16       { return handleAt(r, 3) }
func (r FindInformationRequest) SetEndingHandle(v uint16)   { putHandle(r, 3, v) }

// FindInformationResponse implements Find Information Response (0x05) [Vol 3, Part F, 3.4.3.2].
type FindInformationResponse []byte

func (r FindInformationResponse) AttributeOpcode() uint8      { return r[0] }
func (r FindInformationResponse) SetAttributeOpcode()         { r[0] = FindInformationResponseCode }
func (r FindInformationResponse) Format() uint8               { return r[1] }
func (r FindInformationResponse) SetFormat(v uint8)           { r[1] = v }
func (r FindInformationResponse) InformationData() []byte     { return r[2:] }
func (r FindInformationResponse) SetInformationData(v []byte) { copy(r[2:], v) }

// FindByTypeValueRequest implements Find By Type Value Request (0x06) [Vol 3, Part F, 3.4.3.3].
type FindByTypeValueRequest []byte

func (r FindByTypeValueRequest) AttributeOpcode() uint8     { return r[0] }
func (r FindByTypeValueRequest) SetAttributeOpcode()        { r[0] = FindByTypeValueRequestCode }
func (r FindByTypeValueRequest) StartingHandle() uint16     { return handleAt(r, 1) }
func (r FindByTypeValueRequest) SetStartingHandle(v uint16) { putHandle(r, 1, v) }
func (r FindByTypeValueRequest) EndingHandle() uint16       { return handleAt(r, 3) }
func (r FindByTypeValueRequest) SetEndingHandle(v uint16)   { putHandle(r, 3, v) }
func (r FindByTypeValueRequest) AttributeType() uint16      { return handleAt(r, 5) }
func (r FindByTypeValueRequest) SetAttributeType(v uint16)  { putHandle(r, 5, v) }
func (r FindByTypeValueRequest) AttributeValue() []byte     { return r[7:] }
func (r FindByTypeValueRequest) SetAttributeValue(v []byte) { copy(r[7:], v) }

// FindByTypeValueResponse implements Find By Type Value Response (0x07) [Vol 3, Part F, 3.4.3.4].
type FindByTypeValueResponse []byte

func (r FindByTypeValueResponse) AttributeOpcode() uint8            { return r[0] }
func (r FindByTypeValueResponse) SetAttributeOpcode()               { r[0] = FindByTypeValueResponseCode }
func (r FindByTypeValueResponse) HandleInformationList() []byte     { return r[1:] }
func (r FindByTypeValueResponse) SetHandleInformationList(v []byte) { copy(r[1:], v) }

// ReadByTypeRequest implements Read By Type Request (0x08) [Vol 3, Part F, 3.4.4.1].
type ReadByTypeRequest []byte

func (r ReadByTypeRequest) AttributeOpcode() uint8     { return r[0] }
func (r ReadByTypeRequest) SetAttributeOpcode()        { r[0] = ReadByTypeRequestCode }
func (r ReadByTypeRequest) StartingHandle() uint16     { return handleAt(r, 1) }
func (r ReadByTypeRequest) SetStartingHandle(v uint16) { putHandle(r, 1, v) }
func (r ReadByTypeRequest) EndingHandle() uint16       { return handleAt(r, 3) }
func (r ReadByTypeRequest) SetEndingHandle(v uint16)   { putHandle(r, 3, v) }
func (r ReadByTypeRequest) AttributeType() []byte      { return r[5:] }
func (r ReadByTypeRequest) SetAttributeType(v []byte)  { copy(r[5:], v) }

// ReadByTypeResponse implements Read By Type Response (0x09) [Vol 3, Part F, 3.4.4.2].
type ReadByTypeResponse []byte

func (r ReadByTypeResponse) AttributeOpcode() uint8        { return r[0] }
func (r ReadByTypeResponse) SetAttributeOpcode()           { r[0] = ReadByTypeResponseCode }
func (r ReadByTypeResponse) Length() uint8                 { return r[1] }
func (r ReadByTypeResponse) SetLength(v uint8)             { r[1] = v }
func (r ReadByTypeResponse) AttributeDataList() []byte     { return r[2:] }
func (r ReadByTypeResponse) SetAttributeDataList(v []byte) { copy(r[2:], v) }

// ReadRequest implements Read Request (0x0A) [Vol 3, Part F, 3.4.4.3].
type ReadRequest []byte

func (r ReadRequest) AttributeOpcode() uint8      { return r[0] }
func (r ReadRequest) SetAttributeOpcode()         { r[0] = ReadRequestCode }
func (r ReadRequest) AttributeHandle() uint16     { return handleAt(r, 1) }
func (r ReadRequest) SetAttributeHandle(v uint16) { putHandle(r, 1, v) }

// ReadResponse implements Read Response (0x0B) [Vol 3, Part F, 3.4.4.4].
type ReadResponse []byte

func (r ReadResponse) AttributeOpcode() uint8     { return r[0] }
func (r ReadResponse) SetAttributeOpcode()        { r[0] = ReadResponseCode }
func (r ReadResponse) AttributeValue() []byte     { return r[1:] }
func (r ReadResponse) SetAttributeValue(v []byte) { copy(r[1:], v) }

// ReadBlobRequest implements Read Blob Request (0x0C) [Vol 3, Part F, 3.4.4.5].
type ReadBlobRequest []byte

func (r ReadBlobRequest) AttributeOpcode() uint8      { return r[0] }
func (r ReadBlobRequest) SetAttributeOpcode()         { r[0] = ReadBlobRequestCode }
func (r ReadBlobRequest) AttributeHandle() uint16     { return handleAt(r, 1) }
func (r ReadBlobRequest) SetAttributeHandle(v uint16) { putHandle(r, 1, v) }
func (r ReadBlobRequest) ValueOffset() uint16         { return handleAt(r, 3) }
func (r ReadBlobRequest) SetValueOffset(v uint16)     { putHandle(r, 3, v) }

// ReadBlobResponse implements Read Blob Response (0x0D) [Vol 3, Part F, 3.4.4.6].
type ReadBlobResponse []byte

func (r ReadBlobResponse) AttributeOpcode() uint8         { return r[0] }
func (r ReadBlobResponse) SetAttributeOpcode()            { r[0] = ReadBlobResponseCode }
func (r ReadBlobResponse) PartAttributeValue() []byte     { return r[1:] }
func (r ReadBlobResponse) SetPartAttributeValue(v []byte) { copy(r[1:], v) }

// ReadMultipleRequest implements Read Multiple Request (0x0E) [Vol 3, Part F, 3.4.4.7].
type ReadMultipleRequest []byte

func (r ReadMultipleRequest) AttributeOpcode() uint8 { return r[0] }
func (r ReadMultipleRequest) SetAttributeOpcode()    { r[0] = ReadMultipleRequestCode }
func (r ReadMultipleRequest) SetOfHandles() []byte   { return r[1:] }

// SetHandle writes the i-th handle of the set at its wire position.
func (r ReadMultipleRequest) SetHandle(i int, v uint16) { putHandle(r, 1+2*i, v) }

// ReadMultipleResponse implements Read Multiple Response (0x0F) [Vol 3, Part F, 3.4.4.8].
type ReadMultipleResponse []byte

func (r ReadMultipleResponse) AttributeOpcode() uint8  { return r[0] }
func (r ReadMultipleResponse) SetAttributeOpcode()     { r[0] = ReadMultipleResponseCode }
func (r ReadMultipleResponse) SetOfValues() []byte     { return r[1:] }
func (r ReadMultipleResponse) SetSetOfValues(v []byte) { copy(r[1:], v) }

// ReadByGroupTypeRequest implements Read By Group Type Request (0x10) [Vol 3, Part F, 3.4.4.9].
type ReadByGroupTypeRequest []byte

func (r ReadByGroupTypeRequest) AttributeOpcode() uint8         { return r[0] }
func (r ReadByGroupTypeRequest) SetAttributeOpcode()            { r[0] = ReadByGroupTypeRequestCode }
func (r ReadByGroupTypeRequest) StartingHandle() uint16         { return handleAt(r, 1) }
func (r ReadByGroupTypeRequest) SetStartingHandle(v uint16)     { putHandle(r, 1, v) }
func (r ReadByGroupTypeRequest) EndingHandle() uint16           { return handleAt(r, 3) }
func (r ReadByGroupTypeRequest) SetEndingHandle(v uint16)       { putHandle(r, 3, v) }
func (r ReadByGroupTypeRequest) AttributeGroupType() []byte     { return r[5:] }
func (r ReadByGroupTypeRequest) SetAttributeGroupType(v []byte) { copy(r[5:], v) }

// ReadByGroupTypeResponse implements Read By Group Type Response (0x11) [Vol 3, Part F, 3.4.4.10].
type ReadByGroupTypeResponse []byte

func (r ReadByGroupTypeResponse) AttributeOpcode() uint8        { return r[0] }
func (r ReadByGroupTypeResponse) SetAttributeOpcode()           { r[0] = ReadByGroupTypeResponseCode }
func (r ReadByGroupTypeResponse) Length() uint8                 { return r[1] }
func (r ReadByGroupTypeResponse) SetLength(v uint8)             { r[1] = v }
func (r ReadByGroupTypeResponse) AttributeDataList() []byte     { return r[2:] }
func (r ReadByGroupTypeResponse) SetAttributeDataList(v []byte) { copy(r[2:], v) }

// WriteRequest implements Write Request (0x12) [Vol 3, Part F, 3.4.5.1].
type WriteRequest []byte

func (r WriteRequest) AttributeOpcode() uint8      { return r[0] }
func (r WriteRequest) SetAttributeOpcode()         { r[0] = WriteRequestCode }
func (r WriteRequest) AttributeHandle() uint16     { return handleAt(r, 1) }
func (r WriteRequest) SetAttributeHandle(v uint16) { putHandle(r, 1, v) }
func (r WriteRequest) AttributeValue() []byte      { return r[3:] }
func (r WriteRequest) SetAttributeValue(v []byte)  { copy(r[3:], v) }

// WriteResponse implements Write Response (0x13) [Vol 3, Part F, 3.4.5.2].
type WriteResponse []byte

func (r WriteResponse) AttributeOpcode() uint8 { return r[0] }
func (r WriteResponse) SetAttributeOpcode()    { r[0] = WriteResponseCode }

// WriteCommand implements Write Command (0x52) [Vol 3, Part F, 3.4.5.3].
type WriteCommand []byte

func (r WriteCommand) AttributeOpcode() uint8      { return r[0] }
func (r WriteCommand) SetAttributeOpcode()         { r[0] = WriteCommandCode }
func (r WriteCommand) AttributeHandle() uint16     { return handleAt(r, 1) }
func (r WriteCommand) SetAttributeHandle(v uint16) { putHandle(r, 1, v) }
func (r WriteCommand) AttributeValue() []byte      { return r[3:] }
func (r WriteCommand) SetAttributeValue(v []byte)  { copy(r[3:], v) }

// SignedWriteCommand implements Signed Write Command (0xD2) [Vol 3, Part F, 3.4.5.4].
// The last 12 bytes are the authentication signature; the value is everything
// between the handle and the signature.
type SignedWriteCommand []byte

func (r SignedWriteCommand) AttributeOpcode() uint8      { return r[0] }
func (r SignedWriteCommand) SetAttributeOpcode()         { r[0] = SignedWriteCommandCode }
func (r SignedWriteCommand) AttributeHandle() uint16     { return handleAt(r, 1) }
func (r SignedWriteCommand) SetAttributeHandle(v uint16) { putHandle(r, 1, v) }
func (r SignedWriteCommand) AttributeValue() []byte      { return r[3 : len(r)-12] }
func (r SignedWriteCommand) SetAttributeValue(v []byte)  { copy(r[3:len(r)-12], v) }
func (r SignedWriteCommand) AuthenticationSignature() [12]byte {
	var b [12]byte
	copy(b[:], r[len(r)-12:])
	return b
}
func (r SignedWriteCommand) SetAuthenticationSignature(v [12]byte) { copy(r[len(r)-12:], v[:]) }

// PrepareWriteRequest implements Prepare Write Request (0x16) [Vol 3, Part F, 3.4.6.1].
type PrepareWriteRequest []byte

func (r PrepareWriteRequest) AttributeOpcode() uint8         { return r[0] }
func (r PrepareWriteRequest) SetAttributeOpcode()            { r[0] = PrepareWriteRequestCode }
func (r PrepareWriteRequest) AttributeHandle() uint16        { return handleAt(r, 1) }
func (r PrepareWriteRequest) SetAttributeHandle(v uint16)    { putHandle(r, 1, v) }
func (r PrepareWriteRequest) ValueOffset() uint16            { return handleAt(r, 3) }
func (r PrepareWriteRequest) SetValueOffset(v uint16)        { putHandle(r, 3, v) }
func (r PrepareWriteRequest) PartAttributeValue() []byte     { return r[5:] }
func (r PrepareWriteRequest) SetPartAttributeValue(v []byte) { copy(r[5:], v) }

// PrepareWriteResponse implements Prepare Write Response (0x17) [Vol 3, Part F, 3.4.6.2].
type PrepareWriteResponse []byte

func (r PrepareWriteResponse) AttributeOpcode() uint8         { return r[0] }
func (r PrepareWriteResponse) SetAttributeOpcode()            { r[0] = PrepareWriteResponseCode }
func (r PrepareWriteResponse) AttributeHandle() uint16        { return handleAt(r, 1) }
func (r PrepareWriteResponse) SetAttributeHandle(v uint16)    { putHandle(r, 1, v) }
func (r PrepareWriteResponse) ValueOffset() uint16            { return handleAt(r, 3) }
func (r PrepareWriteResponse) SetValueOffset(v uint16)        { putHandle(r, 3, v) }
func (r PrepareWriteResponse) PartAttributeValue() []byte     { return r[5:] }
func (r PrepareWriteResponse) SetPartAttributeValue(v []byte) { copy(r[5:], v) }

// ExecuteWriteRequest implements Execute Write Request (0x18) [Vol 3, Part F, 3.4.6.3].
type ExecuteWriteRequest []byte

func (r ExecuteWriteRequest) AttributeOpcode() uint8 { return r[0] }
func (r ExecuteWriteRequest) SetAttributeOpcode()    { r[0] = ExecuteWriteRequestCode }
func (r ExecuteWriteRequest) Flags() uint8           { return r[1] }
func (r ExecuteWriteRequest) SetFlags(v uint8)       { r[1] = v }

// ExecuteWriteResponse implements Execute Write Response (0x19) [Vol 3, Part F, 3.4.6.4].
type ExecuteWriteResponse []byte

func (r ExecuteWriteResponse) AttributeOpcode() uint8 { return r[0] }
func (r ExecuteWriteResponse) SetAttributeOpcode()    { r[0] = ExecuteWriteResponseCode }

// HandleValueNotification implements Handle Value Notification (0x1B) [Vol 3, Part F, 3.4.7.1].
type HandleValueNotification []byte

func (r HandleValueNotification) AttributeOpcode() uint8      { return r[0] }
func (r HandleValueNotification) SetAttributeOpcode()         { r[0] = HandleValueNotificationCode }
func (r HandleValueNotification) AttributeHandle() uint16     { return handleAt(r, 1) }
func (r HandleValueNotification) SetAttributeHandle(v uint16) { putHandle(r, 1, v) }
func (r HandleValueNotification) AttributeValue() []byte      { return r[3:] }
func (r HandleValueNotification) SetAttributeValue(v []byte)  { copy(r[3:], v) }

// HandleValueIndication implements Handle Value Indication (0x1D) [Vol 3, Part F, 3.4.7.2].
type HandleValueIndication []byte

func (r HandleValueIndication) AttributeOpcode() uint8      { return r[0] }
func (r HandleValueIndication) SetAttributeOpcode()         { r[0] = HandleValueIndicationCode }
func (r HandleValueIndication) AttributeHandle() uint16     { return handleAt(r, 1) }
func (r HandleValueIndication) SetAttributeHandle(v uint16) { putHandle(r, 1, v) }
func (r HandleValueIndication) AttributeValue() []byte      { return r[3:] }
func (r HandleValueIndication) SetAttributeValue(v []byte)  { copy(r[3:], v) }

// HandleValueConfirmation implements Handle Value Confirmation (0x1E) [Vol 3, Part F, 3.4.7.3].
type HandleValueConfirmation []byte

func (r HandleValueConfirmation) AttributeOpcode() uint8 { return r[0] }
func (r HandleValueConfirmation) SetAttributeOpcode()    { r[0] = HandleValueConfirmationCode }
