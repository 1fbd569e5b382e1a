package ble

// AttError is an Attribute Protocol error code carried by an
// Error Response [Vol 3, Part F, 3.4.1.1].
type AttError byte

const (
	ErrSuccess           AttError = 0x00 // the operation succeeded
	ErrInvalidHandle     AttError = 0x01 // the attribute handle given was not valid on this server
	ErrReadNotPerm       AttError = 0x02 // the attribute cannot be read
	ErrWriteNotPerm      AttError = 0x03 // the attribute cannot be written
	ErrInvalidPDU        AttError = 0x04 // the attribute PDU was invalid
	ErrAuthentication    AttError = 0x05 // the attribute requires authentication
	ErrReqNotSupp        AttError = 0x06 // the server does not support the request
	ErrInvalidOffset     AttError = 0x07 // the offset given was past the end of the attribute
	ErrAuthorization     AttError = 0x08 // the attribute requires authorization
	ErrPrepQueueFull     AttError = 0x09 // too many prepare writes have been queued
	ErrAttrNotFound      AttError = 0x0A // no attribute found within the given handle range
	ErrAttrNotLong       AttError = 0x0B // the attribute cannot be read with a Read Blob Request
	ErrInsuffEncrKeySize AttError = 0x0C // the encryption key size of the link is insufficient
	ErrInvalAttrValueLen AttError = 0x0D // the attribute value length is invalid for the operation
	ErrUnlikely          AttError = 0x0E // the request has encountered an unlikely error
	ErrInsuffEnc         AttError = 0x0F // the attribute requires encryption
	ErrUnsuppGrpType     AttError = 0x10 // the attribute type is not a supported grouping attribute
	ErrInsuffResources   AttError = 0x11 // insufficient resources to complete the request
)

func (e AttError) Error() string {
	switch i := int(e); {
	case i <= 0x11:
		return errName[e]
	case i >= 0x80 && i <= 0x9F:
		return "application error"
	case i >= 0xE0:
		return "profile or service error"
	default:
		return "reserved error code"
	}
}

var errName = map[AttError]string{
	ErrSuccess:           "success",
	ErrInvalidHandle:     "invalid handle",
	ErrReadNotPerm:       "read not permitted",
	ErrWriteNotPerm:      "write not permitted",
	ErrInvalidPDU:        "invalid PDU",
	ErrAuthentication:    "insufficient authentication",
	ErrReqNotSupp:        "request not supported",
	ErrInvalidOffset:     "invalid offset",
	ErrAuthorization:     "insufficient authorization",
	ErrPrepQueueFull:     "prepare queue full",
	ErrAttrNotFound:      "attribute not found",
	ErrAttrNotLong:       "attribute not long",
	ErrInsuffEncrKeySize: "insufficient encryption key size",
	ErrInvalAttrValueLen: "invalid attribute value length",
	ErrUnlikely:          "unlikely error",
	ErrInsuffEnc:         "insufficient encryption",
	ErrUnsuppGrpType:     "unsupported group type",
	ErrInsuffResources:   "insufficient resources",
}
