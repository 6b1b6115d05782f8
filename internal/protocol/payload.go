package protocol

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"

	"github/chapool/go-coldwallet/internal/errs"
)

// PayloadType declares how a payload's raw bytes are interpreted.
type PayloadType uint8

// Type ids on the wire.
const (
	TypeByte  PayloadType = 1
	TypeShort PayloadType = 2
	TypeInt   PayloadType = 3
	TypeLong  PayloadType = 4
	TypeText  PayloadType = 5
	TypeBytes PayloadType = 6
)

func (t PayloadType) String() string {
	switch t {
	case TypeByte:
		return "byte"
	case TypeShort:
		return "short"
	case TypeInt:
		return "int"
	case TypeLong:
		return "long"
	case TypeText:
		return "text"
	case TypeBytes:
		return "bytes"
	default:
		return "invalid"
	}
}

// width returns the fixed value width for integer types, 0 for variable ones.
func (t PayloadType) width() int {
	switch t {
	case TypeByte:
		return 1
	case TypeShort:
		return 2
	case TypeInt:
		return 4
	case TypeLong:
		return 8
	default:
		return 0
	}
}

func (t PayloadType) valid() bool {
	return t >= TypeByte && t <= TypeBytes
}

// Payload is one tagged value of a packet.
type Payload struct {
	Tag   uint16
	Type  PayloadType
	Value []byte
}

// Hex renders the raw value as lowercase hex without prefix or separators.
func (p Payload) Hex() string {
	return hex.EncodeToString(p.Value)
}

func (p Payload) Equal(o Payload) bool {
	return p.Tag == o.Tag && p.Type == o.Type && bytes.Equal(p.Value, o.Value)
}

func (p Payload) clone() Payload {
	value := make([]byte, len(p.Value))
	copy(value, p.Value)
	return Payload{Tag: p.Tag, Type: p.Type, Value: value}
}

func (p Payload) checkWidth(op string, expected PayloadType) error {
	if p.Type != expected {
		return errs.Newf(errs.KindProtocol, op, "tag 0x%04x type mismatch: got %s want %s", p.Tag, p.Type, expected)
	}
	if len(p.Value) != expected.width() {
		return errs.Newf(errs.KindProtocol, op, "tag 0x%04x invalid %s length: %d", p.Tag, expected, len(p.Value))
	}
	return nil
}

// Byte returns the value of a byte payload.
func (p Payload) Byte() (uint8, error) {
	if err := p.checkWidth("payload.byte", TypeByte); err != nil {
		return 0, err
	}
	return p.Value[0], nil
}

// Short returns the value of a short payload.
func (p Payload) Short() (uint16, error) {
	if err := p.checkWidth("payload.short", TypeShort); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(p.Value), nil
}

// Int returns the value of an int payload.
func (p Payload) Int() (uint32, error) {
	if err := p.checkWidth("payload.int", TypeInt); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(p.Value), nil
}

// Long returns the value of a long payload.
func (p Payload) Long() (uint64, error) {
	if err := p.checkWidth("payload.long", TypeLong); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(p.Value), nil
}

// Text returns the value of a text payload.
func (p Payload) Text() (string, error) {
	if p.Type != TypeText {
		return "", errs.Newf(errs.KindProtocol, "payload.text", "tag 0x%04x type mismatch: got %s want text", p.Tag, p.Type)
	}
	return string(p.Value), nil
}

// Bytes returns a copy of the value of a raw-bytes payload.
func (p Payload) Bytes() ([]byte, error) {
	if p.Type != TypeBytes {
		return nil, errs.Newf(errs.KindProtocol, "payload.bytes", "tag 0x%04x type mismatch: got %s want bytes", p.Tag, p.Type)
	}
	buf := make([]byte, len(p.Value))
	copy(buf, p.Value)
	return buf, nil
}

// AsUint widens any integer payload to uint64.
func (p Payload) AsUint() (uint64, error) {
	switch p.Type {
	case TypeByte:
		v, err := p.Byte()
		return uint64(v), err
	case TypeShort:
		v, err := p.Short()
		return uint64(v), err
	case TypeInt:
		v, err := p.Int()
		return uint64(v), err
	case TypeLong:
		return p.Long()
	default:
		return 0, errs.Newf(errs.KindProtocol, "payload.uint", "tag 0x%04x is not an integer payload: %s", p.Tag, p.Type)
	}
}
