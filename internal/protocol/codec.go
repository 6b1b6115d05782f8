package protocol

import (
	"encoding/binary"
	"math"

	"github/chapool/go-coldwallet/internal/errs"
)

// Wire layout, big-endian throughout:
//
//	method u16 | { tag u16 | type u8 | length u32 | value[length] }*
const (
	methodLen        = 2
	payloadHeaderLen = 2 + 1 + 4
)

// Encode serializes p into its wire form.
func Encode(p *Packet) ([]byte, error) {
	if p == nil {
		return nil, errs.New(errs.KindProtocol, "encode", "nil packet")
	}
	size := methodLen
	for _, pl := range p.payloads {
		if uint64(len(pl.Value)) > math.MaxUint32 {
			return nil, errs.Newf(errs.KindProtocol, "encode", "tag 0x%04x value too large: %d", pl.Tag, len(pl.Value))
		}
		size += payloadHeaderLen + len(pl.Value)
	}

	buf := make([]byte, size)
	binary.BigEndian.PutUint16(buf[0:2], p.method)
	i := methodLen
	for _, pl := range p.payloads {
		binary.BigEndian.PutUint16(buf[i:i+2], pl.Tag)
		buf[i+2] = byte(pl.Type)
		binary.BigEndian.PutUint32(buf[i+3:i+7], uint32(len(pl.Value)))
		i += payloadHeaderLen
		copy(buf[i:], pl.Value)
		i += len(pl.Value)
	}
	return buf, nil
}

// Decode parses one packet from its wire form. The whole of b must be
// consumed; trailing bytes are a protocol error.
func Decode(b []byte) (*Packet, error) {
	if len(b) < methodLen {
		return nil, errs.Newf(errs.KindProtocol, "decode", "short packet: %d bytes", len(b))
	}
	p := &Packet{method: binary.BigEndian.Uint16(b[0:2])}

	for i := methodLen; i < len(b); {
		if len(b)-i < payloadHeaderLen {
			return nil, errs.Newf(errs.KindProtocol, "decode", "truncated payload header at offset %d", i)
		}
		tag := binary.BigEndian.Uint16(b[i : i+2])
		t := PayloadType(b[i+2])
		length := binary.BigEndian.Uint32(b[i+3 : i+7])
		i += payloadHeaderLen

		if !t.valid() {
			return nil, errs.Newf(errs.KindProtocol, "decode", "tag 0x%04x has unknown type id %d", tag, uint8(t))
		}
		if uint64(length) > uint64(len(b)-i) {
			return nil, errs.Newf(errs.KindProtocol, "decode", "tag 0x%04x value truncated: want %d have %d", tag, length, len(b)-i)
		}
		if w := t.width(); w != 0 && int(length) != w {
			return nil, errs.Newf(errs.KindProtocol, "decode", "tag 0x%04x invalid %s length: %d", tag, t, length)
		}

		value := make([]byte, length)
		copy(value, b[i:i+int(length)])
		i += int(length)
		p.payloads = append(p.payloads, Payload{Tag: tag, Type: t, Value: value})
	}
	return p, nil
}
