package protocol

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github/chapool/go-coldwallet/internal/errs"
)

// Packet is one protocol message. Packets are immutable once built; use
// Builder to create them.
type Packet struct {
	method   uint16
	payloads []Payload
}

// Method returns the packet's method code.
func (p *Packet) Method() uint16 {
	return p.method
}

// Payloads returns a deep copy of the payload list in wire order.
func (p *Packet) Payloads() []Payload {
	return clonePayloads(p.payloads)
}

// Len returns the number of payloads.
func (p *Packet) Len() int {
	return len(p.payloads)
}

// Payload returns a copy of the first payload carrying tag. The boolean is
// false when the tag is absent.
func (p *Packet) Payload(tag uint16) (Payload, bool) {
	for _, pl := range p.payloads {
		if pl.Tag == tag {
			return pl.clone(), true
		}
	}
	return Payload{}, false
}

// Require returns the first payload carrying tag, or a KindUnknownTag error
// when the tag is absent.
func (p *Packet) Require(tag uint16) (Payload, error) {
	pl, ok := p.Payload(tag)
	if !ok {
		return Payload{}, errs.Newf(errs.KindUnknownTag, "packet.require", "method 0x%04x has no payload with tag 0x%04x", p.method, tag)
	}
	return pl, nil
}

// Equal reports whether both packets carry the same method and payloads in
// the same order.
func (p *Packet) Equal(o *Packet) bool {
	if p == nil || o == nil {
		return p == o
	}
	if p.method != o.method || len(p.payloads) != len(o.payloads) {
		return false
	}
	for i := range p.payloads {
		if !p.payloads[i].Equal(o.payloads[i]) {
			return false
		}
	}
	return true
}

// String renders the packet for logs. Text and bytes values are shown by
// length only.
func (p *Packet) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "method=0x%04x", p.method)
	for _, pl := range p.payloads {
		switch pl.Type {
		case TypeText, TypeBytes:
			fmt.Fprintf(&b, " [0x%04x %s len=%d]", pl.Tag, pl.Type, len(pl.Value))
		default:
			v, _ := pl.AsUint()
			fmt.Fprintf(&b, " [0x%04x %s %d]", pl.Tag, pl.Type, v)
		}
	}
	return b.String()
}

// Builder accumulates payloads for one packet.
type Builder struct {
	method   uint16
	payloads []Payload
}

// NewBuilder starts a packet for method.
func NewBuilder(method uint16) *Builder {
	return &Builder{method: method}
}

// Builder returns a builder seeded with a copy of p's method and payloads.
func (p *Packet) Builder() *Builder {
	return &Builder{method: p.method, payloads: clonePayloads(p.payloads)}
}

func (b *Builder) add(tag uint16, t PayloadType, value []byte) *Builder {
	b.payloads = append(b.payloads, Payload{Tag: tag, Type: t, Value: value})
	return b
}

func (b *Builder) AddByte(tag uint16, v uint8) *Builder {
	return b.add(tag, TypeByte, []byte{v})
}

func (b *Builder) AddShort(tag uint16, v uint16) *Builder {
	buf := make([]byte, 2)
	binary.BigEndian.PutUint16(buf, v)
	return b.add(tag, TypeShort, buf)
}

func (b *Builder) AddInt(tag uint16, v uint32) *Builder {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, v)
	return b.add(tag, TypeInt, buf)
}

func (b *Builder) AddLong(tag uint16, v uint64) *Builder {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, v)
	return b.add(tag, TypeLong, buf)
}

func (b *Builder) AddText(tag uint16, v string) *Builder {
	return b.add(tag, TypeText, []byte(v))
}

func (b *Builder) AddBytes(tag uint16, v []byte) *Builder {
	buf := make([]byte, len(v))
	copy(buf, v)
	return b.add(tag, TypeBytes, buf)
}

// AddPayload appends a copy of pl.
func (b *Builder) AddPayload(pl Payload) *Builder {
	c := pl.clone()
	return b.add(c.Tag, c.Type, c.Value)
}

// Build returns an immutable packet. Later calls on the builder do not
// affect packets already built.
func (b *Builder) Build() *Packet {
	return &Packet{method: b.method, payloads: clonePayloads(b.payloads)}
}

func clonePayloads(in []Payload) []Payload {
	out := make([]Payload, len(in))
	for i, pl := range in {
		out[i] = pl.clone()
	}
	return out
}
