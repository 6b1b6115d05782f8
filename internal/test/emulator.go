package test

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github/chapool/go-coldwallet/internal/device"
	"github/chapool/go-coldwallet/internal/protocol"
)

// Fixture data served by a default Emulator.
const (
	FirmwareVersion = "1.2.3-emulator"
	Mnemonic        = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"
	// LitecoinXPub is the account key of the known Litecoin derivation vector.
	LitecoinXPub = "xpub6CKt97v4gEsG4FG9E4hEotEUtjmW8rAvVcUJ4jsmdrB437WBZnK8gs8ktzaFQHe9i7NqzcAUkc5SeNXsVoYfVNxd1AwDgbw2up8UdMWq91B"
)

// Status codes returned by the emulator.
const (
	StatusUnknownMethod  = 0x01
	StatusMnemonicWrong  = 0x12
	StatusMalformedInput = 0x20
)

// Handler computes the reply to one request. A nil reply means the device
// stays silent.
type Handler func(req *protocol.Packet) *protocol.Packet

// Emulator is an in-memory secure element. It implements device.Transport
// and answers asynchronously through the attached device.Receiver.
type Emulator struct {
	mu       sync.Mutex
	recv     device.Receiver
	handlers map[uint16]Handler
	requests []*protocol.Packet
	sendErr  error
	delay    time.Duration
	xpubs    map[string]string
	logger   zerolog.Logger
}

// NewEmulator returns an emulator answering firmware, entropy, mnemonic
// and extended public key requests.
func NewEmulator() *Emulator {
	e := &Emulator{
		handlers: make(map[uint16]Handler),
		xpubs:    make(map[string]string),
		logger:   log.With().Str("component", "emulator").Logger(),
	}
	e.handlers[protocol.MethodGetFirmwareVersion] = e.firmware
	e.handlers[protocol.MethodGetRandomEntropy] = e.entropy
	e.handlers[protocol.MethodVerifyMnemonic] = e.verifyMnemonic
	e.handlers[protocol.MethodGetExtendedPublicKey] = e.xpub
	return e
}

// Attach sets the receiver that replies are delivered to.
func (e *Emulator) Attach(recv device.Receiver) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.recv = recv
}

// Handle overrides the handler for method.
func (e *Emulator) Handle(method uint16, h Handler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers[method] = h
}

// SetXPub registers the account key returned for path.
func (e *Emulator) SetXPub(path string, xpub string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.xpubs[path] = xpub
}

// SetDelay delays every reply by d.
func (e *Emulator) SetDelay(d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.delay = d
}

// FailSends makes Send return err until called again with nil.
func (e *Emulator) FailSends(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sendErr = err
}

// Requests returns every request received so far, in order.
func (e *Emulator) Requests() []*protocol.Packet {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*protocol.Packet, len(e.requests))
	copy(out, e.requests)
	return out
}

func (e *Emulator) Send(_ context.Context, frame []byte) error {
	e.mu.Lock()
	if e.sendErr != nil {
		err := e.sendErr
		e.mu.Unlock()
		return err
	}
	recv := e.recv
	delay := e.delay
	e.mu.Unlock()

	resp := e.Reply(frame)
	if resp == nil || recv == nil {
		return nil
	}

	go func() {
		if delay > 0 {
			time.Sleep(delay)
		}
		recv.Deliver(resp)
	}()
	return nil
}

// Reply decodes one request frame, records it and returns the encoded
// reply, or nil when the device stays silent.
func (e *Emulator) Reply(frame []byte) []byte {
	req, err := protocol.Decode(frame)
	if err != nil {
		return mustEncode(status(0, StatusMalformedInput, err.Error()))
	}

	e.mu.Lock()
	e.requests = append(e.requests, req)
	h, ok := e.handlers[req.Method()]
	e.mu.Unlock()

	if !ok {
		return mustEncode(echoSequence(req, status(req.Method(), StatusUnknownMethod, "unknown method")))
	}
	resp := h(req)
	if resp == nil {
		return nil
	}
	return mustEncode(echoSequence(req, resp))
}

// echoSequence copies the request's sequence payload into resp unless the
// handler set one itself.
func echoSequence(req *protocol.Packet, resp *protocol.Packet) *protocol.Packet {
	seq, ok := req.Payload(protocol.TagSequence)
	if !ok {
		return resp
	}
	if _, set := resp.Payload(protocol.TagSequence); set {
		return resp
	}
	return resp.Builder().AddPayload(seq).Build()
}

// ServeConn answers framed requests on conn until it closes. It logs with
// the logger captured by NewEmulator, so reconfiguring the global logger
// meanwhile does not touch connections being served.
func (e *Emulator) ServeConn(conn net.Conn) {
	st := device.NewStreamTransport(conn, 0, device.WithLogger(e.logger))
	_ = st.Serve(&connResponder{emu: e, st: st})
	_ = st.Close()
}

// Listen serves the emulator on a loopback TCP port for the duration of t.
func (e *Emulator) Listen(t *testing.T) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go e.ServeConn(conn)
		}
	}()

	return ln.Addr().String()
}

type connResponder struct {
	emu *Emulator
	st  *device.StreamTransport
}

func (r *connResponder) Deliver(frame []byte) {
	resp := r.emu.Reply(frame)
	if resp == nil {
		return
	}
	_ = r.st.Send(context.Background(), resp)
}

func (r *connResponder) Fail(error) {}

func (e *Emulator) firmware(req *protocol.Packet) *protocol.Packet {
	return ok(req.Method()).AddText(protocol.TagFirmwareVersion, FirmwareVersion).Build()
}

func (e *Emulator) entropy(req *protocol.Packet) *protocol.Packet {
	pl, found := req.Payload(protocol.TagEntropyType)
	if !found {
		return status(req.Method(), StatusMalformedInput, "missing entropy type")
	}
	bits, err := pl.Short()
	if err != nil || bits%8 != 0 {
		return status(req.Method(), StatusMalformedInput, "bad entropy type")
	}

	entropy := make([]byte, bits/8)
	for i := range entropy {
		entropy[i] = byte(i*7 + 3)
	}

	b := ok(req.Method()).AddBytes(protocol.TagEntropy, entropy)
	if flag, found := req.Payload(protocol.TagEntropyChecksum); found {
		if v, _ := flag.Byte(); v != 0 {
			b.AddBytes(protocol.TagEntropyChecksum, protocol.Checksum(entropy))
		}
	}
	return b.Build()
}

func (e *Emulator) verifyMnemonic(req *protocol.Packet) *protocol.Packet {
	pl, found := req.Payload(protocol.TagMnemonic)
	if !found {
		return status(req.Method(), StatusMalformedInput, "missing mnemonic")
	}
	words, _ := pl.Text()
	if words != Mnemonic {
		return status(req.Method(), StatusMnemonicWrong, "mnemonic does not match")
	}
	return ok(req.Method()).Build()
}

func (e *Emulator) xpub(req *protocol.Packet) *protocol.Packet {
	pl, found := req.Payload(protocol.TagPath)
	if !found {
		return status(req.Method(), StatusMalformedInput, "missing path")
	}
	path, _ := pl.Text()

	e.mu.Lock()
	xpub, known := e.xpubs[path]
	e.mu.Unlock()
	if !known {
		xpub = LitecoinXPub
	}
	return ok(req.Method()).AddText(protocol.TagExtendedPublicKey, xpub).Build()
}

func ok(method uint16) *protocol.Builder {
	return protocol.NewBuilder(method).AddByte(protocol.TagStatus, 0)
}

func status(method uint16, code uint8, msg string) *protocol.Packet {
	return protocol.NewBuilder(method).
		AddByte(protocol.TagStatus, code).
		AddText(protocol.TagStatusMessage, msg).
		Build()
}

func mustEncode(p *protocol.Packet) []byte {
	b, err := protocol.Encode(p)
	if err != nil {
		panic(err)
	}
	return b
}
