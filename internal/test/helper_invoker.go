package test

import (
	"testing"
	"time"

	"github/chapool/go-coldwallet/internal/device"
)

// WithTestInvoker runs closure with an invoker wired to a fresh in-memory
// emulator. The invoker is closed when closure returns.
func WithTestInvoker(t *testing.T, closure func(inv *device.Invoker, emu *Emulator)) {
	t.Helper()

	inv, emu := NewTestInvoker(t, time.Second)
	closure(inv, emu)
}

// NewTestInvoker creates an emulator-backed invoker with the given reply
// timeout. It is closed on test cleanup.
func NewTestInvoker(t *testing.T, timeout time.Duration) (*device.Invoker, *Emulator) {
	t.Helper()

	emu := NewEmulator()
	inv := device.NewInvoker(emu, device.Config{Timeout: timeout})
	emu.Attach(inv)
	t.Cleanup(inv.Close)

	return inv, emu
}
