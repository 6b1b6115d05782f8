package device_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-coldwallet/internal/device"
	"github/chapool/go-coldwallet/internal/errs"
	"github/chapool/go-coldwallet/internal/protocol"
	"github/chapool/go-coldwallet/internal/test"
)

func silent(*protocol.Packet) *protocol.Packet { return nil }

func waitForState(t *testing.T, inv *device.Invoker, want device.State) {
	t.Helper()
	require.Eventually(t, func() bool { return inv.State() == want }, time.Second, time.Millisecond)
}

func TestInvokeRoundTrip(t *testing.T) {
	test.WithTestInvoker(t, func(inv *device.Invoker, emu *test.Emulator) {
		assert.Equal(t, device.StateIdle, inv.State())

		resp, err := inv.Invoke(t.Context(), protocol.NewBuilder(protocol.MethodGetFirmwareVersion).Build())
		require.NoError(t, err)
		assert.Equal(t, protocol.MethodGetFirmwareVersion, resp.Method())

		pl, ok := resp.Payload(protocol.TagFirmwareVersion)
		require.True(t, ok)
		version, err := pl.Text()
		require.NoError(t, err)
		assert.Equal(t, test.FirmwareVersion, version)

		assert.Equal(t, device.StateIdle, inv.State())
		assert.Len(t, emu.Requests(), 1)
	})
}

func TestInvokeDeviceRejected(t *testing.T) {
	test.WithTestInvoker(t, func(inv *device.Invoker, _ *test.Emulator) {
		err := device.VerifyMnemonic(t.Context(), inv, "wrong words")
		require.Error(t, err)
		assert.True(t, errs.Is(err, errs.KindDeviceRejected))
		assert.ErrorIs(t, err, errs.ErrDeviceRejected)
		assert.False(t, errs.IsRetryable(err))

		code, ok := errs.Code(err)
		require.True(t, ok)
		assert.Equal(t, test.StatusMnemonicWrong, code)
		assert.Contains(t, err.Error(), "mnemonic does not match")

		require.NoError(t, device.VerifyMnemonic(t.Context(), inv, test.Mnemonic))
	})
}

func TestInvokeTimeout(t *testing.T) {
	inv, emu := test.NewTestInvoker(t, 30*time.Millisecond)
	emu.Handle(protocol.MethodGetFirmwareVersion, silent)

	_, err := device.GetFirmwareVersion(t.Context(), inv)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindTimeout), "got %v", err)
	assert.True(t, errs.IsRetryable(err))
	assert.Equal(t, device.StateIdle, inv.State())

	// the channel is usable again after a timeout
	emu.Handle(protocol.MethodGetFirmwareVersion, func(req *protocol.Packet) *protocol.Packet {
		return protocol.NewBuilder(req.Method()).AddText(protocol.TagFirmwareVersion, "again").Build()
	})
	version, err := device.GetFirmwareVersion(t.Context(), inv)
	require.NoError(t, err)
	assert.Equal(t, "again", version)
}

func TestInvokeCallerDeadline(t *testing.T) {
	inv, emu := test.NewTestInvoker(t, time.Minute)
	emu.Handle(protocol.MethodGetFirmwareVersion, silent)

	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()

	_, err := device.GetFirmwareVersion(ctx, inv)
	assert.True(t, errs.Is(err, errs.KindTimeout), "got %v", err)
}

func TestInvokeSendFailure(t *testing.T) {
	test.WithTestInvoker(t, func(inv *device.Invoker, emu *test.Emulator) {
		emu.FailSends(errors.New("link down"))

		_, err := device.GetFirmwareVersion(t.Context(), inv)
		require.Error(t, err)
		assert.True(t, errs.Is(err, errs.KindTransport), "got %v", err)
		assert.Contains(t, err.Error(), "link down")
		assert.Equal(t, device.StateIdle, inv.State())
	})
}

func TestInvokeLinkFailureWhileWaiting(t *testing.T) {
	inv, emu := test.NewTestInvoker(t, time.Minute)
	emu.Handle(protocol.MethodGetFirmwareVersion, silent)

	errCh := make(chan error, 1)
	go func() {
		_, err := device.GetFirmwareVersion(t.Context(), inv)
		errCh <- err
	}()

	waitForState(t, inv, device.StateSent)
	inv.Fail(errors.New("usb unplugged"))

	err := <-errCh
	assert.True(t, errs.Is(err, errs.KindTransport), "got %v", err)
	assert.Contains(t, err.Error(), "usb unplugged")
}

func TestInvokeCancelled(t *testing.T) {
	inv, emu := test.NewTestInvoker(t, time.Minute)
	emu.Handle(protocol.MethodGetFirmwareVersion, silent)

	ctx, cancel := context.WithCancel(t.Context())
	errCh := make(chan error, 1)
	go func() {
		_, err := device.GetFirmwareVersion(ctx, inv)
		errCh <- err
	}()

	waitForState(t, inv, device.StateSent)
	cancel()

	err := <-errCh
	assert.True(t, errs.Is(err, errs.KindCancelled), "got %v", err)
	waitForState(t, inv, device.StateIdle)
}

func TestCloseReleasesInFlightAndQueued(t *testing.T) {
	inv, emu := test.NewTestInvoker(t, time.Minute)
	emu.Handle(protocol.MethodGetFirmwareVersion, silent)

	const callers = 4
	var wg sync.WaitGroup
	results := make(chan error, callers)
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := device.GetFirmwareVersion(context.Background(), inv)
			results <- err
		}()
	}

	waitForState(t, inv, device.StateSent)
	inv.Close()
	wg.Wait()
	close(results)

	for err := range results {
		assert.True(t, errs.Is(err, errs.KindCancelled), "got %v", err)
	}

	_, err := device.GetFirmwareVersion(t.Context(), inv)
	assert.True(t, errs.Is(err, errs.KindCancelled))
	inv.Close()
}

func TestQueuedCallerCancelled(t *testing.T) {
	inv, emu := test.NewTestInvoker(t, time.Minute)
	emu.Handle(protocol.MethodGetFirmwareVersion, silent)

	go func() {
		_, _ = device.GetFirmwareVersion(context.Background(), inv)
	}()
	waitForState(t, inv, device.StateSent)

	ctx, cancel := context.WithCancel(t.Context())
	errCh := make(chan error, 1)
	go func() {
		_, err := device.GetFirmwareVersion(ctx, inv)
		errCh <- err
	}()
	time.Sleep(10 * time.Millisecond)
	cancel()

	err := <-errCh
	assert.True(t, errs.Is(err, errs.KindCancelled), "got %v", err)
	assert.Len(t, emu.Requests(), 1, "queued caller never reached the device")
}

// tagEcho is outside the reserved tag catalog.
const tagEcho uint16 = 0x0900

// echoTransport answers every request with a packet carrying the request's
// sequence payload and flags overlapping exchanges.
type echoTransport struct {
	inv     *device.Invoker
	active  atomic.Int32
	overlap atomic.Bool
}

func (e *echoTransport) Send(_ context.Context, frame []byte) error {
	if e.active.Add(1) > 1 {
		e.overlap.Store(true)
	}
	req, err := protocol.Decode(frame)
	if err != nil {
		return err
	}
	seq, _ := req.Payload(tagEcho)
	go func() {
		time.Sleep(time.Millisecond)
		reply, _ := protocol.Encode(protocol.NewBuilder(req.Method()).AddBytes(tagEcho, seq.Value).Build())
		e.active.Add(-1)
		e.inv.Deliver(reply)
	}()
	return nil
}

func TestConcurrentInvokeIsSerialized(t *testing.T) {
	transport := &echoTransport{}
	inv := device.NewInvoker(transport, device.Config{Timeout: 5 * time.Second})
	transport.inv = inv
	defer inv.Close()

	const callers = 16
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func(seq byte) {
			defer wg.Done()
			resp, err := inv.Invoke(context.Background(), protocol.NewBuilder(0x0900).AddBytes(tagEcho, []byte{seq}).Build())
			if !assert.NoError(t, err) {
				return
			}
			pl, ok := resp.Payload(tagEcho)
			if assert.True(t, ok) {
				assert.Equal(t, []byte{seq}, pl.Value, "reply matched to the wrong caller")
			}
		}(byte(i))
	}
	wg.Wait()

	assert.False(t, transport.overlap.Load(), "exchanges interleaved on the channel")
}

func TestReplyMethodMismatch(t *testing.T) {
	test.WithTestInvoker(t, func(inv *device.Invoker, emu *test.Emulator) {
		emu.Handle(protocol.MethodGetFirmwareVersion, func(*protocol.Packet) *protocol.Packet {
			return protocol.NewBuilder(protocol.MethodVerifyMnemonic).Build()
		})

		_, err := device.GetFirmwareVersion(t.Context(), inv)
		assert.True(t, errs.Is(err, errs.KindProtocol), "got %v", err)
	})
}

func TestUndecodableReply(t *testing.T) {
	var inv *device.Invoker
	inv = device.NewInvoker(device.TransportFunc(func(context.Context, []byte) error {
		go inv.Deliver([]byte{0x01})
		return nil
	}), device.Config{Timeout: time.Second})
	defer inv.Close()

	_, err := inv.Invoke(t.Context(), protocol.NewBuilder(1).Build())
	assert.True(t, errs.Is(err, errs.KindProtocol), "got %v", err)
}

func TestMissingReplyTagIsUnknownTag(t *testing.T) {
	test.WithTestInvoker(t, func(inv *device.Invoker, emu *test.Emulator) {
		emu.Handle(protocol.MethodGetFirmwareVersion, func(req *protocol.Packet) *protocol.Packet {
			return protocol.NewBuilder(req.Method()).AddByte(protocol.TagStatus, 0).Build()
		})

		_, err := device.GetFirmwareVersion(t.Context(), inv)
		assert.True(t, errs.Is(err, errs.KindUnknownTag), "got %v", err)
	})
}

func TestUnsolicitedReplyIsDropped(t *testing.T) {
	test.WithTestInvoker(t, func(inv *device.Invoker, _ *test.Emulator) {
		stray, err := protocol.Encode(protocol.NewBuilder(protocol.MethodGetFirmwareVersion).
			AddText(protocol.TagFirmwareVersion, "stale").Build())
		require.NoError(t, err)

		inv.Deliver(stray)
		inv.Fail(errors.New("noise"))
		assert.Equal(t, device.StateIdle, inv.State())

		version, err := device.GetFirmwareVersion(t.Context(), inv)
		require.NoError(t, err)
		assert.Equal(t, test.FirmwareVersion, version)
	})
}

func TestInvokerMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := device.NewMetrics(reg)
	require.NoError(t, err)

	emu := test.NewEmulator()
	inv := device.NewInvoker(emu, device.Config{Timeout: time.Second, Metrics: metrics})
	emu.Attach(inv)
	defer inv.Close()

	_, err = device.GetFirmwareVersion(t.Context(), inv)
	require.NoError(t, err)
	err = device.VerifyMnemonic(t.Context(), inv, "nope")
	require.Error(t, err)

	counter := metrics.ExchangeCounter()
	assert.InDelta(t, 1, testutil.ToFloat64(counter.WithLabelValues(device.MethodLabel(protocol.MethodGetFirmwareVersion), "ok")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(counter.WithLabelValues(device.MethodLabel(protocol.MethodVerifyMnemonic), "device_rejected")), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(metrics.QueueGauge()), 0)

	_, err = device.NewMetrics(reg)
	assert.Error(t, err, "registering twice fails")
}

func TestResultLabel(t *testing.T) {
	assert.Equal(t, "ok", device.ResultLabel(nil))
	assert.Equal(t, "timeout", device.ResultLabel(errs.New(errs.KindTimeout, "op", "slow")))
	assert.Equal(t, "unknown", device.ResultLabel(errors.New("plain")))
}

// stalledTransport never completes a send until ctx ends.
func stalledTransport(started chan<- struct{}) device.TransportFunc {
	return func(ctx context.Context, _ []byte) error {
		if started != nil {
			started <- struct{}{}
		}
		<-ctx.Done()
		return ctx.Err()
	}
}

func TestStalledSendIsBoundedByTimeout(t *testing.T) {
	inv := device.NewInvoker(stalledTransport(nil), device.Config{Timeout: 50 * time.Millisecond})
	defer inv.Close()

	errCh := make(chan error, 1)
	go func() {
		_, err := inv.Invoke(context.Background(), protocol.NewBuilder(protocol.MethodGetFirmwareVersion).Build())
		errCh <- err
	}()

	select {
	case err := <-errCh:
		assert.True(t, errs.Is(err, errs.KindTimeout), "got %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("invoke outlived the exchange timeout while the send was stalled")
	}
	assert.Equal(t, device.StateIdle, inv.State())
}

func TestCloseReleasesStalledSend(t *testing.T) {
	started := make(chan struct{}, 1)
	inv := device.NewInvoker(stalledTransport(started), device.Config{Timeout: time.Minute})

	const callers = 3
	results := make(chan error, callers)
	for range callers {
		go func() {
			_, err := inv.Invoke(context.Background(), protocol.NewBuilder(protocol.MethodGetFirmwareVersion).Build())
			results <- err
		}()
	}

	<-started
	inv.Close()

	for range callers {
		select {
		case err := <-results:
			assert.True(t, errs.Is(err, errs.KindCancelled), "got %v", err)
		case <-time.After(2 * time.Second):
			t.Fatal("caller still blocked after Close")
		}
	}
}

func TestLateReplyWithoutSequenceIsDropped(t *testing.T) {
	firmware := func(version string) []byte {
		b, err := protocol.Encode(protocol.NewBuilder(protocol.MethodGetFirmwareVersion).
			AddText(protocol.TagFirmwareVersion, version).Build())
		require.NoError(t, err)
		return b
	}

	var (
		inv   *device.Invoker
		sends atomic.Int32
	)
	inv = device.NewInvoker(device.TransportFunc(func(context.Context, []byte) error {
		if sends.Add(1) == 1 {
			// the first request is answered only after it was abandoned
			return nil
		}
		go func() {
			inv.Deliver(firmware("reply-to-first"))
			inv.Deliver(firmware("reply-to-second"))
		}()
		return nil
	}), device.Config{Timeout: 30 * time.Millisecond})
	defer inv.Close()

	_, err := device.GetFirmwareVersion(t.Context(), inv)
	require.True(t, errs.Is(err, errs.KindTimeout), "got %v", err)

	version, err := device.GetFirmwareVersion(t.Context(), inv)
	require.NoError(t, err)
	assert.Equal(t, "reply-to-second", version)
}

func TestLateReplyWithSequenceIsDropped(t *testing.T) {
	inv, emu := test.NewTestInvoker(t, time.Second)
	emu.SetDelay(100 * time.Millisecond)
	emu.Handle(protocol.MethodGetFirmwareVersion, func(req *protocol.Packet) *protocol.Packet {
		return protocol.NewBuilder(req.Method()).AddText(protocol.TagFirmwareVersion, "reply-to-first").Build()
	})

	ctx, cancel := context.WithTimeout(t.Context(), 30*time.Millisecond)
	defer cancel()
	_, err := device.GetFirmwareVersion(ctx, inv)
	require.True(t, errs.Is(err, errs.KindTimeout), "got %v", err)

	// the first reply lands while the second exchange is in flight
	emu.Handle(protocol.MethodGetFirmwareVersion, func(req *protocol.Packet) *protocol.Packet {
		return protocol.NewBuilder(req.Method()).AddText(protocol.TagFirmwareVersion, "reply-to-second").Build()
	})
	version, err := device.GetFirmwareVersion(t.Context(), inv)
	require.NoError(t, err)
	assert.Equal(t, "reply-to-second", version)

	reqs := emu.Requests()
	require.Len(t, reqs, 2)
	first, ok := reqs[0].Payload(protocol.TagSequence)
	require.True(t, ok)
	second, ok := reqs[1].Payload(protocol.TagSequence)
	require.True(t, ok)
	assert.NotEqual(t, first.Value, second.Value)
}

func TestInvalidCallerSequence(t *testing.T) {
	test.WithTestInvoker(t, func(inv *device.Invoker, emu *test.Emulator) {
		req := protocol.NewBuilder(protocol.MethodGetFirmwareVersion).AddText(protocol.TagSequence, "x").Build()
		_, err := inv.Invoke(t.Context(), req)
		assert.True(t, errs.Is(err, errs.KindProtocol), "got %v", err)
		assert.Empty(t, emu.Requests())
	})
}
