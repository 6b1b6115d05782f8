package device

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github/chapool/go-coldwallet/internal/errs"
	"github/chapool/go-coldwallet/internal/protocol"
	"github/chapool/go-coldwallet/internal/util"
)

// DefaultTimeout bounds one exchange when the config leaves it unset.
const DefaultTimeout = 10 * time.Second

// State is the invoker's exchange state.
type State int32

const (
	StateIdle State = iota
	StateSent
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSent:
		return "sent"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "invalid"
	}
}

// Config tunes an Invoker.
type Config struct {
	// Timeout bounds one exchange once the channel has been acquired: the
	// send and the wait for the reply. Time spent queued behind other callers
	// is bounded by the caller's context only.
	Timeout time.Duration
	Metrics *Metrics
}

type reply struct {
	packet *protocol.Packet
	err    error
}

type exchange struct {
	id     string
	seq    uint32
	method uint16
	reply  chan reply
}

// Invoker sends one request at a time over a Transport and matches it to the
// reply delivered through Deliver. Callers queue in arrival order; an
// exchange never interleaves with another.
//
// Every request carries a TagSequence payload. A reply echoing a different
// sequence belongs to an abandoned exchange and is dropped. For replies
// without a sequence, the first frame after an abandoned exchange is
// treated as its late reply and dropped.
type Invoker struct {
	transport Transport
	timeout   time.Duration
	metrics   *Metrics
	logger    zerolog.Logger

	slot     chan struct{}
	lifetime context.Context
	shutdown context.CancelFunc

	mu      sync.Mutex
	state   State
	pending *exchange
	seq     uint32
	stale   bool
}

// NewInvoker creates an invoker on top of transport. The caller wires inbound
// frames to the returned invoker's Deliver and Fail.
func NewInvoker(transport Transport, cfg Config) *Invoker {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	lifetime, shutdown := context.WithCancel(context.Background())

	return &Invoker{
		transport: transport,
		timeout:   timeout,
		metrics:   cfg.Metrics,
		logger:    log.With().Str("component", "invoker").Logger(),
		slot:      make(chan struct{}, 1),
		lifetime:  lifetime,
		shutdown:  shutdown,
		state:     StateIdle,
	}
}

// State returns the current exchange state.
func (inv *Invoker) State() State {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	return inv.state
}

// Invoke sends req and waits for the matching reply.
//
// Failures are classified: KindCancelled when ctx ends or the invoker is
// closed, KindTimeout when the exchange does not complete in time,
// KindTransport when the link fails, KindProtocol for an undecodable or
// mismatched reply and KindDeviceRejected when the reply carries a non-zero
// status.
func (inv *Invoker) Invoke(ctx context.Context, req *protocol.Packet) (*protocol.Packet, error) {
	const op = "invoke"

	if _, err := protocol.Encode(req); err != nil {
		return nil, err
	}

	inv.metrics.enqueue()
	select {
	case inv.slot <- struct{}{}:
		inv.metrics.dequeue()
	case <-ctx.Done():
		inv.metrics.dequeue()
		return nil, contextError(op, ctx.Err())
	case <-inv.lifetime.Done():
		inv.metrics.dequeue()
		return nil, errs.New(errs.KindCancelled, op, "invoker closed")
	}
	defer inv.release()

	if inv.lifetime.Err() != nil {
		return nil, errs.New(errs.KindCancelled, op, "invoker closed")
	}

	req, seq, err := inv.sequence(req)
	if err != nil {
		return nil, err
	}
	ex := &exchange{
		id:     uuid.NewString(),
		seq:    seq,
		method: req.Method(),
		reply:  make(chan reply, 1),
	}
	frame, err := protocol.Encode(req)
	if err != nil {
		return nil, err
	}
	logger := util.LogFromContext(ctx).With().
		Str("component", "invoker").
		Str("exchange_id", ex.id).
		Str("method", MethodLabel(ex.method)).
		Logger()

	start := time.Now()
	resp, err := inv.run(ctx, ex, frame)
	elapsed := time.Since(start)
	inv.metrics.observe(ex.method, elapsed, err)

	if err != nil {
		logger.Debug().Err(err).Dur("elapsed", elapsed).Str("kind", errs.KindOf(err).String()).Msg("Exchange failed")
		return nil, err
	}
	logger.Debug().Dur("elapsed", elapsed).Int("payloads", resp.Len()).Msg("Exchange completed")
	return resp, nil
}

func (inv *Invoker) run(ctx context.Context, ex *exchange, frame []byte) (*protocol.Packet, error) {
	const op = "invoke"

	exCtx, cancel := context.WithTimeout(ctx, inv.timeout)
	defer cancel()
	stop := context.AfterFunc(inv.lifetime, cancel)
	defer stop()

	inv.begin(ex)
	if err := inv.transport.Send(exCtx, frame); err != nil {
		inv.finish(ex, StateFailed, false)
		if exCtx.Err() != nil {
			return nil, inv.abortError(ctx)
		}
		if errs.KindOf(err) != errs.KindUnknown {
			return nil, err
		}
		return nil, errs.Wrap(errs.KindTransport, op, err, "failed to send request")
	}

	select {
	case r := <-ex.reply:
		if r.err != nil {
			inv.finish(ex, StateFailed, false)
			return nil, r.err
		}
		resp, err := checkReply(ex.method, r.packet)
		if err != nil {
			inv.finish(ex, StateFailed, false)
			return nil, err
		}
		inv.finish(ex, StateCompleted, false)
		return resp, nil
	case <-exCtx.Done():
		// the device may still answer this request
		inv.finish(ex, StateFailed, true)
		return nil, inv.abortError(ctx)
	}
}

// abortError classifies an exchange that ended before its reply arrived.
func (inv *Invoker) abortError(ctx context.Context) error {
	const op = "invoke"

	if inv.lifetime.Err() != nil {
		return errs.New(errs.KindCancelled, op, "invoker closed")
	}
	if err := ctx.Err(); err != nil {
		return contextError(op, err)
	}
	return errs.Newf(errs.KindTimeout, op, "exchange did not complete within %s", inv.timeout)
}

// sequence tags req with the next sequence number. A sequence set by the
// caller is kept.
func (inv *Invoker) sequence(req *protocol.Packet) (*protocol.Packet, uint32, error) {
	if pl, ok := req.Payload(protocol.TagSequence); ok {
		seq, err := pl.AsUint()
		if err != nil || seq > math.MaxUint32 {
			return nil, 0, errs.New(errs.KindProtocol, "invoke.sequence", "request carries an invalid sequence payload")
		}
		return req, uint32(seq), nil
	}

	inv.mu.Lock()
	inv.seq++
	seq := inv.seq
	inv.mu.Unlock()

	return req.Builder().AddInt(protocol.TagSequence, seq).Build(), seq, nil
}

func (inv *Invoker) begin(ex *exchange) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	inv.pending = ex
	inv.state = StateSent
}

func (inv *Invoker) finish(ex *exchange, state State, abandoned bool) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	if inv.pending == ex {
		inv.pending = nil
	}
	inv.state = state
	if abandoned {
		inv.stale = true
	}
}

func (inv *Invoker) release() {
	inv.mu.Lock()
	inv.state = StateIdle
	inv.mu.Unlock()
	<-inv.slot
}

// Deliver hands a reply frame to the in-flight exchange. Frames arriving
// with no exchange waiting, and late replies of abandoned exchanges, are
// dropped. An undecodable frame fails the in-flight exchange.
func (inv *Invoker) Deliver(frame []byte) {
	resp, decodeErr := protocol.Decode(frame)

	inv.mu.Lock()
	ex := inv.pending
	late := false
	if decodeErr == nil {
		if pl, ok := resp.Payload(protocol.TagSequence); ok {
			seq, err := pl.AsUint()
			inv.stale = false
			late = err != nil || ex == nil || seq != uint64(ex.seq)
		} else if inv.stale {
			inv.stale = false
			late = true
		}
	}
	inv.mu.Unlock()

	if late {
		inv.logger.Warn().Int("bytes", len(frame)).Msg("Dropping late reply")
		return
	}
	if ex == nil {
		inv.logger.Warn().Int("bytes", len(frame)).Msg("Dropping unsolicited reply")
		return
	}

	r := reply{packet: resp, err: decodeErr}
	select {
	case ex.reply <- r:
	default:
		inv.logger.Warn().Str("exchange_id", ex.id).Int("bytes", len(frame)).Msg("Dropping duplicate reply")
	}
}

// Fail reports a broken link. The in-flight exchange, if any, fails with
// KindTransport.
func (inv *Invoker) Fail(err error) {
	inv.mu.Lock()
	ex := inv.pending
	inv.mu.Unlock()

	if ex == nil {
		inv.logger.Warn().Err(err).Msg("Link failed while idle")
		return
	}

	select {
	case ex.reply <- reply{err: errs.Wrap(errs.KindTransport, "receive", err, "link failed")}:
	default:
	}
}

// Close cancels the in-flight exchange, including a send still in progress,
// and every queued caller. It is safe to call more than once.
func (inv *Invoker) Close() {
	inv.shutdown()
}

func checkReply(method uint16, resp *protocol.Packet) (*protocol.Packet, error) {
	const op = "invoke.reply"

	if resp.Method() != method {
		return nil, errs.Newf(errs.KindProtocol, op, "reply method 0x%04x does not match request 0x%04x", resp.Method(), method)
	}

	status, ok := resp.Payload(protocol.TagStatus)
	if !ok {
		return resp, nil
	}
	code, err := status.AsUint()
	if err != nil {
		return nil, err
	}
	if code == protocol.StatusOK {
		return resp, nil
	}

	var reason string
	if msg, ok := resp.Payload(protocol.TagStatusMessage); ok {
		reason, _ = msg.Text()
	}
	return nil, errs.Rejected(op, int(code), reason)
}

func contextError(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return errs.Wrap(errs.KindTimeout, op, err, "deadline exceeded")
	}
	return errs.Wrap(errs.KindCancelled, op, err, "cancelled")
}
