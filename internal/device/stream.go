package device

import (
	"context"
	"encoding/binary"
	"io"
	"net"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github/chapool/go-coldwallet/internal/errs"
)

// DefaultMaxFrameSize caps inbound frames when unset.
const DefaultMaxFrameSize = 1 << 20

const frameHeaderLen = 4

// ErrTransportClosed is returned by Send after the stream has been closed or
// its read loop has stopped.
var ErrTransportClosed = errors.New("transport closed")

// StreamTransport frames packets over a byte stream: every frame is preceded
// by its length as a big-endian u32.
type StreamTransport struct {
	conn         io.ReadWriteCloser
	maxFrameSize int
	logger       zerolog.Logger

	writeMu sync.Mutex

	mu     sync.Mutex
	err    error
	closed chan struct{}
	once   sync.Once
}

// StreamOption configures a StreamTransport.
type StreamOption func(*streamOptions)

type streamOptions struct {
	logger *zerolog.Logger
}

// WithLogger sets the transport's logger instead of deriving one from the
// global logger.
func WithLogger(logger zerolog.Logger) StreamOption {
	return func(o *streamOptions) {
		o.logger = &logger
	}
}

// NewStreamTransport wraps conn. A maxFrameSize <= 0 selects
// DefaultMaxFrameSize.
func NewStreamTransport(conn io.ReadWriteCloser, maxFrameSize int, opts ...StreamOption) *StreamTransport {
	if maxFrameSize <= 0 {
		maxFrameSize = DefaultMaxFrameSize
	}

	var o streamOptions
	for _, opt := range opts {
		opt(&o)
	}
	var logger zerolog.Logger
	if o.logger != nil {
		logger = *o.logger
	} else {
		logger = log.With().Str("component", "stream_transport").Logger()
	}

	return &StreamTransport{
		conn:         conn,
		maxFrameSize: maxFrameSize,
		logger:       logger,
		closed:       make(chan struct{}),
	}
}

// Dial connects to a device (or emulator) listening on a TCP address.
func Dial(ctx context.Context, addr string, timeout time.Duration, maxFrameSize int) (*StreamTransport, error) {
	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, errs.Wrap(errs.KindTransport, "dial", err, "failed to connect to device at "+addr)
	}
	return NewStreamTransport(conn, maxFrameSize), nil
}

// Send writes one length-prefixed frame.
func (s *StreamTransport) Send(ctx context.Context, frame []byte) error {
	const op = "stream.send"

	if err := s.Err(); err != nil {
		return errs.Wrap(errs.KindTransport, op, err, "link unavailable")
	}
	if len(frame) > s.maxFrameSize {
		return errs.Newf(errs.KindProtocol, op, "frame of %d bytes exceeds limit %d", len(frame), s.maxFrameSize)
	}

	buf := make([]byte, frameHeaderLen+len(frame))
	binary.BigEndian.PutUint32(buf, uint32(len(frame)))
	copy(buf[frameHeaderLen:], frame)

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if c, ok := s.conn.(net.Conn); ok {
		deadline, _ := ctx.Deadline()
		_ = c.SetWriteDeadline(deadline)

		// cancellation unblocks a pending write
		fired := make(chan struct{})
		stop := context.AfterFunc(ctx, func() {
			_ = c.SetWriteDeadline(time.Now())
			close(fired)
		})
		defer func() {
			if !stop() {
				<-fired
			}
			_ = c.SetWriteDeadline(time.Time{})
		}()
	}

	n, err := s.conn.Write(buf)
	if err != nil {
		if n > 0 {
			// a partial frame desynchronizes the peer's reader
			s.setErr(errors.Wrap(err, "partial frame written"))
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return contextError(op, ctxErr)
		}
		return errs.Wrap(errs.KindTransport, op, err, "failed to write frame")
	}
	return nil
}

// Serve reads frames until the stream ends and hands them to recv. A read
// failure other than a local Close is reported through recv.Fail. Serve
// returns when the read loop stops.
func (s *StreamTransport) Serve(recv Receiver) error {
	for {
		frame, err := s.readFrame()
		if err != nil {
			select {
			case <-s.closed:
				s.setErr(ErrTransportClosed)
				return nil
			default:
			}
			s.setErr(err)
			s.logger.Debug().Err(err).Msg("Read loop stopped")
			recv.Fail(err)
			return err
		}
		recv.Deliver(frame)
	}
}

// Start runs Serve in its own goroutine.
func (s *StreamTransport) Start(recv Receiver) {
	go func() {
		_ = s.Serve(recv)
	}()
}

func (s *StreamTransport) readFrame() ([]byte, error) {
	var header [frameHeaderLen]byte
	if _, err := io.ReadFull(s.conn, header[:]); err != nil {
		return nil, errors.Wrap(err, "failed to read frame header")
	}
	size := binary.BigEndian.Uint32(header[:])
	if uint64(size) > uint64(s.maxFrameSize) {
		return nil, errs.Newf(errs.KindProtocol, "stream.read", "frame of %d bytes exceeds limit %d", size, s.maxFrameSize)
	}
	frame := make([]byte, size)
	if _, err := io.ReadFull(s.conn, frame); err != nil {
		return nil, errors.Wrap(err, "failed to read frame body")
	}
	return frame, nil
}

// Err returns the error that stopped the stream, if any.
func (s *StreamTransport) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *StreamTransport) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err == nil {
		s.err = err
	}
}

// Close closes the underlying stream. It is safe to call more than once.
func (s *StreamTransport) Close() error {
	var err error
	s.once.Do(func() {
		close(s.closed)
		s.setErr(ErrTransportClosed)
		err = s.conn.Close()
	})
	return err
}
