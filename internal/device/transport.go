// Package device talks to the offline secure element: it serializes
// request/response exchanges over a single channel and turns device
// replies into typed results.
package device

import "context"

// Transport writes encoded request frames to the device link. It carries no
// reply semantics; replies arrive asynchronously through a Receiver.
type Transport interface {
	Send(ctx context.Context, frame []byte) error
}

// Receiver accepts inbound traffic from a link. Deliver hands over one
// complete reply frame, Fail reports that the link broke.
type Receiver interface {
	Deliver(frame []byte)
	Fail(err error)
}

// TransportFunc adapts a plain function to Transport.
type TransportFunc func(ctx context.Context, frame []byte) error

func (f TransportFunc) Send(ctx context.Context, frame []byte) error {
	return f(ctx, frame)
}
