// Package reconnect supervises a client.Engine across transport failures,
// rebuilding the connection with exponential backoff while keeping the
// sequence allocator and durable store stable across reconnects.
package reconnect

import (
	"context"
	"net"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/guyt101z/vumi-smpp-client/client"
	"github.com/guyt101z/vumi-smpp-client/internal/logging"
	"github.com/guyt101z/vumi-smpp-client/internal/seqalloc"
	"github.com/guyt101z/vumi-smpp-client/internal/store"
)

// Dialer opens a fresh transport connection to the SMSC.
type Dialer func(ctx context.Context) (net.Conn, error)

// Supervisor owns the reconnect loop: dial, bind, run until failure, back
// off, repeat. The seqalloc.Allocator and store.Store are shared across
// every Engine it constructs so sequence numbers and unacked/multipart
// state survive a reconnect.
type Supervisor struct {
	cfg   client.Config
	dial  Dialer
	seq   *seqalloc.Allocator
	store store.Store
	sink  client.Sink
	log   logging.Logger
}

// New builds a Supervisor. sink receives every event from every Engine the
// supervisor constructs over its lifetime.
func New(cfg client.Config, dial Dialer, seq *seqalloc.Allocator, st store.Store, sink client.Sink, log logging.Logger) *Supervisor {
	if sink == nil {
		sink = client.NopSink{}
	}
	if log == nil {
		log = logging.NopLogger{}
	}
	return &Supervisor{cfg: cfg, dial: dial, seq: seq, store: st, sink: sink, log: log}
}

// Run dials, binds, and drives one Engine after another until ctx is
// canceled. A connect or bind failure waits out an exponential backoff
// before the next attempt; the backoff resets to its initial interval
// once a bind succeeds.
func (s *Supervisor) Run(ctx context.Context) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = s.cfg.ReconnectInitial
	bo.Multiplier = 2
	bo.MaxInterval = s.cfg.ReconnectMax
	bo.MaxElapsedTime = 0

	for {
		conn, err := s.dial(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if !s.wait(ctx, bo.NextBackOff()) {
				return ctx.Err()
			}
			continue
		}

		resetOnBind := &resettingSink{Sink: s.sink, bo: bo}
		eng := client.New(conn, s.cfg, s.seq, s.store, resetOnBind, s.log)
		runErr := eng.Run(ctx)

		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.log.Warn("smpp connection lost, reconnecting", "error", errString(runErr))
		if !s.wait(ctx, bo.NextBackOff()) {
			return ctx.Err()
		}
	}
}

func (s *Supervisor) wait(ctx context.Context, d time.Duration) bool {
	if d == backoff.Stop {
		return false
	}
	select {
	case <-time.After(d):
		return true
	case <-ctx.Done():
		return false
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// resettingSink resets the shared backoff on every successful bind before
// forwarding to the host sink, so a connection that survives for a while
// doesn't inherit a stretched-out interval from an earlier flapping spell.
type resettingSink struct {
	client.Sink
	bo *backoff.ExponentialBackOff
}

func (r *resettingSink) OnConnect(e *client.Engine) {
	r.bo.Reset()
	r.Sink.OnConnect(e)
}
