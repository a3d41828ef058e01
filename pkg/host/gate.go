package host

import (
	"context"
)

type gateToken struct{}

// WriteGate serializes tree mutations. Exactly one writer holds the gate at
// a time; waiters are admitted in FIFO order. A function already running
// under the gate may call Do again and runs inline, matching the re-entrant
// write-action semantics the engine expects.
type WriteGate struct {
	slot chan struct{}
}

// NewWriteGate creates an open gate.
func NewWriteGate() *WriteGate {
	return &WriteGate{slot: make(chan struct{}, 1)}
}

// Do runs fn while holding the gate. If the calling context already holds
// it, fn runs inline without re-acquiring.
func (g *WriteGate) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if g.Held(ctx) {
		return fn(ctx)
	}

	select {
	case g.slot <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-g.slot }()

	return fn(context.WithValue(ctx, gateToken{}, g))
}

// Held reports whether the given context holds this gate.
func (g *WriteGate) Held(ctx context.Context) bool {
	return ctx.Value(gateToken{}) == g
}
