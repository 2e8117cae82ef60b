// Package runtime is the host harness around the ledger core: it verifies
// command envelopes, executes each command atomically inside one store
// transaction, and fans committed events out to logs, metrics and
// subscribers.
package runtime

import (
	"context"
	"crypto/ed25519"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/soltab/soltab/internal/codec"
	"github.com/soltab/soltab/internal/ledger"
	"github.com/soltab/soltab/internal/models"
	"github.com/soltab/soltab/internal/oracle"
	"github.com/soltab/soltab/internal/store"
)

var (
	// ErrUnknownCommand is returned for an unrecognized command name.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrBadSignature is returned when the envelope signature does not
	// verify against the caller's public key.
	ErrBadSignature = errors.New("invalid envelope signature")
)

// Envelope is one authenticated command as delivered by a client: the
// caller's public key, the command name, borsh-encoded arguments, and an
// ed25519 signature over SigningBytes.
type Envelope struct {
	Caller    models.Identity
	Command   string
	Args      []byte
	Signature []byte
}

// SigningBytes returns what the caller signs: the command's 8-byte
// discriminator followed by the encoded arguments.
func (e *Envelope) SigningBytes() []byte {
	disc := codec.CommandDiscriminator(e.Command)
	msg := make([]byte, 0, len(disc)+len(e.Args))
	msg = append(msg, disc[:]...)
	return append(msg, e.Args...)
}

// Options configures a Runtime.
type Options struct {
	// RequireSignatures enforces ed25519 verification of every envelope.
	// Disable only in development.
	RequireSignatures bool

	// DevPriceFallback substitutes a fixed stub price when the oracle
	// record is unusable, instead of failing with PriceUnavailable.
	// Development mode only.
	DevPriceFallback bool

	// Clock returns the host time in Unix seconds. Defaults to the wall
	// clock.
	Clock func() int64
}

// EventSink receives events from committed commands.
type EventSink func(models.Event)

// Runtime executes commands against a store.
type Runtime struct {
	store store.Store
	opts  Options
	sinks []EventSink
}

// New creates a Runtime.
func New(st store.Store, opts Options) *Runtime {
	if opts.Clock == nil {
		opts.Clock = func() int64 { return time.Now().Unix() }
	}
	return &Runtime{store: st, opts: opts}
}

// Subscribe registers a sink for committed events. Not safe to call
// concurrently with Execute.
func (r *Runtime) Subscribe(sink EventSink) {
	r.sinks = append(r.sinks, sink)
}

// Execute runs one command atomically: verify, dispatch, commit or roll
// back. Emitted events are returned and fanned out to subscribers after
// commit.
func (r *Runtime) Execute(ctx context.Context, env *Envelope) ([]models.Event, error) {
	start := time.Now()
	events, err := r.execute(ctx, env)
	commandDuration.WithLabelValues(env.Command).Observe(time.Since(start).Seconds())

	if err != nil {
		commandsTotal.WithLabelValues(env.Command, "error").Inc()
		var cmdErr *ledger.Error
		if errors.As(err, &cmdErr) {
			slog.Warn("Command rejected",
				"command", env.Command,
				"caller", env.Caller,
				"code", cmdErr.Code,
				"error", cmdErr.Name,
			)
		} else {
			slog.Error("Command failed",
				"command", env.Command,
				"caller", env.Caller,
				"error", err,
			)
		}
		return nil, err
	}

	commandsTotal.WithLabelValues(env.Command, "ok").Inc()
	for _, ev := range events {
		eventsTotal.WithLabelValues(ev.EventName()).Inc()
		for _, sink := range r.sinks {
			sink(ev)
		}
	}
	return events, nil
}

func (r *Runtime) execute(ctx context.Context, env *Envelope) ([]models.Event, error) {
	if r.opts.RequireSignatures {
		pub := ed25519.PublicKey(env.Caller[:])
		if len(env.Signature) != ed25519.SignatureSize || !ed25519.Verify(pub, env.SigningBytes(), env.Signature) {
			return nil, ErrBadSignature
		}
	}

	tx, err := r.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var prices oracle.Source = oracle.NewRecordSource(tx)
	if r.opts.DevPriceFallback {
		prices = oracle.NewFallbackSource(prices)
	}
	led := ledger.New(tx, r.opts.Clock, prices)

	events, err := dispatch(ctx, led, env)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return events, nil
}

// dispatch decodes the envelope's arguments and invokes the handler.
func dispatch(ctx context.Context, led *ledger.Ledger, env *Envelope) ([]models.Event, error) {
	caller := env.Caller
	switch env.Command {
	case ledger.CmdInitGlobal:
		return led.InitGlobal(ctx, caller)
	case ledger.CmdOpenSession:
		var args ledger.OpenSessionArgs
		if err := codec.UnmarshalArgs(env.Args, &args); err != nil {
			return nil, err
		}
		return led.OpenSession(ctx, caller, args)
	case ledger.CmdCloseSession:
		var args ledger.CloseSessionArgs
		if err := codec.UnmarshalArgs(env.Args, &args); err != nil {
			return nil, err
		}
		return led.CloseSession(ctx, caller, args)
	case ledger.CmdSetSessionTokenHash:
		var args ledger.SetSessionTokenHashArgs
		if err := codec.UnmarshalArgs(env.Args, &args); err != nil {
			return nil, err
		}
		return led.SetSessionTokenHash(ctx, caller, args)
	case ledger.CmdAddSessionMember:
		var args ledger.AddSessionMemberArgs
		if err := codec.UnmarshalArgs(env.Args, &args); err != nil {
			return nil, err
		}
		return led.AddSessionMember(ctx, caller, args)
	case ledger.CmdJoinSessionAsMember:
		var args ledger.JoinSessionArgs
		if err := codec.UnmarshalArgs(env.Args, &args); err != nil {
			return nil, err
		}
		return led.JoinSessionAsMember(ctx, caller, args)
	case ledger.CmdDeleteSessionMember:
		var args ledger.DeleteSessionMemberArgs
		if err := codec.UnmarshalArgs(env.Args, &args); err != nil {
			return nil, err
		}
		return led.DeleteSessionMember(ctx, caller, args)
	case ledger.CmdAddExpense:
		var args ledger.AddExpenseArgs
		if err := codec.UnmarshalArgs(env.Args, &args); err != nil {
			return nil, err
		}
		return led.AddExpense(ctx, caller, args)
	case ledger.CmdAddExpenseParticipants:
		var args ledger.ExpenseParticipantsArgs
		if err := codec.UnmarshalArgs(env.Args, &args); err != nil {
			return nil, err
		}
		return led.AddExpenseParticipants(ctx, caller, args)
	case ledger.CmdRemoveExpenseParticipants:
		var args ledger.ExpenseParticipantsArgs
		if err := codec.UnmarshalArgs(env.Args, &args); err != nil {
			return nil, err
		}
		return led.RemoveExpenseParticipants(ctx, caller, args)
	case ledger.CmdUpdateExpense:
		var args ledger.UpdateExpenseArgs
		if err := codec.UnmarshalArgs(env.Args, &args); err != nil {
			return nil, err
		}
		return led.UpdateExpense(ctx, caller, args)
	case ledger.CmdDeleteExpense:
		var args ledger.DeleteExpenseArgs
		if err := codec.UnmarshalArgs(env.Args, &args); err != nil {
			return nil, err
		}
		return led.DeleteExpense(ctx, caller, args)
	case ledger.CmdAddRefund:
		var args ledger.AddRefundArgs
		if err := codec.UnmarshalArgs(env.Args, &args); err != nil {
			return nil, err
		}
		return led.AddRefund(ctx, caller, args)
	case ledger.CmdDeleteRefund:
		var args ledger.DeleteRefundArgs
		if err := codec.UnmarshalArgs(env.Args, &args); err != nil {
			return nil, err
		}
		return led.DeleteRefund(ctx, caller, args)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, env.Command)
	}
}
