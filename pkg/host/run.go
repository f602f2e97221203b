package host

import (
	"context"
	stderrors "errors"
	"io"

	"github.com/go-drift/weave/pkg/events"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// InputSource is the environment's native event stream.
type InputSource interface {
	// Next blocks until the next event and must return once ctx is done.
	// io.EOF ends the stream.
	Next(ctx context.Context) (events.Input, error)
}

// ChanSource adapts a channel to InputSource. Closing the channel ends the
// stream.
type ChanSource <-chan events.Input

// Next implements InputSource.
func (c ChanSource) Next(ctx context.Context) (events.Input, error) {
	select {
	case <-ctx.Done():
		return events.Input{}, ctx.Err()
	case in, ok := <-c:
		if !ok {
			return events.Input{}, io.EOF
		}
		return in, nil
	}
}

// Run drives the host until ctx is cancelled or the input stream ends. One
// goroutine pumps src and a second one routes input, runs frame callbacks
// from the ticker and runs Dispatch calls, so every runtime is only touched
// from the loop. A clean end returns nil.
func (h *Host) Run(ctx context.Context, src InputSource) error {
	g, ctx := errgroup.WithContext(ctx)
	inputs := make(chan events.Input)

	g.Go(func() error {
		defer close(inputs)
		for {
			in, err := src.Next(ctx)
			if err != nil {
				return err
			}
			select {
			case inputs <- in:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	})

	g.Go(func() error {
		return h.loop(ctx, inputs)
	})

	err := g.Wait()
	if err == nil || stderrors.Is(err, io.EOF) || stderrors.Is(err, errInputClosed) || stderrors.Is(err, context.Canceled) {
		return nil
	}
	h.log.Error("host stopped", zap.Error(err))
	return err
}

// errInputClosed ends the loop once the pump has drained the stream.
var errInputClosed = stderrors.New("input closed")

func (h *Host) loop(ctx context.Context, inputs <-chan events.Input) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case in, ok := <-inputs:
			if !ok {
				return errInputClosed
			}
			h.Route(in)
		case fn := <-h.ticker.Frames():
			fn()
		case <-h.notify:
			h.drainCalls()
		case <-h.ticker.Done():
			return nil
		}
	}
}
