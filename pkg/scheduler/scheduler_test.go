package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestRequestFrameCoalesces(t *testing.T) {
	var src ManualSource
	frames := 0
	s := New(&src, func() { frames++ })

	assert.True(t, s.RequestFrame())
	for i := 0; i < 10; i++ {
		assert.False(t, s.RequestFrame())
	}
	assert.Equal(t, 1, src.Pending())
	assert.True(t, s.Pending())

	src.Pump()
	assert.Equal(t, 1, frames)
	assert.False(t, s.Pending())
	assert.Equal(t, uint64(1), s.FrameCount())

	assert.True(t, s.RequestFrame(), "a new request after the frame schedules again")
	src.Pump()
	assert.Equal(t, 2, frames)
}

func TestRequestDuringFrameSchedulesNext(t *testing.T) {
	var src ManualSource
	frames := 0
	var s *Scheduler
	s = New(&src, func() {
		frames++
		if frames == 1 {
			s.RequestFrame()
		}
	})
	s.RequestFrame()

	assert.Equal(t, 1, src.Pump())
	assert.Equal(t, 1, frames)
	assert.Equal(t, 1, src.Pending(), "the request made inside the frame waits for the next pump")
	src.Pump()
	assert.Equal(t, 2, frames)
}

func TestRunNowCancelsPendingCallback(t *testing.T) {
	var src ManualSource
	frames := 0
	s := New(&src, func() { frames++ })

	s.RequestFrame()
	require.True(t, s.RunNow())
	assert.Equal(t, 1, frames)

	src.Pump()
	assert.Equal(t, 1, frames, "the superseded callback must not run a second frame")
}

func TestRunNowIgnoresReentry(t *testing.T) {
	var src ManualSource
	var s *Scheduler
	nested := true
	s = New(&src, func() { nested = s.RunNow() })

	require.True(t, s.RunNow())
	assert.False(t, nested)
	assert.Equal(t, uint64(1), s.FrameCount())
}

func TestStopCancelsFrames(t *testing.T) {
	var src ManualSource
	frames := 0
	s := New(&src, func() { frames++ })

	s.RequestFrame()
	s.Stop()
	src.Pump()
	assert.Zero(t, frames)
	assert.False(t, s.RequestFrame())
	assert.False(t, s.RunNow())
	assert.True(t, s.Stopped())
}

func TestFramePanicIsRecovered(t *testing.T) {
	var src ManualSource
	s := New(&src, func() { panic("boom") })

	assert.NotPanics(t, func() { s.RunNow() })
	assert.Equal(t, uint64(1), s.FrameCount())
	assert.True(t, s.RequestFrame(), "the scheduler keeps working after a panic")
}

func TestTickerSourceDeliversAndStops(t *testing.T) {
	ticker := NewTickerSource(context.Background(), 1000)
	defer ticker.Close()

	frames := 0
	s := New(ticker, func() { frames++ })
	s.RequestFrame()

	select {
	case fn := <-ticker.Frames():
		fn()
	case <-time.After(2 * time.Second):
		t.Fatal("ticker did not deliver a frame")
	}
	assert.Equal(t, 1, frames)
}

func TestTickerSourceStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ticker := NewTickerSource(ctx, 60)
	cancel()

	select {
	case <-ticker.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("ticker goroutine did not exit")
	}
	// Scheduling after shutdown must not block.
	ticker.Schedule(func() {})
}
