package health

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePinger struct {
	err   atomic.Value
	calls atomic.Int32
}

func (f *fakePinger) Ping(ctx context.Context) error {
	f.calls.Add(1)
	if err, ok := f.err.Load().(error); ok {
		return err
	}
	return nil
}

func TestProbeCheck(t *testing.T) {
	pinger := &fakePinger{}
	probe := NewProbe(pinger, time.Second)
	assert.False(t, probe.Status().Ready)

	status := probe.Check(context.Background())
	assert.True(t, status.Ready)
	assert.Empty(t, status.Error)
	assert.Equal(t, status, probe.Status())

	pinger.err.Store(errors.New("dial tcp 10.0.0.1:3030: connection refused"))
	status = probe.Check(context.Background())
	assert.False(t, status.Ready)
	assert.Equal(t, "triplestore unavailable", status.Error, "no upstream address leaks")
}

func TestProbeTimeout(t *testing.T) {
	probe := NewProbe(pingerFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}), 10*time.Millisecond)

	assert.False(t, probe.Check(context.Background()).Ready)
}

func TestProbeStart(t *testing.T) {
	pinger := &fakePinger{}
	probe := NewProbe(pinger, time.Second)
	require.NoError(t, probe.Start("@every 1h"))
	defer probe.Stop()

	assert.True(t, probe.Status().Ready, "first check runs immediately")
	assert.Equal(t, int32(1), pinger.calls.Load())
}

func TestProbeStartInvalidSchedule(t *testing.T) {
	probe := NewProbe(&fakePinger{}, time.Second)
	assert.Error(t, probe.Start("not a schedule"))
	probe.Stop()
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error {
	return f(ctx)
}
