package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallContext_Logging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	cc := NewCallContext(logger, "parse")
	_, err := uuid.Parse(cc.RequestID)
	require.NoError(t, err)

	cc.Debug("parsed", slog.Int(LogFieldInputLen, 10))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "parsed", entry["msg"])
	assert.Equal(t, cc.RequestID, entry[LogFieldRequestID])
	assert.Equal(t, "parse", entry[LogFieldOp])
	assert.EqualValues(t, 10, entry[LogFieldInputLen])

	buf.Reset()
	cc.Error("failed", errors.New("boom"))
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "boom", entry["error"])
}

func TestCallContext_Context(t *testing.T) {
	cc := NewCallContextWithID(nil, "req-1", "strptime")
	ctx := WithCallContext(context.Background(), cc)

	got, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Same(t, cc, got)
	assert.Equal(t, "req-1", RequestIDFromContext(ctx))
	assert.Equal(t, "", RequestIDFromContext(context.Background()))
}

func TestMetrics_Record(t *testing.T) {
	m := NewMetrics()
	m.Record("parse", 10*time.Microsecond, nil)
	m.Record("parse", 30*time.Microsecond, errors.New("bad"))
	m.Record("strptime", 5*time.Microsecond, nil)

	snap := m.Snapshot()
	assert.Equal(t, int64(3), snap.CallTotal)
	assert.Equal(t, int64(1), snap.CallFailed)
	assert.Equal(t, []string{"parse", "strptime"}, snap.OpNames())

	parse := snap.Ops["parse"]
	assert.Equal(t, int64(2), parse.CallCount)
	assert.Equal(t, int64(1), parse.ErrorCount)
	assert.Equal(t, int64(20), parse.AverageDuration)
	assert.Equal(t, int64(30), parse.MaxDurationUs)
	assert.InDelta(t, 66.67, snap.SuccessRate(), 0.01)

	m.Reset()
	assert.Equal(t, int64(0), m.GetCallTotal())
	assert.Equal(t, 100.0, m.Snapshot().SuccessRate())
}

func TestMetrics_Concurrent(t *testing.T) {
	m := NewMetrics()
	var wg sync.WaitGroup
	ops := []string{"parse", "strptime", "strptime_loose"}
	for i := 0; i < 60; i++ {
		wg.Add(1)
		go func(op string) {
			defer wg.Done()
			m.Record(op, time.Microsecond, nil)
		}(ops[i%len(ops)])
	}
	wg.Wait()
	assert.Equal(t, int64(60), m.GetCallTotal())
	assert.Equal(t, int64(0), m.GetCallFailed())

	snap := m.Snapshot()
	assert.Equal(t, []string{"parse", "strptime", "strptime_loose"}, snap.OpNames())
	for _, op := range ops {
		assert.Equal(t, int64(20), snap.Ops[op].CallCount, op)
	}
}

func TestMetrics_SnapshotWhileRecording(t *testing.T) {
	m := NewMetrics()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			m.Record("parse", time.Microsecond, nil)
		}
	}()
	for i := 0; i < 100; i++ {
		snap := m.Snapshot()
		assert.LessOrEqual(t, snap.CallFailed, snap.CallTotal)
	}
	<-done
	assert.Equal(t, int64(1000), m.Snapshot().Ops["parse"].CallCount)
}
