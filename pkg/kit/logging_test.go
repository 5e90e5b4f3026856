package kit_test

import (
	"bytes"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"ProductLogs/pkg/kit"
)

type bufferSink struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *bufferSink) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *bufferSink) Sync() error { return nil }

var _ zapcore.WriteSyncer = (*bufferSink)(nil)

func TestNewLogger_TeesToSink(t *testing.T) {
	sink := &bufferSink{}
	log, err := kit.NewLogger(kit.LogConfig{Service: "catalog", Level: "warn", Sink: sink})
	require.NoError(t, err)

	log.Info("dropped")
	log.Warn("kept")
	_ = log.Sync()

	lines := bytes.Split(bytes.TrimSpace(sink.buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "catalog", entry["service"])
	assert.Contains(t, entry, "@timestamp")
}

func TestNewLogger_RejectsUnknownLevel(t *testing.T) {
	_, err := kit.NewLogger(kit.LogConfig{Service: "catalog", Level: "loud"})
	assert.Error(t, err)
}
