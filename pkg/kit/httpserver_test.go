package kit_test

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ProductLogs/pkg/kit"
)

func TestRunHTTPServer_ShutdownRunsHooks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var flushed atomic.Int32
	hookErr := errors.New("flush failed")

	done := make(chan error, 1)
	go func() {
		done <- kit.RunHTTPServer(ctx, kit.ServerConfig{
			Addr:            "127.0.0.1:0",
			ShutdownTimeout: time.Second,
			OnShutdown: []func(context.Context) error{
				func(context.Context) error { flushed.Add(1); return nil },
				func(context.Context) error { flushed.Add(1); return hookErr },
			},
		}, http.NotFoundHandler(), zap.NewNop())
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, hookErr)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
	assert.Equal(t, int32(2), flushed.Load())
}
