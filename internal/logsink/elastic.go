package logsink

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esutil"
	"go.uber.org/zap"
)

type ElasticConfig struct {
	Addresses     []string
	IndexPrefix   string
	FlushInterval time.Duration
	// Transport is optional; tests point it at a fake cluster.
	Transport http.RoundTripper
}

// ElasticSink is a zapcore.WriteSyncer that bulk-indexes every encoded entry
// into a daily index. Indexing failures go to fallback, never to the sink itself.
type ElasticSink struct {
	bi       esutil.BulkIndexer
	prefix   string
	fallback *zap.Logger
	now      func() time.Time
}

func NewElastic(cfg ElasticConfig, fallback *zap.Logger) (*ElasticSink, error) {
	if len(cfg.Addresses) == 0 {
		return nil, errors.New("elasticsearch: no addresses")
	}
	if fallback == nil {
		fallback = zap.NewNop()
	}

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		Transport: cfg.Transport,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client: %w", err)
	}

	bi, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Client:        es,
		NumWorkers:    1,
		FlushInterval: cfg.FlushInterval,
		OnError: func(_ context.Context, err error) {
			fallback.Warn("elasticsearch bulk request failed", zap.Error(err))
		},
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch bulk indexer: %w", err)
	}

	return &ElasticSink{
		bi:       bi,
		prefix:   cfg.IndexPrefix,
		fallback: fallback,
		now:      time.Now,
	}, nil
}

func (s *ElasticSink) Write(p []byte) (int, error) {
	// zap reuses p once Write returns
	doc := bytes.Clone(bytes.TrimSpace(p))

	err := s.bi.Add(context.Background(), esutil.BulkIndexerItem{
		Action: "index",
		Index:  s.index(),
		Body:   bytes.NewReader(doc),
		OnFailure: func(_ context.Context, _ esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
			if err != nil {
				s.fallback.Warn("log entry not indexed", zap.Error(err))
				return
			}
			s.fallback.Warn("log entry not indexed",
				zap.Int("status", res.Status),
				zap.String("reason", res.Error.Reason),
			)
		},
	})
	if err != nil {
		return 0, err
	}
	return len(p), nil
}

func (s *ElasticSink) Sync() error { return nil }

// Close flushes pending entries and stops the indexer workers.
func (s *ElasticSink) Close(ctx context.Context) error {
	if err := s.bi.Close(ctx); err != nil {
		return err
	}
	if st := s.bi.Stats(); st.NumFailed > 0 {
		return fmt.Errorf("elasticsearch: %d log entries failed to index", st.NumFailed)
	}
	return nil
}

func (s *ElasticSink) index() string {
	return s.prefix + "-" + s.now().UTC().Format("2006.01.02")
}
