package diag

import (
	"errors"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"ProductLogs/pkg/kit"
)

const sampleTransactions = 3

var errPaymentSimulated = errors.New("simulated payment processing failure")

// GenerateLogs writes a fixed burst of info, warn and error entries so the
// log pipeline can be checked end to end without touching the catalog.
func GenerateLogs(log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l := log.With(
			zap.String("request_id", chimw.GetReqID(r.Context())),
			zap.String("operation", "generate_logs"),
		)
		l.Info("log generation requested")

		for i := 0; i < sampleTransactions; i++ {
			l.Info("processing transaction",
				zap.String("transaction_id", uuid.NewString()),
				zap.Int("user_id", 100+i),
			)
			if i == 1 {
				l.Warn("transaction took longer than expected",
					zap.String("transaction_id", uuid.NewString()),
				)
			}
		}

		l.Error("payment processing failed", zap.Error(errPaymentSimulated))
		l.Info("log generation finished")

		kit.WriteJSON(w, http.StatusOK, map[string]string{
			"message": "sample logs written; check stdout and the log index",
		})
	}
}
