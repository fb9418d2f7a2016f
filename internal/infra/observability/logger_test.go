package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func TestZapLoggerMiddleware_RecordsRequestDuration(t *testing.T) {
	m := NewMetrics()
	h := ZapLoggerMiddleware(zap.NewNop(), m)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/prestador", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	families, err := m.Registry.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	for _, mf := range families {
		if mf.GetName() != "prestador_request_duration_seconds" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "operation" && label.GetValue() == "GET /v1/prestador" {
					if got := metric.GetHistogram().GetSampleCount(); got != 1 {
						t.Fatalf("expected 1 observation, got %d", got)
					}
					return
				}
			}
		}
	}
	t.Fatal("expected a duration observation for GET /v1/prestador")
}
