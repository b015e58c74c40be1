package api_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lmduc2309/english-music-app/internal/adapters/http/api"
	"github.com/lmduc2309/english-music-app/pkg/metrics"
	. "github.com/smartystreets/goconvey/convey"
)

// requestCount reads ema_pitch_http_requests_total for one endpoint and status.
func requestCount(endpoint, status string) float64 {
	families, err := metrics.GetRegistry().Gather()
	if err != nil {
		return -1
	}
	for _, mf := range families {
		if mf.GetName() != "ema_pitch_http_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, l := range m.GetLabel() {
				labels[l.GetName()] = l.GetValue()
			}
			if labels["endpoint"] == endpoint && labels["status_code"] == status {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestMetricsMiddlewareHijack(t *testing.T) {
	Convey("Given a handler that takes over the connection", t, func() {
		hijacker := func(w http.ResponseWriter, _ *http.Request) {
			conn, _, err := http.NewResponseController(w).Hijack()
			if err == nil {
				_ = conn.Close()
			}
		}
		done := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer close(done)
			api.MetricsMiddleware(hijacker, "hijack_test")(w, r)
		}))
		defer srv.Close()

		Convey("The request is recorded as switching protocols", func() {
			resp, err := http.Get(srv.URL)
			if err == nil {
				_ = resp.Body.Close()
			}
			select {
			case <-done:
			case <-time.After(3 * time.Second):
			}
			So(requestCount("hijack_test", "101"), ShouldEqual, 1)
			So(requestCount("hijack_test", "200"), ShouldEqual, 0)
		})
	})
}
