package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"reelreview/internal/metrics"
)

func TestMiddlewareLabelsByRoutePattern(t *testing.T) {
	m := metrics.New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/videos/{videoID}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Method(http.MethodGet, "/metrics", m.Handler())

	for _, id := range []string{"a", "b"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/videos/"+id, nil))
		if rec.Code != http.StatusNotFound {
			t.Fatalf("unexpected status %d", rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	want := `reelreview_http_requests_total{method="GET",path="/api/videos/{videoID}",status="404"} 2`
	if !strings.Contains(string(body), want) {
		t.Fatalf("expected %q in exposition:\n%s", want, body)
	}
	if strings.Contains(string(body), `path="/metrics"`) {
		t.Fatal("metrics endpoint should not be recorded")
	}
}

func TestDomainCounters(t *testing.T) {
	m := metrics.New()
	m.CommentCreated("point", false)
	m.CommentCreated("text", true)
	m.CommentResolved()
	m.CommentsDeleted(3)
	m.CommentsDeleted(0)
	m.SessionCreated()
	m.Decision("approve", "approved")
	m.Error("decide", "conflict")

	families, err := m.Registry().Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	series := map[string]int{}
	values := map[string]float64{}
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			series[mf.GetName()]++
			if c := metric.GetCounter(); c != nil {
				values[mf.GetName()] += c.GetValue()
			}
		}
	}
	if series["reelreview_comments_created_total"] != 2 {
		t.Fatalf("expected 2 comment series, got %d", series["reelreview_comments_created_total"])
	}
	if values["reelreview_comments_deleted_total"] != 3 || values["reelreview_comments_resolved_total"] != 1 {
		t.Fatalf("unexpected counter values: %v", values)
	}
	if series["reelreview_review_decisions_total"] != 1 || series["reelreview_service_errors_total"] != 1 {
		t.Fatalf("unexpected series: %v", series)
	}

	var nilMetrics *metrics.Metrics
	nilMetrics.CommentResolved()
	nilMetrics.Decision("reject", "rejected")
}
