package metrics

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hearthhq/hearth/internal/activity"
	"github.com/hearthhq/hearth/internal/models"
)

func TestCollectorRecordsHTTPMetrics(t *testing.T) {
	collector, err := NewCollector()
	if err != nil {
		t.Fatalf("NewCollector returned error: %v", err)
	}

	handlerInvoked := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerInvoked = true
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte("ok"))
	})

	instrumented := collector.InstrumentHandler(handler)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rr := httptest.NewRecorder()

	instrumented.ServeHTTP(rr, req)

	if !handlerInvoked {
		t.Fatal("expected handler to be invoked")
	}

	if rr.Code != http.StatusAccepted {
		t.Fatalf("unexpected status code: %d", rr.Code)
	}

	body := scrape(t, collector)
	if !strings.Contains(body, `hearth_http_requests_total{method="GET",path="/test",status="202"} 1`) {
		t.Fatalf("requests_total metric not recorded, body=%q", body)
	}

	if !strings.Contains(body, `hearth_http_request_duration_seconds_count{method="GET",path="/test",status="202"} 1`) {
		t.Fatalf("request_duration_seconds_count metric not recorded, body=%q", body)
	}
}

type fakeCollector struct {
	err error
}

func (f *fakeCollector) Name() string              { return "messages" }
func (f *fakeCollector) Type() models.ActivityType { return models.ActivityMessageUnread }

func (f *fakeCollector) Collect(_ context.Context, _ activity.Scope) ([]models.RawActivity, error) {
	return nil, f.err
}

func TestWrapCollectorRecordsFetchMetrics(t *testing.T) {
	collector, err := NewCollector()
	if err != nil {
		t.Fatalf("NewCollector returned error: %v", err)
	}

	wrapped := collector.WrapCollector(&fakeCollector{})
	if wrapped.Name() != "messages" || wrapped.Type() != models.ActivityMessageUnread {
		t.Fatal("wrapper must delegate identity to the inner collector")
	}

	if _, err := wrapped.Collect(context.Background(), activity.Scope{UserID: "u1"}); err != nil {
		t.Fatalf("Collect returned error: %v", err)
	}

	failing := collector.WrapCollector(&fakeCollector{err: fmt.Errorf("down")})
	if _, err := failing.Collect(context.Background(), activity.Scope{UserID: "u1"}); err == nil {
		t.Fatal("expected error to pass through the wrapper")
	}

	body := scrape(t, collector)
	if !strings.Contains(body, `hearth_activity_collector_fetch_duration_seconds_count{source="messages"} 2`) {
		t.Fatalf("fetch duration metric not recorded, body=%q", body)
	}
	if !strings.Contains(body, `hearth_activity_collector_fetch_errors_total{source="messages"} 1`) {
		t.Fatalf("fetch errors metric not recorded, body=%q", body)
	}
}

func scrape(t *testing.T, collector *Collector) string {
	t.Helper()

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	collector.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected metrics handler to return 200, got %d", rr.Code)
	}
	return rr.Body.String()
}
