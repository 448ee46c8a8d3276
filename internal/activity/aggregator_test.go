package activity

import (
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"
	"testing"
	"time"

	"github.com/hearthhq/hearth/internal/models"
	"log/slog"
)

var testNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

type stubCollector struct {
	name    string
	typ     models.ActivityType
	records []models.RawActivity
	err     error

	// lastScope records the scope of the most recent call.
	lastScope Scope
}

func (s *stubCollector) Name() string              { return s.name }
func (s *stubCollector) Type() models.ActivityType { return s.typ }

func (s *stubCollector) Collect(ctx context.Context, scope Scope) ([]models.RawActivity, error) {
	s.lastScope = scope
	if s.err != nil {
		return nil, s.err
	}
	return s.records, nil
}

// blockingCollector waits for cancellation, verifying that the fan-out
// propagates it instead of leaking the call.
type blockingCollector struct{}

func (b *blockingCollector) Name() string              { return "blocking" }
func (b *blockingCollector) Type() models.ActivityType { return models.ActivityShoutoutReceived }

func (b *blockingCollector) Collect(ctx context.Context, _ Scope) ([]models.RawActivity, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(collectors ...Collector) *Service {
	svc := NewService(collectors, NewClassifier(DefaultThresholds()), testLogger())
	svc.now = func() time.Time { return testNow }
	return svc
}

func rawEvent(id string, due time.Time, createdAgo time.Duration) models.RawActivity {
	return models.RawActivity{
		EntityID:    id,
		CommunityID: "c1",
		Type:        models.ActivityEventUpcoming,
		Title:       "Gathering " + id,
		DueDate:     timePtr(due),
		CreatedAt:   testNow.Add(-createdAgo),
		Urgency:     models.UrgencyNormal,
	}
}

func rawMessage(id string, createdAgo time.Duration) models.RawActivity {
	return models.RawActivity{
		EntityID:  id,
		Type:      models.ActivityMessageUnread,
		Title:     "Message " + id,
		CreatedAt: testNow.Add(-createdAgo),
		Urgency:   models.UrgencyNormal,
	}
}

func TestFetchActivitiesRequiresUserID(t *testing.T) {
	svc := newTestService(&stubCollector{name: "gatherings", typ: models.ActivityEventUpcoming})

	_, err := svc.FetchActivities(context.Background(), models.ActivityQuery{})

	var invalid *InvalidQueryError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidQueryError, got %v", err)
	}
	if invalid.Field != "user_id" {
		t.Errorf("expected user_id field, got %q", invalid.Field)
	}
}

func TestFetchActivitiesRejectsUnknownType(t *testing.T) {
	svc := newTestService(&stubCollector{name: "gatherings", typ: models.ActivityEventUpcoming})

	_, err := svc.FetchActivities(context.Background(), models.ActivityQuery{
		UserID: "u1",
		Types:  []models.ActivityType{"event_cancelled"},
	})

	var invalid *InvalidQueryError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidQueryError, got %v", err)
	}
}

func TestFetchActivitiesEmptyUniverse(t *testing.T) {
	svc := newTestService(
		&stubCollector{name: "gatherings", typ: models.ActivityEventUpcoming},
		&stubCollector{name: "messages", typ: models.ActivityMessageUnread},
	)

	feed, err := svc.FetchActivities(context.Background(), models.ActivityQuery{UserID: "u1"})
	if err != nil {
		t.Fatalf("FetchActivities returned error: %v", err)
	}
	if len(feed) != 0 {
		t.Errorf("expected empty feed, got %d items", len(feed))
	}
}

func TestFetchActivitiesFailsFastOnCollectorError(t *testing.T) {
	netErr := fmt.Errorf("connection refused")
	svc := newTestService(
		&stubCollector{name: "gatherings", typ: models.ActivityEventUpcoming,
			records: []models.RawActivity{rawEvent("g1", testNow.Add(2*time.Hour), time.Hour)}},
		&stubCollector{name: "messages", typ: models.ActivityMessageUnread, err: netErr},
	)

	feed, err := svc.FetchActivities(context.Background(), models.ActivityQuery{UserID: "u1"})
	if feed != nil {
		t.Fatal("expected no partial feed on collector failure")
	}

	var collErr *CollectorError
	if !errors.As(err, &collErr) {
		t.Fatalf("expected CollectorError, got %v", err)
	}
	if collErr.Source != "messages" {
		t.Errorf("expected failing source to be named, got %q", collErr.Source)
	}
	if !errors.Is(err, netErr) {
		t.Error("expected wrapped cause to be preserved")
	}
}

func TestFetchActivitiesCancelsInFlightCollectors(t *testing.T) {
	svc := newTestService(
		&stubCollector{name: "messages", typ: models.ActivityMessageUnread, err: fmt.Errorf("boom")},
		&blockingCollector{},
	)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := svc.FetchActivities(context.Background(), models.ActivityQuery{UserID: "u1"})
		if err == nil {
			t.Error("expected error from failing collector")
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("fan-out did not cancel the blocking collector")
	}
}

func TestFetchActivitiesPassesScope(t *testing.T) {
	collector := &stubCollector{name: "gatherings", typ: models.ActivityEventUpcoming}
	svc := newTestService(collector)

	since := testNow.Add(-48 * time.Hour)
	_, err := svc.FetchActivities(context.Background(), models.ActivityQuery{
		UserID:      "u1",
		CommunityID: "c9",
		Since:       &since,
	})
	if err != nil {
		t.Fatalf("FetchActivities returned error: %v", err)
	}

	if collector.lastScope.UserID != "u1" || collector.lastScope.CommunityID != "c9" {
		t.Errorf("unexpected scope: %+v", collector.lastScope)
	}
	if collector.lastScope.Since == nil || !collector.lastScope.Since.Equal(since) {
		t.Errorf("since not propagated: %v", collector.lastScope.Since)
	}
}

func TestFetchActivitiesDeduplicatesByID(t *testing.T) {
	duplicate := rawEvent("g1", testNow.Add(2*time.Hour), time.Hour)
	svc := newTestService(
		&stubCollector{name: "gatherings", typ: models.ActivityEventUpcoming,
			records: []models.RawActivity{duplicate, duplicate}},
	)

	feed, err := svc.FetchActivities(context.Background(), models.ActivityQuery{UserID: "u1"})
	if err != nil {
		t.Fatalf("FetchActivities returned error: %v", err)
	}
	if len(feed) != 1 {
		t.Fatalf("expected 1 item after dedup, got %d", len(feed))
	}
	if feed[0].ID != "event_upcoming_g1" {
		t.Errorf("unexpected id: %q", feed[0].ID)
	}
}

func TestFetchActivitiesOrdering(t *testing.T) {
	overdue := models.RawActivity{
		EntityID:  "r1",
		Type:      models.ActivityResourcePending,
		Title:     "Overdue request",
		DueDate:   timePtr(testNow.Add(-2 * time.Hour)),
		CreatedAt: testNow.Add(-72 * time.Hour),
		Urgency:   models.UrgencyNormal,
	}
	soonEvent := rawEvent("g1", testNow.Add(3*time.Hour), 24*time.Hour)
	laterEvent := rawEvent("g2", testNow.Add(6*time.Hour), 24*time.Hour)
	newerMessage := rawMessage("m1", time.Hour)
	olderMessage := rawMessage("m2", 5*time.Hour)

	svc := newTestService(
		&stubCollector{name: "resources", typ: models.ActivityResourcePending,
			records: []models.RawActivity{overdue}},
		&stubCollector{name: "gatherings", typ: models.ActivityEventUpcoming,
			records: []models.RawActivity{laterEvent, soonEvent}},
		&stubCollector{name: "messages", typ: models.ActivityMessageUnread,
			records: []models.RawActivity{olderMessage, newerMessage}},
	)

	feed, err := svc.FetchActivities(context.Background(), models.ActivityQuery{UserID: "u1"})
	if err != nil {
		t.Fatalf("FetchActivities returned error: %v", err)
	}

	got := make([]string, 0, len(feed))
	for _, item := range feed {
		got = append(got, item.ID)
	}

	// Urgent overdue first, then soon events by deadline, then undated
	// normal items newest first.
	want := []string{
		"resource_pending_r1",
		"event_upcoming_g1",
		"event_upcoming_g2",
		"message_unread_m1",
		"message_unread_m2",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("feed order = %v, want %v", got, want)
	}

	// Determinism: a second run over the same inputs yields the same order.
	again, err := svc.FetchActivities(context.Background(), models.ActivityQuery{UserID: "u1"})
	if err != nil {
		t.Fatalf("FetchActivities returned error: %v", err)
	}
	if !reflect.DeepEqual(feed, again) {
		t.Error("feed ordering is not deterministic across identical runs")
	}
}

func TestFetchActivitiesTypeFilter(t *testing.T) {
	svc := newTestService(
		&stubCollector{name: "gatherings", typ: models.ActivityEventUpcoming,
			records: []models.RawActivity{rawEvent("g1", testNow.Add(2*time.Hour), time.Hour)}},
		&stubCollector{name: "messages", typ: models.ActivityMessageUnread,
			records: []models.RawActivity{rawMessage("m1", time.Hour)}},
	)

	feed, err := svc.FetchActivities(context.Background(), models.ActivityQuery{
		UserID: "u1",
		Types:  []models.ActivityType{models.ActivityMessageUnread},
	})
	if err != nil {
		t.Fatalf("FetchActivities returned error: %v", err)
	}

	if len(feed) != 1 || feed[0].Type != models.ActivityMessageUnread {
		t.Errorf("expected only unread messages, got %+v", feed)
	}
}

func TestFetchActivitiesSectionFilter(t *testing.T) {
	svc := newTestService(
		&stubCollector{name: "gatherings", typ: models.ActivityEventUpcoming,
			records: []models.RawActivity{
				rawEvent("g-soon", testNow.Add(2*time.Hour), time.Hour),
				rawEvent("g-later", testNow.Add(72*time.Hour), time.Hour),
			}},
	)

	section := models.SectionUpcoming
	feed, err := svc.FetchActivities(context.Background(), models.ActivityQuery{
		UserID:  "u1",
		Section: &section,
	})
	if err != nil {
		t.Fatalf("FetchActivities returned error: %v", err)
	}

	if len(feed) != 1 || feed[0].EntityID != "g-later" {
		t.Errorf("expected only the later gathering, got %+v", feed)
	}
}

func TestFetchActivitiesSinceFilter(t *testing.T) {
	svc := newTestService(
		&stubCollector{name: "messages", typ: models.ActivityMessageUnread,
			records: []models.RawActivity{
				rawMessage("m-old", 96*time.Hour),
				rawMessage("m-new", time.Hour),
			}},
	)

	since := testNow.Add(-24 * time.Hour)
	feed, err := svc.FetchActivities(context.Background(), models.ActivityQuery{
		UserID: "u1",
		Since:  &since,
	})
	if err != nil {
		t.Fatalf("FetchActivities returned error: %v", err)
	}

	if len(feed) != 1 || feed[0].EntityID != "m-new" {
		t.Errorf("expected only the fresh message, got %+v", feed)
	}
}

func TestFetchActivitiesSinceKeepsFutureDeadlines(t *testing.T) {
	// A record created before the bound but due after it still satisfies
	// the query.
	old := rawEvent("g1", testNow.Add(48*time.Hour), 240*time.Hour)
	svc := newTestService(
		&stubCollector{name: "gatherings", typ: models.ActivityEventUpcoming,
			records: []models.RawActivity{old}},
	)

	since := testNow.Add(-24 * time.Hour)
	feed, err := svc.FetchActivities(context.Background(), models.ActivityQuery{
		UserID: "u1",
		Since:  &since,
	})
	if err != nil {
		t.Fatalf("FetchActivities returned error: %v", err)
	}
	if len(feed) != 1 {
		t.Errorf("expected gathering with future deadline to be kept, got %d items", len(feed))
	}
}

func TestFetchActivitiesPaginationIsLossless(t *testing.T) {
	records := make([]models.RawActivity, 0, 7)
	for i := 0; i < 7; i++ {
		records = append(records, rawMessage(fmt.Sprintf("m%d", i), time.Duration(i+1)*time.Hour))
	}
	svc := newTestService(
		&stubCollector{name: "messages", typ: models.ActivityMessageUnread, records: records},
	)

	full, err := svc.FetchActivities(context.Background(), models.ActivityQuery{
		UserID: "u1", PageSize: models.MaxPageSize,
	})
	if err != nil {
		t.Fatalf("FetchActivities returned error: %v", err)
	}
	if len(full) != 7 {
		t.Fatalf("expected 7 items, got %d", len(full))
	}

	var paged []models.ActivitySummary
	for page := 1; ; page++ {
		chunk, err := svc.FetchActivities(context.Background(), models.ActivityQuery{
			UserID: "u1", Page: page, PageSize: 3,
		})
		if err != nil {
			t.Fatalf("page %d returned error: %v", page, err)
		}
		if len(chunk) == 0 {
			break
		}
		if len(chunk) > 3 {
			t.Fatalf("page %d exceeded page size: %d", page, len(chunk))
		}
		paged = append(paged, chunk...)
	}

	if !reflect.DeepEqual(full, paged) {
		t.Error("concatenated pages do not reproduce the full feed")
	}
}

func TestFetchActivitiesClassificationErrorPropagates(t *testing.T) {
	svc := newTestService(
		&stubCollector{name: "gatherings", typ: models.ActivityEventUpcoming,
			records: []models.RawActivity{{
				EntityID:  "x1",
				Type:      models.ActivityType("event_cancelled"),
				CreatedAt: testNow,
			}}},
	)

	_, err := svc.FetchActivities(context.Background(), models.ActivityQuery{UserID: "u1"})

	var classErr *ClassificationError
	if !errors.As(err, &classErr) {
		t.Fatalf("expected ClassificationError, got %v", err)
	}
}
