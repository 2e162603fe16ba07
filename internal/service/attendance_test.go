package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/opengather/gather/internal/model"
)

func seedEvent(repo *fakeEventRepo, id string, capacity int, attendees ...string) {
	repo.seed(&model.Event{
		ID:        id,
		Name:      "Seeded Event",
		Category:  model.CategoryGeneral,
		Capacity:  capacity,
		Organizer: "user:organizer",
		Attendees: attendees,
	})
}

func TestToggleAttendanceJoin(t *testing.T) {
	t.Parallel()

	svc, repo, notifier := newTestEventService()
	seedEvent(repo, "event:1", 5)

	event, err := svc.ToggleAttendance(context.Background(), "event:1", "user:bob")
	if err != nil {
		t.Fatalf("ToggleAttendance() error = %v", err)
	}

	if !event.IsAttending("user:bob") {
		t.Error("user not attending after join")
	}
	if event.AttendeeCount() != 1 {
		t.Errorf("AttendeeCount() = %d, want 1", event.AttendeeCount())
	}

	updates := notifier.byTopic(TopicAttendeeUpdated)
	if len(updates) != 1 {
		t.Fatalf("published %d attendeeUpdated notifications, want 1", len(updates))
	}
	payload, ok := updates[0].Data.(model.AttendeeUpdate)
	if !ok {
		t.Fatalf("attendeeUpdated payload type = %T, want model.AttendeeUpdate", updates[0].Data)
	}
	if payload.EventID != "event:1" {
		t.Errorf("payload.EventID = %q, want %q", payload.EventID, "event:1")
	}
	if payload.AttendeeCount != 1 {
		t.Errorf("payload.AttendeeCount = %d, want 1", payload.AttendeeCount)
	}
}

func TestToggleAttendanceLeave(t *testing.T) {
	t.Parallel()

	svc, repo, notifier := newTestEventService()
	seedEvent(repo, "event:1", 5, "user:bob", "user:carol")

	event, err := svc.ToggleAttendance(context.Background(), "event:1", "user:bob")
	if err != nil {
		t.Fatalf("ToggleAttendance() error = %v", err)
	}

	if event.IsAttending("user:bob") {
		t.Error("user still attending after leave")
	}
	if event.AttendeeCount() != 1 {
		t.Errorf("AttendeeCount() = %d, want 1", event.AttendeeCount())
	}

	updates := notifier.byTopic(TopicAttendeeUpdated)
	if len(updates) != 1 {
		t.Fatalf("published %d attendeeUpdated notifications, want 1", len(updates))
	}
	payload := updates[0].Data.(model.AttendeeUpdate)
	if payload.AttendeeCount != 1 {
		t.Errorf("payload.AttendeeCount = %d, want 1", payload.AttendeeCount)
	}
}

func TestToggleAttendancePairIsIdempotent(t *testing.T) {
	t.Parallel()

	svc, repo, _ := newTestEventService()
	seedEvent(repo, "event:1", 5)

	joined, err := svc.ToggleAttendance(context.Background(), "event:1", "user:bob")
	if err != nil {
		t.Fatalf("first toggle error = %v", err)
	}
	if !joined.IsAttending("user:bob") {
		t.Fatal("first toggle did not join")
	}

	left, err := svc.ToggleAttendance(context.Background(), "event:1", "user:bob")
	if err != nil {
		t.Fatalf("second toggle error = %v", err)
	}
	if left.IsAttending("user:bob") {
		t.Error("second toggle did not leave")
	}
	if left.AttendeeCount() != 0 {
		t.Errorf("AttendeeCount() = %d, want 0", left.AttendeeCount())
	}
}

func TestToggleAttendanceCapacityReached(t *testing.T) {
	t.Parallel()

	svc, repo, notifier := newTestEventService()
	seedEvent(repo, "event:1", 1, "user:carol")

	_, err := svc.ToggleAttendance(context.Background(), "event:1", "user:bob")
	if !errors.Is(err, ErrEventAtCapacity) {
		t.Fatalf("ToggleAttendance() error = %v, want ErrEventAtCapacity", err)
	}

	var capErr *CapacityError
	if !errors.As(err, &capErr) {
		t.Fatalf("error type = %T, want *CapacityError", err)
	}
	if capErr.Capacity != 1 || capErr.Current != 1 {
		t.Errorf("CapacityError = {Capacity: %d, Current: %d}, want {1, 1}", capErr.Capacity, capErr.Current)
	}

	// A failed join publishes nothing
	if got := notifier.byTopic(TopicAttendeeUpdated); len(got) != 0 {
		t.Errorf("published %d attendeeUpdated notifications, want 0", len(got))
	}
}

func TestToggleAttendanceLeaveAtCapacity(t *testing.T) {
	t.Parallel()

	svc, repo, _ := newTestEventService()
	seedEvent(repo, "event:1", 2, "user:bob", "user:carol")

	// Leaving must work even when the event is full
	event, err := svc.ToggleAttendance(context.Background(), "event:1", "user:bob")
	if err != nil {
		t.Fatalf("ToggleAttendance() error = %v", err)
	}
	if event.IsAttending("user:bob") {
		t.Error("user still attending after leave")
	}
}

func TestToggleAttendanceEventNotFound(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestEventService()

	_, err := svc.ToggleAttendance(context.Background(), "event:missing", "user:bob")
	if !errors.Is(err, ErrEventNotFound) {
		t.Errorf("ToggleAttendance() error = %v, want ErrEventNotFound", err)
	}
}

func TestToggleAttendanceRepoError(t *testing.T) {
	t.Parallel()

	svc, repo, _ := newTestEventService()
	seedEvent(repo, "event:1", 5)
	repo.getErr = errors.New("connection reset")

	_, err := svc.ToggleAttendance(context.Background(), "event:1", "user:bob")
	if err == nil || errors.Is(err, ErrEventNotFound) {
		t.Errorf("ToggleAttendance() error = %v, want storage error", err)
	}
}

// Racing joins over the last slot: exactly one wins, every loser gets a
// capacity error, and the attendee list never exceeds capacity.
func TestToggleAttendanceConcurrentLastSlot(t *testing.T) {
	t.Parallel()

	const racers = 16

	svc, repo, notifier := newTestEventService()
	seedEvent(repo, "event:1", 1)

	var wg sync.WaitGroup
	results := make([]error, racers)

	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			userID := "user:racer-" + string(rune('a'+n))
			_, results[n] = svc.ToggleAttendance(context.Background(), "event:1", userID)
		}(i)
	}
	wg.Wait()

	var wins, capacityFailures int
	for _, err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrEventAtCapacity):
			capacityFailures++
		default:
			t.Errorf("unexpected toggle error: %v", err)
		}
	}

	if wins != 1 {
		t.Errorf("wins = %d, want exactly 1", wins)
	}
	if capacityFailures != racers-1 {
		t.Errorf("capacity failures = %d, want %d", capacityFailures, racers-1)
	}

	final, err := repo.GetByID(context.Background(), "event:1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if final.AttendeeCount() != 1 {
		t.Errorf("final AttendeeCount() = %d, want 1", final.AttendeeCount())
	}

	// Only the winning toggle publishes
	if got := notifier.byTopic(TopicAttendeeUpdated); len(got) != 1 {
		t.Errorf("published %d attendeeUpdated notifications, want 1", len(got))
	}
}

// Concurrent toggles by the same user always land in a consistent state:
// the user is either attending or not, never duplicated.
func TestToggleAttendanceConcurrentSameUser(t *testing.T) {
	t.Parallel()

	const toggles = 8

	svc, repo, _ := newTestEventService()
	seedEvent(repo, "event:1", 10)

	var wg sync.WaitGroup
	for i := 0; i < toggles; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.ToggleAttendance(context.Background(), "event:1", "user:bob")
		}()
	}
	wg.Wait()

	final, err := repo.GetByID(context.Background(), "event:1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}

	count := 0
	for _, a := range final.Attendees {
		if a == "user:bob" {
			count++
		}
	}
	if count > 1 {
		t.Errorf("user appears %d times in attendee list, want at most 1", count)
	}
}
