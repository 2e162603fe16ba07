package service

import (
	"context"
	"log/slog"

	"github.com/opengather/gather/internal/metrics"
	"github.com/opengather/gather/internal/model"
)

// toggleRetryLimit bounds re-reads when concurrent toggles flip membership
// between our read and our conditional write
const toggleRetryLimit = 3

// EventRepository defines the interface for event storage
type EventRepository interface {
	Create(ctx context.Context, event *model.Event) error
	GetByID(ctx context.Context, id string) (*model.Event, error)
	List(ctx context.Context, filters model.EventFilters) ([]*model.Event, error)
	Delete(ctx context.Context, id string) error

	// Update is a conditional write when the changes include capacity: the
	// store rejects a reduction below the current attendee count in the same
	// operation as the mutation. It reports whether the write was applied.
	Update(ctx context.Context, id string, updates map[string]interface{}) (*model.Event, bool, error)

	// AddAttendee and RemoveAttendee are conditional writes: the store checks
	// membership (and capacity, for adds) in the same operation as the
	// mutation. They report whether the write was applied.
	AddAttendee(ctx context.Context, eventID, userID string) (*model.Event, bool, error)
	RemoveAttendee(ctx context.Context, eventID, userID string) (*model.Event, bool, error)
}

// Notifier publishes realtime notifications to connected clients.
// Publishing is best effort and never blocks the caller.
type Notifier interface {
	Publish(n *Notification)
}

// EventService handles event business logic
type EventService struct {
	repo     EventRepository
	notifier Notifier
}

// NewEventService creates a new event service
func NewEventService(repo EventRepository, notifier Notifier) *EventService {
	return &EventService{
		repo:     repo,
		notifier: notifier,
	}
}

// CreateEvent creates a new event organized by the given user
func (s *EventService) CreateEvent(ctx context.Context, organizerID string, req *model.CreateEventRequest) (*model.Event, error) {
	if !model.IsValidCategory(req.Category) {
		return nil, ErrInvalidCategory
	}
	if req.Capacity < model.MinEventCapacity {
		return nil, ErrInvalidCapacity
	}

	event := &model.Event{
		Name:        req.Name,
		Description: req.Description,
		Date:        req.Date,
		Time:        req.Time,
		Location:    req.Location,
		Category:    req.Category,
		Capacity:    req.Capacity,
		ImageURL:    req.ImageURL,
		Organizer:   organizerID,
	}

	if err := s.repo.Create(ctx, event); err != nil {
		return nil, err
	}

	metrics.EventsCreated.Inc()
	s.notifier.Publish(&Notification{Topic: TopicEventCreated, Data: event})

	return event, nil
}

// GetEvent retrieves an event by ID
func (s *EventService) GetEvent(ctx context.Context, eventID string) (*model.Event, error) {
	event, err := s.repo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, ErrEventNotFound
	}
	return event, nil
}

// ListEvents retrieves events matching the given filters
func (s *EventService) ListEvents(ctx context.Context, filters model.EventFilters) ([]*model.Event, error) {
	return s.repo.List(ctx, filters)
}

// UpdateEvent applies a partial update. Only the organizer may update an event.
func (s *EventService) UpdateEvent(ctx context.Context, eventID, userID string, req *model.UpdateEventRequest) (*model.Event, error) {
	event, err := s.repo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, ErrEventNotFound
	}
	if !event.IsOrganizedBy(userID) {
		return nil, ErrNotOrganizer
	}
	if req.Category != nil && !model.IsValidCategory(*req.Category) {
		return nil, ErrInvalidCategory
	}
	// A capacity reduction must not strand attendees over the limit
	if req.Capacity != nil && (*req.Capacity < model.MinEventCapacity || *req.Capacity < event.AttendeeCount()) {
		return nil, ErrInvalidCapacity
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Date != nil {
		updates["date"] = *req.Date
	}
	if req.Time != nil {
		updates["time"] = *req.Time
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.Capacity != nil {
		updates["capacity"] = *req.Capacity
	}
	if req.ImageURL != nil {
		updates["image_url"] = *req.ImageURL
	}

	updated, applied, err := s.repo.Update(ctx, eventID, updates)
	if err != nil {
		return nil, err
	}
	if !applied {
		// The store rejected the write. Re-read to tell a vanished event
		// from a capacity reduction that lost a race against a join.
		current, err := s.repo.GetByID(ctx, eventID)
		if err != nil {
			return nil, err
		}
		if current == nil {
			return nil, ErrEventNotFound
		}
		return nil, ErrInvalidCapacity
	}

	s.notifier.Publish(&Notification{Topic: TopicEventUpdated, Data: updated})

	return updated, nil
}

// DeleteEvent removes an event. Only the organizer may delete an event.
func (s *EventService) DeleteEvent(ctx context.Context, eventID, userID string) error {
	event, err := s.repo.GetByID(ctx, eventID)
	if err != nil {
		return err
	}
	if event == nil {
		return ErrEventNotFound
	}
	if !event.IsOrganizedBy(userID) {
		return ErrNotOrganizer
	}

	if err := s.repo.Delete(ctx, eventID); err != nil {
		return err
	}

	s.notifier.Publish(&Notification{
		Topic: TopicEventDeleted,
		Data:  map[string]string{"eventId": eventID},
	})

	return nil
}

// ToggleAttendance flips the user's attendance on an event. A user who is
// attending leaves; a user who is not attending joins, provided a slot
// remains. The join path never exceeds capacity: the store applies the
// capacity check and the write as one conditional operation, so the losing
// side of a race over the last slot gets ErrEventAtCapacity instead of an
// oversubscribed event. Every successful toggle publishes an attendeeUpdated
// notification carrying the new attendee count.
func (s *EventService) ToggleAttendance(ctx context.Context, eventID, userID string) (*model.Event, error) {
	for attempt := 0; attempt < toggleRetryLimit; attempt++ {
		event, err := s.repo.GetByID(ctx, eventID)
		if err != nil {
			metrics.AttendanceToggles.WithLabelValues(metrics.OutcomeError).Inc()
			return nil, err
		}
		if event == nil {
			return nil, ErrEventNotFound
		}

		if event.IsAttending(userID) {
			updated, applied, err := s.repo.RemoveAttendee(ctx, eventID, userID)
			if err != nil {
				metrics.AttendanceToggles.WithLabelValues(metrics.OutcomeError).Inc()
				return nil, err
			}
			if !applied {
				// Removed concurrently, re-read and toggle again
				continue
			}
			metrics.AttendanceToggles.WithLabelValues(metrics.OutcomeLeft).Inc()
			s.publishAttendance(updated)
			return updated, nil
		}

		updated, applied, err := s.repo.AddAttendee(ctx, eventID, userID)
		if err != nil {
			metrics.AttendanceToggles.WithLabelValues(metrics.OutcomeError).Inc()
			return nil, err
		}
		if applied {
			metrics.AttendanceToggles.WithLabelValues(metrics.OutcomeJoined).Inc()
			s.publishAttendance(updated)
			return updated, nil
		}

		// The conditional write was a no-op: the event vanished, the user
		// joined concurrently, or the last slot was taken. Re-read to
		// classify.
		current, err := s.repo.GetByID(ctx, eventID)
		if err != nil {
			metrics.AttendanceToggles.WithLabelValues(metrics.OutcomeError).Inc()
			return nil, err
		}
		if current == nil {
			return nil, ErrEventNotFound
		}
		if current.IsAttending(userID) {
			// Concurrent join by the same user, next pass toggles them off
			continue
		}
		if current.IsFull() {
			metrics.AttendanceToggles.WithLabelValues(metrics.OutcomeCapacity).Inc()
			return nil, &CapacityError{Capacity: current.Capacity, Current: current.AttendeeCount()}
		}
	}

	slog.Warn("attendance toggle retries exhausted",
		slog.String("event_id", eventID),
		slog.String("user_id", userID),
	)
	return nil, ErrToggleConflict
}

func (s *EventService) publishAttendance(event *model.Event) {
	s.notifier.Publish(&Notification{
		Topic: TopicAttendeeUpdated,
		Data: model.AttendeeUpdate{
			EventID:       event.ID,
			AttendeeCount: event.AttendeeCount(),
		},
	})
}
