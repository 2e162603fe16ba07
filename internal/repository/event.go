package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/opengather/gather/internal/database"
	"github.com/opengather/gather/internal/model"
)

// EventRepository handles event data access
type EventRepository struct {
	db database.Database
}

// NewEventRepository creates a new event repository
func NewEventRepository(db database.Database) *EventRepository {
	return &EventRepository{db: db}
}

// Create creates a new event with the caller as organizer and sole attendee list owner
func (r *EventRepository) Create(ctx context.Context, event *model.Event) error {
	query := `
		CREATE event CONTENT {
			name: $name,
			description: $description,
			date: <datetime> $date,
			time: $time,
			location: $location,
			category: $category,
			capacity: $capacity,
			image_url: IF $image_url IS NOT NULL THEN $image_url ELSE NONE END,
			organizer: type::record($organizer),
			attendees: [],
			created_on: time::now(),
			updated_on: time::now()
		}
	`

	vars := map[string]interface{}{
		"name":        event.Name,
		"description": event.Description,
		"date":        event.Date.UTC().Format(time.RFC3339),
		"time":        event.Time,
		"location":    event.Location,
		"category":    event.Category,
		"capacity":    event.Capacity,
		"image_url":   ptrOrNil(event.ImageURL),
		"organizer":   event.Organizer,
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return err
	}

	created, ok := firstRecord(result)
	if !ok {
		return errors.New("no result returned from create")
	}

	event.ID = convertSurrealID(created["id"])
	event.Attendees = []string{}
	event.CreatedOn = getTime(created, "created_on")
	event.UpdatedOn = getTime(created, "updated_on")
	return nil
}

// GetByID retrieves an event by ID. Returns (nil, nil) when the event does not exist.
func (r *EventRepository) GetByID(ctx context.Context, id string) (*model.Event, error) {
	query := `SELECT *, organizer.name AS organizer_name FROM type::record($id)`
	vars := map[string]interface{}{"id": id}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	event, err := parseEventResult(result)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return event, nil
}

// List retrieves events matching the given filters, sorted by date ascending
func (r *EventRepository) List(ctx context.Context, filters model.EventFilters) ([]*model.Event, error) {
	query := `SELECT *, organizer.name AS organizer_name FROM event`
	vars := map[string]interface{}{}

	var conditions []string
	if filters.Category != "" && filters.Category != model.CategoryAll {
		conditions = append(conditions, "category = $category")
		vars["category"] = filters.Category
	}
	switch filters.Date {
	case model.DateWindowUpcoming:
		conditions = append(conditions, "date >= time::now()")
	case model.DateWindowPast:
		conditions = append(conditions, "date < time::now()")
	}
	if filters.Search != "" {
		conditions = append(conditions,
			"(string::lowercase(name) CONTAINS $search OR string::lowercase(description) CONTAINS $search)")
		vars["search"] = strings.ToLower(filters.Search)
	}

	for i, cond := range conditions {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY date ASC"

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	rows, ok := extractQueryResults(result)
	if !ok {
		return []*model.Event{}, nil
	}

	events := make([]*model.Event, 0, len(rows))
	for _, row := range rows {
		event, err := parseEventResult(row)
		if err != nil {
			continue
		}
		events = append(events, event)
	}
	return events, nil
}

// Update applies the given field changes to an event. A capacity change is
// guarded in the same statement as the write: the store rejects it when the
// new capacity would fall below the current attendee count. Returns the
// post-write event and whether the write was applied; an unapplied write with
// no error means the event is missing or the capacity guard failed, and the
// caller must re-read to classify.
func (r *EventRepository) Update(ctx context.Context, id string, updates map[string]interface{}) (*model.Event, bool, error) {
	if len(updates) == 0 {
		event, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, false, err
		}
		if event == nil {
			return nil, false, nil
		}
		return event, true, nil
	}

	query := `UPDATE type::record($id) SET updated_on = time::now()`
	vars := map[string]interface{}{"id": id}

	for field, value := range updates {
		switch field {
		case "name", "description", "time", "location", "category", "capacity", "image_url":
			query += ", " + field + " = $" + field
			vars[field] = value
		case "date":
			query += ", date = <datetime> $date"
			if t, ok := value.(time.Time); ok {
				vars["date"] = t.UTC().Format(time.RFC3339)
			} else {
				vars["date"] = value
			}
		}
	}
	if _, ok := updates["capacity"]; ok {
		query += " WHERE array::len(attendees) <= $capacity"
	}
	query += " RETURN AFTER"

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, false, err
	}

	updated, ok := firstRecord(result)
	if !ok {
		return nil, false, nil
	}

	event, err := parseEventResult(updated)
	if err != nil {
		return nil, false, err
	}
	return event, true, nil
}

// Delete removes an event
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE type::record($id)`
	vars := map[string]interface{}{"id": id}

	return r.db.Execute(ctx, query, vars)
}

// AddAttendee appends userID to the event's attendee list, but only while the
// user is absent and a slot remains. The membership and capacity check run in
// the same statement as the write. Returns the post-write event and whether
// the write was applied; an unapplied write with no error means the condition
// failed (missing event, duplicate join, or full event) and the caller must
// re-read to classify.
func (r *EventRepository) AddAttendee(ctx context.Context, eventID, userID string) (*model.Event, bool, error) {
	query := `
		UPDATE type::record($id)
		SET attendees += $user, updated_on = time::now()
		WHERE attendees CONTAINSNOT $user AND array::len(attendees) < capacity
		RETURN AFTER
	`
	vars := map[string]interface{}{
		"id":   eventID,
		"user": userID,
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, false, err
	}

	updated, ok := firstRecord(result)
	if !ok {
		return nil, false, nil
	}

	event, err := parseEventResult(updated)
	if err != nil {
		return nil, false, err
	}
	return event, true, nil
}

// RemoveAttendee removes userID from the event's attendee list if present.
// Returns the post-write event and whether the write was applied.
func (r *EventRepository) RemoveAttendee(ctx context.Context, eventID, userID string) (*model.Event, bool, error) {
	query := `
		UPDATE type::record($id)
		SET attendees -= $user, updated_on = time::now()
		WHERE attendees CONTAINS $user
		RETURN AFTER
	`
	vars := map[string]interface{}{
		"id":   eventID,
		"user": userID,
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, false, err
	}

	updated, ok := firstRecord(result)
	if !ok {
		return nil, false, nil
	}

	event, err := parseEventResult(updated)
	if err != nil {
		return nil, false, err
	}
	return event, true, nil
}

// firstRecord unwraps a query response down to the first record map
func firstRecord(result []interface{}) (map[string]interface{}, bool) {
	if len(result) == 0 {
		return nil, false
	}

	first := result[0]
	if resp, ok := first.(map[string]interface{}); ok {
		if resultData, ok := resp["result"].([]interface{}); ok {
			if len(resultData) == 0 {
				return nil, false
			}
			first = resultData[0]
		}
	}

	data, ok := first.(map[string]interface{})
	return data, ok
}

// parseEventResult maps a SurrealDB row onto a model.Event
func parseEventResult(result interface{}) (*model.Event, error) {
	if result == nil {
		return nil, database.ErrNotFound
	}

	// Unwrap the response wrapper if present
	if resp, ok := result.(map[string]interface{}); ok {
		if status, ok := resp["status"].(string); ok && status == "OK" {
			if resultData, ok := resp["result"].([]interface{}); ok {
				if len(resultData) == 0 {
					return nil, database.ErrNotFound
				}
				result = resultData[0]
			}
		}
	}
	if arr, ok := result.([]interface{}); ok {
		if len(arr) == 0 {
			return nil, database.ErrNotFound
		}
		result = arr[0]
	}

	data, ok := result.(map[string]interface{})
	if !ok {
		return nil, errors.New("unexpected result format")
	}

	event := &model.Event{
		ID:            convertSurrealID(data["id"]),
		Name:          getString(data, "name"),
		Description:   getString(data, "description"),
		Date:          getTime(data, "date"),
		Time:          getString(data, "time"),
		Location:      getString(data, "location"),
		Category:      getString(data, "category"),
		Capacity:      getInt(data, "capacity"),
		ImageURL:      getStringPtr(data, "image_url"),
		OrganizerName: getString(data, "organizer_name"),
		Attendees:     getStringSlice(data, "attendees"),
		CreatedOn:     getTime(data, "created_on"),
		UpdatedOn:     getTime(data, "updated_on"),
	}
	if event.Attendees == nil {
		event.Attendees = []string{}
	}
	if org, ok := data["organizer"]; ok {
		event.Organizer = convertSurrealID(org)
	}

	return event, nil
}

// ptrOrNil unwraps an optional string for use as a query variable
func ptrOrNil(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}
