package model

import (
	"strings"
	"time"
)

// Event represents a scheduled gathering organized by a user
type Event struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Time        string    `json:"time"` // Wall-clock start, e.g. "18:30"
	Location    string    `json:"location"`
	Category    string    `json:"category"`
	Capacity    int       `json:"capacity"`
	ImageURL    *string   `json:"image_url,omitempty"`
	// Organizer is the user record ID; OrganizerName is denormalized for lists
	Organizer     string    `json:"organizer"`
	OrganizerName string    `json:"organizer_name,omitempty"`
	Attendees     []string  `json:"attendees"`
	CreatedOn     time.Time `json:"created_on"`
	UpdatedOn     time.Time `json:"updated_on"`
}

// EventCategory constants. CategoryAll is a filter value only, never stored.
const (
	CategoryAll       = "all"
	CategoryGeneral   = "general"
	CategoryTech      = "tech"
	CategoryBusiness  = "business"
	CategorySocial    = "social"
	CategoryEducation = "education"
)

// Categories lists all valid event categories
var Categories = []string{
	CategoryGeneral,
	CategoryTech,
	CategoryBusiness,
	CategorySocial,
	CategoryEducation,
}

// IsValidCategory reports whether c is a known event category
func IsValidCategory(c string) bool {
	for _, cat := range Categories {
		if cat == c {
			return true
		}
	}
	return false
}

// Constraints
const (
	MaxEventNameLength        = 100
	MaxEventDescriptionLength = 2000
	MaxEventLocationLength    = 200
	MinEventCapacity          = 1
)

// AttendeeCount returns the number of attendees on the event
func (e *Event) AttendeeCount() int {
	return len(e.Attendees)
}

// IsFull reports whether the event has reached capacity
func (e *Event) IsFull() bool {
	return len(e.Attendees) >= e.Capacity
}

// IsAttending reports whether the given user is on the attendee list
func (e *Event) IsAttending(userID string) bool {
	for _, a := range e.Attendees {
		if a == userID {
			return true
		}
	}
	return false
}

// IsOrganizedBy reports whether the given user organizes the event
func (e *Event) IsOrganizedBy(userID string) bool {
	return e.Organizer == userID
}

// CreateEventRequest represents a request to create an event
type CreateEventRequest struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Time        string    `json:"time"`
	Location    string    `json:"location"`
	Category    string    `json:"category"`
	Capacity    int       `json:"capacity"`
	ImageURL    *string   `json:"image_url,omitempty"`
}

// Validate checks the request fields and returns field-level errors
func (r *CreateEventRequest) Validate() []FieldError {
	var errs []FieldError

	if strings.TrimSpace(r.Name) == "" {
		errs = append(errs, FieldError{Field: "name", Message: "name is required"})
	} else if len(r.Name) > MaxEventNameLength {
		errs = append(errs, FieldError{Field: "name", Message: "name exceeds maximum length"})
	}
	if strings.TrimSpace(r.Description) == "" {
		errs = append(errs, FieldError{Field: "description", Message: "description is required"})
	} else if len(r.Description) > MaxEventDescriptionLength {
		errs = append(errs, FieldError{Field: "description", Message: "description exceeds maximum length"})
	}
	if r.Date.IsZero() {
		errs = append(errs, FieldError{Field: "date", Message: "date is required"})
	}
	if strings.TrimSpace(r.Time) == "" {
		errs = append(errs, FieldError{Field: "time", Message: "time is required"})
	}
	if strings.TrimSpace(r.Location) == "" {
		errs = append(errs, FieldError{Field: "location", Message: "location is required"})
	} else if len(r.Location) > MaxEventLocationLength {
		errs = append(errs, FieldError{Field: "location", Message: "location exceeds maximum length"})
	}
	if !IsValidCategory(r.Category) {
		errs = append(errs, FieldError{Field: "category", Message: "category must be one of: " + strings.Join(Categories, ", ")})
	}
	if r.Capacity < MinEventCapacity {
		errs = append(errs, FieldError{Field: "capacity", Message: "capacity must be at least 1"})
	}

	return errs
}

// UpdateEventRequest represents a partial update to an event.
// Nil fields are left unchanged.
type UpdateEventRequest struct {
	Name        *string    `json:"name,omitempty"`
	Description *string    `json:"description,omitempty"`
	Date        *time.Time `json:"date,omitempty"`
	Time        *string    `json:"time,omitempty"`
	Location    *string    `json:"location,omitempty"`
	Category    *string    `json:"category,omitempty"`
	Capacity    *int       `json:"capacity,omitempty"`
	ImageURL    *string    `json:"image_url,omitempty"`
}

// Validate checks the provided fields and returns field-level errors
func (r *UpdateEventRequest) Validate() []FieldError {
	var errs []FieldError

	if r.Name != nil {
		if strings.TrimSpace(*r.Name) == "" {
			errs = append(errs, FieldError{Field: "name", Message: "name cannot be empty"})
		} else if len(*r.Name) > MaxEventNameLength {
			errs = append(errs, FieldError{Field: "name", Message: "name exceeds maximum length"})
		}
	}
	if r.Description != nil && len(*r.Description) > MaxEventDescriptionLength {
		errs = append(errs, FieldError{Field: "description", Message: "description exceeds maximum length"})
	}
	if r.Location != nil && len(*r.Location) > MaxEventLocationLength {
		errs = append(errs, FieldError{Field: "location", Message: "location exceeds maximum length"})
	}
	if r.Category != nil && !IsValidCategory(*r.Category) {
		errs = append(errs, FieldError{Field: "category", Message: "category must be one of: " + strings.Join(Categories, ", ")})
	}
	if r.Capacity != nil && *r.Capacity < MinEventCapacity {
		errs = append(errs, FieldError{Field: "capacity", Message: "capacity must be at least 1"})
	}

	return errs
}

// DateWindow constants for list filtering
const (
	DateWindowUpcoming = "upcoming"
	DateWindowPast     = "past"
)

// EventFilters narrows event list queries
type EventFilters struct {
	Category string // Exact category match
	Date     string // "upcoming" or "past" relative to now
	Search   string // Case-insensitive match on name and description
}

// Validate checks filter values and returns field-level errors
func (f *EventFilters) Validate() []FieldError {
	var errs []FieldError

	if f.Category != "" && f.Category != CategoryAll && !IsValidCategory(f.Category) {
		errs = append(errs, FieldError{Field: "category", Message: "unknown category"})
	}
	if f.Date != "" && f.Date != DateWindowUpcoming && f.Date != DateWindowPast {
		errs = append(errs, FieldError{Field: "date", Message: "date must be 'upcoming' or 'past'"})
	}

	return errs
}

// AttendeeUpdate is the realtime payload published when attendance changes
type AttendeeUpdate struct {
	EventID       string `json:"eventId"`
	AttendeeCount int    `json:"attendeeCount"`
}
