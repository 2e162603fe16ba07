// Package model defines domain entities and data structures for the Gather API.
//
// The model package contains all struct definitions for domain objects,
// request/response types, and error definitions. Models are used across all
// layers of the application.
//
// # Domain Entities
//
//   - Event: A scheduled gathering with an organizer, category, capacity,
//     and attendee list
//   - User: Application user with authentication credentials and a role
//
// # JSON Serialization
//
// All models use json struct tags for API serialization:
//
//	type Event struct {
//	    ID       string `json:"id"`
//	    Name     string `json:"name"`
//	    Capacity int    `json:"capacity"`
//	}
//
// # Error Responses
//
// API errors follow RFC 9457 Problem Details. ProblemDetails carries the
// type URI, a human-readable title and detail, and an application error
// code. Constructors exist for every common HTTP failure mode:
//
//	model.NewNotFoundError("event")
//	model.NewCapacityError(10, 10)
//	model.NewValidationError(fieldErrors)
package model
