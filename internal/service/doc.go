// Package service contains the business logic for events, attendance, and
// authentication. Services depend on repository interfaces rather than
// concrete storage, and publish realtime notifications through the Hub.
package service
