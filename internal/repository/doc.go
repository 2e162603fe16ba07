// Package repository implements the data access layer for the Gather API.
//
// The repository package contains all database operations using SurrealDB.
// Each repository struct handles CRUD operations for a specific domain entity.
//
// # Repository Pattern
//
// All repositories follow a consistent pattern:
//
//   - Constructor function (NewXxxRepository) accepts a database connection
//   - Methods implement specific data operations (Create, GetByID, Update, Delete, etc.)
//   - SurrealQL queries are used for all database interactions
//   - Results are parsed and mapped to model structs
//
// # Conditional Writes
//
// Attendance mutations are single conditional UPDATE statements with a WHERE
// clause and RETURN AFTER. The database applies the membership and capacity
// check together with the write, so two concurrent joins against the last
// open slot cannot both succeed. Callers receive an applied flag and decide
// how to classify a no-op.
//
// # Query Patterns
//
// Common query patterns used:
//
//   - Parameterized queries with $variable syntax for security
//   - type::record() for safe ID handling
//   - time::now() for automatic timestamps
package repository
