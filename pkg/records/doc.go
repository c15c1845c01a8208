// Package records persists interview setups and their outcomes.
//
// Records are msgpack-encoded under "interview:<id>" in a Store. The Service
// is the boundary used by a live session: it serves the session Setup for a
// freshly created interview and finalizes the record with generated
// feedback exactly once.
package records
