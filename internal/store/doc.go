// Package store provides the in-memory user collection for restlab.
//
// # Overview
//
// The store is a mutex-guarded map from id to User plus an atomic id
// sequence. It is the only shared mutable state in the process besides the
// signing secret, and it is safe for arbitrary concurrent use without any
// external locking.
//
// # Identifier semantics
//
// Ids are issued by Sequence, which wraps an atomic counter starting at
// zero: the first id is 1, and every issued id is strictly greater than all
// earlier ones even under concurrent creates. Deleting a user never frees
// its id for reuse.
//
// # Consistency
//
// Each operation is individually atomic. List is not a transactional
// snapshot with respect to concurrent writers: a user created or deleted
// during a burst of traffic may or may not appear in a concurrent List, but
// a partially-written record is never visible. Concurrent updates to the
// same id serialize with last-writer-wins semantics.
package store
