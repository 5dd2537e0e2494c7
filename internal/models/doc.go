// Package models contains the persisted and run-scoped data types of the service.
//
// Persisted types ([Credential], [PlaylistRecord], [Event]) are stored by the
// repositories package. [Credential] is upserted by user; [PlaylistRecord] and
// [Event] are append-only and never mutated after the initial write.
//
// Run-scoped types ([SongCandidate], [ResolvedTrack]) exist only for the
// duration of one playlist assembly run.
package models
