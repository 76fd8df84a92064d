package identity

import "context"

// Kind is the entity class an external identifier refers to.
type Kind string

const (
	KindTeam   Kind = "team"
	KindPlayer Kind = "player"
	KindMatch  Kind = "match"
)

// Mapping ties one upstream identifier to the internal identifier space.
// A (Source, Kind, SourceID) triple resolves to exactly one internal id for
// the lifetime of the dataset.
type Mapping struct {
	Source     string
	Kind       Kind
	SourceID   string
	InternalID string
}

// Repository is the single source of truth for identifier translation.
//
// PutIfAbsent must be atomic: under concurrent first-seen inserts for the
// same (Source, Kind, SourceID), at most one internal id is ever minted.
// It returns the stored mapping and whether this call inserted it.
type Repository interface {
	PutIfAbsent(ctx context.Context, mapping Mapping) (Mapping, bool, error)
	ListByInternalID(ctx context.Context, kind Kind, internalID string) ([]Mapping, error)
}
