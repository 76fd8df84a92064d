package memory

import (
	"context"
	"sync"

	"github.com/pitchsight/datapipe/internal/domain/identity"
)

// IdentityRepository is the in-memory identifier-mapping table, used by
// tests and cache-less dev deployments.
type IdentityRepository struct {
	mu       sync.Mutex
	byTriple map[string]identity.Mapping
}

func NewIdentityRepository() *IdentityRepository {
	return &IdentityRepository{
		byTriple: make(map[string]identity.Mapping),
	}
}

func (r *IdentityRepository) PutIfAbsent(_ context.Context, mapping identity.Mapping) (identity.Mapping, bool, error) {
	key := tripleKey(mapping.Source, mapping.Kind, mapping.SourceID)

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byTriple[key]; ok {
		return existing, false, nil
	}
	r.byTriple[key] = mapping
	return mapping, true, nil
}

func (r *IdentityRepository) ListByInternalID(_ context.Context, kind identity.Kind, internalID string) ([]identity.Mapping, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]identity.Mapping, 0, 2)
	for _, mapping := range r.byTriple {
		if mapping.Kind == kind && mapping.InternalID == internalID {
			out = append(out, mapping)
		}
	}
	return out, nil
}

func tripleKey(source string, kind identity.Kind, sourceID string) string {
	return source + "|" + string(kind) + "|" + sourceID
}
