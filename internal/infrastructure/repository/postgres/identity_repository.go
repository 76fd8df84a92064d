package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/pitchsight/datapipe/internal/domain/identity"
)

type IdentityRepository struct {
	db *sqlx.DB
}

func NewIdentityRepository(db *sqlx.DB) *IdentityRepository {
	return &IdentityRepository{db: db}
}

// PutIfAbsent records a mapping unless the (source, kind, source_id)
// triple already exists, in which case the stored mapping wins. The
// insert-then-reselect pair keeps minting atomic across concurrent
// writers.
func (r *IdentityRepository) PutIfAbsent(ctx context.Context, mapping identity.Mapping) (identity.Mapping, bool, error) {
	const insertQuery = `INSERT INTO identity_mappings (source, kind, source_id, internal_id)
	VALUES (:source, :kind, :source_id, :internal_id)
	ON CONFLICT (source, kind, source_id) DO NOTHING`

	model := identityMappingTableModel{
		Source:     mapping.Source,
		Kind:       string(mapping.Kind),
		SourceID:   mapping.SourceID,
		InternalID: mapping.InternalID,
	}

	result, err := r.db.NamedExecContext(ctx, insertQuery, model)
	if err != nil {
		return identity.Mapping{}, false, fmt.Errorf("insert identity mapping: %w", err)
	}
	inserted, err := result.RowsAffected()
	if err != nil {
		return identity.Mapping{}, false, fmt.Errorf("read insert outcome: %w", err)
	}
	if inserted > 0 {
		return mapping, true, nil
	}

	const selectQuery = `SELECT source, kind, source_id, internal_id, created_at
	FROM identity_mappings
	WHERE source = $1 AND kind = $2 AND source_id = $3`

	var row identityMappingTableModel
	if err := r.db.GetContext(ctx, &row, selectQuery, mapping.Source, string(mapping.Kind), mapping.SourceID); err != nil {
		return identity.Mapping{}, false, fmt.Errorf("select identity mapping: %w", err)
	}

	return identity.Mapping{
		Source:     row.Source,
		Kind:       identity.Kind(row.Kind),
		SourceID:   row.SourceID,
		InternalID: row.InternalID,
	}, false, nil
}

func (r *IdentityRepository) ListByInternalID(ctx context.Context, kind identity.Kind, internalID string) ([]identity.Mapping, error) {
	const query = `SELECT source, kind, source_id, internal_id, created_at
	FROM identity_mappings
	WHERE kind = $1 AND internal_id = $2
	ORDER BY source, source_id`

	var rows []identityMappingTableModel
	if err := r.db.SelectContext(ctx, &rows, query, string(kind), internalID); err != nil {
		return nil, fmt.Errorf("select identity mappings: %w", err)
	}

	out := make([]identity.Mapping, 0, len(rows))
	for _, row := range rows {
		out = append(out, identity.Mapping{
			Source:     row.Source,
			Kind:       identity.Kind(row.Kind),
			SourceID:   row.SourceID,
			InternalID: row.InternalID,
		})
	}

	return out, nil
}
