package document

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/answerdex/internal/domain"
)

// marshalMeta serializes metadata into the opaque blob column.
// encoding/json emits keys sorted, so the blob is byte-stable for equal
// maps. nil meta is stored as NULL.
func marshalMeta(meta map[string]any) (any, error) {
	if len(meta) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("marshal meta: %v: %w", err, domain.ErrStorage)
	}
	return data, nil
}

func unmarshalMeta(col sql.NullString) (map[string]any, error) {
	if !col.Valid || col.String == "" {
		return nil, nil
	}
	var meta map[string]any
	if err := json.Unmarshal([]byte(col.String), &meta); err != nil {
		return nil, fmt.Errorf("unmarshal meta: %v: %w", err, domain.ErrStorage)
	}
	return meta, nil
}
