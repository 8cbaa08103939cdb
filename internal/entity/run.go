package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/garment-labs/labelaudit/constants"
)

// Run is one stored pipeline run for data transfer between layers.
type Run struct {
	ID        uuid.UUID         `json:"id"`
	Kind      constants.RunKind `json:"kind"`
	Filenames []string          `json:"filenames"`
	Payload   json.RawMessage   `json:"payload"`
	ItemCount int               `json:"item_count"`
	CreatedAt time.Time         `json:"created_at"`
}
