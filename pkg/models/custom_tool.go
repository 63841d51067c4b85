package models

import (
	"time"

	"github.com/google/uuid"
)

// CustomToolMaxLen caps the length of a user-contributed tool name.
const CustomToolMaxLen = 60

// CustomTool is a user-contributed extension of the base tool vocabulary.
// Kept server-side so every viewer sees the same tool list.
type CustomTool struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedBy int64     `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}
