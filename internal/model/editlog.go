package model

import "time"

// EditLogEntry records the fields changed by one asset update.
type EditLogEntry struct {
	ID           int64          `json:"id"`
	AssetID      int64          `json:"asset_id"`
	EditedAt     time.Time      `json:"edited_at"`
	EditedBy     string         `json:"edited_by"`
	EditedFields []string       `json:"edited_fields"`
	OldValues    map[string]any `json:"old_values"`
	NewValues    map[string]any `json:"new_values"`
}
