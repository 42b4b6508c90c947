package model

import "time"

// Locker is a physical storage place that holds assets.
type Locker struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	LocationName string    `json:"location_name"`
	Address      string    `json:"address"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
