package models

import "time"

// Catalog item types
const (
	ItemTypeFile      = "file"
	ItemTypeDirectory = "directory"
)

// CatalogItem is a file or directory known to the inventory collaborator.
// This system only reads it.
type CatalogItem struct {
	ID           int64     `json:"id" db:"id"`
	ItemPath     string    `json:"item_path" db:"item_path"`
	ItemPathHash string    `json:"item_path_hash" db:"item_path_hash"`
	ItemType     string    `json:"item_type" db:"item_type"`
	SizeBytes    *int64    `json:"size_bytes,omitempty" db:"size_bytes"`
	LastSeen     time.Time `json:"last_seen" db:"last_seen"`
	Sensitive    bool      `json:"sensitive" db:"sensitive"`
}
