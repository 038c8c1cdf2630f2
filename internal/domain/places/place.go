package places

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Place struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Destination string         `gorm:"column:destination;not null;index" json:"destination"`
	Name        string         `gorm:"column:name;not null" json:"name"`
	Category    string         `gorm:"column:category;not null;index" json:"category"`
	Type        string         `gorm:"column:type" json:"type,omitempty"`
	Rating      float64        `gorm:"column:rating" json:"rating,omitempty"`
	PriceLevel  int            `gorm:"column:price_level" json:"price_level,omitempty"`
	Location    string         `gorm:"column:location" json:"location,omitempty"`
	CreatedAt   time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Place) TableName() string { return "place" }

// CatalogEntry is the compact place shape handed to the generation pipeline
// and stored on the generation record. IDs are the place row IDs as strings.
type CatalogEntry struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Type       string  `json:"type,omitempty"`
	Rating     float64 `json:"rating,omitempty"`
	PriceLevel int     `json:"price_level,omitempty"`
	Location   string  `json:"location,omitempty"`
}

// Catalog maps a place category to its candidate entries for one trip.
type Catalog map[string][]CatalogEntry

func (c Catalog) Empty() bool {
	for _, entries := range c {
		if len(entries) > 0 {
			return false
		}
	}
	return true
}

// All flattens the catalog across categories, deduplicated by ID.
func (c Catalog) All() []CatalogEntry {
	seen := map[string]bool{}
	out := make([]CatalogEntry, 0)
	for _, entries := range c {
		for _, e := range entries {
			if e.ID == "" || seen[e.ID] {
				continue
			}
			seen[e.ID] = true
			out = append(out, e)
		}
	}
	return out
}

// ByID looks an entry up by its exact identifier.
func (c Catalog) ByID(id string) *CatalogEntry {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil
	}
	for _, entries := range c {
		for i := range entries {
			if entries[i].ID == id {
				return &entries[i]
			}
		}
	}
	return nil
}

// EntryFromPlace converts a catalog row to its pipeline shape.
func EntryFromPlace(p *Place) CatalogEntry {
	return CatalogEntry{
		ID:         p.ID.String(),
		Name:       p.Name,
		Type:       p.Type,
		Rating:     p.Rating,
		PriceLevel: p.PriceLevel,
		Location:   p.Location,
	}
}
