package catalog

import "time"

// Category values used by the storefront.
const (
	CategoryConcert  = "concert"
	CategoryComedy   = "comedy"
	CategoryWorkshop = "workshop"
	CategorySports   = "sports"
	CategoryTheatre  = "theatre"
)

// Zone is a priced seating section of an event.
type Zone struct {
	Name      string  `json:"name" yaml:"name"`
	Price     float64 `json:"price" yaml:"price"`
	Available int     `json:"available" yaml:"available"`
}

// SoldOut reports whether no tickets remain in the zone.
func (z Zone) SoldOut() bool {
	return z.Available <= 0
}

// Event is a catalog entry. Events are immutable once loaded.
type Event struct {
	ID              int       `json:"id" yaml:"id"`
	Title           string    `json:"title" yaml:"title"`
	Category        string    `json:"category" yaml:"category"`
	Price           float64   `json:"price" yaml:"price"`
	Rating          float64   `json:"rating" yaml:"rating"`
	ReviewCount     int       `json:"reviewCount" yaml:"reviewCount"`
	Date            string    `json:"date" yaml:"date"`
	Time            string    `json:"time" yaml:"time"`
	Venue           string    `json:"venue" yaml:"venue"`
	City            string    `json:"city" yaml:"city"`
	Images          []string  `json:"images" yaml:"images"`
	Description     string    `json:"description" yaml:"description"`
	Tags            []string  `json:"tags" yaml:"tags"`
	PopularityScore int       `json:"popularityScore" yaml:"popularityScore"`
	CreatedAt       time.Time `json:"createdAt" yaml:"createdAt"`
	Zones           []Zone    `json:"zones" yaml:"zones"`
}

// TotalAvailable sums remaining tickets across all zones.
func (e Event) TotalAvailable() int {
	total := 0
	for _, z := range e.Zones {
		if z.Available > 0 {
			total += z.Available
		}
	}
	return total
}

// SoldOut reports whether every zone is sold out.
func (e Event) SoldOut() bool {
	return e.TotalAvailable() == 0
}

// Image returns the first image or an empty string.
func (e Event) Image() string {
	if len(e.Images) == 0 {
		return ""
	}
	return e.Images[0]
}

// FindZone looks up a zone by exact name.
func (e Event) FindZone(name string) (Zone, bool) {
	for _, z := range e.Zones {
		if z.Name == name {
			return z, true
		}
	}
	return Zone{}, false
}
