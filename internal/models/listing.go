package models

import (
	"fmt"
	"strings"
	"time"
)

// Category is one of the fixed listing categories.
type Category string

const (
	CategoryDesign      Category = "design"
	CategoryWriting     Category = "writing"
	CategoryVideo       Category = "video"
	CategoryMusic       Category = "music"
	CategoryProgramming Category = "programming"
	CategoryMarketing   Category = "marketing"
	CategoryPhotography Category = "photography"
	CategoryBusiness    Category = "business"
)

// Categories lists every valid category in display order.
var Categories = []Category{
	CategoryDesign,
	CategoryWriting,
	CategoryVideo,
	CategoryMusic,
	CategoryProgramming,
	CategoryMarketing,
	CategoryPhotography,
	CategoryBusiness,
}

// Valid reports whether c belongs to the category set.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory converts user input into a Category. Matching is
// case-insensitive; anything outside the set is rejected.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}

// RevisionsUnlimited is stored in RevisionsIncluded for listings that
// offer unlimited revisions.
const RevisionsUnlimited = 999

// DefaultRevisions is used when the creator leaves revisions blank.
const DefaultRevisions = 1

// MaxDeliveryDays is the largest delivery time the creation form accepts.
const MaxDeliveryDays = 30

// Listing is a service offered by a creator.
type Listing struct {
	ID                string    `json:"id"`
	CreatorID         string    `json:"creator_id"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	Category          Category  `json:"category"`
	Tags              []string  `json:"tags"`
	BasePrice         float64   `json:"base_price"`
	DeliveryTimeDays  int       `json:"delivery_time_days"`
	RevisionsIncluded int       `json:"revisions_included"`
	Images            []string  `json:"images"`
	IsActive          bool      `json:"is_active"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// UnlimitedRevisions reports whether the listing uses the unlimited sentinel.
func (l Listing) UnlimitedRevisions() bool {
	return l.RevisionsIncluded >= RevisionsUnlimited
}

// OwnedBy reports whether the identity owns the listing.
func (l Listing) OwnedBy(id *Identity) bool {
	return id != nil && id.ID != "" && id.ID == l.CreatorID
}

// CreateListingRequest is the payload sent to create a listing.
type CreateListingRequest struct {
	Title             string   `json:"title"`
	Description       string   `json:"description"`
	Category          Category `json:"category"`
	Tags              []string `json:"tags"`
	BasePrice         float64  `json:"base_price"`
	DeliveryTimeDays  int      `json:"delivery_time_days"`
	RevisionsIncluded int      `json:"revisions_included"`
	Images            []string `json:"images"`
}

// DefaultLimit is the page size the backend applies when none is given.
const DefaultLimit = 20

// Filter narrows a catalog query. Zero-valued fields mean "no constraint";
// price bounds are pointers so that 0 remains a real bound.
type Filter struct {
	Search   string
	Category Category
	MinPrice *float64
	MaxPrice *float64
	Limit    int
	Skip     int
}

// Normalized returns a copy with the search term trimmed.
func (f Filter) Normalized() Filter {
	f.Search = strings.TrimSpace(f.Search)
	return f
}

// IsEmpty reports whether the filter carries no constraints.
func (f Filter) IsEmpty() bool {
	n := f.Normalized()
	return n.Search == "" && n.Category == "" && n.MinPrice == nil && n.MaxPrice == nil &&
		n.Limit == 0 && n.Skip == 0
}

// Equal compares two filters by value, including the price bounds.
func (f Filter) Equal(o Filter) bool {
	return f.Search == o.Search && f.Category == o.Category &&
		f.Limit == o.Limit && f.Skip == o.Skip &&
		samePrice(f.MinPrice, o.MinPrice) && samePrice(f.MaxPrice, o.MaxPrice)
}

func samePrice(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Price returns a pointer to v, for building price bounds.
func Price(v float64) *float64 {
	return &v
}

// OrderIntent is what a buyer would submit to order a listing.
type OrderIntent struct {
	ListingID    string
	Requirements string
}
