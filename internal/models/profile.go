package models

import "time"

// ExperienceLevel grades a creator's self-reported experience.
type ExperienceLevel string

const (
	ExperienceBeginner     ExperienceLevel = "beginner"
	ExperienceIntermediate ExperienceLevel = "intermediate"
	ExperienceExpert       ExperienceLevel = "expert"
)

// Valid reports whether e is a known level.
func (e ExperienceLevel) Valid() bool {
	switch e {
	case ExperienceBeginner, ExperienceIntermediate, ExperienceExpert:
		return true
	}
	return false
}

// CreatorProfile is the public profile attached to a creator account.
type CreatorProfile struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	Bio             string          `json:"bio"`
	Skills          []string        `json:"skills"`
	ExperienceLevel ExperienceLevel `json:"experience_level"`
	PortfolioItems  []string        `json:"portfolio_items"`
	Rating          float64         `json:"rating"`
	TotalReviews    int             `json:"total_reviews"`
	TotalEarnings   float64         `json:"total_earnings"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// CreatorProfileInput creates a profile.
type CreatorProfileInput struct {
	Bio             string          `json:"bio"`
	Skills          []string        `json:"skills"`
	ExperienceLevel ExperienceLevel `json:"experience_level"`
	PortfolioItems  []string        `json:"portfolio_items"`
}

// CreatorProfileUpdate changes selected profile fields; nil fields are left as is.
type CreatorProfileUpdate struct {
	Bio             *string          `json:"bio,omitempty"`
	Skills          []string         `json:"skills,omitempty"`
	ExperienceLevel *ExperienceLevel `json:"experience_level,omitempty"`
	PortfolioItems  []string         `json:"portfolio_items,omitempty"`
}
