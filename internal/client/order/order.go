// Package order decides which order affordance a viewer gets on a listing
// and collects the buyer's requirements. Order placement itself is not
// available yet; submitting returns an explicit acknowledgement.
package order

import (
	"fmt"
	"strings"

	"github.com/atinyakov/creatorhub/internal/apperr"
	"github.com/atinyakov/creatorhub/internal/models"
)

// Affordance is what the listing view offers the viewer.
type Affordance int

const (
	// SignInToOrder is shown to anonymous viewers.
	SignInToOrder Affordance = iota
	// CreatorsCannotOrder is shown to creator accounts.
	CreatorsCannotOrder
	// OwnListing is shown to a buyer viewing a listing they own.
	OwnListing
	// OrderForm is the only affordance that accepts requirements.
	OrderForm
)

func (a Affordance) String() string {
	switch a {
	case CreatorsCannotOrder:
		return "Creators cannot place orders"
	case OwnListing:
		return "This is your own listing"
	case OrderForm:
		return "Order this service"
	default:
		return "Sign in to order"
	}
}

// Evaluate picks the affordance for identity viewing listing.
func Evaluate(identity *models.Identity, listing models.Listing) Affordance {
	switch {
	case identity == nil:
		return SignInToOrder
	case identity.Role == models.RoleCreator:
		return CreatorsCannotOrder
	case listing.OwnedBy(identity):
		return OwnListing
	default:
		return OrderForm
	}
}

// ComingSoon is the acknowledgement text for a submitted order.
const ComingSoon = "Ordering is coming soon. Your requirements were noted but no order was placed."

// Acknowledgement is the result of submitting an order form.
type Acknowledgement struct {
	Intent models.OrderIntent
	// Available is false until order placement exists.
	Available bool
	Message   string
}

// Form collects requirements for one listing.
type Form struct {
	listing      models.Listing
	affordance   Affordance
	requirements string
}

// NewForm returns a form for identity viewing listing.
func NewForm(identity *models.Identity, listing models.Listing) *Form {
	return &Form{listing: listing, affordance: Evaluate(identity, listing)}
}

// Affordance returns the gate decision for this form.
func (f *Form) Affordance() Affordance { return f.affordance }

// SetRequirements stores the buyer's requirement text.
func (f *Form) SetRequirements(text string) { f.requirements = text }

// CanSubmit reports whether Submit would be accepted.
func (f *Form) CanSubmit() bool {
	return f.affordance == OrderForm && strings.TrimSpace(f.requirements) != ""
}

// Submit records the intent and returns the coming-soon acknowledgement.
// It never reports a placed order.
func (f *Form) Submit() (Acknowledgement, error) {
	switch f.affordance {
	case SignInToOrder:
		return Acknowledgement{}, fmt.Errorf("order: %w", apperr.ErrUnauthorized)
	case CreatorsCannotOrder, OwnListing:
		return Acknowledgement{}, fmt.Errorf("order: %s: %w", f.affordance, apperr.ErrForbidden)
	}

	text := strings.TrimSpace(f.requirements)
	if text == "" {
		v := apperr.NewValidationError()
		v.Add("requirements", "is required")
		return Acknowledgement{}, v
	}

	return Acknowledgement{
		Intent:    models.OrderIntent{ListingID: f.listing.ID, Requirements: text},
		Available: false,
		Message:   ComingSoon,
	}, nil
}
