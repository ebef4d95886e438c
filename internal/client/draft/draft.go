// Package draft holds an unsubmitted listing: raw form input, attached
// images and the last validation result.
package draft

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/atinyakov/creatorhub/internal/apperr"
	"github.com/atinyakov/creatorhub/internal/logger"
	"github.com/atinyakov/creatorhub/internal/models"
	"go.uber.org/zap"
)

// Field names a form input. Values match the listing's JSON names.
type Field string

const (
	FieldTitle       Field = "title"
	FieldDescription Field = "description"
	FieldCategory    Field = "category"
	FieldBasePrice   Field = "base_price"
	FieldDelivery    Field = "delivery_time_days"
	FieldRevisions   Field = "revisions_included"
	FieldTags        Field = "tags"
	FieldImages      Field = "images"
)

// Fields lists the text inputs in form order.
var Fields = []Field{FieldTitle, FieldDescription, FieldCategory, FieldBasePrice, FieldDelivery, FieldRevisions, FieldTags}

// UnlimitedInput is accepted in the revisions field as the unlimited sentinel.
const UnlimitedInput = "unlimited"

// Publisher creates listings on the backend.
type Publisher interface {
	CreateService(ctx context.Context, req models.CreateListingRequest) (*models.Listing, error)
}

// Draft is safe for concurrent use.
type Draft struct {
	log *zap.Logger
	// readers bounds concurrent image reads.
	readers int

	mu     sync.Mutex
	values map[Field]string
	images []Image
	errs   *apperr.ValidationError
}

// New returns an empty draft.
func New(log *zap.Logger) *Draft {
	return &Draft{
		log:     logger.OrNop(log),
		readers: 4,
		values:  make(map[Field]string),
	}
}

func knownField(f Field) bool {
	for _, k := range Fields {
		if k == f {
			return true
		}
	}
	return false
}

// Set stores raw input for field. Delivery time above
// models.MaxDeliveryDays is refused at input time, as the form's max does.
func (d *Draft) Set(field Field, value string) error {
	if !knownField(field) {
		return fmt.Errorf("unknown field %q", field)
	}
	if field == FieldDelivery {
		if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && n > models.MaxDeliveryDays {
			v := apperr.NewValidationError()
			v.Add(string(field), fmt.Sprintf("must be at most %d days", models.MaxDeliveryDays))
			return v
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.values[field] = value
	return nil
}

// Get returns the raw input for field.
func (d *Draft) Get(field Field) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.values[field]
}

// Errors returns the result of the last Validate or Submit, or nil.
func (d *Draft) Errors() *apperr.ValidationError {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.errs
}

// Reset empties the draft.
func (d *Draft) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.values = make(map[Field]string)
	d.images = nil
	d.errs = nil
}

// Validate checks every field and, when all pass, returns the coerced
// request. It never stops at the first failure.
func (d *Draft) Validate() (models.CreateListingRequest, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	req, verr := build(d.values, d.images)
	if verr.Empty() {
		d.errs = nil
		return req, nil
	}
	d.errs = verr
	return models.CreateListingRequest{}, verr
}

func build(values map[Field]string, images []Image) (models.CreateListingRequest, *apperr.ValidationError) {
	verr := apperr.NewValidationError()
	req := models.CreateListingRequest{
		Title:       strings.TrimSpace(values[FieldTitle]),
		Description: strings.TrimSpace(values[FieldDescription]),
		Tags:        ParseTags(values[FieldTags]),
		Images:      make([]string, 0, len(images)),
	}

	if req.Title == "" {
		verr.Add(string(FieldTitle), "is required")
	}
	if req.Description == "" {
		verr.Add(string(FieldDescription), "is required")
	}

	if raw := strings.TrimSpace(values[FieldCategory]); raw == "" {
		verr.Add(string(FieldCategory), "is required")
	} else if c, err := models.ParseCategory(raw); err != nil {
		verr.Add(string(FieldCategory), "is not a known category")
	} else {
		req.Category = c
	}

	price, err := strconv.ParseFloat(strings.TrimSpace(values[FieldBasePrice]), 64)
	switch {
	case err != nil || math.IsNaN(price) || math.IsInf(price, 0):
		verr.Add(string(FieldBasePrice), "must be a number")
	case price <= 0:
		verr.Add(string(FieldBasePrice), "must be greater than 0")
	default:
		req.BasePrice = price
	}

	days, err := strconv.Atoi(strings.TrimSpace(values[FieldDelivery]))
	switch {
	case err != nil:
		verr.Add(string(FieldDelivery), "must be a whole number of days")
	case days < 1:
		verr.Add(string(FieldDelivery), "must be at least 1 day")
	default:
		req.DeliveryTimeDays = days
	}

	rev, msg := parseRevisions(values[FieldRevisions])
	if msg != "" {
		verr.Add(string(FieldRevisions), msg)
	} else {
		req.RevisionsIncluded = rev
	}

	for _, img := range images {
		req.Images = append(req.Images, img.DataURL)
	}
	return req, verr
}

func parseRevisions(raw string) (int, string) {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "":
		return models.DefaultRevisions, ""
	case strings.EqualFold(raw, UnlimitedInput):
		return models.RevisionsUnlimited, ""
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, "must be a whole number or \"unlimited\""
	}
	if n < 0 {
		return 0, "must not be negative"
	}
	return n, ""
}

// ParseTags splits comma-separated input into trimmed, non-empty, unique
// tags in first-seen order.
func ParseTags(raw string) []string {
	parts := strings.Split(raw, ",")
	seen := make(map[string]struct{}, len(parts))
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		tag := strings.TrimSpace(p)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}

// Submit publishes the draft as identity. Validation failures never reach
// the network. On success the draft is reset and the new listing id
// returned; on failure the draft is left as it was.
func (d *Draft) Submit(ctx context.Context, identity *models.Identity, pub Publisher) (string, error) {
	if identity == nil {
		return "", fmt.Errorf("submit listing: %w", apperr.ErrUnauthorized)
	}
	if !identity.IsCreator() {
		return "", fmt.Errorf("submit listing: only creators can publish: %w", apperr.ErrForbidden)
	}

	req, err := d.Validate()
	if err != nil {
		return "", err
	}

	listing, err := pub.CreateService(ctx, req)
	if err != nil {
		d.log.Warn("listing submission failed", zap.Error(err))
		return "", err
	}

	d.Reset()
	d.log.Info("listing published", zap.String("listing_id", listing.ID))
	return listing.ID, nil
}
