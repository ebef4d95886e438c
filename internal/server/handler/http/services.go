package http

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/atinyakov/creatorhub/internal/middleware"
	"github.com/atinyakov/creatorhub/internal/models"
	"github.com/atinyakov/creatorhub/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ServiceHandler serves the listing endpoints.
type ServiceHandler struct {
	Catalog CatalogService
	Log     *zap.Logger
}

// Create handles POST /services.
func (h *ServiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateListingRequest
	if !decode(w, r, &req) {
		return
	}
	l, err := h.Catalog.CreateListing(r.Context(), middleware.UserFromContext(r.Context()), req)
	if err != nil {
		fail(w, h.Log, err, "Only creators can create services")
		return
	}
	writeJSON(w, http.StatusOK, l)
}

// Search handles GET /services.
//
// Query parameters: search, category, min_price, max_price, limit, skip.
func (h *ServiceHandler) Search(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r.URL.Query())
	if err != nil {
		writeInputError(w, err)
		return
	}
	ls, serr := h.Catalog.Search(r.Context(), f)
	if serr != nil {
		fail(w, h.Log, serr, "")
		return
	}
	writeJSON(w, http.StatusOK, ls)
}

// Get handles GET /services/{id}.
func (h *ServiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	l, err := h.Catalog.Listing(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		fail(w, h.Log, err, "")
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func parseFilter(q url.Values) (models.Filter, *service.InputError) {
	f := models.Filter{
		Search:   q.Get("search"),
		Category: models.Category(q.Get("category")),
	}
	for _, p := range []struct {
		key string
		dst **float64
	}{{"min_price", &f.MinPrice}, {"max_price", &f.MaxPrice}} {
		raw := q.Get(p.key)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return f, &service.InputError{Field: p.key, Reason: "value is not a valid number"}
		}
		*p.dst = models.Price(v)
	}
	for _, p := range []struct {
		key string
		dst *int
	}{{"limit", &f.Limit}, {"skip", &f.Skip}} {
		raw := q.Get(p.key)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return f, &service.InputError{Field: p.key, Reason: fmt.Sprintf("value %q is not a valid non-negative integer", raw)}
		}
		*p.dst = v
	}
	return f, nil
}
