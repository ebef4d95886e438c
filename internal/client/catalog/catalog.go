// Package catalog runs filtered listing searches and owns the displayed
// result state.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/atinyakov/creatorhub/internal/apperr"
	"github.com/atinyakov/creatorhub/internal/client/async"
	"github.com/atinyakov/creatorhub/internal/logger"
	"github.com/atinyakov/creatorhub/internal/models"
	"go.uber.org/zap"
)

// Results is the displayed result set.
type Results = async.Resource[[]models.Listing]

// Searcher is the part of the backend the query talks to.
type Searcher interface {
	SearchServices(ctx context.Context, f models.Filter) ([]models.Listing, error)
	GetService(ctx context.Context, id string) (*models.Listing, error)
}

type snapshot struct {
	seq uint64
	res Results
}

// Query holds the current filter and the result of the latest search.
// Only the most recently issued search may change the displayed state.
type Query struct {
	api Searcher
	log *zap.Logger

	mu     sync.Mutex
	filter models.Filter
	seq    uint64
	cancel context.CancelFunc

	state *async.Value[snapshot]
}

// New returns an idle Query.
func New(api Searcher, log *zap.Logger) *Query {
	return &Query{
		api:   api,
		log:   logger.OrNop(log),
		state: async.NewValue(snapshot{}),
	}
}

// State returns the displayed result set.
func (q *Query) State() Results { return q.state.Get().res }

// Filter returns the filter of the latest search.
func (q *Query) Filter() models.Filter {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.filter
}

// Subscribe calls fn whenever the displayed result set changes.
func (q *Query) Subscribe(fn func(Results)) (cancel func()) {
	return q.state.Subscribe(func(s snapshot) { fn(s.res) })
}

// Search runs f and returns the displayed state once this search settles.
// Any in-flight search is cancelled and its result dropped, even if it
// arrives later. A transport failure yields Failed with no listings; no
// matches yields Ready with an empty slice.
func (q *Query) Search(ctx context.Context, f models.Filter) Results {
	q.mu.Lock()
	q.seq++
	seq := q.seq
	if q.cancel != nil {
		q.cancel()
	}
	sctx, cancel := context.WithCancel(ctx)
	q.cancel = cancel
	q.filter = f
	q.mu.Unlock()
	defer cancel()

	q.apply(seq, true, async.PendingOf[[]models.Listing]())

	listings, err := q.api.SearchServices(sctx, f)
	switch {
	case err == nil:
		return q.apply(seq, false, async.ReadyOf(listings))
	case errors.Is(err, context.Canceled) && ctx.Err() == nil:
		// Superseded by a newer search.
		q.log.Debug("search superseded", zap.Uint64("seq", seq))
		return q.State()
	default:
		q.log.Warn("search failed", zap.Error(err), zap.String("search", f.Search))
		return q.apply(seq, false, async.FailedOf[[]models.Listing](err))
	}
}

// apply publishes res for search seq. A pending marker may only move the
// state forward; a result lands only if seq is still the latest published.
func (q *Query) apply(seq uint64, pending bool, res Results) Results {
	out := q.state.Update(func(cur snapshot) (snapshot, bool) {
		if pending && seq < cur.seq {
			return cur, false
		}
		if !pending && seq != cur.seq {
			return cur, false
		}
		return snapshot{seq: seq, res: res}, true
	})
	return out.res
}

// Update edits the current filter with fn and searches again only if a
// field actually changed. changed is false when nothing was re-run.
func (q *Query) Update(ctx context.Context, fn func(*models.Filter)) (res Results, changed bool) {
	cur := q.Filter()
	next := cur
	fn(&next)
	if next.Equal(cur) && q.State().Status() != async.Idle {
		return q.State(), false
	}
	return q.Search(ctx, next), true
}

// Clear resets the filter to empty and searches again.
func (q *Query) Clear(ctx context.Context) Results {
	return q.Search(ctx, models.Filter{})
}

// Close cancels any in-flight search.
func (q *Query) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.cancel != nil {
		q.cancel()
	}
}

// Get loads a single listing. A missing listing is apperr.ErrNotFound.
func (q *Query) Get(ctx context.Context, id string) (*models.Listing, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("listing id: %w", apperr.ErrNotFound)
	}
	return q.api.GetService(ctx, id)
}
