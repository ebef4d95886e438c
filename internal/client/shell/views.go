package shell

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/atinyakov/creatorhub/internal/client/async"
	"github.com/atinyakov/creatorhub/internal/client/draft"
	"github.com/atinyakov/creatorhub/internal/client/guard"
	"github.com/atinyakov/creatorhub/internal/client/order"
	"github.com/atinyakov/creatorhub/internal/models"
)

func (a *App) homeView(_ context.Context, m guard.Match, _ []string) error {
	a.println("CreatorHub: where creators thrive.")
	if m.Decision.Identity == nil {
		a.println("Browse with 'services', or 'login' / 'register' to get started.")
		return nil
	}
	a.printf("Hello, %s. Open your 'dashboard' or browse 'services'.\n", m.Decision.Identity.DisplayName)
	return nil
}

func (a *App) servicesView(ctx context.Context, _ guard.Match, _ []string) error {
	res := a.catalog.State()
	if res.Status() == async.Idle {
		res = a.catalog.Search(ctx, a.catalog.Filter())
	}

	listings, ok := res.Value()
	if !ok {
		if res.Status() == async.Failed {
			a.println("Could not load services. Try again in a moment.")
		} else {
			a.println("Loading services...")
		}
		return nil
	}

	if f := a.catalog.Filter(); !f.IsEmpty() {
		a.println("Filter: " + describeFilter(f))
	}
	if len(listings) == 0 {
		a.println("No services found.")
		return nil
	}
	return renderListings(a.out, listings)
}

func (a *App) serviceView(ctx context.Context, m guard.Match, _ []string) error {
	listing, err := a.catalog.Get(ctx, m.Param("id"))
	if err != nil {
		return err
	}
	if err := renderListing(a.out, listing); err != nil {
		return err
	}
	aff := order.Evaluate(m.Decision.Identity, *listing)
	if aff == order.OrderForm {
		a.printf("Run 'order %s' to describe your requirements.\n", listing.ID)
		return nil
	}
	a.println(aff.String() + ".")
	return nil
}

func (a *App) loginView(ctx context.Context, m guard.Match, _ []string) error {
	if id := m.Decision.Identity; id != nil {
		a.printf("Already signed in as %s.\n", id.DisplayName)
		return nil
	}
	return a.login(ctx)
}

func (a *App) registerView(ctx context.Context, m guard.Match, _ []string) error {
	if id := m.Decision.Identity; id != nil {
		a.printf("Already signed in as %s. Run 'logout' first.\n", id.DisplayName)
		return nil
	}
	return a.register(ctx)
}

func (a *App) dashboardView(ctx context.Context, m guard.Match, _ []string) error {
	v, err := a.dashboard.Load(ctx, m.Decision.Identity)
	if err != nil {
		return err
	}
	a.printf("Dashboard for %s (%s)\n", v.Identity.DisplayName, v.Identity.Role)

	if !v.Identity.IsCreator() {
		a.println("Featured services:")
		if len(v.Featured) == 0 {
			a.println("  Nothing here yet.")
			return nil
		}
		return renderListings(a.out, v.Featured)
	}

	if v.HasProfile() {
		a.printf("Profile: %s level, rating %.1f from %d reviews\n",
			v.Profile.ExperienceLevel, v.Profile.Rating, v.Profile.TotalReviews)
	} else {
		a.println("You have not set up your creator profile yet. Run 'profile edit'.")
	}
	a.printf("Your services (%d):\n", len(v.Services))
	if len(v.Services) == 0 {
		a.println("  None yet. Run 'create-service' to publish one.")
		return nil
	}
	return renderListings(a.out, v.Services)
}

func (a *App) myServicesView(ctx context.Context, m guard.Match, _ []string) error {
	listings, err := a.api.CreatorServices(ctx, m.Decision.Identity.ID)
	if err != nil {
		return err
	}
	if len(listings) == 0 {
		a.println("You have not published any services yet.")
		return nil
	}
	return renderListings(a.out, listings)
}

var fieldPrompts = map[draft.Field]string{
	draft.FieldTitle:       "Title",
	draft.FieldDescription: "Description",
	draft.FieldCategory:    "Category (" + categoryList() + ")",
	draft.FieldBasePrice:   "Base price in USD",
	draft.FieldDelivery:    fmt.Sprintf("Delivery time in days (1-%d)", models.MaxDeliveryDays),
	draft.FieldRevisions:   "Revisions included (a number or '" + draft.UnlimitedInput + "')",
	draft.FieldTags:        "Tags (comma separated)",
}

// createServiceView walks the listing form. The draft survives a failed
// submission so the next attempt starts from the previous answers.
func (a *App) createServiceView(ctx context.Context, m guard.Match, _ []string) error {
	a.println("New service. Press Enter to keep the value in brackets.")
	for _, f := range draft.Fields {
		for {
			value, err := a.in.Default(fieldPrompts[f], a.draft.Get(f))
			if err != nil {
				return err
			}
			if err := a.draft.Set(f, value); err != nil {
				a.report(ctx, err)
				continue
			}
			break
		}
	}

	if err := a.attachImages(ctx); err != nil {
		return err
	}

	id, err := a.draft.Submit(ctx, m.Decision.Identity, a.api)
	if err != nil {
		return err
	}
	a.printf("Published! Your service id is %s.\n", id)
	if a.catalog.State().Status() != async.Idle {
		a.catalog.Search(ctx, a.catalog.Filter())
	}
	return nil
}

func (a *App) attachImages(ctx context.Context) error {
	if err := a.removeImages(); err != nil {
		return err
	}
	raw, err := a.in.Line("Image files to add (comma separated, empty for none)")
	if err != nil || raw == "" {
		return err
	}

	var files []draft.File
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		f, err := draft.OpenFile(p)
		if err != nil {
			a.printf("  skipped %s: %v\n", p, err)
			continue
		}
		files = append(files, f)
	}

	rejected, err := a.draft.Attach(ctx, files...)
	if err != nil {
		return err
	}
	for _, r := range rejected {
		a.printf("  skipped %s\n", r.Error())
	}
	a.printf("%d image(s) attached.\n", len(a.draft.Images()))
	return nil
}

// removeImages lists the images kept from an earlier attempt and drops the
// ones the user picks by number.
func (a *App) removeImages() error {
	imgs := a.draft.Images()
	if len(imgs) == 0 {
		return nil
	}
	for i, img := range imgs {
		a.printf("  %d. %s (%s, %d bytes)\n", i+1, img.Name, img.MIME, img.Size)
	}
	raw, err := a.in.Line("Image numbers to remove (comma separated, empty to keep all)")
	if err != nil || raw == "" {
		return err
	}

	var picks []int
	for _, p := range strings.Split(raw, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 1 || n > len(imgs) {
			a.printf("  ignored %q\n", strings.TrimSpace(p))
			continue
		}
		picks = append(picks, n-1)
	}
	// Highest index first so earlier removals do not shift later ones.
	sort.Sort(sort.Reverse(sort.IntSlice(picks)))
	for i, idx := range picks {
		if i > 0 && picks[i-1] == idx {
			continue
		}
		if err := a.draft.RemoveImage(idx); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) profileView(ctx context.Context, m guard.Match, args []string) error {
	id := m.Decision.Identity
	p, err := a.dashboard.Profile(ctx, id)
	if err != nil {
		return err
	}
	if len(args) > 0 && args[0] == "edit" {
		return a.editProfile(ctx, m, p)
	}
	if p == nil {
		a.println("You have not set up your creator profile yet. Run 'profile edit'.")
		return nil
	}
	return renderProfile(a.out, p)
}

func (a *App) editProfile(ctx context.Context, m guard.Match, p *models.CreatorProfile) error {
	var cur models.CreatorProfileInput
	if p != nil {
		cur = models.CreatorProfileInput{Bio: p.Bio, Skills: p.Skills, ExperienceLevel: p.ExperienceLevel, PortfolioItems: p.PortfolioItems}
	}

	bio, err := a.in.Default("Bio", cur.Bio)
	if err != nil {
		return err
	}
	skills, err := a.in.Default("Skills (comma separated)", strings.Join(cur.Skills, ", "))
	if err != nil {
		return err
	}
	level, err := a.in.Default("Experience level (beginner, intermediate, expert)", string(cur.ExperienceLevel))
	if err != nil {
		return err
	}
	portfolio, err := a.in.Default("Portfolio links (comma separated)", strings.Join(cur.PortfolioItems, ", "))
	if err != nil {
		return err
	}
	in := models.CreatorProfileInput{
		Bio:             bio,
		Skills:          draft.ParseTags(skills),
		ExperienceLevel: models.ExperienceLevel(strings.ToLower(level)),
		PortfolioItems:  draft.ParseTags(portfolio),
	}

	if p == nil {
		if _, err := a.dashboard.CreateProfile(ctx, m.Decision.Identity, in); err != nil {
			return err
		}
		a.println("Profile created.")
		return nil
	}
	_, err = a.dashboard.UpdateProfile(ctx, m.Decision.Identity, models.CreatorProfileUpdate{
		Bio:             &in.Bio,
		Skills:          in.Skills,
		ExperienceLevel: &in.ExperienceLevel,
		PortfolioItems:  in.PortfolioItems,
	})
	if err != nil {
		return err
	}
	a.println("Profile updated.")
	return nil
}
