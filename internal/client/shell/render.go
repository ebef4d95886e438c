package shell

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/atinyakov/creatorhub/internal/models"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func revisions(l models.Listing) string {
	if l.UnlimitedRevisions() {
		return "unlimited"
	}
	return fmt.Sprint(l.RevisionsIncluded)
}

func renderListings(out io.Writer, listings []models.Listing) error {
	w := newTable(out)
	fmt.Fprintln(w, "ID\tTITLE\tCATEGORY\tFROM\tDELIVERY")
	for _, l := range listings {
		fmt.Fprintf(w, "%s\t%s\t%s\t$%.2f\t%d days\n", l.ID, l.Title, l.Category, l.BasePrice, l.DeliveryTimeDays)
	}
	return w.Flush()
}

func renderListing(out io.Writer, l *models.Listing) error {
	w := newTable(out)
	fmt.Fprintf(w, "%s\n", l.Title)
	fmt.Fprintf(w, "Category:\t%s\n", l.Category)
	fmt.Fprintf(w, "Price:\tfrom $%.2f\n", l.BasePrice)
	fmt.Fprintf(w, "Delivery:\t%d days\n", l.DeliveryTimeDays)
	fmt.Fprintf(w, "Revisions:\t%s\n", revisions(*l))
	if len(l.Tags) > 0 {
		fmt.Fprintf(w, "Tags:\t%s\n", strings.Join(l.Tags, ", "))
	}
	if len(l.Images) > 0 {
		fmt.Fprintf(w, "Images:\t%d\n", len(l.Images))
	}
	fmt.Fprintf(w, "\n%s\n", l.Description)
	return w.Flush()
}

func renderProfile(out io.Writer, p *models.CreatorProfile) error {
	w := newTable(out)
	fmt.Fprintf(w, "Bio:\t%s\n", p.Bio)
	fmt.Fprintf(w, "Experience:\t%s\n", p.ExperienceLevel)
	fmt.Fprintf(w, "Skills:\t%s\n", strings.Join(p.Skills, ", "))
	fmt.Fprintf(w, "Portfolio:\t%s\n", strings.Join(p.PortfolioItems, ", "))
	fmt.Fprintf(w, "Rating:\t%.1f (%d reviews)\n", p.Rating, p.TotalReviews)
	return w.Flush()
}

func describeFilter(f models.Filter) string {
	var parts []string
	if s := strings.TrimSpace(f.Search); s != "" {
		parts = append(parts, fmt.Sprintf("search=%q", s))
	}
	if f.Category != "" {
		parts = append(parts, "category="+string(f.Category))
	}
	if f.MinPrice != nil {
		parts = append(parts, fmt.Sprintf("min=%.2f", *f.MinPrice))
	}
	if f.MaxPrice != nil {
		parts = append(parts, fmt.Sprintf("max=%.2f", *f.MaxPrice))
	}
	if f.Skip > 0 {
		parts = append(parts, fmt.Sprintf("skip=%d", f.Skip))
	}
	return strings.Join(parts, " ")
}
