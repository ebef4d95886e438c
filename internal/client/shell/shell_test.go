package shell

import (
	"bytes"
	"context"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/atinyakov/creatorhub/internal/client/api"
	"github.com/atinyakov/creatorhub/internal/client/session"
	"github.com/atinyakov/creatorhub/internal/client/storage"
	"github.com/atinyakov/creatorhub/internal/models"
	"github.com/atinyakov/creatorhub/internal/repository"
	handler "github.com/atinyakov/creatorhub/internal/server/handler/http"
	"github.com/atinyakov/creatorhub/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newDevServer(t *testing.T) *httptest.Server {
	t.Helper()
	accounts := repository.NewMemoryAuthRepository()
	auth := service.NewAuthService(accounts, "test-secret", time.Hour)
	catalog := service.NewCatalogService(repository.NewMemoryCatalogRepository(), accounts)
	log := zap.NewNop()
	srv := httptest.NewServer(handler.NewRouter(
		auth,
		&handler.AuthHandler{AuthService: auth, Log: log},
		&handler.CreatorHandler{Catalog: catalog, Log: log},
		&handler.ServiceHandler{Catalog: catalog, Log: log},
		log,
	))
	t.Cleanup(srv.Close)
	return srv
}

// newClient returns an API client whose bearer token follows the returned store.
func newClient(srv *httptest.Server) (*api.Client, *session.Store) {
	var store *session.Store
	client := api.New(srv.URL+"/api", api.WithTokenSource(api.TokenFunc(func() string { return store.Token() })))
	store = session.New(client, &storage.MemoryTokenStore{})
	return client, store
}

// runScript feeds lines to a fresh shell and returns everything it printed.
func runScript(t *testing.T, srv *httptest.Server, lines ...string) string {
	t.Helper()
	stubTerminal(t, false, "", nil)

	client, store := newClient(srv)
	var out bytes.Buffer
	app, err := New(store, client, WithIO(strings.NewReader(strings.Join(lines, "\n")+"\n"), &out))
	require.NoError(t, err)
	require.NoError(t, app.Run(context.Background()))
	return out.String()
}

func seedListing(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	ctx := context.Background()
	client, store := newClient(srv)
	_, err := store.Register(ctx, models.Registration{
		Email: "seed@example.com", Username: "seed", FullName: "Seed Creator", Password: "pw", UserType: models.RoleCreator,
	})
	require.NoError(t, err)
	l, err := client.CreateService(ctx, models.CreateListingRequest{
		Title: "Logo Design", Description: "I design logos", Category: models.CategoryDesign,
		Tags: []string{"logo"}, BasePrice: 25, DeliveryTimeDays: 3, RevisionsIncluded: 2,
	})
	require.NoError(t, err)
	return l.ID
}

func TestShell_CreatorPublishesAfterLoginRedirect(t *testing.T) {
	srv := newDevServer(t)

	out := runScript(t, srv,
		"register",
		"maker@example.com", "maker", "Maya Maker", "secret", "creator",
		"logout",
		"create-service",
		// login prompted by the guard
		"maker@example.com", "secret",
		// listing form
		"Logo Design", "I design logos", "design", "25",
		"45", "3",
		"unlimited", "logo, branding",
		"",
		"search logo",
		"whoami",
		"exit",
	)

	assert.Contains(t, out, "Welcome to CreatorHub, Maya Maker!")
	assert.Contains(t, out, "Signed out.")
	assert.Contains(t, out, "Please sign in to continue.")
	assert.Contains(t, out, "Welcome back, Maya Maker!")
	assert.Contains(t, out, "must be at most 30 days")
	assert.Contains(t, out, "Published! Your service id is ")
	assert.Contains(t, out, `Filter: search="logo"`)
	assert.Contains(t, out, "Logo Design")
	assert.Contains(t, out, "Maya Maker <maker@example.com> (creator)")
	assert.Contains(t, out, "creatorhub (online) maker> ")
	assert.True(t, strings.HasSuffix(out, "Bye!\n"))
}

func TestShell_InvalidDraftIsKept(t *testing.T) {
	srv := newDevServer(t)

	out := runScript(t, srv,
		"register",
		"maker@example.com", "maker", "", "secret", "creator",
		"create-service",
		"", "", "", "", "", "", "", "",
		"create-service",
		"Logo Design", "I design logos", "design", "25", "3", "", "",
		"",
		"my-services",
	)

	assert.Contains(t, out, "Please fix the following:")
	assert.Contains(t, out, "  title: is required")
	assert.Contains(t, out, "  base_price: must be a number")
	assert.Contains(t, out, "Published!")
	assert.Contains(t, out, "Logo Design")
}

func TestShell_BuyerOrderIsComingSoon(t *testing.T) {
	srv := newDevServer(t)
	id := seedListing(t, srv)

	out := runScript(t, srv,
		"order "+id,
		"register",
		"buyer@example.com", "buyer", "Bea Buyer", "secret", "",
		"view "+id,
		"order "+id,
		"A logo for my bakery",
		"view missing",
		"exit",
	)

	assert.Contains(t, out, "Sign in to order.")
	assert.Regexp(t, `Category:\s+design`, out)
	assert.Contains(t, out, fmt.Sprintf("Run 'order %s'", id))
	assert.Contains(t, out, "Ordering is coming soon.")
	assert.Contains(t, out, "Service not found")
}

func TestShell_BuyerRedirectedFromCreatorPages(t *testing.T) {
	srv := newDevServer(t)
	seedListing(t, srv)

	out := runScript(t, srv,
		"register",
		"buyer@example.com", "buyer", "Bea Buyer", "secret", "buyer",
		"create-service",
		"profile",
		"filter category=writing",
		"filter category=nope min=-1",
		"filter clear",
		"exit",
	)

	assert.Contains(t, out, "That page is only available to creators.")
	assert.Contains(t, out, "Dashboard for Bea Buyer (buyer)")
	assert.Contains(t, out, "Featured services:")
	assert.Contains(t, out, "No services found.")
	assert.Contains(t, out, "  category: must be one of design, writing")
	assert.Contains(t, out, "  min: must be a non-negative number")
	assert.GreaterOrEqual(t, strings.Count(out, "Logo Design"), 2, "featured feed and cleared filter")
}

func TestShell_CreatorProfile(t *testing.T) {
	srv := newDevServer(t)

	out := runScript(t, srv,
		"register",
		"maker@example.com", "maker", "Maya Maker", "secret", "creator",
		"profile",
		"profile edit",
		"Illustrator", "drawing, ink", "", "",
		"profile edit",
		"", "", "expert", "",
		"profile",
		"dashboard",
	)

	assert.Contains(t, out, "Run 'profile edit' to set up your creator profile.")
	assert.Contains(t, out, "You have not set up your creator profile yet.")
	assert.Contains(t, out, "Profile created.")
	assert.Contains(t, out, "Profile updated.")
	assert.Regexp(t, `Bio:\s+Illustrator`, out)
	assert.Regexp(t, `Experience:\s+expert`, out)
	assert.Regexp(t, `Skills:\s+drawing, ink`, out)
	assert.Contains(t, out, "Profile: expert level")
	assert.Contains(t, out, "None yet. Run 'create-service' to publish one.")
}

func TestShell_LoginFailureAndUnknownCommands(t *testing.T) {
	srv := newDevServer(t)

	out := runScript(t, srv,
		"whoami",
		"login",
		"ghost@example.com", "nope",
		"open /nowhere",
		"frobnicate",
		"help",
		"quit",
	)

	assert.Contains(t, out, "Not signed in.")
	assert.Contains(t, out, "Incorrect email or password")
	assert.Contains(t, out, "Not found.")
	assert.Contains(t, out, `Unknown command "frobnicate"`)
	assert.Contains(t, out, "create-service")
	assert.Contains(t, out, "creatorhub (online)> ")
}
