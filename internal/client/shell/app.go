// Package shell is the interactive terminal front end of the client.
//
// Every screen is bound to a client route path. Commands navigate to a path,
// the route guard decides whether the screen may be shown, and redirects are
// followed the way a browser would: an anonymous visitor opening a creator
// page is asked to sign in first and then lands on the page it asked for.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/atinyakov/creatorhub/internal/apperr"
	"github.com/atinyakov/creatorhub/internal/client/catalog"
	"github.com/atinyakov/creatorhub/internal/client/dashboard"
	"github.com/atinyakov/creatorhub/internal/client/draft"
	"github.com/atinyakov/creatorhub/internal/client/guard"
	"github.com/atinyakov/creatorhub/internal/client/session"
	"github.com/atinyakov/creatorhub/internal/logger"
	"go.uber.org/zap"
)

// Backend is the API surface the shell drives.
type Backend interface {
	catalog.Searcher
	draft.Publisher
	dashboard.Backend
	Health(ctx context.Context) error
}

// view renders the screen of one route.
type view func(ctx context.Context, m guard.Match, args []string) error

type command struct {
	usage string
	help  string
	run   func(ctx context.Context, args []string) error
}

var errExit = errors.New("exit")

// App is one interactive shell session.
type App struct {
	session   *session.Store
	api       Backend
	router    *guard.Router
	catalog   *catalog.Query
	draft     *draft.Draft
	dashboard *dashboard.Service

	in  *Input
	out io.Writer
	log *zap.Logger

	views    map[string]view
	commands map[string]command
	online   atomic.Bool
}

// Option configures an App.
type Option func(*App)

// WithIO replaces stdin and stdout.
func WithIO(r io.Reader, w io.Writer) Option {
	return func(a *App) {
		a.in = NewInput(r, w)
		a.out = w
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(a *App) { a.log = log }
}

// New builds a shell over store and api.
func New(store *session.Store, api Backend, opts ...Option) (*App, error) {
	router, err := guard.NewRouter(guard.DefaultRoutes())
	if err != nil {
		return nil, err
	}
	a := &App{
		session: store,
		api:     api,
		router:  router,
		in:      NewInput(os.Stdin, os.Stdout),
		out:     os.Stdout,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.log = logger.OrNop(a.log)
	a.catalog = catalog.New(api, a.log)
	a.draft = draft.New(a.log)
	a.dashboard = dashboard.New(api)
	a.online.Store(true)

	a.views = map[string]view{
		guard.PathHome:           a.homeView,
		guard.PathServices:       a.servicesView,
		guard.PathService:        a.serviceView,
		guard.PathLogin:          a.loginView,
		guard.PathRegister:       a.registerView,
		guard.PathDashboard:      a.dashboardView,
		guard.PathCreateService:  a.createServiceView,
		guard.PathCreatorProfile: a.profileView,
		guard.PathMyServices:     a.myServicesView,
	}
	a.commands = a.commandTable()
	return a, nil
}

// Run restores the persisted session and reads commands until exit, EOF or
// ctx is done.
func (a *App) Run(ctx context.Context) error {
	defer a.catalog.Close()

	defer a.followSession()()

	st := a.session.Restore(ctx)
	a.println("Welcome to CreatorHub. Type 'help' for a list of commands.")
	if st.Identity != nil {
		a.printf("Signed in as %s (%s).\n", st.Identity.DisplayName, st.Identity.Role)
	}

	for {
		if ctx.Err() != nil {
			return nil
		}
		fmt.Fprint(a.out, a.prompt())
		line, err := a.in.readLine()
		if errors.Is(err, io.EOF) {
			a.println()
			return nil
		}
		if err != nil {
			return err
		}
		if err := a.Exec(ctx, line); errors.Is(err, errExit) {
			a.println("Bye!")
			return nil
		}
	}
}

// Exec runs one command line. Command failures are reported to the user
// and only errExit is returned.
func (a *App) Exec(ctx context.Context, line string) error {
	args := strings.Fields(line)
	if len(args) == 0 {
		return nil
	}
	cmd, ok := a.commands[args[0]]
	if !ok {
		a.printf("Unknown command %q. Type 'help' for a list of commands.\n", args[0])
		return nil
	}
	err := cmd.run(ctx, args[1:])
	if err == nil || errors.Is(err, errExit) {
		return err
	}
	a.report(ctx, err)
	return nil
}

// followSession drops the unpublished draft whenever the session ends.
func (a *App) followSession() (cancel func()) {
	return a.session.Subscribe(func(st session.State) {
		if st.Status == session.SignedOut {
			a.draft.Reset()
		}
	})
}

// open navigates to path and renders it if the guard allows.
func (a *App) open(ctx context.Context, path string, args []string) error {
	m, err := a.router.Navigate(a.session.State(), path)
	if err != nil {
		return err
	}
	switch m.Decision.Outcome {
	case guard.Pending:
		a.println("Loading your session, try again in a moment.")
		return nil
	case guard.RedirectLogin:
		a.println("Please sign in to continue.")
		if err := a.login(ctx); err != nil {
			return err
		}
		return a.open(ctx, path, args)
	case guard.RedirectDashboard:
		a.println("That page is only available to creators.")
		return a.open(ctx, guard.PathDashboard, nil)
	}
	return a.views[m.Pattern](ctx, m, args)
}

// report prints err in user terms. A token the backend refused ends the
// session.
func (a *App) report(ctx context.Context, err error) {
	a.log.Debug("command failed", zap.Error(err))

	var apiErr *apperr.APIError
	if errors.As(err, &apiErr) && errors.Is(apiErr.Kind, apperr.ErrUnauthorized) && !errors.Is(err, apperr.ErrInvalidCredentials) {
		if a.session.Identity() != nil {
			a.session.Invalidate(ctx)
			a.println("Your session has expired. Please sign in again.")
			return
		}
	}

	var vErr *apperr.ValidationError
	switch {
	case errors.As(err, &vErr) && !vErr.Empty():
		a.println("Please fix the following:")
		keys := make([]string, 0, len(vErr.Fields))
		for k := range vErr.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			a.printf("  %s: %s\n", k, vErr.Fields[k])
		}
	case errors.Is(err, apperr.ErrInvalidCredentials):
		a.println(apperr.UserMessage(err, "Incorrect email or password."))
	case errors.Is(err, apperr.ErrNetwork):
		a.online.Store(false)
		a.println("Cannot reach the server. Check your connection and try again.")
	case errors.Is(err, apperr.ErrNotFound):
		a.println(apperr.UserMessage(err, "Not found."))
	case errors.Is(err, apperr.ErrForbidden):
		a.println(apperr.UserMessage(err, "You are not allowed to do that."))
	case errors.Is(err, apperr.ErrUnauthorized):
		a.println("Please sign in first.")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		a.println("Cancelled.")
	default:
		a.println(apperr.UserMessage(err, "Something went wrong. Please try again."))
	}
}

func (a *App) prompt() string {
	status := "online"
	if !a.online.Load() {
		status = "offline"
	}
	if id := a.session.Identity(); id != nil {
		return fmt.Sprintf("creatorhub (%s) %s> ", status, id.Username)
	}
	return fmt.Sprintf("creatorhub (%s)> ", status)
}

// WatchHealth probes the backend every interval and keeps the prompt's
// online/offline indicator current. It returns when ctx is done.
func (a *App) WatchHealth(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.probe(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) probe(ctx context.Context) {
	pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	err := a.api.Health(pctx)
	cancel()

	online := err == nil
	if a.online.Swap(online) != online {
		a.log.Info("backend status changed", zap.Bool("online", online))
	}
}

// Online reports the last known backend status.
func (a *App) Online() bool { return a.online.Load() }

func (a *App) println(v ...any) { fmt.Fprintln(a.out, v...) }

func (a *App) printf(format string, v ...any) { fmt.Fprintf(a.out, format, v...) }
