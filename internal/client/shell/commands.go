package shell

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/atinyakov/creatorhub/internal/apperr"
	"github.com/atinyakov/creatorhub/internal/client/guard"
	"github.com/atinyakov/creatorhub/internal/client/order"
	"github.com/atinyakov/creatorhub/internal/models"
)

func (a *App) commandTable() map[string]command {
	goTo := func(path string) func(ctx context.Context, args []string) error {
		return func(ctx context.Context, args []string) error { return a.open(ctx, path, args) }
	}
	cmds := map[string]command{
		"help":           {"help", "show this list", a.help},
		"home":           {"home", "show the start page", goTo(guard.PathHome)},
		"services":       {"services", "list services matching the current filter", goTo(guard.PathServices)},
		"search":         {"search [text]", "search services by text; no text clears it", a.search},
		"filter":         {"filter [category=..] [min=..] [max=..] | clear", "narrow the service list", a.filter},
		"next":           {"next", "show the next page of services", a.page(1)},
		"prev":           {"prev", "show the previous page of services", a.page(-1)},
		"view":           {"view <id>", "show one service", a.viewService},
		"order":          {"order <id>", "describe what you need from a service", a.order},
		"login":          {"login", "sign in", goTo(guard.PathLogin)},
		"register":       {"register", "create an account", goTo(guard.PathRegister)},
		"logout":         {"logout", "sign out", a.logout},
		"whoami":         {"whoami", "show the signed in account", a.whoami},
		"dashboard":      {"dashboard", "show your dashboard", goTo(guard.PathDashboard)},
		"create-service": {"create-service", "publish a new service (creators)", goTo(guard.PathCreateService)},
		"profile":        {"profile [edit]", "show or edit your creator profile (creators)", goTo(guard.PathCreatorProfile)},
		"my-services":    {"my-services", "list your published services (creators)", goTo(guard.PathMyServices)},
		"open":           {"open <path>", "open a page by its path, e.g. /services/42", a.openPath},
		"exit":           {"exit", "leave the program", func(context.Context, []string) error { return errExit }},
	}
	cmds["quit"] = cmds["exit"]
	return cmds
}

func (a *App) help(context.Context, []string) error {
	names := make([]string, 0, len(a.commands))
	for name := range a.commands {
		if name != "quit" {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	w := newTable(a.out)
	fmt.Fprintln(w, "Available commands:")
	for _, name := range names {
		c := a.commands[name]
		fmt.Fprintf(w, "  %s\t%s\n", c.usage, c.help)
	}
	return w.Flush()
}

func (a *App) openPath(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.println("Usage: open <path>")
		return nil
	}
	return a.open(ctx, args[0], args[1:])
}

func (a *App) search(ctx context.Context, args []string) error {
	text := strings.Join(args, " ")
	a.catalog.Update(ctx, func(f *models.Filter) {
		f.Search = text
		f.Skip = 0
	})
	return a.open(ctx, guard.PathServices, nil)
}

func (a *App) filter(ctx context.Context, args []string) error {
	if len(args) == 1 && args[0] == "clear" {
		a.catalog.Clear(ctx)
		return a.open(ctx, guard.PathServices, nil)
	}
	if len(args) == 0 {
		a.println("Usage: filter [category=..] [min=..] [max=..] [limit=..] | clear")
		return nil
	}

	next := a.catalog.Filter()
	v := apperr.NewValidationError()
	for _, arg := range args {
		key, value, _ := strings.Cut(arg, "=")
		switch key {
		case "category":
			if value == "" || value == "all" {
				next.Category = ""
				continue
			}
			c, err := models.ParseCategory(value)
			if err != nil {
				v.Add(key, fmt.Sprintf("must be one of %s", categoryList()))
				continue
			}
			next.Category = c
		case "min", "max":
			var price *float64
			if value != "" {
				n, err := strconv.ParseFloat(value, 64)
				if err != nil || n < 0 {
					v.Add(key, "must be a non-negative number")
					continue
				}
				price = models.Price(n)
			}
			if key == "min" {
				next.MinPrice = price
			} else {
				next.MaxPrice = price
			}
		case "limit":
			n, err := strconv.Atoi(value)
			if err != nil || n < 0 {
				v.Add(key, "must be a non-negative whole number")
				continue
			}
			next.Limit = n
		default:
			v.Add(key, "unknown filter")
		}
	}
	if !v.Empty() {
		return v
	}

	next.Skip = 0
	a.catalog.Update(ctx, func(f *models.Filter) { *f = next })
	return a.open(ctx, guard.PathServices, nil)
}

func (a *App) page(dir int) func(ctx context.Context, args []string) error {
	return func(ctx context.Context, _ []string) error {
		size := a.catalog.Filter().Limit
		if size <= 0 {
			size = models.DefaultLimit
		}
		if dir < 0 && a.catalog.Filter().Skip == 0 {
			a.println("Already on the first page.")
			return nil
		}
		a.catalog.Update(ctx, func(f *models.Filter) {
			f.Skip = max(0, f.Skip+dir*size)
		})
		return a.open(ctx, guard.PathServices, nil)
	}
}

func (a *App) viewService(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.println("Usage: view <id>")
		return nil
	}
	return a.open(ctx, "/services/"+args[0], nil)
}

func (a *App) order(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.println("Usage: order <id>")
		return nil
	}
	listing, err := a.catalog.Get(ctx, args[0])
	if err != nil {
		return err
	}

	form := order.NewForm(a.session.Identity(), *listing)
	if form.Affordance() != order.OrderForm {
		a.println(form.Affordance().String() + ".")
		return nil
	}

	a.printf("Ordering %q from $%.2f.\n", listing.Title, listing.BasePrice)
	text, err := a.in.Line("Describe your requirements")
	if err != nil {
		return err
	}
	form.SetRequirements(text)
	ack, err := form.Submit()
	if err != nil {
		return err
	}
	a.println(ack.Message)
	return nil
}

func (a *App) logout(ctx context.Context, _ []string) error {
	if a.session.Identity() == nil {
		a.println("You are not signed in.")
		return nil
	}
	a.session.Logout(ctx)
	a.println("Signed out.")
	return nil
}

func (a *App) whoami(context.Context, []string) error {
	id := a.session.Identity()
	if id == nil {
		a.println("Not signed in.")
		return nil
	}
	a.printf("%s <%s> (%s)\n", id.DisplayName, id.Email, id.Role)
	return nil
}

// login prompts for credentials and signs in.
func (a *App) login(ctx context.Context) error {
	email, err := a.in.Line("Email")
	if err != nil {
		return err
	}
	password, err := a.in.Password("Password")
	if err != nil {
		return err
	}
	id, err := a.session.Login(ctx, models.Credentials{Email: email, Password: password})
	if err != nil {
		return err
	}
	a.printf("Welcome back, %s!\n", id.DisplayName)
	return nil
}

func (a *App) register(ctx context.Context) error {
	var reg models.Registration
	var err error
	if reg.Email, err = a.in.Line("Email"); err != nil {
		return err
	}
	if reg.Username, err = a.in.Line("Username"); err != nil {
		return err
	}
	if reg.FullName, err = a.in.Line("Full name"); err != nil {
		return err
	}
	if reg.Password, err = a.in.Password("Password"); err != nil {
		return err
	}
	kind, err := a.in.Default("Account type (buyer or creator)", string(models.RoleBuyer))
	if err != nil {
		return err
	}
	reg.UserType = models.Role(strings.ToLower(kind))

	id, err := a.session.Register(ctx, reg)
	if err != nil {
		return err
	}
	a.printf("Welcome to CreatorHub, %s!\n", id.DisplayName)
	if id.IsCreator() {
		a.println("Run 'profile edit' to set up your creator profile.")
	}
	return nil
}

func categoryList() string {
	names := make([]string, len(models.Categories))
	for i, c := range models.Categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}
