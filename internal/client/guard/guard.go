// Package guard decides whether the current session may enter a route.
//
// Every gated route goes through Evaluate; the per-route requirement is
// declared once in the route table and never re-checked ad hoc by views.
package guard

import (
	"fmt"

	"github.com/atinyakov/creatorhub/internal/client/session"
	"github.com/atinyakov/creatorhub/internal/models"
)

type kind int

const (
	public kind = iota
	authenticated
	role
)

// Requirement is what a route demands of the session.
type Requirement struct {
	kind kind
	role models.Role
}

var (
	// Public routes are open to everyone.
	Public = Requirement{kind: public}
	// Authenticated routes need any signed-in identity.
	Authenticated = Requirement{kind: authenticated}
)

// RequireRole returns a requirement for a signed-in identity with role r.
func RequireRole(r models.Role) Requirement {
	return Requirement{kind: role, role: r}
}

func (r Requirement) String() string {
	switch r.kind {
	case authenticated:
		return "authenticated"
	case role:
		return "role:" + string(r.role)
	default:
		return "public"
	}
}

// Outcome is the guard's verdict.
type Outcome int

const (
	// Pending means the session is still restoring; show a neutral indicator.
	Pending Outcome = iota
	Allow
	RedirectLogin
	RedirectDashboard
)

func (o Outcome) String() string {
	switch o {
	case Allow:
		return "allow"
	case RedirectLogin:
		return "redirect to login"
	case RedirectDashboard:
		return "redirect to dashboard"
	default:
		return "pending"
	}
}

// Decision is the result of Evaluate. Identity is set on Allow for
// non-public routes; Target is set on redirects.
type Decision struct {
	Outcome  Outcome
	Identity *models.Identity
	Target   string
}

// Evaluate applies req to the session snapshot st.
func Evaluate(st session.State, req Requirement) Decision {
	if st.Loading() {
		return Decision{Outcome: Pending}
	}
	if req.kind == public {
		return Decision{Outcome: Allow, Identity: st.Identity}
	}
	if st.Identity == nil {
		return Decision{Outcome: RedirectLogin, Target: PathLogin}
	}
	if req.kind == role && st.Identity.Role != req.role {
		return Decision{Outcome: RedirectDashboard, Target: PathDashboard}
	}
	return Decision{Outcome: Allow, Identity: st.Identity}
}

// Err turns a non-Allow decision into an error for command-style callers.
func (d Decision) Err() error {
	switch d.Outcome {
	case Allow:
		return nil
	case Pending:
		return fmt.Errorf("session is still loading")
	default:
		return &RedirectError{Decision: d}
	}
}

// RedirectError reports that navigation was redirected.
type RedirectError struct {
	Decision Decision
}

func (e *RedirectError) Error() string {
	return fmt.Sprintf("%s (%s)", e.Decision.Outcome, e.Decision.Target)
}
