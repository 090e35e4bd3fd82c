// Package guard decides whether a request may enter a protected route.
//
// Two checks compose: Authenticated needs a signed in identity, Roles needs a
// known profile whose role reaches one of the required roles. A profile that
// has not been loaded yet never satisfies a role check.
package guard

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/bapti-church/bapti-web/internal/access"
	"github.com/bapti-church/bapti-web/internal/role"
)

// Default redirect targets.
const (
	LoginPath = "/login"
	HomePath  = "/"
)

// Decision is the outcome of a check.
type Decision struct {
	Allowed bool `json:"allowed"`
	// Redirect is where a denied request goes.
	Redirect string `json:"redirect,omitempty"`
	// ReturnURL is the originally requested location, set when login is required.
	ReturnURL string `json:"returnUrl,omitempty"`
}

// Phase is a step of one evaluation.
type Phase string

const (
	PhasePending     Phase = "pending"
	PhasePendingRole Phase = "pending_role"
	PhaseAllowed     Phase = "allowed"
	PhaseDenied      Phase = "denied"
)

// Evaluation is a Decision together with the phases it went through.
type Evaluation struct {
	Decision
	Phases []Phase
}

// Guard evaluates access decisions and counts them.
type Guard struct {
	loginPath string
	homePath  string
	decisions *prometheus.CounterVec
}

// Option configures a Guard.
type Option func(*Guard)

// WithPaths overrides the login and home redirect targets.
func WithPaths(login, home string) Option {
	return func(g *Guard) {
		g.loginPath = login
		g.homePath = home
	}
}

// New creates a Guard. Decisions are counted in guard_decisions_total on reg;
// a nil reg disables counting.
func New(reg prometheus.Registerer, opts ...Option) *Guard {
	g := &Guard{loginPath: LoginPath, homePath: HomePath}

	for _, opt := range opts {
		opt(g)
	}

	if reg != nil {
		g.decisions = registerCounter(reg)
	}

	return g
}

func registerCounter(reg prometheus.Registerer) *prometheus.CounterVec {
	c := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "guard_decisions_total",
		Help: "Number of route guard decisions, by outcome.",
	}, []string{"outcome"})

	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing
			}
		}

		return nil
	}

	return c
}

// Authenticated allows iff ac holds an identity. A denial redirects to the
// login page and remembers requested.
func (g *Guard) Authenticated(ac *access.Context, requested string) Decision {
	if ac != nil && ac.Identity() != nil {
		return Decision{Allowed: true}
	}

	return Decision{Redirect: g.loginPath, ReturnURL: requested}
}

// Roles allows iff required is empty or the profile's role is at least one
// of required. A denial redirects home.
func (g *Guard) Roles(ac *access.Context, required ...role.Role) Decision {
	if IsAuthorized(ac, required...) {
		return Decision{Allowed: true}
	}

	return Decision{Redirect: g.homePath}
}

// Evaluate runs both checks as one navigation attempt:
//
//	pending -> pending_role -> allowed | denied
//
// Every call starts over; nothing is retried.
func (g *Guard) Evaluate(ac *access.Context, requested string, required ...role.Role) Evaluation {
	ev := Evaluation{Phases: []Phase{PhasePending}}

	if d := g.Authenticated(ac, requested); !d.Allowed {
		ev.Decision = d
		ev.Phases = append(ev.Phases, PhaseDenied)
		g.count("login")

		return ev
	}

	ev.Phases = append(ev.Phases, PhasePendingRole)
	ev.Decision = g.Roles(ac, required...)

	if ev.Allowed {
		ev.Phases = append(ev.Phases, PhaseAllowed)
		g.count("allowed")
	} else {
		ev.Phases = append(ev.Phases, PhaseDenied)
		g.count("forbidden")
	}

	return ev
}

// IsAuthorized is the snapshot check for conditionals: true iff required is
// empty or the current profile reaches one of required.
func IsAuthorized(ac *access.Context, required ...role.Role) bool {
	if len(required) == 0 {
		return true
	}

	if ac == nil {
		return false
	}

	snap := ac.Snapshot()
	if snap.State != access.Authorized {
		return false
	}

	return role.AtLeastOne(snap.Profile.Role, required)
}

func (g *Guard) count(outcome string) {
	if g.decisions != nil {
		g.decisions.WithLabelValues(outcome).Inc()
	}
}
