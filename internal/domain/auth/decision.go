package auth

// DecisionKind describes the outcome of a route-access evaluation.
type DecisionKind int

const (
	// DecisionRender lets the view render normally.
	DecisionRender DecisionKind = iota
	// DecisionPending means the session is still loading; render a loading state.
	DecisionPending
	// DecisionRedirect means the view must navigate to Target.
	DecisionRedirect
)

// Decision is the single outcome of DecideRedirect for one (path, session) pair.
type Decision struct {
	Kind   DecisionKind
	Target string
	Class  RouteClass
	Reason string
}

// Redirects reports whether the decision requires a navigation.
func (d Decision) Redirects() bool { return d.Kind == DecisionRedirect }

// Reason values attached to decisions for logging.
const (
	ReasonLoading       = "loading"
	ReasonAuthenticated = "already_authenticated"
	ReasonNotAdmin      = "admin_required"
	ReasonLoginRequired = "login_required"
)

// DecideRedirect evaluates the route-access rules top to bottom; the first match wins.
// Authentication is checked before authorization for anonymous sessions, and the admin
// login route never triggers any rule.
func DecideRedirect(path string, v View, routes RouteTable) Decision {
	p := NormalizePath(path)
	class := routes.Classify(p)
	landing := NormalizePath(routes.Landing)
	entry := NormalizePath(routes.Entry)

	switch {
	case v.Loading:
		return Decision{Kind: DecisionPending, Class: class, Reason: ReasonLoading}
	case v.LoggedIn && class == RouteAuthOnly && p != landing:
		return Decision{Kind: DecisionRedirect, Target: landing, Class: class, Reason: ReasonAuthenticated}
	case v.LoggedIn && class == RouteAdmin && !v.Admin && p != landing:
		return Decision{Kind: DecisionRedirect, Target: landing, Class: class, Reason: ReasonNotAdmin}
	case !v.LoggedIn && class.Protected() && p != entry:
		return Decision{Kind: DecisionRedirect, Target: entry, Class: class, Reason: ReasonLoginRequired}
	default:
		return Decision{Kind: DecisionRender, Class: class}
	}
}
