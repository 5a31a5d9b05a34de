package sdk

// Route names for the client shell.
const (
	RouteHome           = "/"
	RouteUserDashboard  = "/user-dashboard"
	RouteAdminDashboard = "/admin-dashboard"
	RouteCreateEvent    = "/create-event"
)

// RouteFor picks the landing route for a session. Unauthenticated
// visitors stay on the public home page; the role on the session
// decides which dashboard a signed-in user lands on.
func RouteFor(session *Session) string {
	switch {
	case session == nil:
		return RouteHome
	case session.IsAdmin():
		return RouteAdminDashboard
	default:
		return RouteUserDashboard
	}
}

// Guard resolves a navigation attempt: protected routes bounce
// unauthenticated visitors to home, and the admin dashboard requires
// the admin role. Everything else passes through unchanged.
func Guard(route string, session *Session) string {
	switch route {
	case RouteUserDashboard, RouteCreateEvent:
		if session == nil {
			return RouteHome
		}
	case RouteAdminDashboard:
		if session == nil {
			return RouteHome
		}
		if !session.IsAdmin() {
			return RouteUserDashboard
		}
	}
	return route
}
