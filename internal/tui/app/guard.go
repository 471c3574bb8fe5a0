package app

import "github.com/askmydocs/askdocs/internal/tui"

// Guard resolves the route to show. Protected routes fall back to login
// when there is no session; public routes always pass.
func Guard(authenticated bool, requested tui.Route) tui.Route {
	if requested.Protected() && !authenticated {
		return tui.RouteLogin
	}
	return requested
}
