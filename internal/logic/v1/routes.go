package v1

import (
	"sort"
	"strings"
)

// RouteClass is the category a path classifies into.
type RouteClass int

const (
	// RouteSkip bypasses the guard entirely: static assets, framework
	// internals and the gateway's own operational endpoints.
	RouteSkip RouteClass = iota
	// RoutePublic needs no session; identity is attached when available.
	RoutePublic
	// RouteProtected requires a session and is subject to the matched
	// rule's profile and role allow-lists.
	RouteProtected
	// RouteUnclassified matched no rule; passes through like a public
	// route.
	RouteUnclassified
)

// RouteRule restricts a path prefix. Static configuration, immutable at
// runtime.
type RouteRule struct {
	PathPrefix      string
	RequireAuth     bool
	AllowedProfiles []string
	AllowedRoles    []string
}

// Classification is the result of matching a path against the table.
type Classification struct {
	Class RouteClass
	Rule  *RouteRule
	// AuthPage marks the login/register pages, which are public but bounce
	// already-authenticated users to the dashboard.
	AuthPage bool
}

// RouteTable classifies request paths. Protected rules are matched
// longest-prefix-first: with overlapping prefixes like /dashboard and
// /dashboard/admin, insertion order would let the general rule shadow the
// specific one, so ordering is made explicit at construction.
type RouteTable struct {
	skipPrefixes []string
	authPages    []string
	public       []string
	rules        []RouteRule // sorted by descending prefix length
}

// NewRouteTable builds a RouteTable from the given protected rules. The
// rules slice is copied and sorted; the input is not retained.
func NewRouteTable(rules []RouteRule) *RouteTable {
	sorted := make([]RouteRule, len(rules))
	copy(sorted, rules)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].PathPrefix) > len(sorted[j].PathPrefix)
	})

	return &RouteTable{
		skipPrefixes: []string{
			"/_app/",
			"/assets/",
			"/static/",
			"/favicon.ico",
			"/robots.txt",
			"/.well-known/",
			"/health",
			"/ready",
			"/metrics",
		},
		authPages: []string{"/login", "/register"},
		public:    []string{"/", "/about", "/pricing", "/contact", "/login", "/register"},
		rules:     sorted,
	}
}

// DefaultRules is the route configuration for the trading frontend:
// dashboards are segmented per profile type, and the admin billing area is
// additionally role-restricted.
func DefaultRules() []RouteRule {
	return []RouteRule{
		{PathPrefix: "/dashboard", RequireAuth: true},
		{PathPrefix: "/dashboard/trader", RequireAuth: true, AllowedProfiles: []string{"trader"}},
		{PathPrefix: "/dashboard/influencer", RequireAuth: true, AllowedProfiles: []string{"influencer"}},
		{PathPrefix: "/dashboard/admin", RequireAuth: true, AllowedProfiles: []string{"admin"}},
		{PathPrefix: "/dashboard/admin/billing", RequireAuth: true, AllowedProfiles: []string{"admin"}, AllowedRoles: []string{"owner", "super_admin"}},
		{PathPrefix: "/settings", RequireAuth: true},
	}
}

// Classify categorizes the path. Skip wins over everything; protected
// rules are checked longest-prefix-first; auth pages and public prefixes
// come last.
func (t *RouteTable) Classify(path string) Classification {
	for _, p := range t.skipPrefixes {
		if strings.HasPrefix(path, p) {
			return Classification{Class: RouteSkip}
		}
	}

	for i := range t.rules {
		if matchPrefix(path, t.rules[i].PathPrefix) {
			return Classification{Class: RouteProtected, Rule: &t.rules[i]}
		}
	}

	for _, p := range t.authPages {
		if matchPrefix(path, p) {
			return Classification{Class: RoutePublic, AuthPage: true}
		}
	}
	for _, p := range t.public {
		if matchPrefix(path, p) {
			return Classification{Class: RoutePublic}
		}
	}

	return Classification{Class: RouteUnclassified}
}

// matchPrefix matches whole path segments: /dashboard matches /dashboard
// and /dashboard/orders but not /dashboardx.
func matchPrefix(path, prefix string) bool {
	if prefix == "/" {
		return path == "/"
	}
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}
