package v1

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifySkipPaths(t *testing.T) {
	table := NewRouteTable(DefaultRules())

	for _, path := range []string{
		"/assets/app.css",
		"/static/logo.svg",
		"/_app/immutable/chunks/entry.js",
		"/favicon.ico",
		"/robots.txt",
		"/.well-known/security.txt",
		"/health",
		"/metrics",
	} {
		cl := table.Classify(path)
		assert.Equal(t, RouteSkip, cl.Class, path)
	}
}

func TestClassifyLongestPrefixWins(t *testing.T) {
	table := NewRouteTable(DefaultRules())

	cl := table.Classify("/dashboard/admin")
	require.Equal(t, RouteProtected, cl.Class)
	require.NotNil(t, cl.Rule)
	assert.Equal(t, "/dashboard/admin", cl.Rule.PathPrefix,
		"the admin rule must win over the generic /dashboard rule")

	cl = table.Classify("/dashboard/admin/users")
	require.NotNil(t, cl.Rule)
	assert.Equal(t, "/dashboard/admin", cl.Rule.PathPrefix)

	cl = table.Classify("/dashboard/admin/billing/invoices")
	require.NotNil(t, cl.Rule)
	assert.Equal(t, "/dashboard/admin/billing", cl.Rule.PathPrefix)

	cl = table.Classify("/dashboard/orders")
	require.NotNil(t, cl.Rule)
	assert.Equal(t, "/dashboard", cl.Rule.PathPrefix)
}

func TestClassifyOrderingIsNotInsertionOrder(t *testing.T) {
	// General rule deliberately listed before the specific one.
	table := NewRouteTable([]RouteRule{
		{PathPrefix: "/dashboard", RequireAuth: true},
		{PathPrefix: "/dashboard/admin", RequireAuth: true, AllowedProfiles: []string{"admin"}},
	})

	cl := table.Classify("/dashboard/admin")
	require.NotNil(t, cl.Rule)
	assert.Equal(t, "/dashboard/admin", cl.Rule.PathPrefix)
}

func TestClassifyMatchesWholeSegments(t *testing.T) {
	table := NewRouteTable(DefaultRules())

	assert.Equal(t, RouteUnclassified, table.Classify("/dashboardx").Class)
	assert.Equal(t, RouteProtected, table.Classify("/dashboard").Class)
	assert.Equal(t, RouteProtected, table.Classify("/settings/api-keys").Class)
}

func TestClassifyAuthPages(t *testing.T) {
	table := NewRouteTable(DefaultRules())

	for _, path := range []string{"/login", "/register"} {
		cl := table.Classify(path)
		assert.Equal(t, RoutePublic, cl.Class, path)
		assert.True(t, cl.AuthPage, path)
	}

	cl := table.Classify("/pricing")
	assert.Equal(t, RoutePublic, cl.Class)
	assert.False(t, cl.AuthPage)
}

func TestClassifyRootIsExact(t *testing.T) {
	table := NewRouteTable(DefaultRules())

	assert.Equal(t, RoutePublic, table.Classify("/").Class)
	assert.Equal(t, RouteUnclassified, table.Classify("/nonexistent").Class)
}
