package gate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easymake/clubportal/cmd/clubportal/internal/auth"
)

var leaders = []auth.Role{auth.RoleClubLeader, auth.RoleCoLeader, auth.RoleSuperAdmin}
var nonLeaders = []auth.Role{auth.RoleAnonymous, auth.RoleMember}

func newDefaultGate(t *testing.T) *Gate {
	t.Helper()
	g, err := New(DefaultPaths())
	require.NoError(t, err)
	return g
}

func TestDecide_PublicPathsAlwaysAllowed(t *testing.T) {
	g := newDefaultGate(t)
	paths := []string{"/", "/clubs", "/clubs/42", "/activities", "/not-authorized", "/administrator", "/admins/x", "", "clubs"}

	for _, p := range paths {
		for _, role := range auth.Roles() {
			assert.Equal(t, Allowed(), g.Decide(p, role), "path %q role %s", p, role)
		}
	}
}

func TestDecide_SignIn(t *testing.T) {
	g := newDefaultGate(t)

	for _, role := range leaders {
		assert.Equal(t, RedirectTo("/admin"), g.Decide("/admin/login", role), "role %s", role)
		assert.Equal(t, RedirectTo("/admin"), g.Decide("/admin/login/", role), "role %s", role)
	}
	for _, role := range nonLeaders {
		assert.Equal(t, Allowed(), g.Decide("/admin/login", role), "role %s", role)
	}
}

func TestDecide_Table(t *testing.T) {
	g := newDefaultGate(t)

	tests := []struct {
		name string
		path string
		role auth.Role
		want Verdict
	}{
		{"system for super-admin", "/admin/system/x", auth.RoleSuperAdmin, Allowed()},
		{"system root for super-admin", "/admin/system", auth.RoleSuperAdmin, Allowed()},
		{"system for club-leader", "/admin/system/x", auth.RoleClubLeader, RedirectTo("/not-authorized")},
		{"system for co-leader", "/admin/system/users", auth.RoleCoLeader, RedirectTo("/not-authorized")},
		{"system for anonymous", "/admin/system/x", auth.RoleAnonymous, RedirectTo("/not-authorized")},
		{"my-club for co-leader", "/admin/my-club/y", auth.RoleCoLeader, Allowed()},
		{"my-club for club-leader", "/admin/my-club", auth.RoleClubLeader, Allowed()},
		{"my-club for super-admin", "/admin/my-club/y", auth.RoleSuperAdmin, Allowed()},
		{"my-club for member", "/admin/my-club/y", auth.RoleMember, RedirectTo("/not-authorized")},
		{"my-club for anonymous", "/admin/my-club/y", auth.RoleAnonymous, RedirectTo("/not-authorized")},
		{"other admin for anonymous", "/admin/other", auth.RoleAnonymous, RedirectTo("/admin/login")},
		{"other admin for member", "/admin/other", auth.RoleMember, RedirectTo("/admin/login")},
		{"admin home for leader", "/admin", auth.RoleClubLeader, Allowed()},
		{"admin home for anonymous", "/admin", auth.RoleAnonymous, RedirectTo("/admin/login")},
		{"similar prefix is not system", "/admin/systems", auth.RoleClubLeader, Allowed()},
		{"dot segments are resolved", "/admin/my-club/../system/x", auth.RoleClubLeader, RedirectTo("/not-authorized")},
		{"escaping the prefix is public", "/admin/../clubs", auth.RoleAnonymous, Allowed()},
		{"unknown role is not a leader", "/admin/other", auth.Role("root"), RedirectTo("/admin/login")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, g.Decide(tt.path, tt.role))
		})
	}
}

func TestDecide_Deterministic(t *testing.T) {
	g := newDefaultGate(t)
	for _, role := range auth.Roles() {
		first := g.Decide("/admin/my-club/events", role)
		for i := 0; i < 10; i++ {
			assert.Equal(t, first, g.Decide("/admin/my-club/events", role))
		}
	}
}

func TestDecide_RedirectTargetsDoNotLoop(t *testing.T) {
	g := newDefaultGate(t)
	paths := []string{"/admin", "/admin/login", "/admin/system/a", "/admin/my-club/b", "/admin/c/d"}

	for _, role := range auth.Roles() {
		for _, p := range paths {
			v := g.Decide(p, role)
			if v.IsAllowed() {
				continue
			}
			assert.True(t, g.Decide(v.Location, role).IsAllowed(), "%s -> %s loops for %s", p, v.Location, role)
		}
	}
}

func TestNew_RejectsUnsafeLayouts(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Paths)
	}{
		{"root admin prefix", func(p *Paths) { p.AdminPrefix = "/" }},
		{"not-authorized inside admin", func(p *Paths) { p.NotAuthorized = "/admin/denied" }},
		{"sign-in outside admin", func(p *Paths) { p.SignIn = "/login" }},
		{"system prefix outside admin", func(p *Paths) { p.SystemPrefix = "/system" }},
		{"admin home equals sign-in", func(p *Paths) { p.AdminHome = "/admin/login" }},
		{"admin home under system", func(p *Paths) { p.AdminHome = "/admin/system/home" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			paths := DefaultPaths()
			tt.mutate(&paths)
			assert.Error(t, paths.Validate())
		})
	}
}

func TestNew_CustomLayout(t *testing.T) {
	g, err := New(Paths{
		AdminPrefix:   "/console/",
		SignIn:        "/console/sign-in",
		AdminHome:     "/console/dashboard",
		SystemPrefix:  "/console/platform",
		ClubPrefix:    "/console/club",
		NotAuthorized: "/forbidden",
	})
	require.NoError(t, err)

	assert.Equal(t, "/console", g.Paths().AdminPrefix)
	assert.Equal(t, RedirectTo("/console/dashboard"), g.Decide("/console/sign-in", auth.RoleCoLeader))
	assert.Equal(t, RedirectTo("/forbidden"), g.Decide("/console/platform/roles", auth.RoleCoLeader))
	assert.Equal(t, RedirectTo("/console/sign-in"), g.Decide("/console/dashboard", auth.RoleMember))
	assert.Equal(t, Allowed(), g.Decide("/admin/system/x", auth.RoleAnonymous))
}

func TestVerdict_String(t *testing.T) {
	assert.Equal(t, "allow", Allowed().String())
	assert.Equal(t, "redirect:/admin/login", RedirectTo("/admin/login").String())
}
