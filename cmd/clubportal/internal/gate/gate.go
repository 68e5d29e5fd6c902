// Package gate decides whether a role may reach an admin console path.
//
// Decide is a pure function of (path, role). The HTTP layer enforces its
// verdicts as redirects before any page handler runs.
package gate

import (
	"fmt"
	"path"
	"strings"

	"github.com/easymake/clubportal/cmd/clubportal/internal/auth"
)

// Kind distinguishes the two verdict shapes.
type Kind int

const (
	// Allow permits the navigation.
	Allow Kind = iota
	// Redirect sends the caller to Verdict.Location.
	Redirect
)

// Verdict is the outcome of a gate decision.
type Verdict struct {
	Kind     Kind
	Location string
}

// Allowed returns the permitting verdict.
func Allowed() Verdict {
	return Verdict{Kind: Allow}
}

// RedirectTo returns a verdict redirecting to location.
func RedirectTo(location string) Verdict {
	return Verdict{Kind: Redirect, Location: location}
}

// IsAllowed reports whether the verdict permits navigation.
func (v Verdict) IsAllowed() bool {
	return v.Kind == Allow
}

func (v Verdict) String() string {
	if v.Kind == Allow {
		return "allow"
	}
	return "redirect:" + v.Location
}

// Paths names the routes the gate reasons about.
type Paths struct {
	AdminPrefix   string
	SignIn        string
	AdminHome     string
	SystemPrefix  string
	ClubPrefix    string
	NotAuthorized string
}

// DefaultPaths returns the portal's route layout.
func DefaultPaths() Paths {
	return Paths{
		AdminPrefix:   "/admin",
		SignIn:        "/admin/login",
		AdminHome:     "/admin",
		SystemPrefix:  "/admin/system",
		ClubPrefix:    "/admin/my-club",
		NotAuthorized: "/not-authorized",
	}
}

// Gate evaluates navigation requests against a fixed route layout.
type Gate struct {
	paths Paths
}

// New validates the paths and returns a Gate.
func New(paths Paths) (*Gate, error) {
	normalized := paths.normalize()
	if err := normalized.checkLayout(); err != nil {
		return nil, err
	}
	g := &Gate{paths: normalized}
	if err := g.checkRedirectTargets(); err != nil {
		return nil, err
	}
	return g, nil
}

// MustNew is New for static configurations; it panics on invalid paths.
func MustNew(paths Paths) *Gate {
	g, err := New(paths)
	if err != nil {
		panic(err)
	}
	return g
}

// Validate reports whether the paths produce a total, non-looping gate.
func (p Paths) Validate() error {
	_, err := New(p)
	return err
}

// Paths returns the normalized layout in use.
func (g *Gate) Paths() Paths {
	return g.paths
}

// Decide returns the verdict for navigating to requested with role.
// The first matching rule wins.
func (g *Gate) Decide(requested string, role auth.Role) Verdict {
	p := cleanPath(requested)

	switch {
	case p == g.paths.SignIn:
		if role.IsLeader() {
			return RedirectTo(g.paths.AdminHome)
		}
		return Allowed()

	case underPrefix(p, g.paths.SystemPrefix):
		if role.IsSuperAdmin() {
			return Allowed()
		}
		return RedirectTo(g.paths.NotAuthorized)

	case underPrefix(p, g.paths.ClubPrefix):
		if role.IsLeader() {
			return Allowed()
		}
		return RedirectTo(g.paths.NotAuthorized)

	case underPrefix(p, g.paths.AdminPrefix):
		if role.IsLeader() {
			return Allowed()
		}
		return RedirectTo(g.paths.SignIn)

	default:
		return Allowed()
	}
}

func (p Paths) normalize() Paths {
	return Paths{
		AdminPrefix:   cleanPath(p.AdminPrefix),
		SignIn:        cleanPath(p.SignIn),
		AdminHome:     cleanPath(p.AdminHome),
		SystemPrefix:  cleanPath(p.SystemPrefix),
		ClubPrefix:    cleanPath(p.ClubPrefix),
		NotAuthorized: cleanPath(p.NotAuthorized),
	}
}

func (p Paths) checkLayout() error {
	if p.AdminPrefix == "/" {
		return fmt.Errorf("admin prefix must not be the site root")
	}
	for name, value := range map[string]string{
		"sign-in":       p.SignIn,
		"admin home":    p.AdminHome,
		"system prefix": p.SystemPrefix,
		"club prefix":   p.ClubPrefix,
	} {
		if !underPrefix(value, p.AdminPrefix) {
			return fmt.Errorf("%s path %q must be under admin prefix %q", name, value, p.AdminPrefix)
		}
	}
	if underPrefix(p.NotAuthorized, p.AdminPrefix) {
		return fmt.Errorf("not-authorized path %q must be outside admin prefix %q", p.NotAuthorized, p.AdminPrefix)
	}
	if p.SignIn == p.AdminHome {
		return fmt.Errorf("sign-in path and admin home must differ")
	}
	if underPrefix(p.AdminHome, p.SystemPrefix) {
		return fmt.Errorf("admin home %q must be reachable by every leader role", p.AdminHome)
	}
	return nil
}

// checkRedirectTargets ensures that a role sent somewhere by the gate is
// allowed to stay there, for every role and every route class.
func (g *Gate) checkRedirectTargets() error {
	probes := []string{
		g.paths.SignIn,
		g.paths.AdminHome,
		g.paths.AdminPrefix,
		g.paths.SystemPrefix,
		g.paths.ClubPrefix,
		g.paths.NotAuthorized,
		path.Join(g.paths.AdminPrefix, "probe"),
	}
	for _, role := range auth.Roles() {
		for _, probe := range probes {
			v := g.Decide(probe, role)
			if v.IsAllowed() {
				continue
			}
			if next := g.Decide(v.Location, role); !next.IsAllowed() {
				return fmt.Errorf("redirect loop for role %s: %s -> %s -> %s", role, probe, v.Location, next.Location)
			}
		}
	}
	return nil
}

// cleanPath canonicalizes a request path so that dot segments and trailing
// slashes cannot be used to step around a prefix.
func cleanPath(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}

// underPrefix reports whether p equals prefix or lies beneath it on a
// segment boundary.
func underPrefix(p, prefix string) bool {
	if prefix == "/" {
		return true
	}
	return p == prefix || strings.HasPrefix(p, prefix+"/")
}
