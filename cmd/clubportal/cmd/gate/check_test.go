package gate

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easymake/clubportal/cmd/clubportal/internal/auth"
	gatepkg "github.com/easymake/clubportal/cmd/clubportal/internal/gate"
)

func TestRenderVerdicts(t *testing.T) {
	pterm.DisableStyling()
	t.Cleanup(pterm.EnableStyling)

	g, err := gatepkg.New(gatepkg.DefaultPaths())
	require.NoError(t, err)

	var buf bytes.Buffer
	err = renderVerdicts(&buf, g, []string{"/admin/other", "/clubs"}, []auth.Role{auth.RoleAnonymous, auth.RoleClubLeader})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "anonymous")
	assert.Contains(t, lines[0], "club-leader")
	assert.Contains(t, lines[1], "→ /admin/login")
	assert.Contains(t, lines[1], "allow")
	assert.Equal(t, 2, strings.Count(lines[2], "allow"))
}

func TestRoleNames(t *testing.T) {
	assert.Equal(t, "anonymous, member, club-leader, co-leader, super-admin", roleNames())
}
