package gate

import (
	"fmt"
	"io"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/easymake/clubportal/cmd/clubportal/cmd/cmdutil"
	"github.com/easymake/clubportal/cmd/clubportal/internal/auth"
	"github.com/easymake/clubportal/cmd/clubportal/internal/config"
	gatepkg "github.com/easymake/clubportal/cmd/clubportal/internal/gate"
)

var checkCmd = &cobra.Command{
	Use:   "check <path> [path...]",
	Short: "Show the gate verdict for paths",
	Long: `Evaluates the configured route gate for each path and prints the verdict
per role. Use --role to restrict the output to one role.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())

		g, err := cmdutil.NewGate(cfg)
		if err != nil {
			return err
		}

		roles := auth.Roles()
		if roleInput != "" {
			role, ok := auth.ParseRole(roleInput)
			if !ok {
				return fmt.Errorf("invalid role %q\nValid roles are: %s", roleInput, roleNames())
			}
			roles = []auth.Role{role}
		}

		return renderVerdicts(cmd.OutOrStdout(), g, args, roles)
	},
}

func renderVerdicts(out io.Writer, g *gatepkg.Gate, paths []string, roles []auth.Role) error {
	data := pterm.TableData{append([]string{"PATH"}, roleStrings(roles)...)}
	for _, p := range paths {
		row := []string{p}
		for _, role := range roles {
			verdict := g.Decide(p, role)
			if verdict.IsAllowed() {
				row = append(row, pterm.Green("allow"))
			} else {
				row = append(row, pterm.Yellow("→ "+verdict.Location))
			}
		}
		data = append(data, row)
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, table)
	return err
}

func roleStrings(roles []auth.Role) []string {
	out := make([]string, 0, len(roles))
	for _, role := range roles {
		out = append(out, string(role))
	}
	return out
}

func roleNames() string {
	return strings.Join(roleStrings(auth.Roles()), ", ")
}
