package app

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bapti-church/bapti-web/internal/role"
)

func init() { //nolint: gochecknoinits
	rootCmd.AddCommand(rolesCmd)
}

var rolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "Print the roles, their permissions and what each may assign",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return printRoles(cmd.OutOrStdout())
	},
}

func printRoles(out io.Writer) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0) //nolint:mnd

	fmt.Fprintln(w, "ROLE\tNAME\tPERMISSIONS\tASSIGNS")

	for _, r := range role.All() {
		perms := make([]string, 0, len(role.PermissionsOf(r)))
		for _, p := range role.PermissionsOf(r) {
			perms = append(perms, string(p))
		}

		assigns := make([]string, 0, len(role.AssignableRoles(r)))
		for _, a := range role.AssignableRoles(r) {
			assigns = append(assigns, a.String())
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			r, role.DisplayName(r), strings.Join(perms, ","), orDash(strings.Join(assigns, ",")))
	}

	return w.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}

	return s
}
