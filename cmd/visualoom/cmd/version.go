package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/visualoom/visualoom/internal/ui"
	"github.com/visualoom/visualoom/pkg/version"
)

func newVersionCmd() *cobra.Command {
	var asJSON bool
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			if short {
				fmt.Fprintln(out, version.Short())
				return nil
			}

			info := version.GetInfo()

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			}

			styles := ui.GetStyles(noColor || !ui.IsTerminal(out))
			fmt.Fprintln(out, styles.Header.Render("visualoom "+info.Version))
			fmt.Fprintf(out, "  %s %s\n", styles.Label.Render("commit:"), info.Commit)
			fmt.Fprintf(out, "  %s  %s\n", styles.Label.Render("built:"), info.Date)
			fmt.Fprintf(out, "  %s     %s %s/%s\n", styles.Label.Render("go:"), info.GoVersion, info.OS, info.Arch)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output version info as JSON")
	cmd.Flags().BoolVar(&short, "short", false, "Output only the version number")

	return cmd
}
