package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/visualoom/visualoom/internal/ui"
)

func newStatusCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show catalog statistics",
		Long: `Status reports how many images are cataloged, how many carry an
embedding, and how many tags exist.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")

	return cmd
}

func runStatus(cmd *cobra.Command, asJSON bool) error {
	svc, err := loadService()
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	stats := svc.Stats()
	out := cmd.OutOrStdout()

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}

	styles := ui.GetStyles(noColor || !ui.IsTerminal(out))
	cfg := svc.Config()

	fmt.Fprintln(out, styles.Header.Render("VisuaLoom catalog"))
	fmt.Fprintf(out, "  data dir: %s\n", cfg.Paths.DataDir)
	fmt.Fprintf(out, "  images:   %s\n", styles.Accent.Render(fmt.Sprintf("%d", stats.Images)))
	fmt.Fprintf(out, "  embedded: %d\n", stats.Embedded)
	fmt.Fprintf(out, "  tags:     %d\n", stats.Tags)

	if tags := svc.Tags(); len(tags) > 0 {
		fmt.Fprintln(out, styles.Label.Render("  known tags:"))
		for _, tag := range tags {
			fmt.Fprintf(out, "    @%s (%s)\n", tag.Name, tag.Type)
		}
	}
	return nil
}
