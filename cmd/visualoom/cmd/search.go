package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/visualoom/visualoom/internal/search"
	"github.com/visualoom/visualoom/internal/ui"
)

type searchOptions struct {
	format string
	topK   int
}

func newSearchCmd() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the catalog by tags and meaning",
		Long: `Search combines exact tag matching with semantic similarity.

Mark people with @ and topics with #; the rest of the query is
matched against image content by embedding similarity.

Examples:
  visualoom search "sunset over water"
  visualoom search "@alice birthday"
  visualoom search "@alice @bob #hiking mountains"
  visualoom search "red car" --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")
	cmd.Flags().IntVarP(&opts.topK, "top-k", "k", 0, "Semantic result cap (0 uses the configured default)")

	return cmd
}

func runSearch(cmd *cobra.Command, query string, opts searchOptions) error {
	svc, err := loadService()
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	results, err := svc.Search(cmd.Context(), query, opts.topK)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	if opts.format == "json" {
		type jsonResult struct {
			ID    string   `json:"id"`
			Path  string   `json:"path"`
			Kind  string   `json:"match"`
			Score float64  `json:"score,omitempty"`
			Tags  []string `json:"tags,omitempty"`
		}
		payload := make([]jsonResult, 0, len(results))
		for _, r := range results {
			tagNames := make([]string, 0, len(r.Image.Tags))
			for _, id := range r.Image.Tags {
				tagNames = append(tagNames, svc.TagName(id))
			}
			payload = append(payload, jsonResult{
				ID:    r.Image.ID,
				Path:  r.Image.Path,
				Kind:  string(r.Kind),
				Score: r.Score,
				Tags:  tagNames,
			})
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	}

	styles := ui.GetStyles(noColor || !ui.IsTerminal(out))

	if len(results) == 0 {
		fmt.Fprintln(out, styles.Label.Render("No matches."))
		return nil
	}

	fmt.Fprintln(out, styles.Header.Render(fmt.Sprintf("%d results", len(results))))
	for i, r := range results {
		marker := styles.TagChip.Render("tag")
		if r.Kind == search.MatchSemantic {
			marker = styles.Score.Render(fmt.Sprintf("%.3f", r.Score))
		}
		fmt.Fprintf(out, "%2d. %s  %s\n", i+1, styles.Accent.Render(r.Image.Path), marker)

		if len(r.Image.Tags) > 0 {
			names := make([]string, 0, len(r.Image.Tags))
			for _, id := range r.Image.Tags {
				names = append(names, "@"+svc.TagName(id))
			}
			fmt.Fprintf(out, "    %s\n", styles.Label.Render(strings.Join(names, " ")))
		}
	}
	return nil
}
