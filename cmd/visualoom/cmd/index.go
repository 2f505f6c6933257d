package cmd

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/visualoom/visualoom/internal/indexer"
	"github.com/visualoom/visualoom/internal/jobs"
	"github.com/visualoom/visualoom/internal/service"
	"github.com/visualoom/visualoom/internal/ui"
)

type indexOptions struct {
	tag        string
	background bool
}

func newIndexCmd() *cobra.Command {
	var opts indexOptions

	cmd := &cobra.Command{
		Use:   "index <directory>",
		Short: "Index a folder of images into the catalog",
		Long: `Index walks the directory recursively and catalogs every image
file not already present. Already-indexed paths are skipped, so
re-running index on the same folder is cheap.

Examples:
  visualoom index ~/Pictures
  visualoom index ~/Pictures/2024 --tag vacation
  visualoom index /mnt/photos --background`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.tag, "tag", "t", "", "Tag to attach to every newly indexed image")
	cmd.Flags().BoolVarP(&opts.background, "job", "j", false, "Run as a tracked job and poll its status")

	return cmd
}

func runIndex(cmd *cobra.Command, root string, opts indexOptions) error {
	svc, err := loadService()
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	out := cmd.OutOrStdout()
	styles := ui.GetStyles(noColor || !ui.IsTerminal(out))

	if opts.background {
		jobID := svc.SubmitIndex(cmd.Context(), root, opts.tag)
		fmt.Fprintf(out, "%s %s\n", styles.Header.Render("Job submitted:"), styles.Accent.Render(jobID))
		return pollJob(cmd, svc, jobID, out)
	}

	started := time.Now()
	var mu sync.Mutex
	total := 0

	result, err := svc.IndexSync(cmd.Context(), root, opts.tag, indexer.Options{
		OnTotal: func(n int) {
			mu.Lock()
			total = n
			mu.Unlock()
			if n > 0 {
				fmt.Fprintf(out, "Found %d new images\n", n)
			}
		},
		OnIndexed: func(done int) {
			mu.Lock()
			t := total
			mu.Unlock()
			fmt.Fprintf(out, "\r%s", ui.ProgressBar(done, t, 30))
		},
	})
	if err != nil {
		return err
	}
	if len(result.New) > 0 {
		fmt.Fprintln(out)
	}

	fmt.Fprintln(out, styles.Success.Render("Indexing complete"))
	fmt.Fprintf(out, "  scanned:  %d\n", result.Scanned)
	fmt.Fprintf(out, "  new:      %d\n", len(result.New))
	fmt.Fprintf(out, "  skipped:  %d\n", result.Skipped)
	fmt.Fprintf(out, "  embedded: %d\n", result.Embedded)
	fmt.Fprintf(out, "  elapsed:  %s\n", time.Since(started).Round(time.Millisecond))
	return nil
}

// pollJob watches a submitted job until it reaches a terminal state.
func pollJob(cmd *cobra.Command, svc *service.Service, jobID string, out io.Writer) error {
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-cmd.Context().Done():
			return cmd.Context().Err()
		case <-ticker.C:
		}

		snap, err := svc.JobStatus(jobID)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\r%s", ui.ProgressBar(snap.Indexed, snap.Total, 30))

		switch snap.State {
		case jobs.StateCompleted:
			fmt.Fprintf(out, "\nCompleted: %d images indexed\n", snap.Indexed)
			return nil
		case jobs.StateFailed:
			fmt.Fprintln(out)
			return fmt.Errorf("job failed: %s", snap.Error)
		}
	}
}
