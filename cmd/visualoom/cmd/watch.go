package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/visualoom/visualoom/internal/ui"
	"github.com/visualoom/visualoom/internal/watcher"
)

func newWatchCmd() *cobra.Command {
	var tag string

	cmd := &cobra.Command{
		Use:   "watch <directory>",
		Short: "Watch a folder and index new images automatically",
		Long: `Watch runs an initial sweep, then stays in the foreground and
indexes new images as they appear under the directory. Bursts of
file activity are debounced into a single sweep.

Stop with Ctrl-C.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, args[0], tag)
		},
	}

	cmd.Flags().StringVarP(&tag, "tag", "t", "", "Tag to attach to every newly indexed image")

	return cmd
}

func runWatch(cmd *cobra.Command, root, tag string) error {
	svc, err := loadService()
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	out := cmd.OutOrStdout()
	styles := ui.GetStyles(noColor || !ui.IsTerminal(out))

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initial sweep so the catalog starts current.
	jobID := svc.SubmitIndex(ctx, root, tag)
	fmt.Fprintf(out, "%s %s\n", styles.Header.Render("Initial sweep:"), styles.Dim.Render(jobID))

	w := watcher.New(root, svc.Config().Watcher.Debounce, func(r string) {
		id := svc.SubmitIndex(ctx, r, tag)
		fmt.Fprintf(out, "%s %s\n", styles.Label.Render("Change detected, sweep:"), styles.Dim.Render(id))
	}, nil)

	if err := w.Start(ctx); err != nil {
		return err
	}
	defer w.Stop()

	fmt.Fprintln(out, styles.Success.Render("Watching "+root))
	<-ctx.Done()
	fmt.Fprintln(out, styles.Label.Render("Stopping..."))
	return nil
}
