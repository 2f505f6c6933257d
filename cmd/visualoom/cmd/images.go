package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/visualoom/visualoom/internal/ui"
)

func newImagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "images",
		Short: "List and manage cataloged images",
	}

	cmd.AddCommand(newImagesListCmd())
	cmd.AddCommand(newImagesShowCmd())
	cmd.AddCommand(newImagesRemoveCmd())

	return cmd
}

func newImagesListCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all cataloged images",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := loadService()
			if err != nil {
				return err
			}
			defer func() { _ = svc.Close() }()

			images := svc.ListImages()
			out := cmd.OutOrStdout()

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(images)
			}

			styles := ui.GetStyles(noColor || !ui.IsTerminal(out))
			if len(images) == 0 {
				fmt.Fprintln(out, styles.Label.Render("Catalog is empty."))
				return nil
			}
			for _, img := range images {
				embedded := styles.Dim.Render("no-embedding")
				if len(img.Embedding) > 0 {
					embedded = styles.Success.Render("embedded")
				}
				fmt.Fprintf(out, "%s  %s  %s\n",
					styles.Dim.Render(img.ID),
					styles.Accent.Render(img.Path),
					embedded)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newImagesShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <image-id>",
		Short: "Show one image record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := loadService()
			if err != nil {
				return err
			}
			defer func() { _ = svc.Close() }()

			img, err := svc.GetImage(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			styles := ui.GetStyles(noColor || !ui.IsTerminal(out))

			fmt.Fprintln(out, styles.Header.Render(img.Path))
			fmt.Fprintf(out, "  id:       %s\n", img.ID)
			fmt.Fprintf(out, "  format:   %s\n", img.Format)
			if img.Width > 0 {
				fmt.Fprintf(out, "  size:     %dx%d\n", img.Width, img.Height)
			}
			fmt.Fprintf(out, "  bytes:    %d\n", img.SizeBytes)
			fmt.Fprintf(out, "  modified: %s\n", img.Modified.Format("2006-01-02 15:04:05"))
			fmt.Fprintf(out, "  embedded: %t\n", len(img.Embedding) > 0)
			for _, id := range img.Tags {
				fmt.Fprintf(out, "  tag:      @%s\n", svc.TagName(id))
			}
			return nil
		},
	}
}

func newImagesRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <image-id>",
		Short: "Remove an image from the catalog",
		Long: `Remove deletes the catalog record only. The image file on disk
is never touched.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := loadService()
			if err != nil {
				return err
			}
			defer func() { _ = svc.Close() }()

			if err := svc.DeleteImage(args[0]); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			styles := ui.GetStyles(noColor || !ui.IsTerminal(out))
			fmt.Fprintln(out, styles.Success.Render("Removed "+args[0]))
			return nil
		},
	}
}
