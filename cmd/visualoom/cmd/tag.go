package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/visualoom/visualoom/internal/ui"
)

func newTagCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag",
		Short: "Manage image tags",
	}

	cmd.AddCommand(newTagAddCmd())
	cmd.AddCommand(newTagRemoveCmd())
	cmd.AddCommand(newTagListCmd())

	return cmd
}

func newTagAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <image-id> <tag-name>",
		Short: "Attach a tag to an image",
		Long: `Attach a tag to an image. The tag is created on first use; tag
names are case-insensitive, so "Alice" and "alice" are one tag.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := loadService()
			if err != nil {
				return err
			}
			defer func() { _ = svc.Close() }()

			added, err := svc.AddTag(args[0], args[1])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			styles := ui.GetStyles(noColor || !ui.IsTerminal(out))
			if added {
				fmt.Fprintln(out, styles.Success.Render(fmt.Sprintf("Tagged %s with @%s", args[0], args[1])))
			} else {
				fmt.Fprintln(out, styles.Label.Render("No change (unknown image or tag already attached)"))
			}
			return nil
		},
	}
}

func newTagRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <image-id> <tag-name>",
		Short: "Detach a tag from an image",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := loadService()
			if err != nil {
				return err
			}
			defer func() { _ = svc.Close() }()

			removed, err := svc.RemoveTag(args[0], args[1])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			styles := ui.GetStyles(noColor || !ui.IsTerminal(out))
			if removed {
				fmt.Fprintln(out, styles.Success.Render(fmt.Sprintf("Removed @%s from %s", args[1], args[0])))
			} else {
				fmt.Fprintln(out, styles.Label.Render("No change (tag was not attached)"))
			}
			return nil
		},
	}
}

func newTagListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := loadService()
			if err != nil {
				return err
			}
			defer func() { _ = svc.Close() }()

			out := cmd.OutOrStdout()
			styles := ui.GetStyles(noColor || !ui.IsTerminal(out))

			tags := svc.Tags()
			if len(tags) == 0 {
				fmt.Fprintln(out, styles.Label.Render("No tags."))
				return nil
			}
			for _, tag := range tags {
				fmt.Fprintf(out, "%s  %s  %s\n",
					styles.Dim.Render(tag.ID),
					styles.Accent.Render("@"+tag.Name),
					styles.Label.Render(string(tag.Type)))
			}
			return nil
		},
	}
}
