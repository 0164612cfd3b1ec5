// Package images lists tunaforge-managed images.
package images

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/docker/go-units"
	"github.com/spf13/cobra"

	"github.com/gh-core-team/tunaforge/internal/cmdutil"
)

// NewCmdImages creates the images command.
func NewCmdImages(f *cmdutil.Factory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "images",
		Short: "List images built by tunaforge",
		Long: `Lists local images carrying the tunaforge management label, with
their tags, creation time and size.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, f)
		},
	}
	return cmd
}

func run(cmd *cobra.Command, f *cmdutil.Factory) error {
	ios := f.IOStreams
	ctx := cmd.Context()

	client, err := f.Client(ctx)
	if err != nil {
		return cmdutil.HandleError(ios.ErrOut, err)
	}

	summaries, err := client.ListImages(ctx)
	if err != nil {
		return cmdutil.HandleError(ios.ErrOut, err)
	}

	if len(summaries) == 0 {
		fmt.Fprintln(ios.ErrOut, "No tunaforge images found. Run 'tunaforge build' to create one.")
		return nil
	}

	w := tabwriter.NewWriter(ios.Out, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "TAG\tIMAGE ID\tCREATED\tSIZE")
	for _, s := range summaries {
		tags := strings.Join(s.RepoTags, ", ")
		if tags == "" {
			tags = "<none>"
		}
		created := units.HumanDuration(time.Since(time.Unix(s.Created, 0))) + " ago"
		size := units.HumanSize(float64(s.Size))
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", tags, shortID(s.ID), created, size)
	}
	return w.Flush()
}

// shortID trims an image ID to the familiar 12-character form.
func shortID(id string) string {
	id = strings.TrimPrefix(id, "sha256:")
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
