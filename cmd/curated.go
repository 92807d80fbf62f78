package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/placeimages/internal/models"
)

func newCuratedCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "curated",
		Short: "Inspect the curated image table",
		Long: `Inspect the curated image table loaded from the configured seed file
(curated.seeds_path). Curated imagery is preferred over generic placeholders when a
location has no live search results.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List every location slug with curated imagery",
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver, err := newResolver(opts.cfg)
			if err != nil {
				return err
			}

			slugs := resolver.ListCuratedSlugs()
			out := cmd.OutOrStdout()
			if len(slugs) == 0 {
				fmt.Fprintln(out, "No curated imagery configured.")
				return nil
			}
			for _, slug := range slugs {
				fmt.Fprintln(out, slug)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "check <name>",
		Short:   "Show the imagery a location would fall back to",
		Example: `  placeimages curated check "New York"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver, err := newResolver(opts.cfg)
			if err != nil {
				return err
			}

			name := args[0]
			out := cmd.OutOrStdout()
			tier := "generic placeholders"
			if resolver.HasCuratedImagery(name) {
				tier = "curated"
			}
			fmt.Fprintf(out, "%s (%s): %s\n", name, models.Slugify(name), tier)

			for _, img := range resolver.Resolve(name) {
				fmt.Fprintf(out, "  - %s\n    %s\n", img.Title, img.URL)
			}
			return nil
		},
	})

	return cmd
}
