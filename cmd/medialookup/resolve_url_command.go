package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"medialookup/internal/media"
)

type resolvedURL struct {
	URL      string          `json:"url"`
	Found    bool            `json:"found"`
	Identity *media.Identity `json:"identity"`
}

func newResolveURLCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "resolve-url <url...>",
		Short:       "Extract catalogue identities embedded in URLs",
		Args:        cobra.MinimumNArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			results := make([]resolvedURL, 0, len(args))
			for _, arg := range args {
				result := resolvedURL{URL: arg}
				if identity, ok := media.IdentityFromURL(arg); ok {
					result.Found = true
					result.Identity = &identity
				}
				results = append(results, result)
			}

			if ctx.JSONMode() {
				return writeJSON(cmd, results)
			}
			rows := make([][]string, 0, len(results))
			for _, r := range results {
				identity, kind := "-", "-"
				if r.Identity != nil {
					identity = r.Identity.ID.String()
					if r.Identity.Type != "" {
						kind = string(r.Identity.Type)
					}
				}
				rows = append(rows, []string{r.URL, identity, kind})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(out, []string{"URL", "Identity", "Type"}, rows, nil))
			return nil
		},
	}
}
