package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"medialookup/internal/lookup"
)

type normalizedName struct {
	Input      string `json:"input"`
	Normalized string `json:"normalized"`
	Flags      string `json:"flags"`
	Acronym    string `json:"acronym"`
}

func newNormalizeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "normalize <name...>",
		Short:       "Show how titles are normalized for matching",
		Args:        cobra.MinimumNArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			results := make([]normalizedName, 0, len(args))
			for _, arg := range args {
				normalized := lookup.Normalize(arg)
				results = append(results, normalizedName{
					Input:      arg,
					Normalized: normalized,
					Flags:      lookup.Flags(normalized),
					Acronym:    lookup.Acronym(normalized),
				})
			}

			if ctx.JSONMode() {
				return writeJSON(cmd, results)
			}
			rows := make([][]string, 0, len(results))
			for _, r := range results {
				rows = append(rows, []string{r.Input, r.Normalized, r.Flags, r.Acronym})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(out, []string{"Input", "Normalized", "Flags", "Acronym"}, rows, nil))
			return nil
		},
	}
}
