package main

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"medialookup/internal/api"
	"medialookup/internal/config"
)

type backendInfo struct {
	Name          string `json:"name"`
	QueuePosition int    `json:"queuePosition,omitempty"`
	Conflict      bool   `json:"conflictFallback"`
	Endpoint      string `json:"endpoint"`
	Configured    bool   `json:"configured"`
}

func newBackendsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "backends",
		Short: "List search backends and their queue positions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			registry, err := api.NewRegistry(cfg, nil)
			if err != nil {
				return err
			}

			infos := make([]backendInfo, 0, len(registry.Names()))
			for _, name := range registry.Names() {
				endpoint, configured := backendEndpoint(cfg, name)
				infos = append(infos, backendInfo{
					Name:          name,
					QueuePosition: slices.Index(cfg.Lookup.Queue, name) + 1,
					Conflict:      slices.Contains(cfg.Lookup.ConflictQueue, name),
					Endpoint:      endpoint,
					Configured:    configured,
				})
			}

			if ctx.JSONMode() {
				return writeJSON(cmd, infos)
			}
			rows := make([][]string, 0, len(infos))
			for _, info := range infos {
				position := "-"
				if info.QueuePosition > 0 {
					position = strconv.Itoa(info.QueuePosition)
				}
				rows = append(rows, []string{info.Name, position, yesNo(info.Conflict), yesNo(info.Configured), info.Endpoint})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(out,
				[]string{"Backend", "Queue", "Fallback", "Ready", "Endpoint"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignLeft, alignLeft, alignLeft}))
			return nil
		},
	}
}

func backendEndpoint(cfg *config.Config, name string) (string, bool) {
	switch name {
	case config.BackendShikimori:
		return cfg.Shikimori.BaseURL, true
	case config.BackendKitsu:
		return cfg.Kitsu.BaseURL, true
	case config.BackendMAL:
		return cfg.MAL.BaseURL, cfg.MAL.ClientID != ""
	case config.BackendAniList:
		return cfg.AniList.BaseURL, true
	case config.BackendWebSearch:
		if cfg.WebSearch.SerpAPIKey != "" {
			return cfg.WebSearch.SerpAPIURL, true
		}
		return cfg.WebSearch.HTMLURL, true
	default:
		return "", false
	}
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
