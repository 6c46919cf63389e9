package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"medialookup/internal/api"
	"medialookup/internal/media"
)

type lookupFlags struct {
	mediaType   string
	startSeason string
	endSeason   string
	someSeason  string
	prefer      string
	queue       []string
	sourceURL   string
	batch       string
	concurrency int
}

func newLookupCommand(ctx *commandContext) *cobra.Command {
	var flags lookupFlags

	cmd := &cobra.Command{
		Use:   "lookup [name...]",
		Short: "Resolve titles to a canonical identity",
		Long: `Resolve one title set to a canonical identity.

All positional arguments are alternative names of the same title, ideally
romaji first. With --batch, requests are read as JSON lines instead, one
request object per line ("-" reads stdin), and results are written in input
order.

Examples:
  medialookup lookup "Kimetsu no Yaiba" "Клинок, рассекающий демонов"
  medialookup lookup --type manga --start-season spring:2019 "Yakusoku no Neverland"
  medialookup lookup --batch requests.jsonl --concurrency 8`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.batch != "" {
				if len(args) > 0 {
					return errors.New("names cannot be combined with --batch")
				}
				return runBatchLookup(cmd, ctx, flags)
			}
			if len(args) == 0 {
				return errors.New("at least one name is required")
			}
			req, err := buildRequest(args, flags)
			if err != nil {
				return err
			}
			return runSingleLookup(cmd, ctx, req)
		},
	}

	cmd.Flags().StringVarP(&flags.mediaType, "type", "t", "anime", "Media type: anime or manga")
	cmd.Flags().StringVar(&flags.startSeason, "start-season", "", "Required start season, e.g. spring:2019 or 2019")
	cmd.Flags().StringVar(&flags.endSeason, "end-season", "", "Required end season")
	cmd.Flags().StringVar(&flags.someSeason, "some-season", "", "Season matching either the start or the end")
	cmd.Flags().StringVar(&flags.prefer, "prefer", "", "Backend to consult first")
	cmd.Flags().StringSliceVar(&flags.queue, "queue", nil, "Replace the backend order (comma separated)")
	cmd.Flags().StringVar(&flags.sourceURL, "source-url", "", "Page the names were scraped from (logged only)")
	cmd.Flags().StringVar(&flags.batch, "batch", "", "Read JSON-lines requests from a file, - for stdin")
	cmd.Flags().IntVar(&flags.concurrency, "concurrency", 0, "Parallel lookups in batch mode (default lookup.concurrency)")
	return cmd
}

func buildRequest(names []string, flags lookupFlags) (media.Request, error) {
	kind, err := media.ParseType(flags.mediaType)
	if err != nil {
		return media.Request{}, err
	}
	req := media.Request{
		Names:     names,
		MediaType: kind,
		Prefer:    strings.TrimSpace(flags.prefer),
		Queue:     flags.queue,
		Source:    media.Source{URL: strings.TrimSpace(flags.sourceURL)},
	}
	if req.StartSeason, err = parseSeasonFlag("start-season", flags.startSeason); err != nil {
		return media.Request{}, err
	}
	if req.EndSeason, err = parseSeasonFlag("end-season", flags.endSeason); err != nil {
		return media.Request{}, err
	}
	if req.SomeSeason, err = parseSeasonFlag("some-season", flags.someSeason); err != nil {
		return media.Request{}, err
	}
	return req, nil
}

func parseSeasonFlag(name, value string) (*media.Season, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	season, err := media.ParseSeason(value)
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", name, err)
	}
	return &season, nil
}

func runSingleLookup(cmd *cobra.Command, ctx *commandContext, req media.Request) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.newLogger(cmd, cfg)
	if err != nil {
		return err
	}
	engine, closer, err := api.OpenEngine(cfg, logger)
	if err != nil {
		return err
	}
	defer closeQuietly(closer)

	identity, err := engine.Lookup(cmd.Context(), req)
	if err != nil {
		return err
	}

	if ctx.JSONMode() {
		return writeJSON(cmd, api.FromIdentity(0, req, identity, nil))
	}
	out := cmd.OutOrStdout()
	if identity == nil {
		fmt.Fprintln(out, "No match")
		return nil
	}
	fmt.Fprintf(out, "%s (%s)\n", identity.ID, identity.Type)
	return nil
}

func runBatchLookup(cmd *cobra.Command, ctx *commandContext, flags lookupFlags) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	reqs, err := readBatch(cmd, flags.batch)
	if err != nil {
		return err
	}
	logger, err := ctx.newLogger(cmd, cfg)
	if err != nil {
		return err
	}
	engine, closer, err := api.OpenEngine(cfg, logger)
	if err != nil {
		return err
	}
	defer closeQuietly(closer)

	concurrency := flags.concurrency
	if concurrency <= 0 {
		concurrency = cfg.Lookup.Concurrency
	}
	results := api.FromBatch(engine.LookupAll(cmd.Context(), reqs, concurrency))

	if ctx.JSONMode() {
		for _, result := range results {
			if err := writeJSONLine(cmd, result); err != nil {
				return err
			}
		}
		return nil
	}

	rows := make([][]string, 0, len(results))
	for _, result := range results {
		outcome := "no match"
		switch {
		case result.Error != "":
			outcome = "error: " + result.Error
		case result.Found:
			outcome = result.Key
		}
		rows = append(rows, []string{strconv.Itoa(result.Index + 1), strings.Join(result.Names, " / "), outcome})
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, renderTable(out, []string{"#", "Names", "Result"}, rows, []columnAlignment{alignRight, alignLeft, alignLeft}))
	return nil
}

// readBatch parses one media.Request per non-blank line.
func readBatch(cmd *cobra.Command, path string) ([]media.Request, error) {
	var reader io.Reader
	if path == "-" {
		reader = cmd.InOrStdin()
	} else {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open batch file: %w", err)
		}
		defer file.Close()
		reader = file
	}

	var reqs []media.Request
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var req media.Request
		if err := json.Unmarshal([]byte(text), &req); err != nil {
			return nil, fmt.Errorf("batch line %d: %w", line, err)
		}
		if req.MediaType != "" {
			kind, err := media.ParseType(string(req.MediaType))
			if err != nil {
				return nil, fmt.Errorf("batch line %d: %w", line, err)
			}
			req.MediaType = kind
		}
		reqs = append(reqs, req)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read batch: %w", err)
	}
	return reqs, nil
}
