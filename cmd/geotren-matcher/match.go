package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/theoremus-urban-solutions/geotren-matcher/feed"
	"github.com/theoremus-urban-solutions/geotren-matcher/matching"
	"github.com/theoremus-urban-solutions/geotren-matcher/publish"
	"github.com/theoremus-urban-solutions/geotren-matcher/service"
)

func newMatchCommand() *cobra.Command {
	var (
		schedulePath   string
		feedURL        string
		format         string
		tripUpdatesURL string
		jsonOutput     bool
	)

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Run a single correlation cycle and print the matches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfigTo(os.Stderr); err != nil {
				return err
			}
			if schedulePath == "" {
				schedulePath = cfg.Schedule.Path
			}
			if feedURL == "" {
				feedURL = cfg.Feed.URL
			}
			if format == "" {
				format = cfg.Feed.Format
			}
			if tripUpdatesURL == "" {
				tripUpdatesURL = cfg.Feed.TripUpdatesURL
			}
			if schedulePath == "" {
				return errors.New("a schedule is required (--schedule or schedule.path)")
			}

			ctx := cmd.Context()
			store, err := loadStore(ctx, schedulePath)
			if err != nil {
				return err
			}
			client, err := feed.NewClient(&http.Client{Timeout: cfg.FetchTimeout()}, feed.Format(format), feedURL, tripUpdatesURL)
			if err != nil {
				return err
			}
			engine := matching.NewEngine(matching.Options{
				Lines:              cfg.Matcher.Lines,
				WindowMinutes:      cfg.Matcher.WindowMinutes,
				MinSequenceMatches: cfg.Matcher.MinSequenceMatches,
			}, logger)
			svc := service.New(service.Options{
				FetchTimeout:        cfg.FetchTimeout(),
				NotableDelayMinutes: cfg.Matcher.NotableDelayMinutes,
				Location:            cfg.Location(),
			}, client, engine, nil, store, logger)

			pub, err := svc.RunCycle(ctx)
			if err != nil {
				return err
			}
			if pub.Error != "" {
				return fmt.Errorf("fetch feed: %s", pub.Error)
			}
			if jsonOutput {
				return writeJSON(cmd, pub)
			}
			printPublication(cmd, pub)
			return nil
		},
	}

	cmd.Flags().StringVar(&schedulePath, "schedule", "", "Itinerary document (path, http(s) URL or s3:// location)")
	cmd.Flags().StringVar(&feedURL, "feed", "", "Live feed URL or file path")
	cmd.Flags().StringVar(&format, "format", "", "Feed format: geojson or gtfsrt")
	cmd.Flags().StringVar(&tripUpdatesURL, "trip-updates", "", "GTFS-RT TripUpdates URL or file path")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the publication as JSON")
	return cmd
}

func printPublication(cmd *cobra.Command, pub *publish.Publication) {
	out := cmd.OutOrStdout()
	if len(pub.Results) == 0 {
		fmt.Fprintln(out, "No matches.")
	} else {
		headers := []string{"Train", "Run", "Line", "Dir", "Stop", "Matched At", "Scheduled", "Delay"}
		rows := make([][]string, 0, len(pub.Results))
		for _, r := range pub.Results {
			rows = append(rows, []string{
				r.FeedID,
				r.RunCode,
				r.Line,
				r.Direction,
				r.Stop,
				r.MatchedStop,
				r.ScheduledTime,
				strconv.Itoa(r.Delay),
			})
		}
		aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight}
		fmt.Fprintln(out, renderTable(headers, rows, aligns))
	}
	fmt.Fprintf(out, "%d records (%d skipped), %d matched, %d delayed\n", pub.Records, pub.Skipped, pub.Matched, pub.Delayed)
}
