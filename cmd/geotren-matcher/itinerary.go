package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/theoremus-urban-solutions/geotren-matcher/schedule"
)

func newItineraryCommand() *cobra.Command {
	var (
		schedulePath string
		jsonOutput   bool
	)

	cmd := &cobra.Command{
		Use:   "itinerary <run>",
		Short: "List the stops of a scheduled run in service order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfigTo(os.Stderr); err != nil {
				return err
			}
			if schedulePath == "" {
				schedulePath = cfg.Schedule.Path
			}
			if schedulePath == "" {
				return errors.New("a schedule is required (--schedule or schedule.path)")
			}

			store, err := loadStore(cmd.Context(), schedulePath)
			if err != nil {
				return err
			}
			code := args[0]
			stops, err := store.Itinerary(code)
			if err != nil {
				return fmt.Errorf("run %s: %w", code, err)
			}
			if jsonOutput {
				return writeJSON(cmd, stops)
			}

			run, _ := store.Run(code)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run %s, line %s, direction %s\n", run.Code, run.Line, run.Direction)
			rows := make([][]string, 0, len(stops))
			for i, st := range stops {
				rows = append(rows, []string{strconv.Itoa(i + 1), st.Stop, st.Time, minutesLabel(st)})
			}
			fmt.Fprintln(out, renderTable([]string{"#", "Stop", "Time", "Service Minute"}, rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight}))
			return nil
		},
	}

	cmd.Flags().StringVar(&schedulePath, "schedule", "", "Itinerary document (path, http(s) URL or s3:// location)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the stops as JSON")
	return cmd
}

func minutesLabel(st schedule.OrderedStop) string {
	if !st.Valid() {
		return "-"
	}
	return strconv.Itoa(st.Minutes)
}
