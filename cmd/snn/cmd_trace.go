package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Publicoprivado/snn/internal/config"
	"github.com/Publicoprivado/snn/internal/trace"
)

func newTraceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show recorded firing events",
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			dbPath, _ := cmd.Flags().GetString("db")
			limit, _ := cmd.Flags().GetInt("limit")
			jsonOut, _ := cmd.Flags().GetBool("json")

			if dbPath == "" {
				cfg, err := config.Load(configPath)
				if err != nil {
					return err
				}
				dbPath = cfg.Trace.Path
			}
			if dbPath == "" {
				return fmt.Errorf("no trace database configured; set trace.path or pass --db")
			}

			rec, err := trace.Open(dbPath)
			if err != nil {
				return err
			}
			defer rec.Close()

			events, err := rec.Events(limit)
			if err != nil {
				return err
			}

			if jsonOut {
				return json.NewEncoder(os.Stdout).Encode(events)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TIME\tNEURON\tNOTE\tTIER\tVELOCITY\tDURATION\tISOLATED\tDC")
			for _, ev := range events {
				fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%.2f\t%.2f\t%v\t%v\n",
					ev.At.Format("15:04:05.000"), ev.Neuron, ev.Note, ev.Tier,
					ev.Velocity, ev.Duration, ev.Isolated, ev.HasDC)
			}
			return w.Flush()
		},
	}

	cmd.Flags().String("db", "", "Trace database path (overrides config)")
	cmd.Flags().Int("limit", 50, "Maximum events to show (0 for all)")
	return cmd
}
