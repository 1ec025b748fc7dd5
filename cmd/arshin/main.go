package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/ukuts/arshin/internal/config"
	"github.com/ukuts/arshin/internal/journal"
	"github.com/ukuts/arshin/internal/pipeline"
	"github.com/ukuts/arshin/internal/registry"
	"github.com/ukuts/arshin/internal/status"
)

var (
	version    = "dev"
	commit     = "none"
	buildDate  = "unknown"
	jsonOutput bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "arshin",
		Short: "FGIS Arshin verification-record filler",
		Long: `Arshin enriches a CSV of measuring-instrument numbers with the
latest verification records from the FGIS Arshin registry,
writing the augmented table incrementally so an interrupted
run still leaves a usable output file.`,
	}

	rootCmd.PersistentFlags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version info",
		Run: func(cmd *cobra.Command, args []string) {
			if jsonOutput {
				printJSON(map[string]string{
					"version": version,
					"commit":  commit,
					"date":    buildDate,
				})
			} else {
				fmt.Printf("arshin %s (%s, %s)\n", version, commit, buildDate)
			}
		},
	})

	rootCmd.AddCommand(fillCmd())
	rootCmd.AddCommand(runsCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func fillCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fill",
		Short: "Fill verification columns from the registry",
		Long: `Fill reads the input CSV, looks up every row whose vri_id is still
empty by its device number, and writes the enriched table row by row.
Rows with a populated vri_id or a blank device number pass through
untouched.`,
		Run: func(cmd *cobra.Command, args []string) {
			type Result struct {
				OK            bool   `json:"ok"`
				Message       string `json:"message,omitempty"`
				Output        string `json:"output,omitempty"`
				RunID         string `json:"run_id,omitempty"`
				Total         int    `json:"total"`
				AlreadyFilled int    `json:"already_filled"`
				Found         int    `json:"found"`
				NotFound      int    `json:"not_found"`
				Skipped       int    `json:"skipped"`
			}

			cfg := config.Default()
			if path, _ := cmd.Flags().GetString("config"); path != "" {
				loaded, err := config.Load(path)
				if err != nil {
					fail(err.Error(), Result{OK: false, Message: err.Error()})
				}
				cfg = loaded
			}
			if cmd.Flags().Changed("input") {
				cfg.Input, _ = cmd.Flags().GetString("input")
			}
			if cmd.Flags().Changed("output") {
				cfg.Output, _ = cmd.Flags().GetString("output")
			}
			if cmd.Flags().Changed("delay") {
				cfg.Delay, _ = cmd.Flags().GetFloat64("delay")
			}
			if cmd.Flags().Changed("journal") {
				cfg.Journal.Enabled, _ = cmd.Flags().GetBool("journal")
			}
			if cmd.Flags().Changed("journal-path") {
				cfg.Journal.Path, _ = cmd.Flags().GetString("journal-path")
			}
			if err := cfg.Validate(); err != nil {
				msg := fmt.Sprintf("Invalid configuration: %v", err)
				fail(msg, Result{OK: false, Message: msg})
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			client := registry.New(registry.Config{
				BaseURL:   cfg.Registry.BaseURL,
				UserAgent: cfg.Registry.UserAgent,
				Timeout:   cfg.RequestTimeout(),
				Cooldown:  cfg.RateCooldown(),
			})

			var renderer pipeline.Renderer
			console := status.NewConsole(os.Stdout)
			if jsonOutput {
				renderer = status.Nop{}
			} else {
				renderer = console
			}

			var run *journal.Run
			if cfg.Journal.Enabled {
				db, err := journal.Open(cfg.Journal.Path)
				if err != nil {
					fmt.Fprintf(os.Stderr, "Warning: journal disabled: %v\n", err)
				} else {
					defer db.Close()
					run, err = journal.Begin(db, cfg.Input, cfg.Output)
					if err != nil {
						fmt.Fprintf(os.Stderr, "Warning: journal disabled: %v\n", err)
					}
				}
			}

			driver := &pipeline.Driver{
				Client:    client,
				Renderer:  renderer,
				DeviceCol: cfg.Columns.DeviceNumber,
				ArshinCol: cfg.Columns.Arshin,
				Delay:     cfg.RowDelay(),
				Warnf: func(format string, args ...any) {
					fmt.Fprintf(os.Stderr, "Warning: "+format+"\n", args...)
				},
			}
			if run != nil {
				driver.Journal = run
			}

			stats, err := driver.Run(ctx, cfg.Input, cfg.Output)
			if err != nil {
				switch {
				case errors.Is(err, pipeline.ErrEmptyTable):
					// Not a failure: the original table just has no rows.
					if jsonOutput {
						printJSON(Result{OK: true, Message: "Входной CSV пуст"})
					} else {
						fmt.Println("Входной CSV пуст")
					}
					return
				case errors.Is(err, fs.ErrNotExist):
					msg := fmt.Sprintf("Файл %s не найден!", cfg.Input)
					fail(msg, Result{OK: false, Message: msg})
				default:
					fail(err.Error(), Result{OK: false, Message: err.Error()})
				}
			}

			if run != nil {
				if err := run.Finish(stats); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
				}
			}

			if jsonOutput {
				result := Result{
					OK:            true,
					Output:        cfg.Output,
					Total:         stats.Total,
					AlreadyFilled: stats.AlreadyFilled,
					Found:         stats.Found,
					NotFound:      stats.NotFound,
					Skipped:       stats.Skipped,
				}
				if run != nil {
					result.RunID = run.ID()
				}
				printJSON(result)
			} else {
				console.Report(stats)
				fmt.Printf("Результат сохранен в %s\n", cfg.Output)
			}
		},
	}

	cmd.Flags().String("config", "", "Path to YAML config file")
	cmd.Flags().StringP("input", "i", "", "Input CSV path")
	cmd.Flags().StringP("output", "o", "", "Output CSV path")
	cmd.Flags().Float64("delay", 0, "Seconds to wait between registry lookups")
	cmd.Flags().Bool("journal", false, "Record the run in the audit journal")
	cmd.Flags().String("journal-path", "", "Path to the journal database")
	return cmd
}

func runsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List journaled fill runs",
		Run: func(cmd *cobra.Command, args []string) {
			type RunOut struct {
				ID            string `json:"id"`
				StartedAt     string `json:"started_at"`
				FinishedAt    string `json:"finished_at,omitempty"`
				Input         string `json:"input"`
				Output        string `json:"output"`
				Total         int    `json:"total"`
				AlreadyFilled int    `json:"already_filled"`
				Found         int    `json:"found"`
				NotFound      int    `json:"not_found"`
				Skipped       int    `json:"skipped"`
			}
			type Result struct {
				OK      bool     `json:"ok"`
				Message string   `json:"message,omitempty"`
				Runs    []RunOut `json:"runs,omitempty"`
			}

			path, _ := cmd.Flags().GetString("journal-path")
			if path == "" {
				path = config.Default().Journal.Path
			}

			db, err := journal.Open(path)
			if err != nil {
				fail(err.Error(), Result{OK: false, Message: err.Error()})
			}
			defer db.Close()

			infos, err := journal.List(db)
			if err != nil {
				fail(err.Error(), Result{OK: false, Message: err.Error()})
			}

			result := Result{OK: true}
			for _, info := range infos {
				out := RunOut{
					ID:            info.ID,
					StartedAt:     info.StartedAt.Format(time.RFC3339),
					Input:         info.InputPath,
					Output:        info.OutputPath,
					Total:         info.Stats.Total,
					AlreadyFilled: info.Stats.AlreadyFilled,
					Found:         info.Stats.Found,
					NotFound:      info.Stats.NotFound,
					Skipped:       info.Stats.Skipped,
				}
				if info.FinishedAt != nil {
					out.FinishedAt = info.FinishedAt.Format(time.RFC3339)
				}
				result.Runs = append(result.Runs, out)
			}

			if jsonOutput {
				printJSON(result)
				return
			}
			if len(result.Runs) == 0 {
				fmt.Println("No journaled runs")
				return
			}
			for _, r := range result.Runs {
				state := "unfinished"
				if r.FinishedAt != "" {
					state = r.FinishedAt
				}
				fmt.Printf("%s  %s -> %s\n", r.ID, r.Input, r.Output)
				fmt.Printf("  started %s, finished %s\n", r.StartedAt, state)
				fmt.Printf("  total %d, filled %d, found %d, not found %d, skipped %d\n",
					r.Total, r.AlreadyFilled, r.Found, r.NotFound, r.Skipped)
			}
		},
	}

	cmd.Flags().String("journal-path", "", "Path to the journal database")
	return cmd
}

func fail(message string, result any) {
	if jsonOutput {
		printJSON(result)
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", message)
	}
	os.Exit(1)
}

func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}
