package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/gmelani/medtrack/internal/config"
	"github.com/gmelani/medtrack/internal/errors"
	"github.com/gmelani/medtrack/internal/insights"
	"github.com/gmelani/medtrack/internal/ops"
	"github.com/gmelani/medtrack/internal/record"
	"github.com/gmelani/medtrack/internal/store"
	"github.com/gmelani/medtrack/internal/web"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(db *sql.DB, cfg *config.Config, baseDir string) *cli.App {
	gen := &record.ClockIDGenerator{}

	app := &cli.App{
		Name:    "medtrack",
		Usage:   "Personal medical record tracker",
		Version: Version,
		Commands: []*cli.Command{
			visitCmd(db, gen),
			examCmd(db, gen),
			specialistCmd(db, gen),
			importCmd(db, gen),
			exportCmd(db, baseDir),
			reportCmd(db, cfg),
			searchCmd(db),
			insightsCmd(db, cfg),
			webCmd(db, cfg, baseDir),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// visitCmd creates the visit command group.
func visitCmd(db *sql.DB, gen record.IDGenerator) *cli.Command {
	return &cli.Command{
		Name:  "visit",
		Usage: "Manage medical visits",
		Subcommands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Record a visit",
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "specialist", Aliases: []string{"s"}, Required: true, Usage: "Specialist id"},
					&cli.StringFlag{Name: "date", Aliases: []string{"d"}, Required: true, Usage: "Visit date (YYYY-MM-DD)"},
					&cli.StringFlag{Name: "notes", Aliases: []string{"n"}, Usage: "Visit notes"},
					&cli.Float64Flag{Name: "cost", Aliases: []string{"c"}, Usage: "Visit cost"},
				},
				Action: func(c *cli.Context) error {
					output, err := ops.AddVisit(db, gen, ops.VisitInput{
						SpecialistID: c.Int64("specialist"),
						Date:         c.String("date"),
						Notes:        c.String("notes"),
						Cost:         c.Float64("cost"),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:  "list",
				Usage: "List visits, newest first",
				Flags: dateRangeFlags(),
				Action: func(c *cli.Context) error {
					output, err := ops.ListVisits(db, ops.ListVisitsInput{
						From: c.String("from"),
						To:   c.String("to"),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "update",
				Usage:     "Replace a visit's fields",
				ArgsUsage: "<id>",
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "specialist", Aliases: []string{"s"}, Required: true, Usage: "Specialist id"},
					&cli.StringFlag{Name: "date", Aliases: []string{"d"}, Required: true, Usage: "Visit date (YYYY-MM-DD)"},
					&cli.StringFlag{Name: "notes", Aliases: []string{"n"}, Usage: "Visit notes"},
					&cli.Float64Flag{Name: "cost", Aliases: []string{"c"}, Usage: "Visit cost"},
				},
				Action: func(c *cli.Context) error {
					id, err := positionalID(c)
					if err != nil {
						return outputError(err)
					}
					output, err := ops.UpdateVisit(db, id, ops.VisitInput{
						SpecialistID: c.Int64("specialist"),
						Date:         c.String("date"),
						Notes:        c.String("notes"),
						Cost:         c.Float64("cost"),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete a visit",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					id, err := positionalID(c)
					if err != nil {
						return outputError(err)
					}
					output, err := ops.DeleteVisit(db, id)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
		},
	}
}

// examCmd creates the exam command group.
func examCmd(db *sql.DB, gen record.IDGenerator) *cli.Command {
	examFlags := []cli.Flag{
		&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Required: true, Usage: "Exam name"},
		&cli.StringFlag{Name: "date", Aliases: []string{"d"}, Required: true, Usage: "Exam date (YYYY-MM-DD)"},
		&cli.Int64Flag{Name: "specialist", Aliases: []string{"s"}, Usage: "Prescribing specialist id (optional)"},
		&cli.StringFlag{Name: "results", Aliases: []string{"r"}, Usage: "Exam results"},
		&cli.StringFlag{Name: "notes", Usage: "Exam notes"},
		&cli.Float64Flag{Name: "cost", Aliases: []string{"c"}, Usage: "Exam cost"},
	}

	examInput := func(c *cli.Context) ops.ExamInput {
		input := ops.ExamInput{
			Name:    c.String("name"),
			Date:    c.String("date"),
			Results: c.String("results"),
			Notes:   c.String("notes"),
			Cost:    c.Float64("cost"),
		}
		if c.IsSet("specialist") {
			id := c.Int64("specialist")
			input.SpecialistID = &id
		}
		return input
	}

	return &cli.Command{
		Name:  "exam",
		Usage: "Manage medical exams",
		Subcommands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Record an exam",
				Flags: examFlags,
				Action: func(c *cli.Context) error {
					output, err := ops.AddExam(db, gen, examInput(c))
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:  "list",
				Usage: "List exams, newest first",
				Flags: dateRangeFlags(),
				Action: func(c *cli.Context) error {
					output, err := ops.ListExams(db, ops.ListExamsInput{
						From: c.String("from"),
						To:   c.String("to"),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "update",
				Usage:     "Replace an exam's fields",
				ArgsUsage: "<id>",
				Flags:     examFlags,
				Action: func(c *cli.Context) error {
					id, err := positionalID(c)
					if err != nil {
						return outputError(err)
					}
					output, err := ops.UpdateExam(db, id, examInput(c))
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete an exam",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					id, err := positionalID(c)
					if err != nil {
						return outputError(err)
					}
					output, err := ops.DeleteExam(db, id)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
		},
	}
}

// specialistCmd creates the specialist command group.
func specialistCmd(db *sql.DB, gen record.IDGenerator) *cli.Command {
	specialistFlags := []cli.Flag{
		&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Required: true, Usage: "Specialist name"},
		&cli.StringFlag{Name: "icon", Aliases: []string{"i"}, Required: true, Usage: "Display icon"},
		&cli.IntFlag{Name: "interval", Required: true, Usage: "Check-up interval in months"},
	}

	return &cli.Command{
		Name:  "specialist",
		Usage: "Manage specialists",
		Subcommands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Add a specialist",
				Flags: specialistFlags,
				Action: func(c *cli.Context) error {
					output, err := ops.AddSpecialist(db, gen, ops.SpecialistInput{
						Name:     c.String("name"),
						Icon:     c.String("icon"),
						Interval: c.Int("interval"),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:  "list",
				Usage: "List specialists",
				Action: func(c *cli.Context) error {
					output, err := ops.ListSpecialists(db)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "update",
				Usage:     "Replace a specialist's fields",
				ArgsUsage: "<id>",
				Flags:     specialistFlags,
				Action: func(c *cli.Context) error {
					id, err := positionalID(c)
					if err != nil {
						return outputError(err)
					}
					output, err := ops.UpdateSpecialist(db, id, ops.SpecialistInput{
						Name:     c.String("name"),
						Icon:     c.String("icon"),
						Interval: c.Int("interval"),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete a specialist (fails while visits or exams reference it)",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					id, err := positionalID(c)
					if err != nil {
						return outputError(err)
					}
					output, err := ops.DeleteSpecialist(db, id)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
		},
	}
}

// importCmd creates the import command.
func importCmd(db *sql.DB, gen record.IDGenerator) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Import records from a JSON backup or CSV file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Required: true, Usage: "Import file path"},
			&cli.BoolFlag{Name: "apply", Usage: "Commit the delta (default is preview only)"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Import(db, gen, ops.ImportInput{
				Path:  c.String("path"),
				Apply: c.Bool("apply"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// exportCmd creates the export command.
func exportCmd(db *sql.DB, baseDir string) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export all records to a file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "json", Usage: "Export format: json|csv"},
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Export file path (default: <base>/exports/medtrack-export-<date>)"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Export(db, baseDir, ops.ExportInput{
				Format: c.String("format"),
				Path:   c.String("path"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// reportCmd creates the report command.
func reportCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "Summarise counts, spending, and upcoming check-ups",
		Flags: append(dateRangeFlags(),
			&cli.IntFlag{Name: "window", Aliases: []string{"w"}, Usage: "Days ahead to look for due check-ups"},
		),
		Action: func(c *cli.Context) error {
			output, err := ops.Report(db, cfg.CheckupWindowDays, ops.ReportInput{
				From:       c.String("from"),
				To:         c.String("to"),
				WindowDays: c.Int("window"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// searchCmd creates the search command.
func searchCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search visits and exams by text",
		ArgsUsage: "<query>",
		Flags:     dateRangeFlags(),
		Action: func(c *cli.Context) error {
			output, err := ops.Search(db, ops.SearchInput{
				Query: c.Args().First(),
				From:  c.String("from"),
				To:    c.String("to"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// insightsCmd creates the insights command.
func insightsCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "insights",
		Usage: "Analyse the record history with Gemini (requires GEMINI_API_KEY)",
		Action: func(c *cli.Context) error {
			snap, err := store.Load(db)
			if err != nil {
				return outputError(errors.NewInternal(err))
			}

			client := insights.NewClient(cfg.APIKey(), cfg.GeminiModel)
			text, err := client.Generate(context.Background(), snap)
			if err != nil {
				return outputError(err)
			}

			fmt.Println(text)
			return nil
		},
	}
}

// webCmd creates the web command.
func webCmd(db *sql.DB, cfg *config.Config, baseDir string) *cli.Command {
	return &cli.Command{
		Name:  "web",
		Usage: "Serve the local web UI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Bind address"},
			&cli.IntFlag{Name: "port", Value: 8787, Usage: "Listen port"},
		},
		Action: func(c *cli.Context) error {
			srv := web.NewServer(db, cfg, baseDir, Version, c.String("bind"), c.Int("port"))
			return web.Run(srv)
		},
	}
}

// Helper functions

// dateRangeFlags returns the shared --from/--to flags.
func dateRangeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "from", Usage: "Earliest date to include (YYYY-MM-DD)"},
		&cli.StringFlag{Name: "to", Usage: "Latest date to include (YYYY-MM-DD)"},
	}
}

// positionalID parses the required positional <id> argument.
func positionalID(c *cli.Context) (int64, error) {
	if c.NArg() < 1 {
		return 0, errors.NewInvalidRequest("id argument is required")
	}
	id, err := strconv.ParseInt(c.Args().First(), 10, 64)
	if err != nil {
		return 0, errors.NewInvalidRequest("id must be an integer")
	}
	return id, nil
}

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if trackErr, ok := err.(*errors.TrackError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", trackErr.Code, trackErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}
