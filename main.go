package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/Billy-Davies-2/scorebored/internal/config"
	"github.com/Billy-Davies-2/scorebored/internal/dal"
	"github.com/Billy-Davies-2/scorebored/internal/logger"
	"github.com/Billy-Davies-2/scorebored/internal/match"
	"github.com/Billy-Davies-2/scorebored/internal/models"
	"github.com/Billy-Davies-2/scorebored/internal/pubsub"
	"github.com/Billy-Davies-2/scorebored/internal/scoreboard"
	"github.com/Billy-Davies-2/scorebored/internal/script"
	"github.com/Billy-Davies-2/scorebored/internal/talker"
)

const (
	semanticVersion = "v0.3.0"
	stdoutCLIName   = "-"
)

func main() {
	app := &cli.App{
		Name:    "scorebored",
		Usage:   "Scoreboard and announcer for side-out racquet matches",
		Version: semanticVersion,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the scoreboard HTTP and gRPC servers",
				Action: serve,
			},
			{
				Name:  "simulate",
				Usage: "Replay a YAML rally script and print the final scoreboard",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "script",
						Aliases:  []string{"s"},
						Usage:    "Path to the rally script",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "The location to write the YAML result. Can be a file path or \"-\" (for stdout).",
						Value:   stdoutCLIName,
					},
					&cli.BoolFlag{
						Name:    "quiet",
						Aliases: []string{"q"},
						Usage:   "Do not print the commentary",
					},
				},
				Action: simulate,
			},
			{
				Name:  "roster",
				Usage: "Manage stored team presets and settings",
				Subcommands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "List team presets",
						Action: rosterList,
					},
					{
						Name:  "export",
						Usage: "Write presets and settings as YAML",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:    "output",
								Aliases: []string{"o"},
								Usage:   "File path or \"-\" (for stdout)",
								Value:   stdoutCLIName,
							},
						},
						Action: rosterExport,
					},
					{
						Name:  "import",
						Usage: "Load presets and settings from YAML",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:     "file",
								Aliases:  []string{"f"},
								Usage:    "YAML file written by roster export",
								Required: true,
							},
						},
						Action: rosterImport,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// openOutput returns stdout for "-" and a truncated file otherwise.
func openOutput(location string) (io.WriteCloser, error) {
	if location == stdoutCLIName {
		return nopCloser{os.Stdout}, nil
	}
	return os.OpenFile(location, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func simulate(cCtx *cli.Context) error {
	// Logs go to stderr so the YAML result stays clean.
	logger.InitWriter(os.Stderr, os.Getenv("LOG_LEVEL"))

	s, err := script.LoadFile(cCtx.String("script"))
	if err != nil {
		return err
	}

	events := pubsub.NewMockNATSPubSub(pubsub.DefaultSubject, 0)
	talkers := []match.Talker{talker.NewPubSubTalker(events)}
	if !cCtx.Bool("quiet") {
		commentary := io.Writer(os.Stdout)
		if cCtx.String("output") == stdoutCLIName {
			commentary = os.Stderr
		}
		talkers = append(talkers, talker.NewWriterTalker(commentary))
	}

	snap, err := script.Run(cCtx.Context, s, scoreboard.Options{
		Talker: talker.Multi(talkers...),
		Broker: events,
	})
	if err != nil {
		return err
	}
	logger.Info("Simulation finished", "events", len(s.Events), "published", events.GetMessageCount(), "phase", snap.Phase)

	out, err := openOutput(cCtx.String("output"))
	if err != nil {
		return fmt.Errorf("failed to open output: %w", err)
	}
	defer out.Close()
	return script.WriteYAML(out, snap)
}

// rosterFile is the YAML document used by roster export and import.
type rosterFile struct {
	Settings *models.Settings    `yaml:"settings,omitempty"`
	Presets  []models.TeamPreset `yaml:"presets"`
}

func withRoster(fn func(dal.RosterDAL) error) error {
	logger.InitWriter(os.Stderr, os.Getenv("LOG_LEVEL"))
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	roster, err := openRoster(cfg)
	if err != nil {
		return err
	}
	defer roster.Close()
	return fn(roster)
}

func rosterList(cCtx *cli.Context) error {
	return withRoster(func(roster dal.RosterDAL) error {
		presets, err := roster.ListPresets()
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tCOLOR")
		for _, p := range presets {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", p.ID, p.Name, p.Color)
		}
		return tw.Flush()
	})
}

func rosterExport(cCtx *cli.Context) error {
	return withRoster(func(roster dal.RosterDAL) error {
		presets, err := roster.ListPresets()
		if err != nil {
			return err
		}
		settings, err := roster.GetSettings()
		if err != nil {
			return err
		}

		out, err := openOutput(cCtx.String("output"))
		if err != nil {
			return fmt.Errorf("failed to open output: %w", err)
		}
		defer out.Close()
		return script.WriteYAML(out, rosterFile{Settings: settings, Presets: presets})
	})
}

func rosterImport(cCtx *cli.Context) error {
	data, err := os.ReadFile(cCtx.String("file"))
	if err != nil {
		return fmt.Errorf("failed to read roster: %w", err)
	}
	var doc rosterFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to decode roster: %w", err)
	}

	return withRoster(func(roster dal.RosterDAL) error {
		if doc.Settings != nil {
			if err := roster.SaveSettings(doc.Settings); err != nil {
				return err
			}
		}
		names := make([]string, 0, len(doc.Presets))
		for i := range doc.Presets {
			saved, err := roster.SavePreset(&doc.Presets[i])
			if err != nil {
				return fmt.Errorf("preset %d: %w", i+1, err)
			}
			names = append(names, saved.Name)
		}
		logger.Info("Roster imported", "presets", strings.Join(names, ", "), "settings", doc.Settings != nil)
		return nil
	})
}

// applyStartupSettings puts the configured lengths on a match that was not
// restored from the cache. Style and subtitles keep their stored values.
func applyStartupSettings(ctx context.Context, svc *scoreboard.Service, cfg config.Config) error {
	settings := svc.Snapshot().Settings
	settings.GameLength, settings.MatchLength = cfg.GameLength, cfg.MatchLength
	_, err := svc.Configure(ctx, settings)
	return err
}
