package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"text/tabwriter"

	scoringservice "github.com/Black-And-White-Club/dip-scoring/app/modules/scoring/application"
	scoringdomain "github.com/Black-And-White-Club/dip-scoring/app/modules/scoring/domain"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:      "scorer",
		Usage:     "score Diplomacy game snapshots",
		Writer:    out,
		ErrWriter: out,
		Commands: []*cli.Command{
			scoreCommand(),
			validateCommand(),
			chartCommand(),
			systemsCommand(),
		},
	}
}

func scoreCommand() *cli.Command {
	return &cli.Command{
		Name:      "score",
		Usage:     "score a game snapshot",
		ArgsUsage: "<snapshot.yaml>",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "system",
				Aliases: []string{"s"},
				Usage:   "game scoring system (repeatable, default every system)",
			},
		},
		Action: func(c *cli.Context) error {
			h, err := historyFromArgs(c)
			if err != nil {
				return err
			}

			systems := scoringdomain.GameSystems()
			if names := c.StringSlice("system"); len(names) > 0 {
				systems = systems[:0]
				for _, name := range names {
					s, err := scoringdomain.ParseGameSystem(name)
					if err != nil {
						return err
					}
					systems = append(systems, s)
				}
			}

			w := c.App.Writer
			fmt.Fprintf(w, "Outcome: %s\n", h.Outcome())
			if summary := h.ResultSummary(); summary != "" {
				fmt.Fprintf(w, "Result: %s\n", summary)
			}

			tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
			fmt.Fprint(tw, "System\t")
			for _, p := range scoringdomain.AllPowers() {
				fmt.Fprintf(tw, "%s\t", p.Abbreviation())
			}
			fmt.Fprintln(tw)
			for _, s := range systems {
				scores, err := s.Score(h)
				if err != nil {
					return err
				}
				fmt.Fprintf(tw, "%s\t", s)
				for _, p := range scoringdomain.AllPowers() {
					fmt.Fprintf(tw, "%.2f\t", scores[p])
				}
				fmt.Fprintln(tw)
			}
			return tw.Flush()
		},
	}
}

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "report consistency problems in a snapshot",
		ArgsUsage: "<snapshot.yaml>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "dias", Usage: "passed draws must include every survivor"},
		},
		Action: func(c *cli.Context) error {
			h, err := historyFromArgs(c)
			if err != nil {
				return err
			}
			if err := scoringdomain.ValidateSnapshot(h, c.Bool("dias")); err != nil {
				return cli.Exit(err.Error(), 1)
			}
			fmt.Fprintln(c.App.Writer, "ok")
			return nil
		},
	}
}

func chartCommand() *cli.Command {
	return &cli.Command{
		Name:      "chart",
		Usage:     "render centre counts by year as a PNG",
		ArgsUsage: "<snapshot.yaml>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Value: "centres.png", Usage: "output file"},
		},
		Action: func(c *cli.Context) error {
			h, err := historyFromArgs(c)
			if err != nil {
				return err
			}
			png, err := scoringservice.GenerateCentreCountChart(h)
			if err != nil {
				return err
			}
			if err := os.WriteFile(c.String("out"), png, 0o644); err != nil {
				return fmt.Errorf("failed to write chart: %w", err)
			}
			fmt.Fprintf(c.App.Writer, "wrote %s\n", c.String("out"))
			return nil
		},
	}
}

func systemsCommand() *cli.Command {
	return &cli.Command{
		Name:  "systems",
		Usage: "list the registered scoring systems",
		Action: func(c *cli.Context) error {
			w := c.App.Writer
			fmt.Fprintln(w, "Game systems:")
			for _, s := range scoringdomain.GameSystems() {
				fmt.Fprintf(w, "  %s\n", s)
			}
			fmt.Fprintln(w, "Round systems:")
			for _, s := range scoringdomain.RoundSystems() {
				fmt.Fprintf(w, "  %s\n", s)
			}
			fmt.Fprintln(w, "Tournament systems:")
			for _, s := range scoringdomain.TournamentSystems() {
				fmt.Fprintf(w, "  %s\n", s)
			}
			return nil
		},
	}
}

func historyFromArgs(c *cli.Context) (*scoringdomain.GameHistory, error) {
	if c.NArg() != 1 {
		return nil, cli.Exit("expected exactly one snapshot file", 2)
	}
	s, err := loadSnapshot(c.Args().First())
	if err != nil {
		return nil, err
	}
	return scoringdomain.NewGameHistory(s), nil
}
