package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/gridpath/config"
	"github.com/katalvlaran/gridpath/session"
	"github.com/katalvlaran/gridpath/tui"
)

func newTUICmd(a *app) *cobra.Command {
	var (
		f       boardFlags
		logFile string
	)
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Edit a board and watch searches interactively",
		Long: `tui opens a full-screen editor. Logging is off unless --log-file is
given, since the board owns the terminal.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := a.board(f)
			if err != nil {
				return err
			}
			alg, err := a.cfg.ParsedAlgorithm()
			if err != nil {
				return err
			}

			logger := slog.New(slog.DiscardHandler)
			if logFile != "" {
				fh, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					return err
				}
				defer fh.Close()
				if logger, _, err = config.NewLogger(a.cfg.Log, fh); err != nil {
					return err
				}
			}

			rows, cols := b.Dimensions()
			r := tui.NewRenderer(rows, cols)
			ctrl, err := session.New(b, r,
				session.WithAlgorithm(alg),
				session.WithDelays(a.cfg.Animation.VisitDelay, a.cfg.Animation.PathDelay),
				session.WithMaze(a.cfg.Maze.MazeDensity(), a.cfg.Maze.Seed),
				session.WithLogger(logger))
			if err != nil {
				return err
			}
			return tui.Run(cmd.Context(), ctrl, r, tui.WithColor(isTerminal(cmd.OutOrStdout())))
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&logFile, "log-file", "", "append logs to this file")
	return cmd
}
