package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/katalvlaran/gridpath/builder"
	"github.com/katalvlaran/gridpath/config"
	"github.com/katalvlaran/gridpath/gridgraph"
)

// app is the state shared by every subcommand once flags are parsed.
type app struct {
	cfgPath  string
	logLevel string

	cfg    config.Config
	logger *slog.Logger
	level  *slog.LevelVar
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "gridpath",
		Short: "Animate shortest-path searches on a 2-D grid",
		Long: `gridpath explores a grid of open and blocked cells with Dijkstra,
greedy best-first, A* or a bidirectional search and shows the cells each
algorithm visits and the path it finds.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd.ErrOrStderr())
		},
	}
	root.PersistentFlags().StringVarP(&a.cfgPath, "config", "c", "", "YAML configuration file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override log.level (debug|info|warn|error)")

	root.AddCommand(newRunCmd(a), newTUICmd(a), newServeCmd(a), newConfigCmd(a))
	return root
}

// load reads the configuration and builds the logger.
func (a *app) load(stderr io.Writer) error {
	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	logger, level, err := config.NewLogger(cfg.Log, stderr)
	if err != nil {
		return err
	}
	a.cfg, a.logger, a.level = cfg, logger, level
	return nil
}

// boardFlags select where a command's board comes from.
type boardFlags struct {
	file    string
	maze    bool
	rows    int
	cols    int
	density  float64
	seed     int64
	solvable bool
}

func (f *boardFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.file, "board", "b", "", "board file: rows of . # S E")
	fs.BoolVar(&f.maze, "maze", false, "fill the board with random walls")
	fs.IntVar(&f.rows, "rows", 0, "board rows (default grid.rows)")
	fs.IntVar(&f.cols, "cols", 0, "board columns (default grid.cols)")
	fs.Float64Var(&f.density, "density", -1, "maze wall density in [0,1] (default maze.density)")
	fs.Int64Var(&f.seed, "seed", 0, "maze seed; 0 uses maze.seed, then the clock")
	fs.BoolVar(&f.solvable, "solvable", false, "open the fewest walls needed to join start and end")
}

// board builds the board: from a file, or an empty or random grid with the
// start and end in opposite corners.
func (a *app) board(f boardFlags) (*gridgraph.Board, error) {
	if f.file != "" {
		return readBoard(f.file)
	}
	rows, cols := a.cfg.Grid.Rows, a.cfg.Grid.Cols
	if f.rows > 0 {
		rows = f.rows
	}
	if f.cols > 0 {
		cols = f.cols
	}
	corners := builder.WithEndpoints(gridgraph.Pos(0, 0), gridgraph.Pos(rows-1, cols-1))
	if !f.maze {
		return builder.Generate(rows, cols, builder.WithDensity(0), corners)
	}

	density := a.cfg.Maze.MazeDensity()
	if f.density >= 0 {
		density = f.density
	}
	if density > 1 {
		return nil, fmt.Errorf("%w: density %v", builder.ErrInvalidProbability, density)
	}
	opts := []builder.BuilderOption{builder.WithDensity(density), corners}
	if f.solvable || a.cfg.Maze.Solvable {
		opts = append(opts, builder.WithSolvable())
	}
	seed := f.seed
	if seed == 0 {
		seed = a.cfg.Maze.Seed
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	opts = append(opts, builder.WithSeed(seed))
	return builder.Generate(rows, cols, opts...)
}

func readBoard(path string) (*gridgraph.Board, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	var lines []string
	sc := bufio.NewScanner(fh)
	for sc.Scan() {
		if line := strings.TrimRight(sc.Text(), " \t\r"); line != "" {
			lines = append(lines, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	b, err := gridgraph.ParseBoard(lines)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return b, nil
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
