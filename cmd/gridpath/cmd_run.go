package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/gridpath/gridgraph"
	"github.com/katalvlaran/gridpath/pathfind"
	"github.com/katalvlaran/gridpath/render"
)

const (
	frameInterval = 40 * time.Millisecond
	clearScreen   = "\x1b[H\x1b[2J"
)

type runFlags struct {
	boardFlags
	algorithm string
	noDelay   bool
	noColor   bool
	trace     bool
}

func newRunCmd(a *app) *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Search one board and print the result",
		Long: `run searches a board once. On a terminal the search is animated
with the configured delays; otherwise, or with --no-delay, it runs unpaced and
only the final frame is printed.`,
		Example: `  gridpath run --maze --rows 15 --cols 30 -a dijkstra
  gridpath run --board level.txt --no-delay`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, f)
		},
	}
	f.register(cmd)
	cmd.Flags().StringVarP(&f.algorithm, "algorithm", "a", "", "dijkstra|greedy|aStar|bidirectional (default: config)")
	cmd.Flags().BoolVar(&f.noDelay, "no-delay", false, "skip pacing")
	cmd.Flags().BoolVar(&f.noColor, "no-color", false, "plain output even on a terminal")
	cmd.Flags().BoolVar(&f.trace, "trace", false, "also print the visit order and the path events")
	return cmd
}

func (a *app) run(cmd *cobra.Command, f runFlags) error {
	name := a.cfg.Algorithm
	if f.algorithm != "" {
		name = f.algorithm
	}
	alg, err := pathfind.ParseAlgorithm(name)
	if err != nil {
		return err
	}
	b, err := a.board(f.boardFlags)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	tty := isTerminal(out)
	color := tty && !f.noColor
	animate := tty && !f.noDelay

	rows, cols := b.Dimensions()
	canvas := render.NewCanvas(rows, cols)
	var rec *render.Recorder
	sink := render.Target(canvas)
	if f.trace {
		rec = &render.Recorder{}
		sink = render.Tee(canvas, rec)
	}
	opts := []pathfind.Option{
		pathfind.WithSink(sink),
		pathfind.WithLogger(a.logger),
		pathfind.WithVisitDelay(a.cfg.Animation.VisitDelay),
		pathfind.WithPathDelay(a.cfg.Animation.PathDelay),
	}
	if !animate {
		opts = append(opts, pathfind.WithSkipDelay())
	}

	var stopDraw func()
	if animate {
		stopDraw = drawLoop(out, b, canvas, color)
	}
	res, err := pathfind.Search(cmd.Context(), b, alg, opts...)
	if stopDraw != nil {
		stopDraw()
	}
	if err != nil {
		return err
	}

	if animate {
		fmt.Fprint(out, clearScreen)
	}
	fmt.Fprint(out, render.Frame(b, canvas, render.WithColor(color)))
	fmt.Fprintln(out, summary(b, res))
	if rec != nil {
		fmt.Fprintln(out, "visited:", joinPositions(rec.Positions(render.EventVisited)))
		fmt.Fprintln(out, "path:", joinPositions(rec.Positions(render.EventPath)))
	}
	a.logger.Debug("run finished",
		slog.String("algorithm", res.Algorithm.String()),
		slog.String("outcome", res.Outcome.String()))
	return nil
}

// drawLoop redraws the frame until the returned stop func is called.
func drawLoop(out io.Writer, b *gridgraph.Board, c *render.Canvas, color bool) (stop func()) {
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		t := time.NewTicker(frameInterval)
		defer t.Stop()
		for {
			select {
			case <-done:
				return
			case <-t.C:
				fmt.Fprint(out, clearScreen+render.Frame(b, c, render.WithColor(color)))
			}
		}
	}()
	return func() {
		close(done)
		wg.Wait()
	}
}

// summary is the one-line result. An exhausted search also reports how many
// open regions the board splits into.
func summary(b *gridgraph.Board, r *pathfind.Result) string {
	s := fmt.Sprintf("algorithm=%s outcome=%s visited=%d", r.Algorithm, r.Outcome, len(r.Visited))
	switch r.Outcome {
	case pathfind.OutcomeFound:
		s += fmt.Sprintf(" cost=%d", r.Cost)
	case pathfind.OutcomeExhausted:
		s += fmt.Sprintf(" regions=%d", len(b.ConnectedComponents()))
	}
	return s
}

func joinPositions(ps []gridgraph.Position) string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = p.String()
	}
	return strings.Join(parts, " ")
}
