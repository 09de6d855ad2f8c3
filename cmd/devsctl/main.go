// Command devsctl drives the simulation kernel from the shell: run a
// DEVStone benchmark instance to a fixed point, or serve a benchmark
// instance's injection boundary over WebSocket. Built with
// github.com/spf13/cobra, matching the teacher's CLI-first-class
// stance for operational tooling.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/xdevs-go/kernel/bench/devstone"
	"github.com/xdevs-go/kernel/kernel"
	"github.com/xdevs-go/kernel/model"
	"github.com/xdevs-go/kernel/transport"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "devsctl",
		Short: "Operate the hierarchical DEVS simulation kernel",
	}
	root.AddCommand(newBenchCmd())
	root.AddCommand(newServeCmd())
	return root
}

type benchFlags struct {
	family   string
	strategy string
	depth    int
	width    int
	intDelay float64
	extDelay float64
	flatten  bool
	chain    bool
	workers  int
}

func buildRoot(family string, p devstone.Params) (*model.BaseCoupled, error) {
	switch family {
	case "li":
		return devstone.LI("devstone", p), nil
	case "hi":
		return devstone.HI("devstone", p), nil
	default:
		return nil, fmt.Errorf("unknown benchmark family %q (want li or hi)", family)
	}
}

// processor is the subset of the three coordinator strategies'
// capability this command drives: build, initialize, inject on the
// root port, run to completion, then read back per-atomic counts.
type processor interface {
	kernel.Processor
	Inject(port *model.Port, values []interface{}, e float64) (bool, error)
	SimulateInf()
}

func buildCoordinator(strategy string, root *model.BaseCoupled, workers int, opts kernel.Options) (processor, error) {
	switch strategy {
	case "sequential", "":
		return kernel.NewCoordinator(root, opts), nil
	case "thread":
		return kernel.NewThreadParallelCoordinator(root, opts, workers), nil
	case "process":
		return kernel.NewParallelProcessCoordinator(root, opts, workers), nil
	default:
		return nil, fmt.Errorf("unknown strategy %q (want sequential, thread, or process)", strategy)
	}
}

func newBenchCmd() *cobra.Command {
	f := &benchFlags{}
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Run a DEVStone LI/HI benchmark instance to completion",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(cmd, f)
		},
	}
	cmd.Flags().StringVar(&f.family, "family", "li", "benchmark family: li or hi")
	cmd.Flags().StringVar(&f.strategy, "strategy", "sequential", "execution strategy: sequential, thread, or process")
	cmd.Flags().IntVar(&f.depth, "depth", 3, "model nesting depth")
	cmd.Flags().IntVar(&f.width, "width", 4, "atomics per level")
	cmd.Flags().Float64Var(&f.intDelay, "int-delay", 1, "internal transition delay")
	cmd.Flags().Float64Var(&f.extDelay, "ext-delay", 1, "external transition delay")
	cmd.Flags().BoolVar(&f.flatten, "flatten", false, "flatten the model before simulating")
	cmd.Flags().BoolVar(&f.chain, "chain", false, "linearize the model into a pipeline before simulating")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "worker pool size for thread/process strategies (0 = default)")
	return cmd
}

func runBench(cmd *cobra.Command, f *benchFlags) error {
	params := devstone.Params{Depth: f.depth, Width: f.width, IntDelay: f.intDelay, ExtDelay: f.extDelay}
	root, err := buildRoot(f.family, params)
	if err != nil {
		return err
	}

	opts := kernel.Options{Flatten: f.flatten, Chain: f.chain}
	coord, err := buildCoordinator(f.strategy, root, f.workers, opts)
	if err != nil {
		return err
	}
	if err := coord.Initialize(); err != nil {
		return fmt.Errorf("initialize: %w", err)
	}

	inPort := devstone.InPort(root)
	if _, err := coord.Inject(inPort, []interface{}{true}, 0); err != nil {
		return fmt.Errorf("inject: %w", err)
	}
	coord.SimulateInf()

	atomics := devstone.CountAtomics(root)
	intCount, extCount := devstone.CountTransitions(root)
	fmt.Fprintf(cmd.OutOrStdout(), "family=%s depth=%d width=%d atomics=%d eic=%d ic=%d eoc=%d int=%d ext=%d\n",
		f.family, f.depth, f.width, atomics,
		devstone.CountEIC(root), devstone.CountIC(root), devstone.CountEOC(root), intCount, extCount)
	return nil
}

func newServeCmd() *cobra.Command {
	var addr string
	f := &benchFlags{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a DEVStone benchmark instance's injection boundary over WebSocket",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, f, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&f.family, "family", "li", "benchmark family: li or hi")
	cmd.Flags().IntVar(&f.depth, "depth", 3, "model nesting depth")
	cmd.Flags().IntVar(&f.width, "width", 4, "atomics per level")
	cmd.Flags().Float64Var(&f.intDelay, "int-delay", 1, "internal transition delay")
	cmd.Flags().Float64Var(&f.extDelay, "ext-delay", 1, "external transition delay")
	return cmd
}

func runServe(cmd *cobra.Command, f *benchFlags, addr string) error {
	params := devstone.Params{Depth: f.depth, Width: f.width, IntDelay: f.intDelay, ExtDelay: f.extDelay}
	root, err := buildRoot(f.family, params)
	if err != nil {
		return err
	}

	coord := kernel.NewCoordinator(root, kernel.Options{})
	if err := coord.Initialize(); err != nil {
		return fmt.Errorf("initialize: %w", err)
	}

	events := kernel.NewEventBus()
	server := transport.NewServer(coord, transport.JSONCodec{}, events)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Fprintf(cmd.OutOrStdout(), "devsctl: serving %s benchmark (depth=%d width=%d) on %s\n", f.family, f.depth, f.width, addr)
	return server.Serve(ctx, addr)
}
