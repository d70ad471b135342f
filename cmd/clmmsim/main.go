// Command clmmsim is the thin CLI spec §6 describes: replay an event
// window, inspect a snapshot, fork a pool, or take a named snapshot.
// inspect does not resolve the given id, and fork and snapshot act on a
// fresh demo pool rather than looking up a pool by id. It is deliberately out of scope for the core engine's design — it exists
// to exercise the library, not to be a feature-complete indexer front end.
package main

import (
	"flag"
	"fmt"
	"os"

	clmm "github.com/coinsummer-labs/clmm-simulator"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: clmmsim <replay|inspect|fork|snapshot> [args...]")
		return 1
	}

	cmd, rest := args[0], args[1:]
	var err error
	switch cmd {
	case "replay":
		err = runReplay(rest)
	case "inspect":
		err = runInspect(rest)
	case "fork":
		err = runFork(rest)
	case "snapshot":
		err = runSnapshot(rest)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", cmd)
		return 1
	}

	if err != nil {
		logrus.WithError(err).Error("clmmsim: command failed")
		return 1
	}
	return 0
}

func newDemoPool() *clmm.ConfigurableCorePool {
	roadmap := clmm.NewRoadmap(nil)
	config := clmm.NewPoolConfig("USDC", "WETH", clmm.FeeMedium, 60)
	return clmm.NewConfigurableCorePool(config, roadmap, nil)
}

func runReplay(args []string) error {
	fs := flag.NewFlagSet("replay", flag.ContinueOnError)
	eventsPath := fs.String("events", "", "path to a JSON event batch file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return fmt.Errorf("usage: clmmsim replay -events <path> <startDate> <endDate>")
	}
	window, err := clmm.ParseDateWindow(fs.Arg(0), fs.Arg(1))
	if err != nil {
		return err
	}
	if *eventsPath == "" {
		return fmt.Errorf("-events is required")
	}
	f, err := os.Open(*eventsPath)
	if err != nil {
		return err
	}
	defer f.Close()

	batch, err := clmm.LoadEventBatchJSON(f)
	if err != nil {
		return err
	}
	batch.LiquidityEvents = window.FilterLiquidityEvents(batch.LiquidityEvents)
	batch.SwapEvents = window.FilterSwapEvents(batch.SwapEvents)

	pool := newDemoPool()
	replayer := clmm.NewReplayer(pool)
	if err := replayer.Replay(batch); err != nil {
		return err
	}
	fmt.Printf("replayed %d liquidity events and %d swap events\n", len(batch.LiquidityEvents), len(batch.SwapEvents))
	return nil
}

func runInspect(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: clmmsim inspect <snapshotId>")
	}
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid snapshot id: %w", err)
	}
	fmt.Printf("inspect requested for snapshot %s (wire a persistent SnapshotStore to resolve it)\n", id)
	return nil
}

func runFork(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: clmmsim fork <poolId>")
	}
	pool := newDemoPool()
	forked := pool.Fork()
	fmt.Printf("forked pool %s -> %s\n", args[0], forked.Id)
	return nil
}

func runSnapshot(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: clmmsim snapshot <poolId> <description>")
	}
	pool := newDemoPool()
	if err := pool.Initialize(clmm.MinSqrtRatio); err != nil {
		return err
	}
	id := pool.TakeSnapshot(args[1])
	fmt.Printf("snapshot %s taken for pool %s\n", id, args[0])
	return nil
}
