package main

import (
	"context"
	"fmt"

	"github.com/etclab/oram/simulate"
	"github.com/spf13/cobra"
)

var (
	simNumBlocks      int
	simBucketSize     int
	simNumAccesses    int
	simWarmupAccesses int
	simNumber         int
	simOutputDir      string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the offline stash-size simulator and write a CCDF file",
	RunE:  runSimulate,
}

func init() {
	simulateCmd.Flags().IntVar(&simNumBlocks, "num-blocks", 1<<16, "logical capacity in blocks")
	simulateCmd.Flags().IntVar(&simBucketSize, "bucket-size", 4, "blocks per tree node (Z)")
	simulateCmd.Flags().IntVar(&simNumAccesses, "num-accesses", 5_000, "measured accesses to record")
	simulateCmd.Flags().IntVar(&simWarmupAccesses, "warmup-accesses", 3_000, "warm-up writes before recording")
	simulateCmd.Flags().IntVar(&simNumber, "sim-number", 1, "simulation run id, used in the output filename")
	simulateCmd.Flags().StringVar(&simOutputDir, "output-dir", "simulations", "directory to write simulation<N>.txt into")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	result, err := simulate.Run(ctx, simulate.Config{
		NumBlocks:      simNumBlocks,
		BucketSize:     simBucketSize,
		NumAccesses:    simNumAccesses,
		WarmupAccesses: simWarmupAccesses,
		SimNumber:      simNumber,
	})
	if err != nil {
		return err
	}

	path, err := simulate.WriteCCDF(simOutputDir, simNumber, result)
	if err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}
