package main

import (
	"context"
	"fmt"

	"github.com/etclab/oram/internal/obslog"
	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <block-id>",
	Short: "Obliviously read one block",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	blockID, err := parseBlockID(args[0])
	if err != nil {
		return err
	}

	cfg, err := loadConfigFlag(cmd)
	if err != nil {
		return err
	}

	ctx := context.Background()
	engine, err := buildEngine(ctx, cfg)
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}

	data, logs, err := engine.Read(ctx, blockID)
	for _, l := range logs {
		obslog.BackendEventFor(engine.ID(), "cli-get", string(l.Verb), l.Name, l.Detail)
	}
	if err != nil {
		return err
	}
	fmt.Printf("%s\n", data)
	return nil
}
