package main

import (
	"context"
	"fmt"

	"github.com/etclab/oram/internal/obslog"
	"github.com/spf13/cobra"
)

var putCmd = &cobra.Command{
	Use:   "put <block-id> <data>",
	Short: "Obliviously write one block",
	Args:  cobra.ExactArgs(2),
	RunE:  runPut,
}

func runPut(cmd *cobra.Command, args []string) error {
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

	payload := make([]byte, cfg.BlockSize)
	copy(payload, args[1])

	_, logs, err := engine.Write(ctx, blockID, payload)
	for _, l := range logs {
		obslog.BackendEventFor(engine.ID(), "cli-put", string(l.Verb), l.Name, l.Detail)
	}
	return err
}
