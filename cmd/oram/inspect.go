package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/etclab/oram"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <node-id>",
	Short: "Print one tree node's bucket as JSON (debug only, not the on-disk format)",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	nodeID, err := parseBlockID(args[0])
	if err != nil {
		return err
	}

	cfg, err := loadConfigFlag(cmd)
	if err != nil {
		return err
	}

	ctx := context.Background()
	be, err := buildBackend(ctx, cfg)
	if err != nil {
		return err
	}
	enc, err := buildEncryptor(cfg)
	if err != nil {
		return err
	}

	raw, _, err := be.Read(ctx, fmt.Sprintf("%d", nodeID))
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		fmt.Println("{}")
		return nil
	}

	plaintext, err := enc.Decrypt(raw)
	if err != nil {
		return err
	}

	bucket := oram.DecodeBucketForInspection(plaintext, cfg.BucketSize, cfg.BlockSize)
	out, err := json.MarshalIndent(bucket, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
