package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func parseBlockID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid block id %q: %w", s, err)
	}
	return id, nil
}

func loadConfigFlag(cmd *cobra.Command) (*cliConfig, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path, _ = cmd.Root().PersistentFlags().GetString("config")
	}
	if path == "" {
		return nil, fmt.Errorf("missing --config")
	}
	return loadCLIConfig(path)
}
