package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// storageProvider selects and configures one backend driver. Exactly one
// of Local or S3 may be set, following the same "one provider block
// selects the backend" shape the wider ecosystem uses for pluggable
// object storage.
type storageProvider struct {
	Local *localProvider `yaml:"local"`
	S3    *s3Provider    `yaml:"s3"`
}

type localProvider struct {
	Dir string `yaml:"dir"`
}

type s3Provider struct {
	Bucket          string `yaml:"bucket"`
	Prefix          string `yaml:"prefix"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access-key-id"`
	SecretAccessKey string `yaml:"secret-access-key"`
	ForcePathStyle  bool   `yaml:"force-path-style"`
}

func (sp *storageProvider) hasMultiple() bool {
	count := 0
	if sp.Local != nil {
		count++
	}
	if sp.S3 != nil {
		count++
	}
	return count > 1
}

// cliConfig is the shape of the YAML file accepted by --config, mapping
// directly onto oram.Config plus the backend selection that only the CLI
// (not the core engine) knows how to interpret.
type cliConfig struct {
	NumBlocks     int    `yaml:"num-blocks"`
	BlockSize     int    `yaml:"block-size"`
	BucketSize    int    `yaml:"bucket-size"`
	StashLimit    int    `yaml:"stash-limit"`
	Persist       bool   `yaml:"persist"`
	SnapshotPath  string `yaml:"snapshot-path"`
	EncryptionKey string `yaml:"encryption-key"` // hex-encoded 32-byte AES-256 key, optional

	Storage *storageProvider `yaml:"storage"`
}

func loadCLIConfig(path string) (*cliConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg cliConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Storage != nil && cfg.Storage.hasMultiple() {
		return nil, fmt.Errorf("config: only one storage provider may be configured")
	}
	return &cfg, nil
}
