package main

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/etclab/oram"
	"github.com/etclab/oram/backend"
)

// buildEngine constructs an Engine from a loaded cliConfig, choosing a
// backend (local disk, S3, or in-memory as a last resort) and an
// encryption hook from the config's storage and key settings.
func buildEngine(ctx context.Context, cfg *cliConfig) (*oram.Engine, error) {
	be, err := buildBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}

	enc, err := buildEncryptor(cfg)
	if err != nil {
		return nil, err
	}

	engineCfg := oram.Config{
		NumBlocks:    cfg.NumBlocks,
		BlockSize:    cfg.BlockSize,
		BucketSize:   cfg.BucketSize,
		StashLimit:   cfg.StashLimit,
		Persist:      cfg.Persist,
		SnapshotPath: cfg.SnapshotPath,
	}

	engine, _, err := oram.New(engineCfg, be, enc)
	return engine, err
}

func buildBackend(ctx context.Context, cfg *cliConfig) (backend.Backend, error) {
	if cfg.Storage == nil {
		return backend.NewMemory(), nil
	}
	switch {
	case cfg.Storage.Local != nil:
		return backend.NewLocal(cfg.Storage.Local.Dir)
	case cfg.Storage.S3 != nil:
		s3 := cfg.Storage.S3
		return backend.NewRemote(ctx, backend.RemoteConfig{
			Bucket:          s3.Bucket,
			Prefix:          s3.Prefix,
			Region:          s3.Region,
			Endpoint:        s3.Endpoint,
			AccessKeyID:     s3.AccessKeyID,
			SecretAccessKey: s3.SecretAccessKey,
			ForcePathStyle:  s3.ForcePathStyle,
		})
	default:
		return backend.NewMemory(), nil
	}
}

func buildEncryptor(cfg *cliConfig) (oram.Encryptor, error) {
	if cfg.EncryptionKey == "" {
		return oram.NoOpEncryptor{}, nil
	}
	key, err := hex.DecodeString(cfg.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("encryption-key must be hex-encoded: %w", err)
	}
	return oram.NewAESGCMEncryptor(key)
}
