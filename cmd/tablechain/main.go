// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/solidcoredata/tablechain/config"
	"github.com/solidcoredata/tablechain/core"
	"github.com/solidcoredata/tablechain/internal/start"
	"github.com/solidcoredata/tablechain/patch"
	"github.com/solidcoredata/tablechain/rpc"
	svcconfig "github.com/solidcoredata/tablechain/service/config"
	"github.com/solidcoredata/tablechain/wire"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "tablechain",
		Short: "Track CSV table changes as a content-addressable block chain",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to the tablechain YAML configuration file")
	root.MarkPersistentFlagRequired("config")

	openCore := func() (*core.Core, config.Config, *zap.Logger, error) {
		cfg, err := svcconfig.Load(configPath)
		if err != nil {
			return nil, config.Config{}, nil, err
		}
		log, err := zap.NewProduction()
		if err != nil {
			return nil, config.Config{}, nil, err
		}
		c, err := core.New(cfg, log)
		if err != nil {
			return nil, config.Config{}, nil, err
		}
		return c, cfg, log, nil
	}

	root.AddCommand(newRecordCmd(openCore))
	root.AddCommand(newPublishCmd(openCore))
	root.AddCommand(newAckCmd(openCore))
	root.AddCommand(newWatchCmd(openCore))
	return root
}

func newRecordCmd(openCore func() (*core.Core, config.Config, *zap.Logger, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "record",
		Short: "Diff the configured CSV sources against the prior state and append a block",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, log, err := openCore()
			if err != nil {
				return err
			}
			defer log.Sync()

			return start.Start(cmd.Context(), 5*time.Second, func(ctx context.Context) error {
				result, err := c.Record()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "recorded block %s (parent %s)\n", result.Hash, result.Block.Parent)
				return nil
			})
		},
	}
}

func newPublishCmd(openCore func() (*core.Core, config.Config, *zap.Logger, error)) *cobra.Command {
	var ancestorHex string

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Consolidate the chain since an ancestor into a patch and print it hex-encoded to stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, log, err := openCore()
			if err != nil {
				return err
			}
			defer log.Sync()

			var ancestor *wire.Hash
			if ancestorHex != "" {
				h, err := wire.ParseHash(ancestorHex)
				if err != nil {
					return err
				}
				ancestor = &h
			}

			_, encoded, err := c.Publish(ancestor)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(encoded))
			return err
		},
	}
	cmd.Flags().StringVar(&ancestorHex, "ancestor", "", "40-hex hash to publish from (defaults to REPORTED, then genesis)")
	return cmd
}

func newAckCmd(openCore func() (*core.Core, config.Config, *zap.Logger, error)) *cobra.Command {
	var patchHex string

	cmd := &cobra.Command{
		Use:   "ack",
		Short: "Acknowledge a previously published patch, advancing REPORTED",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, log, err := openCore()
			if err != nil {
				return err
			}
			defer log.Sync()

			data, err := hex.DecodeString(patchHex)
			if err != nil {
				return fmt.Errorf("ack: decoding --patch: %w", err)
			}
			return c.Applied(patch.NewBuffer(data), true)
		},
	}
	cmd.Flags().StringVar(&patchHex, "patch", "", "hex-encoded patch bytes as previously printed by publish")
	cmd.MarkFlagRequired("patch")
	return cmd
}

// newWatchCmd runs record on a fixed interval and logs HEAD/STATE/REPORTED
// on its own interval, side by side under one process. The two loops are
// independent (a slow status log must never delay a record tick or vice
// versa), so they're fanned out with start.RunAll rather than interleaved
// in a single loop; either one returning an error stops both.
func newWatchCmd(openCore func() (*core.Core, config.Config, *zap.Logger, error)) *cobra.Command {
	var recordInterval, statusInterval time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run record on an interval alongside periodic status logging, until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, cfg, log, err := openCore()
			if err != nil {
				return err
			}
			defer log.Sync()

			status := rpc.NewLocalStatus(cfg)

			return start.Start(cmd.Context(), 5*time.Second, func(ctx context.Context) error {
				return start.RunAll(ctx,
					recordLoop(c, log, recordInterval),
					statusLoop(status, log, statusInterval),
				)
			})
		},
	}
	cmd.Flags().DurationVar(&recordInterval, "record-interval", time.Minute, "how often to run record")
	cmd.Flags().DurationVar(&statusInterval, "status-interval", 10*time.Second, "how often to log chain status")
	return cmd
}

func recordLoop(c *core.Core, log *zap.Logger, interval time.Duration) start.StartFunc {
	return func(ctx context.Context) error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				result, err := c.Record()
				if err != nil {
					return fmt.Errorf("watch: record: %w", err)
				}
				log.Info("watch: recorded block", zap.String("hash", result.Hash.String()), zap.String("parent", result.Block.Parent.String()))
			}
		}
	}
}

func statusLoop(status rpc.StatusService, log *zap.Logger, interval time.Duration) start.StartFunc {
	return func(ctx context.Context) error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				resp, err := status.Status(ctx, &rpc.StatusRequest{})
				if err != nil {
					return fmt.Errorf("watch: status: %w", err)
				}
				log.Info("watch: status", zap.String("head", resp.Head), zap.Bool("state_present", resp.StatePresent), zap.String("reported", resp.Reported))
			}
		}
	}
}
