// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/googlecloudplatform/rangecache/cfg"
	"github.com/googlecloudplatform/rangecache/common"
	"github.com/googlecloudplatform/rangecache/internal/rangecache"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// invocation is everything a run of the root command needs.
type invocation struct {
	config    *cfg.Config
	objectURL string
	ranges    []rangecache.ByteRange
	output    string
}

type runFn func(ctx context.Context, inv *invocation) error

// NewRootCmd returns the rangecache command. run is called with the parsed
// and validated configuration; tests substitute it.
func NewRootCmd(run runFn) (*cobra.Command, error) {
	var (
		configFile string
		rangesFile string
		output     string
	)
	v := viper.New()

	rootCmd := &cobra.Command{
		Use:   "rangecache [flags] OBJECT_URL [OFFSET:LENGTH ...]",
		Short: "Read byte ranges of an object through a coalescing read cache",
		Long: `rangecache registers the given byte ranges of an object, merges nearby
ranges into fewer larger reads, fetches them concurrently and writes the
requested bytes, in the order given, to the output.

OBJECT_URL is one of gs://bucket/object, s3://bucket/key, file:///path or a
local path.`,
		Version:       common.GetVersion(),
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadConfig(v, configFile)
			if err != nil {
				return err
			}
			ranges, err := collectRanges(args[1:], rangesFile)
			if err != nil {
				return err
			}
			return run(cmd.Context(), &invocation{
				config:    c,
				objectURL: args[0],
				ranges:    ranges,
				output:    output,
			})
		},
	}

	flagSet := rootCmd.PersistentFlags()
	flagSet.StringVar(&configFile, "config-file", "", "The path to the config file where all rangecache related config needs to be specified.")
	flagSet.StringVar(&rangesFile, "ranges-file", "", "YAML file holding a list of {offset, length} ranges, read in addition to the positional ranges.")
	rootCmd.Flags().StringVarP(&output, "output", "o", "", "File to write the requested bytes to. Empty or - means stdout.")
	if err := cfg.BindFlags(v, flagSet); err != nil {
		return nil, fmt.Errorf("error while binding flags: %w", err)
	}

	rootCmd.AddCommand(newPlanCmd(v, &configFile, &rangesFile))
	return rootCmd, nil
}

// loadConfig merges the config file, if any, under the flags in v and
// returns the rationalized, validated result.
func loadConfig(v *viper.Viper, configFile string) (*cfg.Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error while reading the config file: %w", err)
		}
	}

	var c cfg.Config
	err := v.Unmarshal(&c, viper.DecodeHook(cfg.DecodeHook()), func(decoderConfig *mapstructure.DecoderConfig) {
		decoderConfig.TagName = "yaml"
		// Typos in the config file should not be silently ignored.
		decoderConfig.ErrorUnused = true
	})
	if err != nil {
		return nil, fmt.Errorf("error while unmarshaling the config: %w", err)
	}
	if err = cfg.Rationalize(v, &c); err != nil {
		return nil, fmt.Errorf("error while rationalizing the config: %w", err)
	}
	if err = cfg.ValidateConfig(&c); err != nil {
		return nil, fmt.Errorf("error while validating the config: %w", err)
	}
	return &c, nil
}

func Execute() {
	rootCmd, err := NewRootCmd(runCache)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rangecache: %v\n", err)
		os.Exit(1)
	}
	if err = rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "rangecache: %v\n", err)
		os.Exit(1)
	}
}
