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
	"github.com/googlecloudplatform/rangecache/internal/rangecache"
	"github.com/googlecloudplatform/rangecache/internal/wiring"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

type plannedRequest struct {
	Span      rangecache.ByteRange   `yaml:"span"`
	Subranges []rangecache.ByteRange `yaml:"subranges"`
}

type plan struct {
	HoleSizeLimit  int64            `yaml:"hole-size-limit"`
	RangeSizeLimit int64            `yaml:"range-size-limit"`
	RequestedBytes int64            `yaml:"requested-bytes"`
	FetchedBytes   int64            `yaml:"fetched-bytes"`
	Requests       []plannedRequest `yaml:"requests"`
}

func makePlan(opts rangecache.Options, ranges []rangecache.ByteRange) plan {
	p := plan{
		HoleSizeLimit:  opts.HoleSizeLimit,
		RangeSizeLimit: opts.RangeSizeLimit,
		Requests:       []plannedRequest{},
	}
	for _, cr := range rangecache.CoalesceRanges(ranges, opts.HoleSizeLimit, opts.RangeSizeLimit) {
		p.Requests = append(p.Requests, plannedRequest{Span: cr.Span, Subranges: cr.Subranges})
		p.FetchedBytes += cr.Span.Length
		for _, r := range cr.Subranges {
			p.RequestedBytes += r.Length
		}
	}
	return p
}

func newPlanCmd(v *viper.Viper, configFile, rangesFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "plan [flags] [OFFSET:LENGTH ...]",
		Short: "Print how the given ranges would be coalesced, without reading anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadConfig(v, *configFile)
			if err != nil {
				return err
			}
			ranges, err := collectRanges(args, *rangesFile)
			if err != nil {
				return err
			}
			if err = rangecache.ValidateRanges(ranges); err != nil {
				return err
			}
			opts, err := wiring.CacheOptions(&c.Cache)
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err = enc.Encode(makePlan(opts, ranges)); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}
