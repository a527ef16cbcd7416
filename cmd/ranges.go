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
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/googlecloudplatform/rangecache/internal/rangecache"
	"gopkg.in/yaml.v3"
)

// parseByteRange parses "OFFSET:LENGTH".
func parseByteRange(s string) (rangecache.ByteRange, error) {
	off, length, ok := strings.Cut(s, ":")
	if !ok {
		return rangecache.ByteRange{}, fmt.Errorf("range %q is not of the form OFFSET:LENGTH", s)
	}
	o, err := strconv.ParseInt(off, 10, 64)
	if err != nil {
		return rangecache.ByteRange{}, fmt.Errorf("range %q: bad offset: %w", s, err)
	}
	l, err := strconv.ParseInt(length, 10, 64)
	if err != nil {
		return rangecache.ByteRange{}, fmt.Errorf("range %q: bad length: %w", s, err)
	}
	return rangecache.ByteRange{Offset: o, Length: l}, nil
}

func readRangesFile(path string) ([]rangecache.ByteRange, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading ranges file: %w", err)
	}
	var ranges []rangecache.ByteRange
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err = dec.Decode(&ranges); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing ranges file %s: %w", path, err)
	}
	return ranges, nil
}

// collectRanges returns the positional ranges followed by those in
// rangesFile. Validation against each other is left to the cache.
func collectRanges(args []string, rangesFile string) ([]rangecache.ByteRange, error) {
	var ranges []rangecache.ByteRange
	for _, a := range args {
		r, err := parseByteRange(a)
		if err != nil {
			return nil, err
		}
		ranges = append(ranges, r)
	}
	if rangesFile != "" {
		fromFile, err := readRangesFile(rangesFile)
		if err != nil {
			return nil, err
		}
		ranges = append(ranges, fromFile...)
	}
	return ranges, nil
}
