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

package util

import (
	"fmt"
	"math"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ParentProcessDirEnv, when set, is the directory relative paths given on
// the command line are resolved against.
const ParentProcessDirEnv = "RANGECACHE_PARENT_PROCESS_DIR"

const MaxMiBsInInt64 int64 = math.MaxInt64 >> 20

// GetResolvedPath returns the absolute form of filePath.
//  1. Absolute paths and the empty string are returned unchanged.
//  2. Paths starting with "~/" are resolved against the home directory.
//  3. Any other relative path is resolved against $RANGECACHE_PARENT_PROCESS_DIR
//     when set, and against the working directory otherwise.
func GetResolvedPath(filePath string) (resolvedPath string, err error) {
	if filePath == "" || path.IsAbs(filePath) {
		resolvedPath = filePath
		return
	}

	if strings.HasPrefix(filePath, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("fetch home dir: %w", err)
		}
		return filepath.Join(homeDir, filePath[2:]), nil
	}

	parentDir := strings.TrimSpace(os.Getenv(ParentProcessDirEnv))
	if parentDir == "" {
		return filepath.Abs(filePath)
	}
	return filepath.Join(parentDir, filePath), nil
}

// MiBsToBytes returns the number of bytes in the given MiBs. Inputs that
// would overflow int64 are clamped to the largest representable multiple.
func MiBsToBytes(mibs int64) int64 {
	if mibs > MaxMiBsInInt64 {
		return MaxMiBsInInt64 << 20
	}
	return mibs << 20
}
