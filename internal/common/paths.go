// Copyright 2026 pg-sqlite-fs Authors
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

package common

import (
	"fmt"
	"path/filepath"
	"strings"
)

// CheckPath canonicalizes path and verifies it lies under root. Both must be
// absolute. Returns the cleaned path. The root itself is not a valid store
// path (a store is always a file below the location).
func CheckPath(root, path string) (string, error) {
	if !filepath.IsAbs(path) {
		return "", fmt.Errorf("%w: path must be absolute: %s", ErrConfiguration, path)
	}
	cleaned := filepath.Clean(path)
	if !IsPathPrefix(root, cleaned) || cleaned == filepath.Clean(root) {
		return "", fmt.Errorf("%w: path must be below %s: %s", ErrConfiguration, root, path)
	}
	return cleaned, nil
}

// IsPathPrefix reports whether path lies at or below prefix, comparing whole
// path components ("/data/fs" is not a prefix of "/data/fsx").
func IsPathPrefix(prefix, path string) bool {
	prefix = filepath.Clean(prefix)
	path = filepath.Clean(path)
	if prefix == path {
		return true
	}
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(path, prefix)
}
