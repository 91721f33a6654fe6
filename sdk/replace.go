// Copyright 2026 Dagpilot Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package sdk

import (
	"os"
	"strings"

	"github.com/pkg/errors"
)

// FindAndReplace replaces every literal occurrence of pattern in the file at
// path and returns the new contents and the occurrence count. Zero
// occurrences is an error: the file does not look like what the caller
// expects, and writing it back would hide that.
func (s *SDK) FindAndReplace(path, pattern, replacement string) ([]byte, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, err
	}
	content := string(data)
	count := strings.Count(content, pattern)
	if count == 0 {
		return nil, 0, errors.Errorf("pattern %q not found in %s", pattern, path)
	}
	replaced := []byte(strings.ReplaceAll(content, pattern, replacement))
	if err := os.WriteFile(path, replaced, 0644); err != nil {
		return nil, 0, err
	}
	return replaced, count, nil
}
