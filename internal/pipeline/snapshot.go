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

package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"os"

	"github.com/dagpilot/dagpilot/internal/utils"
)

// SnapshotDAGFile is the snapshot kind for the generated DAG file contents.
const SnapshotDAGFile = "dag-file"

// Snapshot is an immutable snapshot of an intermediate artifact. Each edit of
// the DAG file produces a new Snapshot; rollback restores a previous one.
type Snapshot struct {
	Kind    string // e.g. "dag-file"
	Path    string // file the contents belong to, if any
	Hash    string // hex-encoded sha256 of Content
	Content []byte
}

// NewSnapshot creates a snapshot of content belonging to path.
func NewSnapshot(kind, path string, content []byte) *Snapshot {
	h := sha256.Sum256(content)
	return &Snapshot{
		Kind:    kind,
		Path:    path,
		Hash:    hex.EncodeToString(h[:]),
		Content: append([]byte(nil), content...),
	}
}

// SnapshotFile reads path and snapshots its current contents.
func SnapshotFile(kind, path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return NewSnapshot(kind, path, data), nil
}

// Restore writes the snapshot contents back to its path.
func (s *Snapshot) Restore() error {
	if s == nil || s.Path == "" {
		return nil
	}
	return utils.MustWriteFile(s.Path, s.Content)
}
