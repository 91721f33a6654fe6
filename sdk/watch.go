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
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
)

// WaitForFile blocks until path exists or timeout elapses. The external
// `dlt deploy` writes its generated files after the command returns on some
// filesystems, so the deploy step waits for the DAG file to materialize.
func WaitForFile(ctx context.Context, path string, timeout time.Duration) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "fsnotify watcher")
	}
	defer watcher.Close()

	// The parent directory may not exist yet either (`dlt deploy` creates
	// dags/ itself), so anchor the watch on the nearest existing ancestor
	// and move it down as directories appear.
	dir := filepath.Dir(path)
	watched := nearestExistingDir(dir)
	if err := watcher.Add(watched); err != nil {
		return errors.Wrapf(err, "watch %s", watched)
	}

	// The file may have appeared between Stat and Add.
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return errors.Errorf("timed out after %s waiting for %s", timeout, path)
		case _, ok := <-watcher.Events:
			if !ok {
				return errors.New("watcher closed")
			}
			if _, err := os.Stat(path); err == nil {
				return nil
			}
			if next := nearestExistingDir(dir); next != watched {
				if err := watcher.Add(next); err != nil {
					return errors.Wrapf(err, "watch %s", next)
				}
				watcher.Remove(watched)
				watched = next
				// The file may have landed while the watch moved.
				if _, err := os.Stat(path); err == nil {
					return nil
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return errors.New("watcher closed")
			}
			return errors.Wrap(err, "watch")
		}
	}
}

// nearestExistingDir walks up from dir until it hits a directory that
// exists. It terminates at the filesystem root, which always does.
func nearestExistingDir(dir string) string {
	for {
		if _, err := os.Stat(dir); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
