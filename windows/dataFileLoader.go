// Copyright 2025 Magnus Pierre
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

package windows

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"dtb/adapters/filesrc"
	"dtb/datatable"
)

// LoadDataFile opens a CSV, JSON or Parquet file in a new tab. A Delta
// Sharing profile is loaded into the share tree instead.
func (m *MainWindow) LoadDataFile(ctx context.Context, path string) error {
	apply, err := m.loadDataFile(ctx, path)
	if err != nil {
		return err
	}
	apply()
	return nil
}

func (m *MainWindow) loadDataFile(ctx context.Context, path string) (func(), error) {
	ds, info, err := filesrc.Open(ctx, path)
	if errors.Is(err, filesrc.ErrProfile) {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read profile: %w", err)
		}
		return m.loadProfile(ctx, string(content))
	}
	if err != nil {
		return nil, err
	}

	tbl, err := datatable.Open(ctx, m.cfg, ds, datatable.WithLogger(m.log), datatable.WithID(filepath.Base(path)))
	if err != nil {
		if r, ok := ds.(interface{ Release() }); ok {
			r.Release()
		}
		return nil, fmt.Errorf("failed to load %s: %w", filepath.Base(path), err)
	}
	return func() {
		m.browser.Add(filepath.Base(path), tbl, ds)
		m.SetStatus(info.Summary())
	}, nil
}

// OpenFiles loads each path in the background.
func (m *MainWindow) OpenFiles(paths ...string) {
	for _, p := range paths {
		m.handleDataFileLoad(p)
	}
}

func (m *MainWindow) handleDataFileLoad(path string) {
	m.background("Loading "+filepath.Base(path), func(ctx context.Context) (func(), error) {
		return m.loadDataFile(ctx, path)
	})
}

// ShowOpenDialog asks for a data file or profile and loads it.
func (m *MainWindow) ShowOpenDialog() {
	NewFileDialog(m.w, m.handleDataFileLoad).Show()
}
