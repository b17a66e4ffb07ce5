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
	"os"
	"path/filepath"
	"sort"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"dtb/adapters/filesrc"
)

// FileDialog browses the file system for data files and Delta Sharing
// profiles. Only directories and files of a known type are listed.
type FileDialog struct {
	dialog      dialog.Dialog
	window      fyne.Window
	callback    func(path string)
	fileList    *widget.List
	pathLabel   *widget.Label
	entries     []dirEntry
	homeDir     string
	currentPath string
}

type dirEntry struct {
	name string
	dir  bool
}

// NewFileDialog creates a dialog starting in the home directory. callback
// receives the chosen file.
func NewFileDialog(w fyne.Window, callback func(path string)) *FileDialog {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return &FileDialog{window: w, callback: callback, homeDir: homeDir, currentPath: homeDir}
}

// isDataFile reports whether name has an extension the loader reads.
func isDataFile(name string) bool {
	return filesrc.DetectFileType(name, "") != filesrc.FileTypeUnknown
}

// listDirectory returns the visible directories, then the data files, of
// path, each sorted by name.
func listDirectory(path string) ([]dirEntry, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var dirs, files []dirEntry
	for _, e := range entries {
		switch {
		case strings.HasPrefix(e.Name(), "."):
		case e.IsDir():
			dirs = append(dirs, dirEntry{name: e.Name(), dir: true})
		case isDataFile(e.Name()):
			files = append(files, dirEntry{name: e.Name()})
		}
	}
	byName := func(s []dirEntry) func(i, j int) bool {
		return func(i, j int) bool { return s[i].name < s[j].name }
	}
	sort.Slice(dirs, byName(dirs))
	sort.Slice(files, byName(files))
	return append(dirs, files...), nil
}

// Show displays the dialog.
func (fd *FileDialog) Show() {
	fd.pathLabel = widget.NewLabel(fd.currentPath)
	fd.pathLabel.Truncation = fyne.TextTruncateEllipsis
	fd.pathLabel.TextStyle = fyne.TextStyle{Bold: true}

	fd.fileList = widget.NewList(
		func() int { return len(fd.entries) },
		func() fyne.CanvasObject {
			return container.NewHBox(widget.NewIcon(theme.DocumentIcon()), widget.NewLabel("template"))
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			row := obj.(*fyne.Container)
			icon := row.Objects[0].(*widget.Icon)
			e := fd.entries[id]
			row.Objects[1].(*widget.Label).SetText(e.name)
			if e.dir {
				icon.SetResource(theme.FolderIcon())
			} else {
				icon.SetResource(theme.FileIcon())
			}
		},
	)
	fd.fileList.OnSelected = func(id widget.ListItemID) {
		e := fd.entries[id]
		full := filepath.Join(fd.currentPath, e.name)
		if e.dir {
			fd.currentPath = full
			fd.loadDirectory()
			fd.fileList.UnselectAll()
			return
		}
		fd.dialog.Hide()
		if fd.callback != nil {
			fd.callback(full)
		}
	}

	homeButton := widget.NewButtonWithIcon("Home", theme.HomeIcon(), func() {
		fd.currentPath = fd.homeDir
		fd.loadDirectory()
	})
	upButton := widget.NewButtonWithIcon("Up", theme.NavigateBackIcon(), func() {
		if parent := filepath.Dir(fd.currentPath); parent != fd.currentPath {
			fd.currentPath = parent
			fd.loadDirectory()
		}
	})
	refreshButton := widget.NewButtonWithIcon("Refresh", theme.ViewRefreshIcon(), fd.loadDirectory)

	filterInfo := widget.NewLabel("Showing CSV, TSV, JSON, Parquet (optionally .gz or .zst) and profile files")
	filterInfo.TextStyle = fyne.TextStyle{Italic: true}

	content := container.NewBorder(
		container.NewVBox(
			container.NewBorder(nil, nil, container.NewHBox(homeButton, upButton, refreshButton), nil, fd.pathLabel),
			widget.NewSeparator(),
			filterInfo,
		),
		nil, nil, nil,
		fd.fileList,
	)
	fd.dialog = dialog.NewCustom("Open Data File or Profile", "Close", content, fd.window)
	fd.dialog.Resize(fyne.NewSize(800, 600))
	fd.loadDirectory()
	fd.dialog.Show()
}

func (fd *FileDialog) loadDirectory() {
	entries, err := listDirectory(fd.currentPath)
	if err != nil {
		dialog.ShowError(err, fd.window)
		return
	}
	fd.entries = entries
	fd.pathLabel.SetText(fd.currentPath)
	fd.fileList.Refresh()
}
