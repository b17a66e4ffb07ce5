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

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"

	"dtb/adapters/arrowsrc"
	"dtb/adapters/deltasharing"
	"dtb/datatable"
)

// ErrNoTable is returned when an action needs a selected table tab.
var ErrNoTable = errors.New("no table selected")

// Data holds one table tab.
type Data struct {
	view   *TableView
	tab    *container.TabItem
	name   string
	source datatable.DataSource
}

// arrowData returns the arrow columns behind the tab, if any, for typed
// export.
func (d *Data) arrowData() *arrowsrc.Source {
	switch s := d.source.(type) {
	case *arrowsrc.Source:
		return s
	case *deltasharing.Source:
		return s.Arrow()
	}
	return nil
}

func (d *Data) release() {
	if r, ok := d.source.(interface{ Release() }); ok {
		r.Release()
	}
}

// DataBrowser shows loaded tables as tabs.
type DataBrowser struct {
	w              fyne.Window
	tabs           *container.DocTabs
	tabData        map[*container.TabItem]*Data
	statusCallback func(string)
}

// NewDataBrowser creates an empty browser. status receives the status line
// of the selected tab.
func NewDataBrowser(w fyne.Window, status func(string)) *DataBrowser {
	b := &DataBrowser{
		w:              w,
		tabData:        make(map[*container.TabItem]*Data),
		statusCallback: status,
	}
	b.tabs = container.NewDocTabs()
	b.tabs.SetTabLocation(container.TabLocationBottom)

	b.tabs.CloseIntercept = func(ti *container.TabItem) { b.Close(ti) }
	b.tabs.OnSelected = func(ti *container.TabItem) { b.updateStatusForTab(ti) }
	return b
}

// Content returns the tab container.
func (b *DataBrowser) Content() fyne.CanvasObject { return b.tabs }

// Len returns the number of open tabs.
func (b *DataBrowser) Len() int { return len(b.tabs.Items) }

// Add opens a tab for tbl. src is the source tbl was loaded from; it is
// used for typed export and refresh, and released when the tab closes.
// A tab with the same name is replaced.
func (b *DataBrowser) Add(name string, tbl *datatable.Table, src datatable.DataSource) *TableView {
	view := NewTableView(tbl, b.w)
	tab := container.NewTabItem(name, view)
	data := &Data{view: view, tab: tab, name: name, source: src}
	view.OnChanged = func(*TableView) {
		if b.tabs.Selected() == tab {
			b.updateStatusForTab(tab)
		}
	}

	for _, item := range b.tabs.Items {
		if item.Text == name {
			b.Close(item)
			break
		}
	}
	b.tabData[tab] = data
	b.tabs.Append(tab)
	b.tabs.Select(tab)
	b.updateStatusForTab(tab)
	return view
}

// Close removes a tab and releases its data.
func (b *DataBrowser) Close(ti *container.TabItem) {
	if data, ok := b.tabData[ti]; ok {
		data.release()
		delete(b.tabData, ti)
	}
	b.tabs.Remove(ti)

	if sel := b.tabs.Selected(); sel != nil {
		b.updateStatusForTab(sel)
	} else if b.statusCallback != nil {
		b.statusCallback("Ready")
	}
}

// CloseAll closes every tab.
func (b *DataBrowser) CloseAll() {
	for _, ti := range append([]*container.TabItem(nil), b.tabs.Items...) {
		b.Close(ti)
	}
}

// Selected returns the data of the selected tab, or nil.
func (b *DataBrowser) Selected() *Data {
	if ti := b.tabs.Selected(); ti != nil {
		return b.tabData[ti]
	}
	return nil
}

func (b *DataBrowser) updateStatusForTab(ti *container.TabItem) {
	if ti == nil || b.statusCallback == nil {
		return
	}
	if data, ok := b.tabData[ti]; ok {
		b.statusCallback(data.view.Status(data.name))
	}
}

// Refresh loads the selected table's rows again from its source. Shared
// tables fetch their current files.
func (b *DataBrowser) Refresh(ctx context.Context) error {
	data := b.Selected()
	if data == nil {
		return ErrNoTable
	}
	if data.source == nil {
		return fmt.Errorf("table %s has no source to refresh from", data.name)
	}
	if err := data.view.Table().Load(ctx, data.source); err != nil {
		return err
	}
	data.view.Redraw()
	return nil
}

// ExportTo writes the filtered and sorted rows of the selected tab, visible
// columns only, to path. The format follows the file extension.
func (b *DataBrowser) ExportTo(path string) error {
	data := b.Selected()
	if data == nil {
		return ErrNoTable
	}
	tbl := data.view.Table()
	return arrowsrc.ExportFile(path, tbl, tbl.Draw(), data.arrowData())
}

// ShowExport asks for a file name and exports the selected tab.
func (b *DataBrowser) ShowExport(format arrowsrc.Format) {
	data := b.Selected()
	if data == nil {
		dialog.ShowInformation("Export", "Open a table first.", b.w)
		return
	}

	save := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, b.w)
			return
		}
		if writer == nil {
			return
		}
		path := writer.URI().Path()
		writer.Close()

		done := showProgress(b.w, "Exporting...")
		exportErr := b.ExportTo(path)
		done()

		if exportErr != nil {
			dialog.ShowError(fmt.Errorf("export failed: %w", exportErr), b.w)
			return
		}
		dialog.ShowInformation("Export Successful",
			fmt.Sprintf("Data exported successfully to:\n%s", path), b.w)
	}, b.w)
	save.SetFileName(cleanFilename(data.name) + format.Ext())
	save.Show()
}
