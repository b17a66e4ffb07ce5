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
	"fmt"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"dtb/adapters/arrowsrc"
	"dtb/adapters/deltasharing"
	"dtb/datatable"
)

// DefaultTimeout bounds catalog listing and table loads.
const DefaultTimeout = 2 * time.Minute

// MainWindow is the browser window: the share catalog on the left, the
// open tables as tabs, a toolbar and a status bar.
type MainWindow struct {
	a fyne.App
	w fyne.Window

	cfg     datatable.Config
	log     *datatable.Logger
	timeout time.Duration

	browser   *DataBrowser
	catalog   *deltasharing.Catalog
	nav       *NavigationTree
	scripts   *ScriptEditor
	left      fyne.CanvasObject
	statusBar *widget.Label
}

// NewMainWindow builds the window. cfg is the table configuration every
// opened table starts from.
func NewMainWindow(a fyne.App, cfg datatable.Config, log *datatable.Logger) *MainWindow {
	if log == nil {
		log = datatable.NoopLogger()
	}
	m := &MainWindow{a: a, cfg: cfg, log: log, timeout: DefaultTimeout}
	a.Settings().SetTheme(&BrowserTheme{})
	m.w = a.NewWindow("Data Table Browser")
	m.w.Resize(fyne.NewSize(1100, 700))

	m.statusBar = widget.NewLabel("Ready")
	m.statusBar.TextStyle = fyne.TextStyle{Italic: true}

	m.browser = NewDataBrowser(m.w, m.SetStatus)
	m.scripts = NewScriptEditor(m.w, m.browser)

	m.catalog = deltasharing.NewCatalog(m.timeout)
	m.nav = NewNavigationTree(m.catalog, m.w.Canvas())
	m.nav.OnOpen = m.onOpen
	m.left = container.NewGridWrap(fyne.NewSize(220, 600), widget.NewCard("", "Shares", m.nav.Widget()))
	m.left.Hide()

	m.w.SetMainMenu(m.mainMenu())
	m.w.SetContent(container.NewBorder(m.toolbar(), container.NewHBox(m.statusBar), m.left, nil, m.browser.Content()))
	return m
}

// Window returns the fyne window.
func (m *MainWindow) Window() fyne.Window { return m.w }

// Browser returns the table tabs.
func (m *MainWindow) Browser() *DataBrowser { return m.browser }

// SetTimeout changes the bound on catalog and table loads.
func (m *MainWindow) SetTimeout(d time.Duration) {
	if d > 0 {
		m.timeout = d
	}
}

// ShowAndRun shows the window and runs the application.
func (m *MainWindow) ShowAndRun() {
	m.w.ShowAndRun()
}

// SetStatus updates the status bar message.
func (m *MainWindow) SetStatus(message string) {
	if m.statusBar != nil {
		m.statusBar.SetText(message)
	}
}

// StatusText returns the status bar message.
func (m *MainWindow) StatusText() string { return m.statusBar.Text }

func (m *MainWindow) toolbar() fyne.CanvasObject {
	return widget.NewToolbar(
		widget.NewToolbarAction(theme.MenuIcon(), m.toggleTree),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.FolderOpenIcon(), m.ShowOpenDialog),
		newToolbarMenu(theme.DocumentSaveIcon(), m.w, m.exportItems),
		widget.NewToolbarAction(theme.ViewRefreshIcon(), m.handleRefresh),
		widget.NewToolbarAction(theme.DocumentCreateIcon(), m.scripts.Show),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.DeleteIcon(), m.browser.CloseAll),
		widget.NewToolbarSpacer(),
	)
}

func (m *MainWindow) mainMenu() *fyne.MainMenu {
	open := fyne.NewMenuItem("Open...", m.ShowOpenDialog)
	export := fyne.NewMenuItem("Export", nil)
	export.ChildMenu = fyne.NewMenu("", m.exportItems()...)
	return fyne.NewMainMenu(
		fyne.NewMenu("File", open, export, fyne.NewMenuItemSeparator(),
			fyne.NewMenuItem("Close All Tables", m.browser.CloseAll)),
		fyne.NewMenu("Table",
			fyne.NewMenuItem("Refresh", m.handleRefresh),
			fyne.NewMenuItem("Render Script...", m.scripts.Show)),
		fyne.NewMenu("View", fyne.NewMenuItem("Toggle Shares", m.toggleTree)),
	)
}

func (m *MainWindow) exportItems() []*fyne.MenuItem {
	item := func(label string, f arrowsrc.Format) *fyne.MenuItem {
		return fyne.NewMenuItem(label, func() { m.browser.ShowExport(f) })
	}
	return []*fyne.MenuItem{
		item("Export as Parquet...", arrowsrc.FormatParquet),
		item("Export as CSV...", arrowsrc.FormatCSV),
		item("Export as JSON...", arrowsrc.FormatJSON),
	}
}

func (m *MainWindow) toggleTree() {
	if m.left.Visible() {
		m.left.Hide()
	} else {
		m.left.Show()
	}
}

// background runs work off the UI goroutine behind a progress dialog. The
// returned apply function runs on the UI goroutine when work succeeds.
func (m *MainWindow) background(title string, work func(ctx context.Context) (apply func(), err error)) {
	m.SetStatus(title)
	done := showProgress(m.w, title)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
		defer cancel()
		apply, err := work(ctx)
		fyne.Do(func() {
			done()
			if err != nil {
				m.SetStatus("Error: " + err.Error())
				dialog.ShowError(err, m.w)
				return
			}
			if apply != nil {
				apply()
			}
		})
	}()
}

// LoadProfile connects with a Delta Sharing profile and lists its catalog.
func (m *MainWindow) LoadProfile(ctx context.Context, content string) error {
	apply, err := m.loadProfile(ctx, content)
	if err != nil {
		return err
	}
	apply()
	return nil
}

func (m *MainWindow) loadProfile(ctx context.Context, content string) (func(), error) {
	client, err := deltasharing.NewClient(content)
	if err != nil {
		return nil, fmt.Errorf("error connecting to Delta Sharing: %w", err)
	}
	if err := m.catalog.Load(ctx, client); err != nil {
		return nil, fmt.Errorf("error listing shares: %w", err)
	}
	return func() {
		m.nav.Loaded(client)
		m.left.Show()
		m.SetStatus(fmt.Sprintf("Profile loaded: %d tables", len(m.catalog.Tables())))
	}, nil
}

// OpenTable loads a shared table into a new tab. opts may be nil.
func (m *MainWindow) OpenTable(ctx context.Context, node *deltasharing.Node, opts *deltasharing.QueryOptions) error {
	apply, err := m.openTable(ctx, node, opts)
	if err != nil {
		return err
	}
	apply()
	return nil
}

func (m *MainWindow) openTable(ctx context.Context, node *deltasharing.Node, opts *deltasharing.QueryOptions) (func(), error) {
	client := m.nav.Client()
	if client == nil {
		return nil, fmt.Errorf("no profile loaded")
	}
	src := deltasharing.NewSource(client, node.Table, opts,
		deltasharing.WithTimeout(m.timeout),
		deltasharing.WithLogger(m.log))
	tbl, err := datatable.Open(ctx, m.cfg, src, datatable.WithLogger(m.log), datatable.WithID(node.ID))
	if err != nil {
		src.Release()
		return nil, fmt.Errorf("failed to load table %s: %w", node.Name, err)
	}
	return func() {
		m.browser.Add(node.Name, tbl, src)
	}, nil
}

func (m *MainWindow) onOpen(node *deltasharing.Node, withOptions bool) {
	if !withOptions {
		m.background("Loading table data: "+node.Name, func(ctx context.Context) (func(), error) {
			return m.openTable(ctx, node, nil)
		})
		return
	}

	m.background("Loading schema for table: "+node.Name, func(ctx context.Context) (func(), error) {
		client := m.nav.Client()
		if client == nil {
			return nil, fmt.Errorf("no profile loaded")
		}
		probe := deltasharing.NewSource(client, node.Table, nil, deltasharing.WithTimeout(m.timeout))
		defer probe.Release()
		schema, err := probe.Schema(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load table schema: %w", err)
		}
		return func() {
			m.SetStatus("Choose query options for " + node.Name)
			NewQueryOptionsDialog(m.w, schema, func(opts *deltasharing.QueryOptions) {
				m.background("Loading table data with options: "+node.Name, func(ctx context.Context) (func(), error) {
					return m.openTable(ctx, node, opts)
				})
			}).Show()
		}, nil
	})
}

func (m *MainWindow) handleRefresh() {
	data := m.browser.Selected()
	if data == nil {
		dialog.ShowInformation("Refresh", "Open a table first.", m.w)
		return
	}
	m.SetStatus("Refreshing " + data.name)
	done := showProgress(m.w, "Refreshing...")
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()
	err := m.browser.Refresh(ctx)
	done()
	if err != nil {
		m.SetStatus("Error: " + err.Error())
		dialog.ShowError(err, m.w)
	}
}

// toolbarMenu is a toolbar button that opens a menu below itself.
type toolbarMenu struct {
	button *widget.Button
}

func newToolbarMenu(icon fyne.Resource, w fyne.Window, items func() []*fyne.MenuItem) *toolbarMenu {
	t := &toolbarMenu{}
	t.button = widget.NewButtonWithIcon("", icon, func() {
		pos := fyne.CurrentApp().Driver().AbsolutePositionForObject(t.button)
		widget.ShowPopUpMenuAtPosition(fyne.NewMenu("", items()...), w.Canvas(),
			pos.AddXY(0, t.button.Size().Height))
	})
	t.button.Importance = widget.LowImportance
	return t
}

// ToolbarObject implements widget.ToolbarItem.
func (t *toolbarMenu) ToolbarObject() fyne.CanvasObject { return t.button }
