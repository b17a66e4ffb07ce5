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
	"fmt"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"dtb/datatable"
)

const minColumnWidth = 100

// TableView shows one datatable: a search box, an expression filter, the
// current page with sortable headers, the pager and the info line.
type TableView struct {
	widget.BaseWidget

	table   *datatable.Table
	view    datatable.View
	visible []int
	cells   [][]string
	window  fyne.Window

	search  *widget.Entry
	query   *widget.Entry
	grid    *widget.Table
	empty   *widget.Label
	info    *widget.Label
	page    *widget.Label
	length  *widget.Select
	first   *widget.Button
	prev    *widget.Button
	next    *widget.Button
	last    *widget.Button
	content fyne.CanvasObject

	// OnChanged is called after every redraw.
	OnChanged func(*TableView)
}

// NewTableView builds the widget and draws the first page.
func NewTableView(tbl *datatable.Table, w fyne.Window) *TableView {
	v := &TableView{table: tbl, window: w}
	v.ExtendBaseWidget(v)
	v.build()
	v.Redraw()
	return v
}

func (v *TableView) build() {
	lang := v.table.Settings().Language

	v.search = widget.NewEntry()
	v.search.SetPlaceHolder(strings.TrimSuffix(lang.Search, ":"))
	v.search.SetText(v.table.Settings().Search.Term)
	v.search.OnChanged = func(s string) {
		v.table.Search(s)
		v.Redraw()
	}

	v.query = widget.NewEntry()
	v.query.SetPlaceHolder("Filter, e.g. age > 25 AND city = Oslo")
	v.query.OnSubmitted = func(s string) { v.ApplyQuery(s) }

	v.grid = widget.NewTable(
		func() (int, int) { return len(v.cells), len(v.visible) },
		func() fyne.CanvasObject {
			l := widget.NewLabel("template")
			l.Truncation = fyne.TextTruncateEllipsis
			return l
		},
		func(id widget.TableCellID, o fyne.CanvasObject) {
			if id.Row < len(v.cells) && id.Col < len(v.cells[id.Row]) {
				o.(*widget.Label).SetText(v.cells[id.Row][id.Col])
			}
		},
	)
	v.grid.ShowHeaderRow = true
	v.grid.CreateHeader = func() fyne.CanvasObject {
		return widget.NewButton("", nil)
	}
	v.grid.UpdateHeader = func(id widget.TableCellID, o fyne.CanvasObject) {
		b := o.(*widget.Button)
		if id.Col < 0 || id.Col >= len(v.visible) {
			b.SetText("")
			b.OnTapped = nil
			return
		}
		col := v.visible[id.Col]
		b.SetText(v.HeaderText(col))
		b.OnTapped = func() { v.SortColumn(col, shiftPressed()) }
	}

	v.empty = widget.NewLabel("")
	v.empty.Alignment = fyne.TextAlignCenter
	v.empty.Hide()

	v.info = widget.NewLabel("")
	v.page = widget.NewLabel("")

	v.first = widget.NewButtonWithIcon(lang.Paginate.First, theme.MediaSkipPreviousIcon(), func() { v.Page(datatable.PageFirst) })
	v.prev = widget.NewButtonWithIcon(lang.Paginate.Previous, theme.NavigateBackIcon(), func() { v.Page(datatable.PagePrevious) })
	v.next = widget.NewButtonWithIcon(lang.Paginate.Next, theme.NavigateNextIcon(), func() { v.Page(datatable.PageNext) })
	v.last = widget.NewButtonWithIcon(lang.Paginate.Last, theme.MediaSkipNextIcon(), func() { v.Page(datatable.PageLast) })

	v.length = widget.NewSelect(lengthOptions(v.table.Config().LengthMenu), func(s string) {
		n := -1
		if s != "All" {
			n, _ = strconv.Atoi(s)
		}
		v.table.SetPageLength(n)
		v.Redraw()
	})
	v.length.SetSelected(lengthLabel(v.table.Settings().Length))

	columns := widget.NewButtonWithIcon("Columns", theme.ListIcon(), v.showColumnSelector)

	menu := strings.SplitN(lang.LengthMenu, "_MENU_", 2)
	lengthBox := container.NewHBox()
	if len(menu) == 2 {
		lengthBox.Add(widget.NewLabel(strings.TrimSpace(menu[0])))
		lengthBox.Add(v.length)
		lengthBox.Add(widget.NewLabel(strings.TrimSpace(menu[1])))
	} else {
		lengthBox.Add(v.length)
	}

	top := container.NewVBox(
		container.NewBorder(nil, nil, lengthBox, columns, v.search),
		v.query,
	)
	bottom := container.NewBorder(nil, nil, v.info,
		container.NewHBox(v.first, v.prev, v.page, v.next, v.last))
	v.content = container.NewBorder(top, bottom, nil, nil, container.NewStack(v.grid, v.empty))
}

// CreateRenderer implements fyne.Widget.
func (v *TableView) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(v.content)
}

// Table returns the datatable shown.
func (v *TableView) Table() *datatable.Table { return v.table }

// View returns the result of the last draw.
func (v *TableView) View() datatable.View { return v.view }

// Cells returns the strings of the current page, visible columns only.
func (v *TableView) Cells() [][]string { return v.cells }

// InfoText returns the info line.
func (v *TableView) InfoText() string { return v.info.Text }

// Redraw runs the pipeline and refreshes every part of the widget.
func (v *TableView) Redraw() {
	v.view = v.table.Draw()
	v.visible = v.table.VisibleColumns()
	v.cells = v.table.Cells(v.view)

	for i, col := range v.visible {
		v.grid.SetColumnWidth(i, columnWidth(v.table.Columns()[col].Title))
	}
	v.grid.Refresh()

	if len(v.view.Page) == 0 {
		v.empty.SetText(v.table.EmptyMessage(v.view))
		v.empty.Show()
	} else {
		v.empty.Hide()
	}

	v.info.SetText(v.table.Info(v.view))
	v.page.SetText(fmt.Sprintf("%d / %d", v.view.PageIndex()+1, v.view.PageCount()))
	paged := v.view.Length != datatable.ShowAll
	atStart := v.view.Start == 0
	atEnd := v.view.PageIndex()+1 >= v.view.PageCount()
	setEnabled(v.first, paged && !atStart)
	setEnabled(v.prev, paged && !atStart)
	setEnabled(v.next, paged && !atEnd)
	setEnabled(v.last, paged && !atEnd)

	if v.OnChanged != nil {
		v.OnChanged(v)
	}
}

// HeaderText returns the title of a column with its sort marker.
func (v *TableView) HeaderText(col int) string {
	c := v.table.Columns()[col]
	order := v.table.Settings().Order
	i := order.IndexOf(col)
	if i < 0 {
		return c.Title
	}
	arrow := "↑"
	if order[i].Direction == datatable.SortDescending {
		arrow = "↓"
	}
	if len(order) > 1 {
		return fmt.Sprintf("%s %s%d", c.Title, arrow, i+1)
	}
	return c.Title + " " + arrow
}

// SortColumn handles a header activation. With multi the column is added
// to the existing sort.
func (v *TableView) SortColumn(col int, multi bool) {
	if err := v.table.ToggleSort(col, multi); err != nil {
		return
	}
	v.Redraw()
}

// Page moves the pager.
func (v *TableView) Page(action string) {
	if err := v.table.Page(action); err != nil {
		return
	}
	v.Redraw()
}

// ApplyQuery sets the expression filter. An invalid expression is shown
// and leaves the previous one in place.
func (v *TableView) ApplyQuery(q string) error {
	if err := v.table.SetQuery(strings.TrimSpace(q)); err != nil {
		if v.window != nil {
			dialog.ShowError(err, v.window)
		}
		return err
	}
	v.Redraw()
	return nil
}

// SetColumnVisible shows or hides a column.
func (v *TableView) SetColumnVisible(col int, visible bool) {
	if err := v.table.SetVisible(col, visible); err != nil {
		return
	}
	v.Redraw()
}

// Status returns the status bar text for the table, for example
// "Table people (3 columns x 120 rows) | Sorted: age ↑".
func (v *TableView) Status(name string) string {
	total := len(v.table.Columns())
	rows := v.view.Total
	var text string
	if len(v.view.Filtered) != rows || len(v.visible) != total {
		text = fmt.Sprintf("Table %s (showing %d/%d columns x %d/%d rows)",
			name, len(v.visible), total, len(v.view.Filtered), rows)
	} else {
		text = fmt.Sprintf("Table %s (%d columns x %d rows)", name, total, rows)
	}

	var sorted []string
	for _, k := range v.table.Settings().Order {
		if k.Column < total {
			sorted = append(sorted, strings.TrimSpace(v.HeaderText(k.Column)))
		}
	}
	if len(sorted) > 0 {
		text += " | Sorted: " + strings.Join(sorted, ", ")
	}
	return text
}

func (v *TableView) showColumnSelector() {
	if v.window == nil {
		return
	}
	box := container.NewVBox()
	for i, c := range v.table.Columns() {
		check := widget.NewCheck(c.Title, func(on bool) { v.SetColumnVisible(i, on) })
		check.SetChecked(c.Visible)
		box.Add(check)
	}
	scroll := container.NewVScroll(box)
	scroll.SetMinSize(fyne.NewSize(250, 300))
	dialog.ShowCustom("Columns", "Close", scroll, v.window)
}

func setEnabled(b *widget.Button, on bool) {
	if on {
		b.Enable()
	} else {
		b.Disable()
	}
}

func columnWidth(title string) float32 {
	w := fyne.MeasureText(title+" ↑9", theme.TextSize(), fyne.TextStyle{}).Width + 2*theme.Padding()
	return max(w, minColumnWidth)
}

func lengthOptions(menu []int) []string {
	if len(menu) == 0 {
		menu = []int{10, 25, 50, 100}
	}
	out := make([]string, len(menu))
	for i, n := range menu {
		out[i] = lengthLabel(n)
	}
	return out
}

func lengthLabel(n int) string {
	if n <= 0 {
		return "All"
	}
	return strconv.Itoa(n)
}

// shiftPressed reports whether shift is held, for multi-column sorting.
func shiftPressed() bool {
	app := fyne.CurrentApp()
	if app == nil {
		return false
	}
	if d, ok := app.Driver().(desktop.Driver); ok {
		return d.CurrentKeyModifiers()&fyne.KeyModifierShift != 0
	}
	return false
}
