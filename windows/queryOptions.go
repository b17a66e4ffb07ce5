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
	"errors"
	"fmt"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/apache/arrow-go/v18/arrow"

	"dtb/adapters/deltasharing"
)

// QueryOptionsDialog asks which columns, predicate and row limit to use
// when loading a shared table.
type QueryOptionsDialog struct {
	dialog         dialog.Dialog
	window         fyne.Window
	columns        []string
	columnChecks   map[string]*widget.Check
	predicateEntry *widget.Entry
	limitEntry     *widget.Entry
	callback       func(*deltasharing.QueryOptions)
}

// NewQueryOptionsDialog builds the dialog for a table schema.
func NewQueryOptionsDialog(w fyne.Window, schema *arrow.Schema, callback func(*deltasharing.QueryOptions)) *QueryOptionsDialog {
	qod := &QueryOptionsDialog{
		window:       w,
		columnChecks: make(map[string]*widget.Check),
		callback:     callback,
	}
	qod.createDialog(schema)
	return qod
}

func (qod *QueryOptionsDialog) createDialog(schema *arrow.Schema) {
	columnSelectLabel := widget.NewLabel("Select Columns:")
	columnSelectLabel.TextStyle = fyne.TextStyle{Bold: true}

	checks := container.NewVBox()
	if schema != nil {
		for _, field := range schema.Fields() {
			check := widget.NewCheck(fmt.Sprintf("%s (%s)", field.Name, field.Type), nil)
			check.SetChecked(true)
			qod.columns = append(qod.columns, field.Name)
			qod.columnChecks[field.Name] = check
			checks.Add(check)
		}
	}
	selectAll := widget.NewButton("Select All", func() { qod.setAll(true) })
	deselectAll := widget.NewButton("Deselect All", func() { qod.setAll(false) })

	columnScroll := container.NewVScroll(checks)
	columnScroll.SetMinSize(fyne.NewSize(400, 200))

	predicateLabel := widget.NewLabel("Filter Predicate:")
	predicateLabel.TextStyle = fyne.TextStyle{Bold: true}
	qod.predicateEntry = widget.NewMultiLineEntry()
	qod.predicateEntry.SetPlaceHolder("e.g., age > 25 AND status = active")
	qod.predicateEntry.SetMinRowsVisible(3)
	predicateHelp := widget.NewLabel("Leave empty for no filtering. Compare columns with = != > < >= <= and join with AND / OR.")
	predicateHelp.TextStyle = fyne.TextStyle{Italic: true}
	predicateHelp.Wrapping = fyne.TextWrapWord

	limitLabel := widget.NewLabel("Row Limit:")
	limitLabel.TextStyle = fyne.TextStyle{Bold: true}
	qod.limitEntry = widget.NewEntry()
	qod.limitEntry.SetText("1000")
	qod.limitEntry.SetPlaceHolder("Leave empty for all rows")

	content := container.NewVBox(
		columnSelectLabel,
		container.NewHBox(selectAll, deselectAll),
		columnScroll,
		widget.NewSeparator(),
		predicateLabel,
		qod.predicateEntry,
		predicateHelp,
		widget.NewSeparator(),
		limitLabel,
		qod.limitEntry,
	)

	qod.dialog = dialog.NewCustomConfirm("Query Options", "Load Data", "Cancel", content,
		func(confirmed bool) {
			if !confirmed {
				return
			}
			opts, err := qod.Options()
			if err != nil {
				dialog.ShowError(err, qod.window)
				return
			}
			if qod.callback != nil {
				qod.callback(opts)
			}
		}, qod.window)
	qod.dialog.Resize(fyne.NewSize(500, 600))
}

func (qod *QueryOptionsDialog) setAll(on bool) {
	for _, check := range qod.columnChecks {
		check.SetChecked(on)
	}
}

// Options returns the options currently entered. Columns keep schema
// order.
func (qod *QueryOptionsDialog) Options() (*deltasharing.QueryOptions, error) {
	var selected []string
	for _, name := range qod.columns {
		if qod.columnChecks[name].Checked {
			selected = append(selected, name)
		}
	}
	if len(qod.columns) > 0 && len(selected) == 0 {
		return nil, errors.New("please select at least one column")
	}
	// Every column selected is the same as no selection.
	if len(selected) == len(qod.columns) {
		selected = nil
	}
	return deltasharing.ParseQueryOptions(strings.Join(selected, ","), qod.predicateEntry.Text, qod.limitEntry.Text)
}

// Show displays the dialog.
func (qod *QueryOptionsDialog) Show() {
	qod.dialog.Show()
}
