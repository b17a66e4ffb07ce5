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

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"dtb/datatable"
)

const defaultRenderScript = `// data is the cell value, mode is "display", "filter", "sort" or "type".
if mode == "display" {
	return fmt.Sprint(data)
}
return data`

// ScriptEditor edits the render script of a column of the selected table.
// Scripts are Go function bodies run by the yaegi interpreter.
type ScriptEditor struct {
	w       fyne.Window
	browser *DataBrowser

	column  *widget.Select
	code    *widget.Entry
	preview *SyntaxPreview
	output  *widget.Label
	titles  []string
}

// NewScriptEditor creates an editor working on the browser's selected tab.
func NewScriptEditor(w fyne.Window, browser *DataBrowser) *ScriptEditor {
	se := &ScriptEditor{w: w, browser: browser}
	se.createUI()
	return se
}

func (se *ScriptEditor) createUI() {
	se.preview = NewSyntaxPreview()
	se.code = widget.NewMultiLineEntry()
	se.code.Wrapping = fyne.TextWrapOff
	se.code.TextStyle = fyne.TextStyle{Monospace: true}
	se.code.SetText(defaultRenderScript)
	se.preview.SetText(defaultRenderScript)
	se.code.OnChanged = se.preview.SetText

	se.column = widget.NewSelect(nil, nil)
	se.output = widget.NewLabel("")
	se.output.Wrapping = fyne.TextWrapWord
}

// Apply compiles body and sets it as the render function of col in the
// selected table.
func (se *ScriptEditor) Apply(col int, body string) error {
	data := se.browser.Selected()
	if data == nil {
		return ErrNoTable
	}
	fn, err := datatable.CompileRenderScript(body)
	if err != nil {
		return err
	}
	if err := data.view.Table().SetRender(col, fn); err != nil {
		return err
	}
	data.view.Redraw()
	return nil
}

// Reset removes the render function of col in the selected table.
func (se *ScriptEditor) Reset(col int) error {
	data := se.browser.Selected()
	if data == nil {
		return ErrNoTable
	}
	if err := data.view.Table().SetRender(col, nil); err != nil {
		return err
	}
	data.view.Redraw()
	return nil
}

func (se *ScriptEditor) selectedColumn() int {
	for i, t := range se.titles {
		if t == se.column.Selected {
			return i
		}
	}
	return -1
}

func (se *ScriptEditor) run(action string, fn func(col int) error) {
	col := se.selectedColumn()
	if col < 0 {
		se.output.SetText("Select a column first.")
		return
	}
	if err := fn(col); err != nil {
		se.output.SetText(fmt.Sprintf("%s failed: %v", action, err))
		return
	}
	se.output.SetText(fmt.Sprintf("%s: %s", action, se.titles[col]))
}

// Show opens the editor for the selected table.
func (se *ScriptEditor) Show() {
	data := se.browser.Selected()
	if data == nil {
		dialog.ShowInformation("Render Script", "Open a table first.", se.w)
		return
	}
	se.titles = se.titles[:0]
	for _, c := range data.view.Table().Columns() {
		se.titles = append(se.titles, c.Title)
	}
	se.column.Options = se.titles
	se.column.ClearSelected()
	se.output.SetText("")

	apply := widget.NewButtonWithIcon("Apply", theme.MediaPlayIcon(), func() {
		se.run("Applied", func(col int) error { return se.Apply(col, se.code.Text) })
	})
	reset := widget.NewButtonWithIcon("Reset", theme.ContentUndoIcon(), func() {
		se.run("Reset", se.Reset)
	})

	editors := container.NewVSplit(
		container.NewBorder(widget.NewLabel("Script:"), nil, nil, nil, container.NewScroll(se.code)),
		container.NewBorder(widget.NewLabel("Preview:"), nil, nil, nil, container.NewScroll(se.preview)),
	)
	editors.SetOffset(0.5)

	content := container.NewBorder(
		container.NewBorder(nil, nil, widget.NewLabel("Column:"), container.NewHBox(apply, reset), se.column),
		se.output, nil, nil, editors,
	)
	d := dialog.NewCustom("Render Script: "+data.name, "Close", content, se.w)
	d.Resize(fyne.NewSize(700, 500))
	d.Show()
}
