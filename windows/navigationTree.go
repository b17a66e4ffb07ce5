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

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"dtb/adapters/deltasharing"
)

// NavigationTree shows the share/schema/table catalog of a profile.
// Tapping a table opens it; the secondary tap offers loading with options.
type NavigationTree struct {
	catalog *deltasharing.Catalog
	client  deltasharing.Client
	tree    *widget.Tree

	// OnOpen is called when a table is chosen. withOptions is set when the
	// user asked to pick columns, a predicate or a limit first.
	OnOpen func(node *deltasharing.Node, withOptions bool)

	// canvas shows the context menu; nil disables it.
	canvas fyne.Canvas
}

// NewNavigationTree creates an empty tree.
func NewNavigationTree(catalog *deltasharing.Catalog, c fyne.Canvas) *NavigationTree {
	nt := &NavigationTree{catalog: catalog, canvas: c}
	nt.tree = widget.NewTree(
		func(id widget.TreeNodeID) []widget.TreeNodeID { return nt.catalog.Children(id) },
		func(id widget.TreeNodeID) bool { return nt.catalog.IsBranch(id) },
		func(branch bool) fyne.CanvasObject {
			item := newTreeItem()
			item.onSecondary = nt.showContextMenu
			return item
		},
		func(id widget.TreeNodeID, branch bool, o fyne.CanvasObject) {
			nt.updateItem(id, o.(*treeItem))
		},
	)
	nt.tree.OnSelected = func(id widget.TreeNodeID) {
		if node := nt.catalog.Node(id); node != nil && node.Type == deltasharing.NodeTable {
			nt.open(node, false)
		}
	}
	return nt
}

// Widget returns the tree widget.
func (nt *NavigationTree) Widget() fyne.CanvasObject { return nt.tree }

// Client returns the client of the last load.
func (nt *NavigationTree) Client() deltasharing.Client { return nt.client }

// Load lists the catalog of client and redraws the tree.
func (nt *NavigationTree) Load(ctx context.Context, client deltasharing.Client) error {
	if err := nt.catalog.Load(ctx, client); err != nil {
		return err
	}
	nt.Loaded(client)
	return nil
}

// Loaded redraws the tree after its catalog was loaded for client. Load
// calls it; callers that load the catalog off the UI goroutine call it
// themselves.
func (nt *NavigationTree) Loaded(client deltasharing.Client) {
	nt.client = client
	nt.tree.UnselectAll()
	nt.tree.Refresh()
	for _, id := range nt.catalog.Children("") {
		nt.tree.OpenBranch(id)
	}
}

func (nt *NavigationTree) open(node *deltasharing.Node, withOptions bool) {
	if nt.OnOpen != nil {
		nt.OnOpen(node, withOptions)
	}
}

func (nt *NavigationTree) updateItem(id widget.TreeNodeID, item *treeItem) {
	item.id = id
	node := nt.catalog.Node(id)
	if node == nil {
		return
	}
	switch node.Type {
	case deltasharing.NodeShare:
		item.icon.SetResource(theme.FolderOpenIcon())
	case deltasharing.NodeSchema:
		item.icon.SetResource(theme.FolderIcon())
	case deltasharing.NodeTable:
		item.icon.SetResource(theme.DocumentIcon())
	}
	item.label.SetText(node.Name)
}

func (nt *NavigationTree) showContextMenu(id widget.TreeNodeID, e *fyne.PointEvent) {
	node := nt.catalog.Node(id)
	if node == nil || node.Type != deltasharing.NodeTable || nt.canvas == nil {
		return
	}
	menu := fyne.NewMenu("",
		fyne.NewMenuItem("Load with Options...", func() { nt.open(node, true) }),
		fyne.NewMenuItem("Load All Data", func() { nt.open(node, false) }),
	)
	widget.ShowPopUpMenuAtPosition(menu, nt.canvas, e.AbsolutePosition)
}

// treeItem is an icon and label that also reports secondary taps.
type treeItem struct {
	widget.BaseWidget
	id          widget.TreeNodeID
	icon        *widget.Icon
	label       *widget.Label
	onSecondary func(widget.TreeNodeID, *fyne.PointEvent)
}

func newTreeItem() *treeItem {
	item := &treeItem{icon: widget.NewIcon(theme.DocumentIcon()), label: widget.NewLabel("template")}
	item.ExtendBaseWidget(item)
	return item
}

func (t *treeItem) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(container.NewHBox(t.icon, t.label))
}

// TappedSecondary implements fyne.SecondaryTappable.
func (t *treeItem) TappedSecondary(e *fyne.PointEvent) {
	if t.onSecondary != nil && t.id != "" {
		t.onSecondary(t.id, e)
	}
}
