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

package deltasharing

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// NodeType is the kind of a catalog node.
type NodeType string

const (
	NodeShare  NodeType = "share"
	NodeSchema NodeType = "schema"
	NodeTable  NodeType = "table"
)

// Node is one share, schema or table of the catalog.
type Node struct {
	ID       string
	Type     NodeType
	Name     string
	Share    string
	Schema   string
	Table    Table    // set for table nodes
	Children []string // child node ids
}

// Catalog is the share/schema/table tree of a profile. It is safe for
// concurrent use.
type Catalog struct {
	mu      sync.RWMutex
	nodes   map[string]*Node
	rootIDs []string
	timeout time.Duration
}

// NewCatalog returns an empty catalog whose API calls are bounded by
// timeout.
func NewCatalog(timeout time.Duration) *Catalog {
	return &Catalog{
		nodes:   make(map[string]*Node),
		timeout: timeout,
	}
}

// NodeID builds the id of a node, for example
// "share:s:schema:default:table:trips".
func NodeID(t NodeType, share, schema, table string) string {
	switch t {
	case NodeShare:
		return fmt.Sprintf("share:%s", share)
	case NodeSchema:
		return fmt.Sprintf("share:%s:schema:%s", share, schema)
	case NodeTable:
		return fmt.Sprintf("share:%s:schema:%s:table:%s", share, schema, table)
	default:
		return ""
	}
}

// ParseNodeID extracts the components of a node id.
func ParseNodeID(id string) (t NodeType, share, schema, table string) {
	parts := strings.Split(id, ":")
	if len(parts) >= 2 && parts[0] == "share" {
		t, share = NodeShare, parts[1]
	}
	if len(parts) >= 4 && parts[2] == "schema" {
		t, schema = NodeSchema, parts[3]
	}
	if len(parts) >= 6 && parts[4] == "table" {
		t, table = NodeTable, parts[5]
	}
	return
}

// Load replaces the tree with the shares and tables visible to client.
// Shares without tables are kept as empty branches.
func (c *Catalog) Load(ctx context.Context, client Client) error {
	sctx, cancel := withTimeout(ctx, c.timeout)
	defer cancel()
	shares, err := client.ListShares(sctx)
	if err != nil {
		return err
	}

	tctx, cancel2 := withTimeout(ctx, c.timeout)
	defer cancel2()
	tables, err := client.ListAllTables(tctx)
	if err != nil {
		return err
	}

	nodes := make(map[string]*Node)
	var roots []string
	share := func(name string) *Node {
		id := NodeID(NodeShare, name, "", "")
		if n, ok := nodes[id]; ok {
			return n
		}
		n := &Node{ID: id, Type: NodeShare, Name: name, Share: name}
		nodes[id] = n
		roots = append(roots, id)
		return n
	}
	for _, s := range shares {
		share(s)
	}

	for _, t := range tables {
		sh := share(t.Share)

		schemaID := NodeID(NodeSchema, t.Share, t.Schema, "")
		schema, ok := nodes[schemaID]
		if !ok {
			schema = &Node{ID: schemaID, Type: NodeSchema, Name: t.Schema, Share: t.Share, Schema: t.Schema}
			nodes[schemaID] = schema
			sh.Children = append(sh.Children, schemaID)
		}

		tableID := NodeID(NodeTable, t.Share, t.Schema, t.Name)
		nodes[tableID] = &Node{ID: tableID, Type: NodeTable, Name: t.Name, Share: t.Share, Schema: t.Schema, Table: t}
		schema.Children = append(schema.Children, tableID)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.nodes = nodes
	c.rootIDs = roots
	return nil
}

// Children returns the child ids of a node; the empty id lists the shares.
func (c *Catalog) Children(id string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if id == "" {
		return c.rootIDs
	}
	if n, ok := c.nodes[id]; ok {
		return n.Children
	}
	return nil
}

// IsBranch reports whether a node can have children.
func (c *Catalog) IsBranch(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if id == "" {
		return true
	}
	n, ok := c.nodes[id]
	return ok && n.Type != NodeTable
}

// Node returns a node by id, or nil.
func (c *Catalog) Node(id string) *Node {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.nodes[id]
}

// Tables returns every table node in tree order.
func (c *Catalog) Tables() []*Node {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []*Node
	for _, s := range c.rootIDs {
		for _, sc := range c.nodes[s].Children {
			for _, t := range c.nodes[sc].Children {
				out = append(out, c.nodes[t])
			}
		}
	}
	return out
}
