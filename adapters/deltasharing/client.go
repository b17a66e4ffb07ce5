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

// Package deltasharing loads tables published over the Delta Sharing
// protocol into datatables, and lists the share, schema and table catalog
// of a profile.
package deltasharing

import (
	"context"
	"fmt"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	delta_sharing "github.com/magpierre/go_delta_sharing_client"
)

// Table identifies a shared table.
type Table = delta_sharing.Table

// DefaultTimeout bounds each Delta Sharing API call.
const DefaultTimeout = 60 * time.Second

// Client is the part of a Delta Sharing client used here.
type Client interface {
	// ListShares returns the share names of the profile.
	ListShares(ctx context.Context) ([]string, error)

	// ListAllTables returns every table of every share.
	ListAllTables(ctx context.Context) ([]Table, error)

	// ListFiles returns the ids of the data files of a table.
	ListFiles(ctx context.Context, table Table) ([]string, error)

	// LoadFile reads one data file as an arrow table.
	LoadFile(ctx context.Context, table Table, fileID string) (arrow.Table, error)
}

// sharingClient adapts the V2 protocol client.
type sharingClient struct {
	client delta_sharing.SharingClientV2
}

// NewClient creates a client from the JSON contents of a profile file.
func NewClient(profile string) (Client, error) {
	client, err := delta_sharing.NewSharingClientV2FromString(profile)
	if err != nil {
		return nil, fmt.Errorf("failed to create Delta Sharing client: %w", err)
	}
	return &sharingClient{client: client}, nil
}

func (c *sharingClient) ListShares(ctx context.Context) ([]string, error) {
	shares, _, err := c.client.ListShares(ctx, 0, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list shares: %w", err)
	}
	names := make([]string, len(shares))
	for i, s := range shares {
		names[i] = s.Name
	}
	return names, nil
}

func (c *sharingClient) ListAllTables(ctx context.Context) ([]Table, error) {
	// maxConcurrency 0 lets the client pick its default.
	tables, _, err := c.client.ListAllTables_V2(ctx, 0, "", 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list all tables: %w", err)
	}
	return tables, nil
}

func (c *sharingClient) ListFiles(ctx context.Context, table Table) ([]string, error) {
	resp, err := c.client.ListFilesInTable(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	ids := make([]string, len(resp.AddFiles))
	for i, f := range resp.AddFiles {
		ids[i] = f.Id
	}
	return ids, nil
}

func (c *sharingClient) LoadFile(ctx context.Context, table Table, fileID string) (arrow.Table, error) {
	return delta_sharing.LoadArrowTable(ctx, c.client, table, fileID)
}

// withTimeout derives a context for one API call. A non-positive timeout
// uses DefaultTimeout.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return context.WithTimeout(ctx, timeout)
}
