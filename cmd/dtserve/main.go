// Command dtserve serves one table over the server-side processing protocol.
//
//	dtserve --config table.yaml --data rows.csv --addr :8080
//
// The data file may be CSV, JSON or Parquet, optionally gzip or zstd
// compressed, or a Delta Sharing profile together with --table.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
