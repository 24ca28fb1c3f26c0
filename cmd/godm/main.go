// Command godm inspects model schemas, builds query criteria and runs queries
// against an in-memory store.
package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(os.Stdout).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
