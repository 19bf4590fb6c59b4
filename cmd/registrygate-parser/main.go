// Command registrygate-parser evaluates a library registry pull request and
// prints the verdict as a single JSON line on stdout
package main

import (
	"context"
	"os"
)

func main() {
	os.Exit(execute(context.Background(), os.Args[1:], os.Stdout))
}
