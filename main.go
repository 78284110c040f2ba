// Package main provides the entrypoint for storefront-api.
package main

import (
	"os"

	"github.com/markket/storefront-api/cmd"
)

func main() {
	if err := cmd.New().Execute(); err != nil {
		os.Exit(1)
	}
}
