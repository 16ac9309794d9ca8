// Package main is the entry point for the billingengine CLI.
package main

import (
	"os"

	"github.com/smallbiznis/fulfillment-billing/cmd/billingengine/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
