// Package main provides the entrypoint for wsgi-lambda.
package main

import (
	"os"

	"github.com/isometry/wsgi-lambda/cmd"
)

func main() {
	if err := cmd.New().Execute(); err != nil {
		os.Exit(1)
	}
}
