// Package main is the ragd entry point.
package main

import "github.com/hyperjump/ragd/internal/cli"

var version = "dev"

func main() {
	cli.SetVersion(version)
	cli.Execute()
}
