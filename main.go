// Package main is the entry point for the tracefix CLI.
package main

import "tracefix.dev/pkg/tracefix/cmd"

func main() {
	cmd.Execute()
}
