// Package main is the entry point for the a11yscan CLI.
package main

import "a11yscan.dev/pkg/a11yscan/cmd"

func main() {
	cmd.Execute()
}
