// Package main is the entry point of the cvelookup service.
package main

import "github.com/ortelius/pdvd-cvelookup/cmd"

func main() {
	cmd.Execute()
}
