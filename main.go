package main

import (
	"fmt"
	"os"

	"github.com/chazu/urdfkit/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "urdfkit:", err)
		os.Exit(1)
	}
}
