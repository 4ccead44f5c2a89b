package main

import (
	"fmt"
	"os"

	"github.com/lunaml/luna16/cmd/luna16/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
