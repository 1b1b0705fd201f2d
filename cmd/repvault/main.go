// main holds the entry logic for the repvault CLI.
package main

import (
	"fmt"
	"os"

	"github.com/repvault/repvault/cmd"
)

// main is the entry point for the repvault CLI.
func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Println("❌", err)
		os.Exit(1)
	}
}
