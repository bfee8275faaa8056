// Package main provides the Tempo framework CLI.
package main

import (
	"fmt"
	"os"

	"github.com/tempo-ml/tempo/internal/config"
)

const version = "v0.1.0-dev"

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "version":
			fmt.Printf("Tempo ML Framework %s\n", version)
			return
		case "check":
			if len(os.Args) < 3 {
				fmt.Fprintln(os.Stderr, "usage: tempo check <config.yaml>")
				os.Exit(2)
			}
			cfg, err := config.Load(os.Args[2])
			if err != nil {
				fmt.Fprintf(os.Stderr, "tempo: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("config ok: cell=%s units=%d seq_len=%d stateful=%v kernel=%s\n",
				cfg.Model.Cell, cfg.Model.Units, cfg.Model.SeqLen, cfg.Model.Stateful, cfg.Model.Kernel)
			return
		}
	}

	fmt.Println("Tempo - Recurrent Sequence Processing for Go")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  version           Show version")
	fmt.Println("  check <file>      Validate a run configuration")
	fmt.Println("")
	fmt.Println("Training entry points live under examples/")
}
