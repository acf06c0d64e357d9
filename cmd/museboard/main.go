// Package main provides the entry point for MuseBoard.
//
// MuseBoard is a terminal brainstorming board: ideas are nodes you click,
// drag and connect, and an idea backend can expand a topic, refine,
// translate and summarize them.
//
// Usage:
//
//	museboard [--config-dir dir] [--provider mock|ollama]
//	museboard generate <prompt> [--refine-all] [--translate] [--summarize]
package main

import (
	"os"

	"github.com/museboard/museboard/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
