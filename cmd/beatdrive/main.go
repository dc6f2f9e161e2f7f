package main

import (
	"flag"
	"fmt"
	"os"

	"beatdrive/internal/game"
)

func main() {
	analysis := flag.String("analysis", "", "path to a track analysis JSON (beats/segments/metadata)")
	seed := flag.Uint64("seed", 0, "deterministic seed (0 = BEATDRIVE_SEED env or clock)")
	flag.Parse()

	if err := game.Run(game.RunOptions{AnalysisPath: *analysis, Seed: *seed}); err != nil {
		fmt.Fprintf(os.Stderr, "beatdrive: %v\n", err)
		os.Exit(1)
	}
}
