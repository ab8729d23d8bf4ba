package main

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/eliassondavid/paragrafen-ai/model"
)

func runIndex(cmd *cobra.Command, args []string) {
	var sourceType model.SourceType
	switch args[0] {
	case "sfs":
		sourceType = model.SourceTypeSfs
	case "forarbete":
		sourceType = model.SourceTypeForarbete
	default:
		log.Fatalf("Unknown source type %q, expected sfs or forarbete", args[0])
	}

	p := mustInitWithEmbedder()
	defer p.Close()

	runner, err := p.NewRunner(concurrency)
	if err != nil {
		log.Fatalf("Error creating runner: %v", err)
	}

	stats, err := runner.Run(context.Background(), sourceType)
	if err != nil {
		log.Fatalf("Error indexing %s: %v", args[0], err)
	}

	fmt.Printf("Indexing of %q done.\n", args[0])
	fmt.Printf("  Documents:      %d (%d failed)\n", stats.Documents, stats.Failed)
	fmt.Printf("  Chunks indexed: %d\n", stats.ChunksIndexed)
	fmt.Printf("  Chunks skipped: %d\n", stats.ChunksSkipped)
	fmt.Printf("  Chunks failed:  %d\n", stats.ChunksFailed)
	fmt.Printf("  Rejected:       %d\n", stats.Rejected)
	for _, detail := range stats.Errors {
		fmt.Printf("  error: %s\n", detail)
	}
}
