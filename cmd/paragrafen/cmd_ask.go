package main

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eliassondavid/paragrafen-ai/rag"
)

func runAsk(cmd *cobra.Command, args []string) {
	question := strings.Join(args, " ")

	llm, err := rag.NewAnthropicLLM(llmModel, 0)
	if err != nil {
		log.Fatalf("Error creating LLM client: %v", err)
	}

	p := mustInitWithEmbedder()
	defer p.Close()

	pipeline, err := p.NewQueryPipeline(llm, strategyName)
	if err != nil {
		log.Fatalf("Error creating query pipeline: %v", err)
	}

	result, err := pipeline.Query(context.Background(), question, nil)
	if err != nil {
		log.Fatalf("Error answering question: %v", err)
	}

	fmt.Println(result.Answer)
	if result.Blocked || result.LowConfidence {
		return
	}

	fmt.Println()
	fmt.Printf("Confidence: %.2f (%d chunks)\n", result.Confidence.Score, result.ChunksUsed)
	for i, source := range result.Sources {
		fmt.Printf("%d. %s\n", i+1, source)
	}
}
