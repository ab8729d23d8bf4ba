package main

import (
	"context"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/eliassondavid/paragrafen-ai/qa"
	"github.com/eliassondavid/paragrafen-ai/rag"
)

func runQA(cmd *cobra.Command, args []string) {
	cases, err := qa.LoadGoldStandard(goldPath)
	if err != nil {
		log.Fatalf("Error loading golden standard: %v", err)
	}

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

	runner, err := qa.NewRunner(cases, pipeline, nil)
	if err != nil {
		log.Fatalf("Error creating test runner: %v", err)
	}

	report, err := runner.RunAll(context.Background())
	if err != nil {
		log.Fatalf("Error running test suite: %v", err)
	}

	qa.WriteReport(os.Stdout, report)
	if report.Failed > 0 {
		os.Exit(1)
	}
}
