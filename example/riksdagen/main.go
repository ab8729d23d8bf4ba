package main

import (
	"context"
	"fmt"
	"log"

	paragrafen "github.com/eliassondavid/paragrafen-ai"
	"github.com/eliassondavid/paragrafen-ai/helper"
	"github.com/eliassondavid/paragrafen-ai/model"
)

// Fetches real statutes from the Riksdagen open data API, so it needs
// network access. Start with a handful of well-known laws instead of a
// full crawl; a complete SFS crawl is ~10 000 documents.
var statutes = []struct {
	dokID string
	name  string
}{
	{"sfs-2017-900", "Förvaltningslag (2017:900)"},
	{"sfs-1977-480", "Semesterlag (1977:480)"},
	{"sfs-1982-80", "Lag om anställningsskydd (1982:80)"},
}

func main() {
	teardown, dbPort, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer teardown(context.Background())

	dbConfig := &helper.DatabaseConfiguration{
		Host:     "localhost",
		Port:     dbPort,
		Database: "database",
		Username: "user",
		Password: "password",
		Schema:   "public",
		SSLMode:  "disable",
	}

	p, err := paragrafen.NewParagrafen(dbConfig, 768)
	if err != nil {
		log.Fatalf("Failed to create paragrafen instance: %v", err)
	}
	defer p.Close()

	fmt.Println("=== Loading embedding model ===")
	if err := p.UseDefaultEmbedder(); err != nil {
		log.Fatalf("Failed to load embedding model: %v", err)
	}

	// Fetch each statute from the live API
	fmt.Println("=== Fetching from data.riksdagen.se ===")
	fetcher := p.NewFetcher("")
	for _, statute := range statutes {
		doc, err := fetcher.FetchSingle(context.Background(), statute.dokID, "sfs")
		if err != nil {
			log.Fatalf("Failed to fetch %s: %v", statute.name, err)
		}
		fmt.Printf("Fetched %s (%s)\n", doc.Titel, doc.DokID)
	}

	fmt.Println("\n=== Indexing ===")
	runner, err := p.NewRunner(4)
	if err != nil {
		log.Fatalf("Failed to create runner: %v", err)
	}
	stats, err := runner.Run(context.Background(), model.SourceTypeSfs)
	if err != nil {
		log.Fatalf("Failed to index: %v", err)
	}
	fmt.Printf("Indexed %d chunks from %d documents (%d failed)\n",
		stats.ChunksIndexed, stats.Documents, stats.Failed)

	// Semantic search across the indexed statutes
	query := "Hur många semesterdagar har en anställd rätt till?"
	fmt.Printf("\n=== Searching ===\n%s\n", query)

	embeddings, err := p.Embed([]string{query})
	if err != nil {
		log.Fatalf("Failed to embed query: %v", err)
	}

	config := model.DefaultQueryConfig()
	config.TopK = 5
	results, err := p.Engine.VectorRetrieve(context.Background(), embeddings[0], &config)
	if err != nil {
		log.Fatalf("Failed to search: %v", err)
	}

	for i, result := range results {
		fmt.Printf("\n--- Result %d ---\n", i+1)
		fmt.Printf("Citation: SFS %s", result.SfsNr)
		if result.Paragraf != "" {
			fmt.Printf(" %s §", result.Paragraf)
		}
		fmt.Println()
		fmt.Printf("Text:     %.160s...\n", result.Text)
	}
}
