package main

import (
	"context"
	"fmt"
	"log"

	paragrafen "github.com/eliassondavid/paragrafen-ai"
	"github.com/eliassondavid/paragrafen-ai/helper"
	"github.com/eliassondavid/paragrafen-ai/model"
)

// A shortened extract of förvaltningslagen in the markup shape the
// Riksdagen API returns.
const sampleHTML = `<div>
<p>1 § Denna lag gäller för handläggning av ärenden hos förvaltningsmyndigheterna
samt handläggning av förvaltningsärenden hos domstolarna. Bestämmelserna i 2-4 och
9-18 §§ gäller också i annan förvaltningsverksamhet hos förvaltningsmyndigheter
och domstolar. I lagen finns grundläggande bestämmelser om hur förvaltningsärenden
ska handläggas och hur myndigheterna ska vara tillgängliga för enskilda.</p>
<p>5 § En myndighet får endast vidta åtgärder som har stöd i rättsordningen.
I sin verksamhet ska myndigheten vara saklig och opartisk. Myndigheten får ingripa
i ett enskilt intresse endast om åtgärden kan antas leda till det avsedda resultatet.
Åtgärden får aldrig vara mer långtgående än vad som behövs och får vidtas endast om
det avsedda resultatet står i rimligt förhållande till de olägenheter som kan antas
uppstå för den som åtgärden riktas mot.</p>
<p>9 § Ett ärende ska handläggas så enkelt, snabbt och kostnadseffektivt som möjligt
utan att rättssäkerheten eftersätts. Handläggningen ska vara skriftlig. Myndigheten
får dock besluta att handläggningen helt eller delvis ska vara muntlig, om det inte
är olämpligt. I 10 § finns bestämmelser om partsinsyn och i 23-27 §§ bestämmelser
om hur ärenden bereds hos myndigheten och om samverkan mellan myndigheter.</p>
</div>`

// toyEmbedder stands in for the real model so the example runs offline.
func toyEmbedder(dimension int) func(texts []string) ([][]float32, error) {
	return func(texts []string) ([][]float32, error) {
		embeddings := make([][]float32, len(texts))
		for i, text := range texts {
			embedding := make([]float32, dimension)
			for j, r := range text {
				embedding[j%dimension] += float32(r%23) / 100.0
			}
			embeddings[i] = embedding
		}
		return embeddings, nil
	}
}

func main() {
	// Start a test PostgreSQL container
	teardown, dbPort, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer teardown(context.Background())

	// Create database configuration using the container port
	dbConfig := &helper.DatabaseConfiguration{
		Host:     "localhost",
		Port:     dbPort,
		Database: "database",
		Username: "user",
		Password: "password",
		Schema:   "public",
		SSLMode:  "disable",
	}

	p, err := paragrafen.NewParagrafen(dbConfig, 8)
	if err != nil {
		log.Fatalf("Failed to create paragrafen instance: %v", err)
	}
	defer p.Close()
	p.SetEmbedder(toyEmbedder(8))

	// Store the raw statute the way the fetcher would
	doc := &model.RawDocument{
		DokID:       "sfs-2017-900",
		SfsNr:       "2017:900",
		Titel:       "Förvaltningslag (2017:900)",
		Organ:       "Justitiedepartementet",
		Systemdatum: "2024-01-10 12:00:00",
		HTML:        sampleHTML,
	}
	if err := p.Documents.InsertDocument(doc, model.SourceTypeSfs); err != nil {
		log.Fatalf("Failed to insert document: %v", err)
	}

	// Parse, chunk, normalize and index everything stored
	fmt.Println("Indexing stored statutes...")
	runner, err := p.NewRunner(2)
	if err != nil {
		log.Fatalf("Failed to create runner: %v", err)
	}
	stats, err := runner.Run(context.Background(), model.SourceTypeSfs)
	if err != nil {
		log.Fatalf("Failed to index: %v", err)
	}
	fmt.Printf("Indexed %d chunks from %d documents\n", stats.ChunksIndexed, stats.Documents)

	// Vector search over the indexed chunks
	query := "Hur snabbt måste en myndighet handlägga mitt ärende?"
	fmt.Printf("\nSearching: %s\n", query)

	embeddings, err := p.Embed([]string{query})
	if err != nil {
		log.Fatalf("Failed to embed query: %v", err)
	}

	config := model.DefaultQueryConfig()
	config.TopK = 3
	results, err := p.Engine.VectorRetrieve(context.Background(), embeddings[0], &config)
	if err != nil {
		log.Fatalf("Failed to search: %v", err)
	}

	fmt.Printf("\nFound %d results:\n", len(results))
	for i, result := range results {
		fmt.Printf("\n--- Result %d ---\n", i+1)
		fmt.Printf("Namespace: %s\n", result.Namespace)
		if result.Distance != nil {
			fmt.Printf("Distance:  %.4f\n", *result.Distance)
		}
		fmt.Printf("Text:      %.120s...\n", result.Text)
	}

	fmt.Println("\nBasic example completed successfully!")
}
