package main

import (
	"context"
	"fmt"
	"log"

	paragrafen "github.com/eliassondavid/paragrafen-ai"
	"github.com/eliassondavid/paragrafen-ai/helper"
	"github.com/eliassondavid/paragrafen-ai/model"
	"github.com/eliassondavid/paragrafen-ai/rag"
)

// Extracts of a statute and its preparatory work, in the markup shapes the
// Riksdagen API returns. Mixing both source types lets the confidence gate
// and the authority reranker do real work.
const statuteHTML = `<div>
<p>9 § Ett ärende ska handläggas så enkelt, snabbt och kostnadseffektivt som möjligt
utan att rättssäkerheten eftersätts. Handläggningen ska vara skriftlig. Myndigheten
får dock besluta att handläggningen helt eller delvis ska vara muntlig, om det inte
är olämpligt. Om ett ärende som har inletts av en enskild part inte har avgjorts i
första instans senast inom sex månader, får parten skriftligen begära att myndigheten
ska avgöra ärendet enligt vad som framgår av 12 §.</p>
<p>12 § Om ett ärende som har inletts av en enskild part inte har avgjorts i första
instans senast inom sex månader, får parten skriftligen begära att myndigheten ska
avgöra ärendet. Myndigheten ska inom fyra veckor från den dag då en sådan begäran
kom in antingen avgöra ärendet eller i ett särskilt beslut avslå begäran. Ett beslut
att avslå en begäran om att ärendet ska avgöras får överklagas till den domstol eller
förvaltningsmyndighet som är behörig att pröva ett överklagande av avgörandet i ärendet.</p>
</div>`

const propHTML = `<div>
<h2>14.1 Snabb och enkel handläggning</h2>
<p>Regeringen bedömer att långsam handläggning är ett av de största problemen för
enskilda i kontakten med förvaltningsmyndigheterna. Genom den nya bestämmelsen om
dröjsmålstalan ges enskilda för första gången ett verktyg att själva driva på
handläggningen av sina ärenden. Förslaget syftar till att stärka enskildas rättssäkerhet
och att öka förvaltningens effektivitet utan att göra avkall på kvaliteten i besluten.</p>
</div>`

func main() {
	// The pipeline needs a real model for answers
	llm, err := rag.NewAnthropicLLM("", 0)
	if err != nil {
		log.Fatalf("Failed to create LLM client (is ANTHROPIC_API_KEY set?): %v", err)
	}

	// Start a test PostgreSQL container
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

	// First run downloads the Swedish sentence transformer
	fmt.Println("=== Loading embedding model ===")
	if err := p.UseDefaultEmbedder(); err != nil {
		log.Fatalf("Failed to load embedding model: %v", err)
	}

	// Store a statute and its preparatory work
	fmt.Println("=== Ingesting documents ===")
	statute := &model.RawDocument{
		DokID:       "sfs-2017-900",
		SfsNr:       "2017:900",
		Titel:       "Förvaltningslag (2017:900)",
		Organ:       "Justitiedepartementet",
		Systemdatum: "2024-01-10 12:00:00",
		HTML:        statuteHTML,
	}
	if err := p.Documents.InsertDocument(statute, model.SourceTypeSfs); err != nil {
		log.Fatalf("Failed to insert statute: %v", err)
	}

	prop := &model.RawDocument{
		DokID:       "h403180",
		Beteckning:  "Prop. 2016/17:180",
		Titel:       "En modern och rättssäker förvaltning - ny förvaltningslag",
		Organ:       "Justitiedepartementet",
		Systemdatum: "2024-01-11 09:00:00",
		HTML:        propHTML,
	}
	if err := p.Documents.InsertDocument(prop, model.SourceTypeForarbete); err != nil {
		log.Fatalf("Failed to insert preparatory work: %v", err)
	}

	runner, err := p.NewRunner(2)
	if err != nil {
		log.Fatalf("Failed to create runner: %v", err)
	}
	for _, sourceType := range []model.SourceType{model.SourceTypeSfs, model.SourceTypeForarbete} {
		stats, err := runner.Run(context.Background(), sourceType)
		if err != nil {
			log.Fatalf("Failed to index %s: %v", sourceType, err)
		}
		fmt.Printf("%s: %d chunks indexed\n", sourceType, stats.ChunksIndexed)
	}

	// Authority-weighted retrieval, confidence gate, klarspråk and
	// disclaimer are all wired in by default
	pipeline, err := p.NewQueryPipeline(llm, "authority")
	if err != nil {
		log.Fatalf("Failed to create query pipeline: %v", err)
	}

	questions := []string{
		"Min myndighet har inte avgjort mitt ärende på åtta månader, vad kan jag göra?",
		"Jag är misstänkt för misshandel, hur ska jag lägga upp mitt försvar?",
	}
	for _, question := range questions {
		fmt.Printf("\n=== Fråga ===\n%s\n", question)

		result, err := pipeline.Query(context.Background(), question, nil)
		if err != nil {
			log.Fatalf("Failed to answer: %v", err)
		}

		fmt.Printf("\n%s\n", result.Answer)
		if result.Blocked {
			fmt.Println("(blocked: outside supported legal areas)")
			continue
		}
		fmt.Printf("\nConfidence: %.2f, chunks used: %d\n", result.Confidence.Score, result.ChunksUsed)
		for i, source := range result.Sources {
			fmt.Printf("%d. %s\n", i+1, source)
		}
	}
}
