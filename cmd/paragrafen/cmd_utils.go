package main

import (
	"log"

	paragrafen "github.com/eliassondavid/paragrafen-ai"
	"github.com/eliassondavid/paragrafen-ai/helper"
)

// defaultEmbeddingDim matches the default Swedish sentence transformer.
const defaultEmbeddingDim = 768

// mustInit connects to the database using the DB_* environment variables
// and exits on failure. Callers must Close() the instance.
func mustInit() *paragrafen.Paragrafen {
	dbConfig, err := helper.NewDatabaseConfiguration()
	if err != nil {
		log.Fatalf("Error reading database configuration: %v", err)
	}

	p, err := paragrafen.NewParagrafen(dbConfig, defaultEmbeddingDim)
	if err != nil {
		log.Fatalf("Error connecting to database: %v", err)
	}
	return p
}

// mustInitWithEmbedder additionally loads the embedding model, which can
// take a while on first run while hugot downloads the model files.
func mustInitWithEmbedder() *paragrafen.Paragrafen {
	p := mustInit()
	log.Println("Loading embedding model...")
	if err := p.UseDefaultEmbedder(); err != nil {
		p.Close()
		log.Fatalf("Error loading embedding model: %v", err)
	}
	return p
}
