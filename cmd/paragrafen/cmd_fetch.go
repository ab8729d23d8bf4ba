package main

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

func runCrawl(cmd *cobra.Command, args []string) {
	p := mustInit()
	defer p.Close()

	fetcher := p.NewFetcher(baseURL)
	stats, err := fetcher.FullCrawl(context.Background(), doktyp, startPage, maxPages, skipExisting)
	if err != nil {
		log.Fatalf("Error crawling %s: %v", doktyp, err)
	}

	fmt.Printf("Crawl of %q done.\n", doktyp)
	fmt.Printf("  Fetched: %d\n", stats.Fetched)
	fmt.Printf("  Skipped: %d\n", stats.Skipped)
	fmt.Printf("  Errors:  %d\n", stats.Errors)
	fmt.Printf("  Pages:   %d (API reports %d documents)\n", stats.TotalPages, stats.TotalHits)
	for _, detail := range stats.ErrorDetails {
		fmt.Printf("  error: %s\n", detail)
	}
}

func runUpdate(cmd *cobra.Command, args []string) {
	p := mustInit()
	defer p.Close()

	fetcher := p.NewFetcher(baseURL)
	stats, err := fetcher.IncrementalUpdate(context.Background(), doktyp)
	if err != nil {
		log.Fatalf("Error updating %s: %v", doktyp, err)
	}

	fmt.Printf("Update of %q done.\n", doktyp)
	fmt.Printf("  New:     %d\n", stats.New)
	fmt.Printf("  Updated: %d\n", stats.Updated)
	fmt.Printf("  Errors:  %d\n", stats.Errors)
	if stats.Watermark != "" {
		fmt.Printf("  Watermark: %s\n", stats.Watermark)
	}
}

func runVerify(cmd *cobra.Command, args []string) {
	p := mustInit()
	defer p.Close()

	fetcher := p.NewFetcher(baseURL)
	report, err := fetcher.VerifyCrawl(context.Background(), doktyp)
	if err != nil {
		log.Fatalf("Error verifying %s: %v", doktyp, err)
	}

	fmt.Printf("Coverage of %q: %d/%d documents (%.1f%%), %d missing\n",
		doktyp, report.LocalDocuments, report.APITotal, report.CoveragePct, report.Missing)
}

func runFetch(cmd *cobra.Command, args []string) {
	p := mustInit()
	defer p.Close()

	fetcher := p.NewFetcher(baseURL)
	doc, err := fetcher.FetchSingle(context.Background(), args[0], doktyp)
	if err != nil {
		log.Fatalf("Error fetching %s: %v", args[0], err)
	}

	fmt.Printf("Fetched %s: %s\n", doc.DokID, doc.Titel)
}
