package main

import (
	"github.com/spf13/cobra"
)

var (
	baseURL      string
	doktyp       string
	startPage    int
	maxPages     int
	skipExisting bool
	concurrency  int
	strategyName string
	llmModel     string
	goldPath     string

	rootCmd = &cobra.Command{
		Use:   "paragrafen",
		Short: "A cli to crawl, index and query Swedish legal sources",
		Long: `Paragrafen fetches statutes and preparatory works from the
Riksdagen open data API, parses and indexes them into pgvector, and
answers legal questions grounded in the indexed sources.`,
	}

	crawlCmd = &cobra.Command{
		Use:   "crawl",
		Short: "Fetch all documents of one doktyp from the Riksdagen API",
		Run:   runCrawl, // Defined in cmd_fetch.go
	}

	updateCmd = &cobra.Command{
		Use:   "update",
		Short: "Fetch documents changed since the last crawl",
		Run:   runUpdate, // Defined in cmd_fetch.go
	}

	verifyCmd = &cobra.Command{
		Use:   "verify",
		Short: "Compare local document coverage against the API totals",
		Run:   runVerify, // Defined in cmd_fetch.go
	}

	fetchCmd = &cobra.Command{
		Use:   "fetch [dok_id]",
		Short: "Fetch a single document by dok_id",
		Args:  cobra.ExactArgs(1),
		Run:   runFetch, // Defined in cmd_fetch.go
	}

	indexCmd = &cobra.Command{
		Use:   "index [sfs|forarbete]",
		Short: "Parse, chunk and index stored raw documents",
		Args:  cobra.ExactArgs(1),
		Run:   runIndex, // Defined in cmd_index.go
	}

	askCmd = &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a legal question against the indexed sources",
		Args:  cobra.MinimumNArgs(1),
		Run:   runAsk, // Defined in cmd_ask.go
	}

	qaCmd = &cobra.Command{
		Use:   "qa",
		Short: "Run the golden standard test suite against the live pipeline",
		Run:   runQA, // Defined in cmd_qa.go
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "Riksdagen API base URL (default production)")

	crawlCmd.Flags().StringVar(&doktyp, "doktyp", "sfs", "Document type to crawl (sfs, prop, sou)")
	crawlCmd.Flags().IntVar(&startPage, "start-page", 1, "First list page to fetch")
	crawlCmd.Flags().IntVar(&maxPages, "max-pages", 0, "Stop after this many pages (0 = all)")
	crawlCmd.Flags().BoolVar(&skipExisting, "skip-existing", true, "Skip documents already stored")

	updateCmd.Flags().StringVar(&doktyp, "doktyp", "sfs", "Document type to update (sfs, prop, sou)")
	verifyCmd.Flags().StringVar(&doktyp, "doktyp", "sfs", "Document type to verify (sfs, prop, sou)")
	fetchCmd.Flags().StringVar(&doktyp, "doktyp", "sfs", "Document type of the dok_id (sfs, prop, sou)")

	indexCmd.Flags().IntVar(&concurrency, "concurrency", 4, "Documents processed in parallel")

	askCmd.Flags().StringVar(&strategyName, "strategy", "authority", "Retrieval strategy (vector, authority)")
	askCmd.Flags().StringVar(&llmModel, "model", "", "Anthropic model name (default claude-sonnet-4-5)")

	qaCmd.Flags().StringVar(&goldPath, "gold", "qa/golden_standard.json", "Path to the golden standard test file")
	qaCmd.Flags().StringVar(&strategyName, "strategy", "authority", "Retrieval strategy (vector, authority)")
	qaCmd.Flags().StringVar(&llmModel, "model", "", "Anthropic model name (default claude-sonnet-4-5)")

	rootCmd.AddCommand(crawlCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(qaCmd)
}
