package model

import (
	"time"
)

// RawDocument is one fetched legal source document, exactly as returned by
// the Riksdagen API. Created by the fetcher, persisted once, never mutated.
type RawDocument struct {
	DokID       string    `json:"dok_id"`
	SfsNr       string    `json:"sfs_nr,omitempty"`      // statutes
	Beteckning  string    `json:"beteckning,omitempty"`  // preparatory works, e.g. "Prop. 2016/17:180"
	Titel       string    `json:"titel"`
	Organ       string    `json:"organ,omitempty"` // issuing body / department
	HTML        string    `json:"html,omitempty"`
	Utfardad    string    `json:"utfardad,omitempty"` // enactment date, ISO, may be empty
	Systemdatum string    `json:"systemdatum,omitempty"`
	FetchedAt   time.Time `json:"fetched_at"`
}

// ParsedParagraph is one addressable sub-unit of an SFS document. Produced
// by the parser, consumed by the chunker, never mutated after creation.
type ParsedParagraph struct {
	Kapitel        string        `json:"kapitel"` // "" when sequential/chapterless
	Kapitelrubrik  string        `json:"kapitelrubrik"`
	Paragraf       string        `json:"paragraf"` // "1", "1a", ...
	ParagrafRubrik string        `json:"paragraf_rubrik"`
	Stycken        []string      `json:"stycken"`
	Text           string        `json:"text"`
	IsDefinition   bool          `json:"is_definition"`
	IsOvergangs    bool          `json:"is_overgangsbestammelse"`
	HasTable       bool          `json:"has_table"`
	ReferencesTo   []Reference   `json:"references_to"`
	NumberingType  NumberingType `json:"numbering_type"`
	HasKapitel     bool          `json:"has_kapitel"`
}

// ParsedSection is one section of a preparatory-works document.
type ParsedSection struct {
	Title      string   `json:"title"`
	Paragraphs []string `json:"paragraphs"`
	Page       *int     `json:"page,omitempty"`
}
