package model

import (
	"time"
)

// AuthorityLevel ranks the legal weight of a source:
// binding (statute) > guiding (case law) > preparatory (legislative history) > persuasive (doctrine).
type AuthorityLevel string

const (
	AuthorityBinding     AuthorityLevel = "binding"
	AuthorityGuiding     AuthorityLevel = "guiding"
	AuthorityPreparatory AuthorityLevel = "preparatory"
	AuthorityPersuasive  AuthorityLevel = "persuasive"
)

// ParseAuthorityLevel maps a raw metadata string to a known authority level.
// Unknown or empty values fall back to persuasive, the weakest tier.
func ParseAuthorityLevel(raw string) AuthorityLevel {
	switch AuthorityLevel(raw) {
	case AuthorityBinding, AuthorityGuiding, AuthorityPreparatory, AuthorityPersuasive:
		return AuthorityLevel(raw)
	default:
		return AuthorityPersuasive
	}
}

// SourceType identifies the collection a chunk was indexed from.
type SourceType string

const (
	SourceTypeSfs       SourceType = "sfs"
	SourceTypeForarbete SourceType = "forarbete"
	SourceTypePraxis    SourceType = "praxis"
	SourceTypeDoktrin   SourceType = "doktrin"
)

// NumberingType describes how a statute numbers its paragraphs:
// relative numbering resets per chapter, sequential numbering runs
// continuously across the whole statute.
type NumberingType string

const (
	NumberingRelative   NumberingType = "relative"
	NumberingSequential NumberingType = "sequential"
)

// NormType classifies a statute by constitutional rank.
type NormType string

const (
	NormTypeGrundlag   NormType = "grundlag"
	NormTypeLag        NormType = "lag"
	NormTypeForordning NormType = "forordning"
	NormTypeForeskrift NormType = "foreskrift"
)

// Reference is a typed outgoing edge from a chunk to another statute.
type Reference struct {
	Target       string `json:"target"`        // e.g. "sfs::1915:218"
	RelationType string `json:"relation_type"` // e.g. "cites"
}

// Chunk is the final indexable unit of legal text. The namespace is the
// idempotency key for storage: re-ingesting identical input must regenerate
// an identical namespace.
type Chunk struct {
	Namespace      string         `json:"namespace"`
	SourceID       string         `json:"source_id"`
	SourceType     SourceType     `json:"source_type"`
	AuthorityLevel AuthorityLevel `json:"authority_level"`
	LegalArea      []string       `json:"legal_area"`
	ChunkIndex     int            `json:"chunk_index"`
	ChunkTotal     int            `json:"chunk_total"`
	Text           string         `json:"text"`

	// SFS metadata
	SfsNr         string        `json:"sfs_nr,omitempty"`
	Rubrik        string        `json:"rubrik,omitempty"`
	Kortnamn      string        `json:"kortnamn,omitempty"`
	Kapitel       string        `json:"kapitel,omitempty"`
	Kapitelrubrik string        `json:"kapitelrubrik,omitempty"`
	Paragraf      string        `json:"paragraf,omitempty"`
	Stycke        string        `json:"stycke,omitempty"`
	NormType      NormType      `json:"norm_type,omitempty"`
	NumberingType NumberingType `json:"numbering_type,omitempty"`

	// Forarbete metadata
	Beteckning   string `json:"beteckning,omitempty"`
	SectionTitle string `json:"section_title,omitempty"`
	Pinpoint     string `json:"pinpoint,omitempty"` // e.g. "s. 47"

	// Praxis/doktrin metadata
	Citation string `json:"citation,omitempty"`

	// Flags
	IsDefinition           bool `json:"is_definition,omitempty"`
	IsOvergangsbestammelse bool `json:"is_overgangsbestammelse,omitempty"`
	HasTable               bool `json:"has_table,omitempty"`

	// Typed edges to other statutes
	ReferencesTo []Reference `json:"references_to,omitempty"`

	// Provenance
	LegalAreaConfidence string    `json:"legal_area_confidence,omitempty"` // "manual" or "department"
	EmbeddingModel      string    `json:"embedding_model,omitempty"`
	IndexedAt           time.Time `json:"indexed_at,omitempty"`
}

// RetrievedChunk is a Chunk plus retrieval-time fields. Ephemeral and
// per-query, never persisted. Distance is nil when the store did not
// report one.
type RetrievedChunk struct {
	Chunk
	Distance  *float64 `json:"distance,omitempty"`
	NormScore float64  `json:"norm_score"`
}

// DistanceOf returns a pointer to d, for building retrieved chunks.
func DistanceOf(d float64) *float64 {
	return &d
}
