package model

// QueryConfig represents configuration for a retrieval query
type QueryConfig struct {
	// Vector search parameters
	TopK int `json:"top_k"`

	// Collections to search (each independent, failures isolated)
	Collections []string `json:"collections,omitempty"`

	// Metadata filtering
	LegalArea  string     `json:"legal_area,omitempty"`
	SourceType SourceType `json:"source_type,omitempty"`
}

// DefaultQueryConfig returns a sensible default configuration
func DefaultQueryConfig() QueryConfig {
	return QueryConfig{
		TopK:        10,
		Collections: []string{"paragrafen_sfs_v1", "paragrafen_forarbete_v1"},
	}
}
