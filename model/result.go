package model

// GateResult is the confidence gate's verdict over a retrieved chunk set.
type GateResult struct {
	Pass   bool     `json:"pass"`
	Score  float64  `json:"score"`
	Reason string   `json:"reason,omitempty"`
	Flags  []string `json:"flags"`
}

// QueryResult is the final outcome of one question through the RAG pipeline.
type QueryResult struct {
	Answer         string     `json:"answer"`
	Blocked        bool       `json:"blocked"`
	BlockedMessage string     `json:"blocked_message,omitempty"`
	Sources        []string   `json:"sources"`
	Confidence     GateResult `json:"confidence"`
	ChunksUsed     int        `json:"chunks_used"`
	LowConfidence  bool       `json:"low_confidence"`
}
