package pipeline

// EmbedFunc generates embeddings for a batch of texts. Implementations must
// return exactly one vector per input text, in input order.
type EmbedFunc func(texts []string) ([][]float32, error)
