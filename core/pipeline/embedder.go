package pipeline

import (
	"fmt"

	"github.com/knights-analytics/hugot"

	"github.com/eliassondavid/paragrafen-ai/helper"
)

// DefaultEmbeddingModel is a Swedish sentence transformer producing
// 768-dimensional embeddings.
const DefaultEmbeddingModel = "KBLab/sentence-bert-swedish-cased"

// DefaultEmbedder creates an embedder running a sentence transformer
// locally through hugot. The model is downloaded on first use.
func DefaultEmbedder(modelName string) (EmbedFunc, error) {
	if modelName == "" {
		modelName = DefaultEmbeddingModel
	}

	modelPath, err := helper.PrepareModel(modelName, "")
	if err != nil {
		return nil, err
	}

	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create hugot session: %w", err)
	}

	config := hugot.FeatureExtractionConfig{
		ModelPath: modelPath,
		Name:      "embedder-pipeline",
	}
	sentencePipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		if destroyErr := session.Destroy(); destroyErr != nil {
			return nil, fmt.Errorf("failed to create sentence pipeline: %w (cleanup error: %v)", err, destroyErr)
		}
		return nil, fmt.Errorf("failed to create sentence pipeline: %w", err)
	}

	return func(texts []string) ([][]float32, error) {
		if len(texts) == 0 {
			return nil, nil
		}

		result, err := sentencePipeline.RunPipeline(texts)
		if err != nil {
			return nil, fmt.Errorf("failed to generate embeddings: %w", err)
		}
		if len(result.Embeddings) != len(texts) {
			return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(result.Embeddings))
		}

		return result.Embeddings, nil
	}, nil
}
