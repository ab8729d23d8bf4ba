package rag

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/eliassondavid/paragrafen-ai/config"
	"github.com/eliassondavid/paragrafen-ai/core/guard"
	corepipeline "github.com/eliassondavid/paragrafen-ai/core/pipeline"
	"github.com/eliassondavid/paragrafen-ai/core/retrieval"
	"github.com/eliassondavid/paragrafen-ai/helper"
	"github.com/eliassondavid/paragrafen-ai/model"
	"github.com/eliassondavid/paragrafen-ai/publish"
)

// LowConfidenceAnswer is returned verbatim when the confidence gate
// suppresses generation.
const LowConfidenceAnswer = "Jag hittade inte tillräckligt med relevant information för att besvara " +
	"din fråga med tillräcklig säkerhet. Försök omformulera frågan eller " +
	"kontakta en jurist för rådgivning."

const systemPrompt = "Du är §AI, en juridisk AI-assistent för allmänheten i Sverige.\n" +
	"Besvara frågan baserat ENBART på de angivna källorna.\n" +
	"Skriv på svenska i klarspråk. Förklara juridiska termer vid första användning.\n" +
	"Om källorna inte ger tillräckligt underlag: säg det tydligt.\n" +
	"Avsluta alltid med en källförteckning."

// Pipeline answers legal questions over the indexed corpus: block check,
// embed, retrieve, rerank, confidence gate, generation, plain-language
// post-processing and disclaimer. Blocked and low-confidence questions
// short-circuit before any embedding or model call.
type Pipeline struct {
	blocker    *guard.AreaBlocker
	gate       *guard.ConfidenceGate
	embed      corepipeline.EmbedFunc
	strategy   retrieval.Strategy
	llm        LLM
	klarsprak  *publish.KlarsprakLayer
	disclaimer *publish.DisclaimerInjector
	log        *slog.Logger
}

// NewPipeline wires the question-answering pipeline. embed, strategy and
// llm are required; nil guard and publish components use the defaults.
func NewPipeline(
	embed corepipeline.EmbedFunc,
	strategy retrieval.Strategy,
	llm LLM,
	blocker *guard.AreaBlocker,
	gate *guard.ConfidenceGate,
	klarsprak *publish.KlarsprakLayer,
	logger *slog.Logger,
) (*Pipeline, error) {
	if embed == nil {
		return nil, helper.NewError("pipeline validation", fmt.Errorf("embed function is nil"))
	}
	if strategy == nil {
		return nil, helper.NewError("pipeline validation", fmt.Errorf("retrieval strategy is nil"))
	}
	if llm == nil {
		return nil, helper.NewError("pipeline validation", fmt.Errorf("llm is nil"))
	}
	if blocker == nil {
		blocker = guard.NewAreaBlocker(config.DefaultExcludedAreas(), logger)
	}
	if gate == nil {
		gate = guard.NewConfidenceGate(0, 0)
	}
	if klarsprak == nil {
		klarsprak = publish.NewKlarsprakLayer(nil, logger)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Pipeline{
		blocker:    blocker,
		gate:       gate,
		embed:      embed,
		strategy:   strategy,
		llm:        llm,
		klarsprak:  klarsprak,
		disclaimer: publish.NewDisclaimerInjector(),
		log:        logger,
	}, nil
}

// Query runs one user question through the whole pipeline. A nil config
// uses model.DefaultQueryConfig.
func (p *Pipeline) Query(ctx context.Context, userQuery string, queryConfig *model.QueryConfig) (*model.QueryResult, error) {
	if queryConfig == nil {
		defaults := model.DefaultQueryConfig()
		queryConfig = &defaults
	}

	blocked, message := p.blocker.IsBlocked(userQuery)
	if blocked {
		p.log.Info(fmt.Sprintf("Fråga blockerad: %.80s", userQuery))
		return &model.QueryResult{
			Answer:         message,
			Blocked:        true,
			BlockedMessage: message,
			Sources:        []string{},
		}, nil
	}

	embeddings, err := p.embed([]string{userQuery})
	if err != nil {
		return nil, helper.NewError("embed query", err)
	}
	if len(embeddings) != 1 {
		return nil, helper.NewError("embed query", fmt.Errorf("expected 1 embedding, got %d", len(embeddings)))
	}

	chunks, err := p.strategy.Retrieve(ctx, embeddings[0], queryConfig)
	if err != nil {
		return nil, helper.NewError("retrieve chunks", err)
	}

	confidence := p.gate.Evaluate(chunks)
	if !confidence.Pass {
		p.log.Info("Låg konfidens, returnerar standardsvar", slog.Float64("score", confidence.Score))
		return &model.QueryResult{
			Answer:        LowConfidenceAnswer,
			Sources:       []string{},
			Confidence:    confidence,
			ChunksUsed:    len(chunks),
			LowConfidence: true,
		}, nil
	}

	sources := SourceRefs(chunks)
	userMessage := fmt.Sprintf("KÄLLOR:\n%s\n\nFRÅGA: %s", BuildContext(chunks), userQuery)

	answer, err := p.llm.Complete(ctx, systemPrompt, userMessage)
	if err != nil {
		return nil, helper.NewError("generate answer", err)
	}

	answer = p.klarsprak.Process(answer, queryConfig.LegalArea)
	answer = p.disclaimer.Inject(answer, sources, "")

	p.log.Info(fmt.Sprintf("Fråga besvarad med %d chunkar, %d källor", len(chunks), len(sources)))
	return &model.QueryResult{
		Answer:     answer,
		Sources:    sources,
		Confidence: confidence,
		ChunksUsed: len(chunks),
	}, nil
}
