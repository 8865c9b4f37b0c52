package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"google.golang.org/genai"

	"github.com/clovis-labs/rhassist/internal/log"
)

// GenerateRequest carries one answering turn to the model.
type GenerateRequest struct {
	// History holds the prior turns of the thread, oldest first.
	History []Turn
	// Message is the employee's current question.
	Message string
	// Context is the rendered retrieval output backing the answer.
	Context string
}

// Generator produces model text. The policy depends on this interface so
// tests can script responses without a model.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
	Summarize(ctx context.Context, turns []Turn) (string, error)
}

// GenkitGenerator drives a Gemini model through genkit.
type GenkitGenerator struct {
	g            *genkit.Genkit
	model        string
	summaryModel string
	temperature  float32
	logger       log.Logger
}

// NewGenkitGenerator creates a generator. model and summaryModel are full
// genkit model names such as "googleai/gemini-2.5-flash".
func NewGenkitGenerator(g *genkit.Genkit, model, summaryModel string, temperature float32, logger log.Logger) *GenkitGenerator {
	return &GenkitGenerator{
		g:            g,
		model:        model,
		summaryModel: summaryModel,
		temperature:  temperature,
		logger:       logger.With("component", "generator"),
	}
}

// Generate answers the current question grounded in the retrieval context.
func (gg *GenkitGenerator) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	prompt := fmt.Sprintf("CONTEXTE:\n%s\n\nQUESTION:\n%s", req.Context, req.Message)

	resp, err := genkit.Generate(ctx, gg.g,
		ai.WithModelName(gg.model),
		ai.WithSystem(systemPrompt),
		ai.WithMessages(toMessages(req.History)...),
		ai.WithPrompt(prompt),
		ai.WithConfig(&genai.GenerateContentConfig{
			Temperature: genai.Ptr(gg.temperature),
		}),
	)
	if err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("generate answer: empty model response")
	}
	return text, nil
}

// Summarize condenses turns into a short summary for history compaction.
func (gg *GenkitGenerator) Summarize(ctx context.Context, turns []Turn) (string, error) {
	var b strings.Builder
	for _, t := range turns {
		fmt.Fprintf(&b, "[%s] %s\n", t.Role, t.Text)
	}

	resp, err := genkit.Generate(ctx, gg.g,
		ai.WithModelName(gg.summaryModel),
		ai.WithSystem(summaryPrompt),
		ai.WithPrompt(b.String()),
	)
	if err != nil {
		return "", fmt.Errorf("summarize history: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("summarize history: empty model response")
	}
	return text, nil
}

// toMessages converts thread history to genkit messages. Summary turns are
// presented as user context so the model treats them as ground truth about
// the earlier conversation.
func toMessages(history []Turn) []*ai.Message {
	msgs := make([]*ai.Message, 0, len(history))
	for _, t := range history {
		switch t.Role {
		case RoleAssistant:
			msgs = append(msgs, ai.NewModelMessage(ai.NewTextPart(t.Text)))
		case RoleSummary:
			msgs = append(msgs, ai.NewUserMessage(ai.NewTextPart("Résumé de la conversation précédente :\n"+t.Text)))
		default:
			msgs = append(msgs, ai.NewUserMessage(ai.NewTextPart(t.Text)))
		}
	}
	return msgs
}
