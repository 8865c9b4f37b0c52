// Package app provides application initialization and dependency wiring.
//
// App is the container that assembles the HR assistant: genkit with the
// Gemini plugin, the corpus loader, the vector index, the retrieval tool,
// and the conversation agent with its chat flow.
package app

import (
	"context"
	"fmt"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/core"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"

	"github.com/clovis-labs/rhassist/internal/agent"
	"github.com/clovis-labs/rhassist/internal/config"
	"github.com/clovis-labs/rhassist/internal/index"
	"github.com/clovis-labs/rhassist/internal/knowledge"
	"github.com/clovis-labs/rhassist/internal/log"
	"github.com/clovis-labs/rhassist/internal/tools"
)

// App is the core application container.
type App struct {
	Config *config.Config
	Logger log.Logger

	Genkit    *genkit.Genkit
	Embedder  ai.Embedder
	Loader    *knowledge.Loader
	Index     *index.Index
	Retrieval *tools.Retrieval
	Agent     *agent.Agent
	ChatFlow  *core.Flow[agent.Input, agent.Output, struct{}]
}

// Setup creates and initializes the application. The corpus CSV is loaded
// eagerly so a broken knowledge source fails startup; the vector index is
// restored from disk when a snapshot exists, otherwise built and persisted.
// forceRecreate skips the snapshot and always rebuilds.
func Setup(ctx context.Context, cfg *config.Config, logger log.Logger, forceRecreate bool) (*App, error) {
	if err := cfg.RequireAPIKey(); err != nil {
		return nil, err
	}

	a := &App{Config: cfg, Logger: logger}

	g := genkit.Init(ctx, genkit.WithPlugins(&googlegenai.GoogleAI{}))
	if g == nil {
		return nil, fmt.Errorf("initializing genkit with gemini provider")
	}
	a.Genkit = g

	embedder := googlegenai.GoogleAIEmbedder(g, cfg.EmbedderModel)
	if embedder == nil {
		return nil, fmt.Errorf("embedder %q not found", cfg.EmbedderModel)
	}
	a.Embedder = embedder

	// The corpus is loaded even when the index snapshot is fresh: a broken
	// CSV must surface at startup, and corpus stats stay available.
	a.Loader = knowledge.NewLoader(cfg.CSVPath, logger)
	if _, _, err := a.Loader.Load(); err != nil {
		return nil, fmt.Errorf("loading knowledge source: %w", err)
	}

	a.Index = index.New(cfg.IndexPath, index.NewEmbeddingFunc(embedder), logger)
	loadDocs := func(context.Context) ([]knowledge.Document, error) {
		return a.Loader.Documents()
	}
	if err := a.Index.LoadOrBuild(ctx, loadDocs, forceRecreate); err != nil {
		return nil, fmt.Errorf("preparing vector index: %w", err)
	}

	a.Retrieval = tools.NewRetrieval(a.Index, cfg.TopK, logger)
	tools.Register(g, a.Retrieval)

	generator := agent.NewGenkitGenerator(g,
		cfg.FullModelName(), cfg.FullSummaryModelName(), cfg.Temperature, logger)
	a.Agent = agent.New(a.Retrieval, generator, agent.NewStore(), agent.Options{
		SummaryTriggerChars: cfg.SummaryTriggerChars,
		SummaryKeepTurns:    cfg.SummaryKeepTurns,
	}, logger)
	a.ChatFlow = agent.DefineFlow(g, a.Agent)

	return a, nil
}

// Close releases application resources. The app holds no background
// goroutines or connections of its own; callers own the context that
// bounds requests.
func (a *App) Close() error {
	if a.Logger != nil {
		a.Logger.Info("shutting down application")
	}
	return nil
}
