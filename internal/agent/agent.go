package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/clovis-labs/rhassist/internal/knowledge"
	"github.com/clovis-labs/rhassist/internal/log"
	"github.com/clovis-labs/rhassist/internal/tools"
)

// minQueryRunes is the shortest message worth processing.
const minQueryRunes = 3

// Sentinel errors. Check with errors.Is.
var (
	// ErrQueryTooShort indicates the message has fewer than three runes
	// after trimming.
	ErrQueryTooShort = errors.New("query too short")
)

// Request is one conversation turn from an employee.
type Request struct {
	// Message is the employee's question.
	Message string
	// Profile optionally states the employee profile explicitly. It wins
	// over anything detected in the message or remembered on the thread.
	Profile string
	// Domaine optionally narrows retrieval to one HR domain.
	Domaine string
	// ThreadID continues an existing conversation. Empty starts a new one.
	ThreadID string
}

// Response is the assistant's reply for one turn.
type Response struct {
	// Text is the assistant's answer.
	Text string
	// ThreadID identifies the conversation, generated when absent.
	ThreadID string
	// SourcesUsed is false only when the corpus had nothing relevant and
	// the fixed not-found sentence was returned.
	SourcesUsed bool
}

// Retriever is the slice of the retrieval tool the policy needs.
type Retriever interface {
	Retrieve(ctx context.Context, query string, profile knowledge.Profile, domain *knowledge.Domain) tools.Outcome
}

// Options tunes the conversation policy.
type Options struct {
	// SummaryTriggerChars is the history size, in runes, past which the
	// thread is compacted after a turn.
	SummaryTriggerChars int
	// SummaryKeepTurns is how many recent turns survive a compaction.
	SummaryKeepTurns int
}

// Agent applies the conversation policy: resolve the employee profile,
// retrieve at most once per turn, answer or fall back deterministically,
// then maintain the thread history.
type Agent struct {
	retriever Retriever
	generator Generator
	store     *Store
	opts      Options
	logger    log.Logger
}

// New creates the agent.
func New(retriever Retriever, generator Generator, store *Store, opts Options, logger log.Logger) *Agent {
	return &Agent{
		retriever: retriever,
		generator: generator,
		store:     store,
		opts:      opts,
		logger:    logger.With("component", "agent"),
	}
}

// Chat processes one turn. Per turn the policy runs at most one retrieval:
// none when the profile must be clarified first, exactly one otherwise.
func (a *Agent) Chat(ctx context.Context, req Request) (Response, error) {
	message := strings.TrimSpace(req.Message)
	if utf8.RuneCountInString(message) < minQueryRunes {
		return Response{}, fmt.Errorf("%w: %d runes", ErrQueryTooShort, utf8.RuneCountInString(message))
	}

	threadID := req.ThreadID
	if threadID == "" {
		threadID = uuid.NewString()
	}

	state, release := a.store.Acquire(threadID)
	defer release()

	profile, ok, err := a.resolveProfile(req, message, state)
	if err != nil {
		return Response{}, err
	}
	if !ok {
		state.Append(RoleUser, message)
		state.Append(RoleAssistant, ClarificationMessage)
		a.logger.Info("profile clarification requested", "thread", threadID)
		return Response{Text: ClarificationMessage, ThreadID: threadID, SourcesUsed: false}, nil
	}
	state.SetProfile(string(profile))

	domain, err := a.resolveDomain(req, message, state)
	if err != nil {
		return Response{}, err
	}
	if domain != nil {
		state.SetDomain(string(*domain))
	}

	outcome := a.retriever.Retrieve(ctx, message, profile, domain)

	var text string
	sourcesUsed := true
	switch outcome.Status {
	case tools.StatusNotFound:
		text = NotFoundMessage
		sourcesUsed = false
	case tools.StatusError:
		text = TechnicalMessage
		a.logger.Warn("retrieval error", "thread", threadID, "detail", outcome.Detail)
	default:
		text, err = a.generator.Generate(ctx, GenerateRequest{
			History: state.History(),
			Message: message,
			Context: outcome.Render(),
		})
		if err != nil {
			a.logger.Error("generation failed", "thread", threadID, "error", err)
			text = TechnicalMessage
		}
	}

	state.Append(RoleUser, message)
	state.Append(RoleAssistant, text)
	a.compact(ctx, threadID, state)

	return Response{Text: text, ThreadID: threadID, SourcesUsed: sourcesUsed}, nil
}

// resolveProfile picks the profile for this turn: explicit request field,
// then a mention in the message, then the thread's sticky value. ok is
// false when none applies and the policy must ask for clarification.
func (a *Agent) resolveProfile(req Request, message string, state *State) (knowledge.Profile, bool, error) {
	if req.Profile != "" {
		p, err := knowledge.ParseProfile(req.Profile)
		if err != nil {
			return "", false, err
		}
		return p, true, nil
	}
	if p, ok := detectProfile(message); ok {
		return p, true, nil
	}
	if sticky := state.Profile(); sticky != "" {
		p, err := knowledge.ParseProfile(sticky)
		if err == nil {
			return p, true, nil
		}
	}
	return "", false, nil
}

// resolveDomain picks the optional domain filter with the same precedence
// as resolveProfile. A nil result means unfiltered retrieval.
func (a *Agent) resolveDomain(req Request, message string, state *State) (*knowledge.Domain, error) {
	if req.Domaine != "" {
		d, err := knowledge.ParseDomain(req.Domaine)
		if err != nil {
			return nil, err
		}
		return &d, nil
	}
	if d, ok := detectDomain(message); ok {
		return &d, nil
	}
	if sticky := state.Domain(); sticky != "" {
		d, err := knowledge.ParseDomain(sticky)
		if err == nil {
			return &d, nil
		}
	}
	return nil, nil
}

// compact folds old turns into a summary once the history outgrows the
// trigger. A summarization failure leaves the history as is; the thread
// keeps working, just with a longer context.
func (a *Agent) compact(ctx context.Context, threadID string, state *State) {
	if a.opts.SummaryTriggerChars <= 0 || state.HistorySize() <= a.opts.SummaryTriggerChars {
		return
	}
	input := state.CompactInput(a.opts.SummaryKeepTurns)
	if len(input) == 0 {
		return
	}
	summary, err := a.generator.Summarize(ctx, input)
	if err != nil {
		a.logger.Warn("history compaction skipped", "thread", threadID, "error", err)
		return
	}
	state.Compact(summary, a.opts.SummaryKeepTurns)
	a.logger.Info("history compacted", "thread", threadID, "kept_turns", a.opts.SummaryKeepTurns)
}
