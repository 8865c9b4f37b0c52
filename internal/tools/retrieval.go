// Package tools exposes corpus retrieval as a model-callable tool.
//
// The retrieval tool never returns a Go error to the model: every outcome
// is classified as found, not found, or technical error, and rendered as
// text the conversation layer can act on deterministically.
package tools

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/clovis-labs/rhassist/internal/index"
	"github.com/clovis-labs/rhassist/internal/knowledge"
	"github.com/clovis-labs/rhassist/internal/log"
)

// ToolName is the registered name of the retrieval tool.
const ToolName = "search_rh_expert"

// minQueryRunes is the shortest query the tool accepts. Enforced here as
// well as in the conversation layer, because the model can call the tool
// with a query of its own making.
const minQueryRunes = 3

// Status classifies a retrieval outcome.
type Status string

const (
	// StatusFound means at least one relevant document came back.
	StatusFound Status = "found"
	// StatusNotFound means the search ran fine but nothing relevant exists.
	StatusNotFound Status = "not_found"
	// StatusError means the search itself failed.
	StatusError Status = "error"
)

// Rendered sentinel prefixes. The conversation layer matches on these to
// decide whether to answer, apologize, or report a technical problem.
const (
	notFoundSentinel  = "ERREUR_NOT_FOUND:"
	technicalSentinel = "ERREUR_TECHNIQUE:"
)

// Outcome is the classified result of one retrieval call.
type Outcome struct {
	Status  Status
	Results []index.Result
	// Detail carries the failure description for StatusError outcomes.
	Detail string
}

// Searcher is the slice of the vector index the tool needs.
type Searcher interface {
	Search(ctx context.Context, query string, k int, filter map[string]string) ([]index.Result, error)
}

// Retrieval searches the HR corpus scoped to an employee profile.
type Retrieval struct {
	searcher Searcher
	topK     int
	logger   log.Logger
}

// NewRetrieval creates the retrieval tool. topK bounds how many documents a
// single call returns.
func NewRetrieval(searcher Searcher, topK int, logger log.Logger) *Retrieval {
	return &Retrieval{
		searcher: searcher,
		topK:     topK,
		logger:   logger.With("component", "retrieval"),
	}
}

// Retrieve searches the corpus for query, restricted to the given profile
// and optionally to one domain. The profile filter is mandatory: answers
// for another contract type must never leak through.
func (r *Retrieval) Retrieve(ctx context.Context, query string, profile knowledge.Profile, domain *knowledge.Domain) Outcome {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < minQueryRunes {
		r.logger.Warn("query too short", "query", query)
		return Outcome{Status: StatusError, Detail: "query too short"}
	}

	filter := map[string]string{
		knowledge.MetaProfile: string(profile),
	}
	if domain != nil {
		filter[knowledge.MetaDomain] = string(*domain)
	}

	results, err := r.searcher.Search(ctx, query, r.topK, filter)
	if err != nil {
		r.logger.Error("retrieval failed", "error", err, "profile", profile)
		return Outcome{Status: StatusError, Detail: err.Error()}
	}

	if len(results) == 0 {
		r.logger.Info("no matching documents", "query", query, "profile", profile)
		return Outcome{Status: StatusNotFound}
	}

	r.logger.Debug("documents retrieved", "count", len(results), "profile", profile)
	return Outcome{Status: StatusFound, Results: results}
}

// Render formats the outcome as the text handed to the model. Found
// outcomes list each document with its scope; the two failure outcomes use
// fixed sentinel prefixes.
func (o Outcome) Render() string {
	switch o.Status {
	case StatusNotFound:
		return notFoundSentinel + " Aucune information pertinente trouvée dans la base de connaissances."
	case StatusError:
		return technicalSentinel + " La recherche dans la base de connaissances a échoué."
	}

	var b strings.Builder
	for i, res := range o.Results {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "--- Résultat %d ---\n", i+1)
		fmt.Fprintf(&b, "(Profil: %s, Domaine: %s)\n",
			res.Document.Metadata[knowledge.MetaProfile],
			res.Document.Metadata[knowledge.MetaDomain])
		b.WriteString(res.Document.Content)
	}
	return b.String()
}

// IsNotFound reports whether rendered text carries the not-found sentinel.
func IsNotFound(rendered string) bool {
	return strings.HasPrefix(rendered, notFoundSentinel)
}

// IsTechnical reports whether rendered text carries the technical sentinel.
func IsTechnical(rendered string) bool {
	return strings.HasPrefix(rendered, technicalSentinel)
}
