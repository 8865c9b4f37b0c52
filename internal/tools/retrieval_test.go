package tools

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/clovis-labs/rhassist/internal/index"
	"github.com/clovis-labs/rhassist/internal/knowledge"
	"github.com/clovis-labs/rhassist/internal/log"
)

type stubSearcher struct {
	results []index.Result
	err     error

	calls      int
	lastQuery  string
	lastK      int
	lastFilter map[string]string
}

func (s *stubSearcher) Search(_ context.Context, query string, k int, filter map[string]string) ([]index.Result, error) {
	s.calls++
	s.lastQuery = query
	s.lastK = k
	s.lastFilter = filter
	return s.results, s.err
}

func hit(id string, profile, domain string, similarity float32) index.Result {
	return index.Result{
		Document: knowledge.Document{
			ID:      id,
			Content: "Question: Q\nRéponse: R",
			Metadata: map[string]string{
				knowledge.MetaProfile: profile,
				knowledge.MetaDomain:  domain,
			},
		},
		Similarity: similarity,
	}
}

func TestRetrieve(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		s := &stubSearcher{results: []index.Result{hit("rh:1", "CDI", "Congés", 0.9)}}
		r := NewRetrieval(s, 4, log.NewNop())

		out := r.Retrieve(context.Background(), "congés payés", knowledge.ProfileCDI, nil)
		if out.Status != StatusFound {
			t.Fatalf("Status = %q, want found", out.Status)
		}
		if len(out.Results) != 1 {
			t.Errorf("len(Results) = %d, want 1", len(out.Results))
		}
		if got := s.lastFilter[knowledge.MetaProfile]; got != "CDI" {
			t.Errorf("profile filter = %q, want CDI", got)
		}
		if _, ok := s.lastFilter[knowledge.MetaDomain]; ok {
			t.Error("domain filter set without a domain")
		}
		if s.lastK != 4 {
			t.Errorf("k = %d, want 4", s.lastK)
		}
	})

	t.Run("domain narrows the filter", func(t *testing.T) {
		s := &stubSearcher{results: []index.Result{hit("rh:1", "CDI", "Paie", 0.9)}}
		r := NewRetrieval(s, 4, log.NewNop())

		d := knowledge.DomainPaie
		r.Retrieve(context.Background(), "salaire", knowledge.ProfileCDI, &d)
		if got := s.lastFilter[knowledge.MetaDomain]; got != "Paie" {
			t.Errorf("domain filter = %q, want Paie", got)
		}
	})

	t.Run("low similarity hit is still found", func(t *testing.T) {
		s := &stubSearcher{results: []index.Result{hit("rh:1", "CDI", "Paie", 0.29)}}
		r := NewRetrieval(s, 4, log.NewNop())

		out := r.Retrieve(context.Background(), "prime de précarité", knowledge.ProfileCDI, nil)
		if out.Status != StatusFound {
			t.Fatalf("Status = %q, want found", out.Status)
		}
		if len(out.Results) != 1 {
			t.Errorf("len(Results) = %d, want 1", len(out.Results))
		}
	})

	t.Run("short query is technical without searching", func(t *testing.T) {
		s := &stubSearcher{results: []index.Result{hit("rh:1", "CDI", "Paie", 0.9)}}
		r := NewRetrieval(s, 4, log.NewNop())

		out := r.Retrieve(context.Background(), " ok ", knowledge.ProfileCDI, nil)
		if out.Status != StatusError {
			t.Fatalf("Status = %q, want error", out.Status)
		}
		if s.calls != 0 {
			t.Errorf("Search called %d times, want 0", s.calls)
		}
	})

	t.Run("empty result is not found", func(t *testing.T) {
		s := &stubSearcher{}
		r := NewRetrieval(s, 4, log.NewNop())

		out := r.Retrieve(context.Background(), "congés", knowledge.ProfileStagiaire, nil)
		if out.Status != StatusNotFound {
			t.Errorf("Status = %q, want not_found", out.Status)
		}
	})

	t.Run("search failure is technical", func(t *testing.T) {
		s := &stubSearcher{err: errors.New("store unavailable")}
		r := NewRetrieval(s, 4, log.NewNop())

		out := r.Retrieve(context.Background(), "congés", knowledge.ProfileCDI, nil)
		if out.Status != StatusError {
			t.Fatalf("Status = %q, want error", out.Status)
		}
		if !strings.Contains(out.Detail, "store unavailable") {
			t.Errorf("Detail = %q, want cause included", out.Detail)
		}
	})
}

func TestOutcomeRender(t *testing.T) {
	t.Run("found lists results with scope", func(t *testing.T) {
		out := Outcome{
			Status: StatusFound,
			Results: []index.Result{
				hit("rh:1", "CDI", "Congés", 0.9),
				hit("rh:2", "CDI", "Paie", 0.8),
			},
		}
		rendered := out.Render()

		if !strings.Contains(rendered, "--- Résultat 1 ---") {
			t.Errorf("rendered missing first result header: %q", rendered)
		}
		if !strings.Contains(rendered, "--- Résultat 2 ---") {
			t.Errorf("rendered missing second result header: %q", rendered)
		}
		if !strings.Contains(rendered, "(Profil: CDI, Domaine: Congés)") {
			t.Errorf("rendered missing scope line: %q", rendered)
		}
		if IsNotFound(rendered) || IsTechnical(rendered) {
			t.Error("found outcome rendered with a failure sentinel")
		}
	})

	t.Run("not found sentinel", func(t *testing.T) {
		rendered := Outcome{Status: StatusNotFound}.Render()
		if !IsNotFound(rendered) {
			t.Errorf("rendered = %q, want ERREUR_NOT_FOUND prefix", rendered)
		}
	})

	t.Run("technical sentinel", func(t *testing.T) {
		rendered := Outcome{Status: StatusError, Detail: "boom"}.Render()
		if !IsTechnical(rendered) {
			t.Errorf("rendered = %q, want ERREUR_TECHNIQUE prefix", rendered)
		}
	})
}
