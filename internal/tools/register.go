package tools

import (
	"fmt"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"

	"github.com/clovis-labs/rhassist/internal/knowledge"
)

// SearchInput is the model-facing input schema of the retrieval tool.
type SearchInput struct {
	Query   string `json:"query" jsonschema_description:"La question RH reformulée de manière autonome"`
	Profile string `json:"user_profile" jsonschema_description:"Profil de l'employé: CDI, CDD, Intérim, Cadre, Non-Cadre ou Stagiaire"`
	Domaine string `json:"domaine,omitempty" jsonschema_description:"Domaine RH optionnel: Congés, Avantages, Transport, Temps de travail ou Paie"`
}

// Register defines the retrieval tool on the genkit instance so the model
// can call it during generation. Invalid enum values from the model come
// back as rendered technical errors, never as Go errors, so generation can
// continue.
func Register(g *genkit.Genkit, r *Retrieval) ai.Tool {
	return genkit.DefineTool(g, ToolName,
		"Recherche des informations RH officielles (congés, paie, avantages, transport, temps de travail) adaptées au profil de l'employé. À utiliser pour toute question RH factuelle.",
		func(tc *ai.ToolContext, input SearchInput) (string, error) {
			profile, err := knowledge.ParseProfile(input.Profile)
			if err != nil {
				return fmt.Sprintf("%s Profil %q invalide.", technicalSentinel, input.Profile), nil
			}

			var domain *knowledge.Domain
			if input.Domaine != "" {
				d, err := knowledge.ParseDomain(input.Domaine)
				if err == nil {
					domain = &d
				}
			}

			return r.Retrieve(tc.Context, input.Query, profile, domain).Render(), nil
		})
}
