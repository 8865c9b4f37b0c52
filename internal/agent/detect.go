package agent

import (
	"sort"
	"unicode"

	"github.com/clovis-labs/rhassist/internal/knowledge"
)

// detectProfile scans a message for a profile mention, accent and case
// insensitive. Longer values are tried first so "non-cadre" is never
// misread as "cadre".
func detectProfile(message string) (knowledge.Profile, bool) {
	folded := knowledge.Fold(message)
	profiles := knowledge.Profiles()
	sort.Slice(profiles, func(i, j int) bool {
		return len(knowledge.Fold(string(profiles[i]))) > len(knowledge.Fold(string(profiles[j])))
	})
	for _, p := range profiles {
		if containsWord(folded, knowledge.Fold(string(p))) {
			return p, true
		}
	}
	return "", false
}

// domainKeywords maps common HR vocabulary to a domain when no domain
// value appears literally in the message. Entries are in folded form;
// first match wins.
var domainKeywords = []struct {
	word   string
	domain knowledge.Domain
}{
	{"rtt", knowledge.DomainConges},
	{"vacances", knowledge.DomainConges},
	{"absence", knowledge.DomainConges},
	{"salaire", knowledge.DomainPaie},
	{"remuneration", knowledge.DomainPaie},
	{"prime", knowledge.DomainPaie},
	{"bulletin", knowledge.DomainPaie},
	{"heures supplementaires", knowledge.DomainPaie},
	{"navigo", knowledge.DomainTransport},
	{"abonnement", knowledge.DomainTransport},
	{"velo", knowledge.DomainTransport},
	{"resto", knowledge.DomainAvantages},
	{"restaurant", knowledge.DomainAvantages},
	{"mutuelle", knowledge.DomainAvantages},
	{"cse", knowledge.DomainAvantages},
	{"horaires", knowledge.DomainTempsTravail},
	{"forfait", knowledge.DomainTempsTravail},
}

// detectDomain scans a message for a domain mention. Domain values are
// tried first, then the keyword table.
func detectDomain(message string) (knowledge.Domain, bool) {
	folded := knowledge.Fold(message)
	domains := knowledge.Domains()
	sort.Slice(domains, func(i, j int) bool {
		return len(knowledge.Fold(string(domains[i]))) > len(knowledge.Fold(string(domains[j])))
	})
	for _, d := range domains {
		if containsWord(folded, knowledge.Fold(string(d))) {
			return d, true
		}
	}
	for _, kw := range domainKeywords {
		if containsWord(folded, kw.word) {
			return kw.domain, true
		}
	}
	return "", false
}

// containsWord reports whether needle occurs in haystack bounded by
// non-alphanumeric runes, so "cdi" does not match inside "cdiscount".
func containsWord(haystack, needle string) bool {
	if needle == "" {
		return false
	}
	runes := []rune(haystack)
	target := []rune(needle)
	for i := 0; i+len(target) <= len(runes); i++ {
		if string(runes[i:i+len(target)]) != needle {
			continue
		}
		if i > 0 && isWordRune(runes[i-1]) {
			continue
		}
		if end := i + len(target); end < len(runes) && isWordRune(runes[end]) {
			continue
		}
		return true
	}
	return false
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
