// Package knowledge loads and validates the HR question/answer corpus.
//
// The corpus is a UTF-8 CSV snapshot with one row per question/answer pair,
// scoped by employee profile (contract type) and HR domain. Rows are
// validated at load time against the closed Profile and Domain enums and
// projected into documents for the vector index. The corpus is immutable
// after loading; changes require a full reload.
package knowledge

import (
	"errors"
	"fmt"
	"strings"
)

// Profile is an employee contract-type category. It is a closed enum: values
// outside the declared constants are rejected at the data boundary, never at
// query time.
type Profile string

// Profile values, matching the corpus exactly.
const (
	ProfileCDI       Profile = "CDI"
	ProfileCDD       Profile = "CDD"
	ProfileInterim   Profile = "Intérim"
	ProfileCadre     Profile = "Cadre"
	ProfileNonCadre  Profile = "Non-Cadre"
	ProfileStagiaire Profile = "Stagiaire"
)

// Domain is an HR topic category, used as an optional retrieval filter.
type Domain string

// Domain values, matching the corpus exactly.
const (
	DomainConges       Domain = "Congés"
	DomainAvantages    Domain = "Avantages"
	DomainTransport    Domain = "Transport"
	DomainTempsTravail Domain = "Temps de travail"
	DomainPaie         Domain = "Paie"
)

// Sentinel errors for enum parsing. Check with errors.Is.
var (
	ErrUnknownProfile = errors.New("unknown profile")
	ErrUnknownDomain  = errors.New("unknown domain")
)

// Metadata keys attached to indexed documents. They are the filter keys for
// vector search and match the corpus column names.
const (
	MetaProfile  = "profil"
	MetaDomain   = "domaine"
	MetaRecordID = "question_id"
)

// Record is one validated row of ground-truth HR knowledge.
// Question and Answer are trimmed and non-empty.
type Record struct {
	ID       int
	Profile  Profile
	Domain   Domain
	Question string
	Answer   string
}

// Document is a unit of retrievable content, derived 1:1 from a Record.
// Metadata carries the categorical fields used for exact-match filtering.
type Document struct {
	ID       string
	Content  string
	Metadata map[string]string
}

// Profiles returns all valid profile values in declaration order.
func Profiles() []Profile {
	return []Profile{
		ProfileCDI, ProfileCDD, ProfileInterim,
		ProfileCadre, ProfileNonCadre, ProfileStagiaire,
	}
}

// Domains returns all valid domain values in declaration order.
func Domains() []Domain {
	return []Domain{
		DomainConges, DomainAvantages, DomainTransport,
		DomainTempsTravail, DomainPaie,
	}
}

// ProfileNames returns all valid profile values as strings.
func ProfileNames() []string {
	ps := Profiles()
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = string(p)
	}
	return names
}

// DomainNames returns all valid domain values as strings.
func DomainNames() []string {
	ds := Domains()
	names := make([]string, len(ds))
	for i, d := range ds {
		names[i] = string(d)
	}
	return names
}

// ParseProfile parses a profile value. Matching is case-insensitive and
// tolerant of missing accents and surrounding whitespace ("interim" parses
// to Intérim). Returns ErrUnknownProfile for anything outside the enum.
func ParseProfile(s string) (Profile, error) {
	key := Fold(s)
	for _, p := range Profiles() {
		if key == Fold(string(p)) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownProfile, s)
}

// ParseDomain parses a domain value with the same tolerance as ParseProfile.
func ParseDomain(s string) (Domain, error) {
	key := Fold(s)
	for _, d := range Domains() {
		if key == Fold(string(d)) {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDomain, s)
}

// accentReplacer strips the accented characters that occur in French HR
// vocabulary. Enough for enum folding and keyword scans; not a general
// Unicode normalizer.
var accentReplacer = strings.NewReplacer(
	"à", "a", "â", "a", "ä", "a",
	"é", "e", "è", "e", "ê", "e", "ë", "e",
	"î", "i", "ï", "i",
	"ô", "o", "ö", "o",
	"ù", "u", "û", "u", "ü", "u",
	"ç", "c",
)

// Fold normalizes a string for tolerant comparison: trimmed, lower-cased,
// accents stripped.
func Fold(s string) string {
	return accentReplacer.Replace(strings.ToLower(strings.TrimSpace(s)))
}
