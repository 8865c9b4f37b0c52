package knowledge

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/clovis-labs/rhassist/internal/log"
)

// Sentinel errors for corpus loading. Check with errors.Is.
var (
	// ErrSourceNotFound indicates the CSV file does not exist or cannot
	// be opened.
	ErrSourceNotFound = errors.New("knowledge source not found")

	// ErrEmptyData indicates the file exists but yields zero valid records.
	ErrEmptyData = errors.New("knowledge source is empty")

	// ErrFormatInvalid indicates the header is wrong or too many rows were
	// rejected for the corpus to be trusted.
	ErrFormatInvalid = errors.New("knowledge source format invalid")

	// ErrNotLoaded indicates Documents or Stats was called before a
	// successful Load.
	ErrNotLoaded = errors.New("knowledge not loaded")
)

// expectedHeader is the required CSV header, in order.
var expectedHeader = []string{"question_id", "profil", "domaine", "question", "reponse"}

// maxRejectedPercent is the tolerated share of invalid rows. Above this the
// whole corpus is rejected rather than silently thinned out.
const maxRejectedPercent = 10

// RowError describes one rejected CSV row. Line is 1-based and counts the
// header, so the first data row is line 2.
type RowError struct {
	Line   int
	Reason string
}

func (e RowError) String() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

// Stats summarizes a loaded corpus.
type Stats struct {
	Total     int             `json:"total"`
	Rejected  int             `json:"rejected"`
	ByProfile map[Profile]int `json:"by_profile"`
	ByDomain  map[Domain]int  `json:"by_domain"`
}

// Loader reads and validates the HR corpus from a CSV file. It is not safe
// for concurrent use during Load; once loaded, the accessors are read-only.
type Loader struct {
	path    string
	logger  log.Logger
	records []Record
	stats   Stats
	loaded  bool
}

// NewLoader creates a loader for the CSV file at path.
func NewLoader(path string, logger log.Logger) *Loader {
	return &Loader{
		path:   path,
		logger: logger.With("component", "knowledge"),
	}
}

// Load reads, parses and validates the corpus. It returns the valid records
// together with the per-row rejections. Loading is all-or-nothing: on error
// the loader keeps no partial state and a previous successful load stays
// intact. Calling Load again re-reads the file from scratch.
func (l *Loader) Load() ([]Record, []RowError, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, fmt.Errorf("%w: %s", ErrSourceNotFound, l.path)
		}
		return nil, nil, fmt.Errorf("%w: %s: %v", ErrSourceNotFound, l.path, err)
	}
	defer f.Close()

	records, rowErrs, err := l.parse(f)
	if err != nil {
		return nil, rowErrs, err
	}

	l.records = records
	l.stats = buildStats(records, len(rowErrs))
	l.loaded = true

	l.logger.Info("knowledge loaded",
		"path", l.path,
		"records", len(records),
		"rejected", len(rowErrs))
	for _, re := range rowErrs {
		l.logger.Warn("row rejected", "line", re.Line, "reason", re.Reason)
	}

	return records, rowErrs, nil
}

func (l *Loader) parse(r io.Reader) ([]Record, []RowError, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil, fmt.Errorf("%w: missing header", ErrEmptyData)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrFormatInvalid, err)
	}
	if err := checkHeader(header); err != nil {
		return nil, nil, err
	}

	var (
		records []Record
		rowErrs []RowError
		total   int
	)
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		total++
		if err != nil {
			rowErrs = append(rowErrs, RowError{Line: line, Reason: err.Error()})
			continue
		}
		rec, reason := parseRow(row, total)
		if reason != "" {
			rowErrs = append(rowErrs, RowError{Line: line, Reason: reason})
			continue
		}
		records = append(records, rec)
	}

	if total == 0 {
		return nil, nil, fmt.Errorf("%w: no data rows", ErrEmptyData)
	}
	if len(records) == 0 {
		return nil, rowErrs, fmt.Errorf("%w: all %d rows rejected", ErrFormatInvalid, total)
	}
	if len(rowErrs)*100 > total*maxRejectedPercent {
		return nil, rowErrs, fmt.Errorf("%w: %d of %d rows rejected, above %d%% threshold",
			ErrFormatInvalid, len(rowErrs), total, maxRejectedPercent)
	}

	return records, rowErrs, nil
}

func checkHeader(header []string) error {
	if len(header) < len(expectedHeader) {
		return fmt.Errorf("%w: header has %d columns, want %d",
			ErrFormatInvalid, len(header), len(expectedHeader))
	}
	for i, want := range expectedHeader {
		got := strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
		if !strings.EqualFold(got, want) {
			return fmt.Errorf("%w: column %d is %q, want %q", ErrFormatInvalid, i+1, got, want)
		}
	}
	return nil
}

// parseRow validates one data row. position is the 1-based row position,
// used as the record ID when question_id is absent or not numeric.
func parseRow(row []string, position int) (Record, string) {
	if len(row) < len(expectedHeader) {
		return Record{}, fmt.Sprintf("has %d fields, want %d", len(row), len(expectedHeader))
	}

	profile, err := ParseProfile(row[1])
	if err != nil {
		return Record{}, fmt.Sprintf("profil %q not recognized", strings.TrimSpace(row[1]))
	}
	domain, err := ParseDomain(row[2])
	if err != nil {
		return Record{}, fmt.Sprintf("domaine %q not recognized", strings.TrimSpace(row[2]))
	}

	question := strings.TrimSpace(row[3])
	if question == "" {
		return Record{}, "empty question"
	}
	answer := strings.TrimSpace(row[4])
	if answer == "" {
		return Record{}, "empty reponse"
	}

	id, err := strconv.Atoi(strings.TrimSpace(row[0]))
	if err != nil || id <= 0 {
		id = position
	}

	return Record{
		ID:       id,
		Profile:  profile,
		Domain:   domain,
		Question: question,
		Answer:   answer,
	}, ""
}

func buildStats(records []Record, rejected int) Stats {
	s := Stats{
		Total:     len(records),
		Rejected:  rejected,
		ByProfile: make(map[Profile]int),
		ByDomain:  make(map[Domain]int),
	}
	for _, r := range records {
		s.ByProfile[r.Profile]++
		s.ByDomain[r.Domain]++
	}
	return s
}

// Documents projects the loaded records into indexable documents. Each
// document embeds both the question and the answer so retrieval matches on
// either phrasing.
func (l *Loader) Documents() ([]Document, error) {
	if !l.loaded {
		return nil, ErrNotLoaded
	}
	docs := make([]Document, len(l.records))
	for i, r := range l.records {
		docs[i] = Document{
			ID:      fmt.Sprintf("rh:%d", r.ID),
			Content: fmt.Sprintf("Question: %s\nRéponse: %s", r.Question, r.Answer),
			Metadata: map[string]string{
				MetaProfile:  string(r.Profile),
				MetaDomain:   string(r.Domain),
				MetaRecordID: strconv.Itoa(r.ID),
			},
		}
	}
	return docs, nil
}

// Records returns the loaded records. Callers must not modify the slice.
func (l *Loader) Records() ([]Record, error) {
	if !l.loaded {
		return nil, ErrNotLoaded
	}
	return l.records, nil
}

// Stats returns corpus statistics from the last successful load.
func (l *Loader) Stats() (Stats, error) {
	if !l.loaded {
		return Stats{}, ErrNotLoaded
	}
	return l.stats, nil
}
