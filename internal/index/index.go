// Package index provides the semantic search layer over the HR corpus.
//
// It wraps an in-process chromem-go vector store: documents are embedded
// once at build time, snapshots are persisted to a directory, and queries
// run metadata-filtered nearest-neighbor search. The index is immutable
// after a build; refreshing the corpus means rebuilding from scratch.
package index

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/philippgille/chromem-go"

	"github.com/clovis-labs/rhassist/internal/knowledge"
	"github.com/clovis-labs/rhassist/internal/log"
)

// Sentinel errors. Check with errors.Is.
var (
	// ErrNotReady indicates Search was called before a build or restore.
	ErrNotReady = errors.New("index not ready")

	// ErrNoArtifact indicates Restore found no snapshot on disk.
	ErrNoArtifact = errors.New("index artifact not found")

	// ErrCorrupt indicates the on-disk snapshot exists but cannot be
	// read back. The operator must rebuild with --force.
	ErrCorrupt = errors.New("index artifact corrupt")

	// ErrEmbedding indicates the query embedding call failed.
	ErrEmbedding = errors.New("query embedding failed")

	// ErrStore indicates the underlying vector store failed.
	ErrStore = errors.New("vector store failure")
)

const (
	collectionName = "rh_corpus"
	artifactName   = "index.gob"
	lockName       = "index.lock"

	// buildConcurrency bounds parallel embedding calls during a corpus
	// build. Kept low to stay inside embedding API rate limits.
	buildConcurrency = 4
)

// Result is one search hit with its similarity score in [0, 1].
type Result struct {
	Document   knowledge.Document
	Similarity float32
}

// Index is a persistent vector index over the HR corpus. All methods are
// safe for concurrent use; builds and restores take the write lock, queries
// share the read lock.
type Index struct {
	dir    string
	embed  chromem.EmbeddingFunc
	logger log.Logger

	mu    sync.RWMutex
	db    *chromem.DB
	coll  *chromem.Collection
	ready bool
}

// New creates an index rooted at dir. The directory is created on first
// Persist; New itself does no I/O.
func New(dir string, embed chromem.EmbeddingFunc, logger log.Logger) *Index {
	return &Index{
		dir:    dir,
		embed:  embed,
		logger: logger.With("component", "index"),
	}
}

// BuildFrom embeds docs into a fresh store, replacing any previous content.
// The build is atomic from the reader's perspective: queries see the old
// index until the new one is complete.
func (i *Index) BuildFrom(ctx context.Context, docs []knowledge.Document) error {
	if len(docs) == 0 {
		return fmt.Errorf("%w: no documents to index", ErrStore)
	}

	db := chromem.NewDB()
	coll, err := db.CreateCollection(collectionName, nil, i.embed)
	if err != nil {
		return fmt.Errorf("%w: create collection: %v", ErrStore, err)
	}

	cdocs := make([]chromem.Document, len(docs))
	for n, d := range docs {
		cdocs[n] = chromem.Document{
			ID:       d.ID,
			Content:  d.Content,
			Metadata: d.Metadata,
		}
	}
	if err := coll.AddDocuments(ctx, cdocs, buildConcurrency); err != nil {
		return fmt.Errorf("%w: add documents: %v", ErrStore, err)
	}

	i.mu.Lock()
	i.db = db
	i.coll = coll
	i.ready = true
	i.mu.Unlock()

	i.logger.Info("index built", "documents", len(docs))
	return nil
}

// Persist writes the current index snapshot to disk.
func (i *Index) Persist() error {
	i.mu.RLock()
	defer i.mu.RUnlock()
	if !i.ready {
		return ErrNotReady
	}
	if err := os.MkdirAll(i.dir, 0o755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}
	path := filepath.Join(i.dir, artifactName)
	if err := i.db.Export(path, true, ""); err != nil {
		return fmt.Errorf("export index: %w", err)
	}
	i.logger.Info("index persisted", "path", path)
	return nil
}

// Restore loads a previously persisted snapshot. A missing artifact returns
// ErrNoArtifact; an unreadable one returns ErrCorrupt. Restore never
// rebuilds silently.
func (i *Index) Restore() error {
	path := filepath.Join(i.dir, artifactName)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNoArtifact, path)
		}
		return fmt.Errorf("stat index artifact: %w", err)
	}

	db := chromem.NewDB()
	if err := db.Import(path, ""); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorrupt, path, err)
	}
	coll := db.GetCollection(collectionName, i.embed)
	if coll == nil {
		return fmt.Errorf("%w: %s: collection %q missing", ErrCorrupt, path, collectionName)
	}

	i.mu.Lock()
	i.db = db
	i.coll = coll
	i.ready = true
	i.mu.Unlock()

	i.logger.Info("index restored", "path", path, "documents", coll.Count())
	return nil
}

// LoadOrBuild restores the index from disk if a snapshot exists, otherwise
// builds one from the documents returned by load and persists it. With
// force, the snapshot is ignored and a fresh build always runs. A file lock
// on the index directory keeps concurrent processes from building twice.
func (i *Index) LoadOrBuild(ctx context.Context, load func(ctx context.Context) ([]knowledge.Document, error), force bool) error {
	if err := os.MkdirAll(i.dir, 0o755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}
	lock := flock.New(filepath.Join(i.dir, lockName))
	locked, err := lock.TryLockContext(ctx, 100*time.Millisecond)
	if err != nil {
		return fmt.Errorf("lock index dir: %w", err)
	}
	if !locked {
		return fmt.Errorf("lock index dir: not acquired")
	}
	defer lock.Unlock()

	if !force {
		err := i.Restore()
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrNoArtifact) {
			return err
		}
		i.logger.Info("no index snapshot, building from corpus")
	} else {
		i.logger.Info("forced rebuild requested")
	}

	docs, err := load(ctx)
	if err != nil {
		return fmt.Errorf("load corpus: %w", err)
	}
	if err := i.BuildFrom(ctx, docs); err != nil {
		return err
	}
	return i.Persist()
}

// Search returns the k nearest documents to query, optionally restricted to
// documents whose metadata matches every key in filter exactly. Fewer than
// k results may come back when the filtered corpus is small; an empty index
// or a filter matching nothing yields an empty slice, not an error.
func (i *Index) Search(ctx context.Context, query string, k int, filter map[string]string) ([]Result, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	if !i.ready {
		return nil, ErrNotReady
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", ErrStore)
	}
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", ErrStore, k)
	}

	total := i.coll.Count()
	if total == 0 {
		return []Result{}, nil
	}
	if k > total {
		k = total
	}

	embedding, err := i.embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbedding, err)
	}

	hits, err := i.coll.QueryEmbedding(ctx, embedding, k, filter, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}

	results := make([]Result, len(hits))
	for n, h := range hits {
		results[n] = Result{
			Document: knowledge.Document{
				ID:       h.ID,
				Content:  h.Content,
				Metadata: h.Metadata,
			},
			Similarity: h.Similarity,
		}
	}
	return results, nil
}

// Ready reports whether the index can serve queries.
func (i *Index) Ready() bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.ready
}

// Count returns the number of indexed documents, or zero before readiness.
func (i *Index) Count() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	if !i.ready {
		return 0
	}
	return i.coll.Count()
}
