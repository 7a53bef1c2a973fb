// Package promptstore implements the process-global prompt key-value store
// from spec.md §3: a durable, append-only record of every prompt hash this
// machine has seen, keyed by content hash, with "freshest wins" semantics
// when the same prompt hash is upserted more than once (e.g. a
// conversation grows between checkpoints). No teacher file implements a
// KV store of this shape; the storage engine (append-only JSONL replayed
// into an in-memory LRU) is modeled on the rest of the repo's
// append-only-log idiom, grounded on internal/workinglog and the
// teacher's checkpoint.jsonl persistence style.
package promptstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/git-ai-oss/gitai/internal/attribution"
	"github.com/git-ai-oss/gitai/internal/giterrors"
	"github.com/git-ai-oss/gitai/internal/jsonutil"
	"github.com/git-ai-oss/gitai/internal/paths"
)

// cacheSize bounds the in-memory LRU; the JSONL file on disk is the
// durable source of truth and has no size limit.
const cacheSize = 4096

// Store is a process-global (one per machine, shared across repositories
// and invocations) append-only prompt record store.
type Store struct {
	mu    sync.Mutex
	path  string
	cache *lru.Cache[string, attribution.PromptRecord]
}

var (
	globalMu    sync.Mutex
	globalStore *Store
)

// Global returns the process-wide store, opening it on first use.
func Global() (*Store, error) {
	globalMu.Lock()
	defer globalMu.Unlock()
	if globalStore != nil {
		return globalStore, nil
	}
	state, err := paths.GitaiStateDir()
	if err != nil {
		return nil, err
	}
	s, err := Open(filepath.Join(state, paths.PromptStoreFile))
	if err != nil {
		return nil, err
	}
	globalStore = s
	return s, nil
}

// Open loads (or creates) the prompt store backed by the JSONL file at path.
func Open(path string) (*Store, error) {
	cache, err := lru.New[string, attribution.PromptRecord](cacheSize)
	if err != nil {
		return nil, giterrors.Wrap(giterrors.KindExternalTool, "allocating prompt store cache", err)
	}
	s := &Store{path: path, cache: cache}
	if err := s.replay(); err != nil {
		return nil, err
	}
	return s, nil
}

// record is the on-disk wire shape: one upsert event per line.
type record struct {
	PromptHash string                    `json:"prompt_hash"`
	Record     attribution.PromptRecord  `json:"record"`
}

func (s *Store) replay() error {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return giterrors.Wrap(giterrors.KindExternalTool, "opening prompt store", err)
	}
	defer f.Close()

	acc := giterrors.NewAccumulator()
	err = jsonutil.EachLine(f, func(line []byte) error {
		var rec record
		if jerr := json.Unmarshal(line, &rec); jerr != nil {
			acc.Add(jerr)
			return nil // tolerate a corrupt trailing line; freshest-wins means we lose at most one update
		}
		s.cache.Add(rec.PromptHash, rec.Record)
		return nil
	})
	if err != nil {
		return giterrors.Wrap(giterrors.KindCorruptLog, "replaying prompt store", err)
	}
	return nil
}

// Get returns the freshest known record for promptHash, if any.
func (s *Store) Get(promptHash string) (attribution.PromptRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Get(promptHash)
}

// Upsert durably records rec under promptHash, overwriting any prior
// record for the same hash (freshest wins). Safe for concurrent use.
func (s *Store) Upsert(promptHash string, rec attribution.PromptRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendLocked(promptHash, rec)
}

// UpsertBatch durably records every (hash, record) pair as a single
// transactional append: either all lines land or none do, so a reader
// never observes half of a batch (spec.md §3 "transactional batch upsert").
func (s *Store) UpsertBatch(recs map[string]attribution.PromptRecord) error {
	if len(recs) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var buf []byte
	for hash, rec := range recs {
		line, err := jsonutil.MarshalCompact(record{PromptHash: hash, Record: rec})
		if err != nil {
			return giterrors.Wrap(giterrors.KindCorruptLog, "encoding prompt store batch", err)
		}
		buf = append(buf, line...)
		buf = append(buf, '\n')
	}

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return giterrors.Wrap(giterrors.KindExternalTool, "opening prompt store", err)
	}
	defer f.Close()
	if _, err := f.Write(buf); err != nil {
		return giterrors.Wrap(giterrors.KindExternalTool, "appending prompt store batch", err)
	}

	for hash, rec := range recs {
		s.cache.Add(hash, rec)
	}
	return nil
}

func (s *Store) appendLocked(promptHash string, rec attribution.PromptRecord) error {
	line, err := jsonutil.MarshalCompact(record{PromptHash: promptHash, Record: rec})
	if err != nil {
		return giterrors.Wrap(giterrors.KindCorruptLog, "encoding prompt record", err)
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return giterrors.Wrap(giterrors.KindExternalTool, "opening prompt store", err)
	}
	defer f.Close()
	if _, err := f.Write(append(line, '\n')); err != nil {
		return giterrors.Wrap(giterrors.KindExternalTool, "appending prompt record", err)
	}
	s.cache.Add(promptHash, rec)
	return nil
}

// Enricher returns a fusion.Enrich-shaped callback that refreshes a
// prompt record's transcript/model from this store, per spec.md §4.2's
// "tool/model refresh" step.
func (s *Store) Enricher() func(promptHash string) (attribution.PromptRecord, bool) {
	return s.Get
}

// ResetGlobalForTest clears the cached process-global store so tests can
// point it at a fresh temp directory via GITAI_STATE_DIR-style overrides.
func ResetGlobalForTest() {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalStore = nil
}
