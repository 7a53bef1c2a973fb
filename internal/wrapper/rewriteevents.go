package wrapper

import (
	"os"
	"path/filepath"
	"time"

	"github.com/git-ai-oss/gitai/internal/attribution"
	"github.com/git-ai-oss/gitai/internal/giterrors"
	"github.com/git-ai-oss/gitai/internal/jsonutil"
	"github.com/git-ai-oss/gitai/internal/notes"
	"github.com/git-ai-oss/gitai/internal/paths"
)

// recordRewriteEvent appends one record to the rewrite event log
// (.git/gitai/rewrite-events.jsonl), the append-only ledger classify.go
// consults before falling back to topology inspection (spec.md §4.4).
func recordRewriteEvent(kind attribution.RewriteEventKind) error {
	stateDir, err := paths.GitaiStateDir()
	if err != nil {
		return err
	}

	event := attribution.RewriteEvent{Kind: kind, Timestamp: time.Now().UTC()}
	line, err := jsonutil.MarshalCompact(event)
	if err != nil {
		return giterrors.Wrap(giterrors.KindCorruptLog, "encoding rewrite event", err)
	}

	f, err := os.OpenFile(filepath.Join(stateDir, paths.RewriteEventsLog), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return giterrors.Wrap(giterrors.KindCorruptLog, "opening rewrite event log", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return giterrors.Wrap(giterrors.KindCorruptLog, "appending rewrite event", err)
	}
	return nil
}

// fetchNotes implements spec.md §4.7's fetch/pull/clone post-command hook:
// absorb the remote's authorship notes via the sync protocol's merge-union
// fetch. ErrNotFound (no notes ref on the remote yet) is not an error worth
// surfacing here -- there is simply nothing to absorb.
func (p *Pipeline) fetchNotes() error {
	if err := notes.Fetch(p.RemoteName); err != nil && err != notes.ErrNotFound {
		return err
	}
	return nil
}

// pushNotes implements spec.md §4.7's push post-command hook.
func (p *Pipeline) pushNotes() error {
	return notes.Push(p.RemoteName)
}
