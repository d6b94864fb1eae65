// Package audit provides the append-only per-run ledger. One record is
// written for every processed item, skips and errors included, in processing
// order; records are never rewritten.
package audit

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/gobeaver/shelfkit/mover"
)

// Record is one ledger row. Created once, appended, never mutated.
type Record struct {
	Timestamp   time.Time
	SourcePath  string
	Destination string
	Action      mover.Action
	Status      string // "ok" or "error"
	Error       string
	Tags        map[string]string
}

// NewRecord builds a ledger record from a move outcome.
func NewRecord(out mover.Outcome, tags map[string]string) Record {
	rec := Record{
		Timestamp:   time.Now().UTC(),
		SourcePath:  out.Source,
		Destination: out.Destination,
		Action:      out.Action,
		Status:      "ok",
		Tags:        tags,
	}
	if out.Err != nil {
		rec.Status = "error"
		rec.Error = out.Reason
		if rec.Error == "" {
			rec.Error = out.Err.Error()
		}
		// A failure before resolution leaves no destination to report.
	}
	return rec
}

var columns = []string{
	"timestamp", "source_path", "destination_path", "action", "status", "error", "tags_json",
}

// Ledger appends records to a CSV file. Each run gets its own ledger, keyed
// by a run ID, so a run can be reviewed without inspecting the store.
type Ledger struct {
	runID string
	path  string
	f     io.WriteCloser
	w     *csv.Writer
}

// NewLedger opens a ledger at path and writes the header row. An empty path
// derives a per-run filename from the run ID in the working directory.
func NewLedger(path string) (*Ledger, error) {
	runID := uuid.NewString()
	if path == "" {
		path = fmt.Sprintf("organize-audit-%s.csv", runID)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create audit ledger: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(columns); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write ledger header: %w", err)
	}

	return &Ledger{runID: runID, path: path, f: f, w: w}, nil
}

// RunID returns the identifier of this invocation.
func (l *Ledger) RunID() string { return l.runID }

// Path returns the ledger file location.
func (l *Ledger) Path() string { return l.path }

// Append writes one record and flushes it, so a crashed run still leaves a
// complete ledger of everything processed so far.
func (l *Ledger) Append(rec Record) error {
	tagsJSON := "{}"
	if len(rec.Tags) > 0 {
		b, err := json.Marshal(rec.Tags)
		if err != nil {
			return fmt.Errorf("failed to serialize tags: %w", err)
		}
		tagsJSON = string(b)
	}

	row := []string{
		rec.Timestamp.Format(time.RFC3339),
		rec.SourcePath,
		rec.Destination,
		string(rec.Action),
		rec.Status,
		rec.Error,
		tagsJSON,
	}
	if err := l.w.Write(row); err != nil {
		return fmt.Errorf("failed to append audit record: %w", err)
	}
	l.w.Flush()
	return l.w.Error()
}

// Close flushes and closes the ledger file.
func (l *Ledger) Close() error {
	l.w.Flush()
	if err := l.w.Error(); err != nil {
		l.f.Close()
		return err
	}
	return l.f.Close()
}

// Summary tallies a run's outcomes by action type.
type Summary struct {
	Processed int
	Failed    int
	ByAction  map[mover.Action]int
}

// NewSummary returns an empty summary.
func NewSummary() *Summary {
	return &Summary{ByAction: make(map[mover.Action]int)}
}

// Add counts one record.
func (s *Summary) Add(rec Record) {
	s.Processed++
	if rec.Status == "error" {
		s.Failed++
	}
	s.ByAction[rec.Action]++
}

// String renders the per-run tally for the console summary.
func (s *Summary) String() string {
	out := fmt.Sprintf("%d items processed, %d failed", s.Processed, s.Failed)
	for _, a := range []mover.Action{
		mover.ActionDryRun, mover.ActionTagOnly, mover.ActionRename,
		mover.ActionCopyDelete, mover.ActionSkip,
	} {
		if n := s.ByAction[a]; n > 0 {
			out += fmt.Sprintf(", %s=%d", a, n)
		}
	}
	return out
}
