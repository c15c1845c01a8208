package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/jagtap-suraj/sensai/pkg/transcript"
)

// File names written under each interview directory.
const (
	TranscriptText = "transcript.txt"
	TranscriptJSON = "transcript.json"
	FeedbackFile   = "feedback.md"
)

// Record is what gets archived for one interview.
type Record struct {
	ID       string
	Entries  []transcript.Entry
	Feedback string
}

// Archiver writes interview records to a FileStore.
type Archiver struct {
	store FileStore
}

// New creates an Archiver on top of store.
func New(store FileStore) *Archiver {
	return &Archiver{store: store}
}

// Save writes the transcript and feedback for rec. Feedback is skipped when
// empty. All files are attempted; the returned error joins every failure.
func (a *Archiver) Save(ctx context.Context, rec Record) error {
	if rec.ID == "" || strings.ContainsAny(rec.ID, "/\\") {
		return fmt.Errorf("archive: invalid id %q", rec.ID)
	}
	entries := rec.Entries
	if entries == nil {
		entries = []transcript.Entry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("archive: encode transcript: %w", err)
	}

	text := transcript.Format(rec.Entries)
	if text != "" {
		text += "\n"
	}
	files := []struct {
		name string
		body string
	}{
		{TranscriptText, text},
		{TranscriptJSON, string(data) + "\n"},
		{FeedbackFile, rec.Feedback},
	}

	var errs []error
	for _, f := range files {
		if f.name == FeedbackFile && f.body == "" {
			continue
		}
		if err := a.put(ctx, rec.ID+"/"+f.name, f.body); err != nil {
			errs = append(errs, err)
			continue
		}
		slog.Debug("archive: saved", "id", rec.ID, "file", f.name, "bytes", len(f.body))
	}
	return errors.Join(errs...)
}

// Load reads a previously saved record. A missing feedback file leaves
// Feedback empty.
func (a *Archiver) Load(ctx context.Context, id string) (*Record, error) {
	data, err := a.get(ctx, id+"/"+TranscriptJSON)
	if err != nil {
		return nil, err
	}
	rec := &Record{ID: id}
	if err := json.Unmarshal(data, &rec.Entries); err != nil {
		return nil, fmt.Errorf("archive: decode %s/%s: %w", id, TranscriptJSON, err)
	}
	ok, err := a.store.Exists(ctx, id+"/"+FeedbackFile)
	if err != nil {
		return nil, err
	}
	if ok {
		fb, err := a.get(ctx, id+"/"+FeedbackFile)
		if err != nil {
			return nil, err
		}
		rec.Feedback = string(fb)
	}
	return rec, nil
}

// Delete removes every archived file for id.
func (a *Archiver) Delete(ctx context.Context, id string) error {
	var errs []error
	for _, name := range []string{TranscriptText, TranscriptJSON, FeedbackFile} {
		if err := a.store.Delete(ctx, id+"/"+name); err != nil {
			errs = append(errs, fmt.Errorf("archive: delete %s/%s: %w", id, name, err))
		}
	}
	return errors.Join(errs...)
}

func (a *Archiver) put(ctx context.Context, path, body string) error {
	w, err := a.store.Write(ctx, path)
	if err != nil {
		return fmt.Errorf("archive: write %s: %w", path, err)
	}
	if _, err := io.WriteString(w, body); err != nil {
		w.Close()
		return fmt.Errorf("archive: write %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("archive: write %s: %w", path, err)
	}
	return nil
}

func (a *Archiver) get(ctx context.Context, path string) ([]byte, error) {
	r, err := a.store.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
