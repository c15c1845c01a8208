package archive

import (
	"context"
	"strings"
	"testing"

	"github.com/jagtap-suraj/sensai/pkg/transcript"
)

var testEntries = []transcript.Entry{
	{Speaker: transcript.User, Text: "Hello, let's begin the interview.", Timestamp: 1000},
	{Speaker: transcript.Agent, Text: "Tell me about yourself.", Timestamp: 1001},
	{Speaker: transcript.User, Text: "I build backend systems.", Timestamp: 2500},
}

func TestArchiverSaveLocal(t *testing.T) {
	ctx := context.Background()
	store := newTestLocal(t)
	a := New(store)

	rec := Record{ID: "abc", Entries: testEntries, Feedback: "## Strengths\n- clear\n"}
	if err := a.Save(ctx, rec); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{TranscriptText, TranscriptJSON, FeedbackFile} {
		ok, err := store.Exists(ctx, "abc/"+name)
		if err != nil || !ok {
			t.Errorf("%s: exists = %v, %v", name, ok, err)
		}
	}

	got, err := a.Load(ctx, "abc")
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Entries) != len(testEntries) {
		t.Fatalf("entries = %d, want %d", len(got.Entries), len(testEntries))
	}
	for i := range testEntries {
		if got.Entries[i] != testEntries[i] {
			t.Errorf("entry %d = %+v, want %+v", i, got.Entries[i], testEntries[i])
		}
	}
	if got.Feedback != rec.Feedback {
		t.Errorf("feedback = %q", got.Feedback)
	}
}

func TestArchiverSaveS3(t *testing.T) {
	mock := newMockS3()
	a := New(NewS3(mock, "bucket", "sensai"))
	if err := a.Save(context.Background(), Record{ID: "abc", Entries: testEntries}); err != nil {
		t.Fatal(err)
	}
	keys := mock.keys()
	want := "User: Hello, let's begin the interview.\nInterviewer: Tell me about yourself.\nUser: I build backend systems.\n"
	if keys["sensai/abc/transcript.txt"] != want {
		t.Errorf("transcript.txt = %q, want %q", keys["sensai/abc/transcript.txt"], want)
	}
	if !strings.Contains(keys["sensai/abc/transcript.json"], `"speaker": "AGENT"`) {
		t.Errorf("transcript.json = %s", keys["sensai/abc/transcript.json"])
	}
	if _, ok := keys["sensai/abc/feedback.md"]; ok {
		t.Error("empty feedback should not be written")
	}
}

func TestArchiverSaveEmptyTranscript(t *testing.T) {
	mock := newMockS3()
	a := New(NewS3(mock, "bucket", ""))
	if err := a.Save(context.Background(), Record{ID: "empty"}); err != nil {
		t.Fatal(err)
	}
	if got := mock.keys()["empty/transcript.json"]; got != "[]\n" {
		t.Errorf("transcript.json = %q, want []", got)
	}
}

func TestArchiverInvalidID(t *testing.T) {
	a := New(newTestLocal(t))
	for _, id := range []string{"", "../x", `a\b`} {
		if err := a.Save(context.Background(), Record{ID: id}); err == nil {
			t.Errorf("Save(%q) succeeded", id)
		}
	}
}

func TestArchiverDelete(t *testing.T) {
	ctx := context.Background()
	store := newTestLocal(t)
	a := New(store)
	a.Save(ctx, Record{ID: "abc", Entries: testEntries, Feedback: "ok"})
	if err := a.Delete(ctx, "abc"); err != nil {
		t.Fatal(err)
	}
	if ok, _ := store.Exists(ctx, "abc/"+TranscriptJSON); ok {
		t.Error("transcript.json still present")
	}
	if _, err := a.Load(ctx, "abc"); err == nil {
		t.Error("Load after Delete succeeded")
	}
}
