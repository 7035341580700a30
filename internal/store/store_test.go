package store

import (
	"sync"
	"testing"

	"studyquiz/internal/apperr"
	"studyquiz/internal/chunker"
	"studyquiz/internal/models"

	"github.com/google/uuid"
)

func TestDocumentsPutGet(t *testing.T) {
	docs := NewDocuments(chunker.PolicyParagraph, chunker.New(chunker.PolicyParagraph, 20, 2))
	doc := docs.Put("first paragraph here\n\nsecond paragraph there", "notes.pdf")

	if doc.ID == uuid.Nil {
		t.Fatalf("expected a fresh id")
	}
	if doc.ChunkCount != len(doc.Chunks) || doc.ChunkCount != 2 {
		t.Fatalf("chunk count: want=2 got=%d (%q)", doc.ChunkCount, doc.Chunks)
	}
	if doc.ChunkPolicy != "paragraph" {
		t.Fatalf("chunk policy: want=paragraph got=%q", doc.ChunkPolicy)
	}

	got, err := docs.Get(doc.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Filename != "notes.pdf" || got.FullText != doc.FullText {
		t.Fatalf("Get returned %+v", got)
	}
}

func TestDocumentsPutAssignsDistinctIDs(t *testing.T) {
	docs := NewDocuments(chunker.PolicyWords, nil)
	a := docs.Put("same text", "a")
	b := docs.Put("same text", "a")
	if a.ID == b.ID {
		t.Fatalf("expected distinct ids")
	}
	if docs.Len() != 2 {
		t.Fatalf("Len: want=2 got=%d", docs.Len())
	}
}

func TestDocumentsEmptyTextHasNoChunks(t *testing.T) {
	docs := NewDocuments(chunker.PolicyParagraph, nil)
	doc := docs.Put("", "empty.txt")
	if doc.Chunks == nil || len(doc.Chunks) != 0 {
		t.Fatalf("want empty non-nil chunks got=%v", doc.Chunks)
	}
}

func TestDocumentsGetUnknown(t *testing.T) {
	docs := NewDocuments(chunker.PolicyParagraph, nil)
	_, err := docs.Get(uuid.New())
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("want not found got=%v", err)
	}
}

func TestSessionsLifecycle(t *testing.T) {
	sessions := NewSessions()
	s := models.TestSession{TestID: uuid.New(), DocumentID: uuid.New()}

	if err := sessions.Create(s); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := sessions.Create(s); !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("duplicate Create: want conflict got=%v", err)
	}

	s.Submitted = true
	if err := sessions.Update(s); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, err := sessions.Get(s.TestID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !got.Submitted {
		t.Fatalf("update not visible")
	}

	if err := sessions.Update(models.TestSession{TestID: uuid.New()}); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("Update unknown: want not found got=%v", err)
	}
	if _, err := sessions.Get(uuid.New()); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("Get unknown: want not found got=%v", err)
	}
}

func TestPerformanceLogAppendOnly(t *testing.T) {
	log := NewPerformanceLog()
	topics := []string{"Algebra"}
	log.Append(models.PerformanceRecord{TestID: uuid.New(), Percentage: 50, Topics: topics})
	topics[0] = "mutated"

	all := log.All()
	if len(all) != 1 || all[0].Topics[0] != "Algebra" {
		t.Fatalf("record not isolated from caller: %+v", all)
	}
	all[0].Percentage = 99
	if log.All()[0].Percentage != 50 {
		t.Fatalf("snapshot shares storage with log")
	}
}

func TestPerformanceLogConcurrentAppend(t *testing.T) {
	log := NewPerformanceLog()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			log.Append(models.PerformanceRecord{TestID: uuid.New()})
		}()
	}
	wg.Wait()
	if log.Len() != 50 {
		t.Fatalf("Len: want=50 got=%d", log.Len())
	}
}
