package ingest

import (
	"context"
	"testing"

	"studyquiz/internal/apperr"
	"studyquiz/internal/chunker"
	"studyquiz/internal/retrieval"
	"studyquiz/internal/store"
)

func TestIngestIndexesChunks(t *testing.T) {
	docs := store.NewDocuments(chunker.PolicyParagraph, chunker.New(chunker.PolicyParagraph, 30, 2))
	index := retrieval.NewIndex(0, nil)
	svc := NewService(docs, index, nil)

	doc, err := svc.Ingest(context.Background(), "Enzymes speed up reactions.\n\nPlate tectonics moves continents.", "science.pdf")
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if doc.ChunkCount != 2 || index.Len() != 2 {
		t.Fatalf("chunks: doc=%d index=%d", doc.ChunkCount, index.Len())
	}
	if _, err := docs.Get(doc.ID); err != nil {
		t.Fatalf("document not stored: %v", err)
	}
	got := index.Query("tectonics", 1)
	if len(got) != 1 || got[0].DocumentID != doc.ID {
		t.Fatalf("query: got=%+v", got)
	}
}

func TestIngestRejectsBlankText(t *testing.T) {
	index := retrieval.NewIndex(0, nil)
	svc := NewService(store.NewDocuments(chunker.PolicyParagraph, nil), index, nil)
	_, err := svc.Ingest(context.Background(), " \n\t ", "empty.pdf")
	if !apperr.Is(err, apperr.KindInvalidInput) {
		t.Fatalf("want invalid input got=%v", err)
	}
	if index.Len() != 0 {
		t.Fatalf("blank text was indexed")
	}
}

func TestIngestHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc := NewService(store.NewDocuments(chunker.PolicyParagraph, nil), retrieval.NewIndex(0, nil), nil)
	if _, err := svc.Ingest(ctx, "text", "a.pdf"); err == nil {
		t.Fatalf("expected context error")
	}
}
