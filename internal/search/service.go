package search

import (
	"context"
	"log"
)

// Service routes searches to Meilisearch when it is healthy and falls back
// to PostgreSQL FTS otherwise. Indexing is best-effort: a failed index write
// never fails the caller's request, since the FTS fallback always has the
// authoritative rows.
type Service struct {
	meili *Meili
	pgfts *PgFTS
}

func NewService(meili *Meili, pgfts *PgFTS) *Service {
	return &Service{meili: meili, pgfts: pgfts}
}

func (s *Service) Search(q Query) (Response, error) {
	backend := Searcher(s.pgfts)
	if s.meili != nil && s.meili.Healthy() {
		backend = s.meili
	}

	results, total, err := backend.Search(q)
	if err != nil && backend != Searcher(s.pgfts) {
		log.Printf("search: meilisearch failed, falling back to postgres: %v", err)
		results, total, err = s.pgfts.Search(q)
	}
	if err != nil {
		return Response{}, err
	}
	if results == nil {
		results = []Result{}
	}
	return Response{Results: results, Total: total, Query: q.Text}, nil
}

// IndexDocument pushes a document into Meilisearch if configured.
func (s *Service) IndexDocument(doc DocumentRecord) {
	if s.meili == nil {
		return
	}
	if err := s.meili.IndexDocument(doc); err != nil {
		log.Printf("search: index document %s: %v", doc.ID, err)
	}
}

// DeleteDocument removes a document from Meilisearch if configured.
func (s *Service) DeleteDocument(id string) {
	if s.meili == nil {
		return
	}
	if err := s.meili.DeleteDocument(id); err != nil {
		log.Printf("search: delete document %s: %v", id, err)
	}
}

// Reindex bulk-loads every stored document into Meilisearch. Called once at
// startup when Meilisearch is configured.
func (s *Service) Reindex(ctx context.Context) error {
	if s.meili == nil || !s.meili.Healthy() {
		return nil
	}
	documents, err := s.pgfts.LoadAllRecords(ctx)
	if err != nil {
		return err
	}
	return s.meili.IndexDocuments(documents)
}
