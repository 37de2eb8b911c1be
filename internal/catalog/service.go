// Package catalog keeps the document table's data source in sync with the
// archive server.
package catalog

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mmcdole/archivist/internal/domain"
	"github.com/mmcdole/archivist/internal/view"
)

const defaultChunkSize = 100

// Fetcher loads every document matching a query (implemented by archive.Client)
type Fetcher interface {
	FetchAllDocuments(ctx context.Context, q domain.DocumentQuery, chunkSize int, observer domain.FetchObserver) ([]domain.Document, error)
}

// Options configures a Service
type Options struct {
	PageSize  int
	Sort      SortSelection
	Query     domain.DocumentQuery // server-side narrowing applied on refresh
	ChunkSize int
}

// Service owns the document view and refreshes it from the server
type Service struct {
	fetcher Fetcher
	source  *view.Source[domain.Document]
	logger  *slog.Logger

	mu        sync.Mutex
	filter    string
	sort      SortSelection
	query     domain.DocumentQuery
	chunkSize int
}

// NewService creates a catalog with an empty document set
func NewService(fetcher Fetcher, logger *slog.Logger, opts Options) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.PageSize <= 0 {
		opts.PageSize = view.DefaultPageSize
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = defaultChunkSize
	}

	s := &Service{
		fetcher:   fetcher,
		source:    view.NewSource[domain.Document](),
		logger:    logger,
		query:     opts.Query,
		chunkSize: opts.ChunkSize,
	}
	if err := s.source.SetPage(0, opts.PageSize); err != nil {
		return nil, err
	}
	s.SetSort(opts.Sort)
	return s, nil
}

// Source returns the view the table renders from
func (s *Service) Source() *view.Source[domain.Document] {
	return s.source
}

// Refresh fetches all documents and replaces the record set. On error the
// previous records stay in place.
func (s *Service) Refresh(ctx context.Context, observer domain.FetchObserver) (int, error) {
	s.mu.Lock()
	q, chunk := s.query, s.chunkSize
	s.mu.Unlock()

	docs, err := s.fetcher.FetchAllDocuments(ctx, q, chunk, observer)
	if err != nil {
		s.logger.Error("failed to refresh documents", "error", err)
		return 0, err
	}

	s.source.SetRecords(docs)
	s.logger.Info("loaded documents", "count", len(docs))
	return len(docs), nil
}

// SetFilter applies a filter-bar query (see FilterQuery)
func (s *Service) SetFilter(query string) {
	s.mu.Lock()
	s.filter = query
	s.mu.Unlock()

	s.source.SetFilter(FilterQuery(query))
}

// Filter returns the active filter-bar query
func (s *Service) Filter() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

// SetSort applies a sort selection
func (s *Service) SetSort(sel SortSelection) {
	if sel.Field == SortDefault {
		sel.Direction = view.None
	}

	s.mu.Lock()
	s.sort = sel
	s.mu.Unlock()

	s.source.SetSort(sel.Field.Compare(), sel.Direction)
}

// Sort returns the active sort selection
func (s *Service) Sort() SortSelection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sort
}
