package archive

import (
	"context"

	"github.com/mmcdole/archivist/internal/busy"
	"github.com/mmcdole/archivist/internal/domain"
)

const defaultChunkSize = 100

// fetchAll pages through a limit/offset endpoint until it returns a short
// page. The backend does not report a total, so a full final page costs one
// extra empty request.
func fetchAll[T any](
	ctx context.Context,
	fetch func(ctx context.Context, offset, limit int) ([]T, error),
	chunkSize int,
	observer domain.FetchObserver,
) ([]T, error) {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	if observer == nil {
		observer = domain.NoOpObserver{}
	}

	var all []T
	offset := 0

	for page := 1; ; page++ {
		select {
		case <-ctx.Done():
			observer.OnProgress(domain.FetchProgress{Loaded: len(all), Page: page - 1, Error: ctx.Err()})
			return nil, ctx.Err()
		default:
		}

		items, err := fetch(ctx, offset, chunkSize)
		if err != nil {
			observer.OnProgress(domain.FetchProgress{Loaded: len(all), Page: page, Error: err})
			return nil, err
		}

		all = append(all, items...)
		done := len(items) < chunkSize

		observer.OnProgress(domain.FetchProgress{Loaded: len(all), Page: page, Done: done})

		if done {
			break
		}
		offset += chunkSize
	}

	if all == nil {
		all = []T{}
	}
	return all, nil
}

// FetchAllDocuments pages through every document matching q. The whole
// walk is one busy operation, so the indicator does not blink between pages.
func (c *Client) FetchAllDocuments(ctx context.Context, q domain.DocumentQuery, chunkSize int, observer domain.FetchObserver) ([]domain.Document, error) {
	return busy.Wrap(ctx, c.busy, func(ctx context.Context) ([]domain.Document, error) {
		return fetchAll(ctx, func(ctx context.Context, offset, limit int) ([]domain.Document, error) {
			page := q
			page.Offset = q.Offset + offset
			page.Limit = limit
			return c.SearchDocuments(ctx, page)
		}, chunkSize, observer)
	})
}
