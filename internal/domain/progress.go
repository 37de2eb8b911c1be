package domain

// FetchProgress reports progress while paging through documents.
type FetchProgress struct {
	Loaded int   // Documents received so far
	Page   int   // Pages requested so far
	Done   bool  // No more pages
	Error  error // Set when the fetch stopped early
}

// FetchObserver receives progress updates during a paged fetch.
type FetchObserver interface {
	OnProgress(progress FetchProgress)
}

// NoOpObserver discards progress updates (for testing/batch operations).
type NoOpObserver struct{}

func (NoOpObserver) OnProgress(FetchProgress) {}
