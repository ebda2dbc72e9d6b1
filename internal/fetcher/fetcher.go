package fetcher

import (
	"context"
	"io"
)

// Fetcher defines the interface for downloading remote data.
type Fetcher interface {
	// Download fetches the URL and returns the response body.
	Download(ctx context.Context, url string) (io.ReadCloser, error)

	// DownloadLimited fetches the URL fully into memory, failing with
	// ErrTooLarge once the body exceeds max bytes.
	DownloadLimited(ctx context.Context, url string, max int64) ([]byte, error)
}
