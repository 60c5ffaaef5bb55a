package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPStore reads public objects over HTTP(S). It cannot write or list.
type HTTPStore struct {
	httpClient *http.Client
}

// NewHTTPStore creates an HTTPStore whose requests time out after timeout.
func NewHTTPStore(timeout time.Duration) *HTTPStore {
	return &HTTPStore{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (s *HTTPStore) Read(ctx context.Context, uri string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %q: %w", uri, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("get %q: %w", uri, ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("get %q: status %d: %s", uri, resp.StatusCode, body)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body %q: %w", uri, err)
	}
	return data, nil
}

func (s *HTTPStore) Write(_ context.Context, uri string, _ []byte) error {
	return fmt.Errorf("write %q: %w", uri, ErrReadOnly)
}

func (s *HTTPStore) Walk(_ context.Context, root string, _ int, _ WalkFunc) error {
	return fmt.Errorf("walk %q: %w", root, ErrUnsupported)
}
