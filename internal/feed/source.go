package feed

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNoSource is returned by NewSource when neither a path nor a URL is set.
var ErrNoSource = errors.New("no feed source configured")

// Source yields a raw bonus export.
type Source interface {
	Load(ctx context.Context) ([]byte, error)
	String() string
}

// FileSource reads the export from a local file.
type FileSource struct {
	Path string
}

func (s FileSource) Load(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return LoadFile(s.Path)
}

func (s FileSource) String() string { return "file:" + s.Path }

// URLSource downloads the export with Client.
type URLSource struct {
	URL    string
	Client *Client
}

func (s URLSource) Load(ctx context.Context) ([]byte, error) {
	client := s.Client
	if client == nil {
		client = NewClient(0)
	}
	return client.Fetch(ctx, s.URL)
}

func (s URLSource) String() string { return s.URL }

// NewSource picks a file source when path is set, otherwise a URL source.
func NewSource(path, url string, timeout time.Duration) (Source, error) {
	switch {
	case path != "":
		return FileSource{Path: path}, nil
	case url != "":
		return URLSource{URL: url, Client: NewClient(timeout)}, nil
	default:
		return nil, fmt.Errorf("resolving feed: %w", ErrNoSource)
	}
}
