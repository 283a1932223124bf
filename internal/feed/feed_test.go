package feed_test

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tayloree/bonuscli/internal/bonus"
	"github.com/tayloree/bonuscli/internal/feed"
)

const sampleFeed = `{
  "actie": [
    {"name": "Halfvolle melk", "url": "u1"},
    {"name": "1+1", "url": "u1"},
    {"name": "1.09", "url": "u1"}
  ],
  "bonusnus": [
    {"name": "Diepvries Pizza Margherita", "url": "u2"},
    {"name": "3.99", "url": "u2"},
    {"name": "2.99", "url": "u2"}
  ]
}`

func TestDecode_FlattensBothKeys(t *testing.T) {
	fragments, err := feed.Decode(strings.NewReader(sampleFeed))

	require.NoError(t, err)
	require.Len(t, fragments, 6)
	assert.Equal(t, bonus.Fragment{Name: "Halfvolle melk", URL: "u1"}, fragments[0])
	assert.Equal(t, bonus.Fragment{Name: "Diepvries Pizza Margherita", URL: "u2"}, fragments[3])
}

func TestDecode_LegacyKeyOnly(t *testing.T) {
	fragments, err := feed.Decode(strings.NewReader(`{"bonusnus":[{"name":"1+1","url":"x"}]}`))

	require.NoError(t, err)
	assert.Equal(t, []bonus.Fragment{{Name: "1+1", URL: "x"}}, fragments)
}

func TestDecode_MissingKeys(t *testing.T) {
	fragments, err := feed.Decode(strings.NewReader(`{"other": []}`))

	require.NoError(t, err)
	assert.Empty(t, fragments)
}

func TestDecode_Errors(t *testing.T) {
	_, err := feed.Decode(strings.NewReader(`{"actie": [`))
	assert.Error(t, err)

	_, err = feed.Decode(strings.NewReader(`{"actie": []} {"actie": []}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "trailing JSON")
}

func TestDecodeLenient_LogsAndDegrades(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	fragments := feed.DecodeLenient([]byte("not json"), logger)

	assert.Empty(t, fragments)
	assert.Contains(t, buf.String(), "ignoring malformed bonus feed")
}

func TestParseDocument(t *testing.T) {
	offers := feed.ParseDocument([]byte(sampleFeed), slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))

	require.Len(t, offers, 2)
	assert.Equal(t, "Halfvolle melk", offers[0].Name)
	assert.Equal(t, "2 voor €2.99", offers[1].Description())

	assert.Empty(t, feed.ParseDocument([]byte(`[]`), slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))))
}

func TestClientFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(sampleFeed))
	}))
	defer srv.Close()

	raw, err := feed.NewClient(0).Fetch(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.JSONEq(t, sampleFeed, string(raw))
}

func TestClientFetch_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := feed.NewClient(0).Fetch(context.Background(), srv.URL)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 502")
}

func TestClientFetch_Cancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := feed.NewClient(0).Fetch(ctx, srv.URL)
	assert.Error(t, err)
}

func TestSources(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bonus.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleFeed), 0o644))

	src, err := feed.NewSource(path, "http://ignored", 0)
	require.NoError(t, err)
	assert.Equal(t, "file:"+path, src.String())

	raw, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sampleFeed, string(raw))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleFeed))
	}))
	defer srv.Close()

	src, err = feed.NewSource("", srv.URL, 0)
	require.NoError(t, err)
	raw, err = src.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sampleFeed, string(raw))

	_, err = feed.NewSource("", "", 0)
	assert.ErrorIs(t, err, feed.ErrNoSource)
}

func TestFileSource_Missing(t *testing.T) {
	_, err := feed.FileSource{Path: filepath.Join(t.TempDir(), "nope.json")}.Load(context.Background())
	assert.Error(t, err)
}
