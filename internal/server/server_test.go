package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tayloree/bonuscli/internal/display"
	"github.com/tayloree/bonuscli/internal/feed"
	"github.com/tayloree/bonuscli/internal/server"
	"github.com/tayloree/bonuscli/internal/service"
	"github.com/tayloree/bonuscli/internal/store"
)

const sampleFeed = `{"actie": [
  {"name": "Halfvolle melk", "url": "u1"},
  {"name": "1+1", "url": "u1"},
  {"name": "1.09", "url": "u1"},
  {"name": "Diepvries Pizza Margherita", "url": "u2"},
  {"name": "3.99", "url": "u2"},
  {"name": "2.99", "url": "u2"}
]}`

type memorySource struct{ raw []byte }

func (m memorySource) Load(context.Context) ([]byte, error) { return m.raw, nil }
func (m memorySource) String() string                       { return "memory" }

func newTestServer(t *testing.T, src feed.Source, opts server.Options) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	st, err := store.Open(store.Config{Driver: store.DriverSQLite, Path: ":memory:", Logger: logger})
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	svc := service.New(st, service.Options{Source: src, Logger: logger})
	opts.Logger = logger
	ts := httptest.NewServer(server.New(svc, opts))
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url, body string, out any) int {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type offersResponse struct {
	Offers []display.OfferJSON `json:"offers"`
	Count  int                 `json:"count"`
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, nil, server.Options{})

	var body map[string]string
	status := doJSON(t, http.MethodGet, ts.URL+"/healthz", "", &body)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

func TestImportThenListOffers(t *testing.T) {
	ts := newTestServer(t, nil, server.Options{})

	var res service.ImportResult
	status := doJSON(t, http.MethodPost, ts.URL+"/users/alice/offers/import", sampleFeed, &res)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 2, res.Count)

	var list offersResponse
	status = doJSON(t, http.MethodGet, ts.URL+"/users/alice/offers", "", &list)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, 2, list.Count)
	assert.Equal(t, "Diepvries Pizza Margherita", list.Offers[0].Name)
	assert.Equal(t, "Halfvolle melk", list.Offers[1].Name)

	status = doJSON(t, http.MethodGet, ts.URL+"/users/alice/offers?sort=discount&limit=1", "", &list)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, 1, list.Count)
	assert.Equal(t, "Halfvolle melk", list.Offers[0].Name)

	status = doJSON(t, http.MethodGet, ts.URL+"/users/alice/offers?category=dairy", "", &list)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, 1, list.Count)
	assert.Equal(t, "Zuivel", list.Offers[0].Category)

	status = doJSON(t, http.MethodGet, ts.URL+"/users/bob/offers", "", &list)
	require.Equal(t, http.StatusOK, status)
	assert.Zero(t, list.Count)
}

func TestImport_MalformedFeedKeepsOffers(t *testing.T) {
	ts := newTestServer(t, nil, server.Options{})
	doJSON(t, http.MethodPost, ts.URL+"/users/alice/offers/import", sampleFeed, nil)

	var res service.ImportResult
	status := doJSON(t, http.MethodPost, ts.URL+"/users/alice/offers/import", "{not json", &res)
	require.Equal(t, http.StatusOK, status)
	assert.Zero(t, res.Count)
	assert.Equal(t, service.MessageNoNewData, res.Message)

	var list offersResponse
	doJSON(t, http.MethodGet, ts.URL+"/users/alice/offers", "", &list)
	assert.Equal(t, 2, list.Count)
}

func TestListOffers_InvalidLimit(t *testing.T) {
	ts := newTestServer(t, nil, server.Options{})

	var body errorResponse
	status := doJSON(t, http.MethodGet, ts.URL+"/users/alice/offers?limit=-1", "", &body)

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "invalid_request", body.Error.Code)
}

func TestBlankUserIsRejected(t *testing.T) {
	ts := newTestServer(t, nil, server.Options{})

	var body errorResponse
	status := doJSON(t, http.MethodGet, ts.URL+"/users/%20/offers", "", &body)

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "invalid_user", body.Error.Code)
}

func TestAutoImport(t *testing.T) {
	t.Run("without source", func(t *testing.T) {
		ts := newTestServer(t, nil, server.Options{})

		var body errorResponse
		status := doJSON(t, http.MethodPost, ts.URL+"/users/alice/offers/auto-import", "", &body)

		assert.Equal(t, http.StatusConflict, status)
		assert.Equal(t, "no_source", body.Error.Code)
	})

	t.Run("with source", func(t *testing.T) {
		ts := newTestServer(t, memorySource{raw: []byte(sampleFeed)}, server.Options{})

		var res service.ImportResult
		status := doJSON(t, http.MethodPost, ts.URL+"/users/alice/offers/auto-import", "", &res)

		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, 2, res.Count)
	})

	t.Run("first list triggers import", func(t *testing.T) {
		ts := newTestServer(t, memorySource{raw: []byte(sampleFeed)}, server.Options{})

		var list offersResponse
		status := doJSON(t, http.MethodGet, ts.URL+"/users/carol/offers", "", &list)

		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, 2, list.Count)
	})
}

func TestSuggestions(t *testing.T) {
	ts := newTestServer(t, nil, server.Options{})
	doJSON(t, http.MethodPost, ts.URL+"/users/alice/offers/import", sampleFeed, nil)

	var got []display.OfferJSON
	status := doJSON(t, http.MethodGet, ts.URL+"/users/alice/suggestions?name=halfvolle+melk", "", &got)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, got, 1)
	assert.Equal(t, "Halfvolle melk", got[0].Name)
	assert.Equal(t, "1+1", got[0].Badge)

	status = doJSON(t, http.MethodGet, ts.URL+"/users/alice/suggestions?name=pindakaas", "", &got)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, got)

	var body errorResponse
	status = doJSON(t, http.MethodGet, ts.URL+"/users/alice/suggestions", "", &body)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestBadges(t *testing.T) {
	ts := newTestServer(t, nil, server.Options{})
	doJSON(t, http.MethodPost, ts.URL+"/users/alice/offers/import", sampleFeed, nil)

	var got []display.MatchJSON
	status := doJSON(t, http.MethodPost, ts.URL+"/users/alice/badges", `{"items":["Melk halfvolle","Appels"]}`, &got)

	require.Equal(t, http.StatusOK, status)
	require.Len(t, got, 2)
	require.NotNil(t, got[0].Match)
	assert.Equal(t, "Halfvolle melk", got[0].Match.Name)
	assert.Nil(t, got[1].Match)

	var body errorResponse
	status = doJSON(t, http.MethodPost, ts.URL+"/users/alice/badges", `[1,2]`, &body)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestCategorizeAndCategories(t *testing.T) {
	ts := newTestServer(t, nil, server.Options{})

	var cat display.CategorizedJSON
	status := doJSON(t, http.MethodGet, ts.URL+"/categorize?name=Pindakaas", "", &cat)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Broodbeleg", cat.Category)

	var cats []string
	status = doJSON(t, http.MethodGet, ts.URL+"/categories", "", &cats)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Fruit", cats[0])
	assert.Equal(t, "Overig", cats[len(cats)-1])

	status = doJSON(t, http.MethodGet, ts.URL+"/categorize", "", &errorResponse{})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestRateLimit(t *testing.T) {
	ts := newTestServer(t, nil, server.Options{RateLimit: 0.001, RateBurst: 2})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		resp, err := http.Get(ts.URL + "/healthz")
		require.NoError(t, err)
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		codes = append(codes, resp.StatusCode)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRun_StopsOnCancel(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st, err := store.Open(store.Config{Driver: store.DriverSQLite, Path: ":memory:"})
	require.NoError(t, err)
	defer st.Close()
	srv := server.New(service.New(st, service.Options{Logger: logger}), server.Options{Logger: logger})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx, "127.0.0.1:0") }()
	cancel()

	assert.NoError(t, <-done)
}

func TestImport_BodyTooLarge(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st, err := store.Open(store.Config{Driver: store.DriverSQLite, Path: ":memory:"})
	require.NoError(t, err)
	defer st.Close()
	srv := server.New(service.New(st, service.Options{Logger: logger}), server.Options{Logger: logger})

	big := bytes.Repeat([]byte("a"), 33<<20)
	req := httptest.NewRequest(http.MethodPost, "/users/alice/offers/import", bytes.NewReader(big))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}
