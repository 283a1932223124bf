package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/tayloree/bonuscli/internal/bonus"
	"github.com/tayloree/bonuscli/internal/display"
	"github.com/tayloree/bonuscli/internal/filter"
	"github.com/tayloree/bonuscli/internal/store"
)

type offersResponse struct {
	Offers []display.OfferJSON `json:"offers"`
	Count  int                 `json:"count"`
}

type badgesRequest struct {
	Items []string `json:"items"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, s.logger)
}

func (s *Server) handleCategorize(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "name is required", s.logger)
		return
	}
	writeJSON(w, http.StatusOK, display.CategorizedJSON{Name: name, Category: bonus.Categorize(name)}, s.logger)
}

func (s *Server) handleCategories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, bonus.Categories(), s.logger)
}

func (s *Server) handleListOffers(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	q := r.URL.Query()

	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid_request", "limit must be a non-negative integer", s.logger)
			return
		}
		limit = n
	}

	var (
		stored []store.StoredOffer
		err    error
	)
	if week := q.Get("week"); week != "" {
		stored, err = s.svc.Offers(r.Context(), userID, week)
	} else {
		stored, err = s.svc.EnsureOffers(r.Context(), userID)
	}
	if err != nil {
		writeServiceError(w, err, s.logger)
		return
	}

	offers := filter.Apply(store.Offers(stored), filter.Options{
		Deals:    q.Get("deals") == "true",
		Category: q.Get("category"),
		Query:    q.Get("query"),
		Sort:     q.Get("sort"),
		Limit:    limit,
	})

	out := make([]display.OfferJSON, 0, len(offers))
	for _, o := range offers {
		out = append(out, display.ToOfferJSON(o))
	}
	writeJSON(w, http.StatusOK, offersResponse{Offers: out, Count: len(out)}, s.logger)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "too_large", "feed body too large", s.logger)
			return
		}
		writeError(w, http.StatusBadRequest, "invalid_request", "could not read request body", s.logger)
		return
	}

	res, err := s.svc.Import(r.Context(), userID, raw)
	if err != nil {
		writeServiceError(w, err, s.logger)
		return
	}
	writeJSON(w, http.StatusOK, res, s.logger)
}

func (s *Server) handleAutoImport(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.AutoImport(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		writeServiceError(w, err, s.logger)
		return
	}
	writeJSON(w, http.StatusOK, res, s.logger)
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "name is required", s.logger)
		return
	}

	offers, err := s.svc.Suggestions(r.Context(), chi.URLParam(r, "userID"), name)
	if err != nil {
		writeServiceError(w, err, s.logger)
		return
	}
	out := make([]display.OfferJSON, 0, len(offers))
	for _, o := range offers {
		out = append(out, display.ToOfferJSON(o))
	}
	writeJSON(w, http.StatusOK, out, s.logger)
}

func (s *Server) handleBadges(w http.ResponseWriter, r *http.Request) {
	var req badgesRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBadgeBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "body must be {\"items\": [...]}", s.logger)
		return
	}

	badges, err := s.svc.Badges(r.Context(), chi.URLParam(r, "userID"), req.Items)
	if err != nil {
		writeServiceError(w, err, s.logger)
		return
	}
	writeJSON(w, http.StatusOK, display.ToMatchJSON(badges), s.logger)
}
