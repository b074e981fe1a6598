package scoringhandlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	scoringservice "github.com/Black-And-White-Club/dip-scoring/app/modules/scoring/application"
	scoringdb "github.com/Black-And-White-Club/dip-scoring/app/modules/scoring/infrastructure/repositories"
	"github.com/Black-And-White-Club/dip-scoring/app/shared/observability/attr"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	pngContentType  = "image/png"
)

// HTTPHandlers serves read-only scoring views.
type HTTPHandlers struct {
	service scoringservice.Service
	logger  *slog.Logger
}

// NewHTTPHandlers creates the HTTP handlers for the scoring service.
func NewHTTPHandlers(service scoringservice.Service, logger *slog.Logger) *HTTPHandlers {
	return &HTTPHandlers{service: service, logger: logger}
}

// Mount registers the scoring routes under /api/scoring.
func (h *HTTPHandlers) Mount(r chi.Router) {
	r.Route("/api/scoring", func(r chi.Router) {
		r.Get("/games/{gameID}", h.HandleGameScore)
		r.Get("/games/{gameID}/chart.png", h.HandleCentreCountChart)
		r.Get("/rounds/{roundID}", h.HandleRoundScore)
		r.Get("/tournaments/{tournamentID}", h.HandleTournamentScore)
		r.Get("/tournaments/{tournamentID}/standings.xlsx", h.HandleStandingsExport)
		r.Get("/tournaments/{tournamentID}/best-countries", h.HandleBestCountries)
	})
}

func (h *HTTPHandlers) HandleGameScore(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "gameID")
	if !ok {
		return
	}
	res, err := h.service.ScoreGame(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (h *HTTPHandlers) HandleRoundScore(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "roundID")
	if !ok {
		return
	}
	res, err := h.service.ScoreRound(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (h *HTTPHandlers) HandleTournamentScore(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "tournamentID")
	if !ok {
		return
	}
	res, err := h.service.ScoreTournament(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, res)
}

// HandleBestCountries orders by final centres when ?by=centres is given.
func (h *HTTPHandlers) HandleBestCountries(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "tournamentID")
	if !ok {
		return
	}
	byCentres := r.URL.Query().Get("by") == "centres"
	res, err := h.service.BestCountries(r.Context(), id, byCentres)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (h *HTTPHandlers) HandleStandingsExport(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "tournamentID")
	if !ok {
		return
	}
	data, err := h.service.ExportStandings(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="standings.xlsx"`)
	_, _ = w.Write(data)
}

func (h *HTTPHandlers) HandleCentreCountChart(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "gameID")
	if !ok {
		return
	}
	data, err := h.service.CentreCountChart(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", pngContentType)
	_, _ = w.Write(data)
}

func (h *HTTPHandlers) pathID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		http.Error(w, "invalid "+param, http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

// writeError maps missing records to 404, other domain failures to 422 and
// anything else to 500.
func (h *HTTPHandlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, scoringdb.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case scoringservice.IsFailure(err):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		h.logger.ErrorContext(r.Context(), "Scoring request failed",
			attr.String("path", r.URL.Path),
			attr.Error(err),
		)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
