package scoringhandlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	scoringservice "github.com/Black-And-White-Club/dip-scoring/app/modules/scoring/application"
	scoringdomain "github.com/Black-And-White-Club/dip-scoring/app/modules/scoring/domain"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(svc scoringservice.Service) http.Handler {
	r := chi.NewRouter()
	NewHTTPHandlers(svc, slog.New(slog.NewTextHandler(io.Discard, nil))).Mount(r)
	return r
}

func TestHTTPHandlers(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name            string
		path            string
		setupService    func(*FakeScoringService)
		wantStatus      int
		wantContentType string
		wantTrace       []string
	}{
		{
			name: "game score",
			path: "/api/scoring/games/" + id.String(),
			setupService: func(f *FakeScoringService) {
				f.ScoreGameFunc = func(ctx context.Context, gameID uuid.UUID) (*scoringservice.GameScoreResult, error) {
					return &scoringservice.GameScoreResult{GameID: gameID, Scores: scoringdomain.GameScores{scoringdomain.France: 34}}, nil
				}
			},
			wantStatus:      http.StatusOK,
			wantContentType: "application/json",
			wantTrace:       []string{"ScoreGame"},
		},
		{
			name:         "bad id",
			path:         "/api/scoring/games/not-a-uuid",
			setupService: func(f *FakeScoringService) {},
			wantStatus:   http.StatusBadRequest,
			wantTrace:    []string{},
		},
		{
			name: "missing tournament",
			path: "/api/scoring/tournaments/" + id.String(),
			setupService: func(f *FakeScoringService) {
				f.ScoreTournamentFunc = func(ctx context.Context, _ uuid.UUID) (*scoringservice.TournamentScoreResult, error) {
					return nil, notFound()
				}
			},
			wantStatus: http.StatusNotFound,
			wantTrace:  []string{"ScoreTournament"},
		},
		{
			name: "unknown system is unprocessable",
			path: "/api/scoring/rounds/" + id.String(),
			setupService: func(f *FakeScoringService) {
				f.ScoreRoundFunc = func(ctx context.Context, _ uuid.UUID) (*scoringservice.RoundScoreResult, error) {
					return nil, &scoringservice.Failure{Err: scoringdomain.ErrUnknownScoringSystem}
				}
			},
			wantStatus: http.StatusUnprocessableEntity,
			wantTrace:  []string{"ScoreRound"},
		},
		{
			name: "infrastructure error",
			path: "/api/scoring/rounds/" + id.String(),
			setupService: func(f *FakeScoringService) {
				f.ScoreRoundFunc = func(ctx context.Context, _ uuid.UUID) (*scoringservice.RoundScoreResult, error) {
					return nil, errors.New("connection reset")
				}
			},
			wantStatus: http.StatusInternalServerError,
			wantTrace:  []string{"ScoreRound"},
		},
		{
			name: "standings workbook",
			path: "/api/scoring/tournaments/" + id.String() + "/standings.xlsx",
			setupService: func(f *FakeScoringService) {
				f.ExportStandingsFunc = func(ctx context.Context, _ uuid.UUID) ([]byte, error) {
					return []byte("PK"), nil
				}
			},
			wantStatus:      http.StatusOK,
			wantContentType: xlsxContentType,
			wantTrace:       []string{"ExportStandings"},
		},
		{
			name: "chart",
			path: "/api/scoring/games/" + id.String() + "/chart.png",
			setupService: func(f *FakeScoringService) {
				f.CentreCountChartFunc = func(ctx context.Context, _ uuid.UUID) ([]byte, error) {
					return []byte{0x89, 'P', 'N', 'G'}, nil
				}
			},
			wantStatus:      http.StatusOK,
			wantContentType: pngContentType,
			wantTrace:       []string{"CentreCountChart"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewFakeScoringService()
			tt.setupService(svc)

			rec := httptest.NewRecorder()
			newTestServer(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantContentType != "" {
				assert.Equal(t, tt.wantContentType, rec.Header().Get("Content-Type"))
			}
			assert.Equal(t, tt.wantTrace, svc.Trace())
		})
	}
}

func TestHandleBestCountriesOrdering(t *testing.T) {
	id := uuid.New()
	var gotByCentres bool
	svc := NewFakeScoringService()
	svc.BestCountriesFunc = func(ctx context.Context, _ uuid.UUID, byCentres bool) (map[scoringdomain.GreatPower][]scoringdomain.GameResult, error) {
		gotByCentres = byCentres
		return map[scoringdomain.GreatPower][]scoringdomain.GameResult{
			scoringdomain.Turkey: {{Game: "R1B1", Power: scoringdomain.Turkey, Score: 42, Centres: 12}},
		}, nil
	}

	rec := httptest.NewRecorder()
	newTestServer(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/api/scoring/tournaments/"+id.String()+"/best-countries?by=centres", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, gotByCentres)

	var body map[string][]map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body[string(scoringdomain.Turkey)], 1)
}
