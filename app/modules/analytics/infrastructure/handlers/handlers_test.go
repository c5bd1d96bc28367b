package analyticshandlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	analyticsdomain "github.com/Black-And-White-Club/truthtable/app/modules/analytics/domain"
	"github.com/Black-And-White-Club/truthtable/app/shared/gameerrors"
	"github.com/Black-And-White-Club/truthtable/app/shared/httpapi"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(svc *FakeService) http.Handler {
	r := chi.NewRouter()
	NewAnalyticsHandlers(svc, slog.New(slog.NewTextHandler(io.Discard, nil))).Mount(r)
	return r
}

func TestAnalyticsHandlers(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		setup      func(*FakeService)
		wantStatus int
		verify     func(t *testing.T, rr *httptest.ResponseRecorder)
	}{
		{
			name: "leaderboard",
			url:  "/admin/leaderboard",
			setup: func(s *FakeService) {
				s.GetLeaderboardFunc = func(ctx context.Context) ([]analyticsdomain.LeaderboardEntry, error) {
					return []analyticsdomain.LeaderboardEntry{{Rank: 1, TeamNumber: 4, Score: 300}}, nil
				}
			},
			wantStatus: http.StatusOK,
			verify: func(t *testing.T, rr *httptest.ResponseRecorder) {
				var got []analyticsdomain.LeaderboardEntry
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
				require.Len(t, got, 1)
				assert.Equal(t, 4, got[0].TeamNumber)
			},
		},
		{
			name: "summary combines session and teams",
			url:  "/admin/summary",
			setup: func(s *FakeService) {
				s.GetSessionSummaryFunc = func(ctx context.Context) (analyticsdomain.SessionSummary, error) {
					return analyticsdomain.SessionSummary{TeamCount: 2}, nil
				}
				s.GetTeamPerformanceFunc = func(ctx context.Context) ([]analyticsdomain.TeamPerformance, error) {
					return []analyticsdomain.TeamPerformance{{TeamNumber: 1}, {TeamNumber: 2}}, nil
				}
			},
			wantStatus: http.StatusOK,
			verify: func(t *testing.T, rr *httptest.ResponseRecorder) {
				var got summaryResponse
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
				assert.Equal(t, 2, got.Summary.TeamCount)
				assert.Len(t, got.Teams, 2)
			},
		},
		{
			name: "xlsx export",
			url:  "/admin/leaderboard.xlsx",
			setup: func(s *FakeService) {
				s.ExportLeaderboardFunc = func(ctx context.Context, w io.Writer) error {
					_, err := w.Write([]byte("PK"))
					return err
				}
			},
			wantStatus: http.StatusOK,
			verify: func(t *testing.T, rr *httptest.ResponseRecorder) {
				assert.Equal(t, xlsxContentType, rr.Header().Get("Content-Type"))
				assert.Contains(t, rr.Header().Get("Content-Disposition"), "leaderboard.xlsx")
				assert.Equal(t, "PK", rr.Body.String())
			},
		},
		{
			name: "xlsx export failure renders error",
			url:  "/admin/leaderboard.xlsx",
			setup: func(s *FakeService) {
				s.ExportLeaderboardFunc = func(ctx context.Context, w io.Writer) error {
					return errors.New("boom")
				}
			},
			wantStatus: http.StatusInternalServerError,
			verify: func(t *testing.T, rr *httptest.ResponseRecorder) {
				assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
				assert.Empty(t, rr.Header().Get("Content-Disposition"))
			},
		},
		{
			name:       "score breakdown rejects bad team number",
			url:        "/admin/teams/zero/score-breakdown",
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "score breakdown unknown team",
			url:  "/admin/teams/7/score-breakdown",
			setup: func(s *FakeService) {
				s.GetScoreBreakdownFunc = func(ctx context.Context, n int) (analyticsdomain.ScoreBreakdown, error) {
					return analyticsdomain.ScoreBreakdown{}, gameerrors.NotFound("team", n)
				}
			},
			wantStatus: http.StatusNotFound,
			verify: func(t *testing.T, rr *httptest.ResponseRecorder) {
				var body httpapi.ErrorBody
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
				assert.Equal(t, gameerrors.KindNotFound, body.Error.Kind)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &FakeService{}
			if tt.setup != nil {
				tt.setup(svc)
			}
			rr := httptest.NewRecorder()
			newRouter(svc).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tt.url, nil))
			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.verify != nil {
				tt.verify(t, rr)
			}
		})
	}
}
