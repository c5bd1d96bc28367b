package teamhandlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Black-And-White-Club/truthtable/app/modules/rotation"
	statementdomain "github.com/Black-And-White-Club/truthtable/app/modules/statement/domain"
	teamdomain "github.com/Black-And-White-Club/truthtable/app/modules/team/domain"
	"github.com/Black-And-White-Club/truthtable/app/shared/gameerrors"
	"github.com/Black-And-White-Club/truthtable/app/shared/httpapi"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(svc *FakeService) http.Handler {
	items := itemListerFunc(func(ctx context.Context, teamNumber int) ([]statementdomain.Item, error) {
		if teamNumber > 20 {
			return nil, gameerrors.NotFound("team", teamNumber)
		}
		return []statementdomain.Item{{ID: "chart", Cost: 150}}, nil
	})
	r := chi.NewRouter()
	NewTeamHandlers(svc, items, slog.New(slog.NewTextHandler(io.Discard, nil))).Mount(r)
	return r
}

func TestTeamHandlers(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		url        string
		body       string
		setup      func(*FakeService)
		wantStatus int
		wantKind   gameerrors.Kind
		verify     func(t *testing.T, rr *httptest.ResponseRecorder, svc *FakeService)
	}{
		{
			name:   "get team",
			method: http.MethodGet,
			url:    "/teams/4",
			setup: func(s *FakeService) {
				s.GetTeamFunc = func(ctx context.Context, n int) (*teamdomain.Team, error) {
					return &teamdomain.Team{TeamNumber: n, Name: "Team 4", Budget: 1000, Members: []string{}}, nil
				}
			},
			wantStatus: http.StatusOK,
			verify: func(t *testing.T, rr *httptest.ResponseRecorder, _ *FakeService) {
				var got teamdomain.Team
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
				assert.Equal(t, 4, got.TeamNumber)
				assert.Equal(t, 1000, got.Budget)
			},
		},
		{
			name:       "non-numeric team number",
			method:     http.MethodGet,
			url:        "/teams/abc",
			wantStatus: http.StatusBadRequest,
			wantKind:   gameerrors.KindValidation,
			verify: func(t *testing.T, _ *httptest.ResponseRecorder, s *FakeService) {
				assert.Empty(t, s.Trace())
			},
		},
		{
			name:   "purchase item",
			method: http.MethodPost,
			url:    "/teams/2/purchases",
			body:   `{"itemId":"chart","statementId":"s1"}`,
			setup: func(s *FakeService) {
				s.PurchaseItemFunc = func(ctx context.Context, n int, itemID string, sid *string) (*teamdomain.PurchaseReceipt, error) {
					if n != 2 || itemID != "chart" || sid == nil || *sid != "s1" {
						return nil, gameerrors.Validation("unexpected purchase")
					}
					return &teamdomain.PurchaseReceipt{Cost: 150, NewBudget: 850}, nil
				}
			},
			wantStatus: http.StatusCreated,
			verify: func(t *testing.T, rr *httptest.ResponseRecorder, _ *FakeService) {
				var got teamdomain.PurchaseReceipt
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
				assert.Equal(t, 850, got.NewBudget)
			},
		},
		{
			name:   "insufficient budget carries details",
			method: http.MethodPost,
			url:    "/teams/2/purchases",
			body:   `{"itemId":"survey"}`,
			setup: func(s *FakeService) {
				s.PurchaseItemFunc = func(context.Context, int, string, *string) (*teamdomain.PurchaseReceipt, error) {
					e := gameerrors.New(gameerrors.KindInsufficientBudget, "budget 40 does not cover cost 900")
					e.Details = map[string]int{"budget": 40, "cost": 900}
					return nil, e
				}
			},
			wantStatus: http.StatusPaymentRequired,
			wantKind:   gameerrors.KindInsufficientBudget,
			verify: func(t *testing.T, rr *httptest.ResponseRecorder, _ *FakeService) {
				var got httpapi.ErrorBody
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
				assert.Equal(t, 900, got.Error.Details["cost"])
			},
		},
		{
			name:   "repeat hint",
			method: http.MethodPost,
			url:    "/teams/1/hints",
			body:   `{"statementId":"s1"}`,
			setup: func(s *FakeService) {
				s.PurchaseHintFunc = func(context.Context, int, string) (*teamdomain.PurchaseReceipt, error) {
					return nil, gameerrors.New(gameerrors.KindAlreadyPurchased, "already purchased")
				}
			},
			wantStatus: http.StatusConflict,
			wantKind:   gameerrors.KindAlreadyPurchased,
		},
		{
			name:       "list hints",
			method:     http.MethodGet,
			url:        "/teams/1/hints",
			wantStatus: http.StatusOK,
			verify: func(t *testing.T, _ *httptest.ResponseRecorder, s *FakeService) {
				assert.Equal(t, []string{"ListHints"}, s.Trace())
			},
		},
		{
			name:       "add member",
			method:     http.MethodPost,
			url:        "/teams/1/members",
			body:       `{"name":"Ada"}`,
			wantStatus: http.StatusOK,
			verify: func(t *testing.T, rr *httptest.ResponseRecorder, _ *FakeService) {
				var got membersResponse
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
				assert.Equal(t, membersResponse{TeamNumber: 1, Members: []string{"Ada"}}, got)
			},
		},
		{
			name:   "set members passes shuffle",
			method: http.MethodPut,
			url:    "/teams/1/members",
			body:   `{"members":["Ada","Grace"],"shuffle":true}`,
			setup: func(s *FakeService) {
				s.SetMembersFunc = func(ctx context.Context, n int, names []string, shuffle bool) ([]string, error) {
					if !shuffle {
						return nil, gameerrors.Validation("expected shuffle")
					}
					return []string{"Grace", "Ada"}, nil
				}
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "set nickname",
			method:     http.MethodPut,
			url:        "/teams/1/nickname",
			body:       `{"nickname":"Owls"}`,
			wantStatus: http.StatusOK,
		},
		{
			name:   "decider reads statement index",
			method: http.MethodGet,
			url:    "/teams/1/decider?statement_index=4",
			setup: func(s *FakeService) {
				s.GetDeciderFunc = func(ctx context.Context, n, idx int) (rotation.Assignment, error) {
					return rotation.Assign([]string{"Ada", "Grace", "Linus"}, idx), nil
				}
			},
			wantStatus: http.StatusOK,
			verify: func(t *testing.T, rr *httptest.ResponseRecorder, _ *FakeService) {
				var got rotation.Assignment
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
				assert.Equal(t, "Grace", got.Current)
				assert.Equal(t, "Linus", got.Next)
			},
		},
		{
			name:       "decider rejects bad index",
			method:     http.MethodGet,
			url:        "/teams/1/decider?statement_index=x",
			wantStatus: http.StatusBadRequest,
			wantKind:   gameerrors.KindValidation,
		},
		{
			name:       "items for team",
			method:     http.MethodGet,
			url:        "/teams/3/items",
			wantStatus: http.StatusOK,
			verify: func(t *testing.T, rr *httptest.ResponseRecorder, _ *FakeService) {
				var got []statementdomain.Item
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
				require.Len(t, got, 1)
				assert.Equal(t, "chart", got[0].ID)
			},
		},
		{
			name:       "items for unknown team",
			method:     http.MethodGet,
			url:        "/teams/30/items",
			wantStatus: http.StatusNotFound,
			wantKind:   gameerrors.KindNotFound,
		},
		{
			name:   "search players",
			method: http.MethodGet,
			url:    "/players/search?name=ada",
			setup: func(s *FakeService) {
				s.SearchPlayersFunc = func(ctx context.Context, name string) ([]teamdomain.PlayerMatch, error) {
					return []teamdomain.PlayerMatch{{TeamNumber: 1, TeamName: "Team 1", Member: name}}, nil
				}
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "reset",
			method:     http.MethodPost,
			url:        "/admin/reset",
			body:       `{"maxTeams":5}`,
			wantStatus: http.StatusOK,
			verify: func(t *testing.T, rr *httptest.ResponseRecorder, _ *FakeService) {
				var got teamdomain.ResetResult
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
				assert.Equal(t, 5, got.TeamsCreated)
			},
		},
		{
			name:   "partial reset is a server error with counts",
			method: http.MethodPost,
			url:    "/admin/reset",
			body:   `{"maxTeams":5}`,
			setup: func(s *FakeService) {
				s.ResetGameFunc = func(context.Context, int) (*teamdomain.ResetResult, error) {
					e := gameerrors.New(gameerrors.KindPartialFailureDuringReset, "reset left 4 teams")
					e.Details = map[string]int{"expectedTeams": 5, "teamsAfter": 4}
					return nil, e
				}
			},
			wantStatus: http.StatusInternalServerError,
			wantKind:   gameerrors.KindPartialFailureDuringReset,
			verify: func(t *testing.T, rr *httptest.ResponseRecorder, _ *FakeService) {
				var got httpapi.ErrorBody
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
				assert.Equal(t, 4, got.Error.Details["teamsAfter"])
			},
		},
		{
			name:       "reset without body",
			method:     http.MethodPost,
			url:        "/admin/reset",
			wantStatus: http.StatusBadRequest,
			wantKind:   gameerrors.KindValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &FakeService{}
			if tt.setup != nil {
				tt.setup(svc)
			}
			req := httptest.NewRequest(tt.method, tt.url, strings.NewReader(tt.body))
			rr := httptest.NewRecorder()
			newRouter(svc).ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())
			if tt.wantKind != "" {
				var body httpapi.ErrorBody
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
				assert.Equal(t, tt.wantKind, body.Error.Kind)
			}
			if tt.verify != nil {
				tt.verify(t, rr, svc)
			}
		})
	}
}
