package sessionservice

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	sessiondomain "github.com/Black-And-White-Club/truthtable/app/modules/session/domain"
	teamdomain "github.com/Black-And-White-Club/truthtable/app/modules/team/domain"
	"github.com/Black-And-White-Club/truthtable/app/shared/gameerrors"
	"github.com/Black-And-White-Club/truthtable/app/shared/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

func newTestService(repo *FakeRepo) *SessionService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewSessionService(repo, logger, metrics.NewNoop(), noop.NewTracerProvider().Tracer("test"), nil)
}

func TestSetAndGetConfig(t *testing.T) {
	repo := NewFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	got, err := svc.SetConfig(ctx, "round_timer", json.RawMessage(`{"seconds":90}`))
	require.NoError(t, err)
	assert.Equal(t, "round_timer", got.Key)
	assert.JSONEq(t, `{"seconds":90}`, string(got.Value))

	got, err = svc.GetConfig(ctx, "round_timer")
	require.NoError(t, err)
	assert.JSONEq(t, `{"seconds":90}`, string(got.Value))

	_, err = svc.SetConfig(ctx, "round_timer", json.RawMessage(`{"seconds":120}`))
	require.NoError(t, err)
	list, err := svc.ListConfig(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.JSONEq(t, `{"seconds":120}`, string(list[0].Value))
}

func TestGetConfigMissing(t *testing.T) {
	svc := newTestService(NewFakeRepo())

	_, err := svc.GetConfig(context.Background(), "nope")
	assert.Equal(t, gameerrors.KindNotFound, gameerrors.KindOf(err))
}

func TestSetConfigRejectsInvalid(t *testing.T) {
	repo := NewFakeRepo()
	svc := newTestService(repo)

	_, err := svc.SetConfig(context.Background(), sessiondomain.KeyMaxTeams, json.RawMessage(`40`))
	assert.Equal(t, gameerrors.KindValidation, gameerrors.KindOf(err))
	assert.NotContains(t, repo.Trace(), "UpsertConfig")
}

func TestSetConfigRepoError(t *testing.T) {
	repo := NewFakeRepo()
	repo.UpsertErr = errors.New("connection reset")
	svc := newTestService(repo)

	_, err := svc.SetConfig(context.Background(), sessiondomain.KeyGameActive, json.RawMessage(`true`))
	require.Error(t, err)
	assert.Equal(t, gameerrors.KindInternal, gameerrors.KindOf(err))
	assert.ErrorIs(t, err, repo.UpsertErr)
}

func TestTypedLookups(t *testing.T) {
	repo := NewFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	n, err := svc.MaxTeams(ctx)
	require.NoError(t, err)
	assert.Equal(t, teamdomain.MaxTeams, n)
	active, err := svc.GameActive(ctx)
	require.NoError(t, err)
	assert.False(t, active)

	require.NoError(t, repo.UpsertConfig(ctx, nil, sessiondomain.KeyMaxTeams, json.RawMessage(`6`)))
	require.NoError(t, repo.UpsertConfig(ctx, nil, sessiondomain.KeyGameActive, json.RawMessage(`true`)))

	n, err = svc.MaxTeams(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, n)
	active, err = svc.GameActive(ctx)
	require.NoError(t, err)
	assert.True(t, active)
}

func TestTypedLookupCorruptValue(t *testing.T) {
	repo := NewFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()
	require.NoError(t, repo.UpsertConfig(ctx, nil, sessiondomain.KeyMaxTeams, json.RawMessage(`"six"`)))

	_, err := svc.MaxTeams(ctx)
	assert.Error(t, err)
}

func TestDefaultMaxTeams(t *testing.T) {
	repo := NewFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	svc.SetDefaultMaxTeams(8)
	n, err := svc.MaxTeams(ctx)
	require.NoError(t, err)
	assert.Equal(t, 8, n)

	svc.SetDefaultMaxTeams(99)
	n, err = svc.MaxTeams(ctx)
	require.NoError(t, err)
	assert.Equal(t, 8, n, "out of range defaults are ignored")

	require.NoError(t, repo.UpsertConfig(ctx, nil, sessiondomain.KeyMaxTeams, json.RawMessage(`3`)))
	n, err = svc.MaxTeams(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}
