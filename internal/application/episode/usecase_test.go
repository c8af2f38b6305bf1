package episode_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/homecare-fulfillment/internal/application/episode"
	"github.com/jhoicas/homecare-fulfillment/internal/domain"
	"github.com/jhoicas/homecare-fulfillment/internal/domain/entity"
	"github.com/jhoicas/homecare-fulfillment/internal/infrastructure/audit"
	"github.com/jhoicas/homecare-fulfillment/internal/testutil"
)

func newUseCase(f *testutil.Fixture) *episode.UseCase {
	return episode.NewUseCase(f.Store, audit.Nop{}, f.Log)
}

func TestMoveStage_RecorreElFlujo(t *testing.T) {
	f := testutil.NewFixture()
	uc := newUseCase(f)
	ctx := context.Background()

	ep, err := uc.MoveStage(ctx, f.Actor, testutil.EpisodeID, testutil.StageCare)
	require.NoError(t, err)
	assert.Equal(t, testutil.StageCare, ep.StageID)

	ep, err = uc.MoveStage(ctx, f.Actor, testutil.EpisodeID, testutil.StageClosing)
	require.NoError(t, err)
	assert.Equal(t, testutil.StageClosing, ep.StageID)
}

func TestMoveStage_EtapaInexistente(t *testing.T) {
	f := testutil.NewFixture()

	_, err := newUseCase(f).MoveStage(context.Background(), f.Actor, testutil.EpisodeID, "st-x")
	assert.ErrorIs(t, err, domain.ErrStageNotFound)
}

func TestMoveStage_EpisodioDeOtroTenant(t *testing.T) {
	f := testutil.NewFixture()
	other := entity.Actor{UserID: "u2", TenantID: testutil.OtherTenantID, Role: entity.RoleCoordinador}

	_, err := newUseCase(f).MoveStage(context.Background(), other, testutil.EpisodeID, testutil.StageCare)
	assert.ErrorIs(t, err, domain.ErrEpisodeNotFound)
}

func TestClose_SoloDesdeEtapaTerminal(t *testing.T) {
	f := testutil.NewFixture()
	uc := newUseCase(f)
	ctx := context.Background()

	_, err := uc.Close(ctx, f.Actor, testutil.EpisodeID)
	assert.ErrorIs(t, err, domain.ErrWorkflowNotTerminal)

	_, err = uc.MoveStage(ctx, f.Actor, testutil.EpisodeID, testutil.StageClosing)
	require.NoError(t, err)
	ep, err := uc.Close(ctx, f.Actor, testutil.EpisodeID)
	require.NoError(t, err)
	assert.Equal(t, entity.EpisodeStatusClosed, ep.Status)
	assert.NotNil(t, ep.ClosedAt)

	_, err = uc.MoveStage(ctx, f.Actor, testutil.EpisodeID, testutil.StageCare)
	assert.ErrorIs(t, err, domain.ErrInvalidStatus, "un episodio cerrado no se mueve")
}

func TestMoveStage_NoRetrocede(t *testing.T) {
	f := testutil.NewFixture()
	uc := newUseCase(f)
	ctx := context.Background()

	_, err := uc.MoveStage(ctx, f.Actor, testutil.EpisodeID, testutil.StageCare)
	require.NoError(t, err)

	_, err = uc.MoveStage(ctx, f.Actor, testutil.EpisodeID, testutil.StageIntake)
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
	_, err = uc.MoveStage(ctx, f.Actor, testutil.EpisodeID, testutil.StageCare)
	assert.ErrorIs(t, err, domain.ErrInvalidStatus, "misma etapa")
}
