package authorization_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/homecare-fulfillment/internal/application/authorization"
	"github.com/jhoicas/homecare-fulfillment/internal/application/dto"
	"github.com/jhoicas/homecare-fulfillment/internal/domain"
	"github.com/jhoicas/homecare-fulfillment/internal/domain/entity"
	"github.com/jhoicas/homecare-fulfillment/internal/infrastructure/audit"
	"github.com/jhoicas/homecare-fulfillment/internal/testutil"
)

func day(offset int) string {
	return time.Now().UTC().AddDate(0, 0, offset).Format(dto.DateLayout)
}

func newUseCase(f *testutil.Fixture) *authorization.UseCase {
	return authorization.NewUseCase(f.Store, f.Storage, audit.Nop{}, f.Log)
}

func request(number string) dto.CreateAuthorizationRequest {
	return dto.CreateAuthorizationRequest{
		PayerID:   testutil.PayerID,
		PlanID:    testutil.PlanID,
		PatientID: testutil.PatientID,
		EpisodeID: testutil.EpisodeID,
		Number:    number,
		StartDate: day(-30),
		EndDate:   day(30),
	}
}

func withRequirements(f *testutil.Fixture) {
	f.Store.AddPayerRequirement(entity.PayerRequirement{ID: "rq-1", TenantID: testutil.TenantID, PayerID: testutil.PayerID, Name: "Orden médica", IsRequired: true})
	f.Store.AddPayerRequirement(entity.PayerRequirement{ID: "rq-2", TenantID: testutil.TenantID, PayerID: testutil.PayerID, Name: "Historia clínica", IsRequired: false})
}

func requirementID(t *testing.T, a *entity.Authorization, name string) string {
	t.Helper()
	for _, r := range a.Requirements {
		if r.Name == name {
			return r.ID
		}
	}
	t.Fatalf("requisito %q no copiado", name)
	return ""
}

// ─── Alta ─────────────────────────────────────────────────────────────────────

func TestCreate_SinRequisitosQuedaActiva(t *testing.T) {
	f := testutil.NewFixture()
	uc := newUseCase(f)

	a, err := uc.Create(context.Background(), f.Actor, request("  AUT-1  "))
	require.NoError(t, err)
	assert.Equal(t, entity.AuthorizationActive, a.Status)
	assert.Equal(t, "AUT-1", a.Number)
	assert.Empty(t, a.Requirements)
}

func TestCreate_CopiaCatalogoPendiente(t *testing.T) {
	f := testutil.NewFixture()
	withRequirements(f)
	uc := newUseCase(f)

	a, err := uc.Create(context.Background(), f.Actor, request("AUT-2"))
	require.NoError(t, err)
	assert.Equal(t, entity.AuthorizationPending, a.Status)
	require.Len(t, a.Requirements, 2)
	for _, r := range a.Requirements {
		assert.Equal(t, entity.RequirementPending, r.Status)
		assert.Equal(t, a.ID, r.AuthorizationID)
	}

	got, err := uc.Get(context.Background(), testutil.TenantID, a.ID)
	require.NoError(t, err)
	assert.Len(t, got.Requirements, 2)
}

func TestCreate_VigenciaTerminadaQuedaVencida(t *testing.T) {
	f := testutil.NewFixture()
	uc := newUseCase(f)
	in := request("AUT-3")
	in.StartDate, in.EndDate = day(-60), day(-1)

	a, err := uc.Create(context.Background(), f.Actor, in)
	require.NoError(t, err)
	assert.Equal(t, entity.AuthorizationExpired, a.Status)
}

func TestCreate_Validaciones(t *testing.T) {
	f := testutil.NewFixture()
	uc := newUseCase(f)
	ctx := context.Background()

	in := request("AUT-4")
	in.PlanID = "plan-x"
	_, err := uc.Create(ctx, f.Actor, in)
	assert.ErrorIs(t, err, domain.ErrPlanNotFound)

	in = request("AUT-4")
	in.PayerID = testutil.Payer2ID
	_, err = uc.Create(ctx, f.Actor, in)
	assert.ErrorIs(t, err, domain.ErrPlanPayerMismatch)

	in = request("AUT-4")
	in.PatientID = testutil.Patient2ID
	_, err = uc.Create(ctx, f.Actor, in)
	assert.ErrorIs(t, err, domain.ErrEpisodePatientMismatch)

	in = request("AUT-4")
	in.EndDate = day(-31)
	_, err = uc.Create(ctx, f.Actor, in)
	assert.ErrorIs(t, err, domain.ErrValidation)

	in = request("AUT-4")
	neg := testutil.Dec("-1")
	in.LimitUnits = &neg
	_, err = uc.Create(ctx, f.Actor, in)
	assert.ErrorIs(t, err, domain.ErrValidation)

	in = request("AUT-4")
	in.PayerID = "payer-x"
	_, err = uc.Create(ctx, f.Actor, in)
	assert.ErrorIs(t, err, domain.ErrPayerNotFound)
}

// ─── Requisitos ───────────────────────────────────────────────────────────────

func TestUpdateRequirement_ActivaAlCumplirObligatorios(t *testing.T) {
	f := testutil.NewFixture()
	withRequirements(f)
	uc := newUseCase(f)
	ctx := context.Background()
	a, err := uc.Create(ctx, f.Actor, request("AUT-5"))
	require.NoError(t, err)

	a, err = uc.UpdateRequirement(ctx, f.Actor, a.ID, requirementID(t, a, "Historia clínica"), entity.RequirementApproved)
	require.NoError(t, err)
	assert.Equal(t, entity.AuthorizationPending, a.Status, "el opcional no alcanza")

	a, err = uc.UpdateRequirement(ctx, f.Actor, a.ID, requirementID(t, a, "Orden médica"), entity.RequirementApproved)
	require.NoError(t, err)
	assert.Equal(t, entity.AuthorizationActive, a.Status)

	a, err = uc.UpdateRequirement(ctx, f.Actor, a.ID, requirementID(t, a, "Orden médica"), entity.RequirementRejected)
	require.NoError(t, err)
	assert.Equal(t, entity.AuthorizationPending, a.Status, "un rechazo vuelve a pendiente")
}

func TestUpdateRequirement_RespetaSuspension(t *testing.T) {
	f := testutil.NewFixture()
	withRequirements(f)
	uc := newUseCase(f)
	ctx := context.Background()
	a, err := uc.Create(ctx, f.Actor, request("AUT-6"))
	require.NoError(t, err)
	_, err = uc.UpdateStatus(ctx, f.Actor, a.ID, entity.AuthorizationSuspended)
	require.NoError(t, err)

	a, err = uc.UpdateRequirement(ctx, f.Actor, a.ID, requirementID(t, a, "Orden médica"), entity.RequirementApproved)
	require.NoError(t, err)
	assert.Equal(t, entity.AuthorizationSuspended, a.Status)
}

func TestUpdateRequirement_Errores(t *testing.T) {
	f := testutil.NewFixture()
	withRequirements(f)
	uc := newUseCase(f)
	ctx := context.Background()
	a, err := uc.Create(ctx, f.Actor, request("AUT-7"))
	require.NoError(t, err)

	_, err = uc.UpdateRequirement(ctx, f.Actor, a.ID, "rq-x", entity.RequirementApproved)
	assert.ErrorIs(t, err, domain.ErrRequirementNotFound)

	_, err = uc.UpdateRequirement(ctx, f.Actor, a.ID, requirementID(t, a, "Orden médica"), "OK")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = uc.UpdateRequirement(ctx, f.Actor, "aut-x", "rq-1", entity.RequirementApproved)
	assert.ErrorIs(t, err, domain.ErrAuthorizationNotFound)
}

func TestUploadRequirementFile_MarcaPresentado(t *testing.T) {
	f := testutil.NewFixture()
	withRequirements(f)
	uc := newUseCase(f)
	ctx := context.Background()
	a, err := uc.Create(ctx, f.Actor, request("AUT-8"))
	require.NoError(t, err)
	reqID := requirementID(t, a, "Orden médica")

	a, err = uc.UploadRequirementFile(ctx, f.Actor, a.ID, reqID, dto.UploadedFile{
		Name: "orden.pdf", ContentType: "application/pdf", Data: []byte("%PDF"),
	})
	require.NoError(t, err)
	assert.Equal(t, entity.AuthorizationActive, a.Status)

	r, ok := a.Requirement(reqID)
	require.True(t, ok)
	assert.Equal(t, entity.RequirementSubmitted, r.Status)
	require.NotNil(t, r.File)
	assert.Equal(t, "orden.pdf", r.File.Name)
	assert.True(t, strings.HasPrefix(r.File.Key, "tenants/"+testutil.TenantID+"/authorizations/"+a.ID+"/requirements/"+reqID+"/"))
	assert.Contains(t, f.Storage.Objects, r.File.Key)
}

func TestUploadRequirementFile_FalloDeStorage(t *testing.T) {
	f := testutil.NewFixture()
	withRequirements(f)
	uc := newUseCase(f)
	ctx := context.Background()
	a, err := uc.Create(ctx, f.Actor, request("AUT-9"))
	require.NoError(t, err)
	reqID := requirementID(t, a, "Orden médica")
	f.Storage.Fail = true

	_, err = uc.UploadRequirementFile(ctx, f.Actor, a.ID, reqID, dto.UploadedFile{Name: "orden.pdf", Data: []byte("%PDF")})
	require.Error(t, err)

	got, err := uc.Get(ctx, testutil.TenantID, a.ID)
	require.NoError(t, err)
	r, _ := got.Requirement(reqID)
	assert.Equal(t, entity.RequirementPending, r.Status)
	assert.Nil(t, r.File)
}

// ─── Estado y vencimiento ─────────────────────────────────────────────────────

func TestUpdateStatus_Manual(t *testing.T) {
	f := testutil.NewFixture()
	uc := newUseCase(f)
	ctx := context.Background()
	a, err := uc.Create(ctx, f.Actor, request("AUT-10"))
	require.NoError(t, err)

	a, err = uc.UpdateStatus(ctx, f.Actor, a.ID, entity.AuthorizationCancelled)
	require.NoError(t, err)
	assert.Equal(t, entity.AuthorizationCancelled, a.Status)

	_, err = uc.UpdateStatus(ctx, f.Actor, a.ID, "BORRADA")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestExpireOverdue_SoloPendientesYActivas(t *testing.T) {
	f := testutil.NewFixture()
	withRequirements(f)
	uc := newUseCase(f)
	ctx := context.Background()

	pending, err := uc.Create(ctx, f.Actor, request("AUT-11"))
	require.NoError(t, err)
	require.Equal(t, entity.AuthorizationPending, pending.Status)

	active, err := uc.Create(ctx, f.Actor, request("AUT-12"))
	require.NoError(t, err)
	active, err = uc.UpdateRequirement(ctx, f.Actor, active.ID, requirementID(t, active, "Orden médica"), entity.RequirementApproved)
	require.NoError(t, err)
	require.Equal(t, entity.AuthorizationActive, active.Status)

	suspended, err := uc.Create(ctx, f.Actor, request("AUT-13"))
	require.NoError(t, err)
	_, err = uc.UpdateStatus(ctx, f.Actor, suspended.ID, entity.AuthorizationSuspended)
	require.NoError(t, err)

	open := request("AUT-14")
	open.EndDate = ""
	_, err = uc.Create(ctx, f.Actor, open)
	require.NoError(t, err)

	n, err := uc.ExpireOverdue(ctx, testutil.TenantID, time.Now())
	require.NoError(t, err)
	assert.Zero(t, n, "el último día de vigencia todavía cubre")

	n, err = uc.ExpireOverdue(ctx, testutil.TenantID, time.Now().AddDate(0, 0, 31))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	for id, want := range map[string]string{
		pending.ID:   entity.AuthorizationExpired,
		active.ID:    entity.AuthorizationExpired,
		suspended.ID: entity.AuthorizationSuspended,
	} {
		got, err := uc.Get(ctx, testutil.TenantID, id)
		require.NoError(t, err)
		assert.Equal(t, want, got.Status)
	}

	n, err = uc.ExpireOverdue(ctx, testutil.TenantID, time.Now().AddDate(0, 0, 31))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestGet_OtroTenant(t *testing.T) {
	f := testutil.NewFixture()
	uc := newUseCase(f)
	a, err := uc.Create(context.Background(), f.Actor, request("AUT-15"))
	require.NoError(t, err)

	_, err = uc.Get(context.Background(), testutil.OtherTenantID, a.ID)
	assert.ErrorIs(t, err, domain.ErrAuthorizationNotFound)
}
