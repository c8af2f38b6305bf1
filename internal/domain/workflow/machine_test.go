package workflow_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/homecare-fulfillment/internal/domain"
	"github.com/jhoicas/homecare-fulfillment/internal/domain/entity"
	"github.com/jhoicas/homecare-fulfillment/internal/domain/workflow"
)

func stages() []entity.WorkflowStage {
	return []entity.WorkflowStage{
		{ID: "alta", Name: "Alta", Position: 3, IsTerminal: true},
		{ID: "admision", Name: "Admisión", Position: 1},
		{ID: "internacion", Name: "Internación domiciliaria", Position: 2},
	}
}

func TestCanMove(t *testing.T) {
	m := workflow.New(stages())

	assert.NoError(t, m.CanMove("", "admision"))
	assert.NoError(t, m.CanMove("admision", "internacion"))
	assert.NoError(t, m.CanMove("admision", "alta"))
	assert.ErrorIs(t, m.CanMove("internacion", "admision"), domain.ErrInvalidStatus)
	assert.ErrorIs(t, m.CanMove("alta", "alta"), domain.ErrInvalidStatus)
	assert.ErrorIs(t, m.CanMove("admision", "inexistente"), domain.ErrStageNotFound)
}

func TestRequireTerminal(t *testing.T) {
	m := workflow.New(stages())
	assert.NoError(t, m.RequireTerminal("alta"))
	assert.ErrorIs(t, m.RequireTerminal("internacion"), domain.ErrWorkflowNotTerminal)
	assert.ErrorIs(t, m.RequireTerminal(""), domain.ErrWorkflowNotTerminal)
}
