package audit_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/homecare-fulfillment/internal/domain/entity"
	"github.com/jhoicas/homecare-fulfillment/internal/infrastructure/audit"
)

func TestLogSink_EscribeCampos(t *testing.T) {
	var buf bytes.Buffer
	sink := audit.NewLogSink(zerolog.New(&buf))

	sink.Record(context.Background(), entity.AuditEntry{
		TenantID: "t1", ActorID: "u1", Action: "delivery.delivered",
		EntityType: "delivery", EntityID: "d1",
		Meta:       map[string]string{"number": "DEL-202601-000001"},
		OccurredAt: time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC),
	})

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "delivery.delivered", line["action"])
	assert.Equal(t, "t1", line["tenant_id"])
	meta, ok := line["meta"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "DEL-202601-000001", meta["number"])
}

type countingSink struct{ n int }

func (c *countingSink) Record(context.Context, entity.AuditEntry) { c.n++ }

func TestMulti_RepartePorCadaSink(t *testing.T) {
	a, b := &countingSink{}, &countingSink{}
	audit.Multi{a, b, audit.Nop{}}.Record(context.Background(), entity.AuditEntry{Action: "x"})
	assert.Equal(t, 1, a.n)
	assert.Equal(t, 1, b.n)
}
