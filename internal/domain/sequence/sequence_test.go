package sequence_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/homecare-fulfillment/internal/domain/sequence"
)

func TestFormat(t *testing.T) {
	at := time.Date(2026, time.March, 5, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, "202603", sequence.Period(at))
	assert.Equal(t, "DEL-202603-000001", sequence.Format("DEL", sequence.Period(at), 1))
	assert.Equal(t, "FAC-202603-123456", sequence.Format("FAC", "202603", 123456))
}

func TestPeriod_UsaUTC(t *testing.T) {
	loc := time.FixedZone("ART", -3*3600)
	// 31/03 22:00 en -03 ya es abril en UTC.
	at := time.Date(2026, time.March, 31, 22, 0, 0, 0, loc)
	assert.Equal(t, "202604", sequence.Period(at))
}
