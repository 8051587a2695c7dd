package feed

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRecord struct {
	id string
	ts time.Time
}

func (r stubRecord) RecordTime() time.Time { return r.ts }

func rec(id string, ts string) stubRecord {
	parsed, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		panic(err)
	}
	return stubRecord{id: id, ts: parsed}
}

func ids(records []Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.(stubRecord).id
	}
	return out
}

func TestProjection_SortsAscending(t *testing.T) {
	p := &Projection{}
	p.Replace([]Record{
		rec("T2", "2026-02-01T00:00:00Z"),
		rec("T3", "2026-03-01T00:00:00Z"),
		rec("T1", "2026-01-01T00:00:00Z"),
	})

	assert.Equal(t, []string{"T1", "T2", "T3"}, ids(p.Ascending()))
	assert.Equal(t, []string{"T3", "T2", "T1"}, ids(p.Descending()))
	assert.NoError(t, p.Err())
}

func TestProjection_StableOnEqualTimestamps(t *testing.T) {
	p := &Projection{}
	p.Replace([]Record{
		rec("a", "2026-01-01T00:00:00Z"),
		rec("b", "2026-01-01T00:00:00Z"),
		rec("c", "2026-01-01T00:00:00Z"),
	})
	assert.Equal(t, []string{"a", "b", "c"}, ids(p.Ascending()))
}

func TestProjection_RedeliveryIsIdempotent(t *testing.T) {
	batch := []Record{
		rec("T1", "2026-01-01T00:00:00Z"),
		rec("T2", "2026-02-01T00:00:00Z"),
	}

	p := &Projection{}
	p.Replace(batch)
	first := ids(p.Ascending())
	p.Replace(batch)
	assert.Equal(t, first, ids(p.Ascending()))
	assert.Equal(t, 2, p.Len())
}

func TestProjection_FailSubstitutesEmptySet(t *testing.T) {
	p := &Projection{}
	p.Replace([]Record{rec("T1", "2026-01-01T00:00:00Z")})
	require.Equal(t, 1, p.Len())

	boom := errors.New("permission denied")
	p.Fail(boom)

	assert.Empty(t, p.Ascending())
	assert.Empty(t, p.Descending())
	assert.ErrorIs(t, p.Err(), boom)
}

func TestProjection_RecoversAfterFailure(t *testing.T) {
	p := &Projection{}
	p.Fail(errors.New("transient outage"))
	require.Error(t, p.Err())

	p.Replace([]Record{rec("T1", "2026-01-01T00:00:00Z")})
	assert.NoError(t, p.Err())
	assert.Equal(t, []string{"T1"}, ids(p.Ascending()))
}

func TestProjection_ReplaceDoesNotRetainInput(t *testing.T) {
	batch := []Record{
		rec("T1", "2026-01-01T00:00:00Z"),
		rec("T2", "2026-02-01T00:00:00Z"),
	}
	p := &Projection{}
	p.Replace(batch)

	batch[0] = rec("X", "2027-01-01T00:00:00Z")
	assert.Equal(t, []string{"T1", "T2"}, ids(p.Ascending()))
}
