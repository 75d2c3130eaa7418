package journal

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/rustyeddy/cfdsim/sim"
)

func newTestPostgres(t *testing.T) *Postgres {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres journal tests need docker")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "testuser",
			"POSTGRES_PASSWORD": "testpassword",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgContainer.Terminate(ctx) })

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	port, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := "postgres://testuser:testpassword@" + host + ":" + port.Port() + "/testdb"
	j, err := NewPostgres(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func TestPostgresJournal(t *testing.T) {
	j := newTestPostgres(t)
	ctx := context.Background()

	run, rows := sampleRun(t, "01HAAAAAAAAAAAAAAAAAAAAAAA", sim.Buy)
	require.NoError(t, j.RecordRun(ctx, run, rows))

	later, laterRows := sampleRun(t, "01HBBBBBBBBBBBBBBBBBBBBBBB", sim.Sell)
	require.NoError(t, j.RecordRun(ctx, later, laterRows))

	got, err := j.GetRun(ctx, run.RunID)
	require.NoError(t, err)
	assert.True(t, run.Created.Equal(got.Created))
	assert.Equal(t, "buy", got.Direction)
	assert.True(t, run.FinalPosition.Equal(got.FinalPosition))
	assert.InDelta(t, run.FinalAverage, got.FinalAverage, 1e-9)

	gotRows, err := j.ListRows(ctx, run.RunID)
	require.NoError(t, err)
	require.Len(t, gotRows, len(rows))
	assert.Equal(t, "1.0", gotRows[1].TotalPosition.StringFixed(1))

	runs, err := j.ListRuns(ctx, 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, later.RunID, runs[0].RunID)

	_, err = j.GetRun(ctx, "missing")
	assert.ErrorIs(t, err, ErrRunNotFound)
}
