package storage

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/spigell/hh-interviewer/internal/interview"
	"github.com/spigell/hh-interviewer/internal/summary"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func sampleState(id string) *interview.State {
	at := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	s := interview.NewState(id, "Ada", interview.JobContext{ID: "go-backend", Title: "Go Engineer", Skills: []string{"go"}}, interview.DefaultConfig(), at)
	s.Phase = interview.PhaseInProgress
	s.History = []interview.Turn{{
		Number:    1,
		Topic:     interview.TopicWarmup,
		Question:  "Tell me about yourself",
		Answer:    "I build backend services.",
		Score:     50,
		Flags:     []interview.Flag{interview.FlagSTARIncomplete},
		Timestamp: at,
	}}
	s.GamingStrikes = 1
	s.Version = 3
	return s
}

func runStoreContract(t *testing.T, store Store) {
	ctx := context.Background()

	_, err := store.LoadSnapshot(ctx, "INT-missing")
	require.ErrorIs(t, err, interview.ErrNotFound)
	_, err = store.LoadReport(ctx, "INT-missing")
	require.ErrorIs(t, err, interview.ErrNotFound)

	s := sampleState("INT-contract")
	require.NoError(t, store.SaveSnapshot(ctx, s))

	s.History[0].Answer = "mutated after save"

	loaded, err := store.LoadSnapshot(ctx, "INT-contract")
	require.NoError(t, err)
	assert.Equal(t, "I build backend services.", loaded.History[0].Answer)
	assert.Equal(t, interview.PhaseInProgress, loaded.Phase)
	assert.Equal(t, 1, loaded.GamingStrikes)
	assert.Equal(t, 3, loaded.Version)
	assert.Equal(t, []interview.Flag{interview.FlagSTARIncomplete}, loaded.History[0].Flags)
	assert.Len(t, loaded.Plan, interview.CorePlanLength)

	report := &summary.Report{InterviewID: "INT-contract", Overall: 77.5, Recommendation: summary.Proceed}
	require.NoError(t, store.SaveReport(ctx, "INT-contract", report))
	gotReport, err := store.LoadReport(ctx, "INT-contract")
	require.NoError(t, err)
	assert.Equal(t, summary.Proceed, gotReport.Recommendation)
	assert.InDelta(t, 77.5, gotReport.Overall, 1e-9)

	require.NoError(t, store.Delete(ctx, "INT-contract"))
	_, err = store.LoadSnapshot(ctx, "INT-contract")
	assert.ErrorIs(t, err, interview.ErrNotFound)
	_, err = store.LoadReport(ctx, "INT-contract")
	assert.ErrorIs(t, err, interview.ErrNotFound)

	assert.Error(t, store.SaveSnapshot(ctx, sampleState("../escape")))
}

func TestMemoryStore(t *testing.T) {
	runStoreContract(t, NewMemory())
}

func TestFileStore(t *testing.T) {
	store, err := NewFile(t.TempDir())
	require.NoError(t, err)
	runStoreContract(t, store)
}

func TestFileStoreRequiresDir(t *testing.T) {
	_, err := NewFile("")
	assert.Error(t, err)
}

// Runs against a real server when HH_INTERVIEWER_TEST_REDIS points at one.
func TestRedisStore(t *testing.T) {
	addr := os.Getenv("HH_INTERVIEWER_TEST_REDIS")
	if addr == "" {
		t.Skip("HH_INTERVIEWER_TEST_REDIS is not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	require.NoError(t, client.Ping(context.Background()).Err())

	store := NewRedis(client, "hh-interviewer-test", time.Minute)
	t.Cleanup(func() { _ = store.Close() })
	runStoreContract(t, store)
}

func TestRedisKeys(t *testing.T) {
	r := NewRedis(nil, "", 0)
	assert.Equal(t, "hh-interviewer:snapshot:INT-1", r.key("snapshot", "INT-1"))
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	store, err := Open(ctx, Config{Driver: DriverMemory}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, store)

	store, err = Open(ctx, Config{Driver: DriverFile, Dir: t.TempDir()}, nil)
	require.NoError(t, err)
	assert.IsType(t, &File{}, store)

	_, err = Open(ctx, Config{Driver: "cassandra"}, nil)
	assert.ErrorContains(t, err, "unknown storage driver")
}
