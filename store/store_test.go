package store

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "equalprop.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRunLifecycle(t *testing.T) {
	s := openTestStore(t)

	run, err := s.CreateRun("", "rfp.pdf", 3, "/tmp/out")
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, StatusPending, run.Status)

	require.NoError(t, s.SetRunning(run.ID))
	got, err := s.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, got.Status)

	require.NoError(t, s.SetDone(run.ID, "/tmp/out/c.csv", "/tmp/out/c.xlsx"))
	got, err = s.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusDone, got.Status)
	assert.Equal(t, "/tmp/out/c.csv", got.CSVPath)
	assert.Equal(t, "/tmp/out/c.xlsx", got.XLSXPath)
	assert.Equal(t, 3, got.ProposalCount)
}

func TestRunFailure(t *testing.T) {
	s := openTestStore(t)

	run, err := s.CreateRun("", "rfp.pdf", 1, "/tmp/out")
	require.NoError(t, err)
	require.NoError(t, s.SetFailed(run.ID, errors.New("model unavailable")))

	got, err := s.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, got.Status)
	assert.Equal(t, "model unavailable", got.Error)
}

func TestGetRunMissing(t *testing.T) {
	s := openTestStore(t)
	got, err := s.GetRun("no-such-id")
	require.NoError(t, err)
	assert.Nil(t, got)

	err = s.SetRunning("no-such-id")
	require.Error(t, err)
}

func TestListRunsNewestFirst(t *testing.T) {
	s := openTestStore(t)
	first, err := s.CreateRun("", "a.pdf", 1, "")
	require.NoError(t, err)
	second, err := s.CreateRun("", "b.pdf", 2, "")
	require.NoError(t, err)

	runs, err := s.ListRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	ids := []string{runs[0].ID, runs[1].ID}
	assert.Contains(t, ids, first.ID)
	assert.Contains(t, ids, second.ID)
}

func TestExtractionCache(t *testing.T) {
	s := openTestStore(t)

	hash := PayloadHash("demand", []byte("%PDF fake"))
	_, ok, err := s.GetCached(hash)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.PutCached(hash, "demand", `{"rfp_json":[]}`))
	payload, ok, err := s.GetCached(hash)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"rfp_json":[]}`, payload)

	// Replacement keeps a single row per hash.
	require.NoError(t, s.PutCached(hash, "demand", `{"rfp_json":[1]}`))
	payload, ok, err = s.GetCached(hash)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"rfp_json":[1]}`, payload)
}

func TestPayloadHashVariesByKind(t *testing.T) {
	data := []byte("same bytes")
	assert.NotEqual(t, PayloadHash("demand", data), PayloadHash("proposal", data))
}
