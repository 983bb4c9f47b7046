package store

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBeginTransaction_Reentrancy(t *testing.T) {
	e := createTestEngine(t)
	ctx := context.Background()

	first, err := e.BeginTransaction(ctx)
	require.NoError(t, err)
	defer first.Close()

	_, err = e.BeginTransaction(ctx)
	assert.ErrorIs(t, err, ErrReentrancy)

	// The first scope is still fully usable.
	require.NoError(t, first.InsertSpectrum(ctx, "run1", createTestSpectrum(t, "s1"), createTestPeaks1D()))
	require.NoError(t, first.Commit())
	require.NoError(t, first.Close())

	assert.Equal(t, 1, countRows(t, e, "Spectrum"))
}

func TestBeginTransaction_ConcurrentMisuse(t *testing.T) {
	e := createTestEngine(t)
	ctx := context.Background()

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		opened []*Scope
		reent  int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := e.BeginTransaction(ctx)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				opened = append(opened, s)
			} else if assert.ErrorIs(t, err, ErrReentrancy) {
				reent++
			}
		}()
	}
	wg.Wait()

	require.Len(t, opened, 1)
	assert.Equal(t, 7, reent)
	require.NoError(t, opened[0].Close())
}

func TestScope_CloseReleasesSlot(t *testing.T) {
	e := createTestEngine(t)
	ctx := context.Background()

	s, err := e.BeginTransaction(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close(), "Close is idempotent")

	s2, err := e.BeginTransaction(ctx)
	require.NoError(t, err)
	require.NoError(t, s2.Close())
}

func TestScope_CommitDoesNotRelease(t *testing.T) {
	e := createTestEngine(t)
	ctx := context.Background()

	s, err := e.BeginTransaction(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Commit())

	_, err = e.BeginTransaction(ctx)
	assert.ErrorIs(t, err, ErrReentrancy)
	require.NoError(t, s.Close())
}

func TestScope_FinalizeIsOneShot(t *testing.T) {
	e := createTestEngine(t)
	ctx := context.Background()

	s, err := e.BeginTransaction(ctx)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Rollback())
	assert.ErrorIs(t, s.Rollback(), ErrDisposed)
	assert.ErrorIs(t, s.Commit(), ErrDisposed)
	assert.ErrorIs(t, s.SaveModel(ctx), ErrDisposed)
	_, err = s.CreateCommand("SELECT 1")
	assert.ErrorIs(t, err, ErrDisposed)
	_, _, err = s.TryGetCommand("x")
	assert.ErrorIs(t, err, ErrDisposed)
}

func TestScope_DisposedAfterClose(t *testing.T) {
	e := createTestEngine(t)
	ctx := context.Background()

	s, err := e.BeginTransaction(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	assert.ErrorIs(t, s.Commit(), ErrDisposed)
	assert.ErrorIs(t, s.InsertSpectrum(ctx, "r", createTestSpectrum(t, "s"), createTestPeaks1D()), ErrDisposed)
	_, err = s.PrepareCommand(ctx, "x", "SELECT 1")
	assert.ErrorIs(t, err, ErrDisposed)
	_, err = s.ReadMassSpectrum(ctx, "s")
	assert.ErrorIs(t, err, ErrDisposed)
}

func TestScope_CloseRollsBack(t *testing.T) {
	e := createTestEngine(t)
	ctx := context.Background()

	s, err := e.BeginTransaction(ctx)
	require.NoError(t, err)
	require.NoError(t, s.InsertSpectrum(ctx, "run1", createTestSpectrum(t, "s1"), createTestPeaks1D()))
	require.NoError(t, s.Close())

	assert.Equal(t, 0, countRows(t, e, "Spectrum"))
}

func TestScope_CommandCache(t *testing.T) {
	e := createTestEngine(t)
	ctx := context.Background()

	s, err := e.BeginTransaction(ctx)
	require.NoError(t, err)
	defer s.Close()

	_, ok, err := s.TryGetCommand("count")
	require.NoError(t, err)
	assert.False(t, ok)

	cmd, err := s.PrepareCommand(ctx, "count", "SELECT COUNT(*) FROM Spectrum WHERE RunID = ?")
	require.NoError(t, err)

	got, ok, err := s.TryGetCommand("count")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Same(t, cmd, got)

	row, err := got.QueryRow(ctx, "run1")
	require.NoError(t, err)
	var n int
	require.NoError(t, row.Scan(&n))
	assert.Equal(t, 0, n)

	// Close cascades to cached commands.
	require.NoError(t, s.Close())
	_, err = cmd.QueryRow(ctx, "run1")
	assert.ErrorIs(t, err, ErrDisposed)
}

func TestScope_InsertReusesPreparedCommand(t *testing.T) {
	e := createTestEngine(t)
	ctx := context.Background()

	s, err := e.BeginTransaction(ctx)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.InsertSpectrum(ctx, "r", createTestSpectrum(t, "a"), createTestPeaks1D()))
	first, ok, err := s.TryGetCommand(cmdInsertSpectrum)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, s.InsertSpectrum(ctx, "r", createTestSpectrum(t, "b"), createTestPeaks1D()))
	second, _, _ := s.TryGetCommand(cmdInsertSpectrum)
	assert.Same(t, first, second)
}

func TestScope_CreateCommand(t *testing.T) {
	e := createTestEngine(t)
	ctx := context.Background()

	s, err := e.BeginTransaction(ctx)
	require.NoError(t, err)
	defer s.Close()

	cmd, err := s.CreateCommand("UPDATE Model SET Content = ? WHERE Lock = 0")
	require.NoError(t, err)
	res, err := cmd.Exec(ctx, `{"Name":"x"}`)
	require.NoError(t, err)
	n, err := res.RowsAffected()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, ok, _ := s.TryGetCommand("UPDATE Model SET Content = ? WHERE Lock = 0")
	assert.False(t, ok, "created commands are not cached")

	require.NoError(t, cmd.Close())
	_, err = cmd.Exec(ctx, "{}")
	assert.ErrorIs(t, err, ErrDisposed)
}

func TestEngine_AmbientJoinsOpenScope(t *testing.T) {
	e := createTestEngine(t)
	ctx := context.Background()

	s, err := e.BeginTransaction(ctx)
	require.NoError(t, err)

	// Engine methods run inside s and do not commit.
	require.NoError(t, e.InsertSpectrum(ctx, "run1", createTestSpectrum(t, "s1"), createTestPeaks1D()))
	st, err := e.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), st.Spectra)

	require.NoError(t, s.Rollback())
	require.NoError(t, s.Close())
	assert.Equal(t, 0, countRows(t, e, "Spectrum"))
}

func TestEngine_AmbientCommitsImplicitScope(t *testing.T) {
	e := createTestEngine(t)
	ctx := context.Background()

	require.NoError(t, e.InsertSpectrum(ctx, "run1", createTestSpectrum(t, "s1"), createTestPeaks1D()))
	assert.Equal(t, 1, countRows(t, e, "Spectrum"))

	// The implicit scope was released.
	s, err := e.BeginTransaction(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Close())
}

func TestEngine_CloseCascadesToScope(t *testing.T) {
	e := createTestEngine(t)
	ctx := context.Background()

	s, err := e.BeginTransaction(ctx)
	require.NoError(t, err)
	cmd, err := s.PrepareCommand(ctx, "q", "SELECT 1")
	require.NoError(t, err)

	require.NoError(t, e.Close())
	assert.ErrorIs(t, s.Commit(), ErrDisposed)
	_, err = cmd.Query(ctx)
	assert.ErrorIs(t, err, ErrDisposed)
	assert.NoError(t, s.Close())
}
