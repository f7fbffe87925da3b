package watch

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherRunsOnChange(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "crm.schema")
	other := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(file, []byte("schema A {}"), 0o644))

	runs := make(chan struct{}, 8)
	w, err := NewWatcher([]string{file}, func() error {
		runs <- struct{}{}
		return nil
	})
	require.NoError(t, err)
	w.WithDebounce(20 * time.Millisecond)
	defer w.Stop()

	require.NoError(t, w.Start())
	<-runs

	require.NoError(t, os.WriteFile(other, []byte("ignored"), 0o644))
	select {
	case <-runs:
		t.Fatal("callback ran for an unwatched file")
	case <-time.After(200 * time.Millisecond):
	}

	require.NoError(t, os.WriteFile(file, []byte("schema B {}"), 0o644))
	select {
	case <-runs:
	case <-time.After(3 * time.Second):
		t.Fatal("callback did not run after the watched file changed")
	}
}

func TestWatcherReportsCallbackErrors(t *testing.T) {
	file := filepath.Join(t.TempDir(), "crm.schema")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	first := true
	boom := errors.New("boom")
	errs := make(chan error, 4)
	w, err := NewWatcher([]string{file}, func() error {
		if first {
			first = false
			return nil
		}
		return boom
	})
	require.NoError(t, err)
	w.WithDebounce(10 * time.Millisecond).OnError(func(err error) { errs <- err })
	defer w.Stop()

	require.NoError(t, w.Start())
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	select {
	case err := <-errs:
		assert.ErrorIs(t, err, boom)
	case <-time.After(3 * time.Second):
		t.Fatal("callback error was not reported")
	}
}

func TestInitialCallbackError(t *testing.T) {
	file := filepath.Join(t.TempDir(), "crm.schema")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	w, err := NewWatcher([]string{file}, func() error { return errors.New("bad schema") })
	require.NoError(t, err)
	defer w.Stop()

	err = w.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "initial callback failed")
	assert.NoError(t, w.Stop())
	assert.NoError(t, w.Stop())
}

func TestNewWatcherMissingDirectory(t *testing.T) {
	_, err := NewWatcher([]string{"/does/not/exist/crm.schema"}, func() error { return nil })
	assert.Error(t, err)
}
