package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"godock/dockerr"
)

func TestGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("payload"))
	}))
	defer srv.Close()

	c := NewClient(0, nil)
	body, err := c.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), body)
}

func TestGetBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := NewClient(0, nil)
	_, err := c.Get(context.Background(), srv.URL)
	require.Error(t, err)
	assert.True(t, dockerr.IsKind(err, dockerr.KindTool))
	assert.Contains(t, err.Error(), "404")
}

func TestFetchTarget(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("content of " + filepath.Base(r.URL.Path)))
	}))
	defer srv.Close()

	dir := t.TempDir()
	c := NewClient(0, nil)
	require.NoError(t, c.FetchTarget(context.Background(), srv.URL, "DRD2", dir))

	receptor, err := os.ReadFile(filepath.Join(dir, "DRD2_receptor.pdbqt"))
	require.NoError(t, err)
	assert.Equal(t, "content of DRD2_receptor.pdbqt", string(receptor))
	assert.FileExists(t, filepath.Join(dir, "DRD2_conf.txt"))
}

func TestFetchTargetSkipsExisting(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte("fresh"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "DRD2_receptor.pdbqt"), []byte("kept"), 0o644))

	c := NewClient(0, nil)
	require.NoError(t, c.FetchTarget(context.Background(), srv.URL, "DRD2", dir))

	assert.Equal(t, 1, hits)
	body, err := os.ReadFile(filepath.Join(dir, "DRD2_receptor.pdbqt"))
	require.NoError(t, err)
	assert.Equal(t, "kept", string(body))
}
