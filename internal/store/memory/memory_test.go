package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesboard/internal/store"
	"salesboard/internal/store/storetest"
)

func TestMemoryStoreConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return New() })
}

func TestNewFromFile(t *testing.T) {
	dir := t.TempDir()

	s, err := NewFromFile(filepath.Join(dir, "missing.json"))
	require.NoError(t, err)
	n, _ := s.Count(context.Background())
	assert.Zero(t, n)

	path := filepath.Join(dir, "dataset.json")
	body := `[{"title":"a","price":1,"category":"x","sold":true,"dateOfSale":"2021-11-27T20:29:54+05:30"},
	          {"title":"b","price":2,"category":"y","sold":false,"dateOfSale":"2021-10-27T20:29:54+05:30"}]`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	s, err = NewFromFile(path)
	require.NoError(t, err)
	n, _ = s.Count(context.Background())
	assert.EqualValues(t, 2, n)

	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o644))
	_, err = NewFromFile(path)
	assert.Error(t, err)
}
