package storage

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFSStorePutGet(t *testing.T) {
	s, err := NewFSStore(t.TempDir())
	require.NoError(t, err)

	key, err := s.Put(SourceKey("CFA1", "economics"), strings.NewReader("%PDF-1.4"))
	require.NoError(t, err)
	assert.Equal(t, "CFA1/economics.pdf", key)

	rc, err := s.Get(key)
	require.NoError(t, err)
	defer rc.Close()
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(b))
}

func TestFSStoreMissing(t *testing.T) {
	s, err := NewFSStore(t.TempDir())
	require.NoError(t, err)
	_, err = s.Get("CFA1/derivatives.pdf")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFSStoreStaysUnderBase(t *testing.T) {
	s, err := NewFSStore(t.TempDir())
	require.NoError(t, err)
	key, err := s.Put("../../etc/passwd", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, "etc/passwd", key)
	_, err = s.Put("", strings.NewReader("x"))
	assert.Error(t, err)
}
