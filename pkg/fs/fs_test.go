package fs

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentalsmash/yaml-serde/pkg/util/merr"
)

func newMemFS() *LocalFileSystem {
	return NewLocalFileSystemWithBackend(afero.NewMemMapFs())
}

func TestWriteReadRoundTrip(t *testing.T) {
	fsys := newMemFS()

	require.NoError(t, fsys.WriteFile("out/config/test.yaml", "a: 1\n", false))
	got, err := fsys.ReadFile("out/config/test.yaml")
	require.NoError(t, err)
	assert.Equal(t, "a: 1\n", got)
}

func TestWriteOverwriteAndAppend(t *testing.T) {
	fsys := newMemFS()

	require.NoError(t, fsys.WriteFile("doc.yaml", "first\n", false))
	require.NoError(t, fsys.WriteFile("doc.yaml", "second\n", false))
	got, err := fsys.ReadFile("doc.yaml")
	require.NoError(t, err)
	assert.Equal(t, "second\n", got)

	require.NoError(t, fsys.WriteFile("doc.yaml", "third\n", true))
	got, err = fsys.ReadFile("doc.yaml")
	require.NoError(t, err)
	assert.Equal(t, "second\nthird\n", got)
}

func TestReadMissingFile(t *testing.T) {
	fsys := newMemFS()

	_, err := fsys.ReadFile("nope.yaml")
	assert.ErrorIs(t, err, merr.ErrIoKeyNotFound)
}

func TestFormatHooksPassThrough(t *testing.T) {
	fsys := newMemFS()

	out, err := fsys.FormatOutput("x.yaml", "body")
	require.NoError(t, err)
	assert.Equal(t, "body", out)

	in, err := fsys.FormatInput("x.yaml", "body")
	require.NoError(t, err)
	assert.Equal(t, "body", in)
}
