package export

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestWritePackage(t *testing.T) {
	var buf bytes.Buffer
	err := WritePackage(&buf, strings.NewReader("workspace bytes"), "a1", 7)
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	entries := map[string]string{}
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		entries[f.Name] = string(data)
	}

	require.Len(t, entries, 3)
	assert.Equal(t, "", entries[".export_log"])
	assert.Equal(t, "workspace bytes", entries["workspace"])

	meta := entries[".metadata"]
	assert.Equal(t, "a1", gjson.Get(meta, "remoteID").String())
	assert.Equal(t, int64(7), gjson.Get(meta, "revisionID").Int())
	assert.Equal(t, int64(0), gjson.Get(meta, "localChangeCount").Int())
}

func TestWritePackageEmptyWorkspace(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePackage(&buf, strings.NewReader(""), "p", 0))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	assert.Len(t, zr.File, 3)
}
