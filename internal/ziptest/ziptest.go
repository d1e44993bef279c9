// Package ziptest builds small in-memory ZIP archives for tests.
package ziptest

import (
	"bytes"
	"hash/crc32"
	"strings"
	"testing"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/require"
)

// Entry is a named payload to be deflated into an archive.
type Entry struct {
	Name    string
	Payload string
}

// Archive returns a complete ZIP archive with one deflated local file per entry followed by the central directory.
//
// Sizes and CRC are always written in the local file headers (no data descriptor). An entry whose name ends with "/"
// is written as a stored directory with no payload.
func Archive(t testing.TB, entries ...Entry) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		if strings.HasSuffix(e.Name, "/") {
			// directories are stored with no payload; Payload is ignored.
			_, err := zw.CreateRaw(&zip.FileHeader{Name: e.Name})
			require.NoError(t, err)
			continue
		}

		var data bytes.Buffer
		fw, err := flate.NewWriter(&data, flate.DefaultCompression)
		require.NoError(t, err)
		_, err = fw.Write([]byte(e.Payload))
		require.NoError(t, err)
		require.NoError(t, fw.Close())

		w, err := zw.CreateRaw(&zip.FileHeader{
			Name:               e.Name,
			Method:             zip.Deflate,
			CRC32:              crc32.ChecksumIEEE([]byte(e.Payload)),
			CompressedSize64:   uint64(data.Len()),
			UncompressedSize64: uint64(len(e.Payload)),
		})
		require.NoError(t, err)
		_, err = w.Write(data.Bytes())
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	return buf.Bytes()
}
