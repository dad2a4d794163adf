// Package decode turns raw artifact bytes into scan reports. Each workflow
// type ships results in its own format; the decoders here are the only code
// that knows about artifact content.
package decode

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/template-doctor/template-doctor/internal/core"
)

// maxEntrySize caps a single decompressed artifact entry. Artifacts come from
// workflows this service dispatched, but blob storage content is still
// external input.
const maxEntrySize = 64 << 20

// unzipFirstMatch extracts the first file in the archive whose name has the
// given extension.
func unzipFirstMatch(data []byte, ext string) ([]byte, string, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, "", core.WrapError(core.KindDecode, "artifact is not a valid zip archive", err)
	}

	for _, f := range reader.File {
		if f.FileInfo().IsDir() || !strings.HasSuffix(f.Name, ext) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, "", core.WrapError(core.KindDecode, "failed to open artifact entry "+f.Name, err)
		}
		content, err := io.ReadAll(io.LimitReader(rc, maxEntrySize))
		_ = rc.Close()
		if err != nil {
			return nil, "", core.WrapError(core.KindDecode, "failed to read artifact entry "+f.Name, err)
		}
		return content, f.Name, nil
	}
	return nil, "", core.NewError(core.KindDecode,
		fmt.Sprintf("artifact archive contains no %s file", ext))
}
