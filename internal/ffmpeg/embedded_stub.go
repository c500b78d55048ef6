//go:build !ffmpeg_embedded

package ffmpeg

import "io"

// without the ffmpeg_embedded tag no archives are compiled in; the
// resolver falls through to PATH lookup and download
func bundledArchive(string) (io.ReadCloser, bool, error) {
	return nil, false, nil
}
