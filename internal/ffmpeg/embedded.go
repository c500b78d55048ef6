//go:build ffmpeg_embedded

package ffmpeg

import (
	"embed"
	"errors"
	"io"
	"io/fs"
)

// archives placed under assets/ before building with the
// ffmpeg_embedded tag ship inside the binary
//go:embed assets/*
var bundledArchives embed.FS

func bundledArchive(name string) (io.ReadCloser, bool, error) {
	f, err := bundledArchives.Open("assets/" + name)
	switch {
	case err == nil:
		return f, true, nil
	case errors.Is(err, fs.ErrNotExist):
		return nil, false, nil
	default:
		return nil, false, err
	}
}
