package gmx

import (
	"bufio"
	"compress/bzip2"
	"compress/gzip"
	"io"
	"os"
	"strings"

	"github.com/andthum/hpc-submit-scripts-sub001/internal/utils"
)

// compressedExts lists the suffixes tried by CompressedFile, in order.
var compressedExts = []string{".gz", ".bz2"}

// CompressedFile returns path if it exists, otherwise the first existing
// compressed variant (path.gz, path.bz2). When none exists it returns path
// unchanged and false.
func CompressedFile(path string) (string, bool) {
	if utils.FileExists(path) {
		return path, true
	}
	for _, ext := range compressedExts {
		if utils.FileExists(path + ext) {
			return path + ext, true
		}
	}
	return path, false
}

type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (r *readCloser) Close() error {
	var first error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// openText opens path for reading and transparently decompresses gzip and
// bzip2 files, chosen by extension.
func openText(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	switch {
	case strings.HasSuffix(path, ".gz"):
		zr, err := gzip.NewReader(bufio.NewReader(f))
		if err != nil {
			f.Close()
			return nil, err
		}
		return &readCloser{Reader: zr, closers: []io.Closer{f, zr}}, nil
	case strings.HasSuffix(path, ".bz2"):
		return &readCloser{Reader: bzip2.NewReader(bufio.NewReader(f)), closers: []io.Closer{f}}, nil
	default:
		return f, nil
	}
}
