// Package logsetup builds the job's logrus.Logger, grounded on desync's
// log.go (a package-level logrus.Logger discarding output until a caller
// opts in) extended with a zstd-compressed file sink (one file, appended to,
// never rotated) for the LOG command's destination file, the Go replacement
// for the source's output process writing to a plain-text log file.
package logsetup

import (
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
	"github.com/sirupsen/logrus"
)

// New builds a logger that always writes to stderr, and additionally to a
// zstd-compressed file at path when path is non-empty.
func New(path string) (*logrus.Logger, func() error, error) {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if path == "" {
		return log, func() error { return nil }, nil
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	zw, err := zstd.NewWriter(f)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	log.SetOutput(io.MultiWriter(os.Stderr, zw))

	closer := func() error {
		if err := zw.Close(); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}
	return log, closer, nil
}
