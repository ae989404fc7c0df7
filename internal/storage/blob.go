package storage

import (
	"errors"
	"io"
	"path"
)

var ErrNotFound = errors.New("blob not found")

type BlobStore interface {
	Put(key string, r io.Reader) (string, error) // returns canonical key
	Get(key string) (io.ReadCloser, error)       // ErrNotFound when absent
}

// SourceKey is where the source PDF for an exam topic lives.
func SourceKey(exam, topic string) string {
	return path.Join(exam, topic+".pdf")
}
