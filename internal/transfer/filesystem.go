package transfer

import "io"

// FileSystem abstracts the local file operations used by uploads and downloads.
type FileSystem interface {
	// ReadFile returns the whole content of the file at path.
	ReadFile(path string) ([]byte, error)

	// Create creates or truncates the file at path for writing.
	Create(path string) (io.WriteCloser, error)

	// MkdirAll creates a directory path and all necessary parents.
	MkdirAll(path string) error
}
