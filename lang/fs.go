package lang

import "os"

// FS is the narrow filesystem capability import resolution requires: an
// existence check and a synchronous read. The OS implementation is the
// default; tests inject doubles to observe or fake file access.
type FS interface {
	Exists(path string) bool
	ReadFile(path string) ([]byte, error)
}

// OSFS reads from the host filesystem.
type OSFS struct{}

// Exists reports whether a file exists at path.
func (OSFS) Exists(path string) bool {
	_, err := os.Stat(path)

	return err == nil
}

// ReadFile reads the entire file at path.
func (OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}
