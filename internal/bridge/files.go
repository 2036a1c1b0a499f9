package bridge

import "os"

// DiskProvider resolves paths against the real filesystem. It backs the
// language service's default-library lookups; the live buffer sits in
// front of it via BufferProvider.
type DiskProvider struct{}

// ReadFile returns the file's content and whether it could be read.
func (DiskProvider) ReadFile(path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	return string(data), true
}

// FileExists reports whether path names a regular file.
func (DiskProvider) FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
