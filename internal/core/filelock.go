package core

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
)

// fileLock is an exclusive flock on a sidecar file. The CLI and a running
// MCP server or dashboard share the report counter and the report register,
// so the lock has to span processes.
type fileLock struct {
	f *os.File
}

// acquireFileLock blocks until it holds the lock on path, creating the file
// and its directory if needed.
func acquireFileLock(path string) (*fileLock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("creating lock directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening lock file: %w", err)
	}

	for {
		err = syscall.Flock(int(f.Fd()), syscall.LOCK_EX)
		if !errors.Is(err, syscall.EINTR) {
			break
		}
	}
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("acquiring lock on %s: %w", filepath.Base(path), err)
	}
	return &fileLock{f: f}, nil
}

// Release drops the lock and closes the lock file.
func (l *fileLock) Release() error {
	err := syscall.Flock(int(l.f.Fd()), syscall.LOCK_UN)
	if cerr := l.f.Close(); err == nil {
		err = cerr
	}
	return err
}
