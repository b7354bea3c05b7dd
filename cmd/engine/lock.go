package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
)

var errLocked = errors.New("another run holds the data dir lock")

// lockDataDir takes <dataDir>/run.lock without waiting.
func lockDataDir(dataDir string) (func(), error) {
	fl := flock.New(filepath.Join(dataDir, "run.lock"))
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", fl.Path(), err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (%s)", errLocked, fl.Path())
	}
	return func() { _ = fl.Unlock() }, nil
}
