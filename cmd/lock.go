package cmd

import (
	"fmt"

	"github.com/clnbrd/clnbrd/internal/config"
	"github.com/gofrs/flock"
)

var instanceLock *flock.Flock

// AcquireLock takes the single-instance lock shared by watch and serve.
// It reports false when another instance already holds it.
func AcquireLock() (bool, error) {
	instanceLock = flock.New(config.GetLockPath())
	locked, err := instanceLock.TryLock()
	if err != nil {
		return false, fmt.Errorf("failed to acquire lock: %w", err)
	}
	return locked, nil
}

// ReleaseLock releases the lock taken by AcquireLock.
func ReleaseLock() error {
	if instanceLock == nil {
		return nil
	}
	return instanceLock.Unlock()
}
