package processor

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/pkg/errors"
)

// outputLock guards an output pair against concurrent runs on this host.
type outputLock struct {
	path string
	lock *flock.Flock
}

func lockPathFor(left, right string) string {
	sum := sha256.Sum256([]byte(left + "\x00" + right))
	name := "ultrawide-splitter-" + hex.EncodeToString(sum[:8]) + ".lock"
	return filepath.Join(os.TempDir(), name)
}

// acquireOutputLock takes the lock without blocking. A held lock yields
// OutputBusyError.
func acquireOutputLock(left, right string) (*outputLock, error) {
	path := lockPathFor(left, right)
	l := flock.New(path)

	ok, err := l.TryLock()
	if err != nil {
		return nil, errors.Wrapf(err, "acquiring lock %s", path)
	}
	if !ok {
		return nil, &OutputBusyError{LockPath: path}
	}
	return &outputLock{path: path, lock: l}, nil
}

// release unlocks the pair. The lock file stays on disk so that every run
// contends on the same inode.
func (l *outputLock) release() error {
	if err := l.lock.Unlock(); err != nil {
		return errors.Wrapf(err, "releasing lock %s", l.path)
	}
	return nil
}
