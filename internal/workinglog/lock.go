package workinglog

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/git-ai-oss/gitai/internal/giterrors"
)

// syscallSignalZero probes process liveness without delivering a signal.
const syscallSignalZero = syscall.Signal(0)

// staleLockAge is how long a lock file can be held before a competing
// wrapper invocation treats it as abandoned (e.g. the prior holder
// crashed without cleaning up) and steals it, per spec.md §5's single-
// writer rule and §4.7's "checkpoints are advisory" failure tolerance.
const staleLockAge = 2 * time.Minute

// Lock is an advisory, O_EXCL-file-based exclusive lock over one
// repository's working-log namespace. Standard-library-only: the pack
// contains no dedicated file-locking library (see DESIGN.md); the stale-
// lock detection technique mirrors the teacher's own advisory session-
// conflict detection.
type Lock struct {
	path string
}

func newLock(path string) *Lock { return &Lock{path: path} }

// Acquire takes the lock, blocking via short retries up to timeout. A
// lock file older than staleLockAge, or one whose recorded PID is no
// longer running, is treated as abandoned and stolen.
func (l *Lock) Acquire(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		err := l.tryCreate()
		if err == nil {
			return nil
		}
		if !os.IsExist(err) {
			return giterrors.Wrap(giterrors.KindLockContention, "creating lock file", err)
		}
		if l.stealIfAbandoned() {
			continue
		}
		if time.Now().After(deadline) {
			return giterrors.New(giterrors.KindLockContention, "timed out waiting for working log lock")
		}
		time.Sleep(25 * time.Millisecond)
	}
}

// Release removes the lock file. Safe to call even if this process is not
// the current holder (e.g. it was stolen); it only removes the file it
// itself is tracking by path.
func (l *Lock) Release() error {
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return giterrors.Wrap(giterrors.KindLockContention, "releasing lock file", err)
	}
	return nil
}

func (l *Lock) tryCreate() error {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()
	_, werr := fmt.Fprintf(f, "%d\n%d\n", os.Getpid(), time.Now().Unix())
	return werr
}

func (l *Lock) stealIfAbandoned() bool {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return false
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) < 2 {
		return false
	}
	pid, err1 := strconv.Atoi(lines[0])
	createdUnix, err2 := strconv.ParseInt(lines[1], 10, 64)
	if err1 != nil || err2 != nil {
		return false
	}

	age := time.Since(time.Unix(createdUnix, 0))
	if age < staleLockAge && processAlive(pid) {
		return false
	}

	return os.Remove(l.path) == nil
}

func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	// On POSIX systems FindProcess always succeeds; signal 0 probes
	// liveness without affecting the process.
	return proc.Signal(syscallSignalZero) == nil
}
