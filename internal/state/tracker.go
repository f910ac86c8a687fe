// Package state persists the time of the last successful apply and decides
// when the user should be reminded to run apply again.
//
// The record is a single file holding a decimal millisecond timestamp. It is
// overwritten on every successful apply and never appended to. No locking is
// done: concurrent hops invocations may race on the file.
package state

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

// FileName is the record file name inside the hops state directory.
const FileName = "last-apply"

// StorageError reports a failure reading or writing the record.
type StorageError struct {
	Path string
	Op   string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("failed to %s last apply record %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// DefaultPath returns $XDG_STATE_HOME/hops/last-apply, creating the
// directory if needed.
func DefaultPath() (string, error) {
	path, err := xdg.StateFile(filepath.Join("hops", FileName))
	if err != nil {
		return "", &StorageError{Path: FileName, Op: "locate", Err: err}
	}
	return path, nil
}

// Tracker reads and writes the last apply record.
type Tracker struct {
	path string
	now  func() time.Time
}

// NewTracker returns a Tracker for the record at path.
func NewTracker(path string) *Tracker {
	return &Tracker{path: path, now: time.Now}
}

// Path returns the record location.
func (t *Tracker) Path() string {
	return t.path
}

// RecordApply overwrites the record with the current time.
func (t *Tracker) RecordApply() error {
	dir := filepath.Dir(t.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return &StorageError{Path: t.path, Op: "write", Err: err}
	}

	ms := strconv.FormatInt(t.now().UnixMilli(), 10)

	tmp, err := os.CreateTemp(dir, "."+FileName+"-*")
	if err != nil {
		return &StorageError{Path: t.path, Op: "write", Err: err}
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.WriteString(ms); err != nil {
		tmp.Close()
		return &StorageError{Path: t.path, Op: "write", Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &StorageError{Path: t.path, Op: "write", Err: err}
	}
	if err := os.Rename(tmpPath, t.path); err != nil {
		return &StorageError{Path: t.path, Op: "write", Err: err}
	}
	return nil
}

// LastApplyTime returns the recorded time. ok is false when apply has never
// succeeded on this machine; that is not an error.
func (t *Tracker) LastApplyTime() (last time.Time, ok bool, err error) {
	data, err := os.ReadFile(t.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, &StorageError{Path: t.path, Op: "read", Err: err}
	}

	ms, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return time.Time{}, false, &StorageError{Path: t.path, Op: "parse", Err: err}
	}
	return time.UnixMilli(ms), true, nil
}
