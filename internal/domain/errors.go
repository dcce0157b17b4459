package domain

import (
	"errors"
	"fmt"
	"io/fs"
)

var ErrNodeRemoved = errors.New("entry already removed")

// IOError is a non-fatal failure reading or removing a single entry.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

func (e *IOError) PermissionDenied() bool {
	return errors.Is(e.Err, fs.ErrPermission)
}

// UnsupportedEntryError notes a special file that was recorded without a size.
type UnsupportedEntryError struct {
	Path string
	Mode fs.FileMode
}

func (e *UnsupportedEntryError) Error() string {
	return fmt.Sprintf("%s: unsupported entry type %s", e.Path, e.Mode.Type())
}

// InvalidRootError is returned before scanning when a root path cannot be used.
type InvalidRootError struct {
	Path string
	Err  error
}

func (e *InvalidRootError) Error() string {
	return fmt.Sprintf("invalid root %q: %v", e.Path, e.Err)
}

func (e *InvalidRootError) Unwrap() error {
	return e.Err
}
