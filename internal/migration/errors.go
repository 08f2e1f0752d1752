package migration

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies migration failures.
type ErrorKind string

const (
	// KindStoreRead: stored JSON could not be parsed.
	KindStoreRead ErrorKind = "StoreReadError"
	// KindInvalidFormat: the file is not a backup produced by this system.
	KindInvalidFormat ErrorKind = "InvalidFormat"
	// KindRowDecode: one row could not be decoded and was skipped.
	KindRowDecode ErrorKind = "RowDecodeError"
	// KindBackupFailure: the safety backup before an import failed.
	KindBackupFailure ErrorKind = "BackupFailure"
	// KindWrite: a store write failed while applying an import.
	KindWrite ErrorKind = "WriteError"
	// KindIncompatibleVersion: the file was written by another major version.
	KindIncompatibleVersion ErrorKind = "IncompatibleVersion"
)

// Sentinels for errors.Is.
var (
	ErrStoreRead           = &Error{Kind: KindStoreRead}
	ErrInvalidFormat       = &Error{Kind: KindInvalidFormat}
	ErrRowDecode           = &Error{Kind: KindRowDecode}
	ErrBackupFailure       = &Error{Kind: KindBackupFailure}
	ErrWrite               = &Error{Kind: KindWrite}
	ErrIncompatibleVersion = &Error{Kind: KindIncompatibleVersion}
)

// Error is a classified migration failure.
type Error struct {
	Kind    ErrorKind
	Op      string  // export, import, backfill
	Key     string  // store key, for store errors
	Line    int     // 1-based record number in the file, for row errors
	Section Section // for row errors
	Msg     string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(string(e.Kind))
	if e.Key != "" {
		fmt.Fprintf(&b, " [%s]", e.Key)
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, " row %d", e.Line)
	}
	if e.Section != "" {
		fmt.Fprintf(&b, " (%s)", e.Section)
	}
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) ErrorKind {
	var me *Error
	if errors.As(err, &me) {
		return me.Kind
	}
	return ""
}

func rowError(line int, section Section, msg string, err error) *Error {
	return &Error{Kind: KindRowDecode, Line: line, Section: section, Msg: msg, Err: err}
}
