// Package xerrors defines the structured error taxonomy shared by every
// subprocess in the ETL workflow. Every error that crosses a subprocess
// boundary carries the subprocess it happened in, the business date it
// happened on, and an optional wrapped cause, so the workflow engine and the
// CLI can both report and exit-code on it without string matching.
package xerrors

import (
	"errors"
	"fmt"
	"time"
)

// SubprocessType identifies which of the five ordered subprocesses produced
// an error, matching the currentSubprocess values a Context can carry.
type SubprocessType string

const (
	SubprocessNone      SubprocessType = ""
	SubprocessExtract   SubprocessType = "EXTRACT"
	SubprocessTransform SubprocessType = "TRANSFORM"
	SubprocessLoad      SubprocessType = "LOAD"
	SubprocessValidate  SubprocessType = "VALIDATE"
	SubprocessClean     SubprocessType = "CLEAN"
	SubprocessEngine    SubprocessType = "ENGINE"
)

// Kind enumerates the error subtypes from spec §4.8/§7.
type Kind string

const (
	KindConfig          Kind = "ConfigError"
	KindExtract         Kind = "ExtractError"
	KindTransformation  Kind = "TransformationError"
	KindLoad            Kind = "LoadError"
	KindClean           Kind = "CleanError"
	KindTargetUnavailable Kind = "TargetUnavailable"
	KindTimeout         Kind = "Timeout"
)

// Error is the uniform error type propagated out of every subprocess.
type Error struct {
	Kind        Kind
	Subprocess  SubprocessType
	Date        time.Time
	Message     string
	Cause       error

	// SourceType and Index are populated for TransformationError per §4.5,
	// identifying which transformer and record index failed.
	SourceType string
	Index      int
}

func (e *Error) Error() string {
	base := fmt.Sprintf("%s[%s] %s: %s", e.Kind, e.Subprocess, e.Date.Format("20060102"), e.Message)
	if e.SourceType != "" {
		base = fmt.Sprintf("%s (sourceType=%s index=%d)", base, e.SourceType, e.Index)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", base, e.Cause)
	}
	return base
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// newErr is the shared constructor underlying the Kind-specific helpers below.
func newErr(kind Kind, sp SubprocessType, date time.Time, msg string, cause error) *Error {
	return &Error{Kind: kind, Subprocess: sp, Date: date, Message: msg, Cause: cause}
}

// Config reports an invalid or missing configuration, fatal at run start or
// per-day when discovered during subprocess validation.
func Config(sp SubprocessType, date time.Time, msg string, cause error) *Error {
	return newErr(KindConfig, sp, date, msg, cause)
}

// Extract reports a day-fatal failure inside the Extract subprocess.
func Extract(date time.Time, msg string, cause error) *Error {
	return newErr(KindExtract, SubprocessExtract, date, msg, cause)
}

// Transformation reports a day-fatal failure inside the Transform subprocess,
// tagged with the source type and record index that failed per §4.5.
func Transformation(date time.Time, sourceType string, index int, cause error) *Error {
	e := newErr(KindTransformation, SubprocessTransform, date, fmt.Sprintf("transform failed for %s", sourceType), cause)
	e.SourceType = sourceType
	e.Index = index
	return e
}

// Load reports a day-fatal failure inside the Load subprocess.
func Load(date time.Time, msg string, cause error) *Error {
	return newErr(KindLoad, SubprocessLoad, date, msg, cause)
}

// Clean reports a failure inside the Clean subprocess. CleanError is always
// logged, never propagated above the daily workflow (§7).
func Clean(date time.Time, msg string, cause error) *Error {
	return newErr(KindClean, SubprocessClean, date, msg, cause)
}

// TargetUnavailable reports that the columnar target could not be reached
// after exhausting retries.
func TargetUnavailable(sp SubprocessType, date time.Time, msg string, cause error) *Error {
	return newErr(KindTargetUnavailable, sp, date, msg, cause)
}

// TimeoutErr reports that a bounded operation (SQL query, download) exceeded
// its configured timeout. Treated as an Extract failure per §5.
func TimeoutErr(date time.Time, msg string, cause error) *Error {
	return newErr(KindTimeout, SubprocessExtract, date, msg, cause)
}

// Is reports whether err is an *Error of the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// As extracts the *Error from err, if any, mirroring errors.As ergonomics.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
