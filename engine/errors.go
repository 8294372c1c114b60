package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput marks an upload that is not a usable PDF
	ErrInvalidInput = errors.New("invalid input")
	// ErrDecodeFailure marks a PDF the rasterizer could not render
	ErrDecodeFailure = errors.New("decode failure")
	// ErrEncodeFailure marks a thumbnail that could not be written
	ErrEncodeFailure = errors.New("encode failure")
	// ErrBatchEmpty describes a batch in which no document produced a thumbnail.
	// Process reports it through Result.Empty and Result.Err, never as its error.
	ErrBatchEmpty = errors.New("no valid documents in batch")
)

// NoticeKind classifies a skipped document
type NoticeKind string

const (
	KindInvalidInput  NoticeKind = "invalid_input"
	KindDecodeFailure NoticeKind = "decode_failure"
	KindEncodeFailure NoticeKind = "encode_failure"
)

func (k NoticeKind) sentinel() error {
	switch k {
	case KindInvalidInput:
		return ErrInvalidInput
	case KindEncodeFailure:
		return ErrEncodeFailure
	default:
		return ErrDecodeFailure
	}
}

// Notice tells the caller that one document was skipped and why
type Notice struct {
	Name   string     `json:"name"`
	Kind   NoticeKind `json:"kind"`
	Reason string     `json:"reason"`
}

// ItemError is the failure of a single document. It matches both its kind's
// sentinel and the underlying cause with errors.Is.
type ItemError struct {
	Name string
	Kind NoticeKind
	Err  error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Name, e.Kind, e.Err)
}

func (e *ItemError) Unwrap() []error {
	return []error{e.Kind.sentinel(), e.Err}
}

// Notice converts the error for reporting
func (e *ItemError) Notice() Notice {
	reason := "unknown"
	if e.Err != nil {
		reason = e.Err.Error()
	}
	return Notice{Name: e.Name, Kind: e.Kind, Reason: reason}
}

func itemError(name string, kind NoticeKind, err error) *ItemError {
	return &ItemError{Name: name, Kind: kind, Err: err}
}
