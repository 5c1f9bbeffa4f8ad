package domain

import (
	"errors"
	"fmt"
)

var (
	ErrRejectedInput  = errors.New("rejected input")
	ErrStorage        = errors.New("storage failure")
	ErrExtraction     = errors.New("extraction failure")
	ErrNoText         = errors.New("no extractable text")
	ErrClassification = errors.New("classification failure")
	ErrNotification   = errors.New("notification failure")
	ErrTemporary      = errors.New("temporary failure")
	ErrRunNotFound    = errors.New("run not found")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
