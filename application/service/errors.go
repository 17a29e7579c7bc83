package service

import "errors"

var (
	// ErrNoDiffs indicates that no diff survived collection, so there is
	// nothing to extract patterns from.
	ErrNoDiffs = errors.New("redrover: no diffs to analyze")

	// ErrNoBudget indicates the prompt overhead plus the completion reserve
	// leave no room for diff content in the context window.
	ErrNoBudget = errors.New("redrover: prompt overhead exceeds context window")
)
