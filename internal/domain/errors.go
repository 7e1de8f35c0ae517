package domain

import "errors"

var (
	// ErrInvalidInput signals a type, shape, or missing-column violation
	// detected before any expensive work.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound signals a missing resource, e.g. a missing database file.
	ErrNotFound = errors.New("not found")
	// ErrQuery signals a query execution failure against the row source.
	ErrQuery = errors.New("query failed")
	// ErrIndexBuild signals an embedding-matrix shape or index construction failure.
	ErrIndexBuild = errors.New("index build failed")
	// ErrDimMismatch signals a query/index embedding dimension mismatch.
	ErrDimMismatch = errors.New("embedding dimension mismatch")
	// ErrRetrieval wraps any failure during the encode-search-project sequence.
	ErrRetrieval = errors.New("retrieval failed")
	// ErrGeneration wraps a failure of the generation call.
	ErrGeneration = errors.New("generation failed")

	// ErrEmbeddingProvider signals an embedding provider failure.
	ErrEmbeddingProvider = errors.New("embedding provider error")
	// ErrGenerationProvider signals a generation provider failure.
	ErrGenerationProvider = errors.New("generation provider error")
)
