package parser

import "errors"

var (
	// ErrUnsupportedFormat is returned when the input format is not supported.
	ErrUnsupportedFormat = errors.New("parser: unsupported format")

	// ErrNotArchive is returned when a file is not a readable zip archive.
	ErrNotArchive = errors.New("parser: not a project archive")

	// ErrMissingMetadata is returned when an archive has no project metadata entry.
	ErrMissingMetadata = errors.New("parser: archive missing exportedproject.json")

	// ErrNoDocuments is returned when project metadata lists no source documents.
	ErrNoDocuments = errors.New("parser: project has no source documents")

	// ErrContextCanceled is returned when the context is canceled mid-parse.
	ErrContextCanceled = errors.New("parser: context canceled")
)
