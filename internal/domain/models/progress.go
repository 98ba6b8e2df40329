package models

import "time"

// Progress is an immutable snapshot of pipeline state at one instant.
// Snapshots flow through a channel to the presentation layer; the pipeline
// never blocks on a slow consumer, so a consumer may observe only a subset.
type Progress struct {
	Operation        string
	TotalFolders     int
	TotalFiles       int
	ProcessedFolders int
	ProcessedFiles   int
	Percent          int
	CurrentFile      string
}

// ImportResult is the terminal outcome of one import run. Run always returns
// one of these and never panics or leaks an error past its boundary.
type ImportResult struct {
	RunID            string
	Success          bool
	Cancelled        bool
	Message          string
	RootFolderID     int
	TotalFolders     int
	TotalFiles       int
	ProcessedFolders int
	ProcessedFiles   int
	Duration         time.Duration
	Err              error
}
