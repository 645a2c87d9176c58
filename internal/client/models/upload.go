// Package models defines client-side data models used by the datamarket CLI.
package models

import "time"

// UploadRecord is the CLI's local note of a dataset it uploaded. It lets
// the user list their uploads while marketd is unreachable.
type UploadRecord struct {
	CID        string
	Owner      string
	Title      string
	Category   string
	Price      string // decimal FIL
	FileName   string
	FileSize   int64
	DatasetID  string // empty until the listing is published
	UploadedAt time.Time
}
