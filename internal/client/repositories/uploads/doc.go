// Package uploads stores UploadRecord rows in the CLI's local SQLite
// database.
package uploads
