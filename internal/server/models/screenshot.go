package models

import "time"

// Screenshot is a row of the screenshots table. Data is the base64 data URI
// of the image; Size is the byte length of the original file. Position is the
// index within the upload batch and orders screenshots stamped at the same
// instant.
type Screenshot struct {
	ID         string
	IssueID    string
	Name       string
	Data       string
	Type       string
	Size       int64
	UploadedAt time.Time
	Position   int
}
