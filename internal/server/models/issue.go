// Package models defines the rows persisted by the issue store.
package models

import "time"

// Issue is a row of the issues table. StepsToReproduce holds the
// JSON-encoded list exactly as stored.
type Issue struct {
	ID               string
	Title            string
	Description      string
	Type             string
	Severity         string
	Status           string
	Screen           string
	StepsToReproduce string
	ExpectedBehavior string
	ActualBehavior   string
	Environment      string
	Device           string
	OSVersion        string
	AppVersion       string
	ReportedBy       string
	AssignedTo       string
	Notes            string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// StoredIssue is an issue together with its screenshots ordered by upload
// time, oldest first.
type StoredIssue struct {
	Issue
	Screenshots []*Screenshot
}
