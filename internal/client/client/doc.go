// Package client contains the dashboard's connection to the issue API.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface):
//     ListIssues, GetIssue, CreateIssue, UpdateIssue, DeleteIssue and Ping.
//  2. A concrete REST implementation (see HTTPClient) that maps HTTP status
//     codes back to the sentinel errors in internal/common.
//  3. Local persistence (OpenCache) for the last synced view, an SQLite file
//     with embedded goose migrations, so the dashboard has something to show
//     before the first successful fetch.
//
// # Error Handling
//
// Transport failures match ErrUnavailable. API rejections match
// common.ErrorValidation, common.ErrorNotFound or common.ErrorAlreadyExists.
// Everything else is a *netx.StatusError.
package client
