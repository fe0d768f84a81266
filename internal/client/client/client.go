package client

import (
	"context"

	"github.com/dmitrijs2005/qatrack/internal/issue"
)

type Client interface {
	ListIssues(ctx context.Context) ([]issue.Issue, error)
	GetIssue(ctx context.Context, id string) (issue.Issue, error)
	CreateIssue(ctx context.Context, in issue.Input) (issue.Issue, error)
	UpdateIssue(ctx context.Context, id string, in issue.Input) (issue.Issue, error)
	DeleteIssue(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}
