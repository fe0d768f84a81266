package issue

import "strings"

// Stats summarises a collection of issues.
type Stats struct {
	Total       int
	Open        int
	InProgress  int
	Resolved    int
	Critical    int
	Screenshots int
}

func Summarize(issues []Issue) Stats {
	s := Stats{Total: len(issues)}
	for _, i := range issues {
		switch i.Status {
		case StatusOpen:
			s.Open++
		case StatusInProgress:
			s.InProgress++
		case StatusResolved:
			s.Resolved++
		}
		if i.Severity == SeverityCritical {
			s.Critical++
		}
		s.Screenshots += len(i.Screenshots)
	}
	return s
}

func trimSpace(s string) string {
	return strings.TrimSpace(s)
}
