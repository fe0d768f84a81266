package issue

// Type classifies what kind of report an issue is.
type Type string

const (
	TypeBug            Type = "bug"
	TypeEnhancement    Type = "enhancement"
	TypeFeatureRequest Type = "feature-request"
	TypeDocumentation  Type = "documentation"
)

var typeLabels = map[Type]string{
	TypeBug:            "Bug",
	TypeEnhancement:    "Enhancement",
	TypeFeatureRequest: "Feature Request",
	TypeDocumentation:  "Documentation",
}

// Types lists every valid Type in display order.
var Types = []Type{TypeBug, TypeEnhancement, TypeFeatureRequest, TypeDocumentation}

func (t Type) IsValid() bool {
	_, ok := typeLabels[t]
	return ok
}

func (t Type) Label() string {
	if l, ok := typeLabels[t]; ok {
		return l
	}
	return string(t)
}

// Severity ranks how badly an issue hurts.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

var severityLabels = map[Severity]string{
	SeverityCritical: "Critical",
	SeverityHigh:     "High",
	SeverityMedium:   "Medium",
	SeverityLow:      "Low",
}

var Severities = []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow}

func (s Severity) IsValid() bool {
	_, ok := severityLabels[s]
	return ok
}

func (s Severity) Label() string {
	if l, ok := severityLabels[s]; ok {
		return l
	}
	return string(s)
}

// Status is the workflow position of an issue.
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in-progress"
	StatusResolved   Status = "resolved"
	StatusClosed     Status = "closed"
	StatusWontFix    Status = "wont-fix"
)

var statusLabels = map[Status]string{
	StatusOpen:       "Open",
	StatusInProgress: "In Progress",
	StatusResolved:   "Resolved",
	StatusClosed:     "Closed",
	StatusWontFix:    "Won't Fix",
}

var Statuses = []Status{StatusOpen, StatusInProgress, StatusResolved, StatusClosed, StatusWontFix}

func (s Status) IsValid() bool {
	_, ok := statusLabels[s]
	return ok
}

func (s Status) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// Screens is the list of app surfaces an issue can be filed against. The
// first entry is the default.
var Screens = []string{
	"Swap Screen (Main)",
	"Token Selection Modal",
	"Chain Selection Modal",
	"Network Selection Modal",
	"Fixed/Floating Rate Modal",
	"Swap History Screen",
	"Wallet Home",
	"Settings",
	"Other",
}
