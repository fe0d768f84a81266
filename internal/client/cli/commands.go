package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/dmitrijs2005/qatrack/internal/client/services"
	"github.com/dmitrijs2005/qatrack/internal/common"
	"github.com/dmitrijs2005/qatrack/internal/export"
	"github.com/dmitrijs2005/qatrack/internal/issue"
)

// List prints the synced view, optionally filtered by status.
func (a *App) List(ctx context.Context, args []string) error {
	issues := a.service.View().Issues

	if len(args) > 0 {
		st := issue.Status(strings.ToLower(args[0]))
		if !st.IsValid() {
			return common.NewValidationError("status", fmt.Sprintf("unknown status %q", args[0]))
		}
		filtered := issues[:0:0]
		for _, it := range issues {
			if it.Status == st {
				filtered = append(filtered, it)
			}
		}
		issues = filtered
	}

	if len(issues) == 0 {
		fmt.Fprintln(a.out, "No issues")
		return nil
	}
	renderTable(a.out, issues)
	return nil
}

func (a *App) Show(ctx context.Context, args []string) error {
	id, err := a.idArg(args, "Enter issue id to show")
	if err != nil {
		return err
	}

	it, err := a.service.Get(ctx, id)
	if err != nil {
		return err
	}
	renderDetail(a.out, it)
	return nil
}

// Report walks through the fields of a new issue, then files it with any
// screenshots given as file paths.
func (a *App) Report(ctx context.Context, args []string) error {
	var in issue.Input
	var err error

	if in.Title, err = GetSimpleText(a.reader, "Title (required)", a.out); err != nil {
		return err
	}
	if strings.TrimSpace(in.Title) == "" {
		return common.NewValidationError("title", "is required")
	}
	if in.Description, err = GetMultiline(a.reader, "Description", a.out); err != nil {
		return err
	}

	typ, err := GetChoice(a.reader, "Type", enumValues(issue.Types), enumLabels(issue.Types), string(issue.DefaultType), a.out)
	if err != nil {
		return err
	}
	in.Type = issue.Type(typ)

	sev, err := GetChoice(a.reader, "Severity", enumValues(issue.Severities), enumLabels(issue.Severities), string(issue.DefaultSeverity), a.out)
	if err != nil {
		return err
	}
	in.Severity = issue.Severity(sev)

	if in.Screen, err = GetChoice(a.reader, "Screen", issue.Screens, nil, issue.DefaultScreen, a.out); err != nil {
		return err
	}
	if in.StepsToReproduce, err = GetLines(a.reader, "Steps to reproduce, one per line", a.out); err != nil {
		return err
	}

	for _, f := range []struct {
		dst    *string
		prompt string
	}{
		{&in.ExpectedBehavior, "Expected behavior"},
		{&in.ActualBehavior, "Actual behavior"},
		{&in.Device, "Device"},
		{&in.OSVersion, "OS version"},
		{&in.AppVersion, "App version"},
	} {
		if *f.dst, err = GetSimpleText(a.reader, f.prompt, a.out); err != nil {
			return err
		}
	}

	if in.Notes, err = GetMultiline(a.reader, "Notes", a.out); err != nil {
		return err
	}
	paths, err := GetLines(a.reader, "Screenshot file paths, one per line", a.out)
	if err != nil {
		return err
	}

	created, results, err := a.service.Report(ctx, in, paths)
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintln(a.out, warnColor(fmt.Sprintf("Skipped %s: %v", r.Path, r.Err)))
		}
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, okColor(fmt.Sprintf("Reported %s with %d screenshot(s)", created.ID, len(created.Screenshots))))
	return nil
}

// Edit walks through every field with the current value as the default and
// sends only what changed. Free-text answers keep the value when empty and
// clear it with "-".
func (a *App) Edit(ctx context.Context, args []string) error {
	id, err := a.idArg(args, "Enter issue id to edit")
	if err != nil {
		return err
	}

	current, err := a.service.Get(ctx, id)
	if err != nil {
		return err
	}

	var p services.Patch

	title, err := GetSimpleText(a.reader, fmt.Sprintf("Title [%s] (empty keeps)", preview(current.Title)), a.out)
	if err != nil {
		return err
	}
	if title != "" && title != current.Title {
		p.Title = &title
	}

	if p.Description, err = a.editText("Description", current.Description, true); err != nil {
		return err
	}
	if p.Type, err = editEnum(a, "Type", issue.Types, current.Type); err != nil {
		return err
	}
	if p.Severity, err = editEnum(a, "Severity", issue.Severities, current.Severity); err != nil {
		return err
	}
	if p.Status, err = editEnum(a, "Status", issue.Statuses, current.Status); err != nil {
		return err
	}

	screen, err := GetChoice(a.reader, "Screen", issue.Screens, nil, current.Screen, a.out)
	if err != nil {
		return err
	}
	if screen != current.Screen {
		p.Screen = &screen
	}

	steps, err := GetLines(a.reader, fmt.Sprintf("Steps to reproduce [%d] (empty keeps, '-' clears)", len(current.NonEmptySteps())), a.out)
	if err != nil {
		return err
	}
	switch {
	case len(steps) == 0:
	case len(steps) == 1 && steps[0] == "-":
		if len(current.StepsToReproduce) > 0 {
			p.StepsToReproduce = &[]string{}
		}
	default:
		if !slices.Equal(steps, current.StepsToReproduce) {
			p.StepsToReproduce = &steps
		}
	}

	for _, f := range []struct {
		dst       **string
		label     string
		cur       string
		multiline bool
	}{
		{&p.ExpectedBehavior, "Expected behavior", current.ExpectedBehavior, false},
		{&p.ActualBehavior, "Actual behavior", current.ActualBehavior, false},
		{&p.Environment, "Environment", current.Environment, false},
		{&p.Device, "Device", current.Device, false},
		{&p.OSVersion, "OS version", current.OSVersion, false},
		{&p.AppVersion, "App version", current.AppVersion, false},
		{&p.ReportedBy, "Reported by", current.ReportedBy, false},
		{&p.AssignedTo, "Assigned to", current.AssignedTo, false},
		{&p.Notes, "Notes", current.Notes, true},
	} {
		if *f.dst, err = a.editText(f.label, f.cur, f.multiline); err != nil {
			return err
		}
	}

	action, err := GetChoice(a.reader, fmt.Sprintf("Screenshots (%d attached)", len(current.Screenshots)),
		[]string{"keep", "replace", "clear"}, []string{"Keep", "Replace with new files", "Remove all"}, "keep", a.out)
	if err != nil {
		return err
	}
	switch action {
	case "replace":
		paths, err := GetLines(a.reader, "Screenshot file paths, one per line", a.out)
		if err != nil {
			return err
		}
		if len(paths) > 0 {
			p.Attachments = &paths
		}
	case "clear":
		if len(current.Screenshots) > 0 {
			p.Attachments = &[]string{}
		}
	}

	if p.Empty() {
		fmt.Fprintln(a.out, "Nothing to change")
		return nil
	}

	updated, results, err := a.service.Edit(ctx, id, p)
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintln(a.out, warnColor(fmt.Sprintf("Skipped %s: %v", r.Path, r.Err)))
		}
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, okColor(fmt.Sprintf("Updated %s (%s, %s, %d screenshot(s))",
		updated.ID, updated.Status.Label(), updated.Severity.Label(), len(updated.Screenshots))))
	return nil
}

// editText asks for a new value of a free-text field and returns nil when it
// stays the same.
func (a *App) editText(label, cur string, multiline bool) (*string, error) {
	prompt := fmt.Sprintf("%s [%s] (empty keeps, '-' clears)", label, preview(cur))

	var answer string
	var err error
	if multiline {
		answer, err = GetMultiline(a.reader, prompt, a.out)
	} else {
		answer, err = GetSimpleText(a.reader, prompt, a.out)
	}
	if err != nil {
		return nil, err
	}

	switch answer {
	case "":
		return nil, nil
	case "-":
		answer = ""
	}
	if answer == cur {
		return nil, nil
	}
	return &answer, nil
}

func editEnum[T labeled](a *App, label string, list []T, cur T) (*T, error) {
	v, err := GetChoice(a.reader, label, enumValues(list), enumLabels(list), string(cur), a.out)
	if err != nil {
		return nil, err
	}
	if T(v) == cur {
		return nil, nil
	}
	next := T(v)
	return &next, nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	id, err := a.idArg(args, "Enter issue id to delete")
	if err != nil {
		return err
	}

	answer, err := GetSimpleText(a.reader, fmt.Sprintf("Delete %s? [y/N]", id), a.out)
	if err != nil {
		return err
	}
	if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
		fmt.Fprintln(a.out, "Cancelled")
		return nil
	}

	if err := a.service.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(a.out, okColor("Deleted "+id))
	return nil
}

func (a *App) Sync(ctx context.Context, args []string) error {
	if err := a.service.Sync(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, okColor(fmt.Sprintf("Synced %d issues", len(a.service.View().Issues))))
	return nil
}

func (a *App) Export(ctx context.Context, args []string) error {
	var name string
	if len(args) > 0 {
		name = args[0]
	} else {
		values := make([]string, len(export.Formats))
		for i, f := range export.Formats {
			values[i] = string(f)
		}
		var err error
		if name, err = GetChoice(a.reader, "Format", values, nil, string(export.FormatCSV), a.out); err != nil {
			return err
		}
	}

	f, err := export.ParseFormat(name)
	if err != nil {
		return err
	}

	path, err := a.service.Export(f)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, okColor("Report written to "+path))
	return nil
}

func (a *App) Status(ctx context.Context, args []string) error {
	snap := a.service.View()
	st := a.service.Stats()

	mode := a.currentMode()
	if mode == "" {
		mode = "connecting"
	}

	fmt.Fprintf(a.out, "%-12s %d\n", "Total:", st.Total)
	fmt.Fprintf(a.out, "%-12s %d\n", "Open:", st.Open)
	fmt.Fprintf(a.out, "%-12s %d\n", "In Progress:", st.InProgress)
	fmt.Fprintf(a.out, "%-12s %d\n", "Resolved:", st.Resolved)
	fmt.Fprintf(a.out, "%-12s %d\n", "Critical:", st.Critical)
	fmt.Fprintf(a.out, "%-12s %d\n", "Screenshots:", st.Screenshots)
	fmt.Fprintf(a.out, "%-12s %s (%s)\n", "Sync:", sinceText(snap.LastSync, a.nowFn()), snap.State)
	fmt.Fprintf(a.out, "%-12s %s\n", "Mode:", mode)
	if snap.LastErr != nil {
		fmt.Fprintf(a.out, "%-12s %s\n", "Last error:", errorColor(snap.LastErr.Error()))
	}
	return nil
}

func (a *App) idArg(args []string, prompt string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	id, err := GetSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return "", err
	}
	if id == "" {
		return "", common.NewValidationError("id", "is required")
	}
	return id, nil
}

type labeled interface {
	~string
	Label() string
}

func enumValues[T labeled](list []T) []string {
	out := make([]string, len(list))
	for i, v := range list {
		out[i] = string(v)
	}
	return out
}

func enumLabels[T labeled](list []T) []string {
	out := make([]string, len(list))
	for i, v := range list {
		out[i] = v.Label()
	}
	return out
}
