package checklist

import (
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
)

// Status is the reviewer verdict for an item.
type Status string

const (
	StatusCompliant     Status = "compliant"
	StatusNeedsWork     Status = "needs-work"
	StatusNotApplicable Status = "not-applicable"
	StatusUnknown       Status = "unknown"
)

const dateLayout = "2006-01-02"

var statuses = []any{StatusCompliant, StatusNeedsWork, StatusNotApplicable, StatusUnknown}

// Answer is the reviewer input for one item.
type Answer struct {
	Status Status `json:"status"`
	Notes  string `json:"notes,omitempty"`
}

// Answers carries the reviewer input for a checklist, keyed by item id.
type Answers struct {
	Client   string            `json:"client"`
	Reviewer string            `json:"reviewer"`
	Date     string            `json:"date,omitempty"`
	Items    map[string]Answer `json:"items"`
}

// Report is a completed checklist ready for export.
type Report struct {
	Title       string          `json:"title"`
	File        string          `json:"file"`
	Client      string          `json:"client"`
	Reviewer    string          `json:"reviewer"`
	Date        string          `json:"date"`
	Sections    []ReportSection `json:"sections"`
	UI          map[string]any  `json:"ui"`
	GeneratedAt string          `json:"generated_at"`
}

// ReportSection is a titled group of answered items.
type ReportSection struct {
	Title string       `json:"title"`
	Items []ReportItem `json:"items"`
}

// ReportItem is an answered question.
type ReportItem struct {
	Question       string   `json:"question"`
	Status         Status   `json:"status"`
	Notes          string   `json:"notes"`
	Citation       string   `json:"citation"`
	Responsibility string   `json:"responsibility"`
	JointRoles     []string `json:"joint_roles"`
	ID             string   `json:"id"`
	Evidence       []string `json:"evidence"`
	Frequency      string   `json:"frequency"`
}

// Citation links an appendix reference back to its question.
type Citation struct {
	Section  string
	Question string
	Citation string
}

// Harvest merges answers into list. Missing answers leave the status empty so
// Validate reports them. An empty date falls back to the local day of now.
func Harvest(list List, file string, answers Answers, now time.Time) Report {
	date := strings.TrimSpace(answers.Date)
	if date == "" {
		date = now.Format(dateLayout)
	}
	ui := list.UI
	if ui == nil {
		ui = map[string]any{}
	}

	report := Report{
		Title:       list.Title,
		File:        file,
		Client:      strings.TrimSpace(answers.Client),
		Reviewer:    strings.TrimSpace(answers.Reviewer),
		Date:        date,
		Sections:    make([]ReportSection, 0, len(list.Sections)),
		UI:          ui,
		GeneratedAt: now.UTC().Format("2006-01-02T15:04:05.000Z"),
	}

	for _, section := range list.Sections {
		out := ReportSection{Title: section.Title, Items: make([]ReportItem, 0, len(section.Items))}
		for _, item := range section.Items {
			answer := answers.Items[item.ID]
			responsibility := item.Responsibility
			if responsibility == "" && len(item.JointRoles) > 0 {
				responsibility = "Joint"
			}
			out.Items = append(out.Items, ReportItem{
				Question:       item.Text,
				Status:         Status(strings.TrimSpace(string(answer.Status))),
				Notes:          answer.Notes,
				Citation:       item.Citation,
				Responsibility: responsibility,
				JointRoles:     nonNil(item.JointRoles),
				ID:             item.ID,
				Evidence:       nonNil(item.EvidenceType),
				Frequency:      item.Frequency,
			})
		}
		report.Sections = append(report.Sections, out)
	}
	return report
}

// Validate requires client and reviewer and a known status on every item.
func (r Report) Validate() error {
	errs := validation.Errors{
		"client":   validation.Validate(r.Client, validation.Required),
		"reviewer": validation.Validate(r.Reviewer, validation.Required),
	}
	for sIdx, section := range r.Sections {
		for iIdx, item := range section.Items {
			key := item.ID
			if key == "" {
				key = fmt.Sprintf("sections.%d.items.%d", sIdx, iIdx)
			}
			errs[key] = validation.Validate(item.Status,
				validation.Required.Error("status is required"),
				validation.In(statuses...).Error("unknown status"),
			)
		}
	}
	if err := errs.Filter(); err != nil {
		return goerrors.FromOzzoValidation(err, "checklist report is incomplete").
			WithTextCode("CHECKLIST_REPORT_INVALID")
	}
	return nil
}

// Citations lists every item citation in report order.
func (r Report) Citations() []Citation {
	var out []Citation
	for _, section := range r.Sections {
		for _, item := range section.Items {
			if item.Citation != "" {
				out = append(out, Citation{Section: section.Title, Question: item.Question, Citation: item.Citation})
			}
		}
	}
	return out
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
