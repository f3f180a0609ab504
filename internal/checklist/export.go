package checklist

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
)

// Format selects an export encoding.
type Format string

const (
	FormatJSON     Format = "json"
	FormatText     Format = "txt"
	FormatMarkdown Format = "md"
)

const (
	noteWrap   = 76
	noteIndent = 4
)

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// ParseFormat accepts json, txt/text and md/markdown.
func ParseFormat(value string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "json":
		return FormatJSON, nil
	case "txt", "text":
		return FormatText, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("checklist: unsupported export format %q", value)
	}
}

// FileName returns <title>_<date>_report.<ext> with unsafe characters
// replaced by underscores.
func FileName(report Report, format Format) string {
	title := report.Title
	if title == "" {
		title = "report"
	}
	return unsafeNameChars.ReplaceAllString(title, "_") + "_" + report.Date + "_report." + string(format)
}

// Export encodes report in the requested format.
func Export(report Report, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return ExportJSON(report)
	case FormatText:
		return []byte(ExportText(report)), nil
	case FormatMarkdown:
		return []byte(ExportMarkdown(report)), nil
	default:
		return nil, fmt.Errorf("checklist: unsupported export format %q", format)
	}
}

// ExportJSON returns the report as indented JSON.
func ExportJSON(report Report) ([]byte, error) {
	return json.MarshalIndent(report, "", "  ")
}

// ExportText renders the plain text report with a citations appendix.
func ExportText(report Report) string {
	lines := []string{
		"# " + report.Title,
		"Client: " + report.Client,
		"Reviewer: " + report.Reviewer,
		"Date: " + report.Date,
		"",
	}
	for _, section := range report.Sections {
		lines = append(lines, "## "+section.Title)
		for _, item := range section.Items {
			status := string(item.Status)
			if status == "" {
				status = " "
			}
			lines = append(lines, "- ["+status+"] "+item.Question)
			if item.Notes != "" {
				lines = append(lines, detailLine("Notes: "+item.Notes))
			}
			if item.Citation != "" {
				lines = append(lines, detailLine("Ref: "+item.Citation))
			}
		}
		lines = append(lines, "")
	}
	if citations := report.Citations(); len(citations) > 0 {
		lines = append(lines, "---", "Appendix - Citations")
		for _, citation := range citations {
			lines = append(lines, "- "+citation.Citation+" - "+citation.Question)
		}
	}
	return strings.Join(lines, "\n")
}

func detailLine(text string) string {
	return indent.String(wordwrap.String(text, noteWrap), noteIndent)
}

// statusMarker maps a verdict onto an icon task marker understood by the
// markdown renderer.
func statusMarker(status Status) string {
	switch status {
	case StatusCompliant:
		return "[#x]"
	case StatusNeedsWork:
		return "[!]"
	case StatusNotApplicable:
		return "[#]"
	default:
		return "[@]"
	}
}

// ExportMarkdown renders the report as markdown using icon task markers so it
// can be published through the site renderer.
func ExportMarkdown(report Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", report.Title)
	fmt.Fprintf(&b, "**Client:** %s  \n", report.Client)
	fmt.Fprintf(&b, "**Reviewer:** %s  \n", report.Reviewer)
	fmt.Fprintf(&b, "**Date:** %s\n", report.Date)

	for _, section := range report.Sections {
		fmt.Fprintf(&b, "\n## %s\n\n", section.Title)
		for _, item := range section.Items {
			fmt.Fprintf(&b, "- %s %s\n", statusMarker(item.Status), item.Question)
			if item.Notes != "" {
				fmt.Fprintf(&b, "  *Notes:* %s\n", strings.ReplaceAll(item.Notes, "\n", " "))
			}
			if item.Citation != "" {
				fmt.Fprintf(&b, "  *Ref:* %s\n", item.Citation)
			}
		}
	}

	if citations := report.Citations(); len(citations) > 0 {
		b.WriteString("\n---\n\n## Appendix - Citations\n\n")
		for _, citation := range citations {
			fmt.Fprintf(&b, "- %s - %s\n", citation.Citation, citation.Question)
		}
	}
	return b.String()
}
