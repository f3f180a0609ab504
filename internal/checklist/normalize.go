// Package checklist loads review checklists, harvests answers into reports
// and exports them as JSON, plain text or icon-task markdown.
package checklist

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-slug"
)

const (
	defaultTitle        = "Checklist"
	defaultSection      = "Section"
	fallbackSection     = "Items"
	uncategorizedID     = "uncategorized"
	fallbackItemPrefix  = "item"
	fallbackSlugSegment = "x"
)

// List is a checklist in its normalised form.
type List struct {
	Title    string         `json:"title"`
	Sections []Section      `json:"sections"`
	UI       map[string]any `json:"ui,omitempty"`
}

// Section groups checklist items.
type Section struct {
	Title string `json:"title"`
	Note  string `json:"note,omitempty"`
	Items []Item `json:"items"`
}

// Item is a single question.
type Item struct {
	ID             string   `json:"id"`
	Text           string   `json:"item"`
	Citation       string   `json:"citation,omitempty"`
	Responsibility string   `json:"responsibility,omitempty"`
	JointRoles     []string `json:"joint_roles,omitempty"`
	ShowCitation   bool     `json:"show_citation,omitempty"`
	ReportInclude  bool     `json:"report_include"`
	EvidenceType   []string `json:"evidence_type,omitempty"`
	Frequency      string   `json:"frequency,omitempty"`
	Note           string   `json:"note,omitempty"`
}

// ItemCount returns the number of items across sections.
func (l List) ItemCount() int {
	total := 0
	for _, section := range l.Sections {
		total += len(section.Items)
	}
	return total
}

// Parse decodes, validates and normalises a checklist file.
func Parse(data []byte) (List, error) {
	var doc any
	decoder := json.NewDecoder(bytes.NewReader(data))
	if err := decoder.Decode(&doc); err != nil {
		return List{}, fmt.Errorf("%w: %v", ErrDocumentInvalid, err)
	}
	if err := validateDocument(doc); err != nil {
		return List{}, err
	}
	root, _ := doc.(map[string]any)
	return Normalize(root), nil
}

// Normalize accepts the three supported layouts: titled sections of items,
// categories plus items tagged with category_id, or a bare item list.
func Normalize(raw map[string]any) List {
	title := stringField(raw, "title")
	if title == "" {
		title = defaultTitle
	}
	list := List{Title: title}
	if ui, ok := raw["ui"].(map[string]any); ok {
		list.UI = ui
	}

	if sections, ok := raw["sections"].([]any); ok {
		list.Sections = normalizeSections(raw, sections)
		return list
	}

	categories, hasCategories := raw["categories"].([]any)
	items, hasItems := raw["items"].([]any)
	if hasCategories && hasItems {
		list.Sections = normalizeCategories(raw, categories, items)
		return list
	}

	section := Section{Title: fallbackSection, Items: make([]Item, 0, len(items))}
	for idx, entry := range items {
		section.Items = append(section.Items, sanitizeItem(entry, fallbackItemPrefix+"-"+strconv.Itoa(idx+1)))
	}
	list.Sections = []Section{section}
	return list
}

func normalizeSections(raw map[string]any, sections []any) []Section {
	description := stringField(raw, "description")
	out := make([]Section, 0, len(sections))
	for _, entry := range sections {
		sec, _ := entry.(map[string]any)
		title := stringField(sec, "title")
		prefix := slugOrDefault(title)

		note := firstNonEmpty(stringField(sec, "note"), stringField(sec, "subtitle"), description)
		if title == "" {
			title = defaultSection
		}

		entries, _ := sec["items"].([]any)
		items := make([]Item, 0, len(entries))
		for idx, item := range entries {
			items = append(items, sanitizeItem(item, prefix+"-"+strconv.Itoa(idx+1)))
		}
		out = append(out, Section{Title: title, Note: note, Items: items})
	}
	return out
}

// normalizeCategories groups items by category in first-seen order. Item ids
// default to the category id plus a per-group position.
func normalizeCategories(raw map[string]any, categories, items []any) []Section {
	names := make(map[string]string, len(categories))
	for _, entry := range categories {
		category, _ := entry.(map[string]any)
		if id := idField(category, "id"); id != "" {
			names[id] = stringField(category, "name")
		}
	}

	description := stringField(raw, "description")
	order := []string{}
	grouped := map[string][]Item{}
	for _, entry := range items {
		obj, _ := entry.(map[string]any)
		categoryID := idField(obj, "category_id")
		if categoryID == "" {
			categoryID = uncategorizedID
		}
		if _, seen := grouped[categoryID]; !seen {
			order = append(order, categoryID)
		}
		fallbackID := categoryID + "-" + strconv.Itoa(len(grouped[categoryID])+1)
		grouped[categoryID] = append(grouped[categoryID], sanitizeItem(entry, fallbackID))
	}

	out := make([]Section, 0, len(order))
	for _, categoryID := range order {
		title := names[categoryID]
		if title == "" {
			title = defaultSection
		}
		out = append(out, Section{Title: title, Note: description, Items: grouped[categoryID]})
	}
	return out
}

func sanitizeItem(entry any, fallbackID string) Item {
	obj, ok := entry.(map[string]any)
	if !ok {
		text := ""
		if entry != nil {
			text = fmt.Sprint(entry)
		}
		return Item{ID: fallbackID, Text: text, ReportInclude: true}
	}

	id := idField(obj, "id")
	if id == "" {
		id = fallbackID
	}
	include := true
	if value, ok := obj["report_include"].(bool); ok {
		include = value
	}
	show, _ := obj["show_citation"].(bool)

	return Item{
		ID:             id,
		Text:           firstNonEmpty(stringField(obj, "item"), stringField(obj, "title"), stringField(obj, "question")),
		Citation:       stringField(obj, "citation"),
		Responsibility: stringField(obj, "responsibility"),
		JointRoles:     stringSlice(obj["joint_roles"]),
		ShowCitation:   show,
		ReportInclude:  include,
		EvidenceType:   stringSlice(obj["evidence_type"]),
		Frequency:      stringField(obj, "frequency"),
		Note:           stringField(obj, "note"),
	}
}

func slugOrDefault(title string) string {
	if title == "" {
		return fallbackSlugSegment
	}
	normalized, err := slug.Normalize(title)
	if err != nil || normalized == "" {
		return fallbackSlugSegment
	}
	return normalized
}

func stringField(obj map[string]any, key string) string {
	if obj == nil {
		return ""
	}
	value, ok := obj[key].(string)
	if !ok {
		return ""
	}
	return value
}

// idField reads an identifier written either as a string or an integer.
func idField(obj map[string]any, key string) string {
	switch value := obj[key].(type) {
	case string:
		return value
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case json.Number:
		return value.String()
	default:
		return ""
	}
}

func stringSlice(value any) []string {
	entries, ok := value.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		if text, ok := entry.(string); ok && strings.TrimSpace(text) != "" {
			out = append(out, strings.TrimSpace(text))
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
