package checklist

import (
	"errors"
	"testing"
)

func TestParseLegacySections(t *testing.T) {
	list, err := Parse([]byte(`{
		"title": "Site Review",
		"description": "Shared note",
		"sections": [
			{"title": "Access", "items": ["Door locks", {"item": "Badge audit", "citation": "ISO 9.2", "joint_roles": ["IT", " Ops "]}]},
			{"items": ["Orphan"]}
		]
	}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if list.Title != "Site Review" {
		t.Fatalf("unexpected title %q", list.Title)
	}
	if len(list.Sections) != 2 {
		t.Fatalf("expected two sections, got %d", len(list.Sections))
	}
	first := list.Sections[0]
	if first.Note != "Shared note" {
		t.Fatalf("expected description fallback note, got %q", first.Note)
	}
	if first.Items[0].ID != "access-1" || first.Items[0].Text != "Door locks" {
		t.Fatalf("unexpected first item %+v", first.Items[0])
	}
	badge := first.Items[1]
	if badge.ID != "access-2" || badge.Citation != "ISO 9.2" {
		t.Fatalf("unexpected object item %+v", badge)
	}
	if len(badge.JointRoles) != 2 || badge.JointRoles[1] != "Ops" {
		t.Fatalf("expected trimmed joint roles, got %v", badge.JointRoles)
	}
	if !badge.ReportInclude {
		t.Fatalf("report_include should default to true")
	}
	if list.Sections[1].Title != "Section" || list.Sections[1].Items[0].ID != "x-1" {
		t.Fatalf("unexpected untitled section %+v", list.Sections[1])
	}
}

func TestParseCategoriesGroupsInFirstSeenOrder(t *testing.T) {
	list, err := Parse([]byte(`{
		"categories": [{"id": "net", "name": "Network"}, {"id": "hr", "name": "People"}],
		"items": [
			{"item": "Training", "category_id": "hr"},
			{"item": "Firewall", "category_id": "net", "report_include": false},
			{"id": "custom", "question": "Onboarding", "category_id": "hr"},
			{"item": "Loose"}
		]
	}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if list.Title != "Checklist" {
		t.Fatalf("expected default title, got %q", list.Title)
	}
	titles := []string{}
	for _, section := range list.Sections {
		titles = append(titles, section.Title)
	}
	if len(titles) != 3 || titles[0] != "People" || titles[1] != "Network" || titles[2] != "Section" {
		t.Fatalf("unexpected section order %v", titles)
	}
	people := list.Sections[0].Items
	if people[0].ID != "hr-1" || people[1].ID != "custom" || people[1].Text != "Onboarding" {
		t.Fatalf("unexpected grouped items %+v", people)
	}
	if list.Sections[1].Items[0].ReportInclude {
		t.Fatalf("expected report_include false to be kept")
	}
	if list.Sections[2].Items[0].ID != "uncategorized-1" {
		t.Fatalf("unexpected uncategorized id %q", list.Sections[2].Items[0].ID)
	}
}

func TestParseAcceptsIntegerIDs(t *testing.T) {
	list, err := Parse([]byte(`{
		"categories": [{"id": 10, "name": "Network"}],
		"items": [
			{"id": 7, "item": "Firewall", "category_id": 10},
			{"id": "b", "item": "Backups", "category_id": 10}
		]
	}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(list.Sections) != 1 || list.Sections[0].Title != "Network" {
		t.Fatalf("expected numeric category to resolve, got %+v", list.Sections)
	}
	items := list.Sections[0].Items
	if items[0].ID != "7" || items[1].ID != "b" {
		t.Fatalf("unexpected ids %q %q", items[0].ID, items[1].ID)
	}

	if _, err := Parse([]byte(`{"items": [{"id": 1.5, "item": "x"}]}`)); !errors.Is(err, ErrDocumentInvalid) {
		t.Fatalf("expected fractional id to be rejected, got %v", err)
	}
}

func TestParseBareItems(t *testing.T) {
	list, err := Parse([]byte(`{"title": "Quick", "items": ["One", "Two"]}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(list.Sections) != 1 || list.Sections[0].Title != "Items" {
		t.Fatalf("expected single Items section, got %+v", list.Sections)
	}
	if list.Sections[0].Items[1].ID != "item-2" {
		t.Fatalf("unexpected id %q", list.Sections[0].Items[1].ID)
	}
	if list.ItemCount() != 2 {
		t.Fatalf("expected two items, got %d", list.ItemCount())
	}
}

func TestParseRejectsInvalidDocuments(t *testing.T) {
	cases := map[string]string{
		"not object":       `["a"]`,
		"no items":         `{"title": "Empty"}`,
		"bad item type":    `{"items": [42]}`,
		"bad joint roles":  `{"items": [{"item": "x", "joint_roles": "IT"}]}`,
		"malformed json":   `{"items": [`,
		"category missing": `{"categories": [{"name": "x"}], "items": []}`,
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(input))
			if !errors.Is(err, ErrDocumentInvalid) {
				t.Fatalf("expected ErrDocumentInvalid, got %v", err)
			}
		})
	}
}

func TestParseManifestShapes(t *testing.T) {
	inputs := []string{
		`{"lists": [{"name": "Site", "file": "site.json"}]}`,
		`{"checklists": [{"name": "Site", "file": "site.json"}]}`,
		`[{"name": "Site", "file": "site.json"}]`,
	}
	for _, input := range inputs {
		entries, err := ParseManifest([]byte(input))
		if err != nil {
			t.Fatalf("parse manifest %s: %v", input, err)
		}
		if len(entries) != 1 || entries[0].File != "site.json" || entries[0].Label() != "Site" {
			t.Fatalf("unexpected entries %+v", entries)
		}
	}

	entries, err := ParseManifest([]byte(`{}`))
	if err != nil || len(entries) != 0 {
		t.Fatalf("expected empty manifest, got %v %v", entries, err)
	}
	if (ManifestEntry{File: "a.json"}).Label() != "a.json" {
		t.Fatalf("expected file label fallback")
	}
}

func TestResolveFile(t *testing.T) {
	cases := map[string]string{
		"site.json":               "site.json",
		"checklists/site.json":    "site.json",
		"/checklists/site.json":   "site.json",
		"nested/../site.json":     "site.json",
		"/other/site.json":        "other/site.json",
		"checklists-old/any.json": "checklists-old/any.json",
	}
	for input, want := range cases {
		if got := ResolveFile("checklists", input); got != want {
			t.Fatalf("ResolveFile(%q) = %q, want %q", input, got, want)
		}
	}
}
