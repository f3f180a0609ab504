package generator

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"slices"
	"sort"
	"strings"
	"time"
)

const (
	defaultLLMSSection = "General"
	defaultLLMSRank    = 1000
)

// LLMSRules is the rule file behind the llmsHybrid collection.
type LLMSRules struct {
	Sections []LLMSRuleSection `json:"sections"`
}

// LLMSRuleSection selects pages by exact route and by route prefix. A zero
// Limit keeps every match.
type LLMSRuleSection struct {
	Title  string   `json:"title"`
	Paths  []string `json:"paths"`
	Prefix string   `json:"prefix"`
	Limit  int      `json:"limit"`
}

// LLMSSection is a titled group of pages.
type LLMSSection struct {
	Title string
	Items []*PageData
}

// LLMSCollection holds the curated sections built from page front matter
// (llms, llmsSection, llmsRank) and the rule sections built from LLMSRules.
// Pages listed under Curated never repeat under Rules.
type LLMSCollection struct {
	Curated []LLMSSection
	Rules   []LLMSSection
}

func loadLLMSRules(path string) (LLMSRules, error) {
	var rules LLMSRules
	path = strings.TrimSpace(path)
	if path == "" {
		return rules, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return rules, nil
		}
		return rules, fmt.Errorf("generator: read llms rules %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &rules); err != nil {
		return LLMSRules{}, fmt.Errorf("generator: decode llms rules %s: %w", path, err)
	}
	return rules, nil
}

type curatedPage struct {
	page    *PageData
	section string
	rank    float64
}

// buildLLMS expects pages sorted by route.
func buildLLMS(pages []*PageData, rules LLMSRules) LLMSCollection {
	var curated []curatedPage
	for _, page := range pages {
		data := page.Document.FrontMatter.Custom
		if flag, _ := data["llms"].(bool); !flag {
			continue
		}
		section, _ := data["llmsSection"].(string)
		if section == "" {
			section = defaultLLMSSection
		}
		curated = append(curated, curatedPage{page: page, section: section, rank: llmsRank(data["llmsRank"])})
	}
	sort.SliceStable(curated, func(i, j int) bool {
		if curated[i].rank != curated[j].rank {
			return curated[i].rank < curated[j].rank
		}
		return pageLastMod(curated[i].page).After(pageLastMod(curated[j].page))
	})

	collection := LLMSCollection{Rules: make([]LLMSSection, 0, len(rules.Sections))}
	seen := map[string]struct{}{}
	index := map[string]int{}
	for _, entry := range curated {
		seen[entry.page.Route] = struct{}{}
		i, ok := index[entry.section]
		if !ok {
			i = len(collection.Curated)
			index[entry.section] = i
			collection.Curated = append(collection.Curated, LLMSSection{Title: entry.section})
		}
		collection.Curated[i].Items = append(collection.Curated[i].Items, entry.page)
	}

	for _, rule := range rules.Sections {
		collection.Rules = append(collection.Rules, ruleSection(pages, rule, seen))
	}
	return collection
}

func ruleSection(pages []*PageData, rule LLMSRuleSection, curated map[string]struct{}) LLMSSection {
	var matched []*PageData
	picked := map[string]struct{}{}
	add := func(page *PageData) {
		if _, ok := picked[page.Route]; ok {
			return
		}
		picked[page.Route] = struct{}{}
		matched = append(matched, page)
	}
	for _, page := range pages {
		if slices.Contains(rule.Paths, page.Route) {
			add(page)
		}
	}
	if rule.Prefix != "" {
		for _, page := range pages {
			if strings.HasPrefix(page.Route, rule.Prefix) {
				add(page)
			}
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return pageLastMod(matched[i]).After(pageLastMod(matched[j]))
	})
	items := make([]*PageData, 0, len(matched))
	for _, page := range matched {
		if _, ok := curated[page.Route]; !ok {
			items = append(items, page)
		}
	}
	if rule.Limit > 0 && len(items) > rule.Limit {
		items = items[:rule.Limit]
	}

	title := rule.Title
	if title == "" {
		title = defaultLLMSSection
	}
	return LLMSSection{Title: title, Items: items}
}

// llmsRank accepts any finite YAML number.
func llmsRank(value any) float64 {
	var rank float64
	switch v := value.(type) {
	case int:
		rank = float64(v)
	case int64:
		rank = float64(v)
	case uint64:
		rank = float64(v)
	case float64:
		rank = v
	default:
		return defaultLLMSRank
	}
	if math.IsNaN(rank) || math.IsInf(rank, 0) {
		return defaultLLMSRank
	}
	return rank
}

// pageLastMod prefers updated, then date, then the file modification time.
func pageLastMod(page *PageData) time.Time {
	fm := page.Document.FrontMatter
	switch {
	case !fm.Updated.IsZero():
		return fm.Updated
	case !fm.Date.IsZero():
		return fm.Date
	default:
		return page.Document.LastModified
	}
}
