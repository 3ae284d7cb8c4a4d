// Package classify suggests screenshot categories from extracted text using
// keyword patterns. It is a best-effort fallback; the agent makes the final
// categorization decision.
package classify

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"snapsort/internal/config"
	"snapsort/internal/model"
)

const methodName = "keyword_classifier"

type Classifier struct {
	patterns     config.CategoryPatterns
	descriptions map[string]string
	compiled     map[string][]*regexp.Regexp
}

// New compiles the pattern table. Patterns are matched case-insensitively;
// a pattern that fails to compile is a configuration error.
func New(patterns config.CategoryPatterns, descriptions map[string]string) (*Classifier, error) {
	compiled := make(map[string][]*regexp.Regexp, len(patterns))
	for category, exprs := range patterns {
		res := make([]*regexp.Regexp, 0, len(exprs))
		for _, expr := range exprs {
			re, err := regexp.Compile("(?i)" + expr)
			if err != nil {
				return nil, fmt.Errorf("category %s: invalid pattern %q: %w", category, expr, err)
			}
			res = append(res, re)
		}
		compiled[category] = res
	}
	return &Classifier{patterns: patterns, descriptions: descriptions, compiled: compiled}, nil
}

// Suggest scores text against every category's patterns and returns the
// category with the most matches. No match (or empty text) yields the
// default category with confidence 0. When allowed is non-empty only those
// categories are considered.
func (c *Classifier) Suggest(text string, allowed []string) model.Suggestion {
	none := model.Suggestion{
		Category:        defaultCategory(allowed),
		Confidence:      0,
		MatchedKeywords: []string{},
		Method:          methodName,
	}
	if strings.TrimSpace(text) == "" {
		return none
	}

	allowSet := map[string]bool{}
	for _, name := range allowed {
		allowSet[strings.TrimSpace(name)] = true
	}

	bestCategory := ""
	bestScore := 0
	bestMatched := []string{}
	names := make([]string, 0, len(c.compiled))
	for name := range c.compiled {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, category := range names {
		if len(allowSet) > 0 && !allowSet[category] {
			continue
		}
		score := 0
		matched := []string{}
		for i, re := range c.compiled[category] {
			hits := re.FindAllStringIndex(text, -1)
			if len(hits) == 0 {
				continue
			}
			score += len(hits)
			matched = append(matched, c.patterns[category][i])
		}
		if score > bestScore {
			bestCategory = category
			bestScore = score
			bestMatched = matched
		}
	}

	if bestScore == 0 {
		return none
	}
	confidence := 0.5 + float64(len(bestMatched))*0.1
	if confidence > 0.9 {
		confidence = 0.9
	}
	return model.Suggestion{
		Category:        bestCategory,
		Confidence:      confidence,
		MatchedKeywords: bestMatched,
		Method:          methodName,
	}
}

func defaultCategory(allowed []string) string {
	if len(allowed) == 0 {
		return config.DefaultCategory
	}
	for _, name := range allowed {
		if name == config.DefaultCategory {
			return name
		}
	}
	return allowed[0]
}

// Categories returns the configured category set in the given order, with
// descriptions and keyword hints for the agent.
func (c *Classifier) Categories(order []string) []model.CategoryInfo {
	infos := make([]model.CategoryInfo, 0, len(order))
	for _, name := range order {
		keywords := c.patterns[name]
		if keywords == nil {
			keywords = []string{}
		}
		infos = append(infos, model.CategoryInfo{
			Name:        name,
			Description: c.descriptions[name],
			Keywords:    keywords,
		})
	}
	return infos
}
