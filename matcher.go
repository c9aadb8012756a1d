/*
Copyright 2024 Leadgrid Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package leadgrid

import (
	"regexp"
	"sort"
	"strings"
)

// stopwords are tokens too generic to select providers on their own.
var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "for": true, "in": true, "my": true,
	"near": true, "need": true, "of": true, "on": true, "or": true,
	"the": true, "to": true, "with": true, "i": true, "me": true,
}

var tokenSplitter = regexp.MustCompile(`[^a-z0-9]+`)

// Tokenize lowercases a seeker's free-text search and splits it into the
// tokens the keyword matcher runs on. Stopwords and single-character
// fragments are dropped; duplicates collapse to one.
func Tokenize(searchText string) []string {
	parts := tokenSplitter.Split(strings.ToLower(searchText), -1)
	seen := make(map[string]bool)
	var tokens []string
	for _, part := range parts {
		if len(part) < 2 || stopwords[part] || seen[part] {
			continue
		}
		seen[part] = true
		tokens = append(tokens, part)
	}
	return tokens
}

// TokenPattern builds the case-insensitive alternation the keyword store is
// queried with. A registered keyword matches a lead when any search token
// appears inside it, so "web development" reaches keywords like "Website
// Development Service". Returns the empty string when nothing is matchable.
func TokenPattern(searchText string) string {
	tokens := Tokenize(searchText)
	if len(tokens) == 0 {
		return ""
	}
	quoted := make([]string, len(tokens))
	for i, token := range tokens {
		quoted[i] = regexp.QuoteMeta(token)
	}
	return "(" + strings.Join(quoted, "|") + ")"
}

// sortedKeywordSet flattens a keyword set into the deterministic slice stored
// on leads and responses.
func sortedKeywordSet(set map[string]bool) []string {
	keywords := make([]string, 0, len(set))
	for keyword := range set {
		keywords = append(keywords, keyword)
	}
	sort.Strings(keywords)
	return keywords
}
