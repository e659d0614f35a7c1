// Package intent answers help questions by matching query words against a
// fixed table of keyword rules.
package intent

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// Block is one paragraph of a response.
type Block struct {
	Topic Topic  `json:"topic"`
	Text  string `json:"text"`
}

// Respond returns the blocks for every rule whose keywords occur in query.
// When nothing matches it returns a single suggestion or fallback block.
func Respond(query string) []Block {
	words := Tokenize(query)

	var blocks []Block
	for _, r := range rules {
		if matchesAny(words, r.keywords) {
			blocks = append(blocks, Block{Topic: r.topic, Text: r.text})
		}
	}
	if len(blocks) > 0 {
		return blocks
	}

	if suggestions := suggest(words); len(suggestions) > 0 {
		parts := make([]string, len(suggestions))
		for i, s := range suggestions {
			parts[i] = fmt.Sprintf("Try asking about '%s'", s)
		}
		return []Block{{
			Topic: TopicSuggestion,
			Text:  "I'm not sure I understand. " + strings.Join(parts, " "),
		}}
	}

	return []Block{{Topic: TopicFallback, Text: fallbackText}}
}

// Tokenize lowercases query and splits it into words on any rune that is not
// a letter or digit.
func Tokenize(query string) []string {
	query = strings.ToLower(strings.TrimSpace(query))
	return strings.FieldsFunc(query, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// matchesAny reports whether any keyword occurs in words. Multi-word keywords
// must appear as consecutive words; keywords of four or more letters also
// match their plural.
func matchesAny(words, keywords []string) bool {
	for _, kw := range keywords {
		parts := strings.Fields(kw)
		for i := 0; i+len(parts) <= len(words); i++ {
			if equalAt(words, i, parts) {
				return true
			}
		}
	}
	return false
}

func equalAt(words []string, at int, parts []string) bool {
	for j, p := range parts {
		if !wordMatches(words[at+j], p) {
			return false
		}
	}
	return true
}

func wordMatches(word, keyword string) bool {
	if word == keyword {
		return true
	}
	if len(keyword) < 4 {
		return false
	}
	return word == keyword+"s" || word == keyword+"es"
}

// suggest returns the distinct synonym targets hinted at by words, sorted.
func suggest(words []string) []string {
	seen := make(map[string]struct{})
	for _, w := range words {
		for target, variants := range synonyms {
			for _, v := range variants {
				if w == v {
					seen[target] = struct{}{}
				}
			}
		}
	}

	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
