package intent

import (
	"strings"
	"testing"
)

func topics(blocks []Block) []Topic {
	out := make([]Topic, len(blocks))
	for i, b := range blocks {
		out[i] = b.Topic
	}
	return out
}

func TestRespond(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected []Topic
	}{
		{
			name:     "Greeting, help and template together",
			query:    "hello, can you help me with templates",
			expected: []Topic{TopicGreeting, TopicHelp, TopicTemplate},
		},
		{
			name:     "Nonsense falls back",
			query:    "xyz nonsense",
			expected: []Topic{TopicFallback},
		},
		{
			name:     "Export triggers conversion",
			query:    "I want to export my data",
			expected: []Topic{TopicConversion},
		},
		{
			name:     "Transform is a conversion keyword",
			query:    "transform",
			expected: []Topic{TopicConversion},
		},
		{
			name:     "Excel hits template and conversion",
			query:    "EXCEL",
			expected: []Topic{TopicTemplate, TopicConversion},
		},
		{
			name:     "Multi-word keyword",
			query:    "it's not working",
			expected: []Topic{TopicTroubleshooting},
		},
		{
			name:     "How to phrase",
			query:    "how to do this?",
			expected: []Topic{TopicHelp},
		},
		{
			name:     "Design is template and structure",
			query:    "design",
			expected: []Topic{TopicTemplate, TopicStructure},
		},
		{
			name:     "Thanks",
			query:    "  Thanks!  ",
			expected: []Topic{TopicThanks},
		},
		{
			name:     "Advanced",
			query:    "dropdown validation",
			expected: []Topic{TopicAdvanced},
		},
		{
			name:     "Synonym only",
			query:    "which form",
			expected: []Topic{TopicSuggestion},
		},
		{
			name:     "Empty query",
			query:    "",
			expected: []Topic{TopicFallback},
		},
		{
			name:     "Short keywords need exact match",
			query:    "his",
			expected: []Topic{TopicFallback},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := topics(Respond(tt.query))
			if len(got) != len(tt.expected) {
				t.Fatalf("Respond(%q) topics = %v; want %v", tt.query, got, tt.expected)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("Respond(%q) topics = %v; want %v", tt.query, got, tt.expected)
				}
			}
		})
	}
}

func TestRespond_SuggestionText(t *testing.T) {
	blocks := Respond("fill in the form")
	if len(blocks) != 1 {
		t.Fatalf("Expected one block, got %d", len(blocks))
	}
	want := "I'm not sure I understand. Try asking about 'template'"
	if blocks[0].Text != want {
		t.Errorf("Expected %q, got %q", want, blocks[0].Text)
	}
}

func TestRespond_Deterministic(t *testing.T) {
	first := Respond("hello help convert error")
	for i := 0; i < 20; i++ {
		again := Respond("hello help convert error")
		if len(again) != len(first) {
			t.Fatalf("Run %d: length changed", i)
		}
		for j := range again {
			if again[j] != first[j] {
				t.Fatalf("Run %d: block %d changed", i, j)
			}
		}
	}
}

func TestSuggest_SortedAndDistinct(t *testing.T) {
	got := suggest([]string{"form", "bug", "change", "issue", "form"})
	want := []string{"convert", "error", "template"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("suggest() = %v; want %v", got, want)
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"Hello, World!", []string{"hello", "world"}},
		{"don't stop", []string{"don", "t", "stop"}},
		{"  csv->json  ", []string{"csv", "json"}},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Tokenize(tt.input)
			if strings.Join(got, "|") != strings.Join(tt.expected, "|") {
				t.Errorf("Tokenize(%q) = %v; want %v", tt.input, got, tt.expected)
			}
		})
	}
}
