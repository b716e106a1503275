package editor

import (
	"regexp"
	"strings"
)

// DefaultBlacklist seeds a session before the moderation list is loaded.
var DefaultBlacklist = []string{"profanity", "offensive", "inappropriate", "obscene"}

type blacklistEntry struct {
	word    string
	pattern *regexp.Regexp
}

// Blacklist masks configured words in display text. Matching is
// case-insensitive and word-boundary anchored; each occurrence is replaced by
// asterisks of equal length.
type Blacklist struct {
	entries []blacklistEntry
}

func NewBlacklist(words ...string) *Blacklist {
	b := &Blacklist{}
	for _, word := range words {
		b.Add(word)
	}
	return b
}

// Add registers a word. Words are stored lowercase; duplicates are ignored.
// Returns whether the word was added.
func (b *Blacklist) Add(word string) bool {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" || b.contains(word) {
		return false
	}
	pattern, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(word) + `\b`)
	if err != nil {
		return false
	}
	b.entries = append(b.entries, blacklistEntry{word: word, pattern: pattern})
	return true
}

func (b *Blacklist) Words() []string {
	words := make([]string, len(b.entries))
	for i, entry := range b.entries {
		words[i] = entry.word
	}
	return words
}

// Redact returns text with every blacklisted occurrence masked. The input is
// never mutated; this is a derived view.
func (b *Blacklist) Redact(text string) string {
	for _, entry := range b.entries {
		mask := strings.Repeat("*", len(entry.word))
		text = entry.pattern.ReplaceAllString(text, mask)
	}
	return text
}

func (b *Blacklist) contains(word string) bool {
	for _, entry := range b.entries {
		if entry.word == word {
			return true
		}
	}
	return false
}
