package editor

import (
	"math"
	"path/filepath"
	"regexp"
	"strings"
)

// Session owns one editing session: the buffer, its correction ledger, and
// the submission lifecycle. It is not safe for concurrent use; callers
// serialize access the same way UI events serialize on one logical thread.
type Session struct {
	engine    Engine
	billing   Billing
	accounts  Accounts
	documents Documents

	text        string
	title       string
	documentID  string
	reEdit      bool
	loadedDocID string

	// generation is bumped on Clear/LoadDocument so that an engine response
	// initiated against an earlier buffer is discarded, not applied.
	generation uint64

	blacklist *Blacklist

	corrections []Correction
	activeID    int
	hasActive   bool

	state         SubmissionState
	checkType     CheckType
	overlapPolicy OverlapPolicy
}

// Deps wires the session's external collaborators. Blacklist is optional and
// defaults to DefaultBlacklist.
type Deps struct {
	Engine        Engine
	Billing       Billing
	Accounts      Accounts
	Documents     Documents
	Blacklist     []string
	OverlapPolicy OverlapPolicy
}

func NewSession(deps Deps) *Session {
	words := deps.Blacklist
	if words == nil {
		words = DefaultBlacklist
	}
	return &Session{
		engine:        deps.Engine,
		billing:       deps.Billing,
		accounts:      deps.Accounts,
		documents:     deps.Documents,
		blacklist:     NewBlacklist(words...),
		title:         DefaultTitle,
		state:         StateIdle,
		checkType:     CheckLLM,
		overlapPolicy: deps.OverlapPolicy,
	}
}

func (s *Session) Text() string { return s.text }

// SetText replaces the buffer wholesale. Word count and the redacted view are
// derived on read, never cached.
func (s *Session) SetText(text string) { s.text = text }

func (s *Session) Title() string         { return s.title }
func (s *Session) SetTitle(title string) { s.title = title }

// WordCount is the whitespace-delimited token count of the buffer.
func (s *Session) WordCount() int { return len(strings.Fields(s.text)) }

// Redacted is the display view of the buffer with blacklisted words masked.
// The canonical buffer is never mutated.
func (s *Session) Redacted() string { return s.blacklist.Redact(s.text) }

func (s *Session) Blacklist() *Blacklist { return s.blacklist }

// Clear resets the session to a fresh unsaved state. Idempotent.
func (s *Session) Clear() {
	s.text = ""
	s.corrections = nil
	s.hasActive = false
	s.state = StateIdle
	s.title = DefaultTitle
	s.generation++
}

// LoadDocument hydrates the session from a saved document. The load is
// one-shot per document id: hydrating the same document twice is a no-op, so
// two data sources racing to supply it cannot double-load. Returns whether
// the document was applied.
func (s *Session) LoadDocument(doc Document) bool {
	if doc.ID != "" && doc.ID == s.loadedDocID {
		return false
	}
	s.text = doc.Content
	s.title = doc.Title
	s.documentID = doc.ID
	s.reEdit = true
	s.loadedDocID = doc.ID
	s.corrections = nil
	s.hasActive = false
	s.state = StateIdle
	s.generation++
	return true
}

func (s *Session) DocumentID() string { return s.documentID }
func (s *Session) ReEdit() bool       { return s.reEdit }

func (s *Session) State() SubmissionState { return s.state }
func (s *Session) CheckType() CheckType   { return s.checkType }

func (s *Session) SetCheckType(kind CheckType) { s.checkType = kind }

// TokensForLLM quotes the token cost of an LLM correction round for the
// current buffer.
func (s *Session) TokensForLLM() int {
	return int(math.Floor(tokenRatePerWord * float64(s.WordCount())))
}

// TokensForSelf is half the LLM quote, rounded down.
func (s *Session) TokensForSelf() int { return s.TokensForLLM() / 2 }

// ReadOnly reports whether the presentation layer should block buffer edits.
// Only the LLM path locks the buffer: its corrections are anchored to the
// submitted text. Self-correction produces none, so nothing needs protecting.
func (s *Session) ReadOnly() bool {
	return s.state == StateSubmitted && s.checkType == CheckLLM
}

// CanEdit reports whether the acting user may type into the buffer at all.
func (s *Session) CanEdit(acct Account) bool {
	switch acct.Tier {
	case TierPaid, TierSuper:
		return true
	case TierFree:
		return s.WordCount() <= FreeWordLimit && acct.CanUseFree
	default:
		return false
	}
}

// ExportFile serializes the buffer for download as plain text, named after
// the title with whitespace collapsed to underscores. Pure and ungated.
func (s *Session) ExportFile() (filename string, data []byte) {
	name := whitespaceRun.ReplaceAllString(s.title, "_")
	return name + ".txt", []byte(s.text)
}

// LoadFile replaces the buffer with an uploaded file's contents verbatim.
// The filename minus its extension becomes the title.
func (s *Session) LoadFile(filename string, content []byte) {
	s.text = string(content)
	base := filepath.Base(filename)
	s.title = strings.TrimSuffix(base, filepath.Ext(base))
}

var whitespaceRun = regexp.MustCompile(`\s+`)
