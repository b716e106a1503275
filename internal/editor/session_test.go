package editor

import "testing"

func newTestSession() *Session {
	return NewSession(Deps{})
}

func TestWordCount(t *testing.T) {
	cases := []struct {
		text string
		want int
	}{
		{"", 0},
		{"  ", 0},
		{"\t\n", 0},
		{"hello", 1},
		{"a b  c", 3},
		{"  leading and trailing  ", 3},
	}
	for _, tc := range cases {
		s := newTestSession()
		s.SetText(tc.text)
		if got := s.WordCount(); got != tc.want {
			t.Errorf("WordCount(%q) = %d, want %d", tc.text, got, tc.want)
		}
	}
}

func TestTokenQuotes(t *testing.T) {
	s := newTestSession()
	s.SetText(wordsOf(100))
	if got := s.TokensForLLM(); got != 5 {
		t.Errorf("TokensForLLM = %d, want 5", got)
	}
	if got := s.TokensForSelf(); got != 2 {
		t.Errorf("TokensForSelf = %d, want 2", got)
	}

	// Quotes are recomputed from the buffer, never cached.
	s.SetText(wordsOf(40))
	if got := s.TokensForLLM(); got != 2 {
		t.Errorf("TokensForLLM after edit = %d, want 2", got)
	}
	if got := s.TokensForSelf(); got != 1 {
		t.Errorf("TokensForSelf after edit = %d, want 1", got)
	}
}

func TestTokensForSelfIsHalfRounded(t *testing.T) {
	for words := 0; words <= 200; words++ {
		s := newTestSession()
		s.SetText(wordsOf(words))
		if got, want := s.TokensForSelf(), s.TokensForLLM()/2; got != want {
			t.Fatalf("words=%d: TokensForSelf = %d, want %d", words, got, want)
		}
	}
}

func TestClearIsIdempotent(t *testing.T) {
	s := newTestSession()
	s.SetText("some words here")
	s.SetTitle("My Draft")
	s.SetCorrections([]Correction{{ID: 1, StartIndex: 0, EndIndex: 4}})
	s.state = StateSubmitted

	s.Clear()
	s.Clear()

	if s.Text() != "" {
		t.Errorf("text = %q, want empty", s.Text())
	}
	if len(s.Corrections()) != 0 {
		t.Errorf("corrections = %v, want empty", s.Corrections())
	}
	if s.State() != StateIdle {
		t.Errorf("state = %q, want idle", s.State())
	}
	if s.Title() != DefaultTitle {
		t.Errorf("title = %q, want %q", s.Title(), DefaultTitle)
	}
}

func TestLoadDocumentIsOneShotPerID(t *testing.T) {
	s := newTestSession()
	doc := Document{ID: "doc-1", Title: "Essay", Content: "original text"}

	if !s.LoadDocument(doc) {
		t.Fatal("first load should apply the document")
	}
	s.SetText("user edited text")

	if s.LoadDocument(doc) {
		t.Fatal("second load of the same document must be a no-op")
	}
	if s.Text() != "user edited text" {
		t.Errorf("reload overwrote the buffer: %q", s.Text())
	}

	// A different id resets the guard.
	if !s.LoadDocument(Document{ID: "doc-2", Title: "Other", Content: "other"}) {
		t.Fatal("loading a different document should apply")
	}
	if s.Text() != "other" || s.Title() != "Other" {
		t.Errorf("got text=%q title=%q", s.Text(), s.Title())
	}
	if !s.ReEdit() || s.DocumentID() != "doc-2" {
		t.Errorf("got reEdit=%v documentID=%q", s.ReEdit(), s.DocumentID())
	}
}

func TestLoadDocumentResetsSubmissionState(t *testing.T) {
	s := newTestSession()
	s.state = StateSubmitted
	s.SetCorrections([]Correction{{ID: 1}})

	s.LoadDocument(Document{ID: "doc-1", Title: "Essay", Content: "text"})

	if s.State() != StateIdle {
		t.Errorf("state = %q, want idle", s.State())
	}
	if len(s.Corrections()) != 0 {
		t.Errorf("corrections survived a load: %v", s.Corrections())
	}
}

func TestRedactedView(t *testing.T) {
	s := newTestSession()
	s.SetText("This is Offensive content, not offensiveness")

	got := s.Redacted()
	want := "This is ********* content, not offensiveness"
	if got != want {
		t.Errorf("Redacted() = %q, want %q", got, want)
	}
	// The canonical buffer is untouched.
	if s.Text() != "This is Offensive content, not offensiveness" {
		t.Errorf("buffer mutated: %q", s.Text())
	}
}

func TestBlacklistAdd(t *testing.T) {
	b := NewBlacklist("bad")
	if !b.Add("Worse") {
		t.Error("adding a new word should succeed")
	}
	if b.Add("bad") {
		t.Error("duplicate should be rejected")
	}
	if b.Add("WORSE") {
		t.Error("duplicate differing only in case should be rejected")
	}
	if got := b.Redact("a Bad worse day"); got != "a *** ***** day" {
		t.Errorf("Redact = %q", got)
	}
}

func TestReadOnlyOnlyDuringLLMRound(t *testing.T) {
	s := newTestSession()
	if s.ReadOnly() {
		t.Error("idle session must not be read-only")
	}
	s.state = StateSubmitted
	s.checkType = CheckLLM
	if !s.ReadOnly() {
		t.Error("submitted llm session must be read-only")
	}
	s.checkType = CheckSelf
	if s.ReadOnly() {
		t.Error("self-correction has no read-only effect")
	}
}

func TestCanEdit(t *testing.T) {
	s := newTestSession()
	s.SetText(wordsOf(21))

	if !s.CanEdit(Account{Tier: TierPaid}) {
		t.Error("paid tier should edit regardless of length")
	}
	if !s.CanEdit(Account{Tier: TierSuper}) {
		t.Error("super tier should edit regardless of length")
	}
	if s.CanEdit(Account{Tier: TierFree, CanUseFree: true}) {
		t.Error("free tier over the cap should not edit")
	}

	s.SetText(wordsOf(20))
	if !s.CanEdit(Account{Tier: TierFree, CanUseFree: true}) {
		t.Error("free tier within the cap should edit")
	}
	if s.CanEdit(Account{Tier: TierFree, CanUseFree: false}) {
		t.Error("free tier with usage exhausted should not edit")
	}
}

func TestExportFile(t *testing.T) {
	s := newTestSession()
	s.SetTitle("My Great   Essay")
	s.SetText("body text")

	name, data := s.ExportFile()
	if name != "My_Great_Essay.txt" {
		t.Errorf("filename = %q", name)
	}
	if string(data) != "body text" {
		t.Errorf("data = %q", data)
	}
}

func TestLoadFile(t *testing.T) {
	s := newTestSession()
	s.LoadFile("chapter-one.txt", []byte("uploaded body"))

	if s.Text() != "uploaded body" {
		t.Errorf("text = %q", s.Text())
	}
	if s.Title() != "chapter-one" {
		t.Errorf("title = %q", s.Title())
	}
}

func wordsOf(n int) string {
	if n == 0 {
		return ""
	}
	out := make([]byte, 0, n*2)
	for i := 0; i < n; i++ {
		if i > 0 {
			out = append(out, ' ')
		}
		out = append(out, 'w')
	}
	return string(out)
}
