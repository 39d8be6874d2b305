package reader

import (
	"errors"
	"testing"
	"time"

	"bible-reader/internal/bible"
	"bible-reader/internal/crossref"
	"bible-reader/internal/state"
)

const testTranslation = `[
	{"abbrev": "gn", "chapters": [
		["gn 1:1", "gn 1:2", "gn 1:3"],
		["gn 2:1", "gn 2:2"],
		["gn 3:1"]
	]},
	{"abbrev": "ex", "chapters": [
		["ex 1:1", "ex 1:2"],
		["ex 2:1"]
	]},
	{"abbrev": "jo", "chapters": [
		["jo 1:1"]
	]}
]`

// shortTranslation has no "jo" book and fewer gn chapters, for
// translation-switch fallback cases.
const shortTranslation = `[
	{"abbrev": "gn", "chapters": [
		["gn 1:1"]
	]},
	{"abbrev": "ex", "chapters": [
		["ex 1:1"]
	]}
]`

var testRefs = crossref.Index{
	"gn-1-1": {
		{Book: "jo", Chapter: 1, Verse: 1, Text: "jo 1:1"},
		{Book: "ex", Chapter: 2, Verse: 1, Text: "ex 2:1"},
	},
	"gn-1-2": {
		{Book: "zz", Chapter: 1, Verse: 1, Text: "not in translation"},
		{Book: "ex", Chapter: 99, Verse: 1, Text: "chapter past the end"},
	},
}

func loadTranslation(t *testing.T, data string) *bible.Translation {
	t.Helper()
	trans, err := bible.Decode("en_test.json", []byte(data))
	if err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	return trans
}

func newSession(t *testing.T) (*Session, *state.Memory) {
	t.Helper()
	store := state.NewMemory()
	trans := loadTranslation(t, testTranslation)
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := New(trans, testRefs, store, WithClock(func() time.Time { return fixed }))
	return s, store
}

func TestNewStartsAtFirstBook(t *testing.T) {
	s, _ := newSession(t)

	if got := s.Selected(); got != (Position{Book: "gn", Chapter: 1}) {
		t.Errorf("Selected = %+v", got)
	}
	if got := s.Primary(); got != s.Selected() {
		t.Errorf("Primary = %+v, want same as Selected", got)
	}
	if s.ViewingCrossRef() {
		t.Error("new session is viewing a cross-reference")
	}
	if s.History().Len() != 1 {
		t.Errorf("history Len = %d, want 1 initial entry", s.History().Len())
	}
}

func TestSelectBookResetsChapter(t *testing.T) {
	s, _ := newSession(t)

	if err := s.SelectChapter(3); err != nil {
		t.Fatal(err)
	}
	if err := s.SelectBook("ex"); err != nil {
		t.Fatal(err)
	}
	if got := s.Selected(); got != (Position{Book: "ex", Chapter: 1}) {
		t.Errorf("Selected = %+v, want ex 1", got)
	}
	if got := s.Primary(); got != s.Selected() {
		t.Errorf("Primary = %+v, want same as Selected", got)
	}
}

func TestSelectBookUnknown(t *testing.T) {
	s, _ := newSession(t)

	err := s.SelectBook("zz")
	if !errors.Is(err, ErrBookNotFound) {
		t.Fatalf("SelectBook(zz) = %v, want ErrBookNotFound", err)
	}
	if got := s.Selected(); got != (Position{Book: "gn", Chapter: 1}) {
		t.Errorf("position moved on failed select: %+v", got)
	}
}

func TestSelectChapterBounds(t *testing.T) {
	s, _ := newSession(t)

	for _, n := range []int{0, -1, 4} {
		if err := s.SelectChapter(n); !errors.Is(err, ErrChapterOutOfRange) {
			t.Errorf("SelectChapter(%d) = %v, want ErrChapterOutOfRange", n, err)
		}
	}
	if got := s.Selected().Chapter; got != 1 {
		t.Errorf("chapter moved on rejected select: %d", got)
	}

	if err := s.SelectChapter(3); err != nil {
		t.Fatalf("SelectChapter(3): %v", err)
	}
	if got := s.Selected().Chapter; got != 3 {
		t.Errorf("chapter = %d, want 3", got)
	}
}

func TestSelectBookEndsExcursion(t *testing.T) {
	s, _ := newSession(t)

	if err := s.NavigateToCrossRef(testRefs["gn-1-1"][0]); err != nil {
		t.Fatal(err)
	}
	if !s.ViewingCrossRef() {
		t.Fatal("excursion flag not set")
	}
	if err := s.SelectBook("ex"); err != nil {
		t.Fatal(err)
	}
	if s.ViewingCrossRef() {
		t.Error("excursion flag survived direct navigation")
	}
	if got := s.Primary(); got != (Position{Book: "ex", Chapter: 1}) {
		t.Errorf("Primary = %+v, want ex 1", got)
	}
}

func TestNavigateAndReturn(t *testing.T) {
	s, _ := newSession(t)

	if err := s.SelectChapter(2); err != nil {
		t.Fatal(err)
	}
	histBefore := s.History().Len()

	if err := s.NavigateToCrossRef(testRefs["gn-1-1"][0]); err != nil {
		t.Fatalf("NavigateToCrossRef: %v", err)
	}
	if got := s.Selected(); got != (Position{Book: "jo", Chapter: 1}) {
		t.Errorf("Selected after navigate = %+v, want jo 1", got)
	}
	if got := s.Primary(); got != (Position{Book: "gn", Chapter: 2}) {
		t.Errorf("Primary moved during excursion: %+v", got)
	}
	if !s.ViewingCrossRef() {
		t.Error("excursion flag not set")
	}
	if s.History().Len() != histBefore {
		t.Errorf("excursion was logged: Len = %d, want %d", s.History().Len(), histBefore)
	}

	if !s.ReturnToPrimary() {
		t.Fatal("ReturnToPrimary = false during excursion")
	}
	if got := s.Selected(); got != (Position{Book: "gn", Chapter: 2}) {
		t.Errorf("Selected after return = %+v, want gn 2", got)
	}
	if s.ViewingCrossRef() {
		t.Error("excursion flag still set after return")
	}

	if s.ReturnToPrimary() {
		t.Error("ReturnToPrimary = true with no excursion active")
	}
}

func TestNavigateToCrossRefMissingBook(t *testing.T) {
	s, _ := newSession(t)

	err := s.NavigateToCrossRef(testRefs["gn-1-2"][0])
	if !errors.Is(err, ErrBookNotFound) {
		t.Fatalf("NavigateToCrossRef(zz) = %v, want ErrBookNotFound", err)
	}
	if s.ViewingCrossRef() {
		t.Error("excursion flag set on failed navigation")
	}
	if got := s.Selected(); got != (Position{Book: "gn", Chapter: 1}) {
		t.Errorf("position moved on failed navigation: %+v", got)
	}
}

func TestNavigateToCrossRefClampsChapter(t *testing.T) {
	s, _ := newSession(t)

	if err := s.NavigateToCrossRef(testRefs["gn-1-2"][1]); err != nil {
		t.Fatalf("NavigateToCrossRef: %v", err)
	}
	if got := s.Selected(); got != (Position{Book: "ex", Chapter: 2}) {
		t.Errorf("Selected = %+v, want clamped ex 2", got)
	}
}

func TestChainedExcursion(t *testing.T) {
	s, _ := newSession(t)

	if err := s.NavigateToCrossRef(testRefs["gn-1-1"][0]); err != nil {
		t.Fatal(err)
	}
	if err := s.NavigateToCrossRef(testRefs["gn-1-1"][1]); err != nil {
		t.Fatal(err)
	}
	if got := s.Selected(); got != (Position{Book: "ex", Chapter: 2}) {
		t.Errorf("Selected = %+v, want ex 2", got)
	}
	// A chained excursion still returns to the original primary, not to
	// the intermediate cross-reference target.
	if !s.ReturnToPrimary() {
		t.Fatal("ReturnToPrimary = false")
	}
	if got := s.Selected(); got != (Position{Book: "gn", Chapter: 1}) {
		t.Errorf("Selected after return = %+v, want gn 1", got)
	}
}

func TestNextPrevChapterCrossBooks(t *testing.T) {
	s, _ := newSession(t)

	// gn has 3 chapters; paging past the last lands in ex 1.
	for i := 0; i < 3; i++ {
		if !s.NextChapter() {
			t.Fatalf("NextChapter stalled at %+v", s.Selected())
		}
	}
	if got := s.Selected(); got != (Position{Book: "ex", Chapter: 1}) {
		t.Errorf("Selected = %+v, want ex 1", got)
	}

	if !s.PrevChapter() {
		t.Fatal("PrevChapter = false")
	}
	if got := s.Selected(); got != (Position{Book: "gn", Chapter: 3}) {
		t.Errorf("Selected = %+v, want gn 3", got)
	}
}

func TestNextChapterStopsAtEnd(t *testing.T) {
	s, _ := newSession(t)

	if err := s.GoTo("jo", 1); err != nil {
		t.Fatal(err)
	}
	if s.NextChapter() {
		t.Error("NextChapter = true at the end of the translation")
	}
	if got := s.Selected(); got != (Position{Book: "jo", Chapter: 1}) {
		t.Errorf("position moved: %+v", got)
	}
}

func TestPrevChapterStopsAtStart(t *testing.T) {
	s, _ := newSession(t)

	if s.PrevChapter() {
		t.Error("PrevChapter = true at the start of the translation")
	}
}

func TestHistoryLogging(t *testing.T) {
	s, _ := newSession(t)

	if err := s.SelectBook("ex"); err != nil {
		t.Fatal(err)
	}
	if err := s.SelectChapter(2); err != nil {
		t.Fatal(err)
	}
	if err := s.SelectBook("ex"); err != nil {
		t.Fatal(err)
	}

	entries := s.History().Entries()
	want := []Position{
		{Book: "ex", Chapter: 1},
		{Book: "ex", Chapter: 2},
		{Book: "ex", Chapter: 1},
		{Book: "gn", Chapter: 1},
	}
	if len(entries) != len(want) {
		t.Fatalf("history Len = %d, want %d", len(entries), len(want))
	}
	for i, w := range want {
		if entries[i].Book != w.Book || entries[i].Chapter != w.Chapter {
			t.Errorf("entries[%d] = %s %d, want %s %d", i, entries[i].Book, entries[i].Chapter, w.Book, w.Chapter)
		}
	}
}

func TestRefsForVerse(t *testing.T) {
	s, _ := newSession(t)

	refs := s.RefsForVerse(1)
	if len(refs) != 2 {
		t.Fatalf("RefsForVerse(1) = %d refs, want 2", len(refs))
	}
	if got := s.RefsForVerse(3); len(got) != 0 {
		t.Errorf("RefsForVerse(3) = %d refs, want 0", len(got))
	}
}

func TestPersistenceRoundTrip(t *testing.T) {
	store := state.NewMemory()
	trans := loadTranslation(t, testTranslation)

	s1 := New(trans, testRefs, store)
	if err := s1.SelectBook("ex"); err != nil {
		t.Fatal(err)
	}
	if err := s1.SelectChapter(2); err != nil {
		t.Fatal(err)
	}
	if err := s1.NavigateToCrossRef(testRefs["gn-1-1"][0]); err != nil {
		t.Fatal(err)
	}
	s1.SetViewOffsets(1, 5)

	s2 := New(trans, testRefs, store)
	if got := s2.Selected(); got != (Position{Book: "jo", Chapter: 1}) {
		t.Errorf("restored Selected = %+v, want jo 1", got)
	}
	if got := s2.Primary(); got != (Position{Book: "ex", Chapter: 2}) {
		t.Errorf("restored Primary = %+v, want ex 2", got)
	}
	if !s2.ViewingCrossRef() {
		t.Error("excursion flag lost across restart")
	}
	sv, so := s2.ViewOffsets()
	if sv != 1 || so != 5 {
		t.Errorf("restored offsets = %d, %d, want 1, 5", sv, so)
	}
}

func TestRestoreIgnoresStaleSnapshot(t *testing.T) {
	store := state.NewMemory()
	if err := state.SaveSnapshot(store, state.Snapshot{
		BookAbbrev:     "zz",
		Chapter:        5,
		Translation:    "en_test.json",
		PrimaryReading: state.Position{BookAbbrev: "zz", Chapter: 5},
	}); err != nil {
		t.Fatal(err)
	}

	trans := loadTranslation(t, testTranslation)
	s := New(trans, testRefs, store)
	if got := s.Selected(); got != (Position{Book: "gn", Chapter: 1}) {
		t.Errorf("Selected = %+v, want defaults for unresolvable snapshot", got)
	}
}

func TestRestoreClampsChapter(t *testing.T) {
	store := state.NewMemory()
	if err := state.SaveSnapshot(store, state.Snapshot{
		BookAbbrev:     "gn",
		Chapter:        99,
		Translation:    "en_test.json",
		PrimaryReading: state.Position{BookAbbrev: "gn", Chapter: 99},
	}); err != nil {
		t.Fatal(err)
	}

	trans := loadTranslation(t, testTranslation)
	s := New(trans, testRefs, store)
	if got := s.Selected(); got != (Position{Book: "gn", Chapter: 1}) {
		t.Errorf("Selected = %+v, want gn 1 for out-of-range chapter", got)
	}
}

func TestSetTranslationKeepsPosition(t *testing.T) {
	s, _ := newSession(t)

	if err := s.SelectBook("ex"); err != nil {
		t.Fatal(err)
	}
	if fallback := s.SetTranslation(loadTranslation(t, shortTranslation), nil); fallback {
		t.Error("fallback fired for a book present in both translations")
	}
	if got := s.Selected(); got != (Position{Book: "ex", Chapter: 1}) {
		t.Errorf("Selected = %+v, want ex 1", got)
	}
}

func TestSetTranslationClampsChapter(t *testing.T) {
	s, _ := newSession(t)

	if err := s.SelectChapter(3); err != nil {
		t.Fatal(err)
	}
	if fallback := s.SetTranslation(loadTranslation(t, shortTranslation), nil); fallback {
		t.Error("fallback fired; clamping should have sufficed")
	}
	if got := s.Selected(); got != (Position{Book: "gn", Chapter: 1}) {
		t.Errorf("Selected = %+v, want gn clamped to 1", got)
	}
}

func TestSetTranslationFallback(t *testing.T) {
	s, _ := newSession(t)

	if err := s.NavigateToCrossRef(testRefs["gn-1-1"][0]); err != nil {
		t.Fatal(err)
	}
	// "jo" does not exist in the short translation.
	if fallback := s.SetTranslation(loadTranslation(t, shortTranslation), nil); !fallback {
		t.Fatal("fallback did not fire for a missing book")
	}
	if got := s.Selected(); got != (Position{Book: "gn", Chapter: 1}) {
		t.Errorf("Selected = %+v, want first book", got)
	}
	if s.ViewingCrossRef() {
		t.Error("excursion flag survived the fallback")
	}
}
