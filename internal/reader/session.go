// Package reader owns the reading-position state: which book and chapter
// the user is canonically reading, which verse is currently displayed, and
// whether the display has wandered off on a cross-reference excursion.
// All mutation goes through Session methods; every change is mirrored to
// the persistence port.
package reader

import (
	"errors"
	"time"

	"bible-reader/internal/bible"
	"bible-reader/internal/crossref"
	"bible-reader/internal/state"
)

var (
	// ErrBookNotFound reports a book abbreviation absent from the current
	// translation.
	ErrBookNotFound = errors.New("book not found in translation")
	// ErrChapterOutOfRange reports a chapter selection outside
	// [1, chapter count] for the selected book.
	ErrChapterOutOfRange = errors.New("chapter out of range")
)

// Position is a (book, chapter) pair within the current translation.
type Position struct {
	Book    string
	Chapter int
}

// Session tracks a single reader's position. The selected position is what
// the display shows; the primary position is what the user is canonically
// reading. The two diverge only during a cross-reference excursion.
type Session struct {
	trans *bible.Translation
	refs  crossref.Index
	store state.Store

	selected Position
	primary  Position
	viewing  bool

	history *History
	now     func() time.Time

	// carried through to the snapshot for the view layer
	selectedVerse int
	scrollOffset  int
}

// Option configures a Session.
type Option func(*Session)

// WithClock sets the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// New builds a session over a loaded translation and cross-reference
// index. A snapshot previously written to the store seeds the starting
// position when its books still resolve; otherwise the session opens at
// the first book, chapter 1.
func New(trans *bible.Translation, refs crossref.Index, store state.Store, opts ...Option) *Session {
	s := &Session{
		trans: trans,
		refs:  refs,
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.history = NewHistory(s.now)

	s.selected = Position{Book: trans.FirstBook().Abbrev, Chapter: 1}
	s.primary = s.selected

	if snap, err := state.LoadSnapshot(store); err == nil && snap != nil {
		s.restore(snap)
	}

	s.history.Record(s.primary.Book, s.primary.Chapter)
	s.persist()
	return s
}

func (s *Session) restore(snap *state.Snapshot) {
	book, ok := s.trans.Book(snap.BookAbbrev)
	if !ok {
		return
	}
	ch := snap.Chapter
	if ch < 1 || ch > book.ChapterCount() {
		ch = 1
	}
	s.selected = Position{Book: book.Abbrev, Chapter: ch}
	s.primary = s.selected
	s.selectedVerse = snap.SelectedVerse
	s.scrollOffset = snap.ScrollOffset

	if pb, ok := s.trans.Book(snap.PrimaryReading.BookAbbrev); ok {
		pch := snap.PrimaryReading.Chapter
		if pch < 1 || pch > pb.ChapterCount() {
			pch = 1
		}
		s.primary = Position{Book: pb.Abbrev, Chapter: pch}
		s.viewing = snap.IsViewingCrossRef
	}
}

// SelectBook moves the reading to chapter 1 of the named book. Direct
// navigation: the primary position follows and any excursion ends.
func (s *Session) SelectBook(abbrev string) error {
	if _, ok := s.trans.Book(abbrev); !ok {
		return ErrBookNotFound
	}
	s.selected = Position{Book: abbrev, Chapter: 1}
	s.primary = s.selected
	s.viewing = false
	s.history.Record(s.primary.Book, s.primary.Chapter)
	s.persist()
	return nil
}

// SelectChapter moves the reading to chapter n of the selected book.
// Out-of-range chapters are rejected, never displayed.
func (s *Session) SelectChapter(n int) error {
	book, _ := s.trans.Book(s.selected.Book)
	if n < 1 || n > book.ChapterCount() {
		return ErrChapterOutOfRange
	}
	s.selected.Chapter = n
	s.primary = s.selected
	s.viewing = false
	s.history.Record(s.primary.Book, s.primary.Chapter)
	s.persist()
	return nil
}

// GoTo jumps to a (book, chapter) position, as from the history overlay.
func (s *Session) GoTo(abbrev string, chapter int) error {
	book, ok := s.trans.Book(abbrev)
	if !ok {
		return ErrBookNotFound
	}
	if chapter < 1 || chapter > book.ChapterCount() {
		return ErrChapterOutOfRange
	}
	s.selected = Position{Book: abbrev, Chapter: chapter}
	s.primary = s.selected
	s.viewing = false
	s.history.Record(s.primary.Book, s.primary.Chapter)
	s.persist()
	return nil
}

// NextChapter pages forward, crossing into the next book after the last
// chapter. Returns false at the end of the translation.
func (s *Session) NextChapter() bool {
	book, _ := s.trans.Book(s.selected.Book)
	if s.selected.Chapter < book.ChapterCount() {
		return s.GoTo(s.selected.Book, s.selected.Chapter+1) == nil
	}
	books := s.trans.Books()
	if i := s.trans.BookIndex(s.selected.Book); i >= 0 && i < len(books)-1 {
		return s.GoTo(books[i+1].Abbrev, 1) == nil
	}
	return false
}

// PrevChapter pages backward, crossing into the previous book's last
// chapter before chapter 1. Returns false at the start of the translation.
func (s *Session) PrevChapter() bool {
	if s.selected.Chapter > 1 {
		return s.GoTo(s.selected.Book, s.selected.Chapter-1) == nil
	}
	books := s.trans.Books()
	if i := s.trans.BookIndex(s.selected.Book); i > 0 {
		prev := &books[i-1]
		return s.GoTo(prev.Abbrev, prev.ChapterCount()) == nil
	}
	return false
}

// NavigateToCrossRef jumps the display to a cross-reference target without
// disturbing the primary position or the history log. A target book
// missing from the current translation is reported, not swallowed; a
// target chapter beyond the book's range is clamped to the last chapter.
func (s *Session) NavigateToCrossRef(ref crossref.Ref) error {
	book, ok := s.trans.Book(ref.Book)
	if !ok {
		return ErrBookNotFound
	}
	ch := ref.Chapter
	if ch > book.ChapterCount() {
		ch = book.ChapterCount()
	}
	if ch < 1 {
		ch = 1
	}
	s.selected = Position{Book: ref.Book, Chapter: ch}
	s.viewing = true
	s.persist()
	return nil
}

// ReturnToPrimary ends a cross-reference excursion, restoring the primary
// position. No-op when no excursion is active.
func (s *Session) ReturnToPrimary() bool {
	if !s.viewing {
		return false
	}
	s.selected = s.primary
	s.viewing = false
	s.persist()
	return true
}

// SetTranslation swaps in a freshly loaded translation and index,
// re-resolving both positions by book abbreviation. When the selected book
// does not exist in the new translation the session falls back to its
// first book and the excursion flag clears; otherwise the flag is
// preserved. Reports whether the fallback fired.
func (s *Session) SetTranslation(trans *bible.Translation, refs crossref.Index) bool {
	s.trans = trans
	s.refs = refs

	fallback := false
	if book, ok := trans.Book(s.selected.Book); ok {
		if s.selected.Chapter > book.ChapterCount() {
			s.selected.Chapter = book.ChapterCount()
		}
	} else {
		s.selected = Position{Book: trans.FirstBook().Abbrev, Chapter: 1}
		fallback = true
	}

	if book, ok := trans.Book(s.primary.Book); ok {
		if s.primary.Chapter > book.ChapterCount() {
			s.primary.Chapter = book.ChapterCount()
		}
	} else {
		s.primary = s.selected
		fallback = true
	}

	if fallback {
		s.viewing = false
	}
	s.persist()
	return fallback
}

// SetViewOffsets records the view layer's verse selection and scroll
// offset so they survive a restart.
func (s *Session) SetViewOffsets(selectedVerse, scrollOffset int) {
	s.selectedVerse = selectedVerse
	s.scrollOffset = scrollOffset
	s.persist()
}

// Translation returns the loaded translation.
func (s *Session) Translation() *bible.Translation {
	return s.trans
}

// Selected returns the displayed position.
func (s *Session) Selected() Position {
	return s.selected
}

// SelectedBook returns the displayed book.
func (s *Session) SelectedBook() *bible.Book {
	book, _ := s.trans.Book(s.selected.Book)
	return book
}

// Verses returns the verse strings of the displayed chapter.
func (s *Session) Verses() []string {
	book := s.SelectedBook()
	if book == nil {
		return nil
	}
	return book.Verses(s.selected.Chapter)
}

// Primary returns the canonical reading position.
func (s *Session) Primary() Position {
	return s.primary
}

// ViewingCrossRef reports whether the display is on an excursion.
func (s *Session) ViewingCrossRef() bool {
	return s.viewing
}

// RefsForVerse returns the cross-references of a verse in the displayed
// chapter.
func (s *Session) RefsForVerse(verse int) []crossref.Ref {
	return s.refs.Lookup(s.selected.Book, s.selected.Chapter, verse)
}

// History returns the navigation log.
func (s *Session) History() *History {
	return s.history
}

// ViewOffsets returns the persisted verse selection and scroll offset.
func (s *Session) ViewOffsets() (selectedVerse, scrollOffset int) {
	return s.selectedVerse, s.scrollOffset
}

// persist mirrors the session into the store. The write is best-effort:
// in-memory state stays authoritative and a failed write never blocks
// navigation.
func (s *Session) persist() {
	_ = state.SaveSnapshot(s.store, state.Snapshot{
		BookAbbrev:  s.selected.Book,
		Chapter:     s.selected.Chapter,
		Translation: s.trans.ID(),
		PrimaryReading: state.Position{
			BookAbbrev: s.primary.Book,
			Chapter:    s.primary.Chapter,
		},
		IsViewingCrossRef: s.viewing,
		SelectedVerse:     s.selectedVerse,
		ScrollOffset:      s.scrollOffset,
	})
}
