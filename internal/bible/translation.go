// Package bible holds the loaded text of one translation: an ordered list
// of books, each an ordered list of chapters, each an ordered list of verse
// strings. Translations are read-only after decode.
package bible

import (
	"encoding/json"
	"fmt"
)

// Book is one book of a translation. Chapters are 1-indexed by position+1,
// verses likewise.
type Book struct {
	Abbrev   string     `json:"abbrev"`
	Name     string     `json:"name,omitempty"`
	Chapters [][]string `json:"chapters"`
}

// ChapterCount returns the number of chapters in the book.
func (b *Book) ChapterCount() int {
	return len(b.Chapters)
}

// Verses returns the verse strings of the given 1-based chapter, or nil
// when the chapter is out of range.
func (b *Book) Verses(chapter int) []string {
	if chapter < 1 || chapter > len(b.Chapters) {
		return nil
	}
	return b.Chapters[chapter-1]
}

// Verse returns a single verse by 1-based chapter and verse number.
func (b *Book) Verse(chapter, verse int) (string, bool) {
	vs := b.Verses(chapter)
	if verse < 1 || verse > len(vs) {
		return "", false
	}
	return vs[verse-1], true
}

// Translation is the decoded text of one translation file.
type Translation struct {
	id       string
	books    []Book
	byAbbrev map[string]int
	search   *searchIndex
}

// Decode parses and validates a translation file. The document must be a
// non-empty array of books, every book must carry a unique non-empty
// abbreviation and at least one chapter. Shape errors fail the decode
// rather than surfacing later as a broken display.
func Decode(id string, data []byte) (*Translation, error) {
	var books []Book
	if err := json.Unmarshal(data, &books); err != nil {
		return nil, fmt.Errorf("parse translation %s: %w", id, err)
	}
	if len(books) == 0 {
		return nil, fmt.Errorf("translation %s: no books", id)
	}

	t := &Translation{
		id:       id,
		books:    books,
		byAbbrev: make(map[string]int, len(books)),
	}
	for i := range books {
		b := &books[i]
		if b.Abbrev == "" {
			return nil, fmt.Errorf("translation %s: book %d has no abbreviation", id, i)
		}
		if _, dup := t.byAbbrev[b.Abbrev]; dup {
			return nil, fmt.Errorf("translation %s: duplicate book %q", id, b.Abbrev)
		}
		if len(b.Chapters) == 0 {
			return nil, fmt.Errorf("translation %s: book %q has no chapters", id, b.Abbrev)
		}
		for ci, ch := range b.Chapters {
			if len(ch) == 0 {
				return nil, fmt.Errorf("translation %s: book %q chapter %d is empty", id, b.Abbrev, ci+1)
			}
		}
		t.byAbbrev[b.Abbrev] = i
	}
	return t, nil
}

// ID returns the translation file id, e.g. "en_kjv.json".
func (t *Translation) ID() string {
	return t.id
}

// Books returns all books in canonical (file) order.
func (t *Translation) Books() []Book {
	return t.books
}

// Book looks up a book by abbreviation.
func (t *Translation) Book(abbrev string) (*Book, bool) {
	i, ok := t.byAbbrev[abbrev]
	if !ok {
		return nil, false
	}
	return &t.books[i], true
}

// FirstBook returns the first book of the translation.
func (t *Translation) FirstBook() *Book {
	return &t.books[0]
}

// BookIndex returns the position of a book within the translation, or -1.
func (t *Translation) BookIndex(abbrev string) int {
	if i, ok := t.byAbbrev[abbrev]; ok {
		return i
	}
	return -1
}
