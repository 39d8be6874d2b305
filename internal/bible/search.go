package bible

import (
	"sort"
	"strconv"
	"strings"
)

// VerseRef identifies one verse within a translation, together with its text.
type VerseRef struct {
	Abbrev  string
	Chapter int
	Verse   int
	Text    string
}

type searchIndex struct {
	verses []VerseRef
	words  map[string][]int
}

func (t *Translation) ensureSearchIndex() *searchIndex {
	if t.search != nil {
		return t.search
	}
	ix := &searchIndex{words: make(map[string][]int)}
	for _, b := range t.books {
		for ci, ch := range b.Chapters {
			for vi, text := range ch {
				ix.verses = append(ix.verses, VerseRef{
					Abbrev:  b.Abbrev,
					Chapter: ci + 1,
					Verse:   vi + 1,
					Text:    text,
				})
				for _, word := range strings.Fields(strings.ToLower(text)) {
					clean := strings.Trim(word, ".,;:!?\"'()[]")
					if len(clean) > 2 {
						ix.words[clean] = append(ix.words[clean], len(ix.verses)-1)
					}
				}
			}
		}
	}
	t.search = ix
	return ix
}

type scoredVerse struct {
	verse VerseRef
	score int
}

func fuzzyMatchAndScore(text, pattern string) (matches bool, score int) {
	if pattern == "" {
		return true, 1000000
	}

	textLower := strings.ToLower(text)
	patternLower := strings.ToLower(pattern)

	if idx := strings.Index(textLower, patternLower); idx >= 0 {
		return true, idx
	}

	words := strings.Fields(textLower)
	for i, word := range words {
		cleanWord := strings.Trim(word, ".,;:!?\"'()[]")
		if strings.HasPrefix(cleanWord, patternLower) {
			return true, 100 + i
		}
		if strings.Contains(cleanWord, patternLower) {
			return true, 500 + i
		}
	}

	return false, 1000000
}

func intersect(a, b []int) []int {
	var result []int
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if a[i] == b[j] {
			result = append(result, a[i])
			i++
			j++
		} else if a[i] < b[j] {
			i++
		} else {
			j++
		}
	}
	return result
}

func sortAndExtractVerses(matches []scoredVerse) []VerseRef {
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].score < matches[j].score
	})
	verses := make([]VerseRef, len(matches))
	for i, match := range matches {
		verses[i] = match.verse
	}
	return verses
}

// FindBook resolves a book name or abbreviation, tolerating prefixes, and
// returns the matching abbreviation or "".
func (t *Translation) FindBook(name string) string {
	nameLower := strings.ToLower(name)
	if _, ok := t.byAbbrev[nameLower]; ok {
		return nameLower
	}
	for _, b := range t.books {
		display := strings.ToLower(BookName(b.Abbrev))
		if display == nameLower || strings.HasPrefix(display, nameLower) {
			return b.Abbrev
		}
	}
	return ""
}

// Search finds verses matching a free-text query or a reference like
// "John 3:16". Reference matches win; otherwise the word index narrows
// candidates before fuzzy scoring, falling back to a full scan when the
// query has no indexable words.
func (t *Translation) Search(query string) []VerseRef {
	if query == "" {
		return []VerseRef{}
	}

	ix := t.ensureSearchIndex()

	if referenceResults := t.searchByReference(query); len(referenceResults) > 0 {
		return referenceResults
	}

	parts := strings.Fields(query)
	if len(parts) >= 2 {
		bookName := strings.Join(parts[:len(parts)-1], " ")
		searchTerm := parts[len(parts)-1]

		if abbrev := t.FindBook(bookName); abbrev != "" {
			var matches []scoredVerse
			for _, verse := range ix.verses {
				if verse.Abbrev == abbrev {
					if match, score := fuzzyMatchAndScore(verse.Text, searchTerm); match {
						matches = append(matches, scoredVerse{verse: verse, score: score})
					}
				}
			}
			if len(matches) > 0 {
				return sortAndExtractVerses(matches)
			}
		}
	}

	words := strings.Fields(strings.ToLower(query))
	var candidates []int
	for _, word := range words {
		clean := strings.Trim(word, ".,;:!?\"'()[]")
		if len(clean) > 2 {
			if indices, ok := ix.words[clean]; ok {
				if candidates == nil {
					candidates = make([]int, len(indices))
					copy(candidates, indices)
				} else {
					candidates = intersect(candidates, indices)
				}
			} else {
				candidates = nil
				break
			}
		}
	}

	if candidates != nil {
		var matches []scoredVerse
		for _, idx := range candidates {
			verse := ix.verses[idx]
			if match, score := fuzzyMatchAndScore(verse.Text, query); match {
				matches = append(matches, scoredVerse{verse: verse, score: score})
			}
		}
		return sortAndExtractVerses(matches)
	}

	var matches []scoredVerse
	for _, verse := range ix.verses {
		if match, score := fuzzyMatchAndScore(verse.Text, query); match {
			matches = append(matches, scoredVerse{verse: verse, score: score})
		}
	}

	return sortAndExtractVerses(matches)
}

func (t *Translation) searchByReference(query string) []VerseRef {
	query = strings.TrimSpace(query)

	parts := strings.Split(query, ":")
	var bookChapter string
	var verseNum int

	if len(parts) == 2 {
		bookChapter = strings.TrimSpace(parts[0])
		if num, err := strconv.Atoi(strings.TrimSpace(parts[1])); err == nil {
			verseNum = num
		}
	} else {
		bookChapter = query
		verseNum = -1
	}

	words := strings.Fields(bookChapter)
	if len(words) == 0 {
		return nil
	}

	var bookName string
	var chapterNum int

	lastWord := words[len(words)-1]
	if num, err := strconv.Atoi(lastWord); err == nil && num > 0 {
		chapterNum = num
		bookName = strings.Join(words[:len(words)-1], " ")
	} else {
		bookName = strings.Join(words, " ")
		chapterNum = -1
	}

	if bookName == "" {
		return nil
	}

	abbrev := t.FindBook(bookName)
	if abbrev == "" {
		return nil
	}

	ix := t.ensureSearchIndex()
	var results []VerseRef
	for _, verse := range ix.verses {
		if verse.Abbrev == abbrev {
			if chapterNum > 0 && verse.Chapter != chapterNum {
				continue
			}
			if verseNum > 0 && verse.Verse != verseNum {
				continue
			}
			results = append(results, verse)
		}
	}

	return results
}
