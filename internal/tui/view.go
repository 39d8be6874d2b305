package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"bible-reader/internal/ask"
	"bible-reader/internal/bible"
	"bible-reader/internal/reader"
)

const (
	verseTextPadding  = 6
	searchTextPadding = 23
)

func (m Model) View() string {
	switch m.mode {
	case searchMode:
		return m.viewSearch()
	case historyMode:
		return m.viewHistory()
	case askMode:
		return m.viewAsk()
	default:
		return m.viewReading()
	}
}

func (m Model) viewReading() string {
	var content strings.Builder

	pos := m.session.Selected()
	title := fmt.Sprintf("%s  %s %d", bible.TranslationName(m.session.Translation().ID()),
		bible.BookName(pos.Book), pos.Chapter)
	if m.switching {
		title += "  (loading...)"
	}
	content.WriteString(m.centerText(m.styles.header.Render(title)))
	content.WriteString("\n")
	content.WriteString(m.centerText(m.breadcrumb()))
	content.WriteString("\n\n")

	verses := m.session.Verses()
	visibleVerses := m.getVisibleVerses()
	m.adjustScrollOffset(len(verses), visibleVerses)
	end := min(len(verses), m.scrollOffset+visibleVerses)

	linesUsed := 4
	for i := m.scrollOffset; i < end; i++ {
		verseNum := i + 1
		linesUsed += m.renderVerse(&content, verses[i], verseNum)
		if m.popupVerse == verseNum {
			linesUsed += m.renderPopup(&content, verseNum)
		}
	}

	remainingLines := m.height - linesUsed - m.footerLines()
	if remainingLines > 0 {
		content.WriteString(strings.Repeat("\n", remainingLines))
	}

	m.renderFooter(&content)
	return content.String()
}

func (m Model) footerLines() int {
	n := 1
	if m.statusMsg != "" || m.dataNotice != "" {
		n++
	}
	return n
}

func (m Model) renderFooter(content *strings.Builder) {
	if m.dataNotice != "" {
		content.WriteString(m.centerText(m.styles.errText.Render(m.dataNotice)))
		content.WriteString("\n")
	} else if m.statusMsg != "" {
		content.WriteString(m.centerText(m.styles.accent.Render(m.statusMsg)))
		content.WriteString("\n")
	}

	var help string
	switch m.mode {
	case chapterMode:
		help = "Chapter: " + m.chapterInput + "_  (Enter: go, Esc: cancel)"
	default:
		if m.popupVerse != 0 {
			help = "j/k: Select reference • Enter: Go • x/Esc: Close"
		} else {
			help = "j/k: Verse • h/l: Chapter • b/w: Book • c: Go to chapter • t/T: Translation • x: Cross-refs • r: Return • H: History • /: Search • a: Ask • q: Quit"
		}
	}
	content.WriteString(m.centerText(m.styles.dim.Render(help)))
}

// breadcrumb shows the primary reading position and, during an excursion,
// how to get back to it.
func (m Model) breadcrumb() string {
	primary := m.session.Primary()
	crumb := fmt.Sprintf("Primary reading: %s %d", bible.BookName(primary.Book), primary.Chapter)
	if m.session.ViewingCrossRef() {
		return m.styles.accent.Render(crumb + "  •  viewing cross-reference, r to return")
	}
	return m.styles.dim.Render(crumb)
}

func (m Model) renderVerse(content *strings.Builder, text string, verseNum int) int {
	selected := verseNum == m.selected+1
	highlighted := verseNum == m.highlightVerse
	hasRefs := len(m.session.RefsForVerse(verseNum)) > 0

	if selected {
		content.WriteString(m.styles.cursor.Render(">"))
	} else {
		content.WriteString(" ")
	}
	content.WriteByte(' ')
	content.WriteString(m.styles.verseNum.Render(fmt.Sprintf("%3d", verseNum)))
	content.WriteByte(' ')

	textStyle := m.styles.text
	if highlighted {
		textStyle = m.styles.highlight
	}

	textWidth := max(20, m.width-verseTextPadding-4)
	verseLines := wrapVerseText(text, textWidth)

	if len(verseLines) > 0 {
		content.WriteString(textStyle.Render(verseLines[0]))
	}
	if hasRefs {
		content.WriteString(m.styles.accent.Render(" ⁜"))
	}
	content.WriteByte('\n')
	linesUsed := 1

	if len(verseLines) > 1 {
		padding := strings.Repeat(" ", verseTextPadding)
		for _, line := range verseLines[1:] {
			content.WriteString(padding)
			content.WriteString(textStyle.Render(line))
			content.WriteByte('\n')
			linesUsed++
		}
	}

	return linesUsed
}

func (m Model) renderPopup(content *strings.Builder, verseNum int) int {
	refs := m.session.RefsForVerse(verseNum)
	padding := strings.Repeat(" ", verseTextPadding)

	content.WriteString(padding)
	content.WriteString(m.styles.header.Render("Cross references:"))
	content.WriteByte('\n')
	linesUsed := 1

	textWidth := max(20, m.width-verseTextPadding-8)
	for i, ref := range refs {
		marker := "  "
		if i == m.popupSel {
			marker = m.styles.cursor.Render("> ")
		}
		label := fmt.Sprintf("%s %d:%d", bible.BookName(ref.Book), ref.Chapter, ref.Verse)
		content.WriteString(padding)
		content.WriteString(marker)
		content.WriteString(m.styles.verseNum.Render(label))
		content.WriteByte(' ')
		content.WriteString(m.styles.dim.Render(truncateText(ref.Text, textWidth-len(label))))
		content.WriteByte('\n')
		linesUsed++
	}
	return linesUsed
}

func (m Model) viewHistory() string {
	var content strings.Builder

	content.WriteString(m.centerText(m.styles.header.Render("Reading History")))
	content.WriteString("\n\n")

	entries := m.session.History().Entries()
	now := timeNow()
	linesUsed := 3
	for i, e := range entries {
		marker := "  "
		if i == m.historySel {
			marker = m.styles.cursor.Render("> ")
		}
		label := fmt.Sprintf("%s %d", bible.BookName(e.Book), e.Chapter)
		age := reader.RelativeTime(e.At, now)
		content.WriteString("  ")
		content.WriteString(marker)
		content.WriteString(m.styles.text.Render(fmt.Sprintf("%-28s", label)))
		content.WriteString(m.styles.dim.Render(age))
		content.WriteByte('\n')
		linesUsed++
	}
	if len(entries) == 0 {
		content.WriteString(m.centerText(m.styles.dim.Render("No history yet")))
		content.WriteByte('\n')
		linesUsed++
	}

	remainingLines := m.height - linesUsed - 1
	if remainingLines > 0 {
		content.WriteString(strings.Repeat("\n", remainingLines))
	}
	content.WriteString(m.centerText(m.styles.dim.Render("j/k: Select • Enter: Go • Esc: Back")))
	return content.String()
}

func (m Model) viewSearch() string {
	var content strings.Builder

	if len(m.searchResults) > 0 {
		header := m.styles.header.Render(fmt.Sprintf("Search: %s (%d results)", m.searchQuery, len(m.searchResults)))
		content.WriteString(m.centerText(header))
		content.WriteString("\n\n")

		availableHeight := max(5, m.height-6)
		visibleCount := max(1, availableHeight/3)
		if m.selected >= m.scrollOffset+visibleCount {
			m.scrollOffset = m.selected - visibleCount + 1
		}
		if m.selected < m.scrollOffset {
			m.scrollOffset = m.selected
		}
		end := min(len(m.searchResults), m.scrollOffset+visibleCount)

		linesUsed := 3
		for i := m.scrollOffset; i < end; i++ {
			result := m.searchResults[i]
			if i == m.selected {
				content.WriteString(m.styles.cursor.Render(">"))
			} else {
				content.WriteString(" ")
			}
			reference := truncateText(fmt.Sprintf("%s %d:%d", bible.BookName(result.Abbrev), result.Chapter, result.Verse), 20)
			content.WriteByte(' ')
			content.WriteString(m.styles.verseNum.Render(fmt.Sprintf("%-20s", reference)))
			content.WriteByte(' ')

			textWidth := max(20, m.width-searchTextPadding)
			lines := wrapVerseText(result.Text, textWidth)
			if len(lines) > 0 {
				content.WriteString(m.styles.text.Render(lines[0]))
			}
			content.WriteString("\n")
			linesUsed += 2
			if len(lines) > 1 {
				content.WriteString(strings.Repeat(" ", searchTextPadding))
				content.WriteString(m.styles.text.Render(lines[1]))
				content.WriteByte('\n')
				linesUsed++
			}
			content.WriteByte('\n')
		}

		remainingLines := m.height - linesUsed - 1
		if remainingLines > 0 {
			content.WriteString(strings.Repeat("\n", remainingLines))
		}
		content.WriteString(m.centerText(m.styles.dim.Render("j/k: Navigate • Enter: Select • /: New search • Esc: Back")))
		return content.String()
	}

	header := m.styles.header.Render("Search: " + m.searchQuery)
	content.WriteString(m.centerText(header))
	content.WriteString("\n\n")

	promptText := "Type to search..."
	if m.searchQuery != "" {
		promptText = "Press Enter to search"
	}
	content.WriteString(m.centerText(m.styles.dim.Render(promptText)))

	remainingLines := m.height - 4
	if remainingLines > 0 {
		content.WriteString(strings.Repeat("\n", remainingLines))
	}
	content.WriteString(m.centerText(m.styles.dim.Render("Type to search • Enter: Execute • Esc: Back")))
	return content.String()
}

func (m Model) viewAsk() string {
	var content strings.Builder

	pos := m.session.Selected()
	header := fmt.Sprintf("Ask about %s %d", bible.BookName(pos.Book), pos.Chapter)
	content.WriteString(m.centerText(m.styles.header.Render(header)))
	content.WriteString("\n\n")

	if m.asking {
		content.WriteString("  " + m.spin.View() + m.styles.dim.Render(" waiting for reply..."))
		content.WriteString("\n\n")
	} else if m.hasReply {
		content.WriteString(m.replyView.View())
		content.WriteString("\n\n")
	} else {
		content.WriteString(m.styles.dim.Render("  Ask a question about the passage to see the response here."))
		content.WriteString("\n\n")
	}

	content.WriteString("  " + m.question.View())
	content.WriteString("\n  " + m.password.View())
	content.WriteString("\n\n")
	content.WriteString(m.centerText(m.styles.dim.Render("Enter: Submit • Tab: Switch field • PgUp/PgDn: Scroll • Esc: Back")))
	return content.String()
}

// renderReply renders the assistant's markdown reply, falling back to the
// raw text when rendering fails.
func renderReply(reply string, width int) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return reply
	}
	out, err := r.Render(reply)
	if err != nil {
		return reply
	}
	return out
}

func askErrorText(err error) string {
	switch ask.CategoryOf(err) {
	case ask.CategoryUnauthorized:
		return "Invalid password. Please check your password and try again."
	case ask.CategoryTimeout:
		return "Request timed out. The model may be under heavy load or your query is complex. Try a simpler query or try again later."
	case ask.CategoryOverloaded:
		return "The AI service is currently experiencing high demand. Please try again in a few minutes."
	case ask.CategoryMalformed:
		return "Invalid response format. There may be an issue with the server configuration."
	case ask.CategoryConfig:
		return "The server is not configured for queries."
	case ask.CategoryBadRequest:
		return "The server rejected the query: " + err.Error()
	default:
		return "Failed to get a response: " + err.Error()
	}
}

func (m *Model) adjustScrollOffset(listLen int, visibleItems int) {
	maxScroll := max(0, listLen-visibleItems)
	m.scrollOffset = min(maxScroll, max(0, m.scrollOffset))
	if m.selected >= m.scrollOffset+visibleItems {
		m.scrollOffset = m.selected - visibleItems + 1
	}
	if m.selected < m.scrollOffset {
		m.scrollOffset = m.selected
	}
}

func (m Model) getVisibleVerses() int {
	availableHeight := max(5, m.height-4-m.footerLines())
	if m.popupVerse != 0 {
		availableHeight = max(3, availableHeight-len(m.session.RefsForVerse(m.popupVerse))-1)
	}

	verses := m.session.Verses()
	currentHeight := 0
	visibleCount := 0

	for i := m.scrollOffset; i < len(verses) && currentHeight < availableHeight; i++ {
		verseHeight := m.calculateVerseHeight(verses[i])
		if currentHeight+verseHeight <= availableHeight {
			currentHeight += verseHeight
			visibleCount++
		} else {
			break
		}
	}

	return max(1, visibleCount)
}

func (m Model) calculateVerseHeight(text string) int {
	textWidth := max(20, m.width-verseTextPadding-4)
	return max(1, len(wrapVerseText(text, textWidth)))
}

func wrapVerseText(text string, maxWidth int) []string {
	if maxWidth <= 0 {
		return []string{text}
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{text}
	}

	// Width is measured in display cells, not bytes: CJK runes occupy two.
	lines := make([]string, 0, (len(words)+3)/4)
	var currentLine strings.Builder
	lineWidth := 0

	for i, word := range words {
		wordWidth := lipgloss.Width(word)
		if lineWidth > 0 {
			if lineWidth+1+wordWidth > maxWidth {
				lines = append(lines, currentLine.String())
				currentLine.Reset()
				currentLine.WriteString(word)
				lineWidth = wordWidth
			} else {
				currentLine.WriteByte(' ')
				currentLine.WriteString(word)
				lineWidth += 1 + wordWidth
			}
		} else {
			currentLine.WriteString(word)
			lineWidth = wordWidth
		}

		if i == len(words)-1 && currentLine.Len() > 0 {
			lines = append(lines, currentLine.String())
		}
	}

	return lines
}

// truncateText shortens text to at most maxLen display cells, cutting on
// rune boundaries.
func truncateText(text string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if lipgloss.Width(text) <= maxLen {
		return text
	}

	budget := maxLen - 3
	ellipsis := "..."
	if maxLen <= 3 {
		budget = maxLen
		ellipsis = ""
	}

	var b strings.Builder
	width := 0
	for _, r := range text {
		rw := lipgloss.Width(string(r))
		if width+rw > budget {
			break
		}
		b.WriteRune(r)
		width += rw
	}
	return b.String() + ellipsis
}

func (m Model) centerText(text string) string {
	visualWidth := lipgloss.Width(text)
	if visualWidth >= m.width {
		return text
	}
	leftPadding := (m.width - visualWidth) / 2
	return strings.Repeat(" ", leftPadding) + text
}
