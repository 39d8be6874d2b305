package tui

import (
	"errors"
	"strconv"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"bible-reader/internal/bible"
	"bible-reader/internal/reader"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
		m.width = msg.Width
		m.replyView.Width = max(20, m.width-4)
		m.replyView.Height = max(3, m.height-10)
		m.question.Width = max(20, m.width-10)
		if m.scrollOffset > 0 && len(m.session.Verses()) > 0 {
			m.adjustScrollOffset(len(m.session.Verses()), m.getVisibleVerses())
		}
		return m, nil

	case dataLoadedMsg:
		return m.handleDataLoaded(msg)

	case clearHighlightMsg:
		if m.highlightVerse == msg.verse {
			m.highlightVerse = 0
		}
		return m, nil

	case clearNoticeMsg:
		m.dataNotice = ""
		return m, nil

	case clearStatusMsg:
		m.statusMsg = ""
		return m, nil

	case askDoneMsg:
		m.asking = false
		m.hasReply = true
		if msg.err != nil {
			m.replyView.SetContent(m.styles.errText.Render(askErrorText(msg.err)))
		} else {
			m.replyView.SetContent(renderReply(msg.reply, m.replyView.Width))
		}
		m.replyView.GotoTop()
		return m, nil

	case spinner.TickMsg:
		if m.asking {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case searchMode:
			return m.updateSearch(msg)
		case chapterMode:
			return m.updateChapter(msg)
		case historyMode:
			return m.updateHistory(msg)
		case askMode:
			return m.updateAsk(msg)
		default:
			return m.updateReading(msg)
		}
	}

	return m, nil
}

func (m Model) handleDataLoaded(msg dataLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.gen != m.loadGen {
		// a newer switch superseded this load
		return m, nil
	}
	m.switching = false

	if msg.err != nil {
		m.statusMsg = "failed to load " + msg.id + ": " + msg.err.Error()
		return m, statusTimer()
	}

	if m.session.SetTranslation(msg.trans, msg.refs) {
		m.statusMsg = "book not in " + bible.TranslationName(msg.id) + "; showing " + bible.BookName(m.session.Selected().Book)
	} else {
		m.statusMsg = "switched to " + bible.TranslationName(msg.id)
	}
	m.resetVerseView()

	cmds := []tea.Cmd{statusTimer()}
	if msg.refsErr != nil {
		m.dataNotice = "Cross-references could not be loaded. Some features may be limited."
		cmds = append(cmds, m.Init())
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) resetVerseView() {
	m.selected = 0
	m.scrollOffset = 0
	m.popupVerse = 0
	m.popupSel = 0
	m.highlightVerse = 0
}

func (m Model) updateReading(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// popup captures movement while open
	if m.popupVerse != 0 {
		return m.updatePopup(msg)
	}

	switch msg.String() {
	case "ctrl+c", "q":
		m.saveViewState()
		return m, tea.Quit

	case "j", "down":
		m.moveDown()
	case "k", "up":
		m.moveUp()
	case "ctrl+d":
		m.pageMove(1)
	case "ctrl+u":
		m.pageMove(-1)
	case "g":
		m.selected = 0
		m.scrollOffset = 0
	case "G":
		if n := len(m.session.Verses()); n > 0 {
			m.selected = n - 1
			m.adjustScrollOffset(n, m.getVisibleVerses())
		}

	case "h", "left":
		if m.session.PrevChapter() {
			m.resetVerseView()
		}
	case "l", "right":
		if m.session.NextChapter() {
			m.resetVerseView()
		}

	case "b":
		m.stepBook(-1)
	case "w":
		m.stepBook(1)

	case "c":
		m.mode = chapterMode
		m.chapterInput = ""

	case "t":
		return m, m.cycleTranslation(1)
	case "T":
		return m, m.cycleTranslation(-1)

	case "x", "enter":
		verse := m.selected + 1
		if len(m.session.RefsForVerse(verse)) > 0 {
			if m.popupVerse == verse {
				m.popupVerse = 0
			} else {
				m.popupVerse = verse
				m.popupSel = 0
			}
		}

	case "r":
		if m.session.ReturnToPrimary() {
			m.resetVerseView()
		}

	case "H":
		m.mode = historyMode
		m.historySel = 0

	case "/":
		m.mode = searchMode
		m.searchQuery = ""
		m.searchResults = nil
		m.selected = 0

	case "a":
		m.mode = askMode
		m.askFocus = 0
		m.question.Focus()
		m.password.Blur()
		return m, nil
	}

	return m, nil
}

func (m Model) updatePopup(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	refs := m.session.RefsForVerse(m.popupVerse)

	switch msg.String() {
	case "ctrl+c":
		m.saveViewState()
		return m, tea.Quit
	case "j", "down":
		if m.popupSel < len(refs)-1 {
			m.popupSel++
		}
	case "k", "up":
		if m.popupSel > 0 {
			m.popupSel--
		}
	case "x", "esc", "q":
		m.popupVerse = 0
	case "enter":
		if m.popupSel < len(refs) {
			ref := refs[m.popupSel]
			if err := m.session.NavigateToCrossRef(ref); err != nil {
				if errors.Is(err, reader.ErrBookNotFound) {
					m.statusMsg = bible.BookName(ref.Book) + " is not in this translation"
				} else {
					m.statusMsg = err.Error()
				}
				return m, statusTimer()
			}
			m.popupVerse = 0
			m.focusVerse(ref.Verse)
			m.highlightVerse = ref.Verse
			return m, highlightTimer(ref.Verse)
		}
	}
	return m, nil
}

// focusVerse selects a 1-based verse in the displayed chapter and scrolls
// it into view, roughly centered.
func (m *Model) focusVerse(verse int) {
	verses := m.session.Verses()
	if verse > len(verses) {
		verse = len(verses)
	}
	if verse < 1 {
		verse = 1
	}
	m.selected = verse - 1
	visible := m.getVisibleVerses()
	m.scrollOffset = max(0, m.selected-visible/2)
	m.adjustScrollOffset(len(verses), visible)
}

func (m *Model) stepBook(direction int) {
	books := m.session.Translation().Books()
	i := m.session.Translation().BookIndex(m.session.Selected().Book)
	next := i + direction
	if i < 0 || next < 0 || next >= len(books) {
		return
	}
	if err := m.session.SelectBook(books[next].Abbrev); err == nil {
		m.resetVerseView()
	}
}

func (m *Model) cycleTranslation(direction int) tea.Cmd {
	current := m.session.Translation().ID()
	idx := 0
	for i, t := range bible.Catalog {
		if t.ID == current {
			idx = i
			break
		}
	}
	next := (idx + direction + len(bible.Catalog)) % len(bible.Catalog)
	return m.switchTranslation(bible.Catalog[next].ID)
}

func (m Model) updateChapter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+c":
		m.mode = readingMode
	case "backspace":
		if len(m.chapterInput) > 0 {
			m.chapterInput = m.chapterInput[:len(m.chapterInput)-1]
		}
	case "enter":
		n, err := strconv.Atoi(m.chapterInput)
		if err == nil {
			if err := m.session.SelectChapter(n); err != nil {
				m.statusMsg = "chapter " + m.chapterInput + " is out of range"
				m.mode = readingMode
				return m, statusTimer()
			}
			m.resetVerseView()
		}
		m.mode = readingMode
	default:
		if len(msg.Runes) == 1 && msg.Runes[0] >= '0' && msg.Runes[0] <= '9' {
			m.chapterInput += string(msg.Runes)
		}
	}
	return m, nil
}

func (m Model) updateHistory(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	entries := m.session.History().Entries()

	switch msg.String() {
	case "esc", "H", "q", "ctrl+c":
		m.mode = readingMode
	case "j", "down":
		if m.historySel < len(entries)-1 {
			m.historySel++
		}
	case "k", "up":
		if m.historySel > 0 {
			m.historySel--
		}
	case "enter":
		if m.historySel < len(entries) {
			e := entries[m.historySel]
			if err := m.session.GoTo(e.Book, e.Chapter); err == nil {
				m.resetVerseView()
			}
			m.mode = readingMode
		}
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.mode = readingMode
		m.searchQuery = ""
		m.searchResults = nil
		m.selected = 0
		m.scrollOffset = 0
		return m, nil

	case tea.KeyEnter:
		if len(m.searchResults) == 0 && m.searchQuery != "" {
			m.searchResults = m.session.Translation().Search(m.searchQuery)
			m.selected = 0
			m.scrollOffset = 0
		} else if len(m.searchResults) > 0 && m.selected < len(m.searchResults) {
			result := m.searchResults[m.selected]
			if err := m.session.GoTo(result.Abbrev, result.Chapter); err == nil {
				m.mode = readingMode
				m.resetVerseView()
				m.focusVerse(result.Verse)
			}
		}

	case tea.KeyBackspace:
		if len(m.searchResults) == 0 && len(m.searchQuery) > 0 {
			m.searchQuery = m.searchQuery[:len(m.searchQuery)-1]
		}

	case tea.KeySpace:
		if len(m.searchResults) == 0 {
			m.searchQuery += " "
		}

	case tea.KeyUp:
		m.searchMove(-1)
	case tea.KeyDown:
		m.searchMove(1)

	case tea.KeyRunes:
		if len(msg.Runes) == 0 {
			break
		}
		r := msg.Runes[0]
		if len(m.searchResults) == 0 {
			if r == '/' {
				m.searchQuery = ""
			} else {
				m.searchQuery += string(msg.Runes)
			}
			break
		}
		switch r {
		case '/':
			m.searchQuery = ""
			m.searchResults = nil
			m.selected = 0
			m.scrollOffset = 0
		case 'j':
			m.searchMove(1)
		case 'k':
			m.searchMove(-1)
		case 'g':
			m.selected = 0
			m.scrollOffset = 0
		case 'G':
			m.selected = len(m.searchResults) - 1
		case 'q':
			m.mode = readingMode
			m.searchResults = nil
			m.selected = 0
			m.scrollOffset = 0
		}
	}

	return m, nil
}

func (m *Model) searchMove(direction int) {
	n := len(m.searchResults)
	if n == 0 {
		return
	}
	m.selected = max(0, min(n-1, m.selected+direction))
	if m.selected < m.scrollOffset {
		m.scrollOffset = m.selected
	}
}

func (m Model) updateAsk(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.saveViewState()
		return m, tea.Quit

	case "esc":
		m.mode = readingMode
		m.question.Blur()
		m.password.Blur()
		return m, nil

	case "tab", "shift+tab":
		m.askFocus = 1 - m.askFocus
		if m.askFocus == 0 {
			m.question.Focus()
			m.password.Blur()
		} else {
			m.password.Focus()
			m.question.Blur()
		}
		return m, nil

	case "pgup", "ctrl+k":
		m.replyView.ScrollUp(3)
		return m, nil
	case "pgdown", "ctrl+j":
		m.replyView.ScrollDown(3)
		return m, nil

	case "enter":
		if m.asking {
			return m, nil
		}
		if m.question.Value() == "" {
			m.replyView.SetContent("Please enter a question about the Bible.")
			m.hasReply = true
			return m, nil
		}
		if m.password.Value() == "" {
			m.replyView.SetContent("Please enter the password to submit queries.")
			m.hasReply = true
			return m, nil
		}
		m.replyView.SetContent("Asking...")
		m.hasReply = true
		return m, m.submitQuestion()
	}

	var cmd tea.Cmd
	if m.askFocus == 0 {
		m.question, cmd = m.question.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

func (m *Model) moveUp() {
	if m.selected > 0 {
		m.selected--
		m.adjustScrollOffset(len(m.session.Verses()), m.getVisibleVerses())
	}
}

func (m *Model) moveDown() {
	if m.selected < len(m.session.Verses())-1 {
		m.selected++
		m.adjustScrollOffset(len(m.session.Verses()), m.getVisibleVerses())
	}
}

func (m *Model) pageMove(direction int) {
	n := len(m.session.Verses())
	if n == 0 {
		return
	}
	visible := m.getVisibleVerses()
	halfPage := max(1, visible/2)
	m.selected = max(0, min(n-1, m.selected+direction*halfPage))
	m.adjustScrollOffset(n, visible)
}
