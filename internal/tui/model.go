// Package tui is the terminal client: chapter display, book and chapter
// navigation, cross-reference excursions, reading history, search, and
// the ask panel.
package tui

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"bible-reader/internal/ask"
	"bible-reader/internal/bible"
	"bible-reader/internal/crossref"
	"bible-reader/internal/reader"
	"bible-reader/internal/state"
)

type mode int

const (
	readingMode mode = iota
	searchMode
	chapterMode
	historyMode
	askMode
)

// Config holds the user-tunable colors, persisted alongside the reading
// state.
type Config struct {
	HighlightColor string `json:"highlightColor"`
	VerseNumColor  string `json:"verseNumColor"`
	TextColor      string `json:"textColor"`
	DimColor       string `json:"dimColor"`
	AccentColor    string `json:"accentColor"`
}

const configKey = "bibleReaderConfig"

// timeNow is swappable for view tests.
var timeNow = time.Now

func defaultConfig() Config {
	return Config{
		HighlightColor: "#cba6f7",
		VerseNumColor:  "#89b4fa",
		TextColor:      "#cdd6f4",
		DimColor:       "#6c7086",
		AccentColor:    "#f9e2af",
	}
}

// LoadConfig reads the color config from the store, writing defaults on
// first run.
func LoadConfig(st state.Store) Config {
	cfg := defaultConfig()
	data, err := st.Get(configKey)
	if err != nil || data == nil {
		if out, err := json.Marshal(cfg); err == nil {
			_ = st.Put(configKey, out)
		}
		return cfg
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return defaultConfig()
	}
	return cfg
}

type styles struct {
	header    lipgloss.Style
	verseNum  lipgloss.Style
	text      lipgloss.Style
	dim       lipgloss.Style
	cursor    lipgloss.Style
	highlight lipgloss.Style
	accent    lipgloss.Style
	errText   lipgloss.Style
}

func newStyles(cfg Config) styles {
	return styles{
		header:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(cfg.HighlightColor)),
		verseNum:  lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.VerseNumColor)).Bold(true),
		text:      lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.TextColor)),
		dim:       lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.DimColor)),
		cursor:    lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.HighlightColor)).Bold(true),
		highlight: lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.AccentColor)).Bold(true),
		accent:    lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.AccentColor)),
		errText:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}
}

// Model is the bubbletea model for the reader.
type Model struct {
	session *reader.Session
	loader  *bible.Loader
	asker   *ask.Client
	store   state.Store

	mode         mode
	selected     int // 0-based verse index within the chapter
	scrollOffset int
	width        int
	height       int

	// cross-reference popup, single-select: at most one verse expanded
	popupVerse     int // 1-based verse number, 0 = closed
	popupSel       int
	highlightVerse int // 1-based, 0 = none

	searchQuery   string
	searchResults []bible.VerseRef

	chapterInput string

	historySel int

	question  textinput.Model
	password  textinput.Model
	replyView viewport.Model
	spin      spinner.Model
	askFocus  int // 0 question, 1 password
	asking    bool
	hasReply  bool

	// translation switching; stale generations are dropped
	loadGen   int
	switching bool

	statusMsg  string
	dataNotice string

	cfg    Config
	styles styles
}

// New builds the model over an already-loaded session. dataNotice, when
// non-empty, is shown until the self-heal timer clears it (the reader
// stays usable without cross-references).
func New(session *reader.Session, loader *bible.Loader, asker *ask.Client, st state.Store, dataNotice string) Model {
	cfg := LoadConfig(st)

	q := textinput.New()
	q.Placeholder = "Ask a question about this passage..."
	q.CharLimit = 2048
	q.Width = 60

	p := textinput.New()
	p.Placeholder = "Password"
	p.EchoMode = textinput.EchoPassword
	p.EchoCharacter = '*'
	p.CharLimit = 128
	p.Width = 30

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		session:    session,
		loader:     loader,
		asker:      asker,
		store:      st,
		question:   q,
		password:   p,
		replyView:  viewport.New(60, 10),
		spin:       sp,
		height:     24,
		width:      80,
		dataNotice: dataNotice,
		cfg:        cfg,
		styles:     newStyles(cfg),
	}
	m.selected, m.scrollOffset = session.ViewOffsets()
	if m.selected >= len(session.Verses()) {
		m.selected = 0
		m.scrollOffset = 0
	}
	return m
}

// Messages.
type (
	dataLoadedMsg struct {
		gen     int
		id      string
		trans   *bible.Translation
		refs    crossref.Index
		refsErr error
		err     error
	}
	clearHighlightMsg struct{ verse int }
	clearNoticeMsg    struct{}
	clearStatusMsg    struct{}
	askDoneMsg        struct {
		reply string
		err   error
	}
)

func (m Model) Init() tea.Cmd {
	if m.dataNotice != "" {
		return tea.Tick(5*time.Second, func(time.Time) tea.Msg {
			return clearNoticeMsg{}
		})
	}
	return nil
}

// switchTranslation kicks off an async reload of translation data and the
// cross-reference index. The generation number guards against a stale
// in-flight load overwriting a newer one.
func (m *Model) switchTranslation(id string) tea.Cmd {
	m.loadGen++
	m.switching = true
	gen := m.loadGen
	loader := m.loader
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		trans, err := loader.Translation(ctx, id)
		if err != nil {
			return dataLoadedMsg{gen: gen, id: id, err: err}
		}

		refs := crossref.Index{}
		var refsErr error
		if data, err := loader.Fetch(ctx, "crossRefs.json"); err != nil {
			refsErr = err
		} else if ix, err := crossref.Decode(data); err != nil {
			refsErr = err
		} else {
			refs = ix
		}
		return dataLoadedMsg{gen: gen, id: id, trans: trans, refs: refs, refsErr: refsErr}
	}
}

func (m *Model) submitQuestion() tea.Cmd {
	question := m.question.Value()
	pos := m.session.Selected()
	prompt := ask.BuildPrompt(bible.BookName(pos.Book), pos.Chapter, m.session.Verses(), question)
	password := m.password.Value()
	asker := m.asker

	m.asking = true
	return tea.Batch(m.spin.Tick, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 125*time.Second)
		defer cancel()
		reply, err := asker.Ask(ctx, prompt, password)
		return askDoneMsg{reply: reply, err: err}
	})
}

func (m *Model) saveViewState() {
	m.session.SetViewOffsets(m.selected, m.scrollOffset)
}

func highlightTimer(verse int) tea.Cmd {
	return tea.Tick(3*time.Second, func(time.Time) tea.Msg {
		return clearHighlightMsg{verse: verse}
	})
}

func statusTimer() tea.Cmd {
	return tea.Tick(4*time.Second, func(time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}
