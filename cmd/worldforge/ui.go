package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jwebster45206/worldforge/internal/game"
	"github.com/jwebster45206/worldforge/internal/logger"
	"github.com/jwebster45206/worldforge/pkg/bridge"
	"github.com/jwebster45206/worldforge/pkg/state"
	"github.com/jwebster45206/worldforge/pkg/world"
)

const logPanelLines = 8

type screen int

const (
	screenEraSelect screen = iota
	screenCard
	screenPreview
)

// ConsoleUI is the BubbleTea model that runs the game.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	ctx      context.Context
	session  *game.Session
	recorder *logger.Recorder

	cardViewport viewport.Model
	metaViewport viewport.Model
	spinner      spinner.Model
	ready        bool
	width        int
	height       int
	err          error
	loading      bool
	flash        string

	screen      screen
	eras        []world.Era
	selectedEra int

	// Result of the last choice, shown on the preview screen
	lastChoice        *world.Choice
	atmosphereChanged bool

	bridgeState   bridge.State
	bridgeCh      chan bridge.State
	unsubscribe   func()
	showLog       bool
	showQuitModal bool
}

type eraStartedMsg struct {
	err error
}

type dilemmaMsg struct {
	dilemma world.Dilemma
	err     error
}

type choiceMsg struct {
	choice   world.Choice
	snapshot state.Snapshot
	changed  bool
	err      error
}

type bridgeStateMsg struct {
	state bridge.State
}

type connectMsg struct {
	ok bool
}

var (
	cardPanelStyle = lipgloss.NewStyle().
			PaddingTop(1).
			PaddingLeft(3).
			PaddingRight(1)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(1).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	cardNameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")). // gold
			Bold(true)

	choiceStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")). // green
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	logStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			PaddingLeft(3)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)

	modalItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	modalSelectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("205")).
				Bold(true)
)

var separatorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")) // dark grey

var bridgeStatusStyles = map[bridge.Status]lipgloss.Style{
	bridge.StatusDisconnected: promptStyle,
	bridge.StatusConnecting:   loadingStyle,
	bridge.StatusConnected:    labelStyle,
	bridge.StatusError:        errorStyle,
}

func NewConsoleUI(ctx context.Context, session *game.Session, recorder *logger.Recorder) ConsoleUI {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = loadingStyle

	cardVp := viewport.New(50, 20)
	cardVp.MouseWheelEnabled = true

	m := ConsoleUI{
		ctx:          ctx,
		session:      session,
		recorder:     recorder,
		cardViewport: cardVp,
		metaViewport: viewport.New(20, 20),
		spinner:      sp,
		eras:         world.Eras(),
		bridgeCh:     make(chan bridge.State, 1),
	}

	ch := m.bridgeCh
	m.unsubscribe = session.Bridge().Subscribe(func(s bridge.State) {
		publishLatest(ch, s)
	})

	if session.World().Era() != nil {
		m.screen = screenCard
		m.loading = true
	}
	return m
}

func (m ConsoleUI) Init() tea.Cmd {
	cmds := []tea.Cmd{m.waitForBridgeState(), m.spinner.Tick}
	if m.screen == screenCard {
		cmds = append(cmds, m.nextDilemma())
	}
	return tea.Batch(cmds...)
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		spCmd tea.Cmd
		vpCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.ready = true
		m.refresh()

	case bridgeStateMsg:
		m.bridgeState = msg.state
		m.refresh()
		return m, m.waitForBridgeState()

	case connectMsg:
		if !msg.ok && m.bridgeState.LastError != "" {
			m.flash = m.bridgeState.LastError
		}
		m.refresh()

	case eraStartedMsg:
		if msg.err != nil {
			m.loading = false
			m.err = msg.err
			return m, nil
		}
		m.screen = screenCard
		m.refresh()
		return m, m.nextDilemma()

	case dilemmaMsg:
		m.loading = false
		m.err = msg.err
		m.refresh()

	case choiceMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			c := msg.choice
			m.lastChoice = &c
			m.atmosphereChanged = msg.changed
			m.screen = screenPreview
		}
		m.refresh()

	case spinner.TickMsg:
		m.spinner, spCmd = m.spinner.Update(msg)
		if m.loading || m.showLog {
			m.refresh()
		}
		return m, spCmd

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
			m.showQuitModal = true
			return m, nil
		}
		if m.loading {
			return m, nil
		}
		m.flash = ""
		m.err = nil
		if next, cmd, handled := m.handleKey(msg); handled {
			return next, cmd
		}
	}

	m.cardViewport, vpCmd = m.cardViewport.Update(msg)
	return m, vpCmd
}

// handleKey processes keys shared by every screen, then the screen's own.
func (m ConsoleUI) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch msg.String() {
	case "c":
		return m, m.connect(), true
	case "d":
		m.session.Bridge().Disconnect()
		return m, nil, true
	case "l":
		m.showLog = !m.showLog
		m.resize()
		m.refresh()
		return m, nil, true
	case "y":
		m.copySnapshot()
		m.refresh()
		return m, nil, true
	}

	switch m.screen {
	case screenEraSelect:
		switch msg.Type {
		case tea.KeyUp:
			if m.selectedEra > 0 {
				m.selectedEra--
			}
			m.refresh()
			return m, nil, true
		case tea.KeyDown:
			if m.selectedEra < len(m.eras)-1 {
				m.selectedEra++
			}
			m.refresh()
			return m, nil, true
		case tea.KeyEnter:
			m.loading = true
			m.refresh()
			return m, m.startEra(m.eras[m.selectedEra].ID), true
		}

	case screenCard:
		var side world.Side
		switch msg.String() {
		case "a", "left":
			side = world.SideA
		case "b", "right":
			side = world.SideB
		case "r":
			m.session.Reset(m.ctx)
			m.screen = screenEraSelect
			m.refresh()
			return m, nil, true
		default:
			return m, nil, false
		}
		if m.session.Current() == nil {
			return m, nil, true
		}
		m.loading = true
		m.refresh()
		return m, m.choose(side), true

	case screenPreview:
		switch msg.Type {
		case tea.KeyEnter, tea.KeySpace:
			m.screen = screenCard
			m.loading = true
			m.refresh()
			return m, m.nextDilemma(), true
		}
	}
	return m, nil, false
}

func (m *ConsoleUI) copySnapshot() {
	data, err := m.session.ExportJSON()
	if err == nil {
		err = clipboard.WriteAll(string(data))
	}
	if err != nil {
		m.flash = "Copy failed: " + err.Error()
		return
	}
	m.flash = "World state copied to clipboard"
}

func (m *ConsoleUI) resize() {
	cardWidth := int(float64(m.width)*0.65) - 4
	metaWidth := m.width - cardWidth - 6
	height := m.height - 4
	if m.showLog {
		height -= logPanelLines + 1
	}

	m.cardViewport.Width = cardWidth - 2
	m.cardViewport.Height = height
	m.metaViewport.Width = metaWidth - 2
	m.metaViewport.Height = height
}

// refresh rebuilds both panels for the current screen and width.
func (m *ConsoleUI) refresh() {
	if !m.ready {
		return
	}
	width := m.cardViewport.Width - 4
	if width < 20 {
		width = 20
	}

	var content string
	switch m.screen {
	case screenEraSelect:
		content = m.writeEraSelect(width)
	case screenCard:
		content = m.writeCard(width)
	case screenPreview:
		content = m.writePreview(width)
	}
	m.cardViewport.SetContent(content)
	m.metaViewport.SetContent(writeMetadata(m.session.World().Snapshot(), m.bridgeState))
}

func (m ConsoleUI) writeEraSelect(width int) string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("WORLDFORGE") + "\n\n")
	content.WriteString(wordwrap.String("Choose the age your world begins in. Every card you answer will reshape it.", width) + "\n\n")

	for i, e := range m.eras {
		line := fmt.Sprintf("%s  (%s)", e.Name, e.Period)
		if i == m.selectedEra {
			content.WriteString(modalSelectedItemStyle.Render("▶ "+line) + "\n")
			content.WriteString(promptStyle.Render(wordwrap.String(e.Description, width-2)) + "\n")
		} else {
			content.WriteString(modalItemStyle.Render("  "+line) + "\n")
		}
	}

	content.WriteString("\n")
	if m.loading {
		content.WriteString(m.spinner.View() + loadingStyle.Render(" Forging your world...") + "\n")
	}
	content.WriteString(m.writeFooter("↑/↓ choose • Enter begin"))
	return content.String()
}

func (m ConsoleUI) writeCard(width int) string {
	var content strings.Builder

	d := m.session.Current()
	if d == nil {
		if m.loading {
			content.WriteString(m.spinner.View() + loadingStyle.Render(" Drawing the next card...") + "\n\n")
		}
		content.WriteString(m.writeFooter("r restart"))
		return content.String()
	}

	content.WriteString(promptStyle.Render(fmt.Sprintf("Card %d", d.CardNumber)) + "\n")
	content.WriteString(cardNameStyle.Render(d.CardName) + "\n\n")
	content.WriteString(wordwrap.String(d.Description, width) + "\n\n")

	for _, side := range []world.Side{world.SideA, world.SideB} {
		content.WriteString(writeChoice(side, d.Choice(side), width) + "\n")
	}

	if m.loading {
		content.WriteString(m.spinner.View() + loadingStyle.Render(" The world shifts...") + "\n")
	}
	content.WriteString(m.writeFooter("a/b choose • r restart"))
	return content.String()
}

func writeChoice(side world.Side, c world.Choice, width int) string {
	var content strings.Builder
	content.WriteString(labelStyle.Render(fmt.Sprintf("[%s] %s", side, c.Label)) + "\n")
	content.WriteString(wordwrap.String(c.Description, width-4) + "\n")

	var effects []string
	for _, axis := range world.Axes {
		if v, ok := c.TraitEffects.Get(axis); ok && v != 0 {
			effects = append(effects, fmt.Sprintf("%s %+.0f%%", axis.Name(), v*100))
		}
	}
	if len(effects) > 0 {
		content.WriteString(promptStyle.Render(wordwrap.String(strings.Join(effects, " • "), width-4)))
	}
	return choiceStyle.Width(width).Render(content.String())
}

func (m ConsoleUI) writePreview(width int) string {
	var content strings.Builder
	snap := m.session.World().Snapshot()

	content.WriteString(titleStyle.Render("THE WORLD ANSWERS") + "\n\n")
	if m.lastChoice != nil {
		content.WriteString(labelStyle.Render(m.lastChoice.Label) + "\n\n")
		for _, e := range m.lastChoice.WorldEvents {
			content.WriteString(wordwrap.String("• "+e, width) + "\n")
		}
		for _, l := range m.lastChoice.Landmarks {
			content.WriteString(wordwrap.String(fmt.Sprintf("• %s rises: %s", l.Name, l.Description), width) + "\n")
		}
		content.WriteString("\n")
	}

	heading := snap.Atmosphere.Title()
	if m.atmosphereChanged {
		heading += " (new)"
	}
	content.WriteString(cardNameStyle.Render(heading) + "\n")
	content.WriteString(wordwrap.String(snap.Atmosphere.Description(), width) + "\n\n")
	content.WriteString(m.writeFooter("Enter next card"))
	return content.String()
}

func (m ConsoleUI) writeFooter(keys string) string {
	var content strings.Builder
	if m.err != nil {
		content.WriteString(errorStyle.Render("Error: "+m.err.Error()) + "\n")
	}
	if m.flash != "" {
		content.WriteString(loadingStyle.Render(m.flash) + "\n")
	}
	content.WriteString(promptStyle.Render(keys + " • c connect • d disconnect • y copy • l log • Esc quit"))
	return content.String()
}

func writeMetadata(snap state.Snapshot, bs bridge.State) string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("WORLD") + "\n\n")

	if snap.Era != nil {
		content.WriteString(snap.Era.Name + "\n")
		content.WriteString(promptStyle.Render(snap.Era.Period) + "\n\n")
	} else {
		content.WriteString("No era chosen\n\n")
	}

	content.WriteString("Atmosphere:\n")
	content.WriteString(snap.Atmosphere.Name() + "\n\n")

	content.WriteString("Traits:\n")
	for _, axis := range world.Axes {
		v, _ := snap.Traits.Get(axis)
		content.WriteString(fmt.Sprintf("%-12s %s %s\n", axis.Name(), traitBar(v, 10), promptStyle.Render(axis.Label(v))))
	}
	content.WriteString("\n")

	content.WriteString(fmt.Sprintf("Choices: %d\n", len(snap.Choices)))
	if len(snap.Landmarks) > 0 {
		content.WriteString("\nLandmarks:\n")
		for _, l := range snap.Landmarks {
			content.WriteString(fmt.Sprintf("• %s\n", l.Name))
		}
	}

	content.WriteString("\n" + titleStyle.Render("ENGINE") + "\n")
	style, ok := bridgeStatusStyles[bs.Status]
	if !ok {
		style = promptStyle
	}
	content.WriteString(style.Render(string(bs.Status)) + "\n")
	if n := len(bs.CommandQueue); n > 0 {
		content.WriteString(fmt.Sprintf("%d queued\n", n))
	}
	if bs.LastError != "" {
		content.WriteString(errorStyle.Render(bs.LastError) + "\n")
	}
	return content.String()
}

// traitBar renders v in [0,1] as a bar of n cells.
func traitBar(v float64, n int) string {
	filled := int(v*float64(n) + 0.5)
	return strings.Repeat("█", filled) + separatorStyle.Render(strings.Repeat("░", n-filled))
}

func (m ConsoleUI) renderLog() string {
	entries := m.recorder.Entries()
	if len(entries) > logPanelLines {
		entries = entries[len(entries)-logPanelLines:]
	}
	lines := make([]string, 0, logPanelLines)
	for _, e := range entries {
		line := e.String()
		if w := m.width - 6; w > 0 && len(line) > w {
			line = line[:w]
		}
		lines = append(lines, line)
	}
	return logStyle.Render(strings.Join(lines, "\n"))
}

func (m ConsoleUI) startEra(eraID string) tea.Cmd {
	return func() tea.Msg {
		return eraStartedMsg{err: m.session.Start(m.ctx, eraID)}
	}
}

func (m ConsoleUI) nextDilemma() tea.Cmd {
	return func() tea.Msg {
		d, err := m.session.NextDilemma(m.ctx)
		return dilemmaMsg{dilemma: d, err: err}
	}
}

func (m ConsoleUI) choose(side world.Side) tea.Cmd {
	return func() tea.Msg {
		before := m.session.World().Atmosphere()
		choice := m.session.Current().Choice(side)
		snap, err := m.session.Choose(m.ctx, side)
		return choiceMsg{choice: choice, snapshot: snap, changed: err == nil && snap.Atmosphere != before, err: err}
	}
}

func (m ConsoleUI) connect() tea.Cmd {
	return func() tea.Msg {
		return connectMsg{ok: m.session.Bridge().Connect(m.ctx, "", 0)}
	}
}

// publishLatest puts s in ch, replacing any state the UI has not read yet.
func publishLatest(ch chan bridge.State, s bridge.State) {
	for {
		select {
		case ch <- s:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

func (m ConsoleUI) waitForBridgeState() tea.Cmd {
	ch := m.bridgeCh
	return func() tea.Msg {
		return bridgeStateMsg{state: <-ch}
	}
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, m.quit()
		default:
			switch msg.String() {
			case "y", "Y":
				return m, m.quit()
			case "n", "N":
				m.showQuitModal = false
				return m, nil
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) quit() tea.Cmd {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
	return tea.Quit
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Leave WorldForge?"))
	content.WriteString("\n\n")
	content.WriteString("Your world is saved after every choice.")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	cardWidth := int(float64(m.width)*0.65) - 4
	metaWidth := m.width - cardWidth - 6

	cardPanel := cardPanelStyle.Width(cardWidth).Render(m.cardViewport.View())
	metaPanel := metaPanelStyle.Width(metaWidth).Render(m.metaViewport.View())
	view := lipgloss.JoinHorizontal(lipgloss.Top, cardPanel, metaPanel)

	if m.showLog {
		view = lipgloss.JoinVertical(lipgloss.Left,
			view,
			separatorStyle.Render(strings.Repeat("─", max(m.width-2, 0))),
			m.renderLog(),
		)
	}
	return view
}
