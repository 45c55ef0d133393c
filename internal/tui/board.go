// Package tui implements the armsboard terminal board: one column per task
// status, with keys to pick up, pause, resume and complete work.
package tui

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/twiced-technology-gmbh/armsboard/internal/config"
	"github.com/twiced-technology-gmbh/armsboard/internal/task"
)

// Workspace is the task state the board reads and mutates. Every call is a
// complete read or write of the persisted store.
type Workspace interface {
	Tasks() ([]*task.Task, error)
	ClaimNext(analyst string) (*task.Task, error)
	Assign(id int, analyst string) (*task.Task, error)
	Transition(id int, to task.Status) (*task.Task, error)
	Clear() (int, error)
}

// view represents the current screen state.
type view int

const (
	viewBoard view = iota
	viewDetail
	viewConfirmClearAll
)

// Key and layout constants.
const (
	keyEsc = "esc"

	boardChrome  = 2                // blank line + status bar below the column area
	errorChrome  = 1                // extra line when error or notice is displayed
	tickInterval = 30 * time.Second // how often ages refresh
	doubleClick  = 500 * time.Millisecond
)

// Board is the top-level bubbletea model.
type Board struct {
	cfg       *config.Config
	ws        Workspace
	analyst   string
	tasks     []*task.Task
	columns   []column
	activeCol int
	activeRow int
	view      view
	width     int
	height    int
	err       error
	notice    string
	now       func() time.Time

	// Clear all confirmation.
	clearAllCount int

	// Double-click tracking opens the detail view.
	lastClickCol  int
	lastClickRow  int
	lastClickTime time.Time
}

// column groups tasks belonging to a single status.
type column struct {
	status    task.Status
	tasks     []*task.Task
	scrollOff int // first visible row index
}

// NewBoard creates a Board acting as analyst. An empty analyst can browse
// and move owned tasks but cannot pick up work.
func NewBoard(cfg *config.Config, ws Workspace, analyst string) *Board {
	b := &Board{cfg: cfg, ws: ws, analyst: analyst, now: time.Now}
	b.loadTasks()
	return b
}

// SetNow overrides the clock used for age display (for testing).
func (b *Board) SetNow(fn func() time.Time) {
	b.now = fn
}

// Init implements tea.Model.
func (b *Board) Init() tea.Cmd {
	return tickCmd()
}

// Update implements tea.Model.
func (b *Board) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return b.handleKey(msg)
	case tea.MouseMsg:
		return b.handleMouse(msg)
	case tea.WindowSizeMsg:
		b.width = msg.Width
		b.height = msg.Height
		b.ensureVisible()
		return b, nil
	case ReloadMsg:
		b.loadTasks()
		return b, nil
	case TickMsg:
		return b, tickCmd()
	case ErrMsg:
		b.err = msg.Err
		return b, nil
	}
	return b, nil
}

// View implements tea.Model.
func (b *Board) View() string {
	if b.width == 0 {
		return "Loading..."
	}

	switch b.view {
	case viewDetail:
		return b.viewTaskDetail()
	case viewConfirmClearAll:
		return b.viewClearAllConfirm()
	default:
		return b.viewBoard()
	}
}

func (b *Board) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, key.NewBinding(key.WithKeys("ctrl+c"))) {
		return b, tea.Quit
	}

	switch b.view {
	case viewBoard:
		return b.handleBoardKey(msg)
	case viewDetail:
		switch msg.String() {
		case "q", keyEsc, "enter":
			b.view = viewBoard
		}
	case viewConfirmClearAll:
		return b.handleClearAllKey(msg)
	}
	return b, nil
}

func (b *Board) handleBoardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	b.notice = ""
	switch msg.String() {
	case "q", keyEsc:
		return b, tea.Quit
	case "h", "left":
		if b.activeCol > 0 {
			b.activeCol--
			b.clampRow()
		}
	case "l", "right":
		if b.activeCol < len(b.columns)-1 {
			b.activeCol++
			b.clampRow()
		}
	case "j", "down":
		col := b.currentColumn()
		if col != nil && b.activeRow < len(col.tasks)-1 {
			b.activeRow++
			b.ensureVisible()
		}
	case "k", "up":
		if b.activeRow > 0 {
			b.activeRow--
			b.ensureVisible()
		}
	case "enter":
		if b.selectedTask() != nil {
			b.view = viewDetail
		}
	case "n":
		b.pickNext()
	case "a":
		b.assignSelected()
	case "s", "r":
		b.moveSelected(task.StatusInProgress)
	case "p":
		b.moveSelected(task.StatusPaused)
	case "c":
		b.moveSelected(task.StatusCompleted)
	case "R":
		b.loadTasks()
	case "C":
		b.handleClearAllStart()
	}
	return b, nil
}

func (b *Board) requireAnalyst() bool {
	if b.analyst == "" {
		b.err = errors.New("no analyst set (start with --as NAME or set ARMSBOARD_ANALYST)")
		return false
	}
	return true
}

func (b *Board) pickNext() {
	if !b.requireAnalyst() {
		return
	}
	t, err := b.ws.ClaimNext(b.analyst)
	if err != nil {
		b.err = err
		return
	}
	if t == nil {
		b.notice = "No unassigned work waiting."
		return
	}
	b.notice = fmt.Sprintf("Picked #%d %s", t.ID, t.Title)
	b.loadTasks()
	b.focus(t.ID)
}

func (b *Board) assignSelected() {
	t := b.selectedTask()
	if t == nil || !b.requireAnalyst() {
		return
	}
	if _, err := b.ws.Assign(t.ID, b.analyst); err != nil {
		b.err = err
		return
	}
	b.notice = fmt.Sprintf("Assigned #%d to %s", t.ID, b.analyst)
	b.loadTasks()
	b.focus(t.ID)
}

func (b *Board) moveSelected(to task.Status) {
	t := b.selectedTask()
	if t == nil {
		return
	}
	var err error
	if t.Status == task.StatusNew && to == task.StatusInProgress && t.IsUnassigned() {
		// Assigning starts the task.
		if !b.requireAnalyst() {
			return
		}
		_, err = b.ws.Assign(t.ID, b.analyst)
	} else {
		_, err = b.ws.Transition(t.ID, to)
	}
	if err != nil {
		b.loadTasks()
		b.err = err
		return
	}
	b.notice = fmt.Sprintf("#%d %s → %s", t.ID, t.Status, to)
	b.loadTasks()
	b.focus(t.ID)
}

func (b *Board) handleClearAllStart() {
	b.clearAllCount = len(b.tasks)
	if b.clearAllCount > 0 {
		b.view = viewConfirmClearAll
	}
}

func (b *Board) handleClearAllKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		n, err := b.ws.Clear()
		b.view = viewBoard
		b.loadTasks()
		if err != nil {
			b.err = err
		} else {
			b.notice = fmt.Sprintf("Removed %d tasks", n)
		}
	case "n", "N", keyEsc, "q":
		b.view = viewBoard
	}
	return b, nil
}

// handleMouse handles mouse click events for card selection.
func (b *Board) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return b, nil
	}
	if b.view != viewBoard {
		return b, nil
	}

	colWidth := b.columnWidth()
	clickedCol := msg.X / colWidth
	if clickedCol >= len(b.columns) {
		return b, nil
	}

	col := &b.columns[clickedCol]
	lineY := msg.Y - 1
	if lineY < 0 {
		b.activeCol = clickedCol
		b.clampRow()
		return b, nil
	}

	clickedRow := -1
	cardLine := 0
	for rowIdx := col.scrollOff; rowIdx < len(col.tasks); rowIdx++ {
		cardH := b.cardHeight(col.tasks[rowIdx], colWidth)
		if lineY < cardLine+cardH {
			clickedRow = rowIdx
			break
		}
		cardLine += cardH
	}

	if clickedRow < 0 {
		b.activeCol = clickedCol
		b.clampRow()
		return b, nil
	}

	now := b.now()
	isDoubleClick := clickedCol == b.lastClickCol &&
		clickedRow == b.lastClickRow &&
		now.Sub(b.lastClickTime) < doubleClick

	b.activeCol = clickedCol
	b.activeRow = clickedRow
	b.lastClickCol = clickedCol
	b.lastClickRow = clickedRow
	b.lastClickTime = now
	b.ensureVisible()

	if isDoubleClick {
		b.view = viewDetail
	}
	return b, nil
}

// loadTasks reads all tasks and organizes them into columns. The New column
// is in pick order so its top card is what "n" will claim; the others put
// the most urgent work first.
func (b *Board) loadTasks() {
	tasks, err := b.ws.Tasks()
	if err != nil {
		b.err = err
		return
	}
	b.err = nil
	b.tasks = tasks

	b.columns = make([]column, len(task.Statuses))
	for i, status := range task.Statuses {
		b.columns[i] = column{status: status}
	}
	for _, t := range tasks {
		if i := task.StatusRank(t.Status); i >= 0 {
			b.columns[i].tasks = append(b.columns[i].tasks, t)
		}
	}
	for i := range b.columns {
		sortColumn(&b.columns[i])
	}

	b.clampRow()
}

func sortColumn(col *column) {
	ts := col.tasks
	if col.status == task.StatusNew {
		sort.SliceStable(ts, func(i, j int) bool {
			if !ts[i].CreatedAt.Equal(ts[j].CreatedAt) {
				return ts[i].CreatedAt.Before(ts[j].CreatedAt)
			}
			return ts[i].ID < ts[j].ID
		})
		return
	}
	sort.SliceStable(ts, func(i, j int) bool {
		pi, pj := task.PriorityRank(ts[i].Priority), task.PriorityRank(ts[j].Priority)
		if pi != pj {
			return pi > pj
		}
		return ts[i].DueAt.Before(ts[j].DueAt)
	})
}

// focus moves the selection to the task with id, wherever it now lives.
func (b *Board) focus(id int) {
	for ci := range b.columns {
		for ri, t := range b.columns[ci].tasks {
			if t.ID == id {
				b.activeCol, b.activeRow = ci, ri
				b.ensureVisible()
				return
			}
		}
	}
}

func (b *Board) currentColumn() *column {
	if b.activeCol >= 0 && b.activeCol < len(b.columns) {
		return &b.columns[b.activeCol]
	}
	return nil
}

func (b *Board) selectedTask() *task.Task {
	col := b.currentColumn()
	if col == nil || len(col.tasks) == 0 {
		return nil
	}
	if b.activeRow >= 0 && b.activeRow < len(col.tasks) {
		return col.tasks[b.activeRow]
	}
	return nil
}

func (b *Board) clampRow() {
	col := b.currentColumn()
	if col == nil || len(col.tasks) == 0 {
		b.activeRow = 0
		return
	}
	if b.activeRow >= len(col.tasks) {
		b.activeRow = len(col.tasks) - 1
	}
	b.ensureVisible()
}

// chromeHeight returns the number of lines consumed by non-card elements below
// the column area: blank line + status bar (+ error or notice line).
func (b *Board) chromeHeight() int {
	h := boardChrome
	if b.err != nil || b.notice != "" {
		h += errorChrome
	}
	return h
}

// visibleCardsForColumn returns the number of cards that fit in the column,
// accounting for the scroll indicator lines.
func (b *Board) visibleCardsForColumn(col *column, width int) int {
	budget := b.height - b.chromeHeight()
	if budget < 1 {
		return 1
	}

	// Always need 1 line for column header.
	avail := budget - 1
	if col.scrollOff > 0 {
		avail--
	}

	n := b.fitCardsInHeight(col, avail, width)
	if col.scrollOff+n < len(col.tasks) {
		n = max(b.fitCardsInHeight(col, avail-1, width), 1)
	}
	return n
}

// ensureVisible adjusts the active column's scroll offset so the
// selected row is within the visible window.
func (b *Board) ensureVisible() {
	col := b.currentColumn()
	if col == nil {
		return
	}
	w := b.columnWidth()

	for range len(col.tasks) + 1 {
		maxVis := b.visibleCardsForColumn(col, w)

		switch {
		case b.activeRow >= col.scrollOff+maxVis:
			col.scrollOff = b.activeRow - maxVis + 1
		case b.activeRow < col.scrollOff:
			col.scrollOff = b.activeRow
		default:
			return
		}
	}
}

func (b *Board) fitCardsInHeight(col *column, avail, width int) int {
	if len(col.tasks) == 0 || avail < 1 {
		return 1
	}

	used := 0
	count := 0
	for i := col.scrollOff; i < len(col.tasks); i++ {
		cardLines := b.cardHeight(col.tasks[i], width)
		if count > 0 && used+cardLines > avail {
			break
		}
		count++
		used += cardLines
		if used >= avail {
			break
		}
	}
	return max(count, 1)
}

// WatchPaths returns the paths that should be watched for changes made by
// other armsboard processes.
func (b *Board) WatchPaths() []string {
	return []string{b.cfg.Dir()}
}

// --- Messages ---

// ReloadMsg is sent by the file watcher to trigger a board refresh.
type ReloadMsg struct{}

// ErrMsg surfaces a background error, such as a watcher failure.
type ErrMsg struct{ Err error }

// TickMsg is sent periodically to refresh age displays.
type TickMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(time.Time) tea.Msg { return TickMsg{} })
}

// --- Styles ---

var (
	columnHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("252")).
				Background(lipgloss.Color("236")).
				Padding(0, 1)

	activeColumnHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("230")).
				Background(lipgloss.Color("62")).
				Padding(0, 1)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	activeCardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("226")).
			Padding(0, 1)

	overdueCardStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("196")).
				Padding(0, 1)

	statusBarStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	noticeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("34"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	analystStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("44"))
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))

	priorityStyles = map[task.Priority]lipgloss.Style{
		task.PriorityCritical: lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		task.PriorityHigh:     lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
		task.PriorityMedium:   lipgloss.NewStyle().Foreground(lipgloss.Color("226")),
		task.PriorityLow:      lipgloss.NewStyle().Foreground(lipgloss.Color("242")),
	}

	dialogPadY = 1
	dialogPadX = 2

	dialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(dialogPadY, dialogPadX)
)

// ageStyle returns a style for the age label based on the configured age
// thresholds. Thresholds are walked longest first so the first match wins.
func (b *Board) ageStyle(d time.Duration) lipgloss.Style {
	thresholds := b.cfg.AgeThresholdsDuration()
	for i := len(thresholds) - 1; i >= 0; i-- {
		if d >= thresholds[i].After {
			return lipgloss.NewStyle().Foreground(lipgloss.Color(thresholds[i].Color))
		}
	}
	return dimStyle
}

// --- View rendering ---

func (b *Board) viewBoard() string {
	colWidth := b.columnWidth()

	renderedCols := make([]string, len(b.columns))
	for i, col := range b.columns {
		renderedCols[i] = b.renderColumn(i, col, colWidth)
	}

	boardView := lipgloss.JoinHorizontal(lipgloss.Top, renderedCols...)

	// Clamp from the bottom (keeping headers at the top) and pad if needed.
	targetHeight := b.height - b.chromeHeight()
	if targetHeight > 0 {
		actual := strings.Count(boardView, "\n") + 1
		if actual > targetHeight {
			viewLines := strings.SplitN(boardView, "\n", targetHeight+1)
			boardView = strings.Join(viewLines[:targetHeight], "\n")
		} else if actual < targetHeight {
			boardView += strings.Repeat("\n", targetHeight-actual)
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, boardView, "", b.renderStatusBar())
}

func (b *Board) columnWidth() int {
	if b.width == 0 || len(b.columns) == 0 {
		return 30 //nolint:mnd // default column width
	}
	const maxColWidth = 60
	return min(b.width/len(b.columns), maxColWidth)
}

func (b *Board) renderColumn(colIdx int, col column, width int) string {
	headerText := fmt.Sprintf("%s (%d)", col.status, len(col.tasks))
	const headerPad = 2
	headerText = truncate(headerText, width-headerPad)

	var header string
	if colIdx == b.activeCol {
		header = activeColumnHeaderStyle.Width(width).Render(headerText)
	} else {
		header = columnHeaderStyle.Width(width).Render(headerText)
	}

	maxVis := b.visibleCardsForColumn(&col, width)
	start := min(col.scrollOff, len(col.tasks))
	end := min(start+maxVis, len(col.tasks))

	parts := []string{header}

	if start > 0 {
		indicator := fmt.Sprintf("  ↑ %d more", start)
		parts = append(parts, dimStyle.Width(width).Render(truncate(indicator, width)))
	}

	if len(col.tasks) == 0 {
		parts = append(parts, dimStyle.Width(width).Render("  (empty)"))
	} else {
		for rowIdx := start; rowIdx < end; rowIdx++ {
			active := colIdx == b.activeCol && rowIdx == b.activeRow
			parts = append(parts, b.renderCard(col.tasks[rowIdx], active, width))
		}
	}

	if end < len(col.tasks) {
		indicator := fmt.Sprintf("  ↓ %d more", len(col.tasks)-end)
		parts = append(parts, dimStyle.Width(width).Render(truncate(indicator, width)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (b *Board) renderCard(t *task.Task, active bool, width int) string {
	content := strings.Join(b.cardContentLines(t, width), "\n")

	style := cardStyle
	if t.IsOverdue(b.now()) {
		style = overdueCardStyle
	}
	if active {
		style = activeCardStyle
	}
	return style.Width(width - 2).Render(content) //nolint:mnd // border width
}

func (b *Board) cardHeight(t *task.Task, width int) int {
	return len(b.cardContentLines(t, width)) + 2 //nolint:mnd // top and bottom borders
}

func (b *Board) cardContentLines(t *task.Task, width int) []string {
	const cardChrome = 4 // border (2) + padding (2)
	cardWidth := max(width-cardChrome, 1)

	lines := make([]string, 0, b.cfg.TitleLines()+2) //nolint:mnd // meta + owner lines
	for _, l := range wrapTitle(t.Title, cardWidth, b.cfg.TitleLines()) {
		lines = append(lines, titleStyle.Render(l))
	}

	prio := string(t.Priority)
	if st, ok := priorityStyles[t.Priority]; ok {
		prio = st.Render(prio)
	}
	meta := dimStyle.Render("#"+strconv.Itoa(t.ID)) + " " + prio
	if t.Company != "" && t.Company != task.DefaultCompany {
		meta += " " + dimStyle.Render(truncate(t.Company, max(cardWidth-lipgloss.Width(meta)-1, 4))) //nolint:mnd // minimum truncation
	}
	lines = append(lines, meta)

	owner := dimStyle.Render(task.Unassigned)
	if !t.IsUnassigned() {
		owner = analystStyle.Render(truncate(t.AssignedTo, cardWidth/2)) //nolint:mnd // half the card
	}
	age := b.now().Sub(t.UpdatedAt)
	owner += "  " + b.ageStyle(age).Render(humanDuration(age))
	if t.IsOverdue(b.now()) {
		owner += " " + errorStyle.Render("overdue")
	}
	lines = append(lines, owner)
	return lines
}

// wrapTitle splits a title across maxLines lines, word-wrapping at word
// boundaries. Each line is at most maxWidth characters.
func wrapTitle(title string, maxWidth, maxLines int) []string {
	if maxLines < 1 {
		maxLines = 1
	}
	if lipgloss.Width(title) <= maxWidth || maxLines == 1 {
		return []string{truncate(title, maxWidth)}
	}

	words := strings.Fields(title)
	lines := make([]string, 0, maxLines)
	var current strings.Builder

	for i, word := range words {
		if current.Len() == 0 {
			current.WriteString(word)
			continue
		}
		if lipgloss.Width(current.String())+1+lipgloss.Width(word) <= maxWidth {
			current.WriteByte(' ')
			current.WriteString(word)
		} else {
			lines = append(lines, truncate(current.String(), maxWidth))
			current.Reset()
			current.WriteString(word)
			if len(lines) == maxLines-1 {
				// Last line: append all remaining words.
				for _, w := range words[i+1:] {
					current.WriteByte(' ')
					current.WriteString(w)
				}
				break
			}
		}
	}
	if current.Len() > 0 {
		lines = append(lines, truncate(current.String(), maxWidth))
	}
	return lines
}

func (b *Board) renderStatusBar() string {
	who := "no analyst"
	if b.analyst != "" {
		who = "@" + b.analyst
	}
	status := fmt.Sprintf(" %s | %s | %d tasks | n:next a:assign s:start p:pause r:resume c:complete enter:detail C:clear q:quit",
		b.cfg.Team.Name, who, len(b.tasks))
	status = statusBarStyle.Render(truncate(status, b.width))

	switch {
	case b.err != nil:
		return errorStyle.Render(truncate("Error: "+b.err.Error(), b.width)) + "\n" + status
	case b.notice != "":
		return noticeStyle.Render(truncate(b.notice, b.width)) + "\n" + status
	}
	return status
}

func (b *Board) viewTaskDetail() string {
	t := b.selectedTask()
	if t == nil {
		b.view = viewBoard
		return b.viewBoard()
	}
	field := func(label, value string) string {
		return dimStyle.Render(fmt.Sprintf("%-11s", label+":")) + " " + value + "\n"
	}

	var sb strings.Builder
	sb.WriteString(lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("#%d %s", t.ID, t.Title)) + "\n\n")
	sb.WriteString(field("Status", string(t.Status)))
	sb.WriteString(field("Priority", string(t.Priority)))
	sb.WriteString(field("Analyst", t.AssignedTo))
	sb.WriteString(field("Company", t.Company))
	sb.WriteString(field("Doc type", t.DocumentType))
	sb.WriteString(field("Department", t.Department))
	sb.WriteString(field("Due", t.DueAt.String()))
	sb.WriteString(field("Source", t.Source))
	sb.WriteString(field("Created", t.CreatedAt.Local().Format("2006-01-02 15:04")))
	if t.CompletedAt != nil {
		sb.WriteString(field("Completed", t.CompletedAt.Local().Format("2006-01-02 15:04")))
	}
	if t.Description != "" {
		sb.WriteString("\n")
		for _, l := range wrapTitle(t.Description, max(b.width-10, 20), 12) { //nolint:mnd // dialog chrome, line cap
			sb.WriteString(l + "\n")
		}
	}
	sb.WriteString("\n" + dimStyle.Render("enter/esc:back"))
	return dialogStyle.Render(sb.String())
}

func (b *Board) viewClearAllConfirm() string {
	content := errorStyle.Render("Remove ALL tasks?") + "\n\n" +
		fmt.Sprintf("  %d tasks will be removed. Task ids are not reused.", b.clearAllCount) + "\n\n" +
		dimStyle.Render("y:yes  n:no")

	return dialogStyle.Render(content)
}

func truncate(s string, maxLen int) string {
	if maxLen < 4 { //nolint:mnd // minimum length for truncation
		maxLen = 4
	}
	if lipgloss.Width(s) <= maxLen {
		return s
	}
	// Slice by runes to avoid breaking multi-byte UTF-8 characters.
	runes := []rune(s)
	target := min(maxLen-3, len(runes)) //nolint:mnd // room for "..."
	for target > 0 && lipgloss.Width(string(runes[:target])) > maxLen-3 {
		target--
	}
	return string(runes[:target]) + "..."
}

// humanDuration formats a duration as a compact human-readable string.
// Examples: "<1m", "5m", "2h", "3d", "2w", "3mo", "1y".
func humanDuration(d time.Duration) string {
	const (
		day   = 24 * time.Hour
		week  = 7 * day
		month = 30 * day
		year  = 365 * day
	)

	switch {
	case d < time.Minute:
		return "<1m"
	case d < time.Hour:
		return strconv.Itoa(int(d.Minutes())) + "m"
	case d < day:
		return strconv.Itoa(int(d.Hours())) + "h"
	case d < week:
		return strconv.Itoa(int(d/day)) + "d"
	case d < month:
		return strconv.Itoa(int(d/week)) + "w"
	case d < year:
		return strconv.Itoa(int(d/month)) + "mo"
	default:
		return strconv.Itoa(int(d/year)) + "y"
	}
}
