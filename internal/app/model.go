package app

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/hrutik5321/homelib/internal/db"
	"github.com/hrutik5321/homelib/internal/reports"
)

const defaultPageSize = 10

const rowsHelp = "a add, e edit, d delete, r refresh, n/p page, ←/→ scroll, b back."

// ----- Modes -----

type mode int

const (
	modeConnect mode = iota
	modeTables
	modeRows
	modeEdit
	modeConfirmDelete
	modeReports
	modeReportParam
	modeReportResult
)

// connection form fields
const (
	fieldHost = iota
	fieldPort
	fieldUser
	fieldPassword
	fieldDatabase
	fieldCount
)

// ----- Model -----

type Model struct {
	lib Library

	// connection form
	connInputs []textinput.Model
	focusIndex int
	baseConn   db.ConnConfig

	// state
	mode       mode
	status     string
	statusErr  bool
	keepStatus bool // a mutation result survives the row refresh after it
	loading    bool

	tableNames    []string
	tableCursor   int
	selectedTable string

	columns   []string
	rows      []db.Row
	rowCursor int

	// pagination
	pageSize  int
	offset    int
	totalRows int

	// insert/update form, one input per column
	editOp     string
	editInputs []textinput.Model
	editNull   []bool
	editOrig   db.Row
	editFocus  int

	// reports
	reportList   []reports.Report
	reportCursor int
	reportInput  textinput.Model
	reportSet    db.RowSet

	// terminal / scroll
	width       int
	horizOffset int
}

// ----- Initial model -----

func initialModel(lib Library, opts Options) Model {
	cfg := opts.Conn

	newInput := func(prompt, placeholder, value string) textinput.Model {
		in := textinput.New()
		in.Prompt = prompt
		in.Placeholder = placeholder
		in.SetValue(value)
		return in
	}

	port := ""
	if cfg.Port > 0 {
		port = strconv.Itoa(cfg.Port)
	}

	inputs := make([]textinput.Model, fieldCount)
	inputs[fieldHost] = newInput("Host: ", "localhost", cfg.Host)
	inputs[fieldPort] = newInput("Port: ", "5432", port)
	inputs[fieldUser] = newInput("User: ", "postgres", cfg.User)
	inputs[fieldPassword] = newInput("Password: ", "password", cfg.Password)
	inputs[fieldPassword].EchoMode = textinput.EchoPassword
	inputs[fieldPassword].EchoCharacter = '•'
	inputs[fieldDatabase] = newInput("Database: ", "homelibrary", cfg.Database)

	reportInput := textinput.New()
	reportInput.Prompt = "> "

	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	m := Model{
		lib:         lib,
		connInputs:  inputs,
		baseConn:    cfg,
		mode:        modeConnect,
		status:      "Fill details and press Enter to connect.",
		pageSize:    pageSize,
		reportList:  lib.Reports(),
		reportInput: reportInput,
	}
	m.connInputs[fieldHost].Focus()

	if opts.AutoConnect {
		m.loading = true
		m.status = "Connecting to DB..."
	}
	return m
}

func (m Model) Init() tea.Cmd {
	if m.loading && m.mode == modeConnect {
		return tea.Batch(textinput.Blink, connectCmd(m.lib, m.baseConn))
	}
	return textinput.Blink
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *Model) setError(prefix string, err error) {
	m.status = prefix + ": " + err.Error()
	m.statusErr = true
}

func (m Model) currentPage() db.QueryOptions {
	return db.QueryOptions{Limit: m.pageSize, Offset: m.offset}
}

// ----- Update -----

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case connectResultMsg:
		m.loading = false
		if msg.err != nil {
			m.setError("Connection failed", msg.err)
			m.mode = modeConnect
			return m, nil
		}
		m.setStatus("Connected! Fetching tables...")
		m.mode = modeTables
		m.loading = true
		return m, listTablesCmd(m.lib)

	case tablesResultMsg:
		m.loading = false
		if msg.err != nil {
			m.setError("Failed to fetch tables", msg.err)
			return m, nil
		}
		m.tableNames = msg.tables
		m.tableCursor = 0
		if len(msg.tables) == 0 {
			m.setStatus("Connected but the catalog has no tables.")
		} else {
			m.setStatus("Use ↑/↓ and Enter to open a table, 'r' for reports.")
		}
		return m, nil

	case rowsResultMsg:
		m.loading = false
		if msg.err != nil {
			m.setError("Failed to fetch rows", msg.err)
			if m.mode != modeRows {
				m.mode = modeTables
			}
			return m, nil
		}
		// a delete can empty the last page
		if len(msg.page.Rows) == 0 && msg.page.Offset > 0 && msg.page.TotalRows > 0 {
			m.offset = max(msg.page.Offset-m.pageSize, 0)
			m.loading = true
			return m, fetchRowsCmd(m.lib, m.selectedTable, m.currentPage())
		}
		m.columns = msg.page.Columns
		m.rows = msg.page.Rows
		m.totalRows = msg.page.TotalRows
		m.offset = msg.page.Offset
		m.rowCursor = min(m.rowCursor, max(len(m.rows)-1, 0))
		if !m.keepStatus {
			m.setStatus(rowsHelp)
		}
		m.keepStatus = false
		m.mode = modeRows
		return m, nil

	case mutationResultMsg:
		m.loading = false
		if msg.err != nil {
			m.setError(strings.ToUpper(msg.op[:1])+msg.op[1:]+" failed", msg.err)
			if msg.op == "delete" {
				m.mode = modeRows
			}
			return m, nil
		}
		if msg.affected == 0 {
			m.setStatus(fmt.Sprintf("No rows matched; nothing to %s.", msg.op))
		} else {
			m.setStatus(fmt.Sprintf("%s: %d row(s) affected.", msg.op, msg.affected))
		}
		m.mode = modeRows
		m.keepStatus = true
		m.loading = true
		return m, fetchRowsCmd(m.lib, m.selectedTable, m.currentPage())

	case reportResultMsg:
		m.loading = false
		if msg.err != nil {
			m.setError("Report failed", msg.err)
			m.mode = modeReports
			return m, nil
		}
		m.reportSet = msg.set
		m.horizOffset = 0
		if msg.set.Empty() {
			m.setStatus("The report returned no rows.")
		} else {
			m.setStatus(fmt.Sprintf("%d row(s).", len(msg.set.Rows)))
		}
		m.mode = modeReportResult
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.loading {
			return m, nil
		}
		return m.handleKey(msg)
	}

	return m, nil
}

// ----- Key handling dispatcher -----

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeConnect:
		return m.updateConnectKey(msg)
	case modeTables:
		return m.updateTablesKey(msg)
	case modeRows:
		return m.updateRowsKey(msg)
	case modeEdit:
		return m.updateEditKey(msg)
	case modeConfirmDelete:
		return m.updateConfirmDeleteKey(msg)
	case modeReports:
		return m.updateReportsKey(msg)
	case modeReportParam:
		return m.updateReportParamKey(msg)
	case modeReportResult:
		return m.updateReportResultKey(msg)
	default:
		return m, nil
	}
}

// --- connect form ---

func (m Model) updateConnectKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m, tea.Quit
	case "tab", "down":
		m.focusIndex = min(m.focusIndex+1, fieldCount-1)
		return m, tea.Batch(focusOnly(m.connInputs, m.focusIndex)...)
	case "shift+tab", "up":
		m.focusIndex = max(m.focusIndex-1, 0)
		return m, tea.Batch(focusOnly(m.connInputs, m.focusIndex)...)
	case "enter":
		if m.focusIndex == fieldCount-1 {
			cfg, err := m.connConfig()
			if err != nil {
				m.setError("Invalid form", err)
				return m, nil
			}
			m.loading = true
			m.setStatus("Connecting to DB...")
			return m, connectCmd(m.lib, cfg)
		}
		m.focusIndex++
		return m, tea.Batch(focusOnly(m.connInputs, m.focusIndex)...)
	}

	var cmd tea.Cmd
	m.connInputs[m.focusIndex], cmd = m.connInputs[m.focusIndex].Update(msg)
	return m, cmd
}

func (m Model) connConfig() (db.ConnConfig, error) {
	cfg := m.baseConn
	cfg.Host = orDefault(m.connInputs[fieldHost])
	cfg.User = orDefault(m.connInputs[fieldUser])
	cfg.Password = m.connInputs[fieldPassword].Value()
	cfg.Database = orDefault(m.connInputs[fieldDatabase])

	port, err := strconv.Atoi(orDefault(m.connInputs[fieldPort]))
	if err != nil || port < 1 || port > 65535 {
		return db.ConnConfig{}, fmt.Errorf("port %q is not a valid port number", m.connInputs[fieldPort].Value())
	}
	cfg.Port = port
	return cfg, nil
}

// orDefault reads an input, falling back to its placeholder.
func orDefault(in textinput.Model) string {
	if v := strings.TrimSpace(in.Value()); v != "" {
		return v
	}
	return in.Placeholder
}

// --- tables ---

func (m Model) updateTablesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		return m, tea.Quit
	case "up", "k":
		if m.tableCursor > 0 {
			m.tableCursor--
		}
	case "down", "j":
		if m.tableCursor < len(m.tableNames)-1 {
			m.tableCursor++
		}
	case "r":
		m.mode = modeReports
		m.setStatus("Use ↑/↓ and Enter to run a report, 'b' to go back.")
	case "enter":
		if len(m.tableNames) == 0 {
			return m, nil
		}
		m.selectedTable = m.tableNames[m.tableCursor]
		m.loading = true
		m.offset = 0
		m.rowCursor = 0
		m.horizOffset = 0
		m.setStatus("Fetching rows from " + m.selectedTable + "...")
		return m, fetchRowsCmd(m.lib, m.selectedTable, m.currentPage())
	}
	return m, nil
}

// --- rows ---

func (m Model) updateRowsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "b", "esc":
		m.mode = modeTables
		m.setStatus("Use ↑/↓ and Enter to select another table.")

	case "r":
		m.loading = true
		m.setStatus("Refreshing " + m.selectedTable + "...")
		return m, fetchRowsCmd(m.lib, m.selectedTable, m.currentPage())

	case "up", "k":
		if m.rowCursor > 0 {
			m.rowCursor--
		}
	case "down", "j":
		if m.rowCursor < len(m.rows)-1 {
			m.rowCursor++
		}

	case "a":
		return m.openEditForm("insert", nil)
	case "e", "enter":
		if len(m.rows) == 0 {
			return m, nil
		}
		return m.openEditForm("update", m.rows[m.rowCursor])
	case "d":
		if len(m.rows) == 0 {
			return m, nil
		}
		m.mode = modeConfirmDelete
		m.setStatus("Delete the selected row? Rows equal to it are removed too. (y/n)")

	// pagination
	case "n":
		if m.totalRows == 0 {
			return m, nil
		}
		next := m.offset + m.pageSize
		if next >= m.totalRows {
			m.setStatus("Already at last page.")
			return m, nil
		}
		m.offset = next
		m.rowCursor = 0
		m.loading = true
		m.setStatus("Loading next page...")
		return m, fetchRowsCmd(m.lib, m.selectedTable, m.currentPage())

	case "p":
		prev := max(m.offset-m.pageSize, 0)
		if prev == m.offset {
			m.setStatus("Already at first page.")
			return m, nil
		}
		m.offset = prev
		m.rowCursor = 0
		m.loading = true
		m.setStatus("Loading previous page...")
		return m, fetchRowsCmd(m.lib, m.selectedTable, m.currentPage())

	// horizontal scroll
	case "left", "h":
		m.horizOffset = max(m.horizOffset-4, 0)
	case "right", "l":
		m.horizOffset += 4
	case "shift+left":
		m.horizOffset = max(m.horizOffset-16, 0)
	case "shift+right":
		m.horizOffset += 16
	}

	return m, nil
}

// --- insert / update form ---

func (m Model) openEditForm(op string, row db.Row) (tea.Model, tea.Cmd) {
	if len(m.columns) == 0 {
		m.setStatus("No columns to edit.")
		return m, nil
	}
	m.editOp = op
	m.editFocus = 0
	m.editOrig = nil
	if row != nil {
		m.editOrig = append(db.Row(nil), row...)
	}
	m.editInputs = make([]textinput.Model, len(m.columns))
	m.editNull = make([]bool, len(m.columns))
	for i, col := range m.columns {
		in := textinput.New()
		in.Prompt = col + ": "
		// a new row starts out all NULL
		cell := db.Null
		if row != nil && i < len(row) {
			cell = row[i]
		}
		in.SetValue(cell.Text)
		m.editInputs[i] = in
		m.setEditNull(i, cell.Null)
	}
	m.mode = modeEdit
	if op == "insert" {
		m.setStatus("New row. Fields start as NULL, ctrl+n sets one back. Enter on the last field or ctrl+s saves, Esc cancels.")
	} else {
		m.setStatus("Key columns select the row and are not changed. ctrl+n sets NULL. Enter on the last field or ctrl+s saves, Esc cancels.")
	}
	return m, tea.Batch(focusOnly(m.editInputs, 0)...)
}

func (m Model) updateEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	last := len(m.editInputs) - 1
	switch msg.String() {
	case "esc":
		m.mode = modeRows
		m.setStatus(strings.ToUpper(m.editOp[:1]) + m.editOp[1:] + " cancelled.")
		return m, nil
	case "tab", "down":
		m.editFocus = min(m.editFocus+1, last)
		return m, tea.Batch(focusOnly(m.editInputs, m.editFocus)...)
	case "shift+tab", "up":
		m.editFocus = max(m.editFocus-1, 0)
		return m, tea.Batch(focusOnly(m.editInputs, m.editFocus)...)
	case "ctrl+s":
		return m.submitEdit()
	case "ctrl+n":
		m.editInputs[m.editFocus].SetValue("")
		m.setEditNull(m.editFocus, true)
		return m, nil
	case "enter":
		if m.editFocus == last {
			return m.submitEdit()
		}
		m.editFocus++
		return m, tea.Batch(focusOnly(m.editInputs, m.editFocus)...)
	}

	before := m.editInputs[m.editFocus].Value()
	var cmd tea.Cmd
	m.editInputs[m.editFocus], cmd = m.editInputs[m.editFocus].Update(msg)
	if m.editInputs[m.editFocus].Value() != before {
		m.setEditNull(m.editFocus, false)
	}
	return m, cmd
}

// setEditNull marks a form field as NULL or text. An empty text field is
// the empty string, and the placeholder tells the two apart.
func (m *Model) setEditNull(i int, null bool) {
	m.editNull[i] = null
	if null {
		m.editInputs[i].Placeholder = db.NullText
	} else {
		m.editInputs[i].Placeholder = "''"
	}
}

// editValues reads the form. Only an empty field marked NULL is NULL.
func (m Model) editValues() db.Row {
	values := make(db.Row, len(m.editInputs))
	for i, in := range m.editInputs {
		if m.editNull[i] && in.Value() == "" {
			values[i] = db.Null
			continue
		}
		values[i] = db.Text(in.Value())
	}
	return values
}

func (m Model) submitEdit() (tea.Model, tea.Cmd) {
	values := m.editValues()
	columns := append([]string(nil), m.columns...)

	if m.editOp == "update" && slices.Equal(values, m.editOrig) {
		m.mode = modeRows
		m.setStatus("No changes to save.")
		return m, nil
	}

	m.loading = true
	if m.editOp == "insert" {
		m.setStatus("Inserting row...")
		return m, insertCmd(m.lib, m.selectedTable, columns, values)
	}
	m.setStatus("Updating row...")
	return m, updateCmd(m.lib, m.selectedTable, columns, values)
}

// --- delete confirmation ---

func (m Model) updateConfirmDeleteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		row := append(db.Row(nil), m.rows[m.rowCursor]...)
		columns := append([]string(nil), m.columns...)
		m.loading = true
		m.setStatus("Deleting row...")
		return m, deleteCmd(m.lib, m.selectedTable, columns, row)
	case "n", "N", "esc":
		m.mode = modeRows
		m.setStatus("Delete cancelled.")
	}
	return m, nil
}

// --- reports ---

func (m Model) updateReportsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "b", "esc":
		m.mode = modeTables
		m.setStatus("Use ↑/↓ and Enter to open a table, 'r' for reports.")
	case "up", "k":
		if m.reportCursor > 0 {
			m.reportCursor--
		}
	case "down", "j":
		if m.reportCursor < len(m.reportList)-1 {
			m.reportCursor++
		}
	case "enter":
		if len(m.reportList) == 0 {
			return m, nil
		}
		rep := m.reportList[m.reportCursor]
		if rep.NeedsParam() {
			m.mode = modeReportParam
			m.reportInput.SetValue("")
			m.reportInput.Placeholder = rep.Param
			m.setStatus("Enter " + rep.Param + " and press Enter. Esc cancels.")
			return m, m.reportInput.Focus()
		}
		m.loading = true
		m.setStatus("Running " + rep.Label + "...")
		return m, runReportCmd(m.lib, m.reportCursor, nil)
	}
	return m, nil
}

func (m Model) updateReportParamKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.reportInput.Blur()
		m.mode = modeReports
		m.setStatus("Report cancelled.")
		return m, nil
	case "enter":
		param := strings.TrimSpace(m.reportInput.Value())
		if param == "" {
			m.setStatus("A value is required.")
			return m, nil
		}
		m.reportInput.Blur()
		m.loading = true
		m.setStatus("Running " + m.reportList[m.reportCursor].Label + "...")
		return m, runReportCmd(m.lib, m.reportCursor, &param)
	}

	var cmd tea.Cmd
	m.reportInput, cmd = m.reportInput.Update(msg)
	return m, cmd
}

func (m Model) updateReportResultKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "b", "esc":
		m.mode = modeReports
		m.horizOffset = 0
		m.setStatus("Use ↑/↓ and Enter to run a report, 'b' to go back.")
	case "left", "h":
		m.horizOffset = max(m.horizOffset-4, 0)
	case "right", "l":
		m.horizOffset += 4
	}
	return m, nil
}

// ----- Focus handling for forms -----

func focusOnly(inputs []textinput.Model, index int) []tea.Cmd {
	var cmds []tea.Cmd
	for i := range inputs {
		if i == index {
			cmds = append(cmds, inputs[i].Focus())
			continue
		}
		inputs[i].Blur()
	}
	return cmds
}
