package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"mtasks/internal/application/dto"
)

// Printer provides methods for formatted console output
type Printer struct {
	writer io.Writer
	styles *Styles
	quiet  bool
}

// Styles holds lipgloss styles for console output
type Styles struct {
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style
	Header  lipgloss.Style
	Subtle  lipgloss.Style
	Bold    lipgloss.Style
	Done    lipgloss.Style
	Overdue lipgloss.Style
}

// NewPrinter creates a new console printer
func NewPrinter(writer io.Writer) *Printer {
	return &Printer{
		writer: writer,
		styles: &Styles{
			Success: lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
			Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
			Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
			Info:    lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true),
			Header:  lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true).Underline(true),
			Subtle:  lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
			Bold:    lipgloss.NewStyle().Bold(true),
			Done:    lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Strikethrough(true),
			Overdue: lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		},
	}
}

// SetQuiet suppresses Info and Subtle output
func (p *Printer) SetQuiet(quiet bool) {
	p.quiet = quiet
}

// Success prints a success message
func (p *Printer) Success(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(p.writer, p.styles.Success.Render("✓ "+msg))
}

// Error prints an error message
func (p *Printer) Error(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(p.writer, p.styles.Error.Render("✗ "+msg))
}

// Warning prints a warning message
func (p *Printer) Warning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(p.writer, p.styles.Warning.Render("⚠ "+msg))
}

// Info prints an info message
func (p *Printer) Info(format string, args ...any) {
	if p.quiet {
		return
	}
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(p.writer, p.styles.Info.Render("ℹ "+msg))
}

// Header prints a header message
func (p *Printer) Header(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(p.writer, p.styles.Header.Render(msg))
}

// Println prints a normal message
func (p *Printer) Println(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(p.writer, msg)
}

// Subtle prints a subtle/dimmed message
func (p *Printer) Subtle(format string, args ...any) {
	if p.quiet {
		return
	}
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(p.writer, p.styles.Subtle.Render(msg))
}

// Bold prints a bold message
func (p *Printer) Bold(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(p.writer, p.styles.Bold.Render(msg))
}

// Task prints a one-line task summary: checkbox, priority dot, title and
// due date
func (p *Printer) Task(task dto.TaskDTO) {
	fmt.Fprintln(p.writer, p.TaskLine(task))
}

// TaskLine renders a one-line task summary
func (p *Printer) TaskLine(task dto.TaskDTO) string {
	check := "[ ]"
	title := task.Title
	if task.Completed {
		check = "[x]"
		title = p.styles.Done.Render(title)
	}
	dot := lipgloss.NewStyle().Foreground(lipgloss.Color(task.PriorityColor)).Render("●")

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s %s", check, dot, p.styles.Subtle.Render(ShortID(task.ID)), title)
	if task.DueDate != nil {
		due := "due " + task.DueDate.Format("2006-01-02")
		if task.IsOverdue {
			due = p.styles.Overdue.Render(due + " (overdue)")
		} else {
			due = p.styles.Subtle.Render(due)
		}
		b.WriteString("  " + due)
	}
	if n := len(task.SubTasks); n > 0 {
		done := 0
		for _, st := range task.SubTasks {
			if st.Completed {
				done++
			}
		}
		b.WriteString(p.styles.Subtle.Render(fmt.Sprintf("  %d/%d", done, n)))
	}
	return b.String()
}

// Table prints a simple table
func (p *Printer) Table(headers []string, rows [][]string) {
	if len(headers) == 0 || len(rows) == 0 {
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}

	headerParts := make([]string, len(headers))
	for i, h := range headers {
		headerParts[i] = p.styles.Bold.Render(padRight(h, widths[i]))
	}
	fmt.Fprintln(p.writer, strings.Join(headerParts, "  "))

	separatorParts := make([]string, len(headers))
	for i, w := range widths {
		separatorParts[i] = strings.Repeat("-", w)
	}
	fmt.Fprintln(p.writer, p.styles.Subtle.Render(strings.Join(separatorParts, "  ")))

	for _, row := range rows {
		rowParts := make([]string, len(headers))
		for i := range headers {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			rowParts[i] = padRight(cell, widths[i])
		}
		fmt.Fprintln(p.writer, strings.Join(rowParts, "  "))
	}
}

// ShortID returns the trailing eight characters of a task ID. Time-ordered
// IDs share their prefix, so the tail is what tells them apart.
func ShortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[len(id)-8:]
}

func padRight(s string, width int) string {
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

// DefaultPrinter returns a printer that writes to stdout
func DefaultPrinter() *Printer {
	return NewPrinter(os.Stdout)
}

// ErrorPrinter returns a printer that writes to stderr
func ErrorPrinter() *Printer {
	return NewPrinter(os.Stderr)
}
