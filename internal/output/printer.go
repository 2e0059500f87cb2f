// Package output renders CLI results with lipgloss.
//
// [Printer] writes to an injectable writer so commands can be tested against
// a buffer. Styling follows the terminal: when the writer is not a terminal
// (or color is disabled) the output is plain text.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"confradar/internal/scheduling"
	"confradar/internal/steps"
	"confradar/internal/timeslot"
	"confradar/internal/wizard"
)

// Printer writes styled command output.
type Printer struct {
	w     io.Writer
	color bool
	st    styles
}

// NewPrinter creates a Printer writing to stdout.
func NewPrinter() *Printer {
	return NewPrinterWithWriter(os.Stdout)
}

// NewPrinterWithWriter creates a Printer writing to w.
func NewPrinterWithWriter(w io.Writer) *Printer {
	return &Printer{
		w:     w,
		color: true,
		st:    newStyles(lipgloss.NewRenderer(w)),
	}
}

// SetColor enables or disables styling.
func (p *Printer) SetColor(enabled bool) {
	p.color = enabled
}

func (p *Printer) render(s lipgloss.Style, text string) string {
	if !p.color {
		return text
	}
	return s.Render(text)
}

func (p *Printer) line(format string, args ...any) {
	fmt.Fprintf(p.w, format+"\n", args...)
}

// Success prints a confirmation.
func (p *Printer) Success(msg string) {
	p.line("%s %s", p.render(p.st.completed, iconCompleted), msg)
}

// Error prints a failure.
func (p *Printer) Error(msg string) {
	p.line("%s %s", p.render(p.st.danger, "error:"), msg)
}

// Warning prints something the author should look at.
func (p *Printer) Warning(msg string) {
	p.line("%s %s", p.render(p.st.warning, iconWarning), msg)
}

// Info prints a de-emphasized note.
func (p *Printer) Info(msg string) {
	p.line("%s", p.render(p.st.muted, msg))
}

// Title prints a heading.
func (p *Printer) Title(msg string) {
	p.line("%s", p.render(p.st.title, msg))
}

// StepList prints the steps of a track with their optional and skippable
// markers.
func (p *Printer) StepList(track steps.Track, list []steps.Step) {
	p.Title(fmt.Sprintf("%s track (%d steps)", track, len(list)))
	for _, st := range list {
		var marks []string
		if st.Optional {
			marks = append(marks, "optional")
		}
		if st.Skippable {
			marks = append(marks, "skippable")
		}
		suffix := ""
		if len(marks) > 0 {
			suffix = " " + p.render(p.st.muted, "("+strings.Join(marks, ", ")+")")
		}
		p.line("  %d. %-18s %s%s", st.Index, st.Label, p.render(p.st.muted, st.Key), suffix)
	}
}

// StepIndicator prints one line per step with its visual state.
func (p *Printer) StepIndicator(s wizard.Session) {
	visuals := s.Indicator()
	for i, st := range s.Steps() {
		v := visuals[i]
		icon, style := p.statusIcon(v.Status)

		label := st.Label
		if st.Optional {
			label += " (optional)"
		}
		line := fmt.Sprintf("  %s %d. %s", p.render(style, icon), st.Index, p.render(style, label))
		if v.Unsaved {
			line += " " + p.render(p.st.dirty, iconUnsaved+" unsaved")
		}
		p.line("%s", line)
	}

	mode := fmt.Sprintf("%s mode, step %d of %d", s.Mode(), s.CurrentStep(), s.LastStep())
	if s.Mode() == wizard.ModeCreate {
		mode += fmt.Sprintf(", reached %d", s.MaxStepReached())
	}
	p.Info(mode)
}

func (p *Printer) statusIcon(status wizard.Status) (string, lipgloss.Style) {
	switch status {
	case wizard.StatusCurrent:
		return iconCurrent, p.st.current
	case wizard.StatusCompleted:
		return iconCompleted, p.st.completed
	case wizard.StatusDirty:
		return iconDirty, p.st.dirty
	default:
		return iconEmpty, p.st.empty
	}
}

// Progress reports a step save within a batch update.
func (p *Printer) Progress(n, total int, st steps.Step) {
	p.line("%s saving %s", p.render(p.st.muted, fmt.Sprintf("[%d/%d]", n, total)), st.Label)
}

// Placement prints the outcome of a placement check.
func (p *Printer) Placement(res scheduling.Result) {
	s := res.Placement.Session
	desc := fmt.Sprintf("room %s on %s %s (%d min)", s.RoomID, s.Date, s.Interval, s.Minutes())
	if res.Accepted {
		p.Success("placement accepted: " + desc)
		return
	}

	p.line("%s placement rejected: %s", p.render(p.st.danger, iconFailed), desc)
	for _, reason := range res.Reasons {
		p.line("    - %s", reason)
	}
}

// Sessions prints the bookings of a room.
func (p *Printer) Sessions(room string, list []timeslot.Session) {
	p.Title(fmt.Sprintf("room %s (%d bookings)", room, len(list)))
	if len(list) == 0 {
		p.Info("  no bookings")
		return
	}
	for _, s := range list {
		p.line("  %s  %s  %4d min  %s", s.Date, s.Interval, s.Minutes(), p.render(p.st.muted, s.ID))
	}
}
