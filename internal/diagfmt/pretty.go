package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"modbind/internal/diag"
	"modbind/internal/source"
)

const tabWidth = 4

type palette struct {
	err, warn, info *color.Color
	code, path      *color.Color
	gutter, caret   *color.Color
	note, fix       *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan, color.Bold),
		code:   color.New(color.Bold),
		path:   color.New(color.FgWhite, color.Bold),
		gutter: color.New(color.FgBlue),
		caret:  color.New(color.FgRed, color.Bold),
		note:   color.New(color.FgCyan),
		fix:    color.New(color.FgGreen),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.code, p.path, p.gutter, p.caret, p.note, p.fix} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем контекст строки с подчёркиванием ^~~~ по Span, затем Notes и Fixes.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	if bag == nil {
		return
	}
	pr := prettyPrinter{w: w, fs: fs, opts: opts, pal: newPalette(opts.Color)}
	for i, d := range bag.Items() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		pr.diagnostic(&d)
	}
}

type prettyPrinter struct {
	w    io.Writer
	fs   *source.FileSet
	opts PrettyOpts
	pal  palette
}

func (p *prettyPrinter) diagnostic(d *diag.Diagnostic) {
	sev := p.pal.severity(d.Severity)
	fmt.Fprintf(p.w, "%s: %s %s: %s\n",
		p.pal.path.Sprint(p.location(d.Primary)),
		sev.Sprint(d.Severity.String()),
		p.pal.code.Sprint(d.Code.ID()),
		d.Message,
	)
	p.snippet(d.Primary, sev)

	if p.opts.ShowNotes {
		for _, n := range d.Notes {
			fmt.Fprintf(p.w, "  %s %s: %s\n", p.pal.note.Sprint("note:"), p.location(n.Span), n.Msg)
			p.snippet(n.Span, p.pal.note)
		}
	}
	if p.opts.ShowFixes {
		for _, fix := range d.Fixes {
			fmt.Fprintf(p.w, "  %s %s\n", p.pal.fix.Sprint("fix:"), fix.Title)
			if !p.opts.ShowPreview {
				continue
			}
			for _, edit := range fix.Edits {
				preview, err := buildFixEditPreview(p.fs, edit)
				if err != nil {
					continue
				}
				for _, line := range preview.before {
					fmt.Fprintf(p.w, "    %s %s\n", p.pal.caret.Sprint("-"), expandTabs(line))
				}
				for _, line := range preview.after {
					fmt.Fprintf(p.w, "    %s %s\n", p.pal.fix.Sprint("+"), expandTabs(line))
				}
			}
		}
	}
}

func (p *prettyPrinter) location(span source.Span) string {
	if p.fs == nil {
		return "<unknown>"
	}
	f := p.fs.Get(span.File)
	if f == nil {
		return "<unknown>"
	}
	start, _ := p.fs.Resolve(span)
	return fmt.Sprintf("%s:%d:%d", f.FormatPath(p.opts.PathMode.mode(), p.fs.BaseDir()), start.Line, start.Col)
}

// snippet prints the primary line plus Context lines around it and marks the span.
func (p *prettyPrinter) snippet(span source.Span, mark *color.Color) {
	if p.fs == nil {
		return
	}
	f := p.fs.Get(span.File)
	if f == nil || len(f.Content) == 0 {
		return
	}
	start, end := p.fs.Resolve(span)
	if start.Line == 0 {
		return
	}
	ctx := uint32(max(p.opts.Context, 0))
	first := start.Line - min(ctx, start.Line-1)
	last := start.Line + ctx
	if total := uint32(len(f.LineIdx)) + 1; last > total {
		last = total
	}
	gw := len(strconv.FormatUint(uint64(last), 10))
	blank := strings.Repeat(" ", gw)

	fmt.Fprintf(p.w, "%s %s\n", blank, p.pal.gutter.Sprint("|"))
	for ln := first; ln <= last; ln++ {
		text := f.GetLine(ln)
		if ln != start.Line && strings.TrimSpace(text) == "" {
			continue
		}
		fmt.Fprintf(p.w, "%s %s %s\n", p.pal.gutter.Sprintf("%*d", gw, ln), p.pal.gutter.Sprint("|"), expandTabs(text))
		if ln != start.Line {
			continue
		}
		pad, width := underline(text, start.Col, end, start.Line)
		fmt.Fprintf(p.w, "%s %s %s%s\n", blank, p.pal.gutter.Sprint("|"), strings.Repeat(" ", pad),
			mark.Sprint("^"+strings.Repeat("~", width-1)))
	}
}

// underline returns the display column and width of the marker for a span
// starting at col on line. Spans crossing lines are marked to end of line.
func underline(line string, col uint32, end source.LineCol, startLine uint32) (pad, width int) {
	from := min(int(col)-1, len(line))
	from = max(from, 0)
	to := len(line)
	if end.Line == startLine {
		to = min(max(int(end.Col)-1, from), len(line))
	}
	pad = displayWidth(line[:from])
	width = displayWidth(line[from:to])
	if width < 1 {
		width = 1
	}
	return pad, width
}

func displayWidth(s string) int {
	return runewidth.StringWidth(expandTabs(s))
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}
