package console

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/npillmayer/pst"
	"github.com/npillmayer/uax/grapheme"
	"github.com/npillmayer/uax/uax11"
	"golang.org/x/term"
)

// Absent is printed for cells without a value.
const Absent = "·"

// Elided is appended to rows which do not fit into the line width.
const Elided = "…"

// Palette holds the colors used to visualize cell states. Nil colors print
// plain text.
type Palette struct {
	Changed *color.Color // cell modified by the row's version
	Absent  *color.Color // cell without a value
	Header  *color.Color // index and version labels
}

// DefaultPalette returns the palette used if a Config does not name one.
func DefaultPalette() *Palette {
	return &Palette{
		Changed: color.New(color.FgRed, color.Bold),
		Absent:  color.New(color.FgHiBlack),
		Header:  color.New(color.FgBlue),
	}
}

// Config configures the output of a version table.
type Config struct {
	LineWidth int            // maximum width of a row in ens; 0 means unlimited
	Context   *uax11.Context // context for character widths; default is Latin
	Palette   *Palette       // colors, default is DefaultPalette()
	// Format converts a value to its display string. If nil, fmt.Sprint is used.
	Format func(v any) string
	// Versions selects the versions to print, in the given order. If empty,
	// all versions are printed.
	Versions []int
}

var setupGraphemes sync.Once

// width returns the display width of s in ens.
func width(s string, context *uax11.Context) int {
	if s == "" {
		return 0
	}
	setupGraphemes.Do(grapheme.SetupGraphemeClasses)
	return uax11.StringWidth(grapheme.StringFromString(s), context)
}

// Print outputs the version table of tree to stdout.
//
// If parameter config is nil,
// a heuristic will create a config from the current terminal's properties (if
// stdout is interactive).
func Print[T any](tree *pst.Tree[T], config *Config) error {
	if config == nil {
		config = ConfigFromTerminal()
	}
	return Table(tree, os.Stdout, config)
}

// Table writes the version table of tree to w.
func Table[T any](tree *pst.Tree[T], w io.Writer, config *Config) error {
	if tree == nil || w == nil {
		return pst.ErrIllegalArguments
	}
	config = normalized(config)
	left, right := tree.Range()
	versions := config.Versions
	if len(versions) == 0 {
		versions = make([]int, tree.Versions())
		for v := range versions {
			versions[v] = v
		}
	}
	grid, err := collect(tree, versions, config)
	if err != nil {
		return err
	}
	// compute column widths, column 0 holds version labels
	widths := make([]int, right-left+1)
	widths[0] = width("v"+strconv.Itoa(tree.Latest()), config.Context)
	for c := range right - left {
		widths[c+1] = width(strconv.Itoa(left+c), config.Context)
		for _, row := range grid {
			widths[c+1] = max(widths[c+1], width(row.cells[c], config.Context))
		}
	}
	ncols := fitting(widths, config.LineWidth)
	tracer().Debugf("console: printing %d of %d columns for %d versions", ncols-1, len(widths)-1, len(grid))
	// header line
	var b strings.Builder
	cell(&b, "", widths[0], nil, config)
	for c := 1; c < ncols; c++ {
		b.WriteByte(' ')
		cell(&b, strconv.Itoa(left+c-1), widths[c], config.Palette.Header, config)
	}
	endRow(&b, ncols < len(widths))
	for _, row := range grid {
		cell(&b, "v"+strconv.Itoa(row.version), widths[0], config.Palette.Header, config)
		for c := 1; c < ncols; c++ {
			b.WriteByte(' ')
			var colour *color.Color
			switch {
			case !row.present[c-1]:
				colour = config.Palette.Absent
			case row.changed == c-1:
				colour = config.Palette.Changed
			}
			cell(&b, row.cells[c-1], widths[c], colour, config)
		}
		endRow(&b, ncols < len(widths))
	}
	_, err = io.WriteString(w, b.String())
	return err
}

type tableRow struct {
	version int
	changed int // column modified by version, -1 if none
	cells   []string
	present []bool
}

func collect[T any](tree *pst.Tree[T], versions []int, config *Config) ([]tableRow, error) {
	left, right := tree.Range()
	rows := make([]tableRow, 0, len(versions))
	for _, v := range versions {
		snap, err := tree.Snapshot(v)
		if err != nil {
			return nil, err
		}
		row := tableRow{
			version: snap.Version(),
			changed: -1,
			cells:   make([]string, right-left),
			present: make([]bool, right-left),
		}
		for c := range row.cells {
			row.cells[c] = Absent
		}
		for pos, value := range snap.All() {
			row.cells[pos-left] = config.Format(value)
			row.present[pos-left] = true
		}
		if pos, ok, _ := tree.Modified(snap.Version()); ok {
			row.changed = pos - left
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// fitting returns the number of columns (including the label column) which
// fit into linewidth. If columns have to be elided, room for the elision
// mark is reserved.
func fitting(widths []int, linewidth int) int {
	if linewidth <= 0 {
		return len(widths)
	}
	total := widths[0]
	for c := 1; c < len(widths); c++ {
		total += 1 + widths[c]
	}
	if total <= linewidth {
		return len(widths)
	}
	total = widths[0]
	for c := 1; c < len(widths); c++ {
		if total+1+widths[c]+2 > linewidth { // leave room for " …"
			return c
		}
		total += 1 + widths[c]
	}
	return len(widths)
}

// cell right-aligns s within w ens.
func cell(b *strings.Builder, s string, w int, colour *color.Color, config *Config) {
	if pad := w - width(s, config.Context); pad > 0 {
		b.WriteString(strings.Repeat(" ", pad))
	}
	if colour == nil {
		b.WriteString(s)
		return
	}
	colour.Fprint(b, s)
}

func endRow(b *strings.Builder, elided bool) {
	if elided {
		b.WriteString(" " + Elided)
	}
	b.WriteByte('\n')
}

func normalized(config *Config) *Config {
	c := Config{}
	if config != nil {
		c = *config
	}
	if c.Context == nil {
		c.Context = uax11.LatinContext
	}
	if c.Palette == nil {
		c.Palette = DefaultPalette()
	}
	if c.Format == nil {
		c.Format = func(v any) string { return fmt.Sprint(v) }
	}
	return &c
}

// --- Config for terminals --------------------------------------------------

// ConfigFromTerminal is a simple helper for creating a table Config.
// It checks whether stdout is a terminal, and if so it reads the terminal's width
// and sets the Config.LineWidth parameter accordingly. Config.Context is
// created based on heuristics from the user environment.
func ConfigFromTerminal() *Config {
	config := &Config{
		Context: uax11.ContextFromEnvironment(),
	}
	if fd := int(os.Stdout.Fd()); term.IsTerminal(fd) {
		w, _, err := term.GetSize(fd)
		if err != nil || w < 20 {
			config.LineWidth = 80
		} else {
			config.LineWidth = w
		}
	}
	tracer().P("format", "console").Infof("setting line length to %d en", config.LineWidth)
	return config
}
