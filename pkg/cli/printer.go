package cli

import (
	"cmp"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/elex-project/dokkaebi/pkg/protocol"
	"github.com/elex-project/dokkaebi/pkg/tracker"
)

// fieldNames gives the human name of the fields the tracker sends.
var fieldNames = map[string]string{
	protocol.FieldVersion:              "protocol version",
	protocol.FieldTrackingID:           "tracking id",
	protocol.FieldClientID:             "client id",
	protocol.FieldDataSource:           "data source",
	protocol.FieldCacheBuster:          "cache buster",
	protocol.FieldHitType:              "hit type",
	protocol.FieldSessionControl:       "session control",
	protocol.FieldScreenResolution:     "screen resolution",
	protocol.FieldViewportSize:         "viewport size",
	protocol.FieldUserLanguage:         "user language",
	protocol.FieldAppName:              "app name",
	protocol.FieldAppVersion:           "app version",
	protocol.FieldAppID:                "app id",
	protocol.FieldAppInstallerID:       "app installer id",
	protocol.FieldScreenName:           "screen name",
	protocol.FieldEventCategory:        "event category",
	protocol.FieldEventAction:          "event action",
	protocol.FieldEventLabel:           "event label",
	protocol.FieldEventValue:           "event value",
	protocol.FieldTimingCategory:       "timing category",
	protocol.FieldTimingVariable:       "timing variable",
	protocol.FieldTimingTime:           "timing (ms)",
	protocol.FieldTimingLabel:          "timing label",
	protocol.FieldExceptionDescription: "exception",
	protocol.FieldExceptionFatal:       "fatal",
	protocol.FieldOSName:               "os name",
	protocol.FieldOSVersion:            "os version",
	protocol.FieldRuntimeName:          "runtime",
	protocol.FieldRuntimeVersion:       "runtime version",
	protocol.FieldRuntimeFeature:       "runtime feature version",
}

type Printer struct {
	out io.Writer

	bold   *color.Color
	faint  *color.Color
	red    *color.Color
	yellow *color.Color
	cyan   *color.Color
	green  *color.Color
}

// NewPrinter returns a printer writing to out. Output is colored when out is
// a terminal and NO_COLOR is unset.
func NewPrinter(out io.Writer) *Printer {
	return newPrinter(out, colorEnabled(out))
}

func newPrinter(out io.Writer, colored bool) *Printer {
	style := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}

	return &Printer{
		out:    out,
		bold:   style(color.Bold),
		faint:  style(color.Faint),
		red:    style(color.FgRed, color.Bold),
		yellow: style(color.FgYellow),
		cyan:   style(color.FgCyan),
		green:  style(color.FgGreen),
	}
}

func colorEnabled(out io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := out.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (p *Printer) Println(a ...any) {
	fmt.Fprintln(p.out, a...)
}

func (p *Printer) Print(a ...any) {
	fmt.Fprint(p.out, a...)
}

func (p *Printer) Printf(format string, a ...any) {
	fmt.Fprintf(p.out, format, a...)
}

// PrintError prints an error message
func (p *Printer) PrintError(err error) {
	p.Printf("%s %s\n", p.red.Sprint("error:"), err)
}

// PrintHit prints every field of a hit, one per line, in encoding order.
func (p *Printer) PrintHit(hit protocol.Hit) {
	p.Printf("--- %s ---\n", p.bold.Sprint(cmp.Or(string(hit.Type()), "hit")))

	keys := hit.Keys()
	width := 0
	for _, key := range keys {
		width = max(width, len(key))
	}

	for _, key := range keys {
		line := fmt.Sprintf("%-*s = %s", width, key, hit[key])
		if name, ok := fieldNames[key]; ok {
			line += "  " + p.faint.Sprint("# "+name)
		}
		p.Println(line)
	}
}

// PrintProblems prints validation findings, or a confirmation when there
// are none.
func (p *Printer) PrintProblems(problems []protocol.Problem) {
	if len(problems) == 0 {
		p.Println(p.green.Sprint("valid"))
		return
	}
	for _, problem := range problems {
		p.Printf("%s %s\n", p.severity(problem.Severity), formatProblem(problem))
	}
}

// PrintResult prints the outcome of a delivery.
func (p *Printer) PrintResult(res tracker.Result) {
	hitType := cmp.Or(string(res.HitType), "hit")
	if res.Err != nil {
		p.Printf("%s %s not delivered: %s\n", p.red.Sprint("✗"), hitType, res.Err)
		return
	}
	p.Printf("%s %s delivered (%d, %s)\n", p.green.Sprint("✓"), hitType, res.StatusCode, res.Duration.Round(time.Millisecond))
}

func (p *Printer) severity(s protocol.Severity) string {
	label := fmt.Sprintf("%-5s", s)
	switch s {
	case protocol.SeverityError:
		return p.red.Sprint(label)
	case protocol.SeverityWarn:
		return p.yellow.Sprint(label)
	default:
		return p.cyan.Sprint(label)
	}
}

func formatProblem(problem protocol.Problem) string {
	if problem.Parameter == "" {
		return problem.Description
	}
	return fmt.Sprintf("[%s] %s", problem.Parameter, strings.TrimSpace(problem.Description))
}
