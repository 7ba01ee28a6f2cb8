package dashboard

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"golang.org/x/term"

	"github.com/smartdevs17/steelflow-monitor/internal/models"
)

const (
	defaultWidth = 80
	maxPathWidth = 48
	noData       = "Sem dados"
)

// variantColors are all the same length so tabwriter columns stay aligned
var variantColors = map[Variant]string{
	VariantDefault:     "\033[01m",
	VariantDestructive: "\033[31m",
	VariantSecondary:   "\033[02m",
	VariantOutline:     "\033[04m",
	VariantSuccess:     "\033[32m",
}

// View is everything one refresh of the dashboard shows.
// Sections fail independently.
type View struct {
	Snapshot    *models.MetricSnapshot
	SnapshotErr error
	Logs        []models.LogEntry
	LogsErr     error
	Summary     []models.EventSummaryRow
	SummaryErr  error
	Filter      string
	FetchedAt   time.Time
}

// Renderer draws a View as text
type Renderer struct {
	out         io.Writer
	loc         *time.Location
	width       int
	interactive bool
}

// NewRenderer creates a renderer writing to out. Terminal output gets colors,
// a cleared screen and bars sized to the terminal width.
func NewRenderer(out io.Writer, loc *time.Location) *Renderer {
	r := &Renderer{out: out, loc: loc, width: defaultWidth}

	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		r.interactive = true
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			r.width = w
		}
	}
	return r
}

// Render writes the whole dashboard
func (r *Renderer) Render(v View) error {
	w := bufio.NewWriter(r.out)

	if r.interactive {
		fmt.Fprint(w, "\033[H\033[2J")
	}
	fmt.Fprintf(w, "SteelFlow Monitor  %s\n\n", FormatTimestamp(v.FetchedAt, r.loc))

	r.renderMetrics(w, v)
	r.renderSummary(w, v)
	r.renderEvents(w, v)

	return w.Flush()
}

func (r *Renderer) renderMetrics(w io.Writer, v View) {
	if v.SnapshotErr != nil {
		fmt.Fprintf(w, "Métricas indisponíveis: %v\n\n", v.SnapshotErr)
		return
	}
	s := v.Snapshot
	if s == nil {
		fmt.Fprintf(w, "Carregando métricas...\n\n")
		return
	}

	last := noData
	if s.LastSensitiveAccess != nil {
		last = FormatTimestamp(*s.LastSensitiveAccess, r.loc)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "Métricas Principais")
	r.metricLine(tw, "Total de Arquivos", FormatNumber(s.TotalFiles), s.TotalFilesChange)
	r.metricLine(tw, "Total de Diretórios", FormatNumber(s.TotalDirectories), s.TotalDirectoriesChange)
	r.metricLine(tw, "Último Acesso Sensível", last, 0)
	fmt.Fprintln(tw, "\t\t")
	fmt.Fprintln(tw, "Segurança e Armazenamento")
	r.metricLine(tw, "Acessos Sensíveis", FormatNumber(s.SensitiveAccesses), s.SensitiveAccessesChange)
	r.metricLine(tw, "Total em Armazenamento", FormatBytes(s.TotalStorage, 2), s.TotalStorageChange)
	tw.Flush()
	fmt.Fprintln(w)
}

func (r *Renderer) metricLine(w io.Writer, title, value string, change int64) {
	text, variant, ok := FormatChange(change)
	if ok {
		text = r.paint(variant, text)
	}
	fmt.Fprintf(w, "  %s\t%s\t%s\n", title, value, text)
}

func (r *Renderer) renderSummary(w io.Writer, v View) {
	fmt.Fprintln(w, "Resumo de Ações")
	if v.SummaryErr != nil {
		fmt.Fprintf(w, "  indisponível: %v\n\n", v.SummaryErr)
		return
	}
	if v.Snapshot != nil {
		fmt.Fprintf(w, "  %s eventos registrados\n", FormatNumber(v.Snapshot.TotalEvents))
	}

	barWidth := r.width - 48
	if barWidth > 40 {
		barWidth = 40
	}
	if barWidth < 10 {
		barWidth = 10
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, row := range v.Summary {
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n",
			row.Event.String(),
			FormatPercentage(row.Percentage),
			Bar(row.Percentage, barWidth),
			FormatNumber(row.Count))
	}
	tw.Flush()
	fmt.Fprintln(w)
}

func (r *Renderer) renderEvents(w io.Writer, v View) {
	if v.LogsErr != nil {
		fmt.Fprintf(w, "Eventos Recentes indisponíveis: %v\n", v.LogsErr)
		return
	}

	logs := FilterLogs(v.Logs, v.Filter)
	header := fmt.Sprintf("Eventos Recentes  %d eventos", len(logs))
	if v.Filter != "" {
		header += fmt.Sprintf("  (filtro: %q)", v.Filter)
	}
	fmt.Fprintln(w, header)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTimestamp\tEvento\tCaminho\tRoot Path\tUsuário")
	for _, entry := range logs {
		fmt.Fprintf(tw, "#%d\t%s\t%s\t%s\t%s\t%s\n",
			entry.ID,
			FormatTimestamp(entry.Timestamp, r.loc),
			r.paint(BadgeVariant(entry.Event), entry.Event.String()),
			truncate(entry.Path, maxPathWidth),
			truncate(entry.RootPath, maxPathWidth),
			entry.UserName)
	}
	tw.Flush()
}

func (r *Renderer) paint(variant Variant, text string) string {
	if !r.interactive {
		return text
	}
	color, ok := variantColors[variant]
	if !ok {
		return text
	}
	return color + text + "\033[0m"
}

// Bar draws a percentage as a fixed-width bar
func Bar(percentage float64, width int) string {
	filled := int(math.Round(percentage / 100 * float64(width)))
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
