// Package dashboard renders metrics and audit events for a terminal and keeps them fresh.
package dashboard

import (
	"math"
	"strconv"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/smartdevs17/steelflow-monitor/internal/models"
)

var byteUnits = []string{"Bytes", "KB", "MB", "GB", "TB"}

// locale drives number grouping and is the language of the rendered labels
var locale = language.BrazilianPortuguese

// timestampLayout is dd/mm/yyyy hh:mm:ss
const timestampLayout = "02/01/2006 15:04:05"

// FormatBytes renders a size with a 1024-based unit and at most decimals
// fractional digits; trailing zeros are dropped.
func FormatBytes(bytes int64, decimals int) string {
	if bytes == 0 {
		return "0 Bytes"
	}
	if bytes < 0 {
		return "-" + FormatBytes(-bytes, decimals)
	}
	if decimals < 0 {
		decimals = 0
	}

	i := 0
	for v := bytes; v >= 1024 && i < len(byteUnits)-1; v /= 1024 {
		i++
	}

	scale := math.Pow(10, float64(decimals))
	value := math.Round(float64(bytes)/math.Pow(1024, float64(i))*scale) / scale

	return strconv.FormatFloat(value, 'f', -1, 64) + " " + byteUnits[i]
}

// FormatNumber groups digits the pt-BR way, e.g. 1.234.567
func FormatNumber(n int64) string {
	return message.NewPrinter(locale).Sprintf("%d", n)
}

// FormatPercentage renders a summary share such as 57.1%
func FormatPercentage(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64) + "%"
}

// FormatTimestamp renders t in loc as dd/mm/yyyy hh:mm:ss
func FormatTimestamp(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(timestampLayout)
}

// Variant is the visual weight given to a badge
type Variant string

const (
	VariantDefault     Variant = "default"
	VariantSecondary   Variant = "secondary"
	VariantDestructive Variant = "destructive"
	VariantOutline     Variant = "outline"
	VariantSuccess     Variant = "success"
)

// BadgeVariant picks the badge style for an event kind
func BadgeVariant(kind models.EventKind) Variant {
	switch kind.Tag {
	case models.EventCreated:
		return VariantDefault
	case models.EventDeleted:
		return VariantDestructive
	case models.EventModified:
		return VariantSecondary
	case models.EventRenamed:
		return VariantOutline
	default:
		return VariantSecondary
	}
}

// FormatChange renders a percentage change. Zero is not shown.
// Growth is flagged destructive and shrinkage success.
func FormatChange(change int64) (string, Variant, bool) {
	switch {
	case change > 0:
		return "+" + strconv.FormatInt(change, 10) + "%", VariantDestructive, true
	case change < 0:
		return strconv.FormatInt(change, 10) + "%", VariantSuccess, true
	default:
		return "", "", false
	}
}
