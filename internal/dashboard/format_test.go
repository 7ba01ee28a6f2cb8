package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/smartdevs17/steelflow-monitor/internal/models"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes    int64
		decimals int
		want     string
	}{
		{bytes: 0, decimals: 2, want: "0 Bytes"},
		{bytes: 1, decimals: 2, want: "1 Bytes"},
		{bytes: 1023, decimals: 2, want: "1023 Bytes"},
		{bytes: 1024, decimals: 2, want: "1 KB"},
		{bytes: 1536, decimals: 2, want: "1.5 KB"},
		{bytes: 1048576, decimals: 2, want: "1 MB"},
		{bytes: 21243707392, decimals: 2, want: "19.78 GB"},
		{bytes: 21243707392, decimals: 0, want: "20 GB"},
		{bytes: 21243707392, decimals: -1, want: "20 GB"},
		{bytes: 5 * 1024 * 1024 * 1024 * 1024, decimals: 2, want: "5 TB"},
		{bytes: 3 * 1024 * 1024 * 1024 * 1024 * 1024, decimals: 2, want: "3072 TB"},
		{bytes: -2048, decimals: 2, want: "-2 KB"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatBytes(tt.bytes, tt.decimals), "%d/%d", tt.bytes, tt.decimals)
	}
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "0", FormatNumber(0))
	assert.Equal(t, "999", FormatNumber(999))
	assert.Equal(t, "1.234", FormatNumber(1234))
	assert.Equal(t, "1.234.567", FormatNumber(1234567))
	assert.Equal(t, "-1.234", FormatNumber(-1234))
}

func TestFormatTimestamp(t *testing.T) {
	ts := time.Date(2026, 10, 16, 15, 4, 5, 0, time.UTC)
	brt := time.FixedZone("BRT", -3*3600)

	assert.Equal(t, "16/10/2026 12:04:05", FormatTimestamp(ts, brt))
	assert.Equal(t, "16/10/2026 15:04:05", FormatTimestamp(ts, nil))
}

func TestFormatChange(t *testing.T) {
	text, variant, ok := FormatChange(12)
	assert.True(t, ok)
	assert.Equal(t, "+12%", text)
	assert.Equal(t, VariantDestructive, variant)

	text, variant, ok = FormatChange(-7)
	assert.True(t, ok)
	assert.Equal(t, "-7%", text)
	assert.Equal(t, VariantSuccess, variant)

	_, _, ok = FormatChange(0)
	assert.False(t, ok)
}

func TestBadgeVariant(t *testing.T) {
	tests := map[string]Variant{
		"Criado":    VariantDefault,
		"Deletado":  VariantDestructive,
		"Alterado":  VariantSecondary,
		"Renomeado": VariantOutline,
		"Renamed":   VariantOutline,
		"Copiado":   VariantSecondary,
	}

	for label, want := range tests {
		assert.Equal(t, want, BadgeVariant(models.ParseEventKind(label)), label)
	}
}

func TestFormatPercentageAndBar(t *testing.T) {
	assert.Equal(t, "57.1%", FormatPercentage(57.1))
	assert.Equal(t, "100%", FormatPercentage(100))

	assert.Equal(t, "█████░░░░░", Bar(50, 10))
	assert.Equal(t, "░░░░░░░░░░", Bar(0, 10))
	assert.Equal(t, "██████████", Bar(120, 10))
}
