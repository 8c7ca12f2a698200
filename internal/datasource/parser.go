package datasource

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yourusername/zed-insights/internal/models"
)

// Table column names
const (
	ColRaceID           = "race_id"
	ColHorseID          = "horse_id"
	ColHorseName        = "horse_name"
	ColBloodline        = "bloodline"
	ColFinishPosition   = "finish_position"
	ColFinishTime       = "finish_time"
	ColOdds             = "odds"
	ColRating           = "rating"
	ColRaceDate         = "race_date"
	ColCPUAugment       = "cpu_augment"
	ColHydraulicAugment = "hydraulic_augment"
	ColRAMAugment       = "ram_augment"
)

var columnAliases = map[string]string{
	"bloodline_name": ColBloodline,
	"date":           ColRaceDate,
}

var raceDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTable parses a CSV payload into raw records. Numeric fields that are
// missing, malformed or out of range are left nil; rows shorter or longer than
// the header are kept. Only structural CSV errors fail the whole parse.
func ParseTable(payload []byte) ([]models.RawRecord, error) {
	payload = bytes.TrimPrefix(payload, []byte("\xef\xbb\xbf"))
	if len(bytes.TrimSpace(payload)) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrMalformedPayload)
	}

	reader := csv.NewReader(bytes.NewReader(payload))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: reading header: %v", ErrMalformedPayload, err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		col := strings.ToLower(strings.TrimSpace(name))
		if alias, ok := columnAliases[col]; ok {
			col = alias
		}
		if _, dup := index[col]; !dup {
			index[col] = i
		}
	}
	for _, required := range []string{ColRaceID, ColHorseID} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrMalformedPayload, required)
		}
	}

	var records []models.RawRecord
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
		}
		if isBlankRow(row) {
			continue
		}

		field := func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		records = append(records, models.RawRecord{
			RaceID:           field(ColRaceID),
			HorseID:          field(ColHorseID),
			HorseName:        field(ColHorseName),
			BloodlineName:    field(ColBloodline),
			FinishPosition:   parsePosition(field(ColFinishPosition)),
			FinishTime:       parseNonNegative(field(ColFinishTime)),
			Odds:             parseNonNegative(field(ColOdds)),
			Rating:           parseNonNegative(field(ColRating)),
			RaceDate:         parseRaceDate(field(ColRaceDate)),
			CPUAugment:       field(ColCPUAugment),
			HydraulicAugment: field(ColHydraulicAugment),
			RAMAugment:       field(ColRAMAugment),
		})
	}

	return records, nil
}

func isBlankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func parseDecimal(raw string) (decimal.Decimal, bool) {
	if raw == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

var maxPosition = decimal.NewFromInt(math.MaxInt32)

// parsePosition accepts positive whole numbers up to MaxInt32, including "3.0"
func parsePosition(raw string) *int {
	d, ok := parseDecimal(raw)
	if !ok || !d.IsInteger() || !d.IsPositive() || d.GreaterThan(maxPosition) {
		return nil
	}
	pos := int(d.IntPart())
	return &pos
}

func parseNonNegative(raw string) *float64 {
	d, ok := parseDecimal(raw)
	if !ok || d.IsNegative() {
		return nil
	}
	f := d.InexactFloat64()
	if math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func parseRaceDate(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range raceDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
