package resolver

import (
	"bufio"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/simaogato/portfolio-backend/internal/domain"
)

// PriceTag prefixes the line carrying the authoritative price in resolver output
const PriceTag = "PRICE:"

// DateLayout is the ISO calendar date format used on the resolver command line and in series output
const DateLayout = "2006-01-02"

// numericToken matches a whole signed decimal, including a leading dot or an exponent
var numericToken = regexp.MustCompile(`-?(?:\d+\.?\d*|\.\d+)(?:[eE][-+]?\d+)?`)

// ParsePrice extracts a single price from resolver output.
//
// A "PRICE:<decimal>" line wins, but only when the process exited successfully.
// Otherwise the first numeric token anywhere in the output is used, unless it is
// the literal "0". Negative or unparsable tokens yield zero.
func ParsePrice(output string, exitedOK bool) decimal.Decimal {
	if exitedOK {
		if price, ok := taggedPrice(output); ok {
			return price
		}
	}

	token := numericToken.FindString(output)
	if token == "" || token == "0" {
		return decimal.Zero
	}
	price, err := decimal.NewFromString(bareDecimal(token))
	if err != nil || price.IsNegative() {
		return decimal.Zero
	}
	return price
}

// bareDecimal spells a token the way decimal.NewFromString expects it ("-.5" -> "-0.5", "12." -> "12")
func bareDecimal(token string) string {
	sign := ""
	if strings.HasPrefix(token, "-") {
		sign, token = "-", token[1:]
	}
	if strings.HasPrefix(token, ".") {
		token = "0" + token
	}
	mantissa, exponent := token, ""
	if i := strings.IndexAny(token, "eE"); i >= 0 {
		mantissa, exponent = token[:i], token[i:]
	}
	return sign + strings.TrimSuffix(mantissa, ".") + exponent
}

func taggedPrice(output string) (decimal.Decimal, bool) {
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, PriceTag) {
			continue
		}
		price, err := decimal.NewFromString(strings.TrimSpace(strings.TrimPrefix(line, PriceTag)))
		if err != nil || price.IsNegative() {
			return decimal.Zero, false
		}
		return price, true
	}
	return decimal.Zero, false
}

type seriesEntry struct {
	Date  string              `json:"date"`
	Value decimal.NullDecimal `json:"value"`
}

// ParseSeries extracts a price series from resolver output.
// The JSON array is taken between the first '[' and the last ']' so that
// diagnostics printed around it are ignored. Entries with an unparsable date or
// a missing or non-positive value are skipped. The result is sorted by date.
func ParseSeries(output string) ([]domain.PricePoint, error) {
	start := strings.Index(output, "[")
	end := strings.LastIndex(output, "]")
	if start < 0 || end < start {
		return nil, fmt.Errorf("%w: no price series in resolver output", domain.ErrProvider)
	}

	var entries []seriesEntry
	if err := json.Unmarshal([]byte(output[start:end+1]), &entries); err != nil {
		return nil, fmt.Errorf("%w: failed to decode price series: %v", domain.ErrProvider, err)
	}

	points := make([]domain.PricePoint, 0, len(entries))
	for _, e := range entries {
		day, err := time.Parse(DateLayout, strings.TrimSpace(e.Date))
		if err != nil {
			continue
		}
		if !e.Value.Valid || !e.Value.Decimal.IsPositive() {
			continue
		}
		points = append(points, domain.PricePoint{Date: day, Value: e.Value.Decimal})
	}

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})

	return points, nil
}
