package iex

import (
	"net/url"
	"strings"
	"time"

	"cloud.google.com/go/civil"

	"github.com/iexcloud/iex-api-go/internal/tokens"
)

// Fixed vocabularies accepted by the endpoints that take an enumerated
// argument. Anything outside these sets fails validation before any
// network I/O.
var (
	chartTimeframes = []string{
		"max", "5y", "2y", "1y", "ytd", "6m", "3m", "1m", "1mm", "5d", "5dm", "1d", "dynamic",
	}

	divSplitTimeframes = []string{"5y", "2y", "1y", "ytd", "6m", "3m", "1m", "next"}

	listOptions = []string{"mostactive", "gainers", "losers", "iexvolume", "iexpercent"}

	collectionTags = []string{"sector", "tag", "list"}

	usageTypes = []string{"messages", "rules", "rule-records", "alerts", "alert-records"}

	dateRanges = []string{
		"today", "yesterday", "ytd", "last-week", "last-month", "last-quarter",
		"d", "w", "m", "q", "y",
		"tomorrow", "this-week", "this-month", "this-quarter",
		"next-week", "next-month", "next-quarter",
	}

	// batchTypes are the endpoints accepted by the batch call. The API
	// serves at most batchLimit of them per request.
	batchTypes = []string{
		"book", "chart", "company", "dividends", "earnings", "financials",
		"stats", "news", "peers", "splits",
		"intraday-prices", "effective-spread", "delayed-quote", "largest-trades",
		"previous", "price", "quote", "relevant", "volume-by-venue",
	}
)

const batchLimit = 10

func isMember(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// RequireSecret fails unless token is a secret key ("sk" prefix), or, when
// allowSandbox is set, a sandbox secret key ("Tsk" prefix). Privileged
// endpoints call this before dispatching.
func RequireSecret(token string, allowSandbox bool) error {
	if tokens.IsSecret(token, allowSandbox) {
		return nil
	}
	return errValidation("requires secret token")
}

// StrToList splits a comma-separated string into its elements.
func StrToList(s string) []string {
	return strings.Split(s, ",")
}

// StrCommaSeparatedString joins symbols into a comma-separated string.
// Together with StrToList it canonicalizes symbol lists in both directions.
func StrCommaSeparatedString(symbols []string) string {
	return strings.Join(symbols, ",")
}

// StrOrDate accepts a string verbatim, or a time.Time / civil.Date value
// formatted as YYYYMMDD. Any other type fails.
func StrOrDate(v interface{}) (string, error) {
	switch d := v.(type) {
	case string:
		return d, nil
	case time.Time:
		return d.Format("20060102"), nil
	case civil.Date:
		return d.In(time.UTC).Format("20060102"), nil
	default:
		return "", errValidation("not a date: %v", v)
	}
}

// DateRange validates membership in the fixed set of relative date-range
// tokens accepted by the API.
func DateRange(s string) (string, error) {
	if !isMember(dateRanges, s) {
		return "", errValidation("must be a valid date range: got %s", s)
	}
	return s, nil
}

// QuoteSymbol percent-encodes a symbol, or each element of a
// comma-separated symbol string with the commas preserved as separators.
func QuoteSymbol(symbol string) string {
	parts := strings.Split(symbol, ",")
	for i, p := range parts {
		parts[i] = url.QueryEscape(p)
	}
	return strings.Join(parts, ",")
}

// QuoteSymbols percent-encodes each symbol and joins them with commas for
// safe URL embedding.
func QuoteSymbols(symbols []string) string {
	quoted := make([]string, len(symbols))
	for i, s := range symbols {
		quoted[i] = url.QueryEscape(s)
	}
	return strings.Join(quoted, ",")
}

// CheckPeriodLast validates a (period, last) pair: "quarter" accepts
// [1, 12], "annual" accepts [1, 4].
func CheckPeriodLast(period string, last int) error {
	switch period {
	case "quarter":
		if last < 1 || last > 12 {
			return errValidation("last must be in [1, 12] for period 'quarter'")
		}
	case "annual":
		if last < 1 || last > 4 {
			return errValidation("last must be in [1, 4] for period 'annual'")
		}
	default:
		return errValidation("period must be 'quarter' or 'annual'")
	}
	return nil
}

func checkTimeframe(set []string, timeframe string) error {
	if timeframe != "" && !isMember(set, timeframe) {
		return errValidation("not a valid timeframe: %s", timeframe)
	}
	return nil
}

func checkBatchTypes(types []string) error {
	if len(types) == 0 {
		return errValidation("batch requires at least one type")
	}
	if len(types) > batchLimit {
		return errValidation("batch accepts at most %d types per request", batchLimit)
	}
	for _, t := range types {
		if !isMember(batchTypes, t) {
			return errValidation("not a valid batch type: %s", t)
		}
	}
	return nil
}
