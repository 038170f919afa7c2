package iex

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrToListRoundTrip(t *testing.T) {
	symbols := []string{"AAPL", "MSFT", "GOOG"}
	joined := StrCommaSeparatedString(symbols)
	assert.Equal(t, "AAPL,MSFT,GOOG", joined)
	assert.Equal(t, symbols, StrToList(joined))

	assert.Equal(t, []string{"AAPL"}, StrToList("AAPL"))
}

func TestStrOrDate(t *testing.T) {
	s, err := StrOrDate("20210104")
	require.NoError(t, err)
	assert.Equal(t, "20210104", s)

	s, err = StrOrDate(time.Date(2021, 1, 4, 15, 30, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "20210104", s)

	s, err = StrOrDate(civil.Date{Year: 2021, Month: time.January, Day: 4})
	require.NoError(t, err)
	assert.Equal(t, "20210104", s)

	_, err = StrOrDate(42)
	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestDateRange(t *testing.T) {
	for _, valid := range []string{"today", "ytd", "last-week", "next-quarter", "m"} {
		s, err := DateRange(valid)
		require.NoError(t, err)
		assert.Equal(t, valid, s)
	}
	_, err := DateRange("fortnight")
	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestQuoteSymbol(t *testing.T) {
	assert.Equal(t, "AAPL", QuoteSymbol("AAPL"))
	assert.Equal(t, "BRK.B", QuoteSymbol("BRK.B"))
	// separating commas survive, the elements are escaped
	assert.Equal(t, "AAPL,C%2BD", QuoteSymbol("AAPL,C+D"))
}

func TestQuoteSymbols(t *testing.T) {
	assert.Equal(t, "AAPL,C%2BD", QuoteSymbols([]string{"AAPL", "C+D"}))
}

func TestCheckPeriodLast(t *testing.T) {
	require.NoError(t, CheckPeriodLast("quarter", 1))
	require.NoError(t, CheckPeriodLast("quarter", 12))
	require.Error(t, CheckPeriodLast("quarter", 0))
	require.Error(t, CheckPeriodLast("quarter", 13))

	require.NoError(t, CheckPeriodLast("annual", 1))
	require.NoError(t, CheckPeriodLast("annual", 4))
	require.Error(t, CheckPeriodLast("annual", 5))

	require.Error(t, CheckPeriodLast("monthly", 1))
}

func TestRequireSecret(t *testing.T) {
	assert.NoError(t, RequireSecret("sk_live", false))
	assert.Error(t, RequireSecret("pk_live", false))

	// sandbox secrets only pass when the sandbox is allowed
	assert.NoError(t, RequireSecret("Tsk_test", true))
	assert.Error(t, RequireSecret("Tsk_test", false))
	assert.Error(t, RequireSecret("Tpk_test", true))
}

func TestChunkStrings(t *testing.T) {
	chunks := chunkStrings([]string{"a", "b", "c", "d", "e"}, 2)
	assert.Equal(t, [][]string{{"a", "b"}, {"c", "d"}, {"e"}}, chunks)

	chunks = chunkStrings([]string{"a"}, 100)
	assert.Equal(t, [][]string{{"a"}}, chunks)
}
