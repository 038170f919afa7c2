package iex

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetQuote(t *testing.T) {
	c := testClient(ClientOpts{})
	c.do = func(c *Client, req *http.Request) (*http.Response, error) {
		assert.Equal(t, "/stable/stock/AAPL/quote", req.URL.Path)
		return mockResp(`{
			"symbol": "AAPL",
			"companyName": "Apple Inc",
			"latestPrice": 177.57,
			"latestVolume": 71139442,
			"isUSMarketOpen": true
		}`)(c, req)
	}
	quote, err := c.GetQuote("AAPL")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", quote.Symbol)
	assert.Equal(t, "Apple Inc", quote.CompanyName)
	assert.EqualValues(t, 177.57, quote.LatestPrice)
	assert.True(t, quote.IsUSMarketOpen)
}

func TestGetChart(t *testing.T) {
	c := testClient(ClientOpts{})
	c.do = func(c *Client, req *http.Request) (*http.Response, error) {
		assert.Equal(t, "/stable/stock/AAPL/chart/1m", req.URL.Path)
		return mockResp(`[
			{"date": "2021-01-04", "open": 133.52, "close": 129.41, "volume": 143301900},
			{"date": "2021-01-05", "open": 128.89, "close": 131.01, "volume": 97664900}
		]`)(c, req)
	}
	bars, err := c.GetChart("AAPL", GetChartParams{Timeframe: "1m"})
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, "2021-01-04", bars[0].Date.String())
	assert.EqualValues(t, 129.41, bars[0].Close)
}

func TestGetChartByDate(t *testing.T) {
	c := testClient(ClientOpts{})
	c.do = func(c *Client, req *http.Request) (*http.Response, error) {
		assert.Equal(t, "/stable/stock/AAPL/chart/date/20210104", req.URL.Path)
		return mockResp(`[]`)(c, req)
	}
	_, err := c.GetChart("AAPL", GetChartParams{Date: "20210104"})
	require.NoError(t, err)
}

func TestGetChartRejectsBadTimeframe(t *testing.T) {
	c := testClient(ClientOpts{})
	calls := 0
	c.do = func(c *Client, req *http.Request) (*http.Response, error) {
		calls++
		return mockResp(`[]`)(c, req)
	}
	_, err := c.GetChart("AAPL", GetChartParams{Timeframe: "7y"})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Zero(t, calls)
}

func TestGetDividends(t *testing.T) {
	c := testClient(ClientOpts{})
	c.do = func(c *Client, req *http.Request) (*http.Response, error) {
		assert.Equal(t, "/stable/stock/AAPL/dividends/1y", req.URL.Path)
		return mockResp(`[{"symbol": "AAPL", "exDate": "2021-02-05", "amount": "0.205"}]`)(c, req)
	}
	dividends, err := c.GetDividends("AAPL", "1y")
	require.NoError(t, err)
	require.Len(t, dividends, 1)
	assert.Equal(t, "0.205", dividends[0].Amount.String())

	_, err = c.GetDividends("AAPL", "7y")
	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestGetEarnings(t *testing.T) {
	c := testClient(ClientOpts{})
	c.do = func(c *Client, req *http.Request) (*http.Response, error) {
		assert.Equal(t, "/stable/stock/AAPL/earnings/4", req.URL.Path)
		assert.Equal(t, "quarter", req.URL.Query().Get("period"))
		return mockResp(`{"symbol": "AAPL", "earnings": [{"actualEPS": "1.68", "fiscalPeriod": "Q4 2021"}]}`)(c, req)
	}
	earnings, err := c.GetEarnings("AAPL", "quarter", 4)
	require.NoError(t, err)
	require.Len(t, earnings.Earnings, 1)
	assert.Equal(t, "1.68", earnings.Earnings[0].ActualEPS.String())

	_, err = c.GetEarnings("AAPL", "annual", 5)
	require.Error(t, err)
}

func TestGetList(t *testing.T) {
	c := testClient(ClientOpts{})
	c.do = func(c *Client, req *http.Request) (*http.Response, error) {
		assert.Equal(t, "/stable/stock/market/list/gainers", req.URL.Path)
		return mockResp(`[{"symbol": "X"}, {"symbol": "Y"}]`)(c, req)
	}
	quotes, err := c.GetList("gainers")
	require.NoError(t, err)
	assert.Len(t, quotes, 2)

	_, err = c.GetList("winners")
	require.Error(t, err)
}

func TestGetCollection(t *testing.T) {
	c := testClient(ClientOpts{})
	c.do = func(c *Client, req *http.Request) (*http.Response, error) {
		assert.Equal(t, "/stable/stock/market/collection/sector", req.URL.Path)
		assert.Equal(t, "Technology", req.URL.Query().Get("collectionName"))
		return mockResp(`[{"symbol": "AAPL"}]`)(c, req)
	}
	quotes, err := c.GetCollection("sector", "Technology")
	require.NoError(t, err)
	assert.Len(t, quotes, 1)

	_, err = c.GetCollection("industry", "x")
	require.Error(t, err)
}

func TestGetBatch(t *testing.T) {
	c := testClient(ClientOpts{})
	c.do = func(c *Client, req *http.Request) (*http.Response, error) {
		assert.Equal(t, "/stable/stock/market/batch", req.URL.Path)
		assert.Equal(t, "AAPL,MSFT", req.URL.Query().Get("symbols"))
		assert.Equal(t, "quote,news", req.URL.Query().Get("types"))
		return mockResp(`{
			"AAPL": {"quote": {"symbol": "AAPL"}, "news": []},
			"MSFT": {"quote": {"symbol": "MSFT"}, "news": []}
		}`)(c, req)
	}
	results, err := c.GetBatch([]string{"AAPL", "MSFT"}, []string{"quote", "news"})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Contains(t, results["AAPL"], "quote")
}

func TestGetBatchChunksLargeSymbolLists(t *testing.T) {
	symbols := make([]string, 250)
	for i := range symbols {
		symbols[i] = fmt.Sprintf("S%d", i)
	}

	c := testClient(ClientOpts{})
	requests := 0
	c.do = func(c *Client, req *http.Request) (*http.Response, error) {
		requests++
		chunk := strings.Split(req.URL.Query().Get("symbols"), ",")
		assert.LessOrEqual(t, len(chunk), batchSymbolLimit)
		var sb strings.Builder
		sb.WriteString("{")
		for i, s := range chunk {
			if i > 0 {
				sb.WriteString(",")
			}
			sb.WriteString(strconv.Quote(s) + `: {"quote": {}}`)
		}
		sb.WriteString("}")
		return mockResp(sb.String())(c, req)
	}

	results, err := c.GetBatch(symbols, []string{"quote"})
	require.NoError(t, err)
	assert.Equal(t, 3, requests)
	assert.Len(t, results, 250)
}

func TestGetBatchValidation(t *testing.T) {
	c := testClient(ClientOpts{})
	c.do = mockErrResp()

	_, err := c.GetBatch([]string{"AAPL"}, nil)
	require.Error(t, err)

	_, err = c.GetBatch(nil, []string{"quote"})
	require.Error(t, err)

	_, err = c.GetBatch([]string{"AAPL"}, []string{"quote", "bogus"})
	require.Error(t, err)

	tooMany := make([]string, batchLimit+1)
	for i := range tooMany {
		tooMany[i] = "quote"
	}
	_, err = c.GetBatch([]string{"AAPL"}, tooMany)
	require.Error(t, err)
}

func TestGetUsageRequiresSecretToken(t *testing.T) {
	c := testClient(ClientOpts{Token: "pk_test"})
	calls := 0
	c.do = func(c *Client, req *http.Request) (*http.Response, error) {
		calls++
		return mockResp("{}")(c, req)
	}
	_, err := c.GetUsage("messages")
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Zero(t, calls)

	c = testClient(ClientOpts{Token: "sk_test"})
	c.do = func(c *Client, req *http.Request) (*http.Response, error) {
		assert.Equal(t, "/stable/account/usage/messages", req.URL.Path)
		return mockResp(`{"monthlyUsage": 42}`)(c, req)
	}
	usage, err := c.GetUsage("messages")
	require.NoError(t, err)
	assert.EqualValues(t, 42, usage.MonthlyUsage)

	_, err = c.GetUsage("bandwidth")
	require.Error(t, err)
}

func TestSetMessageBudgetSendsTokenInBody(t *testing.T) {
	c := testClient(ClientOpts{Token: "sk_test"})
	c.do = func(c *Client, req *http.Request) (*http.Response, error) {
		assert.Equal(t, http.MethodPost, req.Method)
		assert.Equal(t, "/stable/account/messagebudget", req.URL.Path)
		_, inQuery := req.URL.Query()["token"]
		assert.False(t, inQuery)
		body, err := io.ReadAll(req.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), `"token":"sk_test"`)
		assert.Contains(t, string(body), `"totalMessages":500000`)
		return mockResp("{}")(c, req)
	}
	require.NoError(t, c.SetMessageBudget(500000))
}

func TestRuleLifecycle(t *testing.T) {
	c := testClient(ClientOpts{Token: "sk_test"})

	c.do = func(c *Client, req *http.Request) (*http.Response, error) {
		assert.Equal(t, http.MethodPost, req.Method)
		assert.Equal(t, "/stable/rules/create", req.URL.Path)
		return mockResp(`{"id": "rule-1", "weight": 2}`)(c, req)
	}
	id, err := c.CreateRule(RuleRequest{
		RuleSet:    "AAPL",
		Type:       "quote",
		RuleName:   "price alert",
		Conditions: [][]interface{}{{"latestPrice", ">", 200.0}},
		Outputs:    []RuleOutput{{Frequency: 60, Method: "webhook", To: "https://example.com/hook"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "rule-1", id.ID)

	c.do = func(c *Client, req *http.Request) (*http.Response, error) {
		assert.Equal(t, "/stable/rules/pause", req.URL.Path)
		return mockResp("{}")(c, req)
	}
	require.NoError(t, c.PauseRule("rule-1"))

	c.do = func(c *Client, req *http.Request) (*http.Response, error) {
		assert.Equal(t, "/stable/rules/info/rule-1", req.URL.Path)
		return mockResp(`{"id": "rule-1", "isPaused": true}`)(c, req)
	}
	rule, err := c.GetRule("rule-1")
	require.NoError(t, err)
	assert.True(t, rule.IsPaused)

	c.do = func(c *Client, req *http.Request) (*http.Response, error) {
		assert.Equal(t, http.MethodDelete, req.Method)
		assert.Equal(t, "/stable/rules/rule-1", req.URL.Path)
		return mockResp("{}")(c, req)
	}
	require.NoError(t, c.DeleteRule("rule-1"))
}

func TestRulesRequireSecretToken(t *testing.T) {
	c := testClient(ClientOpts{Token: "pk_test"})
	c.do = mockErrResp()

	_, err := c.CreateRule(RuleRequest{})
	require.Error(t, err)
	require.Error(t, c.PauseRule("r"))
	require.Error(t, c.ResumeRule("r"))
	require.Error(t, c.DeleteRule("r"))
	_, err = c.GetRule("r")
	require.Error(t, err)
}

func TestGetDataPoint(t *testing.T) {
	c := testClient(ClientOpts{})
	c.do = func(c *Client, req *http.Request) (*http.Response, error) {
		assert.Equal(t, "/stable/data-points/market/DGS10", req.URL.Path)
		return mockResp("1.52")(c, req)
	}
	rate, err := c.TenYear()
	require.NoError(t, err)
	assert.EqualValues(t, 1.52, rate)
}

func TestGetChartAsync(t *testing.T) {
	c := testClient(ClientOpts{})
	c.do = mockResp(`[
		{"date": "2021-01-04", "close": 129.41},
		{"date": "2021-01-05", "close": 131.01}
	]`)

	var closes []float64
	for item := range c.GetChartAsync("AAPL", GetChartParams{}) {
		require.NoError(t, item.Error)
		closes = append(closes, item.Bar.Close)
	}
	assert.Equal(t, []float64{129.41, 131.01}, closes)
}

func TestGetChartAsyncDeliversError(t *testing.T) {
	c := testClient(ClientOpts{})
	c.do = mockErrResp()

	items := []ChartBarItem{}
	for item := range c.GetChartAsync("AAPL", GetChartParams{}) {
		items = append(items, item)
	}
	require.Len(t, items, 1)
	assert.Error(t, items[0].Error)
}

func TestGetBatchAsyncPreservesRequestOrder(t *testing.T) {
	c := testClient(ClientOpts{})
	c.do = mockResp(`{
		"MSFT": {"quote": {}},
		"AAPL": {"quote": {}},
		"GOOG": {"quote": {}}
	}`)

	var order []string
	for item := range c.GetBatchAsync([]string{"AAPL", "MSFT", "GOOG"}, []string{"quote"}) {
		require.NoError(t, item.Error)
		order = append(order, item.Symbol)
	}
	assert.Equal(t, []string{"AAPL", "MSFT", "GOOG"}, order)
}
