package iex

import (
	"fmt"
)

// GetQuote returns the full quote for the given symbol.
func (c *Client) GetQuote(symbol string) (*Quote, error) {
	quote := &Quote{}
	if err := c.get(fmt.Sprintf("stock/%s/quote", QuoteSymbol(symbol)), callParams{}, quote); err != nil {
		return nil, err
	}
	return quote, nil
}

// GetPrice returns the latest price for the given symbol.
func (c *Client) GetPrice(symbol string) (float64, error) {
	var price float64
	if err := c.get(fmt.Sprintf("stock/%s/price", QuoteSymbol(symbol)), callParams{}, &price); err != nil {
		return 0, err
	}
	return price, nil
}

// GetPrevious returns the previous trading day's summary for the given symbol.
func (c *Client) GetPrevious(symbol string) (*PreviousDay, error) {
	prev := &PreviousDay{}
	if err := c.get(fmt.Sprintf("stock/%s/previous", QuoteSymbol(symbol)), callParams{}, prev); err != nil {
		return nil, err
	}
	return prev, nil
}

// GetChartParams contains optional parameters for getting a chart.
type GetChartParams struct {
	// Timeframe is one of the fixed chart ranges, e.g. "1m", "ytd", "max".
	Timeframe string
	// Date requests the chart of a single day. Accepts a string, time.Time
	// or civil.Date (formatted as YYYYMMDD).
	Date interface{}
	// Filter restricts the returned fields.
	Filter string
}

// GetChart returns the historical chart bars for the given symbol.
func (c *Client) GetChart(symbol string, params GetChartParams) ([]ChartBar, error) {
	if err := checkTimeframe(chartTimeframes, params.Timeframe); err != nil {
		return nil, err
	}
	path := fmt.Sprintf("stock/%s/chart", QuoteSymbol(symbol))
	if params.Timeframe != "" {
		path += "/" + params.Timeframe
	}
	if params.Date != nil {
		date, err := StrOrDate(params.Date)
		if err != nil {
			return nil, err
		}
		path = fmt.Sprintf("stock/%s/chart/date/%s", QuoteSymbol(symbol), date)
	}
	bars := []ChartBar{}
	if err := c.get(path, callParams{filter: params.Filter}, &bars); err != nil {
		return nil, err
	}
	return bars, nil
}

// GetIntradayPrices returns the minute bars of the current or most recent
// trading day for the given symbol.
func (c *Client) GetIntradayPrices(symbol string) ([]IntradayBar, error) {
	bars := []IntradayBar{}
	if err := c.get(fmt.Sprintf("stock/%s/intraday-prices", QuoteSymbol(symbol)), callParams{}, &bars); err != nil {
		return nil, err
	}
	return bars, nil
}

// GetCompany returns the company profile for the given symbol.
func (c *Client) GetCompany(symbol string) (*Company, error) {
	company := &Company{}
	if err := c.get(fmt.Sprintf("stock/%s/company", QuoteSymbol(symbol)), callParams{}, company); err != nil {
		return nil, err
	}
	return company, nil
}

// GetKeyStats returns the key statistics for the given symbol.
func (c *Client) GetKeyStats(symbol string) (*KeyStats, error) {
	stats := &KeyStats{}
	if err := c.get(fmt.Sprintf("stock/%s/stats", QuoteSymbol(symbol)), callParams{}, stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// GetPeers returns the peer symbols for the given symbol.
func (c *Client) GetPeers(symbol string) ([]string, error) {
	peers := []string{}
	if err := c.get(fmt.Sprintf("stock/%s/peers", QuoteSymbol(symbol)), callParams{}, &peers); err != nil {
		return nil, err
	}
	return peers, nil
}

// GetBook returns the order book for the given symbol.
func (c *Client) GetBook(symbol string) (*Book, error) {
	book := &Book{}
	if err := c.get(fmt.Sprintf("stock/%s/book", QuoteSymbol(symbol)), callParams{}, book); err != nil {
		return nil, err
	}
	return book, nil
}

// GetNews returns up to last news items for the given symbol.
func (c *Client) GetNews(symbol string, last int) ([]News, error) {
	path := fmt.Sprintf("stock/%s/news", QuoteSymbol(symbol))
	if last > 0 {
		path = fmt.Sprintf("%s/last/%d", path, last)
	}
	news := []News{}
	if err := c.get(path, callParams{}, &news); err != nil {
		return nil, err
	}
	return news, nil
}

// GetDividends returns the dividend records for the given symbol within the
// timeframe (one of the fixed dividend/split ranges, e.g. "1y", "next").
func (c *Client) GetDividends(symbol, timeframe string) ([]Dividend, error) {
	if err := checkTimeframe(divSplitTimeframes, timeframe); err != nil {
		return nil, err
	}
	path := fmt.Sprintf("stock/%s/dividends", QuoteSymbol(symbol))
	if timeframe != "" {
		path += "/" + timeframe
	}
	dividends := []Dividend{}
	if err := c.get(path, callParams{}, &dividends); err != nil {
		return nil, err
	}
	return dividends, nil
}

// GetSplits returns the split records for the given symbol within the
// timeframe (one of the fixed dividend/split ranges).
func (c *Client) GetSplits(symbol, timeframe string) ([]Split, error) {
	if err := checkTimeframe(divSplitTimeframes, timeframe); err != nil {
		return nil, err
	}
	path := fmt.Sprintf("stock/%s/splits", QuoteSymbol(symbol))
	if timeframe != "" {
		path += "/" + timeframe
	}
	splits := []Split{}
	if err := c.get(path, callParams{}, &splits); err != nil {
		return nil, err
	}
	return splits, nil
}

// GetEarnings returns the last reported earnings for the given symbol.
// Period is "quarter" or "annual"; last is validated against the period.
func (c *Client) GetEarnings(symbol, period string, last int) (*Earnings, error) {
	if err := CheckPeriodLast(period, last); err != nil {
		return nil, err
	}
	earnings := &Earnings{}
	path := fmt.Sprintf("stock/%s/earnings/%d", QuoteSymbol(symbol), last)
	if err := c.get(path, callParams{query: queryValues("period", period)}, earnings); err != nil {
		return nil, err
	}
	return earnings, nil
}

// GetFinancials returns the last reported financials for the given symbol.
// Period is "quarter" or "annual"; last is validated against the period.
func (c *Client) GetFinancials(symbol, period string, last int) (*Financials, error) {
	if err := CheckPeriodLast(period, last); err != nil {
		return nil, err
	}
	financials := &Financials{}
	path := fmt.Sprintf("stock/%s/financials/%d", QuoteSymbol(symbol), last)
	if err := c.get(path, callParams{query: queryValues("period", period)}, financials); err != nil {
		return nil, err
	}
	return financials, nil
}

// GetBalanceSheet returns the last reported balance sheets for the given
// symbol. Period is "quarter" or "annual"; last is validated against the
// period.
func (c *Client) GetBalanceSheet(symbol, period string, last int) (*BalanceSheet, error) {
	if err := CheckPeriodLast(period, last); err != nil {
		return nil, err
	}
	sheet := &BalanceSheet{}
	path := fmt.Sprintf("stock/%s/balance-sheet/%d", QuoteSymbol(symbol), last)
	if err := c.get(path, callParams{query: queryValues("period", period)}, sheet); err != nil {
		return nil, err
	}
	return sheet, nil
}

// GetList returns the quotes of a market list. Option is one of the fixed
// list options, e.g. "mostactive", "gainers".
func (c *Client) GetList(option string) ([]Quote, error) {
	if !isMember(listOptions, option) {
		return nil, errValidation("not a valid list option: %s", option)
	}
	quotes := []Quote{}
	if err := c.get(fmt.Sprintf("stock/market/list/%s", option), callParams{}, &quotes); err != nil {
		return nil, err
	}
	return quotes, nil
}

// GetCollection returns the quotes of a collection. Tag is one of "sector",
// "tag" or "list"; name selects the collection.
func (c *Client) GetCollection(tag, name string) ([]Quote, error) {
	if !isMember(collectionTags, tag) {
		return nil, errValidation("not a valid collection tag: %s", tag)
	}
	quotes := []Quote{}
	path := fmt.Sprintf("stock/market/collection/%s", tag)
	if err := c.get(path, callParams{query: queryValues("collectionName", name)}, &quotes); err != nil {
		return nil, err
	}
	return quotes, nil
}

// GetSymbols returns all reference-data symbols supported by the API.
func (c *Client) GetSymbols() ([]Symbol, error) {
	symbols := []Symbol{}
	if err := c.get("ref-data/symbols", callParams{}, &symbols); err != nil {
		return nil, err
	}
	return symbols, nil
}

// GetBatch fetches multiple data types for multiple symbols in a single
// call. Types are validated against the fixed batch type set (at most 10
// per request); symbol lists larger than batchSymbolLimit are chunked into
// several requests and the results merged.
func (c *Client) GetBatch(symbols, types []string) (map[string]BatchResult, error) {
	if err := checkBatchTypes(types); err != nil {
		return nil, err
	}
	if len(symbols) == 0 {
		return nil, errValidation("batch requires at least one symbol")
	}

	results := make(map[string]BatchResult, len(symbols))
	for _, chunk := range chunkStrings(symbols, batchSymbolLimit) {
		q := queryValues(
			"symbols", QuoteSymbols(chunk),
			"types", StrCommaSeparatedString(types),
		)
		page := map[string]BatchResult{}
		if err := c.get("stock/market/batch", callParams{query: q}, &page); err != nil {
			return nil, err
		}
		for symbol, result := range page {
			results[symbol] = result
		}
	}
	return results, nil
}

// GetUsage returns the account's usage for the given type (one of the
// fixed usage types, or empty for all). Requires a secret token.
func (c *Client) GetUsage(usageType string) (*Usage, error) {
	if usageType != "" && !isMember(usageTypes, usageType) {
		return nil, errValidation("not a valid usage type: %s", usageType)
	}
	if err := c.requireSecret(); err != nil {
		return nil, err
	}
	path := "account/usage"
	if usageType != "" {
		path += "/" + usageType
	}
	usage := &Usage{}
	if err := c.get(path, callParams{}, usage); err != nil {
		return nil, err
	}
	return usage, nil
}

// SetMessageBudget sets the account's monthly message budget. Requires a
// secret token, which is sent in the payload rather than the query string.
func (c *Client) SetMessageBudget(totalMessages int64) error {
	if err := c.requireSecret(); err != nil {
		return err
	}
	body := map[string]interface{}{
		"totalMessages": totalMessages,
		"token":         c.opts.Token,
	}
	return c.post("account/messagebudget", body, false, callParams{}, nil)
}

// CreateRule creates a new alerting rule. Requires a secret token.
func (c *Client) CreateRule(rule RuleRequest) (*RuleID, error) {
	if err := c.requireSecret(); err != nil {
		return nil, err
	}
	rule.Token = c.opts.Token
	id := &RuleID{}
	if err := c.post("rules/create", rule, false, callParams{}, id); err != nil {
		return nil, err
	}
	return id, nil
}

// PauseRule pauses the rule with the given id. Requires a secret token.
func (c *Client) PauseRule(ruleID string) error {
	if err := c.requireSecret(); err != nil {
		return err
	}
	body := map[string]string{"ruleId": ruleID, "token": c.opts.Token}
	return c.post("rules/pause", body, false, callParams{}, nil)
}

// ResumeRule resumes the rule with the given id. Requires a secret token.
func (c *Client) ResumeRule(ruleID string) error {
	if err := c.requireSecret(); err != nil {
		return err
	}
	body := map[string]string{"ruleId": ruleID, "token": c.opts.Token}
	return c.post("rules/resume", body, false, callParams{}, nil)
}

// DeleteRule deletes the rule with the given id. Requires a secret token.
func (c *Client) DeleteRule(ruleID string) error {
	if err := c.requireSecret(); err != nil {
		return err
	}
	return c.delete(fmt.Sprintf("rules/%s", ruleID), callParams{}, nil)
}

// GetRule returns the rule with the given id. Requires a secret token.
func (c *Client) GetRule(ruleID string) (*Rule, error) {
	if err := c.requireSecret(); err != nil {
		return nil, err
	}
	rule := &Rule{}
	if err := c.get(fmt.Sprintf("rules/info/%s", ruleID), callParams{}, rule); err != nil {
		return nil, err
	}
	return rule, nil
}

// GetDataPoint returns a single numeric market data point, e.g. a treasury
// rate key like "DGS10".
func (c *Client) GetDataPoint(key string) (float64, error) {
	var value float64
	if err := c.get(fmt.Sprintf("data-points/market/%s", key), callParams{}, &value); err != nil {
		return 0, err
	}
	return value, nil
}

// Treasury rate helpers over the market data points endpoint.

func (c *Client) ThirtyYear() (float64, error) { return c.GetDataPoint("DGS30") }
func (c *Client) TwentyYear() (float64, error) { return c.GetDataPoint("DGS20") }
func (c *Client) TenYear() (float64, error)    { return c.GetDataPoint("DGS10") }
func (c *Client) FiveYear() (float64, error)   { return c.GetDataPoint("DGS5") }
func (c *Client) TwoYear() (float64, error)    { return c.GetDataPoint("DGS2") }
func (c *Client) OneYear() (float64, error)    { return c.GetDataPoint("DGS1") }
func (c *Client) SixMonth() (float64, error)   { return c.GetDataPoint("DGS6MO") }
func (c *Client) ThreeMonth() (float64, error) { return c.GetDataPoint("DGS3MO") }
func (c *Client) OneMonth() (float64, error)   { return c.GetDataPoint("DGS1MO") }

// GetQuote returns the full quote for the given symbol using the default
// client.
func GetQuote(symbol string) (*Quote, error) {
	return DefaultClient.GetQuote(symbol)
}

// GetPrice returns the latest price for the given symbol using the default
// client.
func GetPrice(symbol string) (float64, error) {
	return DefaultClient.GetPrice(symbol)
}

// GetChart returns the historical chart bars for the given symbol using
// the default client.
func GetChart(symbol string, params GetChartParams) ([]ChartBar, error) {
	return DefaultClient.GetChart(symbol, params)
}

// GetCompany returns the company profile for the given symbol using the
// default client.
func GetCompany(symbol string) (*Company, error) {
	return DefaultClient.GetCompany(symbol)
}

// GetBatch fetches multiple data types for multiple symbols using the
// default client.
func GetBatch(symbols, types []string) (map[string]BatchResult, error) {
	return DefaultClient.GetBatch(symbols, types)
}
