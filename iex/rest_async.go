package iex

import "net/url"

// batchSymbolLimit is the maximum number of symbols the batch endpoint
// serves per request; longer lists are chunked.
const batchSymbolLimit = 100

func queryValues(pairs ...string) url.Values {
	q := url.Values{}
	for i := 0; i+1 < len(pairs); i += 2 {
		q.Set(pairs[i], pairs[i+1])
	}
	return q
}

func chunkStrings(items []string, size int) [][]string {
	chunks := make([][]string, 0, (len(items)+size-1)/size)
	for size < len(items) {
		items, chunks = items[size:], append(chunks, items[:size])
	}
	return append(chunks, items)
}

// ChartBarItem contains a single chart bar or an error.
type ChartBarItem struct {
	Bar   ChartBar
	Error error
}

// GetChartAsync returns a channel that will be populated with the
// historical chart bars for the given symbol. The channel is closed when
// all bars have been delivered; an item carrying an error terminates the
// stream.
func (c *Client) GetChartAsync(symbol string, params GetChartParams) <-chan ChartBarItem {
	ch := make(chan ChartBarItem)

	go func() {
		defer close(ch)

		bars, err := c.GetChart(symbol, params)
		if err != nil {
			ch <- ChartBarItem{Error: err}
			return
		}
		for _, bar := range bars {
			ch <- ChartBarItem{Bar: bar}
		}
	}()

	return ch
}

// BatchItem contains the batch result of a single symbol or an error.
type BatchItem struct {
	Symbol string
	Result BatchResult
	Error  error
}

// GetBatchAsync returns a channel that will be populated with the batch
// results of the requested symbols as each chunked request completes. The
// channel is closed when all results have been delivered; an item carrying
// an error terminates the stream.
func (c *Client) GetBatchAsync(symbols, types []string) <-chan BatchItem {
	ch := make(chan BatchItem)

	go func() {
		defer close(ch)

		if err := checkBatchTypes(types); err != nil {
			ch <- BatchItem{Error: err}
			return
		}
		if len(symbols) == 0 {
			ch <- BatchItem{Error: errValidation("batch requires at least one symbol")}
			return
		}

		for _, chunk := range chunkStrings(symbols, batchSymbolLimit) {
			q := queryValues(
				"symbols", QuoteSymbols(chunk),
				"types", StrCommaSeparatedString(types),
			)
			page := map[string]BatchResult{}
			if err := c.get("stock/market/batch", callParams{query: q}, &page); err != nil {
				ch <- BatchItem{Error: err}
				return
			}
			// Deliver in request order so consumers see a stable sequence.
			for _, symbol := range chunk {
				if result, ok := page[symbol]; ok {
					ch <- BatchItem{Symbol: symbol, Result: result}
				}
			}
		}
	}()

	return ch
}
