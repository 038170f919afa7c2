package iex

import (
	"encoding/json"

	"cloud.google.com/go/civil"
	// Required for easyjson generation
	_ "github.com/mailru/easyjson/gen"
	"github.com/shopspring/decimal"
)

//go:generate go install github.com/mailru/easyjson/...@v0.7.7
//go:generate easyjson -all $GOFILE

// Quote is the full quote for a symbol.
type Quote struct {
	Symbol                string  `json:"symbol"`
	CompanyName           string  `json:"companyName"`
	PrimaryExchange       string  `json:"primaryExchange"`
	CalculationPrice      string  `json:"calculationPrice"`
	Open                  float64 `json:"open"`
	OpenTime              int64   `json:"openTime"`
	Close                 float64 `json:"close"`
	CloseTime             int64   `json:"closeTime"`
	High                  float64 `json:"high"`
	Low                   float64 `json:"low"`
	LatestPrice           float64 `json:"latestPrice"`
	LatestSource          string  `json:"latestSource"`
	LatestTime            string  `json:"latestTime"`
	LatestUpdate          int64   `json:"latestUpdate"`
	LatestVolume          int64   `json:"latestVolume"`
	IEXRealtimePrice      float64 `json:"iexRealtimePrice"`
	IEXRealtimeSize       int64   `json:"iexRealtimeSize"`
	IEXLastUpdated        int64   `json:"iexLastUpdated"`
	DelayedPrice          float64 `json:"delayedPrice"`
	DelayedPriceTime      int64   `json:"delayedPriceTime"`
	ExtendedPrice         float64 `json:"extendedPrice"`
	ExtendedChange        float64 `json:"extendedChange"`
	ExtendedChangePercent float64 `json:"extendedChangePercent"`
	ExtendedPriceTime     int64   `json:"extendedPriceTime"`
	PreviousClose         float64 `json:"previousClose"`
	Change                float64 `json:"change"`
	ChangePercent         float64 `json:"changePercent"`
	Volume                int64   `json:"volume"`
	IEXMarketPercent      float64 `json:"iexMarketPercent"`
	IEXVolume             int64   `json:"iexVolume"`
	AvgTotalVolume        int64   `json:"avgTotalVolume"`
	IEXBidPrice           float64 `json:"iexBidPrice"`
	IEXBidSize            int64   `json:"iexBidSize"`
	IEXAskPrice           float64 `json:"iexAskPrice"`
	IEXAskSize            int64   `json:"iexAskSize"`
	MarketCap             int64   `json:"marketCap"`
	PERatio               float64 `json:"peRatio"`
	Week52High            float64 `json:"week52High"`
	Week52Low             float64 `json:"week52Low"`
	YTDChange             float64 `json:"ytdChange"`
	IsUSMarketOpen        bool    `json:"isUSMarketOpen"`
}

// ChartBar is a single bar of a historical chart.
type ChartBar struct {
	Date           civil.Date `json:"date"`
	Open           float64    `json:"open"`
	High           float64    `json:"high"`
	Low            float64    `json:"low"`
	Close          float64    `json:"close"`
	Volume         int64      `json:"volume"`
	UOpen          float64    `json:"uOpen"`
	UHigh          float64    `json:"uHigh"`
	ULow           float64    `json:"uLow"`
	UClose         float64    `json:"uClose"`
	UVolume        int64      `json:"uVolume"`
	Change         float64    `json:"change"`
	ChangePercent  float64    `json:"changePercent"`
	ChangeOverTime float64    `json:"changeOverTime"`
	Label          string     `json:"label"`
}

// IntradayBar is a single minute bar of the intraday prices endpoint.
type IntradayBar struct {
	Date                 civil.Date `json:"date"`
	Minute               string     `json:"minute"`
	Label                string     `json:"label"`
	High                 float64    `json:"high"`
	Low                  float64    `json:"low"`
	Open                 float64    `json:"open"`
	Close                float64    `json:"close"`
	Average              float64    `json:"average"`
	Volume               int64      `json:"volume"`
	Notional             float64    `json:"notional"`
	NumberOfTrades       int64      `json:"numberOfTrades"`
	MarketHigh           float64    `json:"marketHigh"`
	MarketLow            float64    `json:"marketLow"`
	MarketAverage        float64    `json:"marketAverage"`
	MarketVolume         int64      `json:"marketVolume"`
	MarketNotional       float64    `json:"marketNotional"`
	MarketNumberOfTrades int64      `json:"marketNumberOfTrades"`
}

// PreviousDay is the previous trading day's summary for a symbol.
type PreviousDay struct {
	Symbol         string     `json:"symbol"`
	Date           civil.Date `json:"date"`
	Open           float64    `json:"open"`
	High           float64    `json:"high"`
	Low            float64    `json:"low"`
	Close          float64    `json:"close"`
	Volume         int64      `json:"volume"`
	UnadjustedVolume int64    `json:"unadjustedVolume"`
	Change         float64    `json:"change"`
	ChangePercent  float64    `json:"changePercent"`
	ChangeOverTime float64    `json:"changeOverTime"`
}

// Company is the company profile for a symbol.
type Company struct {
	Symbol         string   `json:"symbol"`
	CompanyName    string   `json:"companyName"`
	Exchange       string   `json:"exchange"`
	Industry       string   `json:"industry"`
	Website        string   `json:"website"`
	Description    string   `json:"description"`
	CEO            string   `json:"CEO"`
	SecurityName   string   `json:"securityName"`
	IssueType      string   `json:"issueType"`
	Sector         string   `json:"sector"`
	PrimarySICCode int      `json:"primarySicCode"`
	Employees      int      `json:"employees"`
	Tags           []string `json:"tags"`
	Address        string   `json:"address"`
	Address2       string   `json:"address2"`
	State          string   `json:"state"`
	City           string   `json:"city"`
	Zip            string   `json:"zip"`
	Country        string   `json:"country"`
	Phone          string   `json:"phone"`
}

// KeyStats are the key statistics for a symbol.
type KeyStats struct {
	CompanyName         string          `json:"companyName"`
	MarketCap           int64           `json:"marketcap"`
	Week52High          float64         `json:"week52high"`
	Week52Low           float64         `json:"week52low"`
	Week52Change        float64         `json:"week52change"`
	SharesOutstanding   int64           `json:"sharesOutstanding"`
	Float               int64           `json:"float"`
	Avg10Volume         float64         `json:"avg10Volume"`
	Avg30Volume         float64         `json:"avg30Volume"`
	Day200MovingAvg     float64         `json:"day200MovingAvg"`
	Day50MovingAvg      float64         `json:"day50MovingAvg"`
	Employees           int             `json:"employees"`
	TTMEPS              decimal.Decimal `json:"ttmEPS"`
	TTMDividendRate     decimal.Decimal `json:"ttmDividendRate"`
	DividendYield       float64         `json:"dividendYield"`
	PERatio             float64         `json:"peRatio"`
	Beta                float64         `json:"beta"`
	MaxChangePercent    float64         `json:"maxChangePercent"`
	Year5ChangePercent  float64         `json:"year5ChangePercent"`
	Year2ChangePercent  float64         `json:"year2ChangePercent"`
	Year1ChangePercent  float64         `json:"year1ChangePercent"`
	YTDChangePercent    float64         `json:"ytdChangePercent"`
	Month6ChangePercent float64         `json:"month6ChangePercent"`
	Month3ChangePercent float64         `json:"month3ChangePercent"`
	Month1ChangePercent float64         `json:"month1ChangePercent"`
	Day30ChangePercent  float64         `json:"day30ChangePercent"`
	Day5ChangePercent   float64         `json:"day5ChangePercent"`
}

// Dividend is a single dividend record.
type Dividend struct {
	Symbol       string          `json:"symbol"`
	ExDate       civil.Date      `json:"exDate"`
	PaymentDate  civil.Date      `json:"paymentDate"`
	RecordDate   civil.Date      `json:"recordDate"`
	DeclaredDate civil.Date      `json:"declaredDate"`
	Amount       decimal.Decimal `json:"amount"`
	Flag         string          `json:"flag"`
	Currency     string          `json:"currency"`
	Description  string          `json:"description"`
	Frequency    string          `json:"frequency"`
}

// Split is a single stock split record.
type Split struct {
	Symbol       string          `json:"symbol"`
	ExDate       civil.Date      `json:"exDate"`
	DeclaredDate civil.Date      `json:"declaredDate"`
	Ratio        float64         `json:"ratio"`
	ToFactor     decimal.Decimal `json:"toFactor"`
	FromFactor   decimal.Decimal `json:"fromFactor"`
	Description  string          `json:"description"`
}

// Earnings is the earnings history for a symbol.
type Earnings struct {
	Symbol   string           `json:"symbol"`
	Earnings []EarningsReport `json:"earnings"`
}

// EarningsReport is one reported period of earnings.
type EarningsReport struct {
	ActualEPS            decimal.Decimal `json:"actualEPS"`
	ConsensusEPS         decimal.Decimal `json:"consensusEPS"`
	AnnounceTime         string          `json:"announceTime"`
	NumberOfEstimates    int             `json:"numberOfEstimates"`
	EPSSurpriseDollar    decimal.Decimal `json:"EPSSurpriseDollar"`
	EPSReportDate        civil.Date      `json:"EPSReportDate"`
	FiscalPeriod         string          `json:"fiscalPeriod"`
	FiscalEndDate        civil.Date      `json:"fiscalEndDate"`
	YearAgo              decimal.Decimal `json:"yearAgo"`
	YearAgoChangePercent float64         `json:"yearAgoChangePercent"`
}

// Financials is the income statement history for a symbol.
type Financials struct {
	Symbol     string             `json:"symbol"`
	Financials []FinancialsReport `json:"financials"`
}

// FinancialsReport is one reported period of financials.
type FinancialsReport struct {
	ReportDate             civil.Date      `json:"reportDate"`
	Revenue                decimal.Decimal `json:"totalRevenue"`
	CostOfRevenue          decimal.Decimal `json:"costOfRevenue"`
	GrossProfit            decimal.Decimal `json:"grossProfit"`
	ResearchAndDevelopment decimal.Decimal `json:"researchAndDevelopment"`
	OperatingExpense       decimal.Decimal `json:"operatingExpense"`
	OperatingIncome        decimal.Decimal `json:"operatingIncome"`
	NetIncome              decimal.Decimal `json:"netIncome"`
	CashFlow               decimal.Decimal `json:"cashFlow"`
	TotalAssets            decimal.Decimal `json:"totalAssets"`
	TotalLiabilities       decimal.Decimal `json:"totalLiabilities"`
	TotalCash              decimal.Decimal `json:"totalCash"`
	TotalDebt              decimal.Decimal `json:"totalDebt"`
	ShareholderEquity      decimal.Decimal `json:"shareholderEquity"`
}

// BalanceSheet is the balance sheet history for a symbol.
type BalanceSheet struct {
	Symbol       string              `json:"symbol"`
	BalanceSheet []BalanceSheetEntry `json:"balancesheet"`
}

// BalanceSheetEntry is one reported period of the balance sheet.
type BalanceSheetEntry struct {
	ReportDate           civil.Date      `json:"reportDate"`
	CurrentCash          decimal.Decimal `json:"currentCash"`
	ShortTermInvestments decimal.Decimal `json:"shortTermInvestments"`
	Receivables          decimal.Decimal `json:"receivables"`
	Inventory            decimal.Decimal `json:"inventory"`
	CurrentAssets        decimal.Decimal `json:"currentAssets"`
	TotalAssets          decimal.Decimal `json:"totalAssets"`
	CurrentDebt          decimal.Decimal `json:"currentDebt"`
	LongTermDebt         decimal.Decimal `json:"longTermDebt"`
	TotalLiabilities     decimal.Decimal `json:"totalLiabilities"`
	ShareholderEquity    decimal.Decimal `json:"shareholderEquity"`
}

// News is a single news item.
type News struct {
	Datetime   int64  `json:"datetime"`
	Headline   string `json:"headline"`
	Source     string `json:"source"`
	URL        string `json:"url"`
	Summary    string `json:"summary"`
	Related    string `json:"related"`
	Image      string `json:"image"`
	Lang       string `json:"lang"`
	HasPaywall bool   `json:"hasPaywall"`
}

// Book is the order book for a symbol.
type Book struct {
	Quote       Quote        `json:"quote"`
	Bids        []BookEntry  `json:"bids"`
	Asks        []BookEntry  `json:"asks"`
	Trades      []BookTrade  `json:"trades"`
	SystemEvent *SystemEvent `json:"systemEvent"`
}

// BookEntry is a single level of the order book.
type BookEntry struct {
	Price     decimal.Decimal `json:"price"`
	Size      int64           `json:"size"`
	Timestamp int64           `json:"timestamp"`
}

// BookTrade is a single trade report within the book response.
type BookTrade struct {
	Price                 decimal.Decimal `json:"price"`
	Size                  int64           `json:"size"`
	TradeID               int64           `json:"tradeId"`
	IsISO                 bool            `json:"isISO"`
	IsOddLot              bool            `json:"isOddLot"`
	IsOutsideRegularHours bool            `json:"isOutsideRegularHours"`
	IsSinglePriceCross    bool            `json:"isSinglePriceCross"`
	IsTradeThroughExempt  bool            `json:"isTradeThroughExempt"`
	Timestamp             int64           `json:"timestamp"`
}

// SystemEvent is the market system event within the book response.
type SystemEvent struct {
	SystemEvent string `json:"systemEvent"`
	Timestamp   int64  `json:"timestamp"`
}

// Symbol is a reference-data symbol record.
type Symbol struct {
	Symbol    string     `json:"symbol"`
	Exchange  string     `json:"exchange"`
	Name      string     `json:"name"`
	Date      civil.Date `json:"date"`
	Type      string     `json:"type"`
	IEXID     string     `json:"iexId"`
	Region    string     `json:"region"`
	Currency  string     `json:"currency"`
	IsEnabled bool       `json:"isEnabled"`
	FIGI      string     `json:"figi"`
	CIK       string     `json:"cik"`
}

// Usage is the account message usage summary. Requires a secret token.
type Usage struct {
	MonthlyUsage      int64            `json:"monthlyUsage"`
	MonthlyPayAsYouGo int64            `json:"monthlyPayAsYouGo"`
	NotificationLimit int64            `json:"notificationLimit"`
	KeyUsage          map[string]int64 `json:"keyUsage"`
}

// RuleOutput is a notification target of a rule.
type RuleOutput struct {
	Frequency int    `json:"frequency"`
	Method    string `json:"method"`
	To        string `json:"to"`
}

// RuleRequest is the payload for creating a rule.
type RuleRequest struct {
	Token          string          `json:"token,omitempty"`
	RuleSet        string          `json:"ruleSet"`
	Type           string          `json:"type"`
	RuleName       string          `json:"ruleName"`
	Conditions     [][]interface{} `json:"conditions"`
	Outputs        []RuleOutput    `json:"outputs"`
	AdditionalKeys []string        `json:"additionalKeys,omitempty"`
}

// Rule is a stored rule as returned by the rules endpoints.
type Rule struct {
	ID         string          `json:"id"`
	RuleSet    string          `json:"ruleSet"`
	Type       string          `json:"type"`
	RuleName   string          `json:"ruleName"`
	Conditions [][]interface{} `json:"conditions"`
	Outputs    []RuleOutput    `json:"outputs"`
	IsPaused   bool            `json:"isPaused"`
}

// RuleID is the response of rule creation.
type RuleID struct {
	ID     string `json:"id"`
	Weight int    `json:"weight"`
}

// BatchResult holds the per-type raw payloads of a batch call for one
// symbol. Values are decoded lazily by the caller since each type has its
// own shape.
type BatchResult map[string]json.RawMessage
