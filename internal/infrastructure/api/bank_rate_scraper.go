package api

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/damon-houk/lkr-exchange-tools/internal/domain/entity"
	"github.com/damon-houk/lkr-exchange-tools/internal/domain/service"
	"github.com/damon-houk/lkr-exchange-tools/internal/infrastructure/logger"
)

const (
	// DefaultBankRatesURL is the Commercial Bank of Ceylon rates page
	DefaultBankRatesURL = "https://www.combank.lk/rates-tariff#exchange-rates"

	// DefaultUserAgent mimics a desktop browser; the bank page rejects bare clients
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
)

var (
	quotedCodePattern   = regexp.MustCompile(`\(([A-Z]{3})\)`)
	currencyCodePattern = regexp.MustCompile(`\b[A-Z]{3}\b`)
)

// BankRateScraper reads buy/sell quotes from the rate table on a bank web page
type BankRateScraper struct {
	pageURL    string
	userAgent  string
	httpClient *http.Client
	logger     logger.Logger
	now        func() time.Time
}

// NewBankRateScraper creates a scraper for pageURL
func NewBankRateScraper(pageURL, userAgent string, httpClient *http.Client, log logger.Logger) *BankRateScraper {
	if pageURL == "" {
		pageURL = DefaultBankRatesURL
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &BankRateScraper{
		pageURL:    pageURL,
		userAgent:  userAgent,
		httpClient: newHTTPClient(httpClient, DefaultTimeout),
		logger:     log,
		now:        time.Now,
	}
}

// Name identifies the scraper in logs and metrics
func (s *BankRateScraper) Name() string { return "bank_page" }

// FetchRates downloads the page and extracts one entry per qualifying table row
func (s *BankRateScraper) FetchRates(ctx context.Context) (entity.RateTable, error) {
	body, err := getBody(ctx, s.httpClient, s.pageURL, map[string]string{
		"User-Agent":      s.userAgent,
		"Accept":          "text/html,application/xhtml+xml",
		"Accept-Language": "en-US,en;q=0.9",
	})
	if err != nil {
		return nil, fmt.Errorf("bank page: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse bank page HTML: %w", err)
	}

	table := parseRateRows(doc, s.now().UTC().Format(time.RFC3339))
	if len(table) == 0 {
		return nil, service.ErrNoRates
	}

	s.logger.Debug("Scraped bank rates", map[string]interface{}{
		"url":        s.pageURL,
		"currencies": len(table),
	})

	return table, nil
}

// parseRateRows walks every table row with at least three td/th cells.
// The first cell is the currency label, the next two are buying and selling.
// Header rows made only of th cells are skipped.
func parseRateRows(doc *goquery.Document, timestamp string) entity.RateTable {
	table := make(entity.RateTable)

	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td, th")
		if cells.Length() < 3 || row.Find("td").Length() == 0 {
			return
		}

		label := strings.TrimSpace(cells.Eq(0).Text())
		if label == "" {
			return
		}

		code := currencyCode(label)
		if _, seen := table[code]; seen {
			return
		}

		table[code] = entity.RateEntry{
			Currency:  code,
			Buying:    parseRate(cells.Eq(1).Text()),
			Selling:   parseRate(cells.Eq(2).Text()),
			Source:    entity.SourcePrimary,
			Timestamp: timestamp,
		}
	})

	return table
}

// currencyCode picks the ISO-like code out of labels such as "US Dollar (USD)".
// A parenthesised code wins, then the last three-letter token, so country
// acronyms like "UAE" or "USA" in front of the code are ignored.
func currencyCode(label string) string {
	if m := quotedCodePattern.FindStringSubmatch(label); m != nil {
		return m[1]
	}
	if codes := currencyCodePattern.FindAllString(label, -1); len(codes) > 0 {
		return codes[len(codes)-1]
	}
	return entity.NormalizeCode(strings.Join(strings.Fields(label), " "))
}

// parseRate reads a quoted number; anything unparseable counts as 0
func parseRate(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
