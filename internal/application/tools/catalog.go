package tools

import (
	"context"

	"github.com/damon-houk/lkr-exchange-tools/internal/application/service"
	"github.com/damon-houk/lkr-exchange-tools/internal/domain/entity"
	"github.com/damon-houk/lkr-exchange-tools/internal/domain/toolerror"
)

// Tool names
const (
	ToolGetExchangeRates = "get_exchange_rates"
	ToolConvertCurrency  = "convert_currency"
	ToolGetCurrencyTrend = "get_currency_trend"
)

// RatesLister lists current rates
type RatesLister interface {
	GetRate(ctx context.Context, currency string) (*service.SingleRateResult, error)
	GetAllRates(ctx context.Context) (*service.AllRatesResult, error)
}

// Converter converts amounts between currencies
type Converter interface {
	Convert(ctx context.Context, req service.ConversionRequest) (*service.ConversionResult, error)
}

// TrendGenerator produces a simulated rate trend
type TrendGenerator interface {
	Trend(ctx context.Context, currency string, days int) (*service.TrendResult, error)
	MaxDays() int
}

func buildCatalog(rates RatesLister, converter Converter, trend TrendGenerator) []Tool {
	return []Tool{
		{
			Name:        ToolGetExchangeRates,
			Description: "Get current Sri Lankan Rupee (LKR) exchange rates. Returns buying and selling rates for one currency or for every available currency.",
			InputSchema: ObjectSchema(map[string]*JSONSchema{
				"currency": StringProp(`Currency code such as USD or EUR, or "ALL" for every currency`).WithDefault(service.AllCurrencies),
			}),
			handler: func(ctx context.Context, args map[string]any) (any, error) {
				var in ratesArgs
				if err := bindArgs(args, &in); err != nil {
					return nil, err
				}

				code := entity.NormalizeCode(in.Currency)
				if code == "" || code == service.AllCurrencies {
					return rates.GetAllRates(ctx)
				}
				return rates.GetRate(ctx, code)
			},
		},
		{
			Name:        ToolConvertCurrency,
			Description: "Convert an amount between currencies using current bank rates, pivoting through LKR.",
			InputSchema: ObjectSchema(map[string]*JSONSchema{
				"amount":        NumberProp("Amount to convert, greater than zero"),
				"from_currency": StringProp("Source currency code"),
				"to_currency":   StringProp("Target currency code"),
				"rate_type": EnumProp("Which side of the bank quote to use",
					string(entity.RateBuying), string(entity.RateSelling)).WithDefault(string(entity.RateSelling)),
			}, "amount", "from_currency", "to_currency"),
			handler: func(ctx context.Context, args map[string]any) (any, error) {
				var in convertArgs
				if err := bindArgs(args, &in); err != nil {
					return nil, err
				}
				if in.Amount == nil {
					return nil, toolerror.InvalidParams("amount is required")
				}

				return converter.Convert(ctx, service.ConversionRequest{
					Amount:       *in.Amount,
					FromCurrency: in.FromCurrency,
					ToCurrency:   in.ToCurrency,
					RateType:     entity.RateType(in.RateType),
				})
			},
		},
		{
			Name:        ToolGetCurrencyTrend,
			Description: "Get a SIMULATED daily trend for a currency against LKR. Points are random perturbations of the current selling rate, not historical data.",
			InputSchema: ObjectSchema(map[string]*JSONSchema{
				"currency": StringProp("Currency code such as USD"),
				"days": IntProp("Number of days to simulate, ending today").
					WithDefault(service.DefaultTrendDays).
					WithRange(1, float64(trend.MaxDays())),
			}, "currency"),
			handler: func(ctx context.Context, args map[string]any) (any, error) {
				var in trendArgs
				if err := bindArgs(args, &in); err != nil {
					return nil, err
				}

				days := service.DefaultTrendDays
				if in.Days != nil {
					days = *in.Days
				}
				return trend.Trend(ctx, in.Currency, days)
			},
		},
	}
}
