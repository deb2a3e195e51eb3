package tools

import (
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/damon-houk/lkr-exchange-tools/internal/domain/toolerror"
)

type ratesArgs struct {
	Currency string `mapstructure:"currency"`
}

type convertArgs struct {
	Amount       *float64 `mapstructure:"amount"`
	FromCurrency string   `mapstructure:"from_currency"`
	ToCurrency   string   `mapstructure:"to_currency"`
	RateType     string   `mapstructure:"rate_type"`
}

type trendArgs struct {
	Currency string `mapstructure:"currency"`
	Days     *int   `mapstructure:"days"`
}

// bindArgs decodes loosely typed call arguments into out. Numbers given as
// strings are accepted; keys match case-insensitively ignoring '_' and '-'.
func bindArgs(input map[string]any, out any) error {
	if len(input) == 0 {
		return nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "mapstructure",
		Result:           out,
		WeaklyTypedInput: true,
		MatchName: func(mapKey, fieldName string) bool {
			return normalizeKey(mapKey) == normalizeKey(fieldName)
		},
	})
	if err != nil {
		return toolerror.Internal(err)
	}

	if err := decoder.Decode(input); err != nil {
		return toolerror.InvalidParams("invalid arguments: %v", err)
	}
	return nil
}

func normalizeKey(value string) string {
	value = strings.ToLower(value)
	value = strings.ReplaceAll(value, "_", "")
	return strings.ReplaceAll(value, "-", "")
}
