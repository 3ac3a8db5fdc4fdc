package bankdata

import "strings"

// numericCurrencies maps ISO 4217 numeric codes, as used in Norma 43 records,
// to their alphabetic codes.
var numericCurrencies = map[string]string{
	"036": "AUD",
	"124": "CAD",
	"156": "CNY",
	"208": "DKK",
	"392": "JPY",
	"484": "MXN",
	"504": "MAD",
	"578": "NOK",
	"752": "SEK",
	"756": "CHF",
	"826": "GBP",
	"840": "USD",
	"978": "EUR",
	"985": "PLN",
	"986": "BRL",
}

// CurrencyFromNumeric converts an ISO 4217 numeric code ("978") to its
// alphabetic code ("EUR").
func CurrencyFromNumeric(code string) (string, bool) {
	alpha, ok := numericCurrencies[strings.TrimSpace(code)]
	return alpha, ok
}
