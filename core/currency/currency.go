// Package currency is C3 Currency Utilities: symbol/code extraction,
// locale-tolerant number parsing, ambiguous-symbol disambiguation, and
// final amount formatting.
package currency

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// symbolToCodes maps a currency symbol to its candidate ISO codes. A
// single-element slice is unambiguous; longer slices require
// DisambiguateSymbol.
var symbolToCodes = map[string][]string{
	"$":  {"USD", "CAD", "AUD", "NZD", "MXN", "HKD", "SGD"},
	"€":  {"EUR"},
	"£":  {"GBP"},
	"¥":  {"JPY", "CNY"},
	"₹":  {"INR"},
	"₩":  {"KRW"},
	"₽":  {"RUB"},
	"₺":  {"TRY"},
	"R$": {"BRL"},
	"kr": {"SEK", "NOK", "DKK"},
	"zł": {"PLN"},
	"₪":  {"ILS"},
	"₫":  {"VND"},
	"฿":  {"THB"},
	"₴":  {"UAH"},
}

// knownCodes is the set of 3-letter ISO codes the detector and C3
// recognize as generic currency tokens.
var knownCodes = map[string]bool{
	"USD": true, "EUR": true, "GBP": true, "JPY": true, "CNY": true,
	"INR": true, "KRW": true, "RUB": true, "TRY": true, "BRL": true,
	"CAD": true, "AUD": true, "NZD": true, "MXN": true, "CHF": true,
	"SEK": true, "NOK": true, "DKK": true, "ZAR": true, "SGD": true,
	"HKD": true, "THB": true, "IDR": true, "PHP": true, "MYR": true,
	"VND": true, "PLN": true, "CZK": true, "HUF": true, "ILS": true,
	"AED": true, "SAR": true, "EGP": true, "UAH": true,
}

// IsKnownCode reports whether text is a recognized 3-letter currency code.
func IsKnownCode(text string) bool {
	return knownCodes[strings.ToUpper(strings.TrimSpace(text))]
}

var threeLetterToken = regexp.MustCompile(`\b[A-Za-z]{3}\b`)

// ExtractCurrencySymbol implements spec §4.3's rule: a standalone,
// case-insensitive three-letter token that maps to a known code wins;
// otherwise strip digits/whitespace/commas/periods/apostrophes and take
// everything up to the first parenthesis.
func ExtractCurrencySymbol(text string) string {
	for _, tok := range threeLetterToken.FindAllString(text, -1) {
		if IsKnownCode(tok) {
			return strings.ToUpper(tok)
		}
	}
	stripped := stripNumericNoise(text)
	if idx := strings.Index(stripped, "("); idx >= 0 {
		stripped = stripped[:idx]
	}
	return strings.TrimSpace(stripped)
}

var numericNoise = regexp.MustCompile(`[0-9\s,.']`)

func stripNumericNoise(text string) string {
	return numericNoise.ReplaceAllString(text, "")
}

// numberPrefix matches the longest leading run of digits interspersed
// with '.', ',', '\''.
var numberPrefix = regexp.MustCompile(`^[0-9][0-9.,' ]*`)

// ExtractNumber implements the locale-tolerant parser of spec §4.3.
func ExtractNumber(text string) (float64, bool) {
	text = strings.TrimSpace(text)
	match := numberPrefix.FindString(text)
	if match == "" {
		return 0, false
	}
	match = strings.ReplaceAll(match, "'", "")
	match = strings.ReplaceAll(match, " ", "")

	hasDot := strings.Contains(match, ".")
	hasComma := strings.Contains(match, ",")

	var normalized string
	switch {
	case hasDot && hasComma:
		lastDot := strings.LastIndex(match, ".")
		lastComma := strings.LastIndex(match, ",")
		if lastComma > lastDot {
			// comma is decimal separator; dots are thousands
			normalized = strings.ReplaceAll(match[:lastComma], ".", "") + "." + match[lastComma+1:]
		} else {
			// dot is decimal separator; commas are thousands
			normalized = strings.ReplaceAll(match[:lastDot], ",", "") + match[lastDot:]
		}
	case hasComma:
		lastComma := strings.LastIndex(match, ",")
		if len(match)-lastComma-1 == 2 {
			// comma followed by exactly two digits at end -> decimal
			normalized = match[:lastComma] + "." + match[lastComma+1:]
		} else {
			normalized = strings.ReplaceAll(match, ",", "")
		}
	case hasDot:
		dots := strings.Count(match, ".")
		if dots > 1 {
			lastDot := strings.LastIndex(match, ".")
			normalized = strings.ReplaceAll(match[:lastDot], ".", "") + match[lastDot:]
		} else {
			dot := strings.Index(match, ".")
			after := len(match) - dot - 1
			before := dot
			if after == 3 && before >= 4 {
				normalized = strings.ReplaceAll(match, ".", "")
			} else {
				normalized = match
			}
		}
	default:
		normalized = match
	}

	v, err := strconv.ParseFloat(normalized, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// DisambiguationContext carries the page-locale heuristics used to resolve
// an ambiguous symbol per spec §4.3.
type DisambiguationContext struct {
	// CountryCode is the page locale's country, e.g. "US", "GB".
	CountryCode string
	// LanguageIsEnglish is true when the page's language is English.
	LanguageIsEnglish bool
	// TopLevelDomain is the page's TLD, e.g. "uk", "ca", without the dot.
	TopLevelDomain string
}

var countryToCode = map[string]string{
	"US": "USD", "CA": "CAD", "AU": "AUD", "NZ": "NZD", "MX": "MXN",
	"HK": "HKD", "SG": "SGD", "GB": "GBP",
}

var tldToCode = map[string]string{
	"us": "USD", "ca": "CAD", "au": "AUD", "nz": "NZD", "mx": "MXN",
	"hk": "HKD", "sg": "SGD", "uk": "GBP",
}

// DetectCurrency looks up a symbol or code and disambiguates if needed.
// Returns "Unknown currency" when nothing matches, per spec §4.3.
func DetectCurrency(symbolOrCode string, ctx DisambiguationContext) string {
	trimmed := strings.TrimSpace(symbolOrCode)
	if IsKnownCode(trimmed) {
		return strings.ToUpper(trimmed)
	}
	candidates, ok := symbolToCodes[trimmed]
	if !ok {
		return "Unknown currency"
	}
	if len(candidates) == 1 {
		return candidates[0]
	}
	return disambiguate(candidates, ctx)
}

func disambiguate(candidates []string, ctx DisambiguationContext) string {
	contains := func(list []string, v string) bool {
		for _, c := range list {
			if c == v {
				return true
			}
		}
		return false
	}
	// (a) page country code
	if code, ok := countryToCode[strings.ToUpper(ctx.CountryCode)]; ok && contains(candidates, code) {
		return code
	}
	// (b) USD + English
	if ctx.LanguageIsEnglish && contains(candidates, "USD") {
		return "USD"
	}
	// (c) TLD map
	if code, ok := tldToCode[strings.ToLower(ctx.TopLevelDomain)]; ok && contains(candidates, code) {
		return code
	}
	// (d) first candidate
	return candidates[0]
}

// FormatCurrency renders "NNN.NN CCC SYM" with locale-aware grouping via
// golang.org/x/text, and two fixed fraction digits via shopspring/decimal
// so that the rounding boundary matches exactly what is displayed.
func FormatCurrency(amount float64, code string, locale string) string {
	code = strings.ToUpper(code)
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.AmericanEnglish
	}
	rounded := decimal.NewFromFloat(amount).Round(2)
	printer := message.NewPrinter(tag)
	grouped := printer.Sprintf("%.2f", rounded.InexactFloat64())

	sym := symbolForCode(code, tag)
	if sym != "" && sym != code {
		return strings.TrimSpace(grouped + " " + code + " " + sym)
	}
	return strings.TrimSpace(grouped + " " + code)
}

// symbolNoise strips everything currency.Symbol renders around the bare
// symbol (digits, grouping, decimal point) when formatting a zero amount,
// since x/text/currency only exposes symbol lookup bundled with a value.
var symbolNoise = regexp.MustCompile(`[0-9,.\s]`)

func symbolForCode(code string, tag language.Tag) string {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return ""
	}
	printer := message.NewPrinter(tag)
	formatted := printer.Sprintf("%v", currency.Symbol(unit.Amount(0)))
	return symbolNoise.ReplaceAllString(formatted, "")
}
