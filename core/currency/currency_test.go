package currency

import (
	"strings"
	"testing"

	"golang.org/x/text/language"
)

func TestIsKnownCode(t *testing.T) {
	if !IsKnownCode("usd") {
		t.Error("usd should be a known code, case-insensitively")
	}
	if !IsKnownCode(" EUR ") {
		t.Error("padded EUR should still be recognized")
	}
	if IsKnownCode("xyz") {
		t.Error("xyz should not be a known code")
	}
}

func TestExtractCurrencySymbolCodeWins(t *testing.T) {
	if got := ExtractCurrencySymbol("100 usd"); got != "USD" {
		t.Errorf("ExtractCurrencySymbol(100 usd) = %q, want USD", got)
	}
}

func TestExtractCurrencySymbolStripsNoise(t *testing.T) {
	if got := ExtractCurrencySymbol("$1,234.56"); got != "$" {
		t.Errorf("ExtractCurrencySymbol($1,234.56) = %q, want $", got)
	}
}

func TestExtractCurrencySymbolStopsAtParenthesis(t *testing.T) {
	if got := ExtractCurrencySymbol("kr500 (approx)"); got != "kr" {
		t.Errorf("ExtractCurrencySymbol(kr500 (approx)) = %q, want kr", got)
	}
}

func TestExtractNumberLocales(t *testing.T) {
	cases := []struct {
		text string
		want float64
	}{
		{"1,234.56", 1234.56},
		{"1.234,56", 1234.56},
		{"1,23", 1.23},
		{"1.234", 1.234},
		{"1.234.567", 1234.567},
		{"1 234,56", 1234.56},
		{"42", 42},
		{"3.14", 3.14},
	}
	for _, c := range cases {
		got, ok := ExtractNumber(c.text)
		if !ok {
			t.Errorf("ExtractNumber(%q): failed to parse", c.text)
			continue
		}
		if got != c.want {
			t.Errorf("ExtractNumber(%q) = %v, want %v", c.text, got, c.want)
		}
	}
}

func TestExtractNumberNoLeadingDigit(t *testing.T) {
	if _, ok := ExtractNumber("abc"); ok {
		t.Error("ExtractNumber(abc) should fail: no leading digit")
	}
}

func TestDetectCurrencyUnambiguous(t *testing.T) {
	ctx := DisambiguationContext{}
	if got := DetectCurrency("€", ctx); got != "EUR" {
		t.Errorf("DetectCurrency(€) = %q, want EUR", got)
	}
}

func TestDetectCurrencyUnknownSymbol(t *testing.T) {
	ctx := DisambiguationContext{}
	if got := DetectCurrency("###", ctx); got != "Unknown currency" {
		t.Errorf("DetectCurrency(###) = %q, want 'Unknown currency'", got)
	}
}

func TestDisambiguateByCountryCode(t *testing.T) {
	ctx := DisambiguationContext{CountryCode: "CA"}
	if got := DetectCurrency("$", ctx); got != "CAD" {
		t.Errorf("DetectCurrency($, CountryCode=CA) = %q, want CAD", got)
	}
}

func TestDisambiguateByEnglishLanguage(t *testing.T) {
	ctx := DisambiguationContext{LanguageIsEnglish: true}
	if got := DetectCurrency("$", ctx); got != "USD" {
		t.Errorf("DetectCurrency($, English) = %q, want USD", got)
	}
}

func TestDisambiguateByTLD(t *testing.T) {
	ctx := DisambiguationContext{TopLevelDomain: "au"}
	if got := DetectCurrency("$", ctx); got != "AUD" {
		t.Errorf("DetectCurrency($, TLD=au) = %q, want AUD", got)
	}
}

func TestDisambiguateFallsBackToFirstCandidate(t *testing.T) {
	ctx := DisambiguationContext{}
	got := DetectCurrency("$", ctx)
	if got != symbolToCodes["$"][0] {
		t.Errorf("DetectCurrency($, no context) = %q, want first candidate %q", got, symbolToCodes["$"][0])
	}
}

func TestFormatCurrencyIncludesCodeAndSymbol(t *testing.T) {
	got := FormatCurrency(85, "EUR", "en-US")
	if !strings.Contains(got, "85.00") {
		t.Errorf("FormatCurrency(85, EUR) = %q, want it to contain '85.00'", got)
	}
	if !strings.Contains(got, "EUR") {
		t.Errorf("FormatCurrency(85, EUR) = %q, want it to contain the code EUR", got)
	}
}

func TestFormatCurrencyRoundsToTwoDecimals(t *testing.T) {
	got := FormatCurrency(1.005, "USD", "en-US")
	if !strings.HasPrefix(got, "1.00") && !strings.HasPrefix(got, "1.01") {
		t.Errorf("FormatCurrency(1.005, USD) = %q, want a two-decimal rounded amount", got)
	}
}

func TestFormatCurrencyUnknownCodeStillFormats(t *testing.T) {
	got := FormatCurrency(10, "ZZZ", "en-US")
	if !strings.Contains(got, "ZZZ") {
		t.Errorf("FormatCurrency(10, ZZZ) = %q, want it to still print the code", got)
	}
}

// TestSymbolForCodeBareGlyph proves the golang.org/x/text/currency
// Amount-wrapped Symbol lookup is stripped back down to a bare symbol,
// not left bundled with a formatted numeric value.
func TestSymbolForCodeBareGlyph(t *testing.T) {
	sym := symbolForCode("USD", language.AmericanEnglish)
	if strings.ContainsAny(sym, "0123456789") {
		t.Errorf("symbolForCode(USD) = %q, want no digits left over from the Amount(0) formatting", sym)
	}
	if sym == "" {
		t.Error("symbolForCode(USD) returned empty string, want a currency symbol")
	}
}
