// Package detect is C4, the Conversion Detector: a single function,
// FindConversion, that matches a trimmed one-line selection against a
// fixed-precedence pattern table and emits at most one Conversion.
package detect

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"measureconvert/core/convert"
	"measureconvert/core/currency"
	"measureconvert/core/types"
	"measureconvert/core/units"
)

// Detector is C4. It holds references to the shared registry, converter,
// the currency disambiguation context, and its (built-once) pattern
// table, mirroring spec §9's guidance that pattern tables should be
// constructed at startup, not per request.
type Detector struct {
	registry  *units.Registry
	converter *convert.Converter
	currCtx   currency.DisambiguationContext
	patterns  map[types.Dimension]*regexp.Regexp
}

// New builds a detector over the shared registry/converter.
func New(registry *units.Registry, converter *convert.Converter, currCtx currency.DisambiguationContext) *Detector {
	return &Detector{
		registry:  registry,
		converter: converter,
		currCtx:   currCtx,
		patterns:  buildPatterns(),
	}
}

// dimensionOrder is the single-unit resolution priority from spec §4.4.
// Length is checked before torque so "nm" (nanometer) wins by default;
// torque is checked before weight so "lb·ft" wins over bare "lb".
var dimensionOrder = []types.Dimension{
	types.Length,
	types.Torque,
	types.TimezoneDim,
	types.Area,
	types.Speed,
	types.Acceleration,
	types.FlowRate,
	types.Pressure,
	types.Temperature,
	types.Volume,
	types.Weight,
}

// FindConversion is the detector's sole entry point. text must already be
// trimmed and single-line; a caller-provided newline aborts processing.
func (d *Detector) FindConversion(text string, settings types.UserSettings) *types.Conversion {
	if strings.ContainsAny(text, "\n\r") {
		return nil
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	if conv := d.matchDimensions3D(text, settings); conv != nil {
		return conv
	}
	if conv := d.matchCurrency(text, settings); conv != nil {
		return conv
	}
	return d.matchSingleUnit(text, settings)
}

// --- Dimensions (3-axis) ---------------------------------------------------

var dim3Re = regexp.MustCompile(`(?i)(-?\d+(?:\.\d+)?)\s*([a-z]+)?\s*[x×]\s*(-?\d+(?:\.\d+)?)\s*([a-z]+)?\s*[x×]\s*(-?\d+(?:\.\d+)?)\s*([a-z]+)`)

func (d *Detector) matchDimensions3D(text string, settings types.UserSettings) *types.Conversion {
	loc := dim3Re.FindStringSubmatchIndex(text)
	if loc == nil {
		return nil
	}
	matched := text[loc[0]:loc[1]]
	if float64(len(matched))/float64(len(text)) < 0.80 {
		return nil
	}
	groups := dim3Re.FindStringSubmatch(text)
	lastUnit, ok := d.registry.Canonicalize(groups[6])
	if !ok {
		return nil
	}
	if dim, ok := d.registry.DimensionOf(lastUnit); !ok || dim != types.Length {
		return nil
	}

	axisUnit := func(token string) types.Unit {
		if token == "" {
			return lastUnit
		}
		if u, ok := d.registry.Canonicalize(token); ok {
			if ud, ok := d.registry.DimensionOf(u); ok && ud == types.Length {
				return u
			}
		}
		return lastUnit
	}

	l, _ := strconv.ParseFloat(groups[1], 64)
	w, _ := strconv.ParseFloat(groups[3], 64)
	h, _ := strconv.ParseFloat(groups[5], 64)

	target, hasTarget := d.converter.GetDefaultTargetUnit(lastUnit, settings)
	if !hasTarget {
		target = lastUnit
	}

	lFrom, wFrom, hFrom := axisUnit(groups[2]), axisUnit(groups[4]), axisUnit(groups[6])

	axisBestUnit := func(value float64, from types.Unit) types.Unit {
		converted, ok := d.converter.Convert(value, from, target)
		if !ok {
			return target
		}
		_, bestUnit := d.converter.GetBestUnit(converted, types.Length, target, from)
		return bestUnit
	}

	lu := axisBestUnit(l, lFrom)
	wu := axisBestUnit(w, wFrom)
	hu := axisBestUnit(h, hFrom)

	finalUnit := convert.HarmonizeDimensions3D([3]types.Unit{lu, wu, hu}, target)
	lv, _ := d.converter.Convert(l, lFrom, finalUnit)
	wv, _ := d.converter.Convert(w, wFrom, finalUnit)
	hv, _ := d.converter.Convert(h, hFrom, finalUnit)

	return &types.Conversion{
		OriginalText:  matched,
		OriginalValue: l,
		OriginalUnit:  lFrom,
		Dimensions3D: &types.Dimensions3D{
			L:    convert.RoundHalfAwayFromZero(lv, 2),
			W:    convert.RoundHalfAwayFromZero(wv, 2),
			H:    convert.RoundHalfAwayFromZero(hv, 2),
			Unit: finalUnit,
		},
	}
}

// --- Currency ----------------------------------------------------------

var currencyCodeToken = regexp.MustCompile(`\b[A-Za-z]{3}\b`)

func (d *Detector) matchCurrency(text string, settings types.UserSettings) *types.Conversion {
	symbols := make([]string, 0, len(currencySymbolSet))
	for sym := range currencySymbolSet {
		symbols = append(symbols, sym)
	}
	sort.Slice(symbols, func(i, j int) bool { return len(symbols[i]) > len(symbols[j]) })

	var fromCode, numText string
	for _, sym := range symbols {
		if !strings.Contains(text, sym) {
			continue
		}
		code := currency.DetectCurrency(sym, d.currCtx)
		if code == "Unknown currency" {
			continue
		}
		fromCode = code
		numText = strings.TrimSpace(strings.Replace(text, sym, " ", 1))
		break
	}

	if fromCode == "" {
		if tok := currencyCodeToken.FindString(text); tok != "" && currency.IsKnownCode(tok) {
			fromCode = strings.ToUpper(tok)
			numText = strings.TrimSpace(strings.Replace(text, tok, " ", 1))
		}
	}

	if fromCode == "" {
		return nil
	}
	amount, ok := currency.ExtractNumber(numText)
	if !ok {
		return nil
	}
	toCode := strings.ToUpper(settings.CurrencyUnit)
	if toCode == "" {
		toCode = "USD"
	}
	if fromCode == toCode {
		return nil
	}
	return &types.Conversion{
		OriginalText:  text,
		OriginalValue: amount,
		OriginalUnit:  types.Unit(strings.ToLower(fromCode)),
		CurrencyPending: &types.CurrencyPending{
			FromCode: fromCode,
			ToCode:   toCode,
			Amount:   amount,
		},
	}
}

var currencySymbolSet = map[string]bool{
	"$": true, "€": true, "£": true, "¥": true, "₹": true, "₩": true,
	"₽": true, "₺": true, "R$": true, "kr": true, "zł": true, "₪": true,
	"₫": true, "฿": true, "₴": true,
}

// --- Single unit ---------------------------------------------------------

const numRe = `(-?\d+(?:\.\d+)?)`

// unitTerminator ends a unit token at a non-alphanumeric character or end
// of string. Go's regexp (RE2) has no lookahead, and \b fails to match
// after Unicode suffixes like "m²" or "°C" since neither side is a "word"
// character there, so the terminator is written as a consumed, unanchored
// character class instead.
const unitTerminator = `(?:[^\p{L}\p{N}]|$)`

func buildAlternation(forms ...string) *regexp.Regexp {
	sorted := append([]string(nil), forms...)
	sort.Slice(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })
	escaped := make([]string, len(sorted))
	for i, f := range sorted {
		escaped[i] = regexp.QuoteMeta(f)
	}
	return regexp.MustCompile(`(?i)` + numRe + `\s*(` + strings.Join(escaped, "|") + `)` + unitTerminator)
}

// bareNmRe matches torque's case-sensitive bare "Nm" surface form; unlike
// every other pattern it must NOT be case-insensitive, or it would swallow
// length's "nm" (nanometer).
var bareNmRe = regexp.MustCompile(numRe + `\s*(Nm)` + unitTerminator)

func buildPatterns() map[types.Dimension]*regexp.Regexp {
	return map[types.Dimension]*regexp.Regexp{
		types.Length: buildAlternation(
			"kilometers", "kilometres", "centimeters", "centimetres",
			"millimeters", "millimetres", "micrometers", "microns",
			"nanometers", "nanometres", "meters", "metres", "inches",
			"inch", "feet", "foot", "yards", "yard", "miles", "mile",
			"km", "cm", "mm", "um", "nm", "m", "in", "ft", "yd", "mi"),
		types.Torque: regexp.MustCompile(`(?i)` + numRe + `\s*(N\s?[·⋅.\-]\s?m|lb\s?[·⋅.\-]?\s?(?:ft|foot|feet)|lb\s?[·⋅.\-]?\s?(?:in|inch)|kgf?\s?[·⋅.\-]\s?m|oz\s?[·⋅.\-]?\s?in)` + unitTerminator),
		types.Area: buildAlternation(
			"square kilometers", "square kilometres", "square meters",
			"square metres", "square centimeters", "square feet",
			"square foot", "square inches", "square inch", "acres",
			"acre", "km2", "km²", "m2", "m²", "cm2", "cm²", "mm2", "mm²",
			"ft2", "ft²", "in2", "in²"),
		types.Speed: buildAlternation(
			"kilometers per hour", "kilometres per hour",
			"miles per hour", "feet per second", "knots", "knot",
			"kmh", "kph", "km/h", "mph", "ft/s", "fts", "kn", "mach", "ms", "m/s"),
		types.Acceleration: buildAlternation(
			"meters per second squared", "feet per second squared",
			"g-force", "ms2", "m/s²", "fts2", "ft/s²", "g"),
		types.FlowRate: buildAlternation(
			"cubic meters per hour", "gallons per minute",
			"liters per minute", "milliliters per second",
			"cubic feet per minute", "cubic feet per second",
			"lmin", "l/min", "mls", "ml/s", "m3h", "m³/h", "galmin",
			"gal/min", "gpm", "cfm", "cfs"),
		types.Pressure: buildAlternation(
			"kilopascals", "kilopascal", "megapascals", "megapascal",
			"pascals", "pascal", "millibars", "millibar", "atmospheres",
			"atmosphere", "kpa", "mpa", "pa", "bar", "mbar", "psi", "atm",
			"mmhg", "inhg", "torr", "psf"),
		types.Temperature: buildAlternation(
			"celsius", "centigrade", "fahrenheit", "kelvin", "°c", "°f",
			"c", "f", "k"),
		types.Volume: buildAlternation(
			"fluid ounces", "fluid ounce", "tablespoons", "tablespoon",
			"teaspoons", "teaspoon", "gallons", "gallon", "quarts",
			"quart", "pints", "pint", "cups", "cup", "liters", "litres",
			"liter", "litre", "milliliters", "millilitres", "fl oz",
			"floz", "l", "ml", "gal", "qt", "pt", "tbsp", "tsp"),
		types.Weight: buildAlternation(
			"kilograms", "kilogram", "milligrams", "milligram", "grams",
			"gram", "pounds", "pound", "ounces", "ounce", "tonnes",
			"tonne", "kg", "mg", "g", "lbs", "lb", "oz", "t"),
	}
}

func (d *Detector) matchSingleUnit(text string, settings types.UserSettings) *types.Conversion {
	for _, dim := range dimensionOrder {
		if dim == types.TimezoneDim {
			if conv := d.matchTimezone(text, settings); conv != nil {
				return conv
			}
			continue
		}
		if conv := d.matchLinearDimension(dim, text, settings); conv != nil {
			return conv
		}
	}
	return nil
}

func (d *Detector) matchLinearDimension(dim types.Dimension, text string, settings types.UserSettings) *types.Conversion {
	loc := d.patterns[dim].FindStringSubmatchIndex(text)
	var valueText, unitToken string
	var matchStart, matchEnd int
	if loc != nil {
		groups := d.patterns[dim].FindStringSubmatch(text)
		valueText, unitToken = groups[1], groups[2]
		// loc[4]/loc[5] bound the unit capture group; the terminator that
		// follows it in the pattern is not part of the displayed match.
		matchStart, matchEnd = loc[0], loc[5]
		if dim == types.Length && unitToken == "Nm" {
			loc = nil // reserved for torque, case-sensitively
		}
	}
	if loc == nil && dim == types.Torque {
		if bareLoc := bareNmRe.FindStringSubmatchIndex(text); bareLoc != nil {
			groups := bareNmRe.FindStringSubmatch(text)
			valueText, unitToken = groups[1], groups[2]
			matchStart, matchEnd = bareLoc[0], bareLoc[5]
			loc = bareLoc
		}
	}
	if loc == nil {
		return nil
	}

	value, err := strconv.ParseFloat(valueText, 64)
	if err != nil {
		return nil
	}
	sourceUnit, ok := d.resolveUnit(dim, unitToken)
	if !ok {
		return nil
	}

	target, ok := d.converter.GetDefaultTargetUnit(sourceUnit, settings)
	if !ok {
		return nil
	}

	matchedText := text[matchStart:matchEnd]

	if dim == types.Temperature {
		converted, ok := d.converter.ConvertTemperature(value, sourceUnit, target)
		if !ok || noOp(sourceUnit, target, value, converted) {
			return nil
		}
		return &types.Conversion{
			OriginalText:  matchedText,
			OriginalValue: value,
			OriginalUnit:  sourceUnit,
			Scalar:        &types.Scalar{ConvertedValue: convert.RoundHalfAwayFromZero(converted, 2), ConvertedUnit: target},
		}
	}

	converted, ok := d.converter.Convert(value, sourceUnit, target)
	if !ok {
		return nil
	}
	bestValue, bestUnit := d.converter.GetBestUnit(converted, dim, target, sourceUnit)
	if noOp(sourceUnit, bestUnit, value, bestValue) {
		return nil
	}
	return &types.Conversion{
		OriginalText:  matchedText,
		OriginalValue: value,
		OriginalUnit:  sourceUnit,
		Scalar:        &types.Scalar{ConvertedValue: convert.RoundHalfAwayFromZero(bestValue, 2), ConvertedUnit: bestUnit},
	}
}

func noOp(source, target types.Unit, orig, converted float64) bool {
	if source != target {
		return false
	}
	diff := converted - orig
	if diff < 0 {
		diff = -diff
	}
	return diff < 0.01
}

// resolveUnit canonicalizes a matched token, special-casing torque's
// case-sensitive bare "Nm".
func (d *Detector) resolveUnit(dim types.Dimension, token string) (types.Unit, bool) {
	if dim == types.Torque && token == "Nm" {
		return "Nm", true
	}
	u, ok := d.registry.Canonicalize(token)
	if !ok {
		return "", false
	}
	if ud, ok2 := d.registry.DimensionOf(u); !ok2 || ud != dim {
		return "", false
	}
	return u, true
}

// --- Timezone --------------------------------------------------------------

var timeZoneRe = regexp.MustCompile(`(?i)(\d{1,2}:\d{2}(\s?[AP]M)?)\s+([A-Za-z]{2,5}(?:[+-]\d{1,2})?)\b`)

func (d *Detector) matchTimezone(text string, settings types.UserSettings) *types.Conversion {
	loc := timeZoneRe.FindStringSubmatchIndex(text)
	if loc == nil {
		return nil
	}
	groups := timeZoneRe.FindStringSubmatch(text)
	timeText := strings.TrimSpace(groups[1])
	zoneToken := strings.TrimSpace(groups[3])
	if zoneToken == "" {
		return nil
	}

	targetZone := resolveTargetZone(settings.TimezoneUnit)
	useOffsetFormat := targetZone == "auto"

	tz, ok := d.converter.ConvertTimezone(timeText, zoneToken, targetZone, useOffsetFormat)
	if !ok {
		return nil
	}
	if strings.EqualFold(zoneToken, tz.ZoneLabel) {
		return nil
	}
	return &types.Conversion{
		OriginalText: text[loc[0]:loc[1]],
		TimeZone:     tz,
	}
}

func resolveTargetZone(setting string) string {
	if setting == "" || strings.EqualFold(setting, "auto") {
		return "auto"
	}
	return setting
}
