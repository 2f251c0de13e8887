// Package units is the C1 Unit Registry: static, read-only tables of base
// units, conversion factors, aliases, display names, and scaling rules.
// The registry is built once at startup and shared by reference; nothing
// here performs conversion arithmetic, that is core/convert's job.
package units

import (
	"strings"

	"measureconvert/core/types"
)

// ScalingRule is one entry of an ordered, top-to-bottom auto-sizing table
// for a source unit. Direction "up" fires when value >= Threshold;
// "down" fires when value < Threshold. First match wins.
type ScalingRule struct {
	Threshold   float64
	Direction   string // "up" | "down"
	TargetUnit  types.Unit
	MinValue    float64 // when > 0, the target is only used if the resulting value would be >= MinValue
	ExcludeUnit types.Unit
}

// Registry is the read-only unit store.
type Registry struct {
	dimensionOf  map[types.Unit]types.Dimension
	ratios       map[types.Unit]float64
	displayNames map[types.Unit]string
	aliases      map[string]types.Unit
	scaling      map[types.Dimension]map[types.Unit][]ScalingRule
	defaultUnit  map[types.Dimension]types.Unit
}

// New builds the registry. It is called once at process startup; the
// result should be shared by reference across the detector and converter.
func New() *Registry {
	r := &Registry{
		dimensionOf:  make(map[types.Unit]types.Dimension),
		ratios:       make(map[types.Unit]float64),
		displayNames: make(map[types.Unit]string),
		aliases:      make(map[string]types.Unit),
		scaling:      make(map[types.Dimension]map[types.Unit][]ScalingRule),
		defaultUnit:  make(map[types.Dimension]types.Unit),
	}
	r.loadLength()
	r.loadWeight()
	r.loadTemperature()
	r.loadVolume()
	r.loadArea()
	r.loadSpeed()
	r.loadAcceleration()
	r.loadFlowRate()
	r.loadTorque()
	r.loadPressure()
	return r
}

func (r *Registry) addUnit(dim types.Dimension, unit types.Unit, ratio float64, display string, aliases ...string) {
	r.dimensionOf[unit] = dim
	r.ratios[unit] = ratio
	r.displayNames[unit] = display
	// canonical code itself is always a valid surface form
	r.aliases[normalize(string(unit))] = unit
	for _, a := range aliases {
		r.aliases[normalize(a)] = unit
	}
}

// addUnitCaseSensitive registers a unit's dimension/ratio/display without
// putting its lowercased canonical code into the case-insensitive alias
// table. Used for "Nm" (newton-meter), whose bare-word surface form
// collides with "nm" (nanometer) once lowercased; per spec §3/§4.4 the
// uppercase-N form is only reachable case-sensitively, while its
// dot/hyphen variants ("N·m", "N.m", ...) are unambiguous and still go
// through the normal alias table.
func (r *Registry) addUnitCaseSensitive(dim types.Dimension, unit types.Unit, ratio float64, display string, aliases ...string) {
	r.dimensionOf[unit] = dim
	r.ratios[unit] = ratio
	r.displayNames[unit] = display
	for _, a := range aliases {
		r.aliases[normalize(a)] = unit
	}
}

func (r *Registry) setDefault(dim types.Dimension, unit types.Unit) {
	r.defaultUnit[dim] = unit
}

func (r *Registry) setScaling(dim types.Dimension, source types.Unit, rules []ScalingRule) {
	if r.scaling[dim] == nil {
		r.scaling[dim] = make(map[types.Unit][]ScalingRule)
	}
	r.scaling[dim][source] = rules
}

// normalize lowercases and collapses whitespace, per spec §4.1.
func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}

// Canonicalize resolves a surface form to a canonical unit, applying the
// alias table after lowercasing and whitespace collapse.
func (r *Registry) Canonicalize(text string) (types.Unit, bool) {
	u, ok := r.aliases[normalize(text)]
	return u, ok
}

// CanonicalizeCaseSensitive resolves torque's "Nm" without lowercasing the
// input first (torque's canonical newton-meter code requires uppercase N,
// per spec §3). Callers that need to distinguish "nm" (nanometer) from
// "Nm" (newton-meter) should try this before falling back to Canonicalize.
func (r *Registry) CanonicalizeCaseSensitive(text string) (types.Unit, bool) {
	trimmed := strings.Join(strings.Fields(strings.TrimSpace(text)), " ")
	if u, ok := r.dimensionOf[types.Unit(trimmed)]; ok {
		_ = u
		return types.Unit(trimmed), true
	}
	return "", false
}

// DimensionOf returns the dimension a canonical unit belongs to.
func (r *Registry) DimensionOf(u types.Unit) (types.Dimension, bool) {
	d, ok := r.dimensionOf[u]
	return d, ok
}

// Ratio returns r(u) for non-temperature, non-timezone units.
func (r *Registry) Ratio(u types.Unit) (float64, bool) {
	v, ok := r.ratios[u]
	return v, ok
}

// DisplayName returns the Unicode-aware display form of a canonical unit.
func (r *Registry) DisplayName(u types.Unit) string {
	if n, ok := r.displayNames[u]; ok {
		return n
	}
	return string(u)
}

// ScalingRules returns the ordered auto-sizing table for a dimension and
// source unit, or nil if none is defined.
func (r *Registry) ScalingRules(dim types.Dimension, source types.Unit) []ScalingRule {
	byUnit, ok := r.scaling[dim]
	if !ok {
		return nil
	}
	return byUnit[source]
}

// DefaultUnit returns the registry's fallback default unit for a dimension.
func (r *Registry) DefaultUnit(dim types.Dimension) (types.Unit, bool) {
	u, ok := r.defaultUnit[dim]
	return u, ok
}

// UnitsInDimension lists every canonical unit belonging to a dimension.
// Order is unspecified; callers needing a fixed order should sort.
func (r *Registry) UnitsInDimension(dim types.Dimension) []types.Unit {
	var out []types.Unit
	for u, d := range r.dimensionOf {
		if d == dim {
			out = append(out, u)
		}
	}
	return out
}

func (r *Registry) loadLength() {
	const d = types.Length
	r.addUnit(d, "m", 1, "m", "meter", "meters", "metre", "metres")
	r.addUnit(d, "cm", 100, "cm", "centimeter", "centimeters", "centimetre", "centimetres")
	r.addUnit(d, "mm", 1000, "mm", "millimeter", "millimeters", "millimetre", "millimetres")
	r.addUnit(d, "um", 1e6, "µm", "micrometer", "micrometers", "micron", "microns")
	r.addUnit(d, "nm", 1e9, "nm", "nanometer", "nanometers", "nanometre", "nanometres")
	r.addUnit(d, "km", 0.001, "km", "kilometer", "kilometers", "kilometre", "kilometres")
	r.addUnit(d, "in", 39.37007874015748, "in", "inch", "inches", `"`)
	r.addUnit(d, "ft", 3.280839895013123, "ft", "foot", "feet", "'")
	r.addUnit(d, "yd", 1.0936132983377078, "yd", "yard", "yards")
	r.addUnit(d, "mi", 0.0006213711922373339, "mi", "mile", "miles")
	r.setDefault(d, "m")

	r.setScaling(d, "m", []ScalingRule{
		{Threshold: 1, Direction: "down", TargetUnit: "cm"},
		{Threshold: 1000, Direction: "up", TargetUnit: "km"},
	})
	r.setScaling(d, "cm", []ScalingRule{
		{Threshold: 1, Direction: "down", TargetUnit: "mm"},
	})
	r.setScaling(d, "ft", []ScalingRule{
		{Threshold: 1, Direction: "down", TargetUnit: "in"},
		{Threshold: 5280, Direction: "up", TargetUnit: "mi"},
	})
	r.setScaling(d, "yd", []ScalingRule{
		{Threshold: 1, Direction: "down", TargetUnit: "ft"},
	})
}

func (r *Registry) loadWeight() {
	const d = types.Weight
	r.addUnit(d, "kg", 1, "kg", "kilogram", "kilograms")
	r.addUnit(d, "g", 1000, "g", "gram", "grams")
	r.addUnit(d, "mg", 1e6, "mg", "milligram", "milligrams")
	r.addUnit(d, "lb", 2.2046226218487757, "lb", "lbs", "pound", "pounds")
	r.addUnit(d, "oz", 35.27396194958041, "oz", "ounce", "ounces")
	r.addUnit(d, "t", 0.001, "t", "tonne", "tonnes", "metric ton", "metric tons")
	r.setDefault(d, "kg")

	r.setScaling(d, "kg", []ScalingRule{
		{Threshold: 1, Direction: "down", TargetUnit: "g"},
		{Threshold: 1000, Direction: "up", TargetUnit: "t"},
	})
	r.setScaling(d, "lb", []ScalingRule{
		{Threshold: 1, Direction: "down", TargetUnit: "oz"},
	})
}

func (r *Registry) loadTemperature() {
	const d = types.Temperature
	r.dimensionOf["c"] = d
	r.dimensionOf["f"] = d
	r.dimensionOf["k"] = d
	r.displayNames["c"] = "°C"
	r.displayNames["f"] = "°F"
	r.displayNames["k"] = "K"
	for _, a := range []string{"c", "°c", "celsius", "centigrade"} {
		r.aliases[normalize(a)] = "c"
	}
	for _, a := range []string{"f", "°f", "fahrenheit"} {
		r.aliases[normalize(a)] = "f"
	}
	for _, a := range []string{"k", "kelvin"} {
		r.aliases[normalize(a)] = "k"
	}
	r.setDefault(d, "c")
}

func (r *Registry) loadVolume() {
	const d = types.Volume
	r.addUnit(d, "l", 1, "L", "liter", "liters", "litre", "litres")
	r.addUnit(d, "ml", 1000, "mL", "milliliter", "milliliters", "millilitre", "millilitres")
	r.addUnit(d, "gal", 0.26417205235815, "gal", "gallon", "gallons")
	r.addUnit(d, "qt", 1.0566882094326, "qt", "quart", "quarts")
	r.addUnit(d, "pt", 2.1133764188652, "pt", "pint", "pints")
	r.addUnit(d, "cup", 4.2267528377304, "cup", "cups")
	r.addUnit(d, "fl_oz", 33.814022701843, "fl oz", "floz", "fluid ounce", "fluid ounces")
	r.addUnit(d, "tbsp", 67.628045403686, "tbsp", "tablespoon", "tablespoons")
	r.addUnit(d, "tsp", 202.88413621106, "tsp", "teaspoon", "teaspoons")
	r.setDefault(d, "l")

	r.setScaling(d, "l", []ScalingRule{
		{Threshold: 1, Direction: "down", TargetUnit: "ml"},
	})
	r.setScaling(d, "gal", []ScalingRule{
		{Threshold: 1, Direction: "down", TargetUnit: "qt"},
	})
	r.setScaling(d, "qt", []ScalingRule{
		{Threshold: 1, Direction: "down", TargetUnit: "pt"},
	})
	r.setScaling(d, "pt", []ScalingRule{
		{Threshold: 1, Direction: "down", TargetUnit: "cup"},
	})
	r.setScaling(d, "cup", []ScalingRule{
		{Threshold: 1, Direction: "down", TargetUnit: "fl_oz"},
	})
}

func (r *Registry) loadArea() {
	const d = types.Area
	r.addUnit(d, "m2", 1, "m²", "m^2", "square meter", "square meters", "square metre", "square metres")
	r.addUnit(d, "cm2", 10000, "cm²", "square centimeter", "square centimeters")
	r.addUnit(d, "mm2", 1e6, "mm²", "square millimeter", "square millimeters")
	r.addUnit(d, "km2", 1e-6, "km²", "square kilometer", "square kilometers")
	r.addUnit(d, "ft2", 10.76391041671, "ft²", "ft^2", "square foot", "square feet")
	r.addUnit(d, "in2", 1550.0031000062, "in²", "square inch", "square inches")
	r.addUnit(d, "acre", 0.00024710538146717, "acre", "acres")
	r.setDefault(d, "m2")

	r.setScaling(d, "m2", []ScalingRule{
		{Threshold: 1, Direction: "down", TargetUnit: "cm2"},
		{Threshold: 1e6, Direction: "up", TargetUnit: "km2"},
	})
	r.setScaling(d, "cm2", []ScalingRule{
		{Threshold: 1, Direction: "down", TargetUnit: "mm2"},
	})
	r.setScaling(d, "ft2", []ScalingRule{
		{Threshold: 1, Direction: "down", TargetUnit: "in2"},
		{Threshold: 43560, Direction: "up", TargetUnit: "acre"},
	})
}

func (r *Registry) loadSpeed() {
	const d = types.Speed
	r.addUnit(d, "ms", 1, "m/s", "meters per second", "metres per second")
	r.addUnit(d, "kmh", 3.6, "km/h", "kph", "kilometers per hour", "kilometres per hour")
	r.addUnit(d, "mph", 2.2369362920544, "mph", "miles per hour")
	r.addUnit(d, "fts", 3.280839895013123, "ft/s", "feet per second")
	r.addUnit(d, "kn", 1.9438444924406, "kn", "knot", "knots")
	r.addUnit(d, "mach", 0.0029385538054099, "mach", "mach number")
	r.setDefault(d, "ms")

	r.setScaling(d, "ms", []ScalingRule{
		{Threshold: 50, Direction: "up", TargetUnit: "kmh"},
	})
}

func (r *Registry) loadAcceleration() {
	const d = types.Acceleration
	r.addUnit(d, "ms2", 1, "m/s²", "meters per second squared")
	r.addUnit(d, "fts2", 3.280839895013123, "ft/s²", "feet per second squared")
	r.addUnit(d, "g", 0.10197162129779283, "g", "g-force")
	r.setDefault(d, "ms2")
}

func (r *Registry) loadFlowRate() {
	const d = types.FlowRate
	r.addUnit(d, "lmin", 1, "L/min", "liters per minute")
	r.addUnit(d, "mls", 16.666666666667, "mL/s", "milliliters per second")
	r.addUnit(d, "m3h", 0.06, "m³/h", "cubic meters per hour")
	r.addUnit(d, "galmin", 0.26417205235815, "gal/min", "gallons per minute", "gpm")
	r.addUnit(d, "cfm", 0.035314666721489, "CFM", "cubic feet per minute")
	r.addUnit(d, "cfs", 0.00058857777869148, "CFS", "cubic feet per second")
	r.setDefault(d, "lmin")
}

func (r *Registry) loadTorque() {
	const d = types.Torque
	r.addUnitCaseSensitive(d, "Nm", 1, "N⋅m")
	r.addUnit(d, "lbft", 0.737562149277, "lb⋅ft", "lb-ft", "lb.ft")
	r.addUnit(d, "lbin", 8.85074579324, "lb⋅in", "lb-in", "lb.in")
	r.addUnit(d, "kgfm", 0.10197162129779283, "kgf⋅m", "kg⋅m", "kg-m", "kgf-m")
	r.addUnit(d, "ozin", 141.611933703613, "oz⋅in", "oz-in", "oz.in")
	r.setDefault(d, "Nm")
	// "Nm" is also reachable via explicit dot/hyphen forms per spec §4.4.
	for _, a := range []string{"n·m", "n⋅m", "n.m", "n-m"} {
		r.aliases[normalize(a)] = "Nm"
	}
	// The dot-operator ("·"/"⋅") is the primary surface form for the
	// pound/ounce/kilogram torque units and a bare space is also valid;
	// "foot"/"feet"/"inch" are long-form spellings of "ft"/"in". The
	// detect regex already matches all of these, so the alias table has
	// to resolve them too.
	for _, a := range torqueAliases("lb", []string{"·", "⋅", " ", ""}, []string{"ft"}) {
		r.aliases[normalize(a)] = "lbft"
	}
	for _, a := range torqueAliases("lb", []string{"·", "⋅", ".", "-", " ", ""}, []string{"foot", "feet"}) {
		r.aliases[normalize(a)] = "lbft"
	}
	for _, a := range torqueAliases("lb", []string{"·", "⋅", " ", ""}, []string{"in"}) {
		r.aliases[normalize(a)] = "lbin"
	}
	for _, a := range torqueAliases("lb", []string{"·", "⋅", ".", "-", " ", ""}, []string{"inch"}) {
		r.aliases[normalize(a)] = "lbin"
	}
	for _, a := range torqueAliases("oz", []string{"·", "⋅", " ", ""}, []string{"in"}) {
		r.aliases[normalize(a)] = "ozin"
	}
	for _, a := range torqueAliases("oz", []string{"·", "⋅", ".", "-", " ", ""}, []string{"inch"}) {
		r.aliases[normalize(a)] = "ozin"
	}
	for _, a := range torqueAliases("kg", []string{"·", "⋅", ".", " ", ""}, []string{"m"}) {
		r.aliases[normalize(a)] = "kgfm"
	}
	for _, a := range torqueAliases("kgf", []string{"·", "⋅", ".", " ", ""}, []string{"m"}) {
		r.aliases[normalize(a)] = "kgfm"
	}
}

// torqueAliases expands a prefix and suffix list across a set of
// separators (including "" for a bare concatenation) into surface forms.
func torqueAliases(prefix string, seps []string, suffixes []string) []string {
	var out []string
	for _, sep := range seps {
		for _, suf := range suffixes {
			out = append(out, prefix+sep+suf)
		}
	}
	return out
}

func (r *Registry) loadPressure() {
	const d = types.Pressure
	r.addUnit(d, "pa", 1, "Pa", "pascal", "pascals")
	r.addUnit(d, "kpa", 0.001, "kPa", "kilopascal", "kilopascals")
	r.addUnit(d, "mpa", 1e-6, "MPa", "megapascal", "megapascals")
	r.addUnit(d, "bar", 1e-5, "bar")
	r.addUnit(d, "mbar", 0.01, "mbar", "millibar", "millibars")
	r.addUnit(d, "psi", 0.00014503773773, "psi")
	r.addUnit(d, "atm", 0.0000098692326671601, "atm", "atmosphere", "atmospheres")
	r.addUnit(d, "mmhg", 0.0075006157584566, "mmHg")
	r.addUnit(d, "inhg", 0.00029529983071445, "inHg")
	r.addUnit(d, "torr", 0.0075006168270417, "torr")
	r.addUnit(d, "psf", 0.020885434273039, "psf")
	r.setDefault(d, "pa")

	r.setScaling(d, "pa", []ScalingRule{
		{Threshold: 1e5, Direction: "up", TargetUnit: "bar"},
		{Threshold: 1e3, Direction: "up", TargetUnit: "kpa"},
	})
	r.setScaling(d, "bar", []ScalingRule{
		{Threshold: 0.01, Direction: "down", TargetUnit: "kpa"},
	})
}
