// Package types defines the shared data model for the conversion engine:
// dimensions, units, the detector's output, user settings, and the
// currency rate cache's persisted shapes. Nothing in this package performs
// conversion or detection; it only names the vocabulary the rest of the
// core packages share.
package types

// Dimension is a closed set of physically comparable units.
type Dimension string

const (
	Length        Dimension = "length"
	Weight        Dimension = "weight"
	Temperature   Dimension = "temperature"
	Volume        Dimension = "volume"
	Area          Dimension = "area"
	Speed         Dimension = "speed"
	Acceleration  Dimension = "acceleration"
	FlowRate      Dimension = "flow_rate"
	Torque        Dimension = "torque"
	Pressure      Dimension = "pressure"
	TimezoneDim   Dimension = "timezone"
	CurrencyDim   Dimension = "currency"
)

// Unit is an opaque canonical identifier, e.g. "m", "kg", "kmh", "Nm".
// Case is significant: torque's newton-meter is "Nm", length's nanometer
// is "nm".
type Unit string

// Preset names a bundle of default target units.
type Preset string

const (
	PresetMetric   Preset = "metric"
	PresetImperial Preset = "imperial"
	PresetCustom   Preset = "custom"
)

// UserSettings carries the caller's preferred target units. It is consumed
// read-only by the converter and detector; it never affects rate-cache
// behavior.
type UserSettings struct {
	LengthUnit       Unit
	WeightUnit       Unit
	TemperatureUnit  Unit
	VolumeUnit       Unit
	AreaUnit         Unit
	SpeedUnit        Unit
	AccelerationUnit Unit
	FlowRateUnit     Unit
	TorqueUnit       Unit
	PressureUnit     Unit

	// TimezoneUnit is a zone name, or "auto" to derive from the local
	// machine's UTC offset.
	TimezoneUnit string

	// CurrencyUnit is the user's preferred 3-letter currency code.
	CurrencyUnit string

	// Is12hr controls the time-of-day formatter, not detection.
	Is12hr bool

	Preset Preset
}

// DefaultSettings returns the registry's zero-value defaults; callers
// normally get concrete defaults from units.Registry.DefaultUnit (via
// convert.Converter.GetDefaultTargetUnit) instead, but a caller who has
// no settings at all can start here.
func DefaultSettings() UserSettings {
	return UserSettings{
		TimezoneUnit: "auto",
		CurrencyUnit: "USD",
		Is12hr:       true,
		Preset:       PresetMetric,
	}
}

// Scalar is a single-value, single-unit conversion result rendered as
// "{v} {unit}".
type Scalar struct {
	ConvertedValue float64
	ConvertedUnit  Unit
}

// Dimensions3D is a length x width x height conversion result rendered as
// "{a} x {b} x {c} {unit}".
type Dimensions3D struct {
	L, W, H float64
	Unit    Unit
}

// CurrencyPending is a currency conversion awaiting an exchange rate from
// the rate cache service. The detector never resolves this itself.
type CurrencyPending struct {
	FromCode string
	ToCode   string
	Amount   float64
}

// TimeZone is a time-of-day conversion result rendered as "HH:MM LABEL".
type TimeZone struct {
	Hours, Minutes int
	ZoneLabel      string
}

// Conversion is the detector's output: exactly one of the four payload
// fields is non-nil.
type Conversion struct {
	OriginalText  string
	OriginalValue float64
	OriginalUnit  Unit

	Scalar          *Scalar
	Dimensions3D    *Dimensions3D
	CurrencyPending *CurrencyPending
	TimeZone        *TimeZone
}

// CacheEntry is the persisted per-base-currency cache record. Timestamps
// are wall-clock milliseconds since epoch; CacheEntry.TimestampMs is not
// required to be <= now (clock skew must be tolerated).
type CacheEntry struct {
	Rates         map[string]float64 `json:"rates"`
	TimestampMs   int64              `json:"timestamp_ms"`
	APITimestamp  *int64             `json:"api_timestamp,omitempty"`
	UsedFallback  bool               `json:"used_fallback"`
}

// RateResult is what getCurrencyRate resolves to. Structural equality of
// Rate/UsedFallback/FromCache/Stale is the contract concurrent callers of
// the same pair must observe.
type RateResult struct {
	Rate         float64
	UsedFallback bool
	FromCache    bool
	Stale        bool
}

// Equal reports whether two RateResults are structurally equal per the
// dedup contract in spec §5.
func (r RateResult) Equal(o RateResult) bool {
	return r.Rate == o.Rate && r.UsedFallback == o.UsedFallback &&
		r.FromCache == o.FromCache && r.Stale == o.Stale
}
