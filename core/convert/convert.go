// Package convert is the C2 Unit Converter: value conversion within one
// dimension, temperature's additive formulas, timezone arithmetic,
// auto-sizing a display unit from a magnitude, and final result
// formatting. Every exported function is total: bad or cross-dimension
// units yield a zero value and false/nil, never a panic or error.
package convert

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"measureconvert/core/types"
	"measureconvert/core/units"
)

// Converter is C2. It holds a reference to the shared, read-only registry.
type Converter struct {
	registry *units.Registry
	zones    *ZoneTable
}

// New builds a converter over a registry built by units.New().
func New(registry *units.Registry) *Converter {
	return &Converter{registry: registry, zones: defaultZoneTable()}
}

// Convert performs a linear (non-temperature, non-timezone) conversion.
// It returns false if the units are unknown or belong to different
// dimensions.
func (c *Converter) Convert(value float64, from, to types.Unit) (float64, bool) {
	fromDim, ok := c.registry.DimensionOf(from)
	if !ok {
		return 0, false
	}
	toDim, ok := c.registry.DimensionOf(to)
	if !ok || toDim != fromDim {
		return 0, false
	}
	if fromDim == types.Temperature {
		return c.ConvertTemperature(value, from, to)
	}
	fromRatio, ok := c.registry.Ratio(from)
	if !ok {
		return 0, false
	}
	toRatio, ok := c.registry.Ratio(to)
	if !ok {
		return 0, false
	}
	base := value / fromRatio
	return base * toRatio, true
}

// ConvertTemperature converts via Celsius, per spec §4.2.
func (c *Converter) ConvertTemperature(value float64, from, to types.Unit) (float64, bool) {
	if from == to {
		return value, true
	}
	var celsius float64
	switch from {
	case "c":
		celsius = value
	case "f":
		celsius = (value - 32) * 5 / 9
	case "k":
		celsius = value - 273.15
	default:
		return 0, false
	}
	switch to {
	case "c":
		return celsius, true
	case "f":
		return celsius*9/5 + 32, true
	case "k":
		return celsius + 273.15, true
	default:
		return 0, false
	}
}

// maxScalingHops bounds the cascade in GetBestUnit. The longest real chain
// (gal -> qt -> pt -> cup -> fl_oz) is four hops; this leaves headroom without risking an
// infinite loop if a scaling table were ever miswired into a cycle.
const maxScalingHops = 8

// GetBestUnit re-converts the original base value into whichever unit the
// registry's scaling rules select, cascading through chained tables (e.g.
// m -> cm -> mm when a value is small enough to need both hops) per spec
// §4.2. Each hop is resolved against the original base value, not the
// already-hopped value. sourceUnit, when non-empty, is excluded from the
// hop targets so the auto-sizer never bounces the caller back to the unit
// they started in.
func (c *Converter) GetBestUnit(value float64, dim types.Dimension, defaultUnit types.Unit, sourceUnit types.Unit) (float64, types.Unit) {
	current := defaultUnit
	currentValue := value

	baseRatio, ok := c.registry.Ratio(defaultUnit)
	if !ok {
		return value, defaultUnit
	}
	baseValue := value / baseRatio

	for hop := 0; hop < maxScalingHops; hop++ {
		rules := c.registry.ScalingRules(dim, current)
		hopped := false
		for _, rule := range rules {
			if rule.TargetUnit == sourceUnit {
				continue
			}
			fires := false
			switch rule.Direction {
			case "up":
				fires = currentValue >= rule.Threshold
			case "down":
				fires = currentValue < rule.Threshold
			}
			if !fires {
				continue
			}
			targetRatio, ok := c.registry.Ratio(rule.TargetUnit)
			if !ok {
				continue
			}
			newValue := baseValue * targetRatio
			if rule.MinValue > 0 && newValue < rule.MinValue {
				continue
			}
			current = rule.TargetUnit
			currentValue = newValue
			hopped = true
			break
		}
		if !hopped {
			break
		}
	}
	return currentValue, current
}

// FormatResult rounds to two decimals, half-away-from-zero, and renders
// "{v} {displayName}".
func (c *Converter) FormatResult(value float64, unit types.Unit) string {
	rounded := RoundHalfAwayFromZero(value, 2)
	return fmt.Sprintf("%s %s", trimNumber(rounded), c.registry.DisplayName(unit))
}

// FormatDimensions3D renders "{l} x {w} x {h} {displayName}", each axis
// rounded independently the same way FormatResult rounds a scalar.
func (c *Converter) FormatDimensions3D(d types.Dimensions3D) string {
	l := trimNumber(RoundHalfAwayFromZero(d.L, 2))
	w := trimNumber(RoundHalfAwayFromZero(d.W, 2))
	h := trimNumber(RoundHalfAwayFromZero(d.H, 2))
	return fmt.Sprintf("%s x %s x %s %s", l, w, h, c.registry.DisplayName(d.Unit))
}

// RoundHalfAwayFromZero rounds to the given number of decimal places using
// round-half-away-from-zero, matching spec §4.2's formatter.
func RoundHalfAwayFromZero(value float64, decimals int) float64 {
	mult := math.Pow(10, float64(decimals))
	// Shift the decimal point on the shortest decimal form of value, so a
	// value such as 19.685 rounds on its written digits rather than on its
	// binary approximation (19.68499...).
	s := strconv.FormatFloat(value, 'e', -1, 64)
	if i := strings.IndexByte(s, 'e'); i > 0 {
		if exp, err := strconv.Atoi(s[i+1:]); err == nil {
			if shifted, err := strconv.ParseFloat(s[:i]+"e"+strconv.Itoa(exp+decimals), 64); err == nil {
				return math.Round(shifted) / mult
			}
		}
	}
	if value >= 0 {
		return math.Floor(value*mult+0.5) / mult
	}
	return math.Ceil(value*mult-0.5) / mult
}

// trimNumber formats a rounded float without a trailing ".00" the way the
// original UI shows whole numbers.
func trimNumber(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	if s == "" || s == "-" {
		return "0"
	}
	return s
}

// GetDefaultTargetUnit resolves a per-dimension target unit from settings,
// falling back to the registry's default.
func (c *Converter) GetDefaultTargetUnit(sourceUnit types.Unit, settings types.UserSettings) (types.Unit, bool) {
	dim, ok := c.registry.DimensionOf(sourceUnit)
	if !ok {
		return "", false
	}
	var configured types.Unit
	switch dim {
	case types.Length:
		configured = settings.LengthUnit
	case types.Weight:
		configured = settings.WeightUnit
	case types.Temperature:
		configured = settings.TemperatureUnit
	case types.Volume:
		configured = settings.VolumeUnit
	case types.Area:
		configured = settings.AreaUnit
	case types.Speed:
		configured = settings.SpeedUnit
	case types.Acceleration:
		configured = settings.AccelerationUnit
	case types.FlowRate:
		configured = settings.FlowRateUnit
	case types.Torque:
		configured = settings.TorqueUnit
	case types.Pressure:
		configured = settings.PressureUnit
	}
	if configured != "" {
		if _, ok := c.registry.DimensionOf(configured); ok {
			return configured, true
		}
	}
	return c.registry.DefaultUnit(dim)
}

// HarmonizeDimensions3D applies spec §4.2's rule: use the unanimous
// non-target unit chosen by all three axes, else fall back to the target.
func HarmonizeDimensions3D(axisUnits [3]types.Unit, target types.Unit) types.Unit {
	if axisUnits[0] == axisUnits[1] && axisUnits[1] == axisUnits[2] && axisUnits[0] != target {
		return axisUnits[0]
	}
	return target
}

// ConvertTimezone parses "HH:MM[ AM/PM]" from timeText, reads it as a time
// in fromZone, and re-expresses it in toZone. The zones are passed
// separately; timeText itself carries no zone. useOffsetFormat forces a
// "GMT±N" style label instead of a named zone abbreviation.
func (c *Converter) ConvertTimezone(timeText string, fromZone, toZone string, useOffsetFormat bool) (*types.TimeZone, bool) {
	hh, mm, ok := parseClockTime(timeText)
	if !ok {
		return nil, false
	}
	fromOffset, ok := c.zones.OffsetMinutes(fromZone)
	if !ok {
		return nil, false
	}
	toOffset, label, ok := c.zones.Resolve(toZone, useOffsetFormat)
	if !ok {
		return nil, false
	}
	totalMinutes := hh*60 + mm - fromOffset + toOffset
	totalMinutes = ((totalMinutes % (24 * 60)) + 24*60) % (24 * 60)
	return &types.TimeZone{
		Hours:     totalMinutes / 60,
		Minutes:   totalMinutes % 60,
		ZoneLabel: label,
	}, true
}

// FormatTimeZone renders "HH:MM LABEL" honoring 12/24-hour display.
func FormatTimeZone(tz *types.TimeZone, is12hr bool) string {
	h := tz.Hours
	suffix := ""
	if is12hr {
		suffix = " AM"
		if h == 0 {
			h = 12
		} else if h == 12 {
			suffix = " PM"
		} else if h > 12 {
			h -= 12
			suffix = " PM"
		}
	}
	return fmt.Sprintf("%02d:%02d%s %s", h, tz.Minutes, suffix, tz.ZoneLabel)
}

// parseClockTime accepts "3:30 PM", "15:30", "3:30PM".
func parseClockTime(text string) (int, int, bool) {
	text = strings.TrimSpace(text)
	upper := strings.ToUpper(text)
	isPM := strings.Contains(upper, "PM")
	isAM := strings.Contains(upper, "AM")
	digits := text
	if isPM || isAM {
		idx := strings.IndexAny(upper, "AP")
		digits = strings.TrimSpace(text[:idx])
	}
	parts := strings.SplitN(digits, ":", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	h, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	m, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, 0, false
	}
	if isPM && h != 12 {
		h += 12
	}
	if isAM && h == 12 {
		h = 0
	}
	return h, m, true
}

// LocalUTCOffsetMinutes reports the machine clock's current UTC offset,
// used by the detector's "auto" timezone target per spec §4.4.
func LocalUTCOffsetMinutes(now time.Time) int {
	_, offsetSeconds := now.Zone()
	return offsetSeconds / 60
}
