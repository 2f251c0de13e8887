package convert

import (
	"math"
	"testing"
	"time"

	"measureconvert/core/types"
	"measureconvert/core/units"
)

func newTestConverter() *Converter {
	return New(units.New())
}

func approxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}

func TestConvertLinear(t *testing.T) {
	c := newTestConverter()
	got, ok := c.Convert(10, "ft", "m")
	if !ok {
		t.Fatal("Convert(10 ft -> m) failed")
	}
	if !approxEqual(got, 3.048, 0.01) {
		t.Errorf("Convert(10 ft -> m) = %v, want ~3.05", got)
	}
}

func TestConvertCrossDimensionFails(t *testing.T) {
	c := newTestConverter()
	if _, ok := c.Convert(10, "ft", "kg"); ok {
		t.Error("Convert across dimensions should fail")
	}
}

func TestConvertUnknownUnitFails(t *testing.T) {
	c := newTestConverter()
	if _, ok := c.Convert(10, "furlong", "m"); ok {
		t.Error("Convert with unknown source unit should fail")
	}
}

func TestConvertTemperature(t *testing.T) {
	c := newTestConverter()
	cases := []struct {
		value    float64
		from, to types.Unit
		want     float64
	}{
		{72, "f", "c", 22.22},
		{0, "c", "f", 32},
		{0, "c", "k", 273.15},
		{100, "c", "f", 212},
		{32, "f", "f", 32},
	}
	for _, tc := range cases {
		got, ok := c.ConvertTemperature(tc.value, tc.from, tc.to)
		if !ok {
			t.Errorf("ConvertTemperature(%v %s->%s) failed", tc.value, tc.from, tc.to)
			continue
		}
		if !approxEqual(got, tc.want, 0.01) {
			t.Errorf("ConvertTemperature(%v %s->%s) = %v, want %v", tc.value, tc.from, tc.to, got, tc.want)
		}
	}
}

// TestGetBestUnitCascades proves the auto-sizer chains through multiple
// scaling hops instead of stopping after the first one: a length small
// enough to need m -> cm -> mm must land on mm, not stall at cm.
func TestGetBestUnitCascades(t *testing.T) {
	c := newTestConverter()
	value, unit := c.GetBestUnit(0.001, types.Length, "m", "")
	if unit != "mm" {
		t.Fatalf("GetBestUnit(0.001 m) unit = %s, want mm", unit)
	}
	if !approxEqual(value, 1, 0.001) {
		t.Errorf("GetBestUnit(0.001 m) value = %v, want 1", value)
	}
}

func TestGetBestUnitNoHopInRange(t *testing.T) {
	c := newTestConverter()
	// 10 feet -> 3.048... m, which needs no hop at all (>= 1, < 1000).
	converted, _ := c.Convert(10, "ft", "m")
	value, unit := c.GetBestUnit(converted, types.Length, "m", "ft")
	if unit != "m" {
		t.Fatalf("GetBestUnit(10ft->m) unit = %s, want m", unit)
	}
	if !approxEqual(value, 3.05, 0.01) {
		t.Errorf("GetBestUnit(10ft->m) value = %v, want ~3.05", value)
	}
}

func TestGetBestUnitNoScalingTableIsIdentity(t *testing.T) {
	c := newTestConverter()
	value, unit := c.GetBestUnit(42, types.Weight, "t", "")
	if unit != "t" || value != 42 {
		t.Errorf("GetBestUnit with no scaling table = %v %s, want 42 t unchanged", value, unit)
	}
}

func TestGetBestUnitExcludesSourceUnit(t *testing.T) {
	c := newTestConverter()
	// 0.5 m would normally hop down to cm, but when cm is the unit the
	// caller originally converted from, hopping back to it is suppressed.
	value, unit := c.GetBestUnit(0.5, types.Length, "m", "cm")
	if unit != "m" {
		t.Fatalf("GetBestUnit excluding source unit = %s, want m (blocked from bouncing back to cm)", unit)
	}
	if value != 0.5 {
		t.Errorf("GetBestUnit excluding source unit value = %v, want 0.5 unchanged", value)
	}
}

// TestGetBestUnitCascadesThroughVolumeChain proves the gallon auto-sizer
// chains all the way through qt -> pt -> cup -> fl_oz instead of stopping
// at the first hop: 0.05 gal is small enough to need all four hops.
func TestGetBestUnitCascadesThroughVolumeChain(t *testing.T) {
	c := newTestConverter()
	value, unit := c.GetBestUnit(0.05, types.Volume, "gal", "")
	if unit != "fl_oz" {
		t.Fatalf("GetBestUnit(0.05 gal) unit = %s, want fl_oz", unit)
	}
	if !approxEqual(value, 6.4, 0.01) {
		t.Errorf("GetBestUnit(0.05 gal) value = %v, want ~6.4", value)
	}
}

// TestGetBestUnitVolumeStopsAtFirstFittingHop proves a gallon value that
// only needs one hop (quarts) doesn't cascade further.
func TestGetBestUnitVolumeStopsAtFirstFittingHop(t *testing.T) {
	c := newTestConverter()
	value, unit := c.GetBestUnit(0.6, types.Volume, "gal", "")
	if unit != "qt" {
		t.Fatalf("GetBestUnit(0.6 gal) unit = %s, want qt", unit)
	}
	if !approxEqual(value, 2.4, 0.01) {
		t.Errorf("GetBestUnit(0.6 gal) value = %v, want ~2.4", value)
	}
}

func TestFormatResultRoundsAndTrims(t *testing.T) {
	c := newTestConverter()
	if got := c.FormatResult(3.05, "m"); got != "3.05 m" {
		t.Errorf("FormatResult(3.05, m) = %q, want '3.05 m'", got)
	}
	if got := c.FormatResult(3.0, "m"); got != "3 m" {
		t.Errorf("FormatResult(3.0, m) = %q, want '3 m'", got)
	}
	if got := c.FormatResult(3.005, "m"); got != "3.01 m" {
		t.Errorf("FormatResult(3.005, m) = %q, want half-away-from-zero rounding to '3.01 m'", got)
	}
}

func TestFormatDimensions3D(t *testing.T) {
	c := newTestConverter()
	d := types.Dimensions3D{L: 19.685, W: 13.1234, H: 8.2, Unit: "ft"}
	got := c.FormatDimensions3D(d)
	want := "19.69 x 13.12 x 8.2 ft"
	if got != want {
		t.Errorf("FormatDimensions3D = %q, want %q", got, want)
	}
}

func TestRoundHalfAwayFromZero(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{2.345, 2.35},
		{-2.345, -2.35},
		{2.344, 2.34},
		{0, 0},
	}
	for _, c := range cases {
		got := RoundHalfAwayFromZero(c.in, 2)
		if !approxEqual(got, c.want, 1e-9) {
			t.Errorf("RoundHalfAwayFromZero(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestHarmonizeDimensions3D(t *testing.T) {
	target := types.Unit("m")
	if got := HarmonizeDimensions3D([3]types.Unit{"ft", "ft", "ft"}, target); got != "ft" {
		t.Errorf("unanimous non-target axis units should win, got %s", got)
	}
	if got := HarmonizeDimensions3D([3]types.Unit{"ft", "in", "ft"}, target); got != target {
		t.Errorf("non-unanimous axis units should fall back to target, got %s", got)
	}
	if got := HarmonizeDimensions3D([3]types.Unit{"m", "m", "m"}, target); got != target {
		t.Errorf("unanimous target itself should just stay target, got %s", got)
	}
}

func TestGetDefaultTargetUnitFallsBackToRegistryDefault(t *testing.T) {
	c := newTestConverter()
	settings := types.UserSettings{}
	unit, ok := c.GetDefaultTargetUnit("ft", settings)
	if !ok || unit != "m" {
		t.Errorf("GetDefaultTargetUnit(ft, empty settings) = %s, %v, want m, true", unit, ok)
	}
}

func TestGetDefaultTargetUnitHonorsSettings(t *testing.T) {
	c := newTestConverter()
	settings := types.UserSettings{LengthUnit: "ft"}
	unit, ok := c.GetDefaultTargetUnit("m", settings)
	if !ok || unit != "ft" {
		t.Errorf("GetDefaultTargetUnit(m, LengthUnit=ft) = %s, %v, want ft, true", unit, ok)
	}
}

func TestConvertTimezone(t *testing.T) {
	c := newTestConverter()
	tz, ok := c.ConvertTimezone("3:30 PM", "EST", "PST", false)
	if !ok {
		t.Fatal("ConvertTimezone failed")
	}
	got := FormatTimeZone(tz, true)
	want := "12:30 PM PST"
	if got != want {
		t.Errorf("ConvertTimezone(3:30 PM EST -> PST) = %q, want %q", got, want)
	}
}

func TestConvertTimezoneWraps(t *testing.T) {
	c := newTestConverter()
	// 11 PM EST -> JST is 1 PM the next "day"; the wrap must stay in 0-23h.
	tz, ok := c.ConvertTimezone("11:00 PM", "EST", "JST", false)
	if !ok {
		t.Fatal("ConvertTimezone failed")
	}
	if tz.Hours < 0 || tz.Hours > 23 {
		t.Errorf("ConvertTimezone wrap produced out-of-range hour %d", tz.Hours)
	}
}

func TestFormatTimeZone24hr(t *testing.T) {
	tz := &types.TimeZone{Hours: 15, Minutes: 5, ZoneLabel: "PST"}
	if got := FormatTimeZone(tz, false); got != "15:05 PST" {
		t.Errorf("FormatTimeZone(24hr) = %q, want '15:05 PST'", got)
	}
}

func TestFormatTimeZoneMidnightAndNoon(t *testing.T) {
	midnight := &types.TimeZone{Hours: 0, Minutes: 0, ZoneLabel: "UTC"}
	if got := FormatTimeZone(midnight, true); got != "12:00 AM UTC" {
		t.Errorf("FormatTimeZone(midnight, 12hr) = %q, want '12:00 AM UTC'", got)
	}
	noon := &types.TimeZone{Hours: 12, Minutes: 0, ZoneLabel: "UTC"}
	if got := FormatTimeZone(noon, true); got != "12:00 PM UTC" {
		t.Errorf("FormatTimeZone(noon, 12hr) = %q, want '12:00 PM UTC'", got)
	}
}

func TestLocalUTCOffsetMinutes(t *testing.T) {
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.FixedZone("TEST", 3*3600))
	if got := LocalUTCOffsetMinutes(fixed); got != 180 {
		t.Errorf("LocalUTCOffsetMinutes = %d, want 180", got)
	}
}
