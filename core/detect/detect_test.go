package detect

import (
	"testing"

	"measureconvert/core/convert"
	"measureconvert/core/currency"
	"measureconvert/core/types"
	"measureconvert/core/units"
)

func newTestDetector() *Detector {
	registry := units.New()
	converter := convert.New(registry)
	ctx := currency.DisambiguationContext{CountryCode: "US", LanguageIsEnglish: true}
	return New(registry, converter, ctx)
}

func TestFindConversionSeedScenarios(t *testing.T) {
	d := newTestDetector()

	t.Run("10 feet -> 3.05 m", func(t *testing.T) {
		settings := types.UserSettings{LengthUnit: "m"}
		conv := d.FindConversion("the box is 10 feet long", settings)
		if conv == nil || conv.Scalar == nil {
			t.Fatal("expected a scalar conversion")
		}
		got := round2(conv.Scalar.ConvertedValue)
		if got != 3.05 || conv.Scalar.ConvertedUnit != "m" {
			t.Errorf("got %v %s, want 3.05 m", got, conv.Scalar.ConvertedUnit)
		}
	})

	t.Run("0.001 m -> 1 mm (cascading auto-size)", func(t *testing.T) {
		settings := types.UserSettings{}
		conv := d.FindConversion("0.001 m", settings)
		if conv == nil || conv.Scalar == nil {
			t.Fatal("expected a scalar conversion")
		}
		if conv.Scalar.ConvertedUnit != "mm" {
			t.Errorf("unit = %s, want mm", conv.Scalar.ConvertedUnit)
		}
		if round2(conv.Scalar.ConvertedValue) != 1 {
			t.Errorf("value = %v, want 1", conv.Scalar.ConvertedValue)
		}
	})

	t.Run("72F -> 22.22 C", func(t *testing.T) {
		settings := types.UserSettings{TemperatureUnit: "c"}
		conv := d.FindConversion("72°F", settings)
		if conv == nil || conv.Scalar == nil {
			t.Fatal("expected a scalar conversion")
		}
		if round2(conv.Scalar.ConvertedValue) != 22.22 || conv.Scalar.ConvertedUnit != "c" {
			t.Errorf("got %v %s, want 22.22 c", conv.Scalar.ConvertedValue, conv.Scalar.ConvertedUnit)
		}
	})

	t.Run("dimension3D with target length unit", func(t *testing.T) {
		settings := types.UserSettings{LengthUnit: "m"}
		conv := d.FindConversion("10 x 5 x 3 feet", settings)
		if conv == nil || conv.Dimensions3D == nil {
			t.Fatal("expected a dimensions3D conversion")
		}
		if conv.Dimensions3D.Unit != "m" {
			t.Errorf("unit = %s, want m", conv.Dimensions3D.Unit)
		}
	})

	t.Run("6m x 4m x 2.5m with lengthUnit ft", func(t *testing.T) {
		settings := types.UserSettings{LengthUnit: "ft"}
		conv := d.FindConversion("6m x 4m x 2.5m", settings)
		if conv == nil || conv.Dimensions3D == nil {
			t.Fatal("expected a dimensions3D conversion")
		}
		dims := conv.Dimensions3D
		if dims.Unit != "ft" {
			t.Fatalf("unit = %s, want ft", dims.Unit)
		}
		if round2(dims.L) != 19.69 || round2(dims.W) != 13.12 || round2(dims.H) != 8.2 {
			t.Errorf("got %v x %v x %v, want 19.69 x 13.12 x 8.2", dims.L, dims.W, dims.H)
		}
	})

	t.Run("3:30 PM EST -> PST", func(t *testing.T) {
		settings := types.UserSettings{TimezoneUnit: "PST"}
		conv := d.FindConversion("let's meet at 3:30 PM EST", settings)
		if conv == nil || conv.TimeZone == nil {
			t.Fatal("expected a timezone conversion")
		}
		got := convert.FormatTimeZone(conv.TimeZone, true)
		if got != "12:30 PM PST" {
			t.Errorf("got %q, want '12:30 PM PST'", got)
		}
	})

	t.Run("$100 currency detection is pending, not resolved here", func(t *testing.T) {
		settings := types.UserSettings{CurrencyUnit: "EUR"}
		conv := d.FindConversion("$100 for the ticket", settings)
		if conv == nil || conv.CurrencyPending == nil {
			t.Fatal("expected a pending currency conversion")
		}
		if conv.CurrencyPending.FromCode != "USD" || conv.CurrencyPending.ToCode != "EUR" || conv.CurrencyPending.Amount != 100 {
			t.Errorf("got %+v, want USD->EUR 100", conv.CurrencyPending)
		}
	})
}

func TestFindConversionNoMatch(t *testing.T) {
	d := newTestDetector()
	if conv := d.FindConversion("just some ordinary text", types.UserSettings{}); conv != nil {
		t.Errorf("expected no match, got %+v", conv)
	}
}

func TestFindConversionRejectsMultilineInput(t *testing.T) {
	d := newTestDetector()
	if conv := d.FindConversion("10 feet\nmore text", types.UserSettings{}); conv != nil {
		t.Error("expected nil for multiline input")
	}
}

func TestFindConversionRejectsEmptyInput(t *testing.T) {
	d := newTestDetector()
	if conv := d.FindConversion("   ", types.UserSettings{}); conv != nil {
		t.Error("expected nil for blank input")
	}
}

// TestFindConversionIdempotentOnOwnOutput proves running detection on a converted
// result's own text either finds nothing new or resolves to the same
// unit it already displays - it never oscillates.
func TestFindConversionIdempotentOnOwnOutput(t *testing.T) {
	d := newTestDetector()
	settings := types.UserSettings{LengthUnit: "m"}
	first := d.FindConversion("10 feet", settings)
	if first == nil || first.Scalar == nil {
		t.Fatal("expected first conversion to succeed")
	}
	rendered := convert.New(units.New()).FormatResult(first.Scalar.ConvertedValue, first.Scalar.ConvertedUnit)
	second := d.FindConversion(rendered, types.UserSettings{LengthUnit: first.Scalar.ConvertedUnit})
	if second != nil {
		t.Errorf("expected re-detecting the already-converted text (same target unit) to be a no-op, got %+v", second.Scalar)
	}
}

func TestMatchLinearDimensionRejectsCrossDimension(t *testing.T) {
	d := newTestDetector()
	// "5 kg" should never resolve through the length pattern table.
	conv := d.FindConversion("5 kg of flour", types.UserSettings{WeightUnit: "lb"})
	if conv == nil || conv.Scalar == nil {
		t.Fatal("expected a weight scalar conversion")
	}
	if conv.Scalar.ConvertedUnit != "lb" {
		t.Errorf("unit = %s, want lb", conv.Scalar.ConvertedUnit)
	}
}

func TestTorqueVsNanometerDisambiguation(t *testing.T) {
	d := newTestDetector()

	torque := d.FindConversion("tighten to 10Nm", types.UserSettings{TorqueUnit: "lbft"})
	if torque == nil || torque.Scalar == nil {
		t.Fatal("expected a torque conversion for bare 'Nm'")
	}
	if torque.OriginalUnit != "Nm" {
		t.Errorf("original unit = %s, want Nm (torque)", torque.OriginalUnit)
	}

	length := d.FindConversion("a gap of 10nm", types.UserSettings{LengthUnit: "um"})
	if length == nil || length.Scalar == nil {
		t.Fatal("expected a length conversion for lowercase 'nm'")
	}
	if length.OriginalUnit != "nm" {
		t.Errorf("original unit = %s, want nm (nanometer)", length.OriginalUnit)
	}
}

// TestTorqueDotOperatorSurfaceForm proves "lb·ft" (the dot-operator form,
// spec.md §6.2's primary listed torque surface form) is detected and
// canonicalized, not just the hyphen/dot ASCII variants.
func TestTorqueDotOperatorSurfaceForm(t *testing.T) {
	d := newTestDetector()
	conv := d.FindConversion("torque spec: 5 lb·ft", types.UserSettings{})
	if conv == nil || conv.Scalar == nil {
		t.Fatal("expected a torque conversion for 'lb·ft'")
	}
	if conv.OriginalUnit != "lbft" {
		t.Errorf("original unit = %s, want lbft", conv.OriginalUnit)
	}
	if got := round2(conv.Scalar.ConvertedValue); got != 6.78 || conv.Scalar.ConvertedUnit != "Nm" {
		t.Errorf("got %v %s, want 6.78 Nm", got, conv.Scalar.ConvertedUnit)
	}
}

func round2(v float64) float64 {
	return convert.RoundHalfAwayFromZero(v, 2)
}
