package convert

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ZoneTable maps named zone abbreviations to a fixed UTC offset in
// minutes. Real-world zone abbreviations are not unique DST-aware
// mappings; this mirrors the source's simplification of using fixed
// offsets rather than a full IANA tzdata lookup, which is out of scope
// per spec §1.
type ZoneTable struct {
	offsets map[string]int
}

func defaultZoneTable() *ZoneTable {
	t := &ZoneTable{offsets: make(map[string]int)}
	add := func(name string, offsetMinutes int) { t.offsets[strings.ToUpper(name)] = offsetMinutes }

	// UTC / GMT
	add("UTC", 0)
	add("GMT", 0)

	// US
	add("EST", -5*60)
	add("EDT", -4*60)
	add("CST", -6*60)
	add("CDT", -5*60)
	add("MST", -7*60)
	add("MDT", -6*60)
	add("PST", -8*60)
	add("PDT", -7*60)
	add("AKST", -9*60)
	add("HST", -10*60)

	// European
	add("BST", 1*60)
	add("CET", 1*60)
	add("CEST", 2*60)
	add("EET", 2*60)
	add("EEST", 3*60)
	add("WET", 0)
	add("WEST", 1*60)
	add("MSK", 3*60)

	// Asian
	add("IST", 5*60+30)
	add("PKT", 5*60)
	add("BST_BD", 6*60)
	add("ICT", 7*60)
	add("CST_CN", 8*60)
	add("SGT", 8*60)
	add("HKT", 8*60)
	add("JST", 9*60)
	add("KST", 9*60)

	// Australian
	add("AWST", 8*60)
	add("ACST", 9*60+30)
	add("AEST", 10*60)
	add("AEDT", 11*60)

	// African
	add("WAT", 1*60)
	add("CAT", 2*60)
	add("EAT", 3*60)
	add("SAST", 2*60)

	// South American
	add("ART", -3*60)
	add("BRT", -3*60)
	add("CLT", -4*60)

	return t
}

// OffsetMinutes resolves a zone name or "GMT±N"/"UTC±N" literal to a
// signed UTC offset in minutes.
func (t *ZoneTable) OffsetMinutes(zone string) (int, bool) {
	zone = strings.TrimSpace(zone)
	if zone == "" {
		return 0, false
	}
	if off, ok := parseGMTOffset(zone); ok {
		return off, true
	}
	off, ok := t.offsets[strings.ToUpper(zone)]
	return off, ok
}

// Resolve returns the target offset and display label. "auto" derives the
// offset from the local machine clock (spec §4.4) rather than the zone
// table. When useOffsetFormat is true, or zone is "auto", the label is
// normalized to "GMT±N" per spec §4.4's note that the offset->zone-name
// reverse mapping is ambiguous.
func (t *ZoneTable) Resolve(zone string, useOffsetFormat bool) (int, string, bool) {
	if strings.EqualFold(zone, "auto") {
		off := LocalUTCOffsetMinutes(time.Now())
		return off, formatGMTOffset(off), true
	}
	off, ok := t.OffsetMinutes(zone)
	if !ok {
		return 0, "", false
	}
	if useOffsetFormat {
		return off, formatGMTOffset(off), true
	}
	return off, strings.ToUpper(zone), true
}

// parseGMTOffset parses "GMT+2", "UTC-5", "GMT+5:30".
func parseGMTOffset(zone string) (int, bool) {
	upper := strings.ToUpper(zone)
	var rest string
	switch {
	case strings.HasPrefix(upper, "GMT"):
		rest = upper[3:]
	case strings.HasPrefix(upper, "UTC"):
		rest = upper[3:]
	default:
		return 0, false
	}
	if rest == "" {
		return 0, true
	}
	sign := 1
	if rest[0] == '+' {
		rest = rest[1:]
	} else if rest[0] == '-' {
		sign = -1
		rest = rest[1:]
	} else {
		return 0, false
	}
	hoursPart, minsPart := rest, "0"
	if idx := strings.Index(rest, ":"); idx >= 0 {
		hoursPart = rest[:idx]
		minsPart = rest[idx+1:]
	}
	hours, err := strconv.Atoi(hoursPart)
	if err != nil {
		return 0, false
	}
	mins, err := strconv.Atoi(minsPart)
	if err != nil {
		return 0, false
	}
	return sign * (hours*60 + mins), true
}

func formatGMTOffset(offsetMinutes int) string {
	sign := "+"
	if offsetMinutes < 0 {
		sign = "-"
		offsetMinutes = -offsetMinutes
	}
	hours := offsetMinutes / 60
	mins := offsetMinutes % 60
	if mins == 0 {
		return fmt.Sprintf("GMT%s%d", sign, hours)
	}
	return fmt.Sprintf("GMT%s%d:%02d", sign, hours, mins)
}

// ReverseLookup finds a zone name whose offset matches the given minutes.
// Nothing in the module calls it; the canonical "auto" label is always the
// GMT±N form since many zones can share an offset.
func (t *ZoneTable) ReverseLookup(offsetMinutes int) (string, bool) {
	for name, off := range t.offsets {
		if off == offsetMinutes {
			return name, true
		}
	}
	return "", false
}
