package domain

import (
	"sort"
	"strings"
	"time"
)

// dateLayout is the ISO date format used by the displacement export.
const dateLayout = "2006-01-02"

// DateRange is an inclusive ISO date span. Empty strings mean no record in
// the input carried a parseable date.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Summary holds the aggregate statistics for a set of valid displacement
// events, partitioned by the region's sub-region token.
type Summary struct {
	TotalEvents       int                `json:"total_events"`
	TotalDisplaced    int                `json:"total_displaced"`
	GazaDisplaced     int                `json:"gaza_displaced"`
	WestBankDisplaced int                `json:"west_bank_displaced"`
	GazaEvents        int                `json:"gaza_events"`
	WestBankEvents    int                `json:"west_bank_events"`
	DateRange         DateRange          `json:"date_range"`
	LargestEvent      int                `json:"largest_event"`
	MostRecent        *DisplacementEvent `json:"most_recent,omitempty"`
	GeneratedAt       time.Time          `json:"generated_at"`
}

// ValidEvents filters displacement events down to the rows the map can use:
// both coordinates present, a positive figure, a displacement date, and the
// region's country. Everything else is dropped silently; the export mixes in
// countrywide rollup rows and placeholder rows with zeroed coordinates.
func ValidEvents(events []DisplacementEvent, region Region) []DisplacementEvent {
	valid := make([]DisplacementEvent, 0, len(events))
	for _, e := range events {
		if e.Latitude == 0 || e.Longitude == 0 {
			continue
		}
		if e.Figure <= 0 || e.DisplacementDate == "" {
			continue
		}
		if e.Country != region.Country {
			continue
		}
		valid = append(valid, e)
	}
	return valid
}

// InSubregion reports whether the event's location name contains the region's
// sub-region token, case-insensitively.
func InSubregion(e DisplacementEvent, region Region) bool {
	return strings.Contains(strings.ToLower(e.Location), strings.ToLower(region.SubregionToken))
}

// PartitionEvents splits events into the sub-region group and the rest.
// The two groups are mutually exclusive and keep input order.
func PartitionEvents(events []DisplacementEvent, region Region) (subregion, rest []DisplacementEvent) {
	subregion = make([]DisplacementEvent, 0, len(events))
	rest = make([]DisplacementEvent, 0, len(events))
	for _, e := range events {
		if InSubregion(e, region) {
			subregion = append(subregion, e)
		} else {
			rest = append(rest, e)
		}
	}
	return subregion, rest
}

// Summarize computes aggregate statistics over valid displacement events.
// The caller is expected to have filtered with ValidEvents first; Summarize
// itself does no validity checks. Output is deterministic for identical input.
func Summarize(events []DisplacementEvent, region Region) Summary {
	s := Summary{
		TotalEvents: len(events),
		GeneratedAt: clock.Now().UTC(),
	}

	var mostRecent *DisplacementEvent
	var mostRecentDate time.Time

	for i := range events {
		e := events[i]
		s.TotalDisplaced += e.Figure
		if InSubregion(e, region) {
			s.GazaDisplaced += e.Figure
			s.GazaEvents++
		} else {
			s.WestBankDisplaced += e.Figure
			s.WestBankEvents++
		}
		if e.Figure > s.LargestEvent {
			s.LargestEvent = e.Figure
		}

		date, err := time.Parse(dateLayout, e.DisplacementDate)
		if err != nil {
			// Unparseable dates stay in the totals but out of the
			// date-range and most-recent computations.
			continue
		}
		if mostRecent == nil || date.After(mostRecentDate) {
			mostRecent = &events[i]
			mostRecentDate = date
		}
		if s.DateRange.Start == "" || e.DisplacementDate < s.DateRange.Start {
			s.DateRange.Start = e.DisplacementDate
		}
		if s.DateRange.End == "" || e.DisplacementDate > s.DateRange.End {
			s.DateRange.End = e.DisplacementDate
		}
	}

	s.MostRecent = mostRecent
	return s
}

// DistinctSources returns the sorted set of non-empty source strings.
func DistinctSources(events []DisplacementEvent) []string {
	return distinct(events, func(e DisplacementEvent) string { return e.Sources })
}

// DistinctEventTypes returns the sorted set of non-empty event-type strings.
func DistinctEventTypes(events []DisplacementEvent) []string {
	return distinct(events, func(e DisplacementEvent) string { return e.EventType })
}

func distinct(events []DisplacementEvent, field func(DisplacementEvent) string) []string {
	seen := make(map[string]struct{}, len(events))
	values := make([]string, 0, len(events))
	for _, e := range events {
		v := strings.TrimSpace(field(e))
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}
