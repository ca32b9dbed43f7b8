// Package domain models the humanitarian CSV datasets served to the map
// front end.
//
// # Data sources
//
// Three datasets are produced by the project's own collection script and
// share a layout: a header row followed by comma-delimited data rows with
// latitude, longitude, location, and area columns plus dataset-specific
// counts.
//
//	casualties.csv:     date,killed,injured,children_killed,women_killed,latitude,longitude,location,area,source
//	infrastructure.csv: date,hospitals_damaged,schools_damaged,homes_destroyed,latitude,longitude,location,area,type
//	displacement.csv:   date,people_displaced,displacement_centers,capacity,latitude,longitude,location,area
//
// The fourth dataset, event_data_pse.csv, is the IDMC event-level
// displacement export. Its layout differs in two ways: line index 1
// (0-based) is a metadata line that must be stripped before parsing, and
// rows mix per-event records with countrywide rollups and placeholder rows
// whose coordinates are zero. [ValidEvents] filters those out.
//
// # Parsing conventions
//
// Columns declared numeric must coerce via strconv or the whole file fails
// to load; empty cells count as zero because the exports leave unknown
// counts blank. All other columns are whitespace-trimmed strings. Dates are
// ISO "2006-01-02" strings and stay strings on the records; only the
// summary's date-range and most-recent computations parse them, ignoring
// values that do not parse.
//
// # Coordinate validation
//
// Coordinates are checked against the region's inclusive [BoundingBox].
// Out-of-box pairs are logged at warn level with the record's location and
// kept; border-adjacent records are common and dropping them would blank
// out real map markers.
package domain
