package domain

// BoundingBox is an inclusive lat/lng rectangle. Coordinates outside the
// box are logged by callers but never rejected; source data occasionally
// places records just across a border.
type BoundingBox struct {
	MinLat float64
	MaxLat float64
	MinLng float64
	MaxLng float64
}

// Contains reports whether the coordinate pair lies inside the box.
func (b BoundingBox) Contains(lat, lng float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat &&
		lng >= b.MinLng && lng <= b.MaxLng
}

// Region carries the geographic settings injected into parsing and
// aggregation: the validity box, the viewport returned for empty record
// sets, the country filter for event validity, and the substring that
// partitions events into the target sub-region.
type Region struct {
	Box            BoundingBox
	DefaultBounds  Bounds
	Country        string
	SubregionToken string
}

// Bounds is the viewport rectangle handed to the map front end.
type Bounds struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

// ComputeBounds returns the min/max viewport covering every record.
// An empty record set yields the region's default viewport so the front
// end never receives NaN or an inverted rectangle.
func ComputeBounds[T Geolocated](records []T, region Region) Bounds {
	if len(records) == 0 {
		return region.DefaultBounds
	}

	lat, lng := records[0].Coords()
	bounds := Bounds{North: lat, South: lat, East: lng, West: lng}
	for _, r := range records[1:] {
		lat, lng = r.Coords()
		if lat > bounds.North {
			bounds.North = lat
		}
		if lat < bounds.South {
			bounds.South = lat
		}
		if lng > bounds.East {
			bounds.East = lng
		}
		if lng < bounds.West {
			bounds.West = lng
		}
	}
	return bounds
}

// UniqueLocations de-duplicates records by (location, area). The first
// occurrence wins, including its coordinates, and input order is kept.
func UniqueLocations[T Geolocated](records []T) []GeographicData {
	type key struct{ location, area string }

	seen := make(map[key]struct{}, len(records))
	unique := make([]GeographicData, 0, len(records))
	for _, r := range records {
		location, area := r.LocationKey()
		k := key{location, area}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		lat, lng := r.Coords()
		unique = append(unique, GeographicData{
			Latitude:  lat,
			Longitude: lng,
			Location:  location,
			Area:      area,
		})
	}
	return unique
}
