package domain

// GeographicData is the common shape shared by every record variant: a
// WGS-84 coordinate pair plus the human-readable location labels used for
// de-duplication and map popups.
type GeographicData struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Location  string  `json:"location"`
	Area      string  `json:"area"`
}

// Coords returns the record's latitude and longitude.
func (g GeographicData) Coords() (float64, float64) {
	return g.Latitude, g.Longitude
}

// LocationKey returns the composite (location, area) identity used for
// unique-location de-duplication.
func (g GeographicData) LocationKey() (string, string) {
	return g.Location, g.Area
}

// Geolocated is satisfied by every record variant via the embedded
// GeographicData, letting the aggregator work over mixed record sets
// without reflection or any-typed rows.
type Geolocated interface {
	Coords() (lat, lng float64)
	LocationKey() (location, area string)
}

// CasualtyRecord is one row of the casualties dataset.
type CasualtyRecord struct {
	GeographicData
	Date           string `json:"date"`
	Killed         int    `json:"killed"`
	Injured        int    `json:"injured"`
	ChildrenKilled int    `json:"children_killed"`
	WomenKilled    int    `json:"women_killed"`
	Source         string `json:"source"`
}

// InfrastructureRecord is one row of the infrastructure damage dataset.
type InfrastructureRecord struct {
	GeographicData
	Date             string `json:"date"`
	HospitalsDamaged int    `json:"hospitals_damaged"`
	SchoolsDamaged   int    `json:"schools_damaged"`
	HomesDestroyed   int    `json:"homes_destroyed"`
	Type             string `json:"type"`
}

// DisplacementRecord is one row of the displacement shelters dataset.
type DisplacementRecord struct {
	GeographicData
	Date                string `json:"date"`
	PeopleDisplaced     int    `json:"people_displaced"`
	DisplacementCenters int    `json:"displacement_centers"`
	Capacity            int    `json:"capacity"`
}

// DisplacementEvent is one row of the IDMC event-level displacement export.
// The file layout differs from the other datasets (see the loader for the
// metadata-line handling); Location carries the export's locations_name.
type DisplacementEvent struct {
	GeographicData
	ID               string `json:"id"`
	Country          string `json:"country"`
	ISO3             string `json:"iso3"`
	Figure           int    `json:"figure"`
	DisplacementDate string `json:"displacement_date"`
	StartDate        string `json:"displacement_start_date"`
	EndDate          string `json:"displacement_end_date"`
	Year             int    `json:"year"`
	EventName        string `json:"event_name"`
	Description      string `json:"description"`
	SourceURL        string `json:"source_url"`
	EventType        string `json:"type"`
	Sources          string `json:"sources"`
}
