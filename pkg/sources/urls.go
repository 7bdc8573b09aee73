package sources

const (
	// DefaultHealthData is the CDC-derived county table the dashboard was
	// built around. It is expected next to the binary.
	DefaultHealthData = "data/national_health_data_2024.csv"

	CountiesGeoJSONURL = "https://raw.githubusercontent.com/plotly/datasets/master/geojson-counties-fips.json"
)
