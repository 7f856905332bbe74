package api

type location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type placeDTO struct {
	Name     string   `json:"name"`
	Category string   `json:"category,omitempty"`
	Tenant   string   `json:"tenant"`
	Location location `json:"location"`
	Distance *float64 `json:"distance,omitempty"`
	Units    string   `json:"units,omitempty"`
}

type placesResult struct {
	Count  int        `json:"count"`
	Places []placeDTO `json:"places"`
}
