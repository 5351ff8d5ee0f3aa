package models

// Flight is a search result reshaped from the aggregator response. Flights are
// never persisted; a booking captures its own itinerary snapshot.
type Flight struct {
	FlightNumber   string          `json:"flightNumber"`
	Departure      string          `json:"departure"`
	Arrival        string          `json:"arrival"`
	DepartureTime  string          `json:"departureTime"`
	ArrivalTime    string          `json:"arrivalTime"`
	Duration       string          `json:"duration"`
	Price          float64         `json:"price"`
	Currency       string          `json:"currency"`
	Airline        string          `json:"airline"`
	Stops          int             `json:"stops"`
	StopLocations  []string        `json:"stopLocations,omitempty"`
	Direct         bool            `json:"direct"`
	AvailableSeats int             `json:"availableSeats"`
	CabinClass     string          `json:"cabinClass"`
	Refundable     bool            `json:"refundable"`
	Segments       []FlightSegment `json:"segments,omitempty"`
}

type FlightSegment struct {
	DepartureAirport string `json:"departureAirport"`
	ArrivalAirport   string `json:"arrivalAirport"`
	DepartureTime    string `json:"departureTime"`
	ArrivalTime      string `json:"arrivalTime"`
	Duration         string `json:"duration"`
	CarrierCode      string `json:"carrierCode"`
	FlightNumber     string `json:"flightNumber"`
}
