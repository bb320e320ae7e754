package types

// DistanceResult is a single origin→destination measurement.
type DistanceResult struct {
	Km      int `json:"km"`
	Minutes int `json:"minutes"`
}

// DistanceRecord is an append-only log entry of a distance calculation,
// kept newest-first. Records are never mutated or deleted.
type DistanceRecord struct {
	ID          string `json:"id"`
	Date        string `json:"date"` // RFC 3339
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Km          int    `json:"km"`
	Minutes     int    `json:"minutes"`
}
