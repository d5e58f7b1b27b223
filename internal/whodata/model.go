package whodata

import "time"

// WHORecord is one country/year indicator data point.
type WHORecord struct {
	ID         string    `json:"id"`
	Country    string    `json:"country"`
	Year       int       `json:"year"`
	Indicator  string    `json:"indicator"`
	Value      float64   `json:"value"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Filter narrows indicator listings. Zero values match everything.
type Filter struct {
	Country   string
	Indicator string
	Year      int
}
