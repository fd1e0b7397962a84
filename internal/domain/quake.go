package domain

import "context"

// Quake is the latest felt earthquake reported by BMKG (the Indonesian
// meteorology, climatology and geophysics agency).
type Quake struct {
	DateTime  string `json:"date_time,omitempty"`
	Magnitude string `json:"magnitude,omitempty"`
	Depth     string `json:"kedalaman,omitempty"`
	Region    string `json:"wilayah,omitempty"`
	Potential string `json:"potensi,omitempty"`
	Felt      string `json:"dirasakan,omitempty"`
	Shakemap  string `json:"shakemap,omitempty"`
}

// QuakeSource returns the most recent earthquake.
type QuakeSource interface {
	Latest(ctx context.Context) (Quake, error)
}
