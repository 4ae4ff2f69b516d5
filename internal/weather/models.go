package weather

import (
	"time"
)

// Condition is a top-level weather condition name, using OpenWeatherMap's
// "main" vocabulary so every provider reports the same labels.
type Condition string

const (
	ConditionUnknown      Condition = "Unknown"
	ConditionClear        Condition = "Clear"
	ConditionClouds       Condition = "Clouds"
	ConditionRain         Condition = "Rain"
	ConditionDrizzle      Condition = "Drizzle"
	ConditionSnow         Condition = "Snow"
	ConditionThunderstorm Condition = "Thunderstorm"
	ConditionMist         Condition = "Mist"
)

// Coordinates identifies a point on the map.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"long"`
}

// Snapshot is the current weather at a point in time. It is never persisted.
type Snapshot struct {
	Condition   Condition `json:"name"`
	Description string    `json:"description"`
	Temperature float64   `json:"temperature"` // degrees Celsius
	Clouds      float64   `json:"clouds"`      // cloud cover, percent
	WindSpeed   float64   `json:"wind_speed"`  // m/s
	Humidity    float64   `json:"humidity"`    // percent

	Provider  string    `json:"provider"`
	Timestamp time.Time `json:"timestamp"` // always UTC
}
