package store

// Song is one playlist entry. Moods is the comma-joined distinct set of
// mood labels attached to the song, not only the ones that matched.
type Song struct {
	Name   string `json:"song_name"`
	Artist string `json:"artist_name"`
	Genre  string `json:"genre"`
	Lyrics string `json:"lyrics"`
	URI    string `json:"uri"`
	Moods  string `json:"moods"`
}

// Location is a city and its coordinates.
type Location struct {
	City string  `json:"location"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"long"`
}

// MoodCount is a row of the mood distribution aggregate.
type MoodCount struct {
	Mood  string `json:"mood"`
	Count int    `json:"mood_count"`
}

// Tables names the four tables the gateway reads from.
type Tables struct {
	SongMoods string `toml:"song_moods"`
	Lyrics    string `toml:"lyrics"`
	CityMoods string `toml:"city_moods"`
	Locations string `toml:"locations"`
}

// DefaultTables returns the table names used by the weatherBeats dataset.
func DefaultTables() Tables {
	return Tables{
		SongMoods: "weatherBeats_songToMood",
		Lyrics:    "weatherBeats_spotifyLyrics",
		CityMoods: "weatherBeats_cityToMood",
		Locations: "weatherBeats_locations",
	}
}
