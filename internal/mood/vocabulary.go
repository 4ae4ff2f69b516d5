package mood

// DefaultMood is substituted when a model reply cannot be used.
const DefaultMood = "Calm"

// DefaultVocabulary is the fixed set of mood labels offered to the model.
var DefaultVocabulary = []string{
	"Joyful",
	"Calm",
	"Energetic",
	"Contemplative",
	"Melancholic",
	"Startled",
	"Relaxed",
	"Content",
	"Mysterious",
	"Refreshed",
	"Invigorated",
	"Tranquil",
	"Exotic",
	"Sad",
	"Dispirited",
	"Anxious",
	"Gloomy",
	"Dreary",
	"Stormy",
	"Restless",
	"Depressed",
	"Tense",
	"Moody",
	"Sorrowful",
	"Worried",
}
