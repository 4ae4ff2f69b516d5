package mood

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/i474232898/weatherbeats/internal/weather"
)

// SystemPrompt instructs the model how to answer.
const SystemPrompt = "Given these weather informations, provide the associated mood. " +
	"Assign 2-3 moods based on the moods list. " +
	"Return an object with JSON format with name, description, temperature, humidity, clouds, wind_speed and mood as fields, " +
	"where mood is a list of strings taken from the moods list."

// BuildPrompt renders a weather snapshot and the mood vocabulary as the
// single user message sent to the model.
func BuildPrompt(snap weather.Snapshot, vocabulary []string) string {
	quoted := make([]string, len(vocabulary))
	for i, m := range vocabulary {
		quoted[i] = strconv.Quote(m)
	}

	return fmt.Sprintf(
		"Weather information: name: %s -- description: %s -- temp: %s -- clouds: %s -- wind: %s -- humidity: %s -- moods: [%s]",
		snap.Condition,
		snap.Description,
		formatNumber(snap.Temperature),
		formatNumber(snap.Clouds),
		formatNumber(snap.WindSpeed),
		formatNumber(snap.Humidity),
		strings.Join(quoted, ", "),
	)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
