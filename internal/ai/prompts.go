package ai

import (
	"fmt"

	"github.com/MrSnakeDoc/nearby/internal/domain"
)

// SearchPrompt asks for a local summary followed by the metadata block the
// pipeline parses.
func SearchPrompt(query string, loc *domain.Location) string {
	where := "me"
	if loc != nil {
		where = fmt.Sprintf("the user at (%g, %g)", loc.Latitude, loc.Longitude)
	}
	return fmt.Sprintf(`Find "%s" near %s.
This is a global search. Classify each result as either a 'market', 'service', 'emergency', or 'lifestyle'.
Provide a professional summary of the local scene in this specific area.
Then, for the places found, provide their metadata in a structured way.
FORMAT AT THE END: JSON_META: [{"title": "Name", "lat": 0.0, "lng": 0.0, "type": "market/service/emergency/lifestyle"}]`,
		query, where)
}

// CategoryPrompt is the query issued when a category shortcut is clicked.
func CategoryPrompt(label string) string {
	return fmt.Sprintf("Find the best %s shops and services", label)
}

func weatherPrompt(loc domain.Location) string {
	return fmt.Sprintf(`What is the current weather at coordinates (%g, %g)?
Return only a JSON object with these keys: "temp" (string, e.g. "22°C"), "condition" (string, e.g. "Sunny"), "emoji" (string, e.g. "☀️"), "locationName" (string, e.g. "San Francisco").
Identify the location accurately based on the coordinates.
Do not include any text outside the JSON.`, loc.Latitude, loc.Longitude)
}

func conciergeInstruction(loc *domain.Location) string {
	where := "Unknown"
	if loc != nil {
		where = fmt.Sprintf("Lat: %g, Lng: %g", loc.Latitude, loc.Longitude)
	}
	return fmt.Sprintf(`You are the NEARBY AI Concierge.
CORE CAPABILITIES:
1. You speak ALL world languages fluently. Always respond in the language the user addresses you in.
2. You are a local expert on ANY region globally.
3. You help users find markets, services, and hidden gems anywhere in the world.
4. User Location Context: %s.
5. Be professional, concise, and helpful. Use emojis sparingly but effectively.`, where)
}

// VoiceInstruction primes live voice sessions.
const VoiceInstruction = `You are the NEARBY voice assistant.
Speak briefly and naturally, in the language the user speaks.
Help the user find places, services and markets around them.`
