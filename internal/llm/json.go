package llm

import (
	"encoding/json"
	"log"
	"strings"
)

// ParseJSONResponse decodes an extraction reply into a generic map. Models
// often wrap the JSON in a markdown code fence despite instructions not to,
// so fences are stripped first. Returns nil when nothing decodable remains.
func ParseJSONResponse(text string) map[string]any {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	// Keep only the lines between the opening and closing fence.
	if strings.HasPrefix(text, "```") {
		lines := strings.Split(text, "\n")
		endIdx := len(lines) - 1
		for i := len(lines) - 1; i > 0; i-- {
			if strings.TrimSpace(lines[i]) == "```" {
				endIdx = i
				break
			}
		}
		text = strings.Join(lines[1:endIdx], "\n")
	}

	var result map[string]any
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		log.Printf("Extraction reply is not valid JSON: %v", err)
		return nil
	}

	return result
}
