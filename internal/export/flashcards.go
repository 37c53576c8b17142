package export

import (
	"regexp"
	"strings"
)

// Card is one flashcard parsed from model output.
type Card struct {
	Topic string
	Front string
	Back  string
}

var (
	cardLine   = regexp.MustCompile(`(?i)front\s*:\s*(.*?)\s*\|\s*back\s*:\s*(.*)$`)
	listMarker = regexp.MustCompile(`^\s*(?:[-*•]+|\d+[.)])\s*`)
	emphasis   = strings.NewReplacer("**", "", "__", "")
)

// ParseFlashcards reads lines of the form "Front: ... | Back: ...". Other
// non-empty lines are treated as topic headings for the cards that follow.
func ParseFlashcards(text string) []Card {
	var (
		cards []Card
		topic string
	)
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if m := cardLine.FindStringSubmatch(emphasis.Replace(line)); m != nil {
			cards = append(cards, Card{
				Topic: topic,
				Front: cleanMarkup(listMarker.ReplaceAllString(m[1], "")),
				Back:  cleanMarkup(m[2]),
			})
			continue
		}
		if t := cleanMarkup(listMarker.ReplaceAllString(line, "")); t != "" {
			topic = strings.TrimSuffix(t, ":")
		}
	}
	return cards
}

func cleanMarkup(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "# ")
	s = strings.TrimSpace(strings.Trim(s, "*_`"))
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	return strings.TrimSpace(s)
}
