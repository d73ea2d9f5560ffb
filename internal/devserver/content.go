package devserver

import (
	"fmt"
	"strings"
)

// item is one gradeable unit of dev content.
type item struct {
	ID         string
	Prompt     string
	Choices    []string
	Difficulty string

	// answers are the accepted responses, lowercase. Empty means any
	// non-empty response is accepted (debate turns).
	answers []string
}

func (it item) accepts(response string) bool {
	if len(it.answers) == 0 {
		return strings.TrimSpace(response) != ""
	}
	got := strings.ToLower(strings.TrimSpace(response))
	for _, want := range it.answers {
		if got == want {
			return true
		}
	}
	return false
}

func (it item) feedback(correct bool) string {
	if correct {
		return "Nice work!"
	}
	if len(it.answers) > 0 {
		return "Not quite — think about the definition again."
	}
	return "Try again."
}

var vocabWords = []struct {
	word       string
	definition string
}{
	{"ephemeral", "lasting a very short time"},
	{"ubiquitous", "present everywhere"},
	{"candid", "honest and direct"},
	{"arduous", "requiring great effort"},
	{"lucid", "clear and easy to understand"},
}

var conceptQuestions = []struct {
	prompt  string
	choices []string
	answer  int
}{
	{
		"Which process moves water from plants into the atmosphere?",
		[]string{"transpiration", "condensation", "infiltration", "percolation"},
		0,
	},
	{
		"Photosynthesis converts light energy into what form?",
		[]string{"thermal energy", "chemical energy", "kinetic energy", "sound energy"},
		1,
	},
	{
		"Which organelle packages proteins for transport?",
		[]string{"mitochondrion", "ribosome", "golgi apparatus", "vacuole"},
		2,
	},
	{
		"Decomposers return which element to the soil?",
		[]string{"helium", "argon", "neon", "nitrogen"},
		3,
	},
}

var debateTurns = []string{
	"Opening: should schools replace textbooks with tablets? State your position.",
	"Your opponent argues cost outweighs benefit. Respond.",
	"Closing: summarize your strongest point in one paragraph.",
}

// buildItems produces deterministic dev content for an activity/subject
// pair. Subjects prefixed "missing-" do not exist, so the 404 path can be
// exercised from the client.
func buildItems(activity, subjectID string) ([]item, bool) {
	if strings.HasPrefix(subjectID, "missing-") {
		return nil, false
	}

	switch activity {
	case "vocab":
		items := make([]item, len(vocabWords))
		for i, w := range vocabWords {
			items[i] = item{
				ID:      fmt.Sprintf("w-%s-%d", subjectID, i),
				Prompt:  fmt.Sprintf("Define: %s", w.word),
				answers: []string{w.definition},
			}
		}
		return items, true

	case "conceptmap":
		items := make([]item, len(conceptQuestions))
		for i, q := range conceptQuestions {
			items[i] = item{
				ID:         fmt.Sprintf("q-%s-%d", subjectID, i),
				Prompt:     q.prompt,
				Choices:    q.choices,
				Difficulty: "medium",
				answers: []string{
					q.choices[q.answer],
					string(rune('a' + q.answer)),
				},
			}
		}
		return items, true

	case "debate":
		items := make([]item, len(debateTurns))
		for i, turn := range debateTurns {
			items[i] = item{
				ID:     fmt.Sprintf("d-%s-%d", subjectID, i),
				Prompt: turn,
			}
		}
		return items, true
	}

	return nil, false
}
