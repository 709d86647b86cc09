package ai

import (
	"fmt"
	"strings"

	"github.com/verte-zerg/habitdrill/internal/model"
)

const blankExample = `{ "blankedPhrase": "REMEMBER [BLANK] AND SEE IT ALL", "blankedWords": ["STAY BACK"] }`

// BlankPrompt builds the instruction asking for 1 to 3 words of the phrase
// to be replaced with [BLANK] markers.
func BlankPrompt(req model.BlankRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Given the original phrase: %q from the topic: %q, ", req.Phrase, req.TopicTitle)
	b.WriteString("identify 1 to 3 key words to replace with '[BLANK]' markers. ")
	b.WriteString("Return the modified phrase and the original blanked words in JSON format.")
	if hint := StruggleHint(req.StruggleWords); hint != "" {
		b.WriteString(" ")
		b.WriteString(hint)
	}
	b.WriteString(" Ensure the blanked phrase uses '[BLANK]' for each word to be filled,")
	b.WriteString(" and list the blanked words in the same order as the markers.")
	b.WriteString(" Example JSON output: ")
	b.WriteString(blankExample)
	return b.String()
}

// StruggleHint renders previously failed words, most failed first.
// It returns "" when there are none.
func StruggleHint(words []string) string {
	if len(words) == 0 {
		return ""
	}
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = "'" + w + "'"
	}
	return fmt.Sprintf("The user has previously struggled with these words for this phrase: %s. "+
		"Please prioritize blanking one or more of these if appropriate, or other key words if not.",
		strings.Join(quoted, ", "))
}

// HintPrompt asks for a subtle clue toward one phrase of the category.
func HintPrompt(topicTitle string) string {
	return fmt.Sprintf("You are playing a memorization game about professional driving habits. "+
		"You need to recall phrases for the category: %q. "+
		"The user is having trouble recalling all phrases. Provide a subtle hint to help recall ONE missing phrase "+
		"for this category, without giving away the exact answer. "+
		"For example, if the category is \"AIM HIGH IN STEERING\" and a missing phrase is "+
		"\"Imaginary target baseball dartboard\", a hint could be "+
		"\"Think about where you're looking on the road, like a specific sports target.\" "+
		"Do not reveal the exact phrase. Provide only the hint.", topicTitle)
}
