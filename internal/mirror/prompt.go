package mirror

import "fmt"

// systemPrompt frames the mirror as an encouraging mentor for a young
// learner. Tone rules live here rather than per-request.
const systemPrompt = "You are an encouraging educational psychologist and mentor. " +
	"Your task is to compare two skill recordings (past and present) by the " +
	"same student to celebrate their growth."

// buildPrompt assembles the comparison prompt for one capsule.
// The five dimensions and the strict no-grades guidelines are part of the
// product contract: the output must stay qualitative and positive.
func buildPrompt(skillName, pastContent, presentContent, goalMessage string) string {
	return fmt.Sprintf(`Skill Track: %s
---
PAST RECORDING (Locked previously):
"%s"

MESSAGE PAST STUDENT SENT TO FUTURE SELF:
"%s"

PRESENT RECORDING (Today's achievement):
"%s"
---

Analyze the improvement using these specific dimensions:
1. Clarity of Explanation: How much clearer are they now?
2. Confidence: Do they sound more self-assured and bold?
3. Vocabulary Usage: What new terms or concepts are they using correctly?
4. Speed and Structure: Is their thinking more organized or faster?
5. Concept Understanding: How has their mental model of %s deepened?

STRICT GUIDELINES:
- Use positive, motivational language.
- Provide specific examples of improvements found in the text.
- Maintain a student-friendly tone (ages 11-18).
- DO NOT use negative judgment or criticism.
- DO NOT use marks, grades, or percentages.

OUTPUT FORMAT:
- A short, inspiring "Growth Summary" (2-3 sentences).
- A section titled "Your Evolution" with bullet points for the 5 dimensions above.
- A final encouraging closing thought reflecting on their message to their future self.`,
		skillName, pastContent, goalMessage, presentContent, skillName)
}
