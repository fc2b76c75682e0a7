package translate

import "strings"

const translateSystemPrompt = "You are a literary translation assistant. " +
	"Translate the text you are given, preserving its paragraph structure. " +
	"Reply with the translation only: no preamble, no notes, no quotes."

const ruleSystemPrompt = "You compare a machine translation draft with the reviewer's corrected version " +
	"and distill the reviewer's preference into one short, reusable style rule. " +
	`Reply with JSON only, exactly {"rule": "<the rule>"}.`

// buildTranslatePrompt combines the project instructions, the learned
// style rules and the source paragraph into a single prompt.
func buildTranslatePrompt(instructions string, rules []string, text string) string {
	var sections []string

	if ins := strings.TrimSpace(instructions); ins != "" {
		sections = append(sections, ins)
	}

	if len(rules) > 0 {
		var b strings.Builder
		b.WriteString("Style rules learned from earlier corrections:")
		for _, r := range rules {
			r = strings.TrimSpace(r)
			if r == "" {
				continue
			}
			b.WriteString("\n- ")
			b.WriteString(r)
		}
		sections = append(sections, b.String())
	}

	sections = append(sections, "TEXT:\n"+text)
	return strings.Join(sections, "\n\n")
}

func buildRulePrompt(draft, correction string) string {
	var b strings.Builder
	b.WriteString("DRAFT:\n")
	b.WriteString(strings.TrimSpace(draft))
	b.WriteString("\n\nCORRECTED:\n")
	b.WriteString(strings.TrimSpace(correction))
	return b.String()
}
