package booking

import (
	"regexp"
	"strings"
	"unicode"
)

// The extraction below is deliberately keyword-based. The booking flow's
// correctness is defined relative to these exact rules; a smarter extractor
// changes observable behavior.

var (
	greetingWords     = []string{"hello", "hi", "hey", "good"}
	confirmationWords = []string{"yes", "confirm", "book", "schedule"}

	phonePattern = regexp.MustCompile(`[\d\-\(\)\+\s]+`)
	digitRuns    = regexp.MustCompile(`\d+`)

	slotTokens = []string{"9", "10", "11", "12", "13", "14", "15", "16"}

	// Doctor keyword table. A case-insensitive substring match on the key
	// records the corresponding doctor id.
	doctorKeywords = []struct {
		keyword string
		id      string
	}{
		{"smith", "dr_smith"},
		{"johnson", "dr_johnson"},
		{"brown", "dr_brown"},
	}
)

// Advance runs one turn of the booking state machine: given the session's
// current step, the patient info collected so far, and the raw user text, it
// returns the resulting step and patient info. It is pure and deterministic;
// when the text does not satisfy the current step the inputs are returned
// unchanged, which is a normal no-progress outcome rather than an error.
func Advance(step Step, info PatientInfo, rawText string) (Step, PatientInfo) {
	lower := strings.ToLower(rawText)

	switch step {
	case StepGreeting:
		if containsAny(lower, greetingWords) {
			return step.next(), info
		}

	case StepNameCollection:
		if info.Name == "" {
			if name, ok := extractName(rawText); ok {
				info.Name = name
				return step.next(), info
			}
		}

	case StepPhoneCollection:
		if phone, ok := extractPhone(rawText); ok {
			if info.Phone == "" {
				info.Phone = phone
			}
			return step.next(), info
		}

	case StepSymptomsCollection:
		if info.Symptoms == "" {
			info.Symptoms = rawText
		}
		return step.next(), info

	case StepDoctorPreference:
		for _, d := range doctorKeywords {
			if strings.Contains(lower, d.keyword) {
				if info.PreferredDoctor == "" {
					info.PreferredDoctor = d.id
				}
				return step.next(), info
			}
		}

	case StepSlotSelection:
		// The matched hour is not recorded: the concrete slot comes from the
		// separate reservation flow.
		if containsSlotToken(rawText) {
			return step.next(), info
		}

	case StepConfirmation:
		if containsAny(lower, confirmationWords) {
			return step.next(), info
		}

	case StepCompleted:
		// Terminal.
	}

	return step, info
}

func containsAny(lower string, words []string) bool {
	for _, w := range words {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// extractName accepts the trimmed text as a name when it is non-empty, has at
// most three whitespace-separated tokens, and contains only letters once
// spaces are removed.
func extractName(text string) (string, bool) {
	candidate := strings.TrimSpace(text)
	if candidate == "" {
		return "", false
	}
	if len(strings.Fields(candidate)) > 3 {
		return "", false
	}
	for _, r := range candidate {
		if r == ' ' {
			continue
		}
		if !unicode.IsLetter(r) {
			return "", false
		}
	}
	return candidate, true
}

// extractPhone scans for runs of digits and phone punctuation, then accepts
// the first run whose non-digits strip down to at least ten digits. The
// stored value is the raw matched substring, trimmed.
func extractPhone(text string) (string, bool) {
	for _, match := range phonePattern.FindAllString(text, -1) {
		digits := 0
		for _, r := range match {
			if r >= '0' && r <= '9' {
				digits++
			}
		}
		if digits >= 10 {
			return strings.TrimSpace(match), true
		}
	}
	return "", false
}

// containsSlotToken reports whether the text mentions an hour between 9 and
// 16 as a standalone digit run.
func containsSlotToken(text string) bool {
	for _, run := range digitRuns.FindAllString(text, -1) {
		run = strings.TrimLeft(run, "0")
		for _, tok := range slotTokens {
			if run == tok {
				return true
			}
		}
	}
	return false
}
