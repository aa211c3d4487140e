package assistant

import (
	"strings"
	"testing"

	"github.com/clinicdesk/booking-ai/internal/booking"
)

func TestBuildSystemPrompt_EmptyFields(t *testing.T) {
	prompt := BuildSystemPrompt(booking.StepGreeting, booking.PatientInfo{})

	if !strings.Contains(prompt, "Current step: greeting") {
		t.Error("prompt missing current step")
	}
	if !strings.Contains(prompt, "Patient name: Not provided") {
		t.Error("prompt should mark missing name as Not provided")
	}
	if !strings.Contains(prompt, "Preferred doctor: Not specified") {
		t.Error("prompt should mark missing doctor as Not specified")
	}
	if !strings.Contains(prompt, "ask for their name") {
		t.Error("prompt missing greeting step instructions")
	}
}

func TestBuildSystemPrompt_CollectedFields(t *testing.T) {
	info := booking.PatientInfo{
		Name:            "John Doe",
		Phone:           "555-123-4567",
		Symptoms:        "sore throat",
		PreferredDoctor: "dr_johnson",
	}
	prompt := BuildSystemPrompt(booking.StepSlotSelection, info)

	for _, want := range []string{"John Doe", "555-123-4567", "sore throat", "dr_johnson", "available slots"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildSystemPrompt_UnknownStepFallsBack(t *testing.T) {
	prompt := BuildSystemPrompt(booking.Step("weird"), booking.PatientInfo{})
	if !strings.Contains(prompt, "Continue with the booking process.") {
		t.Error("expected fallback step instructions")
	}
}
