package assistant

import (
	"fmt"
	"strings"

	"github.com/clinicdesk/booking-ai/internal/booking"
)

const basePrompt = `You are a professional medical appointment booking assistant.
Your role is to help patients book medical appointments through a conversational interface.

Current session information:
- Current step: %s
- Patient name: %s
- Patient phone: %s
- Symptoms: %s
- Preferred doctor: %s

Available doctors:
- Dr. Smith (General Medicine)
- Dr. Johnson (Cardiology)
- Dr. Brown (Dermatology)

Guidelines:
1. Be professional, empathetic, and helpful
2. Collect information step by step
3. Ask only one question at a time
4. Validate information before proceeding
5. Provide clear next steps
6. If symptoms suggest urgency, recommend immediate medical attention

Current step instructions:
%s`

var stepInstructions = map[booking.Step]string{
	booking.StepGreeting:           "Greet the patient warmly and ask for their name.",
	booking.StepNameCollection:     "Collect the patient's full name and confirm it's correct.",
	booking.StepPhoneCollection:    "Ask for the patient's phone number for appointment confirmation.",
	booking.StepSymptomsCollection: "Ask about their symptoms or reason for the visit. Be empathetic.",
	booking.StepDoctorPreference:   "Based on symptoms, suggest appropriate doctors and ask for preference.",
	booking.StepSlotSelection:      "Show available slots for the preferred doctor and ask them to choose.",
	booking.StepConfirmation:       "Confirm all appointment details and finalize the booking.",
	booking.StepCompleted:          "Provide appointment confirmation and next steps.",
}

// BuildSystemPrompt renders the booking system prompt for the session's
// current step and the patient fields collected so far.
func BuildSystemPrompt(step booking.Step, info booking.PatientInfo) string {
	instructions, ok := stepInstructions[step]
	if !ok {
		instructions = "Continue with the booking process."
	}

	return fmt.Sprintf(basePrompt,
		step,
		orNotProvided(info.Name),
		orNotProvided(info.Phone),
		orNotProvided(info.Symptoms),
		orNotSpecified(info.PreferredDoctor),
		instructions,
	)
}

func orNotProvided(v string) string {
	if strings.TrimSpace(v) == "" {
		return "Not provided"
	}
	return v
}

func orNotSpecified(v string) string {
	if strings.TrimSpace(v) == "" {
		return "Not specified"
	}
	return v
}
