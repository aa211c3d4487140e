package booking

// Step is a position in the fixed booking sequence. Steps only ever advance;
// the machine never moves a session backward.
type Step string

const (
	StepGreeting           Step = "greeting"
	StepNameCollection     Step = "name_collection"
	StepPhoneCollection    Step = "phone_collection"
	StepSymptomsCollection Step = "symptoms_collection"
	StepDoctorPreference   Step = "doctor_preference"
	StepSlotSelection      Step = "slot_selection"
	StepConfirmation       Step = "confirmation"
	StepCompleted          Step = "completed"
)

var stepOrder = map[Step]int{
	StepGreeting:           0,
	StepNameCollection:     1,
	StepPhoneCollection:    2,
	StepSymptomsCollection: 3,
	StepDoctorPreference:   4,
	StepSlotSelection:      5,
	StepConfirmation:       6,
	StepCompleted:          7,
}

// Index returns the step's position in the booking sequence, or -1 for an
// unknown step.
func (s Step) Index() int {
	if i, ok := stepOrder[s]; ok {
		return i
	}
	return -1
}

// Valid reports whether s is one of the known booking steps.
func (s Step) Valid() bool {
	_, ok := stepOrder[s]
	return ok
}

// next returns the step that follows s. Completed is terminal.
func (s Step) next() Step {
	switch s {
	case StepGreeting:
		return StepNameCollection
	case StepNameCollection:
		return StepPhoneCollection
	case StepPhoneCollection:
		return StepSymptomsCollection
	case StepSymptomsCollection:
		return StepDoctorPreference
	case StepDoctorPreference:
		return StepSlotSelection
	case StepSlotSelection:
		return StepConfirmation
	case StepConfirmation:
		return StepCompleted
	default:
		return s
	}
}

// PatientInfo is the structured data collected over the course of a booking
// conversation. Every field is write-once: the machine never overwrites a
// value that a previous turn extracted.
type PatientInfo struct {
	Name            string `json:"name,omitempty"`
	Phone           string `json:"phone,omitempty"`
	Email           string `json:"email,omitempty"`
	Symptoms        string `json:"symptoms,omitempty"`
	PreferredDoctor string `json:"preferred_doctor,omitempty"`
	PreferredDate   string `json:"preferred_date,omitempty"`
	PreferredTime   string `json:"preferred_time,omitempty"`
	AdditionalNotes string `json:"additional_notes,omitempty"`
}
