package booking

import "testing"

func TestAdvance_GreetingKeywords(t *testing.T) {
	cases := []struct {
		text    string
		advance bool
	}{
		{"hi", true},
		{"Hello there", true},
		{"HEY", true},
		{"good morning", true},
		{"I want an appointment", false},
		{"", false},
	}
	for _, tc := range cases {
		step, _ := Advance(StepGreeting, PatientInfo{}, tc.text)
		if tc.advance && step != StepNameCollection {
			t.Errorf("Advance(greeting, %q): expected name_collection, got %s", tc.text, step)
		}
		if !tc.advance && step != StepGreeting {
			t.Errorf("Advance(greeting, %q): expected greeting, got %s", tc.text, step)
		}
	}
}

func TestAdvance_NameAccepted(t *testing.T) {
	step, info := Advance(StepNameCollection, PatientInfo{}, "John Doe")
	if step != StepPhoneCollection {
		t.Fatalf("expected phone_collection, got %s", step)
	}
	if info.Name != "John Doe" {
		t.Fatalf("expected name John Doe, got %q", info.Name)
	}
}

func TestAdvance_NameRejected(t *testing.T) {
	cases := []string{
		"abc123",                 // digits
		"John Jacob Jingleheimer Schmidt", // too many tokens
		"   ",                    // empty after trim
		"O'Brien",                // punctuation
	}
	for _, text := range cases {
		step, info := Advance(StepNameCollection, PatientInfo{}, text)
		if step != StepNameCollection {
			t.Errorf("Advance(name, %q): expected to hold step, got %s", text, step)
		}
		if info.Name != "" {
			t.Errorf("Advance(name, %q): expected no name, got %q", text, info.Name)
		}
	}
}

func TestAdvance_NameWriteOnce(t *testing.T) {
	info := PatientInfo{Name: "Jane Roe"}
	step, got := Advance(StepNameCollection, info, "John Doe")
	if step != StepNameCollection {
		t.Fatalf("expected to hold step when name already set, got %s", step)
	}
	if got.Name != "Jane Roe" {
		t.Fatalf("name was overwritten: %q", got.Name)
	}
}

func TestAdvance_PhoneExtracted(t *testing.T) {
	step, info := Advance(StepPhoneCollection, PatientInfo{}, "call me at 555-123-4567")
	if step != StepSymptomsCollection {
		t.Fatalf("expected symptoms_collection, got %s", step)
	}
	if info.Phone != "555-123-4567" {
		t.Fatalf("expected trimmed raw match, got %q", info.Phone)
	}
}

func TestAdvance_PhoneTooShort(t *testing.T) {
	step, info := Advance(StepPhoneCollection, PatientInfo{}, "12345")
	if step != StepPhoneCollection {
		t.Fatalf("expected to hold step for 5-digit input, got %s", step)
	}
	if info.Phone != "" {
		t.Fatalf("expected no phone, got %q", info.Phone)
	}
}

func TestAdvance_PhoneFormats(t *testing.T) {
	cases := []string{
		"+1 (555) 123-4567",
		"5551234567",
		"my number is 555 123 4567 thanks",
	}
	for _, text := range cases {
		step, info := Advance(StepPhoneCollection, PatientInfo{}, text)
		if step != StepSymptomsCollection {
			t.Errorf("Advance(phone, %q): expected advance, got %s", text, step)
		}
		if info.Phone == "" {
			t.Errorf("Advance(phone, %q): expected phone recorded", text)
		}
	}
}

func TestAdvance_SymptomsVerbatim(t *testing.T) {
	text := "I've had a sore throat and fever for 3 days"
	step, info := Advance(StepSymptomsCollection, PatientInfo{}, text)
	if step != StepDoctorPreference {
		t.Fatalf("expected doctor_preference, got %s", step)
	}
	if info.Symptoms != text {
		t.Fatalf("symptoms not stored verbatim: %q", info.Symptoms)
	}
}

func TestAdvance_SymptomsWriteOnce(t *testing.T) {
	info := PatientInfo{Symptoms: "headache"}
	step, got := Advance(StepSymptomsCollection, info, "actually a cough")
	if step != StepDoctorPreference {
		t.Fatalf("expected advance even when symptoms already set, got %s", step)
	}
	if got.Symptoms != "headache" {
		t.Fatalf("symptoms were overwritten: %q", got.Symptoms)
	}
}

func TestAdvance_DoctorPreference(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"I'd like Dr. Johnson please", "dr_johnson"},
		{"smith works for me", "dr_smith"},
		{"DR BROWN", "dr_brown"},
	}
	for _, tc := range cases {
		step, info := Advance(StepDoctorPreference, PatientInfo{}, tc.text)
		if step != StepSlotSelection {
			t.Errorf("Advance(doctor, %q): expected slot_selection, got %s", tc.text, step)
		}
		if info.PreferredDoctor != tc.want {
			t.Errorf("Advance(doctor, %q): expected %s, got %q", tc.text, tc.want, info.PreferredDoctor)
		}
	}

	step, info := Advance(StepDoctorPreference, PatientInfo{}, "anyone is fine")
	if step != StepDoctorPreference {
		t.Errorf("expected to hold step without a doctor match, got %s", step)
	}
	if info.PreferredDoctor != "" {
		t.Errorf("expected no doctor, got %q", info.PreferredDoctor)
	}
}

func TestAdvance_SlotSelection(t *testing.T) {
	advancing := []string{"10 works", "how about 16:00", "9am", "slot 14 please"}
	for _, text := range advancing {
		step, info := Advance(StepSlotSelection, PatientInfo{}, text)
		if step != StepConfirmation {
			t.Errorf("Advance(slot, %q): expected confirmation, got %s", text, step)
		}
		if info.PreferredTime != "" {
			t.Errorf("Advance(slot, %q): slot selection must not record a field", text)
		}
	}

	holding := []string{"8am", "17:00", "2024 sounds great", "morning"}
	for _, text := range holding {
		step, _ := Advance(StepSlotSelection, PatientInfo{}, text)
		if step != StepSlotSelection {
			t.Errorf("Advance(slot, %q): expected to hold step, got %s", text, step)
		}
	}
}

func TestAdvance_Confirmation(t *testing.T) {
	for _, text := range []string{"yes please", "Confirm", "book it", "schedule me in"} {
		step, _ := Advance(StepConfirmation, PatientInfo{}, text)
		if step != StepCompleted {
			t.Errorf("Advance(confirmation, %q): expected completed, got %s", text, step)
		}
	}

	step, _ := Advance(StepConfirmation, PatientInfo{}, "hmm let me think")
	if step != StepConfirmation {
		t.Errorf("expected to hold confirmation, got %s", step)
	}
}

func TestAdvance_CompletedIsTerminal(t *testing.T) {
	step, _ := Advance(StepCompleted, PatientInfo{}, "hello yes book 10 smith")
	if step != StepCompleted {
		t.Fatalf("completed must be terminal, got %s", step)
	}
}

func TestAdvance_Idempotent(t *testing.T) {
	info := PatientInfo{Name: "Jane Roe"}
	s1, i1 := Advance(StepPhoneCollection, info, "reach me on (555) 867-5309 x")
	s2, i2 := Advance(StepPhoneCollection, info, "reach me on (555) 867-5309 x")
	if s1 != s2 || i1 != i2 {
		t.Fatalf("advance is not deterministic: (%s,%+v) vs (%s,%+v)", s1, i1, s2, i2)
	}
}

func TestAdvance_Monotonic(t *testing.T) {
	turns := []string{
		"hello", "John Doe", "555-123-4567", "sore throat",
		"no preference", "dr johnson", "10 please", "not yet", "yes",
	}
	step := StepGreeting
	info := PatientInfo{}
	prev := step.Index()
	for _, text := range turns {
		step, info = Advance(step, info, text)
		if step.Index() < prev {
			t.Fatalf("step moved backward to %s after %q", step, text)
		}
		prev = step.Index()
	}
	if step != StepCompleted {
		t.Fatalf("expected to finish at completed, got %s", step)
	}
}
