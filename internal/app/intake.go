package app

// Question is the field the intake sequencer is currently collecting.
type Question struct {
	Field    string   `json:"field"`
	Question string   `json:"question"`
	Options  []string `json:"options,omitempty"`
}

// IntakeState tracks the guided question/answer loop used to build a deal
// from scratch. Active from "start new deal" (or detected deal intent) until
// the service reports completion.
type IntakeState struct {
	Active    bool        `json:"active"`
	Collected DealContext `json:"collected"`
	Current   *Question   `json:"current,omitempty"`
}

func (s *IntakeState) start() {
	s.Active = true
	s.Collected = DealContext{}
	s.Current = nil
}

func (s *IntakeState) stop() {
	s.Active = false
	s.Current = nil
}

// answer normalizes and records one user reply for the current field.
func (s *IntakeState) answer(value string) {
	if s.Current == nil {
		return
	}
	if s.Collected == nil {
		s.Collected = DealContext{}
	}
	s.Collected[s.Current.Field] = NormalizeFieldValue(s.Current.Field, value)
}
