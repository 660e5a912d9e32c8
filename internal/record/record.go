package record

// Specialist is a practitioner category the user sees a doctor under.
// Name is the identity key for import matching (see Normalize).
type Specialist struct {
	// ID uniquely identifies the specialist; stable once assigned
	ID int64 `json:"id"`

	// Name is non-empty display text and the identity key
	Name string `json:"name"`

	// Icon is a display glyph (emoji)
	Icon string `json:"icon"`

	// Interval is the recommended months between checkups (positive)
	Interval int `json:"interval"`
}

// Visit is a single dated attendance with a specialist.
type Visit struct {
	ID int64 `json:"id"`

	// SpecialistID must reference an existing Specialist
	SpecialistID int64 `json:"specialistId"`

	// Date is an ISO calendar date (YYYY-MM-DD)
	Date string `json:"date"`

	Notes string `json:"notes"`

	// Cost in currency units, non-negative, defaults to 0
	Cost float64 `json:"cost"`
}

// Exam is a dated diagnostic test, optionally ordered by a specialist.
type Exam struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Date string `json:"date"`

	// SpecialistID is nil for unprescribed exams
	SpecialistID *int64 `json:"specialistId"`

	Results string  `json:"results"`
	Notes   string  `json:"notes"`
	Cost    float64 `json:"cost"`
}

// Snapshot bundles the three collections. Every mutation loads a
// snapshot, changes it, and persists it whole.
type Snapshot struct {
	Specialists []Specialist `json:"specialists"`
	Visits      []Visit      `json:"visits"`
	Exams       []Exam       `json:"exams"`
}

// FindSpecialist returns the specialist with the given id, or nil.
func (s *Snapshot) FindSpecialist(id int64) *Specialist {
	for i := range s.Specialists {
		if s.Specialists[i].ID == id {
			return &s.Specialists[i]
		}
	}
	return nil
}

// SpecialistName returns the name for an optional specialist reference,
// or "" when the reference is nil or dangling.
func (s *Snapshot) SpecialistName(id *int64) string {
	if id == nil {
		return ""
	}
	if sp := s.FindSpecialist(*id); sp != nil {
		return sp.Name
	}
	return ""
}

// SpecialistReferenced reports whether any visit or exam references
// the given specialist. Used by the delete guard.
func (s *Snapshot) SpecialistReferenced(id int64) bool {
	for _, v := range s.Visits {
		if v.SpecialistID == id {
			return true
		}
	}
	for _, e := range s.Exams {
		if e.SpecialistID != nil && *e.SpecialistID == id {
			return true
		}
	}
	return false
}

// DefaultSpecialists returns the seed collection installed on first run.
func DefaultSpecialists() []Specialist {
	return []Specialist{
		{ID: 1, Name: "Oculista", Icon: "👁️", Interval: 12},
		{ID: 2, Name: "Dentista", Icon: "🦷", Interval: 6},
		{ID: 3, Name: "Ortopedico", Icon: "🦴", Interval: 12},
		{ID: 4, Name: "Cardiologo", Icon: "❤️", Interval: 12},
		{ID: 5, Name: "Dermatologo", Icon: "🩺", Interval: 12},
		{ID: 6, Name: "Ginecologo", Icon: "♀️", Interval: 12},
		{ID: 7, Name: "Medico di base", Icon: "👨‍⚕️", Interval: 12},
	}
}
