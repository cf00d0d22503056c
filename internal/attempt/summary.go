package attempt

// SectionSummary aggregates question statuses for one section on the
// pre-submission review screen.
type SectionSummary struct {
	Name           string `json:"name"`
	Questions      int    `json:"questions"`
	Answered       int    `json:"answered"`
	NotAnswered    int    `json:"not_answered"`
	Review         int    `json:"review"`
	AnsweredMarked int    `json:"answered_marked"`
	NotVisited     int    `json:"not_visited"`
}

// Summary recomputes the per-section status counts. Purely informational:
// nothing here gates submission of an exam with unanswered questions.
func (m *Machine) Summary() []SectionSummary {
	out := make([]SectionSummary, len(m.paper.Sections))
	for i := range m.paper.Sections {
		sec := &m.paper.Sections[i]
		sum := SectionSummary{Name: sec.Name, Questions: len(sec.Questions)}
		for j := range sec.Questions {
			switch m.StatusOf(QuestionKey{Section: i, Question: j}) {
			case StatusAnswered:
				sum.Answered++
			case StatusNotAnswered:
				sum.NotAnswered++
			case StatusReview:
				sum.Review++
			case StatusAnsweredMarked:
				sum.AnsweredMarked++
			case StatusNotVisited:
				sum.NotVisited++
			}
		}
		out[i] = sum
	}
	return out
}
