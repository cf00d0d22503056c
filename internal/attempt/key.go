package attempt

import "fmt"

// QuestionKey identifies a question by position within the paper. Using a
// struct instead of a formatted "i-j" string keeps set membership free of
// parsing bugs.
type QuestionKey struct {
	Section  int
	Question int
}

func (k QuestionKey) String() string {
	return fmt.Sprintf("s%d/q%d", k.Section, k.Question)
}

// keySet is a grow-only or toggleable set of question keys. The visited set
// only ever grows; the marked set toggles.
type keySet map[QuestionKey]struct{}

func (s keySet) add(k QuestionKey)      { s[k] = struct{}{} }
func (s keySet) remove(k QuestionKey)   { delete(s, k) }
func (s keySet) has(k QuestionKey) bool { _, ok := s[k]; return ok }
