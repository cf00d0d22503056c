package attempt

// Status is the derived display label for a question. It is never stored:
// always recomputed from the (visited, answered, marked) signals.
type Status string

const (
	StatusNotVisited     Status = "not-visited"
	StatusNotAnswered    Status = "not-answered"
	StatusAnswered       Status = "answered"
	StatusReview         Status = "review"
	StatusAnsweredMarked Status = "answered-marked"
)

// DeriveStatus computes the display status for a question. The rules are
// evaluated in order and the first match wins:
//
//	1. not visited            -> not-visited
//	2. answered AND marked    -> answered-marked
//	3. marked                 -> review
//	4. answered               -> answered
//	5. visited, not answered  -> not-answered
func DeriveStatus(visited, answered, marked bool) Status {
	switch {
	case !visited:
		return StatusNotVisited
	case answered && marked:
		return StatusAnsweredMarked
	case marked:
		return StatusReview
	case answered:
		return StatusAnswered
	default:
		return StatusNotAnswered
	}
}
