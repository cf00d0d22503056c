package attempt

import "testing"

func TestDeriveStatus(t *testing.T) {
	testCases := []struct {
		name     string
		visited  bool
		answered bool
		marked   bool
		want     Status
	}{
		{"untouched", false, false, false, StatusNotVisited},
		// Not-visited wins over every other signal.
		{"not visited but marked", false, false, true, StatusNotVisited},
		{"not visited but answered", false, true, false, StatusNotVisited},
		{"visited only", true, false, false, StatusNotAnswered},
		{"answered", true, true, false, StatusAnswered},
		{"marked without answer", true, false, true, StatusReview},
		{"answered and marked", true, true, true, StatusAnsweredMarked},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := DeriveStatus(tc.visited, tc.answered, tc.marked)
			if got != tc.want {
				t.Errorf("DeriveStatus(%v, %v, %v) = %s, want %s",
					tc.visited, tc.answered, tc.marked, got, tc.want)
			}
		})
	}
}
