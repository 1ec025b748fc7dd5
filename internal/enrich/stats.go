package enrich

// Stats tallies row outcomes across a run. Exactly one outcome counter
// moves per processed row, so the four of them always sum to Total once a
// run finishes.
type Stats struct {
	Total         int
	AlreadyFilled int
	Found         int
	NotFound      int
	Skipped       int
}

// Add bumps the counter for one outcome.
func (s *Stats) Add(o Outcome) {
	switch o {
	case OutcomeAlreadyFilled:
		s.AlreadyFilled++
	case OutcomeSkipped:
		s.Skipped++
	case OutcomeFound:
		s.Found++
	case OutcomeNotFound:
		s.NotFound++
	}
}
