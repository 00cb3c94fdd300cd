package srs

// Result describes the outcome of applying a review to a stage.
type Result struct {
	NewStage     Stage
	DidLevelUp   bool
	DidLevelDown bool
}

// Calculate returns the stage an item moves to after a review with the
// given number of incorrect answers.
//
// A clean review promotes by one stage. Any incorrect answer demotes: two
// stages from Guru and above, one stage below Guru. Demotion never drops
// below Apprentice 1, and promotion never passes Burned. The function is
// total — stages outside 0..9 are coerced rather than rejected.
func Calculate(current Stage, incorrectAnswers int) Result {
	cur := clamp(current)
	next := cur

	if incorrectAnswers == 0 {
		next++
	} else {
		if cur >= StageGuru1 {
			next -= 2
		} else {
			next--
		}
		if next < StageApprentice1 {
			next = StageApprentice1
		}
	}

	if next > StageBurned {
		next = StageBurned
	}

	return Result{
		NewStage:     next,
		DidLevelUp:   next > cur,
		DidLevelDown: next < cur,
	}
}
