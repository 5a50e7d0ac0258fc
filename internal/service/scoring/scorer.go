// Package scoring computes attempt scores. All functions are pure: the
// outcome depends only on the question definitions and the submitted
// answers, so a fixed submission always reproduces the same total.
package scoring

import (
	"fmt"

	"github.com/yourusername/testhub-api/internal/domain/entity"
)

// SubmittedAnswer is one answer as received from the client, keyed by
// question id. Exactly one of the payload fields is meaningful depending on
// the question type.
type SubmittedAnswer struct {
	QuestionID        uint
	SelectedOptionID  *uint  // single_choice
	SelectedOptionIDs []uint // multiple_choice
	FreeText          string // free_text
}

// QuestionResult is the grading outcome for a single question.
// IsCorrect is nil for answers that are not auto-scored (free text).
type QuestionResult struct {
	QuestionID    uint
	IsCorrect     *bool
	PointsAwarded float64
}

// ScoreQuestion grades one question against its submitted answer.
// Choice questions earn the full point value only on an exact match with
// the correct option set; there is no partial credit. A missing or empty
// selection is incorrect. Free-text answers are recorded, not scored.
func ScoreQuestion(q *entity.Question, ans SubmittedAnswer) QuestionResult {
	res := QuestionResult{QuestionID: q.ID}

	switch q.Type {
	case entity.QuestionTypeFreeText:
		// Recorded for manual review; correctness stays undetermined.
		return res

	case entity.QuestionTypeSingleChoice:
		correct := false
		if ans.SelectedOptionID != nil {
			for _, id := range q.CorrectOptionIDs() {
				if *ans.SelectedOptionID == id {
					correct = true
					break
				}
			}
		}
		res.IsCorrect = &correct
		if correct {
			res.PointsAwarded = q.Points
		}
		return res

	case entity.QuestionTypeMultipleChoice:
		correct := exactMatch(ans.SelectedOptionIDs, q.CorrectOptionIDs())
		res.IsCorrect = &correct
		if correct {
			res.PointsAwarded = q.Points
		}
		return res
	}

	// Unknown type: treat as not auto-scored.
	return res
}

// ScoreAttempt grades every question of the test against the submission and
// returns per-question results plus the aggregate score. Questions without
// a submitted answer are graded against an empty answer. Answers that
// reference options not belonging to their question are rejected.
func ScoreAttempt(questions []entity.Question, answers []SubmittedAnswer) ([]QuestionResult, float64, error) {
	byQuestion := make(map[uint]SubmittedAnswer, len(answers))
	known := make(map[uint]*entity.Question, len(questions))
	for i := range questions {
		known[questions[i].ID] = &questions[i]
	}

	for _, ans := range answers {
		q, ok := known[ans.QuestionID]
		if !ok {
			return nil, 0, fmt.Errorf("answer references unknown question #%d", ans.QuestionID)
		}
		if err := validateAnswerOptions(q, ans); err != nil {
			return nil, 0, err
		}
		byQuestion[ans.QuestionID] = ans
	}

	results := make([]QuestionResult, 0, len(questions))
	var total float64
	for i := range questions {
		q := &questions[i]
		ans, ok := byQuestion[q.ID]
		if !ok {
			ans = SubmittedAnswer{QuestionID: q.ID}
		}
		res := ScoreQuestion(q, ans)
		total += res.PointsAwarded
		results = append(results, res)
	}

	return results, total, nil
}

// MaxScore returns the total point value of the given questions.
func MaxScore(questions []entity.Question) float64 {
	var total float64
	for _, q := range questions {
		total += q.Points
	}
	return total
}

func validateAnswerOptions(q *entity.Question, ans SubmittedAnswer) error {
	if !q.IsChoice() {
		return nil
	}
	if ans.SelectedOptionID != nil && !q.HasOption(*ans.SelectedOptionID) {
		return fmt.Errorf("option #%d does not belong to question #%d", *ans.SelectedOptionID, q.ID)
	}
	for _, id := range ans.SelectedOptionIDs {
		if !q.HasOption(id) {
			return fmt.Errorf("option #%d does not belong to question #%d", id, q.ID)
		}
	}
	return nil
}

// exactMatch reports whether submitted equals correct as sets, both
// non-empty. Subsets and supersets earn nothing.
func exactMatch(submitted, correct []uint) bool {
	if len(submitted) == 0 || len(correct) == 0 {
		return false
	}
	set := make(map[uint]struct{}, len(submitted))
	for _, id := range submitted {
		set[id] = struct{}{}
	}
	if len(set) != len(correct) {
		return false
	}
	for _, id := range correct {
		if _, ok := set[id]; !ok {
			return false
		}
	}
	return true
}
