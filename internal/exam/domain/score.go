package domain

// Percentage returns the raw percentage of correct answers. A zero total
// yields 0, not an error.
func Percentage(correct, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(correct) / float64(total) * 100
}

// ScaledScore maps a raw percentage onto the inclusive [100,1000] points
// range real certification exams report, truncating toward zero: 0% is
// exactly 100 and 100% is exactly 1000.
func ScaledScore(percentage float64) int {
	return int(100 + (percentage/100)*900)
}

// AnswerSetsEqual grades one selection against the correct set using strict
// set equality; ordering and duplicates are irrelevant and there is no
// partial credit.
func AnswerSetsEqual(selected, correct []int) bool {
	selectedSet := toSet(selected)
	correctSet := toSet(correct)
	if len(selectedSet) != len(correctSet) {
		return false
	}
	for index := range correctSet {
		if _, ok := selectedSet[index]; !ok {
			return false
		}
	}
	return true
}

// GradedQuestion pairs a drawn position with its question record.
type GradedQuestion struct {
	Position int
	Question Question
}

// GradeResult is the outcome of grading one submission.
type GradeResult struct {
	CorrectCount int
	Details      []DetailRecord
}

// Grade scores a submission against the drawn questions. Answers are keyed by
// draw position; a missing key grades as the empty selection. Questions
// missing from the store have already been excluded by the caller, so every
// entry here produces a detail record.
func Grade(questions []GradedQuestion, answers map[int][]int) GradeResult {
	result := GradeResult{Details: make([]DetailRecord, 0, len(questions))}
	for _, graded := range questions {
		selected := answers[graded.Position]
		if selected == nil {
			selected = []int{}
		}
		correct := AnswerSetsEqual(selected, graded.Question.CorrectAnswers)
		if correct {
			result.CorrectCount++
		}
		result.Details = append(result.Details, DetailRecord{
			QuestionID:     graded.Question.ID,
			QuestionText:   graded.Question.Text,
			Options:        graded.Question.Options,
			UserAnswer:     selected,
			CorrectAnswers: graded.Question.CorrectAnswers,
			IsCorrect:      correct,
			Explanation:    graded.Question.Explanation,
			Domain:         graded.Question.Domain,
		})
	}
	return result
}

func toSet(values []int) map[int]struct{} {
	set := make(map[int]struct{}, len(values))
	for _, value := range values {
		set[value] = struct{}{}
	}
	return set
}
