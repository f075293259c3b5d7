package models

import "strconv"

// Tally holds the vote counts of one question.
type Tally struct {
	OptionOneVotes int64 `json:"option_one_votes"`
	OptionTwoVotes int64 `json:"option_two_votes"`
}

// TotalVotes is always the sum of both option counts.
func (t Tally) TotalVotes() int64 {
	return t.OptionOneVotes + t.OptionTwoVotes
}

// OptionOnePercentage is the share of option one, rounded to one decimal place.
func (t Tally) OptionOnePercentage() float64 {
	return percentage(t.OptionOneVotes, t.TotalVotes())
}

// OptionTwoPercentage is the share of option two, rounded to one decimal place.
func (t Tally) OptionTwoPercentage() float64 {
	return percentage(t.OptionTwoVotes, t.TotalVotes())
}

// Votes returns the count for the given option.
func (t Tally) Votes(o Option) int64 {
	switch o {
	case OptionOne:
		return t.OptionOneVotes
	case OptionTwo:
		return t.OptionTwoVotes
	default:
		return 0
	}
}

// percentage rounds to one decimal from the exact binary value, with ties to
// even, so 1/16 gives 6.2.
func percentage(votes, total int64) float64 {
	if total <= 0 {
		return 0
	}
	p := float64(votes) / float64(total) * 100
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(p, 'f', 1, 64), 64)
	if err != nil {
		return p
	}
	return rounded
}
