package utils

import (
	"math/rand/v2"

	"github.com/scythe504/tiktakpaf-backend/internal"
)

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

const (
	codeLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	codeDigits  = "0123456789"
)

// GenerateRoomCode returns a six character code made of three letters and
// three digits in random order, e.g. "A1BC23" or "7QX4Z0".
func GenerateRoomCode() string {
	code := make([]byte, 0, 6)
	for range 3 {
		code = append(code, codeLetters[rand.IntN(len(codeLetters))])
		code = append(code, codeDigits[rand.IntN(len(codeDigits))])
	}
	rand.Shuffle(len(code), func(i, j int) {
		code[i], code[j] = code[j], code[i]
	})
	return string(code)
}

// PickQuestionSets draws `rounds` sets of `perSet` distinct questions from
// the bank. A question is used at most once across all sets. When the bank
// runs dry the remaining sets come back short or empty.
func PickQuestionSets(bank []internal.Question, rounds, perSet int) [][]internal.QuestionChoice {
	pool := make([]internal.Question, len(bank))
	copy(pool, bank)
	rand.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})

	sets := make([][]internal.QuestionChoice, 0, rounds)
	next := 0
	for range rounds {
		set := make([]internal.QuestionChoice, 0, perSet)
		for len(set) < perSet && next < len(pool) {
			q := pool[next]
			next++
			set = append(set, internal.QuestionChoice{ID: q.ID, Text: q.Text})
		}
		sets = append(sets, set)
	}
	return sets
}
