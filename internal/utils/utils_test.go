package utils

import (
	"fmt"
	"strings"
	"testing"
	"unicode"

	"github.com/scythe504/tiktakpaf-backend/internal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRoomCode(t *testing.T) {
	for range 200 {
		code := GenerateRoomCode()
		require.Len(t, code, 6)

		letters, digits := 0, 0
		for _, c := range code {
			switch {
			case unicode.IsUpper(c):
				letters++
			case unicode.IsDigit(c):
				digits++
			default:
				t.Fatalf("unexpected rune %q in %s", c, code)
			}
		}
		assert.Equal(t, 3, letters, code)
		assert.Equal(t, 3, digits, code)
	}
}

func bank(n int) []internal.Question {
	qs := make([]internal.Question, n)
	for i := range qs {
		qs[i] = internal.Question{ID: fmt.Sprintf("q%d", i), Text: fmt.Sprintf("question %d", i)}
	}
	return qs
}

func TestPickQuestionSets(t *testing.T) {
	t.Run("distinct across sets", func(t *testing.T) {
		sets := PickQuestionSets(bank(20), 3, 3)
		require.Len(t, sets, 3)

		seen := map[string]bool{}
		for _, set := range sets {
			assert.Len(t, set, 3)
			for _, c := range set {
				assert.False(t, seen[c.ID], "question %s picked twice", c.ID)
				seen[c.ID] = true
				assert.NotEmpty(t, c.Text)
			}
		}
	})

	t.Run("short bank", func(t *testing.T) {
		sets := PickQuestionSets(bank(4), 3, 3)
		require.Len(t, sets, 3)
		assert.Len(t, sets[0], 3)
		assert.Len(t, sets[1], 1)
		assert.Empty(t, sets[2])
	})

	t.Run("does not reorder the input", func(t *testing.T) {
		in := bank(10)
		PickQuestionSets(in, 3, 3)
		for i, q := range in {
			assert.Equal(t, fmt.Sprintf("q%d", i), q.ID)
		}
	})
}

func TestReadQuestionsCsv(t *testing.T) {
	input := strings.Join([]string{
		"id,question,answer,difficulty,gameMode",
		"q1,Capital of France?,Paris,Easy,classic",
		"q2, Largest planet?, Jupiter, medium",
		"q3,,nothing,hard,classic",
		"broken",
	}, "\n")

	qs, err := ReadQuestionsCsv(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, qs, 2)

	assert.Equal(t, internal.Question{
		ID: "q1", Text: "Capital of France?", Answer: "Paris",
		Difficulty: internal.DifficultyEasy, GameMode: "classic",
	}, qs[0])
	assert.Equal(t, "Largest planet?", qs[1].Text)
	assert.Equal(t, internal.DifficultyMedium, qs[1].Difficulty)
	assert.Empty(t, qs[1].GameMode)
}
