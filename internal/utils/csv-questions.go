package utils

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/scythe504/tiktakpaf-backend/internal"
)

// ReadQuestionsCsvFile loads a question bank from disk. See ReadQuestionsCsv
// for the expected layout.
func ReadQuestionsCsvFile(filePath string) ([]internal.Question, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("unable to read input file %s: %w", filePath, err)
	}
	defer f.Close()

	return ReadQuestionsCsv(f)
}

// ReadQuestionsCsv parses rows of
//
//	id,question,answer,difficulty,gameMode
//
// A header row starting with "id" is skipped. Rows with fewer than four
// columns or without a question are logged and dropped.
func ReadQuestionsCsv(r io.Reader) ([]internal.Question, error) {
	csvReader := csv.NewReader(r)
	csvReader.FieldsPerRecord = -1
	csvReader.TrimLeadingSpace = true

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("unable to parse questions csv: %w", err)
	}

	questions := make([]internal.Question, 0, len(records))
	for i, record := range records {
		if i == 0 && len(record) > 0 && strings.EqualFold(record[0], "id") {
			continue
		}
		if len(record) < 4 || strings.TrimSpace(record[1]) == "" {
			log.Warn().Int("line", i+1).Strs("record", record).Msg("[ReadQuestionsCsv] skipping invalid record")
			continue
		}

		q := internal.Question{
			ID:         strings.TrimSpace(record[0]),
			Text:       strings.TrimSpace(record[1]),
			Answer:     strings.TrimSpace(record[2]),
			Difficulty: internal.Difficulty(strings.ToLower(strings.TrimSpace(record[3]))),
		}
		if len(record) > 4 {
			q.GameMode = strings.TrimSpace(record[4])
		}
		questions = append(questions, q)
	}

	return questions, nil
}
