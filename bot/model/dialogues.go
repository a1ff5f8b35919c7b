package model

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Pair is one question/answer entry of the retrieval corpus.
type Pair struct {
	Question string
	Answer   string
}

// ParseDialogues reads blank-line separated blocks. The first two non-empty
// lines of a block are the question and the answer; a leading "-" is dropped.
// Blocks with fewer than two lines are skipped.
func ParseDialogues(r io.Reader) ([]Pair, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	content := strings.ReplaceAll(string(data), "\r\n", "\n")
	var pairs []Pair
	for _, block := range strings.Split(content, "\n\n") {
		var lines []string
		for _, line := range strings.Split(block, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				lines = append(lines, line)
			}
		}
		if len(lines) < 2 {
			continue
		}
		q, a := stripDash(lines[0]), stripDash(lines[1])
		if q == "" || a == "" {
			continue
		}
		pairs = append(pairs, Pair{Question: q, Answer: a})
	}
	return pairs, nil
}

// LoadDialogues parses the corpus file at path.
func LoadDialogues(path string) ([]Pair, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dialogues: %w", err)
	}
	defer f.Close()
	pairs, err := ParseDialogues(f)
	if err != nil {
		return nil, fmt.Errorf("read dialogues %s: %w", path, err)
	}
	return pairs, nil
}

func stripDash(line string) string {
	if rest, ok := strings.CutPrefix(line, "-"); ok {
		return strings.TrimSpace(rest)
	}
	return line
}
