package quiz

import "sort"

// CategoryScore is the average rating of one category.
type CategoryScore struct {
	Category string  `json:"category"`
	Average  float64 `json:"average"`
	Level    string  `json:"level,omitempty"`
	Feedback string  `json:"feedback,omitempty"`
}

type Result struct {
	Quiz     string          `json:"quiz"`
	Kind     Kind            `json:"kind"`
	Scores   []CategoryScore `json:"scores"`
	Answered int             `json:"answered"`

	// Style quizzes.
	Top       *Category `json:"top,omitempty"`
	Secondary *Category `json:"secondary,omitempty"`

	// Readiness quizzes.
	Overall  float64 `json:"overall,omitempty"`
	Level    string  `json:"level,omitempty"`
	Feedback string  `json:"feedback,omitempty"`
}

func (b *Bank) Score(answers map[string]int) (*Result, error) {
	if err := b.checkAnswers(answers, b.Kind == KindReadiness); err != nil {
		return nil, err
	}

	sums := make(map[string]int, len(b.Categories))
	counts := make(map[string]int, len(b.Categories))
	answered := 0
	for _, q := range b.Questions {
		v := answers[q.ID]
		if v > 0 {
			answered++
		}
		sums[q.Category] += v
		counts[q.Category]++
	}

	res := &Result{Quiz: b.Name, Kind: b.Kind, Answered: answered}
	for _, c := range b.Categories {
		res.Scores = append(res.Scores, CategoryScore{
			Category: c.Key,
			Average:  float64(sums[c.Key]) / float64(counts[c.Key]),
		})
	}

	switch b.Kind {
	case KindStyle:
		ranked := make([]int, len(res.Scores))
		for i := range ranked {
			ranked[i] = i
		}
		sort.SliceStable(ranked, func(i, j int) bool {
			return res.Scores[ranked[i]].Average > res.Scores[ranked[j]].Average
		})
		top, second := b.Categories[ranked[0]], b.Categories[ranked[1]]
		res.Top, res.Secondary = &top, &second

	case KindReadiness:
		var total float64
		for i := range res.Scores {
			s := &res.Scores[i]
			band := b.band(s.Average)
			s.Level, s.Feedback = band.Level, band.Text
			total += s.Average
		}
		res.Overall = total / float64(len(res.Scores))
		band := b.band(res.Overall)
		res.Level, res.Feedback = band.Level, band.Text
	}
	return res, nil
}
