package matching

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

const (
	skillWeight  = 80.0
	ratingWeight = 20.0
	maxRating    = 5.0
)

type Candidate struct {
	Skills []string
	Rating float64
}

type Result struct {
	Score         float64
	MatchedSkills []string
	MissingSkills []string
	Reasons       []string
}

// Score оценивает исполнителя по заказу от 0 до 100: доля покрытых навыков
// даёт до 80 баллов, рейтинг до 20. Навыки сравниваются без учёта регистра.
func Score(jobSkills []string, c Candidate) Result {
	have := make(map[string]bool, len(c.Skills))
	for _, s := range c.Skills {
		if key := normalize(s); key != "" {
			have[key] = true
		}
	}

	seen := make(map[string]bool, len(jobSkills))
	matched := make([]string, 0, len(jobSkills))
	missing := make([]string, 0)
	for _, s := range jobSkills {
		key := normalize(s)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		if have[key] {
			matched = append(matched, strings.TrimSpace(s))
		} else {
			missing = append(missing, strings.TrimSpace(s))
		}
	}

	var skillPart float64
	if required := len(matched) + len(missing); required > 0 {
		skillPart = skillWeight * float64(len(matched)) / float64(required)
	}
	ratingPart := ratingWeight * clamp(c.Rating, 0, maxRating) / maxRating

	score := math.Round((skillPart+ratingPart)*10) / 10

	reasons := make([]string, 0, 2)
	if len(matched) > 0 {
		reasons = append(reasons, fmt.Sprintf("Совпадают навыки: %s", strings.Join(matched, ", ")))
	}
	if c.Rating >= 4.5 {
		reasons = append(reasons, fmt.Sprintf("Высокий рейтинг: %.1f", c.Rating))
	}

	return Result{
		Score:         score,
		MatchedSkills: matched,
		MissingSkills: missing,
		Reasons:       reasons,
	}
}

// Ranked: кандидат с посчитанной оценкой.
type Ranked[T any] struct {
	Item   T
	Result Result
}

// Rank сортирует кандидатов по убыванию оценки и оставляет первые limit.
// При равной оценке сохраняется исходный порядок.
func Rank[T any](jobSkills []string, items []T, candidate func(T) Candidate, limit int) []Ranked[T] {
	ranked := make([]Ranked[T], 0, len(items))
	for _, item := range items {
		ranked = append(ranked, Ranked[T]{Item: item, Result: Score(jobSkills, candidate(item))})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Result.Score > ranked[j].Result.Score
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
