package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScore_FullSkillMatchAndTopRating(t *testing.T) {
	res := Score([]string{"Go", "PostgreSQL"}, Candidate{Skills: []string{"go", "postgresql", "docker"}, Rating: 5})

	assert.Equal(t, 100.0, res.Score)
	assert.Equal(t, []string{"Go", "PostgreSQL"}, res.MatchedSkills)
	assert.Empty(t, res.MissingSkills)
	assert.Len(t, res.Reasons, 2)
}

func TestScore_PartialMatch(t *testing.T) {
	res := Score([]string{"Go", "React"}, Candidate{Skills: []string{"Go"}, Rating: 2.5})

	// 80 * 1/2 + 20 * 2.5/5
	assert.Equal(t, 50.0, res.Score)
	assert.Equal(t, []string{"React"}, res.MissingSkills)
	assert.Equal(t, []string{"Совпадают навыки: Go"}, res.Reasons)
}

func TestScore_NoJobSkillsUsesRatingOnly(t *testing.T) {
	res := Score(nil, Candidate{Skills: []string{"Go"}, Rating: 10})

	assert.Equal(t, 20.0, res.Score)
	assert.Empty(t, res.MatchedSkills)
}

func TestScore_DuplicateJobSkillsCountedOnce(t *testing.T) {
	res := Score([]string{"Go", " go ", ""}, Candidate{Skills: []string{"GO"}})

	assert.Equal(t, 80.0, res.Score)
	assert.Len(t, res.MatchedSkills, 1)
}

func TestRank_OrdersAndLimits(t *testing.T) {
	type freelancer struct {
		name   string
		skills []string
		rating float64
	}
	items := []freelancer{
		{"low", nil, 1},
		{"best", []string{"Go", "SQL"}, 5},
		{"mid", []string{"Go"}, 3},
	}

	ranked := Rank([]string{"Go", "SQL"}, items, func(f freelancer) Candidate {
		return Candidate{Skills: f.skills, Rating: f.rating}
	}, 2)

	if assert.Len(t, ranked, 2) {
		assert.Equal(t, "best", ranked[0].Item.name)
		assert.Equal(t, "mid", ranked[1].Item.name)
	}
}
