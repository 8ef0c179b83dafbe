package recommend

import (
	"testing"

	"github.com/alexanderramin/civic/internal/domain"
	"github.com/alexanderramin/civic/internal/testutil"
	"github.com/stretchr/testify/assert"
)

func scored(id string, engagement, relevance float64) domain.Action {
	a := testutil.NewTestAction(id, id)
	a.EngagementScore = engagement
	a.RelevanceScore = relevance
	return a
}

func TestDiversify_NilRngIsNoop(t *testing.T) {
	actions := []domain.Action{scored("a", 50, 0.5), scored("b", 50, 0.5)}
	Diversify(actions, nil)
	assert.Equal(t, []string{"a", "b"}, ids(actions))
}

func TestDiversify_OnlyShufflesTies(t *testing.T) {
	base := []domain.Action{
		scored("top", 90, 1),
		scored("t1", 60, 0.5), scored("t2", 60, 0.5), scored("t3", 60, 0.5), scored("t4", 60, 0.5),
		scored("low", 20, 0.5),
	}
	for seed := range uint64(20) {
		actions := append([]domain.Action(nil), base...)
		Diversify(actions, NewVarietySource(seed))
		assert.Equal(t, "top", actions[0].ID)
		assert.Equal(t, "low", actions[5].ID)
		assert.ElementsMatch(t, []string{"t1", "t2", "t3", "t4"}, ids(actions[1:5]))
	}
}

func TestDiversify_SameSeedSameOrder(t *testing.T) {
	base := []domain.Action{scored("a", 60, 0.5), scored("b", 60, 0.5), scored("c", 60, 0.5), scored("d", 60, 0.5)}
	x := append([]domain.Action(nil), base...)
	y := append([]domain.Action(nil), base...)
	Diversify(x, NewVarietySource(42))
	Diversify(y, NewVarietySource(42))
	assert.Equal(t, ids(x), ids(y))
}

func TestDiversify_LeavesFallbackInPlace(t *testing.T) {
	a, b := scored("a", 60, 0.5), scored("b", 60, 0.5)
	a.Fallback, b.Fallback = true, true
	actions := []domain.Action{a, b}
	for seed := range uint64(10) {
		Diversify(actions, NewVarietySource(seed))
		assert.Equal(t, []string{"a", "b"}, ids(actions))
	}
}
