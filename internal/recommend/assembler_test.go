package recommend

import (
	"testing"

	"github.com/alexanderramin/civic/internal/domain"
	"github.com/alexanderramin/civic/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(actions []domain.Action) []string {
	out := make([]string, len(actions))
	for i, a := range actions {
		out[i] = a.ID
	}
	return out
}

func TestAssemble_DedupsPersonalizedWins(t *testing.T) {
	res := Assemble(AssembleInput{
		Context: domain.IntentContext{Topic: "climate"},
		Personalized: []*domain.ActionRecord{
			testutil.NewTestRecord("Personal copy", testutil.WithRecordID("shared")),
		},
		Popular: []*domain.ActionRecord{
			testutil.NewTestRecord("Popular copy", testutil.WithRecordID("shared"), testutil.WithLevels(5, 5)),
			testutil.NewTestRecord("Other", testutil.WithRecordID("other")),
			testutil.NewTestRecord("Third", testutil.WithRecordID("third")),
		},
		Now: testNow,
	})

	require.Equal(t, 3, res.CatalogCount)
	assert.Equal(t, 1, res.DuplicateCount)
	assert.Zero(t, res.FallbackCount)
	for _, a := range res.Actions {
		if a.ID == "shared" {
			assert.Equal(t, "Personal copy", a.Title)
		}
	}
	assertUniqueIDs(t, res.Actions)
}

func TestAssemble_OrdersByEngagementThenRelevanceThenPool(t *testing.T) {
	res := Assemble(AssembleInput{
		Context: domain.IntentContext{Topic: "climate"},
		Personalized: []*domain.ActionRecord{
			testutil.NewTestRecord("plain first", testutil.WithRecordID("p1")),
			testutil.NewTestRecord("climate match", testutil.WithRecordID("p2")),
		},
		Popular: []*domain.ActionRecord{
			testutil.NewTestRecord("plain second", testutil.WithRecordID("q1")),
			testutil.NewTestRecord("big", testutil.WithRecordID("q2"), testutil.WithLevels(5, 3)),
		},
		Now: testNow,
	})

	assert.Equal(t, []string{"q2", "p2", "p1", "q1"}, ids(res.Actions))
}

func TestAssemble_FallbackAppendedWhenShort(t *testing.T) {
	ic := domain.IntentContext{Intent: "volunteer", Topic: "climate change", Location: "Local"}
	res := Assemble(AssembleInput{
		Context: ic,
		Personalized: []*domain.ActionRecord{
			testutil.NewTestRecord("Tree planting", testutil.WithRecordID("real"),
				testutil.WithTopic("climate change"), testutil.WithLevels(1, 1)),
		},
		Now: testNow,
	})

	require.GreaterOrEqual(t, len(res.Actions), 2)
	assert.Equal(t, "real", res.Actions[0].ID, "catalog action precedes fallback regardless of score")
	assert.False(t, res.Actions[0].Fallback)
	assert.Greater(t, res.Actions[0].EngagementScore, 0.0)
	for _, a := range res.Actions[1:] {
		assert.True(t, a.Fallback)
	}
	assert.Equal(t, 1, res.CatalogCount)
	assert.Equal(t, len(res.Actions)-1, res.FallbackCount)
	assertUniqueIDs(t, res.Actions)
}

func TestAssemble_EmptyPoolsStillYieldActions(t *testing.T) {
	res := Assemble(AssembleInput{
		Context: domain.IntentContext{Intent: "donate", Topic: "housing"},
		Now:     testNow,
	})
	require.GreaterOrEqual(t, len(res.Actions), MinFallbackActions)
	assert.Zero(t, res.CatalogCount)
	assert.Equal(t, domain.CTADonate, res.Actions[0].CTAType, "intent-matching fallback first")
}

func TestAssemble_TruncatesToMax(t *testing.T) {
	var pool []*domain.ActionRecord
	for range 8 {
		pool = append(pool, testutil.NewTestRecord("x"))
	}
	res := Assemble(AssembleInput{Popular: pool, MinResults: 2, MaxResults: 5, Now: testNow})
	assert.Len(t, res.Actions, 5)
	assert.Equal(t, 5, res.CatalogCount)
}

func TestAssemble_TruncationCanCutFallback(t *testing.T) {
	res := Assemble(AssembleInput{
		Popular:    []*domain.ActionRecord{testutil.NewTestRecord("x")},
		MinResults: 3,
		MaxResults: 3,
		Now:        testNow,
	})
	assert.Len(t, res.Actions, 3)
	assert.Equal(t, 1, res.CatalogCount)
	assert.Equal(t, 2, res.FallbackCount)
}

func TestAssemble_BoundsNormalized(t *testing.T) {
	minR, maxR := resultBounds(0, 0)
	assert.Equal(t, DefaultMinResults, minR)
	assert.Equal(t, DefaultMaxResults, maxR)

	minR, maxR = resultBounds(1, 1)
	assert.Equal(t, MinFallbackActions, minR)
	assert.Equal(t, MinFallbackActions, maxR)

	minR, maxR = resultBounds(6, 4)
	assert.Equal(t, 6, minR)
	assert.Equal(t, 6, maxR)
}

func TestAssemble_SkipsNilRecords(t *testing.T) {
	res := Assemble(AssembleInput{
		Personalized: []*domain.ActionRecord{nil, testutil.NewTestRecord("x", testutil.WithRecordID("a"))},
		MinResults:   1,
		Now:          testNow,
	})
	assert.Equal(t, 1, res.CatalogCount)
}

func TestAssemble_Deterministic(t *testing.T) {
	in := AssembleInput{
		Context: domain.IntentContext{Topic: "climate"},
		Popular: []*domain.ActionRecord{
			testutil.NewTestRecord("a", testutil.WithRecordID("a")),
			testutil.NewTestRecord("b", testutil.WithRecordID("b")),
			testutil.NewTestRecord("c", testutil.WithRecordID("c")),
		},
		Now: testNow,
	}
	first := Assemble(in)
	for range 20 {
		assert.Equal(t, first.Actions, Assemble(in).Actions)
	}
}

func assertUniqueIDs(t *testing.T, actions []domain.Action) {
	t.Helper()
	seen := map[string]bool{}
	for _, a := range actions {
		require.False(t, seen[a.ID], "duplicate id %s", a.ID)
		seen[a.ID] = true
	}
}
