package domain

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPushRecent_PrependsAndDedups(t *testing.T) {
	list := PushRecent(nil, "climate", 3)
	list = PushRecent(list, "housing", 3)
	list = PushRecent(list, "Climate", 3)
	assert.Equal(t, []string{"Climate", "housing"}, list)
}

func TestPushRecent_EvictsOldest(t *testing.T) {
	var list []string
	for i := 0; i < 15; i++ {
		list = PushRecent(list, fmt.Sprintf("t%d", i), DefaultPreferenceListCap)
	}
	require.Len(t, list, DefaultPreferenceListCap)
	assert.Equal(t, "t14", list[0])
	assert.Equal(t, "t5", list[len(list)-1])
}

func TestPushRecent_IgnoresBlank(t *testing.T) {
	assert.Equal(t, []string{"a"}, PushRecent([]string{"a"}, "  ", 3))
}

func TestPreferenceState_CloneIsDeep(t *testing.T) {
	now := time.Now()
	p := NewPreferenceState("u1")
	p.PreferredTopics = []string{"climate"}
	p.LastEngagementAt = &now
	p.Ratings["a1"] = Rating{Value: 5}

	c := p.Clone()
	c.PreferredTopics[0] = "housing"
	c.Ratings["a2"] = Rating{Value: 1}
	*c.LastEngagementAt = now.Add(time.Hour)

	assert.Equal(t, "climate", p.PreferredTopics[0])
	assert.Len(t, p.Ratings, 1)
	assert.Equal(t, now, *p.LastEngagementAt)
}

func TestPreferenceState_Prefers(t *testing.T) {
	p := NewPreferenceState("u1")
	p.PreferredTopics = []string{"Climate Change"}
	assert.True(t, p.PrefersTopic("climate change"))
	assert.False(t, p.PrefersTopic(""))
	var nilState *PreferenceState
	assert.False(t, nilState.PrefersIntent("volunteer"))
}

func TestClampLevel(t *testing.T) {
	assert.Equal(t, DefaultLevel, ClampLevel(0))
	assert.Equal(t, MinLevel, ClampLevel(-4))
	assert.Equal(t, MaxLevel, ClampLevel(9))
	assert.Equal(t, 2, ClampLevel(2))
}

func TestFilterState_IsEmpty(t *testing.T) {
	assert.True(t, FilterState{SearchQuery: "  "}.IsEmpty())
	assert.False(t, FilterState{Urgency: []int{4}}.IsEmpty())
}
