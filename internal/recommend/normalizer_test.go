package recommend

import (
	"testing"
	"time"

	"github.com/alexanderramin/civic/internal/domain"
	"github.com/alexanderramin/civic/internal/testutil"
	"github.com/stretchr/testify/assert"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestNormalize_FillsDefaultsFromCTA(t *testing.T) {
	rec := testutil.NewTestRecord("Chip in", testutil.WithCTA("donate"))
	a := Normalize(rec, domain.IntentContext{Intent: "donate", Topic: "housing"}, testNow)

	assert.Equal(t, domain.CTADonate, a.CTAType)
	assert.Equal(t, "Donate", a.CTALabel)
	assert.Equal(t, "5 minutes", a.TimeCommitment)
	assert.Equal(t, "housing", a.Topic, "topic taken from context when record has none")
	assert.Equal(t, testNow, a.GeneratedAt)
}

func TestNormalize_UnknownCTAFallsBackToLearnMore(t *testing.T) {
	rec := testutil.NewTestRecord("x", testutil.WithCTA("skywrite"))
	a := Normalize(rec, domain.IntentContext{Intent: "volunteer"}, testNow)
	assert.Equal(t, domain.CTALearnMore, a.CTAType)
	assert.Equal(t, "Learn More", a.CTALabel)
}

func TestNormalize_BlankCTAUsesIntent(t *testing.T) {
	rec := testutil.NewTestRecord("x", testutil.WithCTA(""))
	a := Normalize(rec, domain.IntentContext{Intent: "Volunteer"}, testNow)
	assert.Equal(t, domain.CTAVolunteer, a.CTAType)
}

func TestNormalize_RecordFieldsWinOverContext(t *testing.T) {
	rec := testutil.NewTestRecord("x",
		testutil.WithTopic("transit"),
		testutil.WithLocation("Oakland"),
		testutil.WithTimeCommitment("1 hour"),
	)
	a := Normalize(rec, domain.IntentContext{Topic: "housing", Location: "Denver"}, testNow)
	assert.Equal(t, "transit", a.Topic)
	assert.Equal(t, "Oakland", a.Location)
	assert.Equal(t, "1 hour", a.TimeCommitment)
}

func TestNormalize_MalformedRecord(t *testing.T) {
	rec := &domain.ActionRecord{
		Tags:    []string{" climate ", "", "Climate", "local"},
		Impact:  12,
		Urgency: -4,
	}
	a := Normalize(rec, domain.IntentContext{}, testNow)

	assert.NotEmpty(t, a.ID)
	assert.Equal(t, UntitledAction, a.Title)
	assert.Equal(t, []string{"climate", "local"}, a.Tags)
	assert.Equal(t, domain.MaxLevel, a.Impact)
	assert.Equal(t, domain.MinLevel, a.Urgency)
}

func TestNormalize_DerivedIDIsStable(t *testing.T) {
	rec := &domain.ActionRecord{Title: "Plant trees", Description: "Saturday", OrganizationName: "Green"}
	a := Normalize(rec, domain.IntentContext{}, testNow)
	b := Normalize(rec, domain.IntentContext{}, testNow.Add(time.Hour))
	assert.Equal(t, a.ID, b.ID)

	other := Normalize(&domain.ActionRecord{Title: "Plant shrubs"}, domain.IntentContext{}, testNow)
	assert.NotEqual(t, a.ID, other.ID)
}

func TestNormalize_NilRecord(t *testing.T) {
	a := Normalize(nil, domain.IntentContext{Topic: "x"}, testNow)
	assert.Equal(t, UntitledAction, a.Title)
	assert.Equal(t, domain.DefaultLevel, a.Impact)
}
