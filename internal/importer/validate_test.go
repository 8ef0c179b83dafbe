package importer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validMinimalSchema() *CatalogSchema {
	return &CatalogSchema{
		Version: 1,
		Actions: []ActionImport{
			{ID: "a1", Title: "Call your council member", CTAType: "contact_rep"},
		},
	}
}

func joined(errs []error) string {
	parts := make([]string, len(errs))
	for i, e := range errs {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "\n")
}

func TestValidateCatalogSchema_ValidMinimal(t *testing.T) {
	assert.Empty(t, ValidateCatalogSchema(validMinimalSchema()))
}

func TestValidateCatalogSchema_CollectsAllErrors(t *testing.T) {
	schema := &CatalogSchema{
		Version:  3,
		Defaults: &DefaultsImport{CTAType: "skywrite"},
		Actions: []ActionImport{
			{ID: "", Title: "", Impact: 9},
			{ID: "dup", Title: "x", CTAType: "nope", Link: "not a url"},
			{ID: "dup", Title: "y", Tags: []string{"ok", ""}},
		},
	}
	errs := ValidateCatalogSchema(schema)
	msg := joined(errs)

	assert.Contains(t, msg, "version: unsupported value 3")
	assert.Contains(t, msg, `defaults.cta_type: invalid value "skywrite"`)
	assert.Contains(t, msg, `actions[0].id: failed "required" check`)
	assert.Contains(t, msg, `actions[0].title: failed "required" check`)
	assert.Contains(t, msg, `actions[0].impact: failed "max=5" check`)
	assert.Contains(t, msg, `actions[1].cta_type: invalid value "nope"`)
	assert.Contains(t, msg, `actions[1].link: failed "url" check`)
	assert.Contains(t, msg, `actions[2].id: duplicate id "dup"`)
	assert.Contains(t, msg, `actions[2].tags[1]: failed "required" check`)
}

func TestValidateCatalogSchema_EmptyActions(t *testing.T) {
	errs := ValidateCatalogSchema(&CatalogSchema{})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "at least one action")
}

func TestParseCatalogSchema_YAML(t *testing.T) {
	schema, err := ParseCatalogSchema([]byte(`
version: 1
defaults:
  location: Denver
actions:
  - id: a1
    title: Plant trees
    tags: [climate, local]
    intent: volunteer
    impact: 4
    urgency: 2
    time_commitment: 3 hours
    organization_name: Green Streets
`))
	require.NoError(t, err)
	require.Len(t, schema.Actions, 1)
	a := schema.Actions[0]
	assert.Equal(t, "Plant trees", a.Title)
	assert.Equal(t, []string{"climate", "local"}, a.Tags)
	assert.Equal(t, "3 hours", a.TimeCommitment)
	assert.Equal(t, "Green Streets", a.OrganizationName)
	assert.Equal(t, "Denver", schema.Defaults.Location)
	assert.Empty(t, ValidateCatalogSchema(schema))
}

func TestParseCatalogSchema_JSON(t *testing.T) {
	schema, err := ParseCatalogSchema([]byte(`{"version":1,"actions":[{"id":"a1","title":"x","cta_type":"donate"}]}`))
	require.NoError(t, err)
	assert.Equal(t, "donate", schema.Actions[0].CTAType)
}

func TestParseCatalogSchema_Malformed(t *testing.T) {
	_, err := ParseCatalogSchema([]byte("actions: [\n"))
	assert.Error(t, err)
}
