package importer

import (
	"strings"

	"github.com/alexanderramin/civic/internal/domain"
)

// Convert turns a validated schema into catalog records, applying defaults.
// Call ValidateCatalogSchema first; Convert assumes the schema is valid.
func Convert(schema *CatalogSchema) []*domain.ActionRecord {
	var d DefaultsImport
	if schema.Defaults != nil {
		d = *schema.Defaults
	}

	out := make([]*domain.ActionRecord, 0, len(schema.Actions))
	for _, a := range schema.Actions {
		cta := domain.CoalesceStr(a.CTAType, d.CTAType)
		intent := domain.CoalesceStr(a.Intent, d.Intent)
		if cta == "" && intent != "" {
			cta = string(domain.CTAForIntent(intent))
		}
		out = append(out, &domain.ActionRecord{
			ID:               strings.TrimSpace(a.ID),
			Title:            strings.TrimSpace(a.Title),
			Description:      strings.TrimSpace(a.Description),
			Tags:             append([]string{}, a.Tags...),
			Intent:           intent,
			Topic:            domain.CoalesceStr(a.Topic, d.Topic),
			Location:         domain.CoalesceStr(a.Location, d.Location),
			CTAType:          string(domain.ParseCTAType(cta)),
			Impact:           domain.ClampLevel(a.Impact),
			Urgency:          domain.ClampLevel(a.Urgency),
			TimeCommitment:   strings.TrimSpace(a.TimeCommitment),
			OrganizationName: strings.TrimSpace(a.OrganizationName),
			Link:             strings.TrimSpace(a.Link),
		})
	}
	return out
}
