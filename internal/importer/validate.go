package importer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/civic/internal/domain"
	"github.com/go-playground/validator/v10"
)

// SupportedVersion is the only seed file version this importer reads.
const SupportedVersion = 1

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateCatalogSchema checks the seed file before conversion and returns
// every problem found.
func ValidateCatalogSchema(schema *CatalogSchema) []error {
	var errs []error

	if schema.Version != 0 && schema.Version != SupportedVersion {
		errs = append(errs, fmt.Errorf("version: unsupported value %d (expected %d)", schema.Version, SupportedVersion))
	}
	if len(schema.Actions) == 0 {
		errs = append(errs, fmt.Errorf("actions: at least one action is required"))
	}
	if d := schema.Defaults; d != nil {
		errs = append(errs, structErrors("defaults", d)...)
		if d.CTAType != "" && !knownCTA(d.CTAType) {
			errs = append(errs, fmt.Errorf("defaults.cta_type: invalid value %q", d.CTAType))
		}
	}

	ids := make(map[string]int, len(schema.Actions))
	for i := range schema.Actions {
		a := &schema.Actions[i]
		prefix := fmt.Sprintf("actions[%d]", i)
		errs = append(errs, structErrors(prefix, a)...)
		if a.CTAType != "" && !knownCTA(a.CTAType) {
			errs = append(errs, fmt.Errorf("%s.cta_type: invalid value %q", prefix, a.CTAType))
		}
		if a.ID == "" {
			continue
		}
		if first, dup := ids[a.ID]; dup {
			errs = append(errs, fmt.Errorf("%s.id: duplicate id %q (first used at actions[%d])", prefix, a.ID, first))
			continue
		}
		ids[a.ID] = i
	}
	return errs
}

func structErrors(prefix string, v any) []error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []error{fmt.Errorf("%s: %w", prefix, err)}
	}
	out := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, fmt.Errorf("%s.%s: failed %q check", prefix, fieldPath(fe), ruleName(fe)))
	}
	return out
}

// fieldPath turns "ActionImport.OrganizationName" into "organization_name".
func fieldPath(fe validator.FieldError) string {
	ns := fe.StructNamespace()
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	return toSnake(ns)
}

func ruleName(fe validator.FieldError) string {
	if fe.Param() != "" {
		return fe.Tag() + "=" + fe.Param()
	}
	return fe.Tag()
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && s[i-1] >= 'a' && s[i-1] <= 'z' {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func knownCTA(s string) bool {
	t := domain.CTAType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range domain.CTATypes() {
		if t == known {
			return true
		}
	}
	return false
}
