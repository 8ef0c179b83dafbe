package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-playground/validator/v10"

	"github.com/alexanderramin/civic/internal/cli/formatter"
	"github.com/alexanderramin/civic/internal/domain"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// civicHuhTheme returns a huh theme matching the formatter palette.
func civicHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

// intakeIntents are the intent choices offered by the intake form.
var intakeIntents = []string{"volunteer", "advocate", "donate", "petition", "organize", "learn", "get help"}

// newIntakeForm asks for whatever part of ic is still empty.
func newIntakeForm(ic *domain.IntentContext) *huh.Form {
	var fields []huh.Field
	if ic.Intent == "" {
		options := make([]huh.Option[string], len(intakeIntents))
		for i, intent := range intakeIntents {
			label := fmt.Sprintf("%s (%s)", intent, domain.CTAForIntent(intent).Label())
			options[i] = huh.NewOption(label, intent)
		}
		fields = append(fields, huh.NewSelect[string]().
			Title("What would you like to do?").
			Options(options...).
			Value(&ic.Intent))
	}
	if ic.Topic == "" {
		fields = append(fields, huh.NewInput().
			Title("Which issue do you care about?").
			Placeholder("climate change, housing, transit...").
			Validate(requiredText("topic")).
			Value(&ic.Topic))
	}
	if ic.Location == "" {
		fields = append(fields, huh.NewInput().
			Title("Where are you?").
			Description("Leave empty for actions you can take from anywhere.").
			Value(&ic.Location))
	}
	if len(fields) == 0 {
		return nil
	}
	return huh.NewForm(huh.NewGroup(fields...)).WithTheme(civicHuhTheme())
}

func requiredText(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}

// resolveContext fills missing context fields through the intake form when
// the session is interactive, then validates the result.
func resolveContext(app *App, ic domain.IntentContext) (domain.IntentContext, error) {
	if (ic.Intent == "" || ic.Topic == "") && app.interactive() {
		if form := newIntakeForm(&ic); form != nil {
			if err := form.Run(); err != nil {
				if errors.Is(err, huh.ErrUserAborted) {
					return ic, fmt.Errorf("cancelled")
				}
				return ic, fmt.Errorf("intake form: %w", err)
			}
		}
		ic = ic.Normalized()
	}
	if err := validate.Struct(ic); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			if fe.Tag() == "required" {
				return ic, fmt.Errorf("--%s is required", strings.ToLower(fe.Field()))
			}
			return ic, fmt.Errorf("--%s: failed %q check", strings.ToLower(fe.Field()), fe.Tag())
		}
		return ic, fmt.Errorf("invalid context: %w", err)
	}
	return ic, nil
}
