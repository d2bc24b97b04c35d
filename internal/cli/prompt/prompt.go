// Package prompt wraps interactive terminal questions so commands stay
// testable: they take a unit.Confirmer and never touch the terminal
// directly.
package prompt

import (
	"github.com/AlecAivazis/survey/v2"

	"github.com/proteinmcp/proteinmcp/internal/domain/unit"
)

// Confirm asks a yes/no question on the terminal. A prompt failure
// (closed stdin, Ctrl-C) counts as the default answer.
func Confirm(question string, def bool) bool {
	answer := def
	q := &survey.Confirm{
		Message: question,
		Default: def,
	}
	if err := survey.AskOne(q, &answer); err != nil {
		return def
	}
	return answer
}

// Confirmer returns a unit.Confirmer backed by the terminal. Destructive
// operations default to no.
func Confirmer() unit.Confirmer {
	return func(question string) bool {
		return Confirm(question, false)
	}
}
