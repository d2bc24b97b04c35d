package skill

import (
	"os"
	"regexp"
	"strings"
)

// Step is one copyable prompt parsed out of a skill file.
type Step struct {
	Title  string
	Prompt string
}

const promptMarker = "**Prompt:**"

var (
	// Skill files separate steps with --- rules or "## Step N" headings.
	stepSplit = regexp.MustCompile(`\n(?:---\n|## Step \d+)`)
	stepTitle = regexp.MustCompile(`(?m)^\s*##\s*(.*)`)
)

// ExecutionSteps parses the skill markdown into its guided prompts. A
// skill with no prompt blocks has no executable steps; that is not an
// error.
func (s *Skill) ExecutionSteps() ([]Step, error) {
	data, err := os.ReadFile(s.FilePath)
	if err != nil {
		return nil, err
	}
	return parseSteps(string(data)), nil
}

func parseSteps(content string) []Step {
	var steps []Step
	for _, section := range stepSplit.Split(content, -1) {
		if !strings.Contains(section, promptMarker) {
			continue
		}
		raw := strings.TrimSpace(strings.Split(section, promptMarker)[1])

		// Prompts are conventionally blockquoted; strip the quoting and
		// drop blank lines.
		var lines []string
		for _, line := range strings.Split(raw, "\n") {
			line = strings.TrimSpace(strings.Trim(line, ">"))
			if line != "" {
				lines = append(lines, line)
			}
		}

		title := "Unnamed Step"
		if m := stepTitle.FindStringSubmatch(section); m != nil {
			title = strings.TrimSpace(m[1])
		}

		steps = append(steps, Step{Title: title, Prompt: strings.Join(lines, "\n")})
	}
	return steps
}
