package skill

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSteps(t *testing.T) {
	content := "# Protein Modeling Skill\n" +
		"\n" +
		"Guides a structure prediction run.\n" +
		"\n" +
		"## Step 1\n" +
		"**Prompt:**\n" +
		"> Fetch the target sequence with uniprot_tool.\n" +
		"> Save it as target.fasta.\n" +
		"\n" +
		"## Step 2\n" +
		"**Prompt:**\n" +
		"> Run the fold prediction.\n" +
		"\n" +
		"---\n" +
		"## Review\n" +
		"\n" +
		"Some intro text.\n" +
		"\n" +
		"**Prompt:**\n" +
		"> Inspect the predicted structure.\n"

	steps := parseSteps(content)
	require.Len(t, steps, 3)

	assert.Equal(t, "Unnamed Step", steps[0].Title,
		"the Step heading is consumed by the separator")
	assert.Equal(t,
		"Fetch the target sequence with uniprot_tool.\nSave it as target.fasta.",
		steps[0].Prompt)

	assert.Equal(t, "Run the fold prediction.", steps[1].Prompt)

	assert.Equal(t, "Review", steps[2].Title)
	assert.Equal(t, "Inspect the predicted structure.", steps[2].Prompt)
}

func TestParseStepsNoPrompts(t *testing.T) {
	assert.Empty(t, parseSteps("# Just Documentation\n\nNothing to execute here.\n"))
}

func TestParseStepsUnquotedPrompt(t *testing.T) {
	content := "## Setup\n" +
		"**Prompt:**\n" +
		"Plain prompt line without quoting.\n"

	steps := parseSteps(content)
	require.Len(t, steps, 1)
	assert.Equal(t, "Setup", steps[0].Title)
	assert.Equal(t, "Plain prompt line without quoting.", steps[0].Prompt)
}

func TestExecutionStepsReadsFile(t *testing.T) {
	paths := testPaths(t)
	path := writeSkillFile(t, paths, "fold.md",
		"## Run\n**Prompt:**\n> Do the thing.\n")
	s := New("fold", path, paths, Config{})

	steps, err := s.ExecutionSteps()
	require.NoError(t, err)
	require.Len(t, steps, 1)
	assert.Equal(t, "Run", steps[0].Title)

	missing := New("ghost", path+".absent", paths, Config{})
	_, err = missing.ExecutionSteps()
	assert.Error(t, err)
}
