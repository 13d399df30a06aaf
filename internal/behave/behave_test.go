package behave_test

import (
	"context"
	"testing"

	"github.com/programme-lv/dilemma/internal/behave"
	"github.com/programme-lv/dilemma/internal/compiler"
	"github.com/programme-lv/dilemma/internal/match"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	suite, err := behave.Parse("testdata/basic.toml")
	require.NoError(t, err)

	require.Len(t, suite.Languages, 1)
	assert.Equal(t, "sh {output}", suite.Languages[0].ExecCmd)

	require.Len(t, suite.Cases, 3)
	c := suite.Cases[0]
	assert.Equal(t, "cooperators share the reward", c.Name)
	assert.Equal(t, "always1", c.First.Exec)
	assert.Equal(t, match.IterRange{Min: 5, Max: 5}, c.Range)
	assert.Equal(t, behave.StatusOK, c.Expect.Status)
	require.NotNil(t, c.Expect.FirstScore)
	assert.Equal(t, 10, *c.Expect.FirstScore)

	assert.Equal(t, "defector vs cheater", suite.Cases[1].Name)
	assert.Equal(t, 2, suite.Cases[1].Expect.ViolatingSide)
	assert.NotEqual(t, suite.Cases[0].ID, suite.Cases[1].ID)
}

func TestParseErrors(t *testing.T) {
	for name, doc := range map[string]string{
		"unknown strategy": `
[[scenarios]]
first = "ghost"
second = "ghost"`,
		"code and exec": `
[[strategies]]
name = "x"
lang = "c"
code = "int main(){}"
exec = "./x"`,
		"code without lang": `
[[strategies]]
name = "x"
code = "int main(){}"`,
		"duplicate": `
[[strategies]]
name = "x"
exec = "a"
[[strategies]]
name = "x"
exec = "b"`,
		"bad toml": `[[scenarios`,
	} {
		_, err := behave.ParseBytes([]byte(doc))
		assert.Error(t, err, name)
	}
}

// constJudge plays exec commands "always0"/"always1" and treats
// "invalid3" as a protocol breaker.
type constJudge struct{}

func (constJudge) Compare(_ context.Context, first, second string, r match.IterRange) (*match.Result, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if first == "invalid3" {
		return nil, &match.ViolationError{Side: 1, Turn: 3, Value: 7}
	}
	if second == "invalid3" {
		return nil, &match.ViolationError{Side: 2, Turn: 3, Value: 7}
	}
	a, b := int32(first[len(first)-1]-'0'), int32(second[len(second)-1]-'0')
	res := &match.Result{Iterations: r.Min}
	for i := 0; i < r.Min; i++ {
		s1, s2 := match.Score(a, b)
		res.FirstScore += s1
		res.SecondScore += s2
		res.FirstChoices = append(res.FirstChoices, a)
		res.SecondChoices = append(res.SecondChoices, b)
	}
	return res, nil
}

type countingCompiler struct {
	calls int
}

func (c *countingCompiler) Compile(_ context.Context, sub compiler.Submission) (*compiler.Artifact, *compiler.Report, error) {
	c.calls++
	return nil, &compiler.Report{ExitCode: 1}, nil
}

func TestRun(t *testing.T) {
	suite, err := behave.Parse("testdata/basic.toml")
	require.NoError(t, err)

	r := &behave.Runner{Compiler: &countingCompiler{}, Judge: constJudge{}}
	outcomes, err := r.Run(context.Background(), suite)
	require.NoError(t, err)
	require.Len(t, outcomes, 3)
	for _, o := range outcomes {
		assert.True(t, o.Passed(), "%s: %v", o.Case.Name, o.Mismatches)
	}
}

func TestRunReportsMismatches(t *testing.T) {
	ten, zero := 10, 0
	comp := &countingCompiler{}
	scripted := behave.SpecStrategy{Name: "scripted", Lang: "sh", Code: "exit 0"}
	coop := behave.SpecStrategy{Name: "coop", Exec: "always1"}
	suite := &behave.Suite{Cases: []behave.Case{
		{
			Name: "wrong score", First: coop, Second: coop,
			Range:  match.IterRange{Min: 5, Max: 5},
			Expect: behave.SpecExpect{Status: behave.StatusOK, FirstScore: &zero, SecondScore: &ten},
		},
		{
			Name: "compile error", First: scripted, Second: coop,
			Range:  match.IterRange{Min: 5, Max: 5},
			Expect: behave.SpecExpect{Status: behave.StatusCompileError},
		},
		{
			Name: "compile error again", First: coop, Second: scripted,
			Range:  match.IterRange{Min: 5, Max: 5},
			Expect: behave.SpecExpect{Status: behave.StatusOK},
		},
	}}

	r := &behave.Runner{Compiler: comp, Judge: constJudge{}}
	outcomes, err := r.Run(context.Background(), suite)
	require.NoError(t, err)

	assert.Equal(t, []string{"first score: expected 0, got 10"}, outcomes[0].Mismatches)
	assert.True(t, outcomes[1].Passed())
	assert.Equal(t, []string{"status: expected ok, got compile_error"}, outcomes[2].Mismatches)
	assert.Equal(t, 1, comp.calls, "each strategy is compiled once")
}

func TestClassify(t *testing.T) {
	assert.Equal(t, behave.StatusOK, behave.Classify(nil))
	assert.Equal(t, behave.StatusViolation, behave.Classify(&match.ViolationError{Side: 1}))
	assert.Equal(t, behave.StatusInvalidRange, behave.Classify(match.IterRange{}.Validate()))
	assert.Equal(t, "", behave.Classify(context.Canceled))
}
