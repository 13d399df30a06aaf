package behave

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/pelletier/go-toml/v2"
	"github.com/programme-lv/dilemma/internal/langs"
	"github.com/programme-lv/dilemma/internal/match"
)

// Match outcomes a scenario can expect
const (
	StatusOK           = "ok"
	StatusViolation    = "violation"
	StatusCompileError = "compile_error"
	StatusExited       = "exited"
	StatusUnresponsive = "unresponsive"
	StatusInvalidRange = "invalid_range"
)

// SpecStrategy is a contestant in the behaviour file. It is either source
// code compiled with a catalog language or a ready execution command.
type SpecStrategy struct {
	Name string `toml:"name"`
	Lang string `toml:"lang"`
	Code string `toml:"code"`
	Exec string `toml:"exec"`
}

// SpecExpect describes the expected outcome of a match. Unset fields are
// not checked.
type SpecExpect struct {
	Status        string  `toml:"status"`
	FirstScore    *int    `toml:"first_score"`
	SecondScore   *int    `toml:"second_score"`
	FirstChoices  []int32 `toml:"first_choices"`
	SecondChoices []int32 `toml:"second_choices"`
	ViolatingSide int     `toml:"violating_side"`
}

// specScenario maps to [[scenarios]] entries
type specScenario struct {
	Description string           `toml:"description"`
	First       string           `toml:"first"`
	Second      string           `toml:"second"`
	Range       *match.IterRange `toml:"range"`
	Expect      SpecExpect       `toml:"expect"`
}

type specRoot struct {
	Scenarios  []specScenario `toml:"scenarios"`
	Strategies []SpecStrategy `toml:"strategies"`
	// Optional language templates overriding or extending the catalog
	Languages []langs.Template `toml:"languages"`
}

// Case is a runnable scenario converted from TOML
type Case struct {
	ID     uuid.UUID
	Name   string
	First  SpecStrategy
	Second SpecStrategy
	Range  match.IterRange
	Expect SpecExpect
}

type Suite struct {
	Languages []langs.Template
	Cases     []Case
}

// Parse reads a behaviour TOML file and converts it to runnable cases
func Parse(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read behaviour file: %w", err)
	}
	return ParseBytes(data)
}

func ParseBytes(data []byte) (*Suite, error) {
	var root specRoot
	if err := toml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	byName := make(map[string]SpecStrategy, len(root.Strategies))
	for _, s := range root.Strategies {
		if s.Name == "" {
			return nil, fmt.Errorf("strategy is missing a name")
		}
		if _, dup := byName[s.Name]; dup {
			return nil, fmt.Errorf("strategy %q defined twice", s.Name)
		}
		if (s.Exec == "") == (s.Code == "") {
			return nil, fmt.Errorf("strategy %q needs exactly one of code and exec", s.Name)
		}
		if s.Code != "" && s.Lang == "" {
			return nil, fmt.Errorf("strategy %q has code but no lang", s.Name)
		}
		byName[s.Name] = s
	}

	suite := &Suite{
		Languages: root.Languages,
		Cases:     make([]Case, 0, len(root.Scenarios)),
	}
	for i, sc := range root.Scenarios {
		first, ok := byName[sc.First]
		if !ok {
			return nil, fmt.Errorf("scenario %d: unknown strategy %q", i+1, sc.First)
		}
		second, ok := byName[sc.Second]
		if !ok {
			return nil, fmt.Errorf("scenario %d: unknown strategy %q", i+1, sc.Second)
		}
		if sc.Expect.Status == "" {
			sc.Expect.Status = StatusOK
		}
		r := match.DefaultRange
		if sc.Range != nil {
			r = *sc.Range
		}
		name := sc.Description
		if name == "" {
			name = fmt.Sprintf("%s vs %s", sc.First, sc.Second)
		}
		suite.Cases = append(suite.Cases, Case{
			ID:     uuid.New(),
			Name:   name,
			First:  first,
			Second: second,
			Range:  r,
			Expect: sc.Expect,
		})
	}
	return suite, nil
}
