package langs

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

var ErrUnknownLanguage = errors.New("unknown language")

// Catalog is the set of languages submissions may be written in.
type Catalog struct {
	mu    sync.RWMutex
	langs map[string]Template
}

func NewCatalog() *Catalog {
	return &Catalog{langs: make(map[string]Template)}
}

// Default returns the built-in catalog: c, c++, python, pypy and java.
func Default() *Catalog {
	c := NewCatalog()
	for _, t := range defaults {
		if err := c.Register(t); err != nil {
			panic(err)
		}
	}
	return c
}

func (c *Catalog) Register(t Template) error {
	if err := t.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.langs[t.ID] = t
	return nil
}

// Override registers every template, replacing built-ins with the same id.
// Empty fields of an override fall back to the existing template.
func (c *Catalog) Override(ts []Template) error {
	for _, t := range ts {
		if base, err := c.Get(t.ID); err == nil {
			t = overlay(base, t)
		}
		if err := c.Register(t); err != nil {
			return fmt.Errorf("failed to register language %q: %w", t.ID, err)
		}
	}
	return nil
}

func (c *Catalog) Get(id string) (Template, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.langs[id]
	if !ok {
		return Template{}, fmt.Errorf("%w: %q", ErrUnknownLanguage, id)
	}
	return t, nil
}

func (c *Catalog) IDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]string, 0, len(c.langs))
	for id := range c.langs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func overlay(base, t Template) Template {
	if t.Name != "" {
		base.Name = t.Name
	}
	if t.CodeFname != "" {
		base.CodeFname = t.CodeFname
	}
	if t.CompiledFname != "" {
		base.CompiledFname = t.CompiledFname
	}
	if t.CompileCmd != "" {
		base.CompileCmd = t.CompileCmd
	}
	if t.ExecCmd != "" {
		base.ExecCmd = t.ExecCmd
	}
	base.Header = base.Header || t.Header
	return base
}

const pyCompile = `python3 -c "import py_compile; py_compile.compile(r'{input}', cfile=r'{output}', optimize=2, doraise=True)"`

var defaults = []Template{
	{
		ID:            "c",
		Name:          "C11",
		CodeFname:     "a.c",
		CompiledFname: "a.out",
		CompileCmd:    "clang -std=gnu11 -Wall -O2 -static -s -DONLINE_JUDGE -o {output} {input} -lm",
		ExecCmd:       "{output}",
		Header:        true,
	},
	{
		ID:            "c++",
		Name:          "C++20",
		CodeFname:     "a.cpp",
		CompiledFname: "a.out",
		CompileCmd:    "clang++ -std=gnu++2a -Wall -O2 -static -s -DONLINE_JUDGE -o {output} {input} -lm",
		ExecCmd:       "{output}",
		Header:        true,
	},
	{
		ID:            "python",
		Name:          "Python 3",
		CodeFname:     "a.py",
		CompiledFname: "a.pyc",
		CompileCmd:    pyCompile,
		ExecCmd:       "python3 {output}",
	},
	{
		ID:            "pypy",
		Name:          "PyPy 3",
		CodeFname:     "a.py",
		CompiledFname: "a.pyc",
		CompileCmd:    pyCompile,
		ExecCmd:       "pypy3 {output}",
	},
	{
		ID:            "java",
		Name:          "Java",
		CodeFname:     "a.java",
		CompiledFname: "a.class",
		CompileCmd:    "javac -J-Xms1024m -J-Xmx1024m -J-Xss512m -encoding UTF-8 -d {dir} {input}",
		ExecCmd:       "java -Xms1024m -Xmx1024m -Xss512m -Dfile.encoding=UTF-8 -cp {dir} a",
	},
}
