package langs

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Template describes how one language is compiled and run. Commands may
// reference {input}, {output} and {dir}; they are substituted with absolute
// paths inside the submission directory.
type Template struct {
	ID            string `toml:"id"`
	Name          string `toml:"name"`
	CodeFname     string `toml:"code_fname"`
	CompiledFname string `toml:"compiled_fname"`
	CompileCmd    string `toml:"compile_cmd"`
	ExecCmd       string `toml:"exec_cmd"`
	// Header asks the compiler to place the generated mailbox header next
	// to the source file.
	Header bool `toml:"header"`
}

func (t Template) CompileCommand(inputPath, outputPath string) string {
	return expand(t.CompileCmd, inputPath, outputPath)
}

func (t Template) ExecCommand(outputPath string) string {
	return expand(t.ExecCmd, "", outputPath)
}

func (t Template) Validate() error {
	switch {
	case t.ID == "":
		return fmt.Errorf("language template is missing id")
	case t.CodeFname == "" || t.CompiledFname == "":
		return fmt.Errorf("language %q: code_fname and compiled_fname are required", t.ID)
	case t.CompileCmd == "" || t.ExecCmd == "":
		return fmt.Errorf("language %q: compile_cmd and exec_cmd are required", t.ID)
	case strings.ContainsRune(t.CodeFname, filepath.Separator),
		strings.ContainsRune(t.CompiledFname, filepath.Separator):
		return fmt.Errorf("language %q: file names must not contain path separators", t.ID)
	}
	return nil
}

func expand(cmd, inputPath, outputPath string) string {
	dir := filepath.Dir(outputPath)
	if outputPath == "" {
		dir = filepath.Dir(inputPath)
	}
	return strings.NewReplacer(
		"{input}", inputPath,
		"{output}", outputPath,
		"{dir}", dir,
	).Replace(cmd)
}
