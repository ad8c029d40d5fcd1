package config

import (
	stderrors "errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/gobwas/glob"
	shellquote "github.com/kballard/go-shellquote"

	"github.com/offshoot-dev/offshoot/internal/errors"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// customValidations are the tags config structs use beyond the built-ins.
var customValidations = map[string]validator.Func{
	"relpath": func(fl validator.FieldLevel) bool {
		return pathProblem(fl.Field().String()) == ""
	},
	"shellcmd": func(fl validator.FieldLevel) bool {
		return shellProblem(fl.Field().String()) == ""
	},
	"pattern": func(fl validator.FieldLevel) bool {
		return patternProblem(fl.Field().String()) == ""
	},
}

// mustRegister panics when validator rejects a tag. A tag that failed to
// register would otherwise let every field using it pass unchecked.
func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("config: registering %q validation: %v", tag, err))
	}
}

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
		for tag, fn := range customValidations {
			mustRegister(validate, tag, fn)
		}
	})
	return validate
}

// Validate checks a config and reports every problem at once.
func Validate(cfg *Config) error {
	var problems []string

	if err := structValidator().Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if !stderrors.As(err, &verrs) {
			return errors.ConfigValidation(formatProblems([]string{err.Error()}))
		}
		for _, fe := range verrs {
			problems = append(problems, describeFieldError(fe))
		}
	}

	problems = append(problems, duplicateTargets(cfg)...)
	for i, l := range cfg.Link {
		if l.IsPattern() && l.Target != "" {
			problems = append(problems, fmt.Sprintf("link[%d]: target cannot be set for pattern source %s", i, l.Source))
		}
	}

	if cfg.Worktree.PathTemplate != "" {
		if p := templateProblem(cfg.Worktree.PathTemplate); p != "" {
			problems = append(problems, "worktree.path_template: "+p)
		}
	}

	if len(problems) == 0 {
		return nil
	}
	return errors.ConfigValidation(formatProblems(problems))
}

func describeFieldError(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	value := fmt.Sprint(fe.Value())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "relpath":
		return field + ": " + pathProblem(value)
	case "shellcmd":
		return field + ": " + shellProblem(value)
	case "pattern":
		return field + ": " + patternProblem(value)
	}
	return fmt.Sprintf("%s failed %q validation", field, fe.Tag())
}

// pathProblem rejects absolute paths and any .. component. Both slash styles
// count so a config behaves the same on every platform.
func pathProblem(path string) string {
	if filepath.IsAbs(path) || strings.HasPrefix(path, "/") || strings.HasPrefix(path, `\`) {
		return "absolute paths are not allowed: " + path
	}
	for _, part := range strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == '\\' }) {
		if part == ".." {
			return "path traversal (..) is not allowed: " + path
		}
	}
	return ""
}

// patternProblem rejects glob patterns that do not compile. Plain paths pass.
func patternProblem(source string) string {
	if !IsPattern(source) {
		return ""
	}
	if _, err := glob.Compile(filepath.ToSlash(source), '/'); err != nil {
		return fmt.Sprintf("invalid glob pattern %q: %v", source, err)
	}
	return ""
}

func shellProblem(command string) string {
	if strings.TrimSpace(command) == "" {
		return "command is empty"
	}
	if _, err := shellquote.Split(command); err != nil {
		return fmt.Sprintf("cannot parse command %q: %v", command, err)
	}
	return ""
}

func templateProblem(template string) string {
	expanded, _ := Worktree{PathTemplate: template}.GeneratePath("branch", "repository")
	if strings.ContainsRune(expanded, 0) {
		return "contains a null character"
	}
	if filepath.Clean(expanded) == "." {
		return "expands to an empty path"
	}
	return ""
}

// duplicateTargets reports workspace paths written by more than one entry.
func duplicateTargets(cfg *Config) []string {
	var problems []string
	seen := make(map[string]string)

	check := func(entry, target string) {
		if target == "" || pathProblem(target) != "" {
			return
		}
		key := filepath.ToSlash(filepath.Clean(target))
		if first, ok := seen[key]; ok {
			problems = append(problems, fmt.Sprintf("%s: duplicate target path %s (already used by %s)", entry, target, first))
			return
		}
		seen[key] = entry
	}

	for i, m := range cfg.Mkdir {
		check(fmt.Sprintf("mkdir[%d]", i), m.Path)
	}
	for i, l := range cfg.Link {
		if l.IsPattern() {
			continue
		}
		check(fmt.Sprintf("link[%d]", i), l.TargetPath())
	}
	for i, c := range cfg.Copy {
		check(fmt.Sprintf("copy[%d]", i), c.TargetPath())
	}
	return problems
}
