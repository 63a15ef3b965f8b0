// Package subst expands ${name} placeholders in templates against a flat
// variable map. Expansion is all-or-nothing: a template referencing a
// variable that is not in the map, or containing a malformed placeholder,
// yields an error and no output.
package subst

import (
	"fmt"
	"strings"
)

// Vars maps variable names to their substitution values.
type Vars map[string]string

// UnknownVariableError reports a placeholder whose name has no entry in
// the variable map.
type UnknownVariableError struct {
	Name string
}

func (e *UnknownVariableError) Error() string {
	return fmt.Sprintf("substitution: unknown variable %q", e.Name)
}

// SyntaxError reports a malformed placeholder (unterminated ${, empty or
// ill-formed variable name). Offset is the byte position of the opening $.
type SyntaxError struct {
	Offset int
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("substitution: malformed placeholder at byte %d", e.Offset)
}

// Expand replaces every ${name} in template with vars[name]. A $ that does
// not open a placeholder is passed through literally. Both single values
// (CLI-supplied URLs) and whole file contents go through this one function,
// so their behavior is identical.
func Expand(template string, vars Vars) (string, error) {
	if !strings.ContainsRune(template, '$') {
		return template, nil
	}

	var b strings.Builder
	b.Grow(len(template))
	pos := 0
	for pos < len(template) {
		i := strings.IndexByte(template[pos:], '$')
		if i < 0 {
			b.WriteString(template[pos:])
			break
		}
		start := pos + i
		b.WriteString(template[pos:start])
		if start+1 >= len(template) || template[start+1] != '{' {
			// Literal $ (or trailing $ at end of input).
			b.WriteByte('$')
			pos = start + 1
			continue
		}
		end := strings.IndexByte(template[start:], '}')
		if end < 0 {
			return "", &SyntaxError{Offset: start}
		}
		name := template[start+2 : start+end]
		if !validName(name) {
			return "", &SyntaxError{Offset: start}
		}
		val, ok := vars[name]
		if !ok {
			return "", &UnknownVariableError{Name: name}
		}
		b.WriteString(val)
		pos = start + end + 1
	}
	return b.String(), nil
}

func validName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '_':
		default:
			return false
		}
	}
	return true
}
