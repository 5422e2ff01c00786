package graphics

import (
	"fmt"
	"io/fs"
	"path"
	"strconv"
	"strings"

	"res-errare/internal/gpu"
)

// directives known to the GLSL preprocessor. Anything else is rejected
// before the source reaches the driver.
var directives = map[string]bool{
	"define": true, "elif": true, "else": true, "endif": true, "error": true,
	"if": true, "ifdef": true, "ifndef": true, "include": true, "pragma": true,
	"undef": true, "version": true, "extension": true, "line": true,
}

// ShaderLoader reads shader sources from a file system. Source returns the
// text with #include directives expanded and __LINE__ replaced by the
// current line number; ReadRaw returns the file untouched.
type ShaderLoader struct {
	fsys fs.FS
}

// NewShaderLoader returns a loader rooted at fsys.
func NewShaderLoader(fsys fs.FS) *ShaderLoader {
	return &ShaderLoader{fsys: fsys}
}

// ReadRaw returns the file content as is.
func (l *ShaderLoader) ReadRaw(name string) (string, error) {
	data, err := fs.ReadFile(l.fsys, name)
	if err != nil {
		return "", fmt.Errorf("read shader %s: %w", name, err)
	}
	return string(data), nil
}

// Source returns the preprocessed source of name.
func (l *ShaderLoader) Source(name string) (string, error) {
	return l.process(path.Clean(name), nil)
}

func (l *ShaderLoader) process(name string, stack []string) (string, error) {
	for _, s := range stack {
		if s == name {
			return "", &ShaderPreprocessError{
				File: name,
				Msg:  "include cycle: " + strings.Join(append(stack, name), " -> "),
			}
		}
	}
	src, err := l.ReadRaw(name)
	if err != nil {
		return "", err
	}
	stack = append(stack, name)

	var out strings.Builder
	lines := strings.Split(src, "\n")
	for i, line := range lines {
		lineNo := i + 1
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "#") {
			out.WriteString(strings.ReplaceAll(line, "__LINE__", strconv.Itoa(lineNo)))
			if i != len(lines)-1 {
				out.WriteByte('\n')
			}
			continue
		}

		fields := strings.Fields(strings.TrimSpace(trimmed[1:]))
		if len(fields) == 0 {
			return "", &ShaderPreprocessError{File: name, Line: lineNo, Msg: "empty directive"}
		}
		if !directives[fields[0]] {
			return "", &ShaderPreprocessError{File: name, Line: lineNo, Msg: fmt.Sprintf("unknown directive %q", fields[0])}
		}
		if fields[0] != "include" {
			out.WriteString(line)
			out.WriteByte('\n')
			continue
		}

		if len(fields) != 2 {
			return "", &ShaderPreprocessError{
				File: name,
				Line: lineNo,
				Msg:  fmt.Sprintf("malformed include %q: expected 1 parameter, found %d", trimmed, len(fields)-1),
			}
		}
		target, ok := includeTarget(fields[1])
		if !ok {
			return "", &ShaderPreprocessError{File: name, Line: lineNo, Msg: fmt.Sprintf("invalid include path %s", fields[1])}
		}
		included, err := l.process(target, stack)
		if err != nil {
			return "", err
		}
		out.WriteByte('\n')
		out.WriteString(included)
		out.WriteByte('\n')
	}
	out.WriteByte('\n')
	return out.String(), nil
}

// includeTarget strips "" or <> quoting and cleans the path. Include paths
// are resolved from the loader root.
func includeTarget(param string) (string, bool) {
	if len(param) >= 2 {
		first, last := param[0], param[len(param)-1]
		if (first == '"' && last == '"') || (first == '<' && last == '>') {
			param = param[1 : len(param)-1]
		}
	}
	param = strings.TrimPrefix(path.Clean(param), "/")
	if param == "" || param == "." || strings.HasPrefix(param, "..") || !fs.ValidPath(param) {
		return "", false
	}
	return param, true
}

// LoadProgram builds a program from preprocessed sources. geometry may be
// empty.
func (l *ShaderLoader) LoadProgram(dev gpu.Device, vertex, fragment, geometry string) (*ShaderProgram, error) {
	names := []string{vertex, fragment}
	if geometry != "" {
		names = append(names, geometry)
	}
	srcs := make([]string, len(names))
	for i, n := range names {
		src, err := l.Source(n)
		if err != nil {
			return nil, err
		}
		srcs[i] = src
	}
	return NewShaderProgram(dev, srcs[0], srcs[1], srcs[2:]...)
}
