package templates

import (
	"bytes"
	"embed"
	"fmt"
	htmpl "html/template"
	"io"
	"reflect"
	"strings"
	"sync"
	texttpl "text/template"
	"time"
)

//go:embed *.tmpl
var FS embed.FS

// defaultFn supports pipe usage: {{ .Value | default "Fallback" }}
func defaultFn(fallback any, value any) any {
	switch x := value.(type) {
	case string:
		if strings.TrimSpace(x) == "" {
			return fallback
		}
		return x
	case nil:
		return fallback
	default:
		rv := reflect.ValueOf(value)
		if !rv.IsValid() {
			return fallback
		}
		zero := reflect.Zero(rv.Type()).Interface()
		if reflect.DeepEqual(value, zero) {
			return fallback
		}
		return value
	}
}

func funcs() map[string]any {
	return map[string]any{
		"now":        func() time.Time { return time.Now().UTC() },
		"formatTime": func(t time.Time, layout string) string { return t.Format(layout) },
		"upper":      strings.ToUpper,
		"default":    defaultFn,
	}
}

const (
	Welcome        = "welcome"
	ProfileUpdated = "profile_updated"
)

var names = []string{Welcome, ProfileUpdated}

// Known reports whether name has a template set in FS.
func Known(name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

// set is the parsed subject/text/html triple for one template name.
type set struct {
	subject *texttpl.Template
	text    *texttpl.Template
	html    *htmpl.Template
}

var (
	loadOnce sync.Once
	sets     map[string]set
	loadErr  error
)

// load parses every known template set from FS once.
func load() (map[string]set, error) {
	loadOnce.Do(func() {
		out := make(map[string]set, len(names))
		for _, name := range names {
			var s set
			if s.subject, loadErr = parseText(name + ".subject.tmpl"); loadErr != nil {
				return
			}
			if s.text, loadErr = parseText(name + ".text.tmpl"); loadErr != nil {
				return
			}
			file := name + ".html.tmpl"
			if s.html, loadErr = htmpl.New(file).Funcs(funcs()).ParseFS(FS, file); loadErr != nil {
				loadErr = fmt.Errorf("parse html %q: %w", file, loadErr)
				return
			}
			out[name] = s
		}
		sets = out
	})
	return sets, loadErr
}

func parseText(file string) (*texttpl.Template, error) {
	tpl, err := texttpl.New(file).Funcs(funcs()).ParseFS(FS, file)
	if err != nil {
		return nil, fmt.Errorf("parse text %q: %w", file, err)
	}
	return tpl, nil
}

type executor interface {
	Execute(w io.Writer, data any) error
	Name() string
}

func execute(t executor, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("exec %q: %w", t.Name(), err)
	}
	return buf.String(), nil
}

// Render renders the subject, text and html parts of the named set.
// Files are <name>.subject.tmpl, <name>.text.tmpl and <name>.html.tmpl.
func Render(name string, data any) (subject string, text string, html string, err error) {
	all, err := load()
	if err != nil {
		return "", "", "", err
	}
	s, ok := all[name]
	if !ok {
		return "", "", "", fmt.Errorf("unknown template %q", name)
	}
	if subject, err = execute(s.subject, data); err != nil {
		return "", "", "", err
	}
	if text, err = execute(s.text, data); err != nil {
		return "", "", "", err
	}
	if html, err = execute(s.html, data); err != nil {
		return "", "", "", err
	}
	return strings.TrimSpace(subject), text, html, nil
}
