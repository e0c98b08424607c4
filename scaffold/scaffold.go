// Package scaffold creates a new filepress instance tree from embedded
// templates.
package scaffold

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"text/template"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

// Templates contains all scaffold template files.
// Files use Go text/template syntax and have a .tmpl suffix.
//
//go:embed all:templates
var Templates embed.FS

const root = "templates"

// dateToken in a template path is replaced with Data.Date.
const dateToken = "DATE"

// Data holds the template variables passed to every scaffold template.
type Data struct {
	SiteName string
	Author   string
	Date     string // YYYY-MM-DD
	Timezone string
}

// NewData derives template data from an instance directory name.
func NewData(dirName string, now time.Time) Data {
	tz := now.Location().String()
	if tz == "Local" {
		tz = "UTC"
	}
	return Data{
		SiteName: ToTitle(dirName),
		Date:     now.Format("2006-01-02"),
		Timezone: tz,
	}
}

// Write renders every template into fsys and returns the created paths in
// walk order. Existing files are overwritten.
func Write(fsys billy.Filesystem, data Data) ([]string, error) {
	var created []string
	err := fs.WalkDir(Templates, root, func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel := strings.TrimPrefix(strings.TrimPrefix(name, root), "/")
		if rel == "" {
			return nil
		}
		out := strings.TrimSuffix(strings.ReplaceAll(rel, dateToken, data.Date), ".tmpl")

		if d.IsDir() {
			return fsys.MkdirAll(out, 0o755)
		}

		content, err := Templates.ReadFile(name)
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		tmpl, err := template.New(path.Base(name)).Parse(string(content))
		if err != nil {
			return fmt.Errorf("parse template %s: %w", name, err)
		}
		var b strings.Builder
		if err := tmpl.Execute(&b, data); err != nil {
			return fmt.Errorf("execute template %s: %w", name, err)
		}
		if err := util.WriteFile(fsys, out, []byte(b.String()), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
		created = append(created, out)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// ToTitle converts a hyphenated or lowercase name to a title-case string.
// e.g. "my-blog" -> "My Blog", "myblog" -> "Myblog"
func ToTitle(s string) string {
	parts := strings.Split(s, "-")
	for i, p := range parts {
		if len(p) > 0 {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, " ")
}
