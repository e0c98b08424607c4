package filepress

import (
	"errors"
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-git/go-billy/v5"
)

// PublishType selects the canonicalization rules for a locator.
type PublishType string

const (
	PublishPost PublishType = "post"
	PublishPage PublishType = "page"
)

// ErrUnsupportedPublishType is returned for publish types other than post and page.
var ErrUnsupportedPublishType = errors.New("filepress: unsupported publish type")

var postURLExp = regexp.MustCompile(`^(\d{4})/(\d{1,2})/(\d{1,2})/([^/]+)(?:/(index(?:\.html?)?)?)?$`)

var pageExtExp = regexp.MustCompile(`^(.+)\.html?$`)

// FixPostRelativeURL canonicalizes a post locator such as "2016/7/8/my-post"
// into "2016/07/08/my-post/". An explicit index form keeps an "index.html"
// suffix. ok is false when the locator or its date is invalid.
func FixPostRelativeURL(rel string) (fixed string, ok bool) {
	m := postURLExp.FindStringSubmatch(rel)
	if m == nil {
		return "", false
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	if !validDate(year, month, day) {
		return "", false
	}

	name, index := m[4], m[5]
	if index == "" {
		name = trimHTMLExt(name)
	}
	if name == "" {
		return "", false
	}

	fixed = fmt.Sprintf("%04d/%02d/%02d/%s/", year, month, day, name)
	if index != "" {
		fixed += "index.html"
	}
	return fixed, true
}

func validDate(year, month, day int) bool {
	if year < 1 || month < 1 || month > 12 || day < 1 {
		return false
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return d.Month() == time.Month(month) && d.Day() == day
}

// FixPageRelativeURL canonicalizes a page locator against the pages/
// directory of fsys. exists reports a file that can be served verbatim.
// An empty fixed value means the locator was not recognized, which includes
// locators with ".." segments.
func FixPageRelativeURL(fsys billy.Filesystem, rel string) (fixed string, exists bool) {
	rel = strings.TrimLeft(rel, "/")
	endsWithSlash := strings.HasSuffix(rel, "/")
	rel = strings.TrimRight(rel, "/")
	if rel == "" || escapes(rel) {
		return "", false
	}
	if endsWithSlash {
		return rel + "/", false
	}

	if info, err := fsys.Stat(path.Join(pagesDir, rel)); err == nil {
		if info.IsDir() {
			return rel + "/", false
		}
		return rel, true
	}

	dir, file := path.Split(rel)
	if m := pageExtExp.FindStringSubmatch(file); m != nil {
		file = m[1]
	}
	return dir + file + ".html", false
}

// FixRelativeURL canonicalizes a locator of the given publish type. Posts
// never report exists, that needs a lookup in the posts directory.
func (s *Store) FixRelativeURL(pt PublishType, rel string) (fixed string, exists bool, err error) {
	switch pt {
	case PublishPost:
		fixed, _ = FixPostRelativeURL(rel)
		return fixed, false, nil
	case PublishPage:
		fixed, exists = FixPageRelativeURL(s.fs, rel)
		return fixed, exists, nil
	default:
		return "", false, fmt.Errorf("%w: %q", ErrUnsupportedPublishType, pt)
	}
}
