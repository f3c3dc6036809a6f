package templates

import (
	"net/url"
	"strconv"
	"time"
)

const timeLayout = "2006-01-02 15:04 MST"

type navLink struct {
	key, page, label string
}

var navLinks = []navLink{
	{"home", "", "Home"},
	{"status", "status", "Status"},
	{"credentials", "credentials", "Credentials"},
	{"logs", "logs", "Logs"},
	{"rules", "rules", "Rules"},
	{"example", "example", "Example"},
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "never"
	}
	return t.UTC().Format(timeLayout)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// pagePath mirrors middleware.PagePath; templates must not import middleware.
func pagePath(integration, page string) string {
	if page == "" {
		return "/" + integration + "/pages/"
	}
	return "/" + integration + "/pages/" + page + "/"
}

func pageLink(page, pageSize int, search string) string {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("page_size", strconv.Itoa(pageSize))
	if search != "" {
		q.Set("search", search)
	}
	return "?" + q.Encode()
}
