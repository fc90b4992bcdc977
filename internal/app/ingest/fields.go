package ingest

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/communityhub/internal/app/system/communityapi"
	"github.com/dalemusser/communityhub/internal/domain/models"
)

// dateLayouts are tried in order when a record carries a date string.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02-01-2006",
	"02/01/2006",
}

// recordID extracts the identifier. ok is false when the field is absent
// or empty; bad is set when it is present but unusable.
func recordID(rec communityapi.Record) (id models.ID, raw string, ok bool, bad bool) {
	v, present := rec["id"]
	if !present || v == nil {
		return "", "", false, false
	}
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return models.IntID(n), t.String(), true, false
		}
		return "", t.String(), false, true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return "", "", false, false
		}
		return models.ID(s), s, true, false
	case float64:
		if t == math.Trunc(t) && !math.IsInf(t, 0) {
			return models.IntID(int64(t)), strconv.FormatFloat(t, 'f', -1, 64), true, false
		}
		return "", strconv.FormatFloat(t, 'f', -1, 64), false, true
	case int:
		return models.IntID(int64(t)), strconv.Itoa(t), true, false
	case int64:
		return models.IntID(t), strconv.FormatInt(t, 10), true, false
	default:
		return "", "", false, true
	}
}

// str returns the first non-empty string among keys.
func str(rec map[string]any, keys ...string) string {
	for _, k := range keys {
		switch t := rec[k].(type) {
		case string:
			if s := strings.TrimSpace(t); s != "" {
				return s
			}
		case json.Number:
			return t.String()
		}
	}
	return ""
}

// num returns the first integer among keys. Arrays count as their length,
// so {"comments": [...]} yields the number of comments.
func num(rec map[string]any, keys ...string) (int, bool) {
	for _, k := range keys {
		switch t := rec[k].(type) {
		case json.Number:
			if n, err := t.Int64(); err == nil {
				return int(n), true
			}
			if f, err := t.Float64(); err == nil {
				return int(f), true
			}
		case float64:
			return int(t), true
		case int:
			return t, true
		case string:
			if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
				return n, true
			}
		case []any:
			return len(t), true
		}
	}
	return 0, false
}

func boolean(rec map[string]any, keys ...string) bool {
	for _, k := range keys {
		switch t := rec[k].(type) {
		case bool:
			return t
		case string:
			if b, err := strconv.ParseBool(strings.TrimSpace(t)); err == nil {
				return b
			}
		}
	}
	return false
}

// date parses the first parseable date among keys.
func date(rec map[string]any, keys ...string) (time.Time, bool) {
	for _, k := range keys {
		s, ok := rec[k].(string)
		if !ok {
			continue
		}
		s = strings.TrimSpace(s)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), true
			}
		}
	}
	return time.Time{}, false
}

// author reads a string author or an {name, avatar} object.
func author(rec map[string]any) models.Author {
	avatar := str(rec, "profileImage", "avatar", "authorAvatar")
	switch t := rec["author"].(type) {
	case string:
		return models.Author{Name: strings.Join(strings.Fields(t), " "), Avatar: avatar}
	case map[string]any:
		a := models.Author{Name: str(t, "name")}
		if a.Name == "" {
			a.Name = strings.Join(strings.Fields(str(t, "firstName")+" "+str(t, "lastName")), " ")
		}
		a.Avatar = str(t, "avatar", "profileImage")
		if a.Avatar == "" {
			a.Avatar = avatar
		}
		return a
	}
	return models.Author{Name: str(rec, "authorName"), Avatar: avatar}
}

// tags reads a list of strings or {name} objects, dropping blanks and
// duplicates while keeping order.
func tags(rec map[string]any) []string {
	list, ok := rec["tags"].([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(list))
	seen := make(map[string]bool, len(list))
	for _, v := range list {
		var name string
		switch t := v.(type) {
		case string:
			name = t
		case map[string]any:
			name = str(t, "name")
		}
		name = strings.Join(strings.Fields(name), " ")
		key := strings.ToLower(name)
		if name == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, name)
	}
	return out
}
