package urlparser

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

var ErrInvalidParam = errors.New("invalid parameter")

// PathID reads a positive integer route parameter, e.g. {id} in /recipes/{id}.
func PathID(r *http.Request, key string) (int64, error) {
	raw := chi.URLParam(r, key)
	if raw == "" {
		return 0, fmt.Errorf("%w: %s is required", ErrInvalidParam, key)
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", ErrInvalidParam, key)
	}

	return id, nil
}

// QueryInt returns def when the key is absent.
func QueryInt(values url.Values, key string, def int) (int, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return def, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", ErrInvalidParam, key)
	}

	return n, nil
}

// QueryID is QueryInt for optional identifiers; zero means absent.
func QueryID(values url.Values, key string) (int64, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return 0, nil
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", ErrInvalidParam, key)
	}

	return id, nil
}

// QueryFlag accepts 1/0 and true/false.
func QueryFlag(values url.Values, key string) (bool, error) {
	raw := strings.TrimSpace(values.Get(key))
	switch strings.ToLower(raw) {
	case "", "0", "false":
		return false, nil
	case "1", "true":
		return true, nil
	default:
		return false, fmt.Errorf("%w: %s must be 0 or 1", ErrInvalidParam, key)
	}
}

// QueryList collects repeated keys (?tags=a&tags=b), dropping blanks and duplicates.
func QueryList(values url.Values, key string) []string {
	raw := values[key]
	out := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, v := range raw {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
