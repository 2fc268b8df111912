package middleware

import (
	"context"
	"net/http"
	"strings"

	"golang.org/x/text/language"
)

type localeContextKey struct{}

var LocaleKey = localeContextKey{}

// Locale negotiates the UI locale among supported codes. An explicit
// X-Locale header or ?lang= parameter wins over Accept-Language; the
// default applies when nothing matches.
func Locale(defaultLocale string, supported []string) func(http.Handler) http.Handler {
	n := newNegotiator(defaultLocale, supported)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			locale := n.detect(r)
			w.Header().Set("Content-Language", locale)
			ctx := context.WithValue(r.Context(), LocaleKey, locale)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type negotiator struct {
	tags     []language.Tag
	codes    []string
	matcher  language.Matcher
	fallback string
}

func newNegotiator(defaultLocale string, supported []string) *negotiator {
	n := &negotiator{fallback: "en"}
	for _, code := range supported {
		tag, err := language.Parse(code)
		if err != nil {
			continue
		}
		n.tags = append(n.tags, tag)
		n.codes = append(n.codes, code)
	}
	if len(n.tags) == 0 {
		n.tags = []language.Tag{language.English}
		n.codes = []string{"en"}
	}
	n.matcher = language.NewMatcher(n.tags)
	n.fallback = n.codes[0]
	if code, ok := n.match(defaultLocale); ok {
		n.fallback = code
	}
	return n
}

func (n *negotiator) detect(r *http.Request) string {
	if code, ok := n.match(r.URL.Query().Get("lang")); ok {
		return code
	}
	if code, ok := n.match(r.Header.Get("X-Locale")); ok {
		return code
	}
	if code, ok := n.match(r.Header.Get("Accept-Language")); ok {
		return code
	}
	return n.fallback
}

func (n *negotiator) match(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	tags, _, err := language.ParseAcceptLanguage(raw)
	if err != nil || len(tags) == 0 {
		return "", false
	}
	_, idx, conf := n.matcher.Match(tags...)
	if conf == language.No {
		return "", false
	}
	return n.codes[idx], true
}

func LocaleFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(LocaleKey).(string); ok {
		return v
	}
	return "en"
}
