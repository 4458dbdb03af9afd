package httpserver

import (
	"net/url"
	"testing"
)

func FuzzBuildChallengeFilters(f *testing.F) {
	seeds := []string{
		"q=volley&active=true",
		"active=maybe",
		"limit=200",
		"cursor=not-base64",
		"",
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, raw string) {
		values, err := url.ParseQuery(raw)
		if err != nil {
			return
		}
		_, _ = buildChallengeFilters(values)
	})
}
