package bot

import (
	"context"
	"net/url"
	"strings"
)

// Searcher finds the first result for query restricted to site.
// An empty link with a nil error means there were no results.
type Searcher interface {
	Search(ctx context.Context, query, site string) (string, error)
}

// LinkSearcher builds a DuckDuckGo "first result" redirect link instead of
// querying a search engine itself.
type LinkSearcher struct {
	// BaseURL defaults to https://duckduckgo.com/.
	BaseURL string
}

func (l LinkSearcher) Search(_ context.Context, query, site string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", nil
	}

	base := l.BaseURL
	if base == "" {
		base = "https://duckduckgo.com/"
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}

	q := `\ ` + query
	if site != "" {
		q += " site:" + site
	}
	u.RawQuery = url.Values{"q": []string{q}}.Encode()
	return u.String(), nil
}
