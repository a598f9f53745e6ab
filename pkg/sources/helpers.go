package sources

import (
	"context"
	"fmt"
	"net/http"
	"unicode/utf8"

	"github.com/samvad-hq/samvad-news-briefing/pkg/httpclient"
)

// truncateRunes cuts s to at most n runes.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func fetchBody(ctx context.Context, client HTTPClient, url string, headers map[string]string) ([]byte, error) {
	resp, err := client.Get(ctx, url, headers)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}

	body := resp.Body()
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%s returned status %d body: %s", url, resp.StatusCode(), httpclient.BodySnippet(body))
	}

	return body, nil
}
