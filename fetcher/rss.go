package fetcher

import (
	"context"
	"fmt"
	"regexp"
	"sort"

	"github.com/caomingyu/soulqun/topic"
	"github.com/mmcdole/gofeed"
)

// RSSFetcher is the RSS implementation of topic.Fetcher. It lets a
// session argue about a live headline instead of a canned topic.
type RSSFetcher struct {
	url   string
	limit int
}

// NewRSSFetcher creates a fetcher for the given feed URL. limit caps
// the number of returned topics; zero or negative means no cap.
func NewRSSFetcher(url string, limit int) topic.Fetcher {
	return &RSSFetcher{url: url, limit: limit}
}

func (f *RSSFetcher) Fetch(ctx context.Context) ([]*topic.Topic, error) {
	fp := gofeed.NewParser()
	feed, err := fp.ParseURLWithContext(f.url, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse RSS feed from %s: %w", f.url, err)
	}

	// Newest first.
	sort.Slice(feed.Items, func(i, j int) bool {
		iTime := feed.Items[i].PublishedParsed
		jTime := feed.Items[j].PublishedParsed
		if iTime == nil || jTime == nil {
			return i < j
		}
		return iTime.After(*jTime)
	})

	var topics []*topic.Topic
	for i, item := range feed.Items {
		if f.limit > 0 && i >= f.limit {
			break
		}
		topics = append(topics, &topic.Topic{
			Title:     item.Title,
			Category:  "时事",
			Summary:   truncateRunes(stripHTML(item.Description), 200),
			SourceURL: item.Link,
		})
	}
	return topics, nil
}

var htmlRegex = regexp.MustCompile("<[^>]*>")

func stripHTML(s string) string {
	return htmlRegex.ReplaceAllString(s, "")
}

func truncateRunes(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) > maxLen {
		return string(runes[:maxLen])
	}
	return s
}

var _ topic.Fetcher = (*RSSFetcher)(nil)
