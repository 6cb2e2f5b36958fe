package content

import (
	"fmt"
	"sort"

	"github.com/thaivisachecklist/server/internal/reporting"
	"github.com/thaivisachecklist/server/internal/validation"
)

// MaxPinned is how many pinned items the news page highlights.
const MaxPinned = 2

type NewsItem struct {
	Slug        string `yaml:"slug"`
	Title       string `yaml:"title"`
	Summary     string `yaml:"summary"`
	Category    string `yaml:"category"`
	PublishedAt string `yaml:"published_at"`
	Pinned      bool   `yaml:"pinned"`
	SourceLabel string `yaml:"source_label"`
	SourceURL   string `yaml:"source_url"`

	Published reporting.Date `yaml:"-"`
}

// News holds items newest first.
type News struct {
	items []NewsItem
}

func newNews(items []NewsItem) (*News, error) {
	for i := range items {
		d, err := reporting.ParseISO(items[i].PublishedAt)
		if err != nil {
			return nil, fmt.Errorf("news %q: %w", items[i].Slug, err)
		}
		items[i].Published = d
		if err := validation.ValidateURL(items[i].SourceURL, "source_url", false); err != nil {
			return nil, fmt.Errorf("news %q: %w", items[i].Slug, err)
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Published.Time().After(items[j].Published.Time())
	})
	return &News{items: items}, nil
}

// All returns every item, newest first.
func (n *News) All() []NewsItem {
	return n.items
}

// Split returns up to MaxPinned of the newest pinned items and every other
// item, both newest first. A pinned item beyond the limit is listed with
// the rest.
func (n *News) Split() (pinned, latest []NewsItem) {
	for _, item := range n.items {
		if item.Pinned && len(pinned) < MaxPinned {
			pinned = append(pinned, item)
			continue
		}
		latest = append(latest, item)
	}
	return pinned, latest
}
