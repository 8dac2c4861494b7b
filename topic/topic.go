// Package topic provides the structured conversation topics a session
// is seeded with, either from the embedded catalog or from an external
// source such as an RSS feed.
package topic

// Topic is a single conversation subject. It is selected once per
// session and held fixed for the session's duration.
type Topic struct {
	// Title is the topic headline.
	Title string `yaml:"title"`

	// Category is the catalog category label. Empty for fetched topics.
	Category string `yaml:"-"`

	// ConflictLevel in [0,1] hints how likely the topic is to start a
	// fight. Zero means unknown.
	ConflictLevel float64 `yaml:"conflictLevel"`

	// Summary is a short description, mainly filled by external fetchers.
	Summary string `yaml:"-"`

	// SourceURL points at the topic's origin, when it has one.
	SourceURL string `yaml:"-"`
}
