// Package identity mints and resolves stable ids for episodes, entities and
// relationships. Ids are deterministic given their inputs except for episode
// ids, which carry a random suffix minted once at collection time.
package identity

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

// NewEpisodeID mints an episode id of the form ep_<key>_<suffix>. The key is
// the episode number when known, otherwise the publish date as a unix
// timestamp, otherwise the current time. The suffix is 8 hex characters from
// a random UUID.
func NewEpisodeID(number *int, publishedDate *string) string {
	var key string
	switch {
	case number != nil:
		key = fmt.Sprintf("%d", *number)
	case publishedDate != nil && *publishedDate != "":
		if t, err := time.Parse("2006-01-02", *publishedDate); err == nil {
			key = fmt.Sprintf("%d", t.Unix())
		}
	}
	if key == "" {
		key = fmt.Sprintf("%d", time.Now().Unix())
	}
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("ep_%s_%s", key, suffix)
}

// EntityID returns the deterministic id for an entity within an episode:
// <type>_<normalized name>_<episode id prefix>.
func EntityID(name, entityType, episodeID string) string {
	return fmt.Sprintf("%s_%s_%s", strings.ToLower(entityType), NormalizeName(name), Prefix8(episodeID))
}

// RelationshipID returns the deterministic id for a relationship within an
// episode: rel_<source>_<type>_<target>_<episode id prefix>.
func RelationshipID(sourceName, relType, targetName, episodeID string) string {
	return fmt.Sprintf("rel_%s_%s_%s_%s",
		NormalizeName(sourceName), NormalizeName(relType), NormalizeName(targetName), Prefix8(episodeID))
}

// NormalizeName lowercases a name and strips everything that is not a letter
// or digit, so "Jeff Bezos" and "jeff-bezos" collapse to the same token.
func NormalizeName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeTitle lowercases a title, strips punctuation and collapses
// whitespace, so a feed that reissues "The Bezos Letters!" as "The Bezos
// Letters" still resolves to the same episode.
func NormalizeTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Prefix8 returns the first 8 characters of an id, or the whole id if it is
// shorter.
func Prefix8(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
