package post

import (
	"fmt"
	"regexp"
	"strings"
)

var mentionPattern = regexp.MustCompile(`@([^\s@]+)`)

// ProfileLink returns the markup reference to a user's profile
func ProfileLink(baseURL, username string) string {
	return fmt.Sprintf("<%s/%s| @%s>", strings.TrimRight(baseURL, "/"), username, username)
}

// LinkMentions rewrites @name tokens in text into profile links.
//
// Each distinct username is replaced everywhere "@username" occurs as a plain
// substring, in order of first appearance. A username that prefixes another
// mention is therefore also rewritten inside it.
func LinkMentions(baseURL string, text *string) *string {
	if text == nil {
		return nil
	}

	out := *text
	seen := make(map[string]bool)
	for _, m := range mentionPattern.FindAllStringSubmatch(*text, -1) {
		username := m[1]
		if seen[username] {
			continue
		}
		seen[username] = true
		out = strings.ReplaceAll(out, "@"+username, ProfileLink(baseURL, username))
	}
	return &out
}
