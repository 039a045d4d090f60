package comments

import (
	"fmt"
	"regexp"
	"strings"
)

// mentionPattern matches @[display name](userId) tokens.
var mentionPattern = regexp.MustCompile(`@\[([^\[\]]+)\]\(([^()\s]+)\)`)

// Directory resolves user ids to team members.
type Directory interface {
	Member(userID string) (User, bool)
}

// MapDirectory is a Directory backed by a map keyed by user id.
type MapDirectory map[string]User

// Member implements Directory.
func (d MapDirectory) Member(userID string) (User, bool) {
	u, ok := d[userID]
	return u, ok
}

// MentionToken formats the token that mentions a user inside content.
func MentionToken(name, userID string) string {
	name = strings.NewReplacer("[", "", "]", "").Replace(strings.TrimSpace(name))
	return fmt.Sprintf("@[%s](%s)", name, strings.TrimSpace(userID))
}

// ExtractMentions returns the distinct user ids mentioned in content, in order
// of first appearance.
func ExtractMentions(content string) []string {
	matches := mentionPattern.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(matches))
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		id := m[2]
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

// RenderMentions replaces mention tokens with their display form "@name".
func RenderMentions(content string) string {
	return mentionPattern.ReplaceAllString(content, "@$1")
}

// ResolveMentions looks up every mentioned user in dir. Ids the directory
// does not know are returned separately.
func ResolveMentions(c Comment, dir Directory) (members []User, unknown []string) {
	for _, id := range c.MentionedUsers {
		if dir != nil {
			if u, ok := dir.Member(id); ok {
				members = append(members, u)
				continue
			}
		}
		unknown = append(unknown, id)
	}
	return members, unknown
}
