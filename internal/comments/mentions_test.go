package comments_test

import (
	"testing"

	"reelreview/internal/comments"
)

func TestExtractMentions(t *testing.T) {
	cases := []struct {
		content string
		want    []string
	}{
		{"no mentions here", nil},
		{"@[Ola Nord](u3) please check", []string{"u3"}},
		{"@[A](u1) @[B](u2) @[A again](u1)", []string{"u1", "u2"}},
		{"email me@example.com and @[broken](", nil},
	}
	for _, tc := range cases {
		if got := comments.ExtractMentions(tc.content); !equalIDs(got, tc.want) {
			t.Fatalf("%q: got %v want %v", tc.content, got, tc.want)
		}
	}
}

func TestMentionTokenRoundTrip(t *testing.T) {
	token := comments.MentionToken(" Ola [N] ", "u3")
	if token != "@[Ola N](u3)" {
		t.Fatalf("unexpected token %q", token)
	}
	content := "hi " + token
	if got := comments.ExtractMentions(content); !equalIDs(got, []string{"u3"}) {
		t.Fatalf("token not extractable: %v", got)
	}
	if got := comments.RenderMentions(content); got != "hi @Ola N" {
		t.Fatalf("unexpected rendered content %q", got)
	}
}

func TestResolveMentions(t *testing.T) {
	dir := comments.MapDirectory{"u3": {ID: "u3", Name: "Ola"}}
	c := comments.Comment{MentionedUsers: []string{"u3", "u7"}}
	members, unknown := comments.ResolveMentions(c, dir)
	if len(members) != 1 || members[0].Name != "Ola" {
		t.Fatalf("unexpected members %v", members)
	}
	if !equalIDs(unknown, []string{"u7"}) {
		t.Fatalf("unexpected unknown ids %v", unknown)
	}
}
