package comments_test

import (
	"errors"
	"testing"

	"reelreview/internal/comments"
	"reelreview/internal/geometry"
	"reelreview/internal/services"
)

func TestNewComment(t *testing.T) {
	c := mustNew(t, comments.Draft{
		Content:     "  Check with @[Ola](u3) and @[Kim](u2), then @[Ola](u3)  ",
		TimestampMs: 500,
		Tags:        []string{"logo", " Logo ", ""},
		Author:      comments.User{ID: "u1", Name: "Dana"},
	})
	if c.ID == "" || c.VideoID != "vid-1" {
		t.Fatalf("expected generated id and video, got %q %q", c.ID, c.VideoID)
	}
	if c.Type != comments.TypeText || c.Status != comments.StatusOpen {
		t.Fatalf("unexpected defaults %s %s", c.Type, c.Status)
	}
	if !equalIDs(c.MentionedUsers, []string{"u3", "u2"}) {
		t.Fatalf("unexpected mentions %v", c.MentionedUsers)
	}
	if !equalIDs(c.Tags, []string{"logo"}) {
		t.Fatalf("unexpected tags %v", c.Tags)
	}
	if !c.CreatedAt.Equal(baseTime) {
		t.Fatalf("unexpected created time %v", c.CreatedAt)
	}
}

func TestNewCommentInfersTypeFromAnnotation(t *testing.T) {
	c := mustNew(t, comments.Draft{TimestampMs: 0, Annotation: comments.PointAnnotation{X: 50, Y: 50}})
	if c.Type != comments.TypePoint {
		t.Fatalf("expected point type, got %s", c.Type)
	}
}

func TestNewCommentRejectsInvalidInput(t *testing.T) {
	asset := testAsset()
	cases := map[string]comments.Draft{
		"timestamp past end": {Content: "x", TimestampMs: 10001},
		"negative timestamp": {Content: "x", TimestampMs: -1},
		"priority":           {Content: "x", Priority: 3},
		"empty text":         {Content: "   "},
		"type mismatch":      {Type: comments.TypeRegion, Annotation: comments.PointAnnotation{X: 1, Y: 1}},
		"point out of range": {Annotation: comments.PointAnnotation{X: 101, Y: 1}},
		"region overflow":    {Annotation: comments.RegionAnnotation{X: 90, Y: 0, Width: 20, Height: 10}},
		"missing payload":    {Type: comments.TypeDrawing},
		"empty drawing":      {Annotation: comments.DrawingAnnotation{}},
	}
	for name, d := range cases {
		if _, err := comments.New(d, asset, baseTime); !errors.Is(err, services.ErrValidation) {
			t.Fatalf("%s: expected validation error, got %v", name, err)
		}
	}
}

func TestReplyInheritsParent(t *testing.T) {
	root := mustNew(t, comments.Draft{ID: "A", Content: "root", TimestampMs: 2500})
	list, err := comments.Add(nil, root)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	list, reply, err := comments.Reply(list, "A", comments.Draft{ID: "B", Content: "reply", TimestampMs: 9000}, testAsset(), baseTime)
	if err != nil {
		t.Fatalf("reply: %v", err)
	}
	if reply.ParentID != "A" || reply.TimestampMs != 2500 || reply.VideoID != root.VideoID {
		t.Fatalf("reply did not inherit parent: %+v", reply)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 comments, got %d", len(list))
	}

	_, _, err = comments.Reply(list, "B", comments.Draft{Content: "nested"}, testAsset(), baseTime)
	if !errors.Is(err, comments.ErrNestedReply) || !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected nested reply error, got %v", err)
	}
	_, _, err = comments.Reply(list, "nope", comments.Draft{Content: "x"}, testAsset(), baseTime)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAddRejectsDuplicateID(t *testing.T) {
	c := mustNew(t, comments.Draft{ID: "A", Content: "x"})
	list, _ := comments.Add(nil, c)
	if _, err := comments.Add(list, c); !errors.Is(err, services.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestEditReplacesMentions(t *testing.T) {
	c := mustNew(t, comments.Draft{ID: "A", Content: "ping @[Ola](u3)"})
	list, _ := comments.Add(nil, c)
	content := "now @[Kim](u2) instead"
	priority := comments.PriorityCritical
	tags := []string{"audio"}
	edited := baseTime.Add(5)
	list, updated, err := comments.Edit(list, "A", comments.Changes{Content: &content, Priority: &priority, Tags: &tags}, edited)
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if !equalIDs(updated.MentionedUsers, []string{"u2"}) {
		t.Fatalf("stale mentions after edit: %v", updated.MentionedUsers)
	}
	if updated.Priority != comments.PriorityCritical || !equalIDs(updated.Tags, tags) {
		t.Fatalf("edit not applied: %+v", updated)
	}
	if updated.EditedAt == nil || !updated.EditedAt.Equal(edited) {
		t.Fatalf("edited time not stamped: %v", updated.EditedAt)
	}
	if c.MentionedUsers[0] != "u3" {
		t.Fatal("edit mutated the original comment")
	}

	empty := ""
	if _, _, err := comments.Edit(list, "A", comments.Changes{Content: &empty}, baseTime); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for empty content, got %v", err)
	}
	bad := comments.Priority(7)
	if _, _, err := comments.Edit(list, "A", comments.Changes{Priority: &bad}, baseTime); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for priority, got %v", err)
	}
}

func TestResolveAndReopen(t *testing.T) {
	list, _ := comments.Add(nil, mustNew(t, comments.Draft{ID: "A", Content: "x"}))
	list, c, err := comments.Resolve(list, "A", " fixed in v2 ", baseTime)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !c.IsResolved() || c.ResolutionNotes != "fixed in v2" || c.ResolvedAt == nil {
		t.Fatalf("unexpected resolved comment %+v", c)
	}
	list, c, err = comments.Reopen(list, "A", baseTime)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if c.IsResolved() || c.ResolutionNotes != "" || c.ResolvedAt != nil {
		t.Fatalf("reopen did not clear resolution: %+v", c)
	}
	if _, _, err := comments.Resolve(list, "missing", "", baseTime); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestReactionToggleTwiceRestores(t *testing.T) {
	c := mustNew(t, comments.Draft{ID: "A", Content: "x"})
	c = comments.ToggleReaction(c, "👍", "u9")
	list, _ := comments.Add(nil, c)

	list, once, err := comments.React(list, "A", "👍", "u1", baseTime)
	if err != nil {
		t.Fatalf("react: %v", err)
	}
	if once.ReactionCounts["👍"] != 2 {
		t.Fatalf("expected 2 reactions, got %d", once.ReactionCounts["👍"])
	}
	_, twice, err := comments.React(list, "A", "👍", "u1", baseTime)
	if err != nil {
		t.Fatalf("react: %v", err)
	}
	if twice.ReactionCounts["👍"] != 1 || len(twice.ReactedBy["👍"]) != 1 {
		t.Fatalf("toggle twice did not restore: %v %v", twice.ReactionCounts, twice.ReactedBy)
	}

	fresh := mustNew(t, comments.Draft{ID: "B", Content: "y"})
	back := comments.ToggleReaction(comments.ToggleReaction(fresh, "🔥", "u1"), "🔥", "u1")
	if _, ok := back.ReactionCounts["🔥"]; ok {
		t.Fatal("emoji key should be removed when the count reaches zero")
	}
	if _, ok := back.ReactedBy["🔥"]; ok {
		t.Fatal("reactor list should be removed when empty")
	}
	if _, _, err := comments.React(list, "A", "", "u1", baseTime); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for empty emoji, got %v", err)
	}
}

func TestDeleteCascades(t *testing.T) {
	list, _ := comments.Add(nil, mustNew(t, comments.Draft{ID: "A", Content: "root"}))
	list, _ = comments.Add(list, mustNew(t, comments.Draft{ID: "Z", Content: "other"}))
	list, _, _ = comments.Reply(list, "A", comments.Draft{ID: "B", Content: "r1"}, testAsset(), baseTime)
	list, _, _ = comments.Reply(list, "A", comments.Draft{ID: "C", Content: "r2"}, testAsset(), baseTime)

	out, removed, err := comments.Delete(list, "A")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !equalIDs(removed, []string{"A", "B", "C"}) {
		t.Fatalf("unexpected removed ids %v", removed)
	}
	if !equalIDs(ids(out), []string{"Z"}) {
		t.Fatalf("unexpected remaining %v", ids(out))
	}
	if len(list) != 4 {
		t.Fatal("delete mutated its input")
	}
	if _, _, err := comments.Delete(out, "A"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDrawingCommentIsolated(t *testing.T) {
	drawing := geometry.DrawingData{Strokes: []geometry.Stroke{{Points: []geometry.Point{{X: 1, Y: 1}}, Color: "#f00", Width: 2}}}
	c := mustNew(t, comments.Draft{Annotation: comments.DrawingAnnotation{Drawing: drawing}})
	drawing.Strokes[0].Points[0].X = 50
	got := c.Annotation.(comments.DrawingAnnotation)
	if got.Drawing.Strokes[0].Points[0].X != 1 {
		t.Fatal("comment drawing shares storage with the caller")
	}
}
