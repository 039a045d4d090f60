package daemon_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"reelreview/internal/api"
	"reelreview/internal/daemon"
	"reelreview/internal/testsupport"
)

type client struct {
	t       *testing.T
	handler http.Handler
}

func newClient(t *testing.T) *client {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	d, err := daemon.New(cfg, testsupport.MustOpenStore(t, cfg), nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	return &client{t: t, handler: d.Handler()}
}

func (c *client) do(method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	c.t.Helper()
	var reader *bytes.Reader
	switch v := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(v))
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			c.t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)
	return rec
}

func (c *client) expect(rec *httptest.ResponseRecorder, status int, out any) {
	c.t.Helper()
	if rec.Code != status {
		c.t.Fatalf("expected %d, got %d: %s", status, rec.Code, rec.Body.String())
	}
	if out == nil {
		return
	}
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		c.t.Fatalf("decode response: %v (%s)", err, rec.Body.String())
	}
}

func (c *client) registerVideo() {
	c.t.Helper()
	c.expect(c.do(http.MethodPost, "/api/videos", map[string]any{
		"id": "vid-1", "title": "Trailer", "durationMs": 60000, "frameRate": 24,
	}), http.StatusCreated, nil)
}

func TestVideoRoutes(t *testing.T) {
	c := newClient(t)
	c.registerVideo()

	var video api.Video
	c.expect(c.do(http.MethodGet, "/api/videos/vid-1", nil), http.StatusOK, &video)
	if video.Title != "Trailer" || video.Duration != "1:00" {
		t.Fatalf("unexpected video: %+v", video)
	}

	var list api.VideoList
	c.expect(c.do(http.MethodGet, "/api/videos", nil), http.StatusOK, &list)
	if len(list.Videos) != 1 {
		t.Fatalf("expected one video, got %+v", list)
	}

	var missing api.ErrorResponse
	c.expect(c.do(http.MethodGet, "/api/videos/nope", nil), http.StatusNotFound, &missing)
	if missing.Kind != "not_found" {
		t.Fatalf("unexpected error kind: %+v", missing)
	}

	var invalid api.ErrorResponse
	c.expect(c.do(http.MethodPost, "/api/videos", map[string]any{"id": "x", "durationMs": -5}), http.StatusBadRequest, &invalid)
	if invalid.Kind != "validation" || len(invalid.Details) == 0 {
		t.Fatalf("expected validation details, got %+v", invalid)
	}

	c.expect(c.do(http.MethodPost, "/api/videos", `{"id":"x","title":"t","bogus":1}`), http.StatusBadRequest, nil)

	c.expect(c.do(http.MethodDelete, "/api/videos/vid-1", nil), http.StatusNoContent, nil)
	c.expect(c.do(http.MethodGet, "/api/videos/vid-1", nil), http.StatusNotFound, nil)
	c.expect(c.do(http.MethodDelete, "/api/videos/vid-1", nil), http.StatusNotFound, nil)
}

func TestImportCommentsRoute(t *testing.T) {
	c := newClient(t)
	c.registerVideo()

	var imported api.CommentList
	c.expect(c.do(http.MethodPost, "/api/videos/vid-1/comments/import", map[string]any{
		"comments": []map[string]any{
			{"id": "i1", "content": "first", "timestampMs": 500, "author": map[string]string{"id": "u1", "name": "Una"}},
			{"id": "i2", "content": "second", "timestampMs": 1500, "author": map[string]string{"id": "u1", "name": "Una"}},
		},
	}), http.StatusCreated, &imported)
	if len(imported.Comments) != 2 || imported.Summary.Open != 2 {
		t.Fatalf("unexpected import: %+v", imported)
	}

	var conflict api.ErrorResponse
	c.expect(c.do(http.MethodPost, "/api/videos/vid-1/comments/import", map[string]any{
		"comments": []map[string]any{
			{"id": "i3", "content": "third", "author": map[string]string{"id": "u1", "name": "Una"}},
			{"id": "i1", "content": "again", "author": map[string]string{"id": "u1", "name": "Una"}},
		},
	}), http.StatusConflict, &conflict)
	if conflict.Kind != "conflict" {
		t.Fatalf("unexpected error: %+v", conflict)
	}

	var list api.CommentList
	c.expect(c.do(http.MethodGet, "/api/videos/vid-1/comments", nil), http.StatusOK, &list)
	if len(list.Comments) != 2 {
		t.Fatalf("rejected batch left comments behind: %+v", list.Comments)
	}
	c.expect(c.do(http.MethodPost, "/api/videos/vid-1/comments/import", map[string]any{"comments": []any{}}), http.StatusBadRequest, nil)
}

func TestCommentRoutes(t *testing.T) {
	c := newClient(t)
	c.registerVideo()

	var root api.Comment
	c.expect(c.do(http.MethodPost, "/api/videos/vid-1/comments", map[string]any{
		"id": "c1", "content": "Boom mic in frame", "timestampMs": 30000, "priority": "important",
		"type": "region", "annotation": map[string]any{"x": 10, "y": 10, "width": 20, "height": 15},
		"author": map[string]any{"id": "u-1", "name": "Dee"},
	}), http.StatusCreated, &root)
	if root.Timecode != "00:00:30:00" || root.Type != "region" {
		t.Fatalf("unexpected comment: %+v", root)
	}

	var reply api.Comment
	c.expect(c.do(http.MethodPost, "/api/comments/c1/replies", map[string]any{
		"id": "r1", "content": "Will reframe", "author": map[string]any{"id": "u-2", "name": "Eli"},
	}), http.StatusCreated, &reply)
	if reply.ParentID != "c1" {
		t.Fatalf("unexpected reply: %+v", reply)
	}

	c.expect(c.do(http.MethodPost, "/api/comments/r1/replies", map[string]any{
		"content": "nested", "author": map[string]any{"id": "u-1", "name": "Dee"},
	}), http.StatusBadRequest, nil)

	var resolved api.Comment
	c.expect(c.do(http.MethodPost, "/api/comments/c1/resolve", map[string]any{"notes": "done"}), http.StatusOK, &resolved)
	if resolved.Status != "resolved" {
		t.Fatalf("expected resolved, got %+v", resolved)
	}
	c.expect(c.do(http.MethodPost, "/api/comments/c1/reopen", nil), http.StatusOK, nil)

	var list api.CommentList
	c.expect(c.do(http.MethodGet, "/api/videos/vid-1/comments?threaded=true&priority=important", nil), http.StatusOK, &list)
	if len(list.Comments) != 1 || len(list.Comments[0].Replies) != 1 || len(list.Markers) != 1 {
		t.Fatalf("unexpected threaded list: %+v", list)
	}
	c.expect(c.do(http.MethodGet, "/api/videos/vid-1/comments?resolved=maybe", nil), http.StatusBadRequest, nil)

	edited := "Boom mic visible top left"
	c.expect(c.do(http.MethodPatch, "/api/comments/c1", map[string]any{"content": edited}), http.StatusOK, &root)
	if root.Content != edited || root.EditedAt == "" {
		t.Fatalf("unexpected edit: %+v", root)
	}

	c.expect(c.do(http.MethodPost, "/api/comments/c1/reactions", map[string]any{"emoji": "👍", "userId": "u-2"}), http.StatusOK, &root)
	if root.Reactions["👍"] != 1 {
		t.Fatalf("unexpected reactions: %+v", root.Reactions)
	}

	var deleted api.DeleteCommentResponse
	c.expect(c.do(http.MethodDelete, "/api/comments/c1", nil), http.StatusOK, &deleted)
	if strings.Join(deleted.Removed, ",") != "c1,r1" {
		t.Fatalf("unexpected removed ids: %v", deleted.Removed)
	}
	c.expect(c.do(http.MethodDelete, "/api/comments/c1", nil), http.StatusNotFound, nil)
}

func TestSessionRoutesEnforcePassword(t *testing.T) {
	c := newClient(t)
	c.registerVideo()

	var session api.Session
	c.expect(c.do(http.MethodPost, "/api/videos/vid-1/sessions", map[string]any{
		"id": "s1", "title": "Client review", "isPublic": true, "password": "open-sesame",
		"participants": []map[string]any{{"id": "p1", "userId": "u-1", "role": "approver"}},
	}), http.StatusCreated, &session)
	if !session.HasPassword || session.Status != "pending" {
		t.Fatalf("unexpected session: %+v", session)
	}
	if bytes.Contains(c.do(http.MethodGet, "/api/sessions/s1", nil, daemon.PasswordHeader, "open-sesame").Body.Bytes(), []byte("open-sesame")) {
		t.Fatal("password must not be serialized")
	}

	var denied api.ErrorResponse
	c.expect(c.do(http.MethodGet, "/api/sessions/s1", nil), http.StatusForbidden, &denied)
	if denied.Kind != "forbidden" {
		t.Fatalf("unexpected error: %+v", denied)
	}
	c.expect(c.do(http.MethodPost, "/api/videos/vid-1/comments", map[string]any{
		"content": "sneaky", "author": map[string]any{"id": "u-1", "name": "Dee"},
		"sessionId": "s1", "participantId": "p1",
	}), http.StatusForbidden, nil)

	auth := []string{daemon.PasswordHeader, "open-sesame"}
	c.expect(c.do(http.MethodPost, "/api/sessions/s1/participants/p1/viewed", nil, auth...), http.StatusOK, &session)
	if session.Participants[0].Status != "viewed" {
		t.Fatalf("expected viewed, got %+v", session.Participants[0])
	}
	c.expect(c.do(http.MethodPost, "/api/sessions/s1/participants/p1/decision", map[string]any{"decision": "approve"}, auth...), http.StatusOK, &session)
	if session.Status != "approved" || session.Progress.Percent != 100 {
		t.Fatalf("expected approved session, got %+v", session)
	}

	var conflict api.ErrorResponse
	c.expect(c.do(http.MethodPost, "/api/sessions/s1/participants/p1/decision", map[string]any{"decision": "reject"}, auth...), http.StatusConflict, &conflict)
	if conflict.Kind != "conflict" {
		t.Fatalf("unexpected error: %+v", conflict)
	}
	c.expect(c.do(http.MethodPost, "/api/sessions/s1/participants/p1/decision", map[string]any{"decision": "maybe"}, auth...), http.StatusBadRequest, nil)

	var next api.Session
	c.expect(c.do(http.MethodPost, "/api/sessions/s1/supersede", nil, auth...), http.StatusCreated, &next)
	if next.SupersedesID != "s1" || next.Status != "pending" {
		t.Fatalf("unexpected superseding session: %+v", next)
	}

	c.expect(c.do(http.MethodPost, "/api/sessions/s1/supersede", nil, auth...), http.StatusConflict, nil)

	var sessions api.SessionList
	c.expect(c.do(http.MethodGet, "/api/videos/vid-1/sessions", nil), http.StatusOK, &sessions)
	if len(sessions.Sessions) != 2 {
		t.Fatalf("expected two sessions, got %d", len(sessions.Sessions))
	}
	for _, listed := range sessions.Sessions {
		if !listed.Locked || len(listed.Participants) != 0 || listed.Progress.Approved != 0 {
			t.Fatalf("session %s leaked without a password: %+v", listed.ID, listed)
		}
	}
	c.expect(c.do(http.MethodGet, "/api/videos/vid-1/sessions", nil, auth...), http.StatusOK, &sessions)
	for _, listed := range sessions.Sessions {
		if listed.Locked || len(listed.Participants) != 1 {
			t.Fatalf("session %s should be unlocked by the password: %+v", listed.ID, listed)
		}
	}
	c.expect(c.do(http.MethodGet, "/api/sessions/missing", nil), http.StatusNotFound, nil)
}

func TestSupersedeOnlyReplacesClosedSessions(t *testing.T) {
	c := newClient(t)
	c.registerVideo()

	c.expect(c.do(http.MethodPost, "/api/videos/vid-1/sessions", map[string]any{
		"id": "s1", "title": "Cut 2",
		"participants": []map[string]any{{"id": "p1", "userId": "u-1", "role": "approver"}},
	}), http.StatusCreated, nil)

	var conflict api.ErrorResponse
	c.expect(c.do(http.MethodPost, "/api/sessions/s1/supersede", nil), http.StatusConflict, &conflict)
	if conflict.Kind != "conflict" {
		t.Fatalf("unexpected error: %+v", conflict)
	}

	var session api.Session
	c.expect(c.do(http.MethodPost, "/api/sessions/s1/participants/p1/decision", map[string]any{"decision": "reject"}), http.StatusOK, &session)
	if session.Status != "rejected" {
		t.Fatalf("expected rejected session, got %+v", session)
	}
	var next api.Session
	c.expect(c.do(http.MethodPost, "/api/sessions/s1/supersede", nil), http.StatusCreated, &next)
	if next.SupersedesID != "s1" {
		t.Fatalf("unexpected superseding session: %+v", next)
	}
	c.expect(c.do(http.MethodPost, "/api/sessions/s1/supersede", nil), http.StatusConflict, nil)
	c.expect(c.do(http.MethodPost, "/api/sessions/s1/participants/p1/reset", nil), http.StatusConflict, nil)

	var sessions api.SessionList
	c.expect(c.do(http.MethodGet, "/api/videos/vid-1/sessions", nil), http.StatusOK, &sessions)
	if len(sessions.Sessions) != 2 || sessions.Sessions[0].Locked || len(sessions.Sessions[0].Participants) != 1 {
		t.Fatalf("sessions without a password should list in full: %+v", sessions.Sessions)
	}
}

func TestSessionListHidesPasswordGatedParticipants(t *testing.T) {
	c := newClient(t)
	c.registerVideo()

	c.expect(c.do(http.MethodPost, "/api/videos/vid-1/sessions", map[string]any{
		"id": "s1", "title": "Client review", "isPublic": true, "password": "secret",
		"participants": []map[string]any{{"id": "p1", "email": "guest@example.com", "role": "approver"}},
	}), http.StatusCreated, nil)
	c.expect(c.do(http.MethodGet, "/api/sessions/s1", nil), http.StatusForbidden, nil)

	rec := c.do(http.MethodGet, "/api/videos/vid-1/sessions", nil)
	c.expect(rec, http.StatusOK, nil)
	if strings.Contains(rec.Body.String(), "guest@example.com") {
		t.Fatalf("session list exposed participants: %s", rec.Body.String())
	}
	var sessions api.SessionList
	c.expect(c.do(http.MethodGet, "/api/videos/vid-1/sessions", nil, daemon.PasswordHeader, "wrong"), http.StatusOK, &sessions)
	if len(sessions.Sessions) != 1 || !sessions.Sessions[0].Locked || sessions.Sessions[0].Title != "Client review" {
		t.Fatalf("expected a locked summary, got %+v", sessions.Sessions)
	}
	c.expect(c.do(http.MethodGet, "/api/videos/vid-1/sessions", nil, daemon.PasswordHeader, "secret"), http.StatusOK, &sessions)
	if sessions.Sessions[0].Locked || sessions.Sessions[0].Participants[0].Email != "guest@example.com" {
		t.Fatalf("password should unlock the session: %+v", sessions.Sessions[0])
	}
}

func TestToolRoutes(t *testing.T) {
	c := newClient(t)

	var tc api.TimecodeResponse
	c.expect(c.do(http.MethodGet, "/api/timecode?ms=2500&fps=25", nil), http.StatusOK, &tc)
	if tc.Timecode != "00:00:02:12" || tc.Frame != 62 {
		t.Fatalf("unexpected timecode: %+v", tc)
	}
	c.expect(c.do(http.MethodGet, "/api/timecode?ms=abc", nil), http.StatusBadRequest, nil)
	c.expect(c.do(http.MethodGet, "/api/timecode?ms=10&fps=-2", nil), http.StatusBadRequest, nil)

	var path api.PathResponse
	c.expect(c.do(http.MethodPost, "/api/paths/smooth", map[string]any{
		"points": []map[string]float64{{"x": 0, "y": 0}, {"x": 10, "y": 10}},
	}), http.StatusOK, &path)
	if path.SVG != "M 0 0 L 10 10" {
		t.Fatalf("unexpected svg: %q", path.SVG)
	}
	c.expect(c.do(http.MethodPost, "/api/paths/simplify", map[string]any{"points": []any{}}), http.StatusBadRequest, nil)

	var drawing api.DrawingResponse
	c.expect(c.do(http.MethodPost, "/api/drawings", map[string]any{
		"operations": []map[string]any{
			{"op": "shape", "tool": "circle", "points": []map[string]float64{{"x": 0, "y": 0}, {"x": 10, "y": 10}}},
			{"op": "undo"},
			{"op": "redo"},
		},
	}), http.StatusOK, &drawing)
	if len(drawing.Drawing.Strokes) != 1 || drawing.Drawing.Strokes[0].Color != "#ff3b30" || !drawing.CanUndo || drawing.CanRedo {
		t.Fatalf("unexpected drawing: %+v", drawing)
	}
	c.expect(c.do(http.MethodPost, "/api/drawings", map[string]any{"operations": []any{}}), http.StatusBadRequest, nil)
	c.expect(c.do(http.MethodPost, "/api/drawings", map[string]any{
		"operations": []map[string]any{{"op": "stroke", "color": "red", "points": []map[string]float64{{"x": 1, "y": 1}}}},
	}), http.StatusBadRequest, nil)
}

func TestStatusMetricsAndRequestID(t *testing.T) {
	c := newClient(t)
	c.registerVideo()

	var status api.DaemonStatus
	rec := c.do(http.MethodGet, "/api/status", nil, daemon.RequestIDHeader, "req-42")
	c.expect(rec, http.StatusOK, &status)
	if rec.Header().Get(daemon.RequestIDHeader) != "req-42" {
		t.Fatalf("request id not echoed: %q", rec.Header().Get(daemon.RequestIDHeader))
	}
	if status.Running || status.Stats.Videos != 1 {
		t.Fatalf("unexpected status: %+v", status)
	}
	if db := status.Database; !db.Exists || db.SizeBytes == 0 || db.SchemaVersion == 0 || db.IntegrityCheck != "ok" || db.Error != "" {
		t.Fatalf("unexpected database health: %+v", db)
	}

	var health api.HealthResponse
	c.expect(c.do(http.MethodGet, "/api/health", nil), http.StatusOK, &health)
	if health.Status != "ok" {
		t.Fatalf("unexpected health: %+v", health)
	}
	if c.do(http.MethodGet, "/api/videos", nil).Header().Get(daemon.RequestIDHeader) == "" {
		t.Fatal("expected generated request id")
	}

	rec = c.do(http.MethodGet, "/metrics", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `path="/api/videos/"`) || !strings.Contains(body, "reelreview_http_requests_total") {
		t.Fatalf("expected route-labelled request counter, got:\n%s", body)
	}

	c.expect(c.do(http.MethodGet, "/api/unknown", nil), http.StatusNotFound, nil)
}
