package daemon

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"reelreview/internal/api"
)

func (s *apiServer) handleListComments(w http.ResponseWriter, r *http.Request) {
	opts, err := parseListOptions(r.URL.Query())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	list, err := s.svc.Comments(r.Context(), videoID(r), opts)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, list)
}

func (s *apiServer) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	var req api.CreateCommentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeServiceError(w, err)
		return
	}
	// Commenting on behalf of a session participant needs session access.
	if sessionID := strings.TrimSpace(req.SessionID); sessionID != "" {
		if err := s.svc.AuthorizeSession(r.Context(), sessionID, r.Header.Get(PasswordHeader)); err != nil {
			s.writeServiceError(w, err)
			return
		}
	}
	comment, err := s.svc.CreateComment(r.Context(), videoID(r), req)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, comment)
}

func (s *apiServer) handleImportComments(w http.ResponseWriter, r *http.Request) {
	var req api.ImportCommentsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeServiceError(w, err)
		return
	}
	list, err := s.svc.ImportComments(r.Context(), videoID(r), req)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, list)
}

func (s *apiServer) handleReplyComment(w http.ResponseWriter, r *http.Request) {
	var req api.ReplyCommentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeServiceError(w, err)
		return
	}
	reply, err := s.svc.ReplyComment(r.Context(), commentID(r), req)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, reply)
}

func (s *apiServer) handleEditComment(w http.ResponseWriter, r *http.Request) {
	var req api.EditCommentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.respondComment(w)(s.svc.EditComment(r.Context(), commentID(r), req))
}

func (s *apiServer) handleResolveComment(w http.ResponseWriter, r *http.Request) {
	var req api.ResolveCommentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.respondComment(w)(s.svc.ResolveComment(r.Context(), commentID(r), req))
}

func (s *apiServer) handleReopenComment(w http.ResponseWriter, r *http.Request) {
	s.respondComment(w)(s.svc.ReopenComment(r.Context(), commentID(r)))
}

func (s *apiServer) handleReactComment(w http.ResponseWriter, r *http.Request) {
	var req api.ReactCommentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.respondComment(w)(s.svc.ReactComment(r.Context(), commentID(r), req))
}

func (s *apiServer) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	removed, err := s.svc.DeleteComment(r.Context(), commentID(r))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.DeleteCommentResponse{Removed: removed})
}

func (s *apiServer) respondComment(w http.ResponseWriter) func(api.Comment, error) {
	return func(comment api.Comment, err error) {
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, comment)
	}
}

func commentID(r *http.Request) string {
	return strings.TrimSpace(chi.URLParam(r, "commentID"))
}
