package daemon

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"reelreview/internal/api"
)

func (s *apiServer) handleListVideos(w http.ResponseWriter, r *http.Request) {
	videos, err := s.svc.Videos(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.VideoList{Videos: videos})
}

func (s *apiServer) handleRegisterVideo(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterVideoRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeServiceError(w, err)
		return
	}
	video, err := s.svc.RegisterVideo(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, video)
}

func (s *apiServer) handleGetVideo(w http.ResponseWriter, r *http.Request) {
	video, err := s.svc.Video(r.Context(), videoID(r))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, video)
}

func (s *apiServer) handleRemoveVideo(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.RemoveVideo(r.Context(), videoID(r)); err != nil {
		s.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *apiServer) handleTimecode(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	ms, err := strconv.ParseInt(strings.TrimSpace(query.Get("ms")), 10, 64)
	if err != nil {
		s.writeServiceError(w, queryError("ms", query.Get("ms")))
		return
	}
	var fps float64
	if raw := strings.TrimSpace(query.Get("fps")); raw != "" {
		if fps, err = strconv.ParseFloat(raw, 64); err != nil {
			s.writeServiceError(w, queryError("fps", raw))
			return
		}
	}
	resp, err := s.svc.Timecode(ms, fps)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *apiServer) handleSimplifyPath(w http.ResponseWriter, r *http.Request) {
	s.handlePath(w, r, s.svc.SimplifyPath)
}

func (s *apiServer) handleSmoothPath(w http.ResponseWriter, r *http.Request) {
	s.handlePath(w, r, s.svc.SmoothPath)
}

func (s *apiServer) handlePath(w http.ResponseWriter, r *http.Request, process func(api.PathRequest) (api.PathResponse, error)) {
	var req api.PathRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeServiceError(w, err)
		return
	}
	resp, err := process(req)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *apiServer) handleDrawing(w http.ResponseWriter, r *http.Request) {
	var req api.DrawingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeServiceError(w, err)
		return
	}
	resp, err := s.svc.Drawing(req)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func videoID(r *http.Request) string {
	return strings.TrimSpace(chi.URLParam(r, "videoID"))
}
