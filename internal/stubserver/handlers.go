package stubserver

import (
	"archive/tar"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rgrandy/pybox/pkg/pybox"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleExecSync(w http.ResponseWriter, r *http.Request) {
	sub, ok := s.readSubmission(w, r)
	if !ok {
		return
	}

	id, terminal := s.record(sub)
	now := time.Now().UTC()
	terminal.ExecutionID = id
	terminal.StartedAt = &now
	terminal.FinishedAt = &now

	s.logger.Info("sync execution", "id", id, "entrypoint", sub.Metadata.Entrypoint)
	writeJSON(w, http.StatusOK, terminal)
}

func (s *Server) handleExecAsync(w http.ResponseWriter, r *http.Request) {
	sub, ok := s.readSubmission(w, r)
	if !ok {
		return
	}

	id, terminal := s.record(sub)

	s.mu.Lock()
	s.executions[id] = &execution{
		id:          id,
		submittedAt: time.Now(),
		terminal:    terminal,
	}
	s.mu.Unlock()

	s.logger.Info("async execution accepted", "id", id, "entrypoint", sub.Metadata.Entrypoint)
	writeJSON(w, http.StatusAccepted, pybox.AsyncResponse{ExecutionID: id})
}

func (s *Server) handleGetExecution(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	e, ok := s.executions[id]
	var result pybox.ExecutionResult
	if ok {
		result = s.snapshot(e, time.Now())
	}
	s.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "execution not found"})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleKillExecution(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	s.killCalls++
	e, ok := s.executions[id]
	if ok && e.killedAt == nil {
		now := time.Now().UTC()
		e.killedAt = &now
	}
	s.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "execution not found"})
		return
	}

	writeJSON(w, http.StatusOK, pybox.KillResponse{Status: string(pybox.StatusKilled)})
}

func (s *Server) handleEval(w http.ResponseWriter, r *http.Request) {
	var req pybox.EvalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	if req.Code == "" && len(req.Files) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "code or files required"})
		return
	}

	files := map[string][]byte{}
	if req.Code != "" {
		files["main.py"] = []byte(req.Code)
	}
	for _, f := range req.Files {
		files[f.Name] = []byte(f.Content)
	}

	entrypoint := req.Entrypoint
	if entrypoint == "" {
		entrypoint = "main.py"
	}

	id, terminal := s.record(Submission{
		Metadata: pybox.Metadata{
			Entrypoint: entrypoint,
			Stdin:      req.Stdin,
			Config:     req.Config,
		},
		Files: files,
	})
	now := time.Now().UTC()
	terminal.ExecutionID = id
	terminal.StartedAt = &now
	terminal.FinishedAt = &now

	writeJSON(w, http.StatusOK, terminal)
}

// readSubmission parses the two-part multipart body: the archive under
// "tar" and the metadata JSON under "metadata".
func (s *Server) readSubmission(w http.ResponseWriter, r *http.Request) (Submission, bool) {
	if err := r.ParseMultipartForm(64 << 20); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "expected multipart form"})
		return Submission{}, false
	}

	tarPart, _, err := r.FormFile("tar")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing tar part"})
		return Submission{}, false
	}
	defer tarPart.Close()

	files, err := untar(tarPart)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unreadable tar archive"})
		return Submission{}, false
	}

	var metadata pybox.Metadata
	if raw := r.FormValue("metadata"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &metadata); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid metadata JSON"})
			return Submission{}, false
		}
	}
	if metadata.Entrypoint == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "entrypoint is required"})
		return Submission{}, false
	}
	if _, ok := files[metadata.Entrypoint]; !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "entrypoint not found in archive"})
		return Submission{}, false
	}

	return Submission{Metadata: metadata, Files: files}, true
}

// untar reads every regular file from an uncompressed tar stream.
func untar(r io.Reader) (map[string][]byte, error) {
	files := map[string][]byte{}
	tr := tar.NewReader(r)
	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return files, nil
		}
		if err != nil {
			return nil, err
		}
		if header.Typeflag != tar.TypeReg {
			continue
		}
		content, err := io.ReadAll(tr)
		if err != nil {
			return nil, err
		}
		files[header.Name] = content
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
