// Package server exposes the catalog and chunk retrieval pipeline over
// HTTP with a small JSON API.
package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/oklog/ulid/v2"

	"github.com/focal-dev/focal/internal/catalog"
	"github.com/focal-dev/focal/internal/fetch"
	"github.com/focal-dev/focal/internal/focus"
	"github.com/focal-dev/focal/internal/logger"
)

// Server wires the catalog, fetcher, and focuser behind HTTP handlers.
type Server struct {
	catalog *catalog.Catalog
	fetcher *fetch.Fetcher
	focuser *focus.Focuser
}

func New(cat *catalog.Catalog, fetcher *fetch.Fetcher, focuser *focus.Focuser) *Server {
	return &Server{catalog: cat, fetcher: fetcher, focuser: focuser}
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/boards", s.handleBoards)
	mux.HandleFunc("GET /api/classes/{board}", s.handleClasses)
	mux.HandleFunc("GET /api/subjects/{board}/{class}", s.handleSubjects)
	mux.HandleFunc("GET /api/topics/{board}/{class}/{subject}", s.handleTopics)
	mux.HandleFunc("POST /api/retrieve_chunks", s.handleRetrieveChunks)
	mux.HandleFunc("POST /api/focus", s.handleFocus)
	return requestID(mux)
}

// ListenAndServe blocks serving the API on addr.
func (s *Server) ListenAndServe(addr string) error {
	logger.Info("listening on %s", addr)
	return http.ListenAndServe(addr, s.Handler())
}

// requestID tags each request with a ULID so log lines from one request
// can be correlated.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := ulid.Make().String()
		w.Header().Set("X-Request-ID", id)
		logger.Debug("[%s] %s %s", id, r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}

func (s *Server) handleBoards(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"boards":  s.catalog.Boards(),
	})
}

func (s *Server) handleClasses(w http.ResponseWriter, r *http.Request) {
	board := r.PathValue("board")
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"board":   board,
		"classes": s.catalog.Classes(board),
	})
}

func (s *Server) handleSubjects(w http.ResponseWriter, r *http.Request) {
	board, class := r.PathValue("board"), r.PathValue("class")
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"board":    board,
		"class":    class,
		"subjects": s.catalog.Subjects(board, class),
	})
}

func (s *Server) handleTopics(w http.ResponseWriter, r *http.Request) {
	board, class, subject := r.PathValue("board"), r.PathValue("class"), r.PathValue("subject")
	topics := s.catalog.Topics(board, class, subject)
	if topics == nil {
		topics = map[string]string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"board":   board,
		"class":   class,
		"subject": subject,
		"topics":  topics,
	})
}

type retrieveRequest struct {
	Board      string   `json:"board"`
	Class      string   `json:"class"`
	Subject    string   `json:"subject"`
	Topics     []string `json:"topics"`
	NumChunks  int      `json:"num_chunks"`
	Difficulty string   `json:"difficulty"`
}

type topicInfo struct {
	TopicNum        string `json:"topic_num"`
	TopicName       string `json:"topic_name,omitempty"`
	BookName        string `json:"book_name,omitempty"`
	ChunksRetrieved int    `json:"chunks_retrieved,omitempty"`
	Status          string `json:"status,omitempty"`
	Message         string `json:"message,omitempty"`
}

type chunkRecord struct {
	focus.RetrievedChunk
	TopicNum  string `json:"topic_num"`
	TopicName string `json:"topic_name"`
}

// topicResult is one worker's slot in a multi-topic retrieval.
type topicResult struct {
	info   topicInfo
	chunks []chunkRecord
}

func (s *Server) handleRetrieveChunks(w http.ResponseWriter, r *http.Request) {
	var req retrieveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if req.Board == "" || req.Class == "" || req.Subject == "" {
		writeError(w, http.StatusBadRequest, "Missing required parameters")
		return
	}
	if len(req.Topics) == 0 {
		writeError(w, http.StatusBadRequest, "Please provide at least one topic")
		return
	}
	if req.NumChunks <= 0 {
		req.NumChunks = 10
	}
	if req.Difficulty == "" {
		req.Difficulty = "medium"
	}

	logger.Info("retrieving chunks for %d topic(s)", len(req.Topics))

	results := make([]topicResult, len(req.Topics))
	ctx := r.Context()
	focus.ForEach(len(req.Topics), func(i int) {
		results[i] = s.retrieveTopic(ctx, req, req.Topics[i])
	})

	var infos []topicInfo
	var chunks []chunkRecord
	for _, res := range results {
		infos = append(infos, res.info)
		chunks = append(chunks, res.chunks...)
	}

	if len(chunks) == 0 {
		writeError(w, http.StatusBadRequest, "Could not retrieve chunks")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"metadata": map[string]any{
			"board":            req.Board,
			"class":            req.Class,
			"subject":          req.Subject,
			"topics_requested": len(req.Topics),
			"difficulty":       req.Difficulty,
			"total_chunks":     len(chunks),
		},
		"topic_info": infos,
		"chunks":     chunks,
	})
}

func (s *Server) retrieveTopic(ctx context.Context, req retrieveRequest, topicNum string) topicResult {
	topic, err := s.fetcher.Fetch(req.Board, req.Class, req.Subject, topicNum, nil)
	if err != nil {
		logger.Warn("failed to fetch topic %s: %v", topicNum, err)
		return topicResult{info: topicInfo{
			TopicNum: topicNum,
			Status:   "failed",
			Message:  err.Error(),
		}}
	}

	retrieved := s.focuser.RetrieveChunks(ctx, topic.Text, topic.Name, req.Difficulty, req.NumChunks)
	records := make([]chunkRecord, len(retrieved))
	for i, c := range retrieved {
		records[i] = chunkRecord{RetrievedChunk: c, TopicNum: topicNum, TopicName: topic.Name}
	}
	return topicResult{
		info: topicInfo{
			TopicNum:        topicNum,
			TopicName:       topic.Name,
			BookName:        topic.Book,
			ChunksRetrieved: len(records),
		},
		chunks: records,
	}
}

type focusRequest struct {
	Board        string   `json:"board"`
	Class        string   `json:"class"`
	Subject      string   `json:"subject"`
	Topic        string   `json:"topic"`
	Subtopics    []string `json:"subtopics,omitempty"`
	Difficulty   string   `json:"difficulty"`
	NumQuestions int      `json:"num_questions"`
}

func (s *Server) handleFocus(w http.ResponseWriter, r *http.Request) {
	var req focusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if req.Board == "" || req.Class == "" || req.Subject == "" || req.Topic == "" {
		writeError(w, http.StatusBadRequest, "Missing required parameters")
		return
	}
	if req.Difficulty == "" {
		req.Difficulty = "medium"
	}

	topic, err := s.fetcher.Fetch(req.Board, req.Class, req.Subject, req.Topic, req.Subtopics)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	result := s.focuser.Focus(r.Context(), topic.Text, topic.Name, req.Difficulty, req.NumQuestions)
	writeJSON(w, http.StatusOK, map[string]any{
		"success":           true,
		"topic_num":         topic.ID,
		"topic_name":        topic.Name,
		"book_name":         topic.Book,
		"subtopics_applied": topic.Filtered,
		"focused_content":   result.Text,
		"source_chunks":     result.SourceChunks,
		"retained_chunks":   result.RetainedChunks,
		"status":            result.Status,
	})
}
