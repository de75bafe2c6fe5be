package rag

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/studyforge/courserag/internal/model/course"
	"github.com/studyforge/courserag/internal/service/docproc"
	"github.com/studyforge/courserag/internal/service/session"
	"github.com/studyforge/courserag/internal/service/tools"
	"github.com/studyforge/courserag/internal/service/vectorstore"
)

// ErrGeneratorUnavailable is returned when no AI generator was
// configured at startup.
var ErrGeneratorUnavailable = errors.New("ai generator unavailable")

// Generator produces an answer from a query plus optional rendered
// history and retrieved course context.
type Generator interface {
	GenerateResponse(ctx context.Context, query, history, searchContext string) (string, error)
}

// Analytics summarizes the loaded course catalog.
type Analytics struct {
	TotalCourses int      `json:"total_courses"`
	CourseTitles []string `json:"course_titles"`
}

// Service orchestrates the document processor, vector store, AI
// generator, session service, and tool manager. It sequences calls and
// owns no retrieval or generation logic itself.
type Service struct {
	processor *docproc.Processor
	store     vectorstore.Store
	generator Generator
	sessions  *session.Service
	tools     *tools.Manager
}

// NewService wires the orchestrator. generator may be nil when the AI
// layer is not configured; queries then fail with
// ErrGeneratorUnavailable while ingestion and analytics keep working.
func NewService(processor *docproc.Processor, store vectorstore.Store, generator Generator, sessions *session.Service, toolManager *tools.Manager) *Service {
	return &Service{
		processor: processor,
		store:     store,
		generator: generator,
		sessions:  sessions,
		tools:     toolManager,
	}
}

// Query answers a question. History is fetched before generation and
// the exchange is recorded exactly once afterwards, only when a
// session id is present; without one the query is answered statelessly.
func (s *Service) Query(ctx context.Context, query, sessionID string) (string, []string, error) {
	if s.generator == nil {
		return "", nil, ErrGeneratorUnavailable
	}

	history, _ := s.sessions.ConversationHistory(sessionID)

	searchContext, err := s.tools.Execute(ctx, "search_course_content", map[string]any{"query": query})
	if err != nil {
		return "", nil, fmt.Errorf("retrieve course context: %w", err)
	}

	answer, err := s.generator.GenerateResponse(ctx, query, history, searchContext)
	if err != nil {
		return "", nil, err
	}

	sources := s.tools.LastSources()
	s.tools.ResetSources()

	if sessionID != "" {
		s.sessions.AddExchange(sessionID, query, answer)
	}

	return answer, sources, nil
}

// CourseAnalytics reports catalog totals for the analytics endpoint.
func (s *Service) CourseAnalytics(ctx context.Context) (Analytics, error) {
	count, err := s.store.CourseCount(ctx)
	if err != nil {
		return Analytics{}, fmt.Errorf("count courses: %w", err)
	}

	titles, err := s.store.ExistingCourseTitles(ctx)
	if err != nil {
		return Analytics{}, fmt.Errorf("list course titles: %w", err)
	}

	return Analytics{TotalCourses: count, CourseTitles: titles}, nil
}

// CourseOutline renders a course outline via the outline tool.
func (s *Service) CourseOutline(ctx context.Context, title string) (string, error) {
	return s.tools.Execute(ctx, "get_course_outline", map[string]any{"course_title": title})
}

// AddCourseDocument parses one course file and loads it into the
// vector store. Returns the parsed course and its chunk count.
func (s *Service) AddCourseDocument(ctx context.Context, path string) (course.Course, int, error) {
	c, chunks, err := s.processor.ProcessCourseDocument(path)
	if err != nil {
		return course.Course{}, 0, err
	}

	if err := s.store.AddCourseMetadata(ctx, c); err != nil {
		return course.Course{}, 0, fmt.Errorf("store course metadata: %w", err)
	}
	if err := s.store.AddCourseContent(ctx, chunks); err != nil {
		return course.Course{}, 0, fmt.Errorf("store course content: %w", err)
	}

	return c, len(chunks), nil
}

// AddCourseFolder bulk-loads every course file in a directory.
// Courses already present in the store are skipped, and one failing
// file contributes zero without aborting the batch. Returns the number
// of courses and chunks added.
func (s *Service) AddCourseFolder(ctx context.Context, dir string, clearExisting bool) (int, int, error) {
	if clearExisting {
		if err := s.store.ClearAll(ctx); err != nil {
			return 0, 0, fmt.Errorf("clear vector store: %w", err)
		}
	}

	titles, err := s.store.ExistingCourseTitles(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("list existing courses: %w", err)
	}
	existing := make(map[string]bool, len(titles))
	for _, t := range titles {
		existing[t] = true
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, 0, fmt.Errorf("read docs folder: %w", err)
	}

	var coursesAdded, chunksAdded int
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".txt") {
			continue
		}
		path := filepath.Join(dir, entry.Name())

		c, chunks, err := s.processor.ProcessCourseDocument(path)
		if err != nil {
			log.Printf("[rag] skipping %s: %v", entry.Name(), err)
			continue
		}
		if existing[c.Title] {
			continue
		}

		if err := s.store.AddCourseMetadata(ctx, c); err != nil {
			log.Printf("[rag] skipping %s: %v", entry.Name(), err)
			continue
		}
		if err := s.store.AddCourseContent(ctx, chunks); err != nil {
			log.Printf("[rag] skipping %s: %v", entry.Name(), err)
			continue
		}

		existing[c.Title] = true
		coursesAdded++
		chunksAdded += len(chunks)
	}

	return coursesAdded, chunksAdded, nil
}
