package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/studyforge/courserag/internal/service/vectorstore"
)

// CourseSearchTool retrieves course content chunks for a query and
// remembers which lessons it cited.
type CourseSearchTool struct {
	store      vectorstore.Store
	maxResults int

	mu      sync.Mutex
	sources []string
}

// NewCourseSearchTool builds the search tool; maxResults caps how many
// chunks a single search returns.
func NewCourseSearchTool(store vectorstore.Store, maxResults int) *CourseSearchTool {
	return &CourseSearchTool{store: store, maxResults: maxResults}
}

func (t *CourseSearchTool) Definition() Definition {
	return Definition{
		Name:        "search_course_content",
		Description: "Search course materials for content relevant to a question, optionally scoped to one course or lesson",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query":         map[string]any{"type": "string", "description": "What to search for"},
				"course_title":  map[string]any{"type": "string", "description": "Restrict the search to one course"},
				"lesson_number": map[string]any{"type": "integer", "description": "Restrict the search to one lesson"},
			},
			"required": []string{"query"},
		},
	}
}

// Execute runs the search and formats each hit as a provenance-tagged
// block. Cited lessons are recorded for LastSources.
func (t *CourseSearchTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	query := stringArg(args, "query")
	courseTitle := stringArg(args, "course_title")
	lessonNumber := intArg(args, "lesson_number")

	results, err := t.store.SearchCourseContent(ctx, query, courseTitle, lessonNumber, t.maxResults)
	if err != nil {
		if errors.Is(err, vectorstore.ErrCourseNotFound) {
			return fmt.Sprintf("No course found matching '%s'", courseTitle), nil
		}
		return "", fmt.Errorf("search course content: %w", err)
	}

	if len(results) == 0 {
		return noResultsMessage(courseTitle, lessonNumber), nil
	}

	var blocks []string
	var sources []string
	for _, res := range results {
		blocks = append(blocks, fmt.Sprintf("[%s - Lesson %d]\n%s", res.CourseTitle, res.LessonNumber, res.Content))
		sources = append(sources, fmt.Sprintf("%s - Lesson %d: %s", res.CourseTitle, res.LessonNumber, res.LessonTitle))
	}

	t.mu.Lock()
	t.sources = sources
	t.mu.Unlock()

	return strings.Join(blocks, "\n\n"), nil
}

// LastSources returns the lessons cited by the most recent search.
func (t *CourseSearchTool) LastSources() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.sources...)
}

// ResetSources forgets the recorded citations.
func (t *CourseSearchTool) ResetSources() {
	t.mu.Lock()
	t.sources = nil
	t.mu.Unlock()
}

func noResultsMessage(courseTitle string, lessonNumber int) string {
	msg := "No relevant content found"
	if courseTitle != "" {
		msg += fmt.Sprintf(" in course '%s'", courseTitle)
	}
	if lessonNumber > 0 {
		msg += fmt.Sprintf(" in lesson %d", lessonNumber)
	}
	return msg + "."
}
