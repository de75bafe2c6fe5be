package vectorstore

import (
	"context"
	"errors"

	"github.com/studyforge/courserag/internal/model/course"
)

var ErrCourseNotFound = errors.New("course not found")

// Store exposes course content retrieval for the RAG orchestrator and
// its tools. Implementations own ranking; callers only see results.
type Store interface {
	AddCourseMetadata(ctx context.Context, c course.Course) error
	AddCourseContent(ctx context.Context, chunks []course.Chunk) error
	SearchCourseContent(ctx context.Context, query, courseTitle string, lessonNumber, limit int) ([]course.SearchResult, error)
	CourseCount(ctx context.Context) (int, error)
	ExistingCourseTitles(ctx context.Context) ([]string, error)
	CourseOutline(ctx context.Context, title string) (course.Course, error)
	ClearAll(ctx context.Context) error
}
