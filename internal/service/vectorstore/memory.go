package vectorstore

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/studyforge/courserag/internal/model/course"
)

// MemoryStore implements Store with in-memory maps and lexical term
// matching. It stands in for an embedding-backed store: good enough for
// keyword retrieval over course chunks, no external dependencies.
type MemoryStore struct {
	mu      sync.RWMutex
	courses map[string]course.Course
	titles  []string
	chunks  []chunkRecord
}

// chunkRecord pairs a stored chunk with its record id and a lowercase
// copy of the content for matching.
type chunkRecord struct {
	id      string
	chunk   course.Chunk
	lowered string
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{courses: make(map[string]course.Course)}
}

// AddCourseMetadata registers a course. Re-adding a title replaces the
// stored metadata without duplicating the catalog entry.
func (s *MemoryStore) AddCourseMetadata(_ context.Context, c course.Course) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.courses[c.Title]; !exists {
		s.titles = append(s.titles, c.Title)
	}
	s.courses[c.Title] = c
	return nil
}

// AddCourseContent stores chunks for retrieval.
func (s *MemoryStore) AddCourseContent(_ context.Context, chunks []course.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range chunks {
		s.chunks = append(s.chunks, chunkRecord{
			id:      uuid.NewString(),
			chunk:   c,
			lowered: strings.ToLower(c.Content),
		})
	}
	return nil
}

// SearchCourseContent ranks chunks by the number of query terms they
// contain. courseTitle filters by fuzzy title match when non-empty;
// lessonNumber filters when positive. limit caps the result count
// (non-positive means unlimited).
func (s *MemoryStore) SearchCourseContent(_ context.Context, query, courseTitle string, lessonNumber, limit int) ([]course.SearchResult, error) {
	terms := strings.Fields(strings.ToLower(query))

	s.mu.RLock()
	defer s.mu.RUnlock()

	resolvedTitle := ""
	if courseTitle != "" {
		match, ok := s.resolveTitleLocked(courseTitle)
		if !ok {
			return nil, ErrCourseNotFound
		}
		resolvedTitle = match
	}

	type scored struct {
		rec   chunkRecord
		score int
	}
	var hits []scored
	for _, rec := range s.chunks {
		if resolvedTitle != "" && rec.chunk.CourseTitle != resolvedTitle {
			continue
		}
		if lessonNumber > 0 && rec.chunk.LessonNumber != lessonNumber {
			continue
		}
		score := 0
		for _, term := range terms {
			if strings.Contains(rec.lowered, term) {
				score++
			}
		}
		if score > 0 {
			hits = append(hits, scored{rec: rec, score: score})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}

	results := make([]course.SearchResult, 0, len(hits))
	for _, h := range hits {
		results = append(results, course.SearchResult{
			CourseTitle:  h.rec.chunk.CourseTitle,
			LessonNumber: h.rec.chunk.LessonNumber,
			LessonTitle:  h.rec.chunk.LessonTitle,
			Content:      h.rec.chunk.Content,
		})
	}
	return results, nil
}

// CourseCount reports how many courses are registered.
func (s *MemoryStore) CourseCount(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.courses), nil
}

// ExistingCourseTitles lists registered course titles in insertion order.
func (s *MemoryStore) ExistingCourseTitles(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.titles...), nil
}

// CourseOutline resolves a course by exact or partial title match.
func (s *MemoryStore) CourseOutline(_ context.Context, title string) (course.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	match, ok := s.resolveTitleLocked(title)
	if !ok {
		return course.Course{}, ErrCourseNotFound
	}
	return s.courses[match], nil
}

// ClearAll drops every course and chunk.
func (s *MemoryStore) ClearAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.courses = make(map[string]course.Course)
	s.titles = nil
	s.chunks = nil
	return nil
}

// resolveTitleLocked finds a registered title equal to, containing, or
// contained in the requested one, case-insensitively. Callers hold at
// least a read lock.
func (s *MemoryStore) resolveTitleLocked(title string) (string, bool) {
	if _, ok := s.courses[title]; ok {
		return title, true
	}
	needle := strings.ToLower(title)
	for _, t := range s.titles {
		lowered := strings.ToLower(t)
		if strings.Contains(lowered, needle) || strings.Contains(needle, lowered) {
			return t, true
		}
	}
	return "", false
}
