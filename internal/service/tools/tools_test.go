package tools_test

import (
	"context"
	"strings"
	"testing"

	"github.com/studyforge/courserag/internal/model/course"
	"github.com/studyforge/courserag/internal/service/tools"
	"github.com/studyforge/courserag/internal/service/vectorstore"
)

func seededStore(t *testing.T) *vectorstore.MemoryStore {
	t.Helper()
	ctx := context.Background()
	store := vectorstore.NewMemoryStore()

	if err := store.AddCourseMetadata(ctx, course.Course{
		Title:      "RAG Systems 101",
		Link:       "https://example.com/course",
		Instructor: "Dr. Jane Smith",
		Lessons: []course.Lesson{
			{Number: 1, Title: "Introduction to RAG"},
			{Number: 2, Title: "Vector Databases"},
		},
	}); err != nil {
		t.Fatalf("AddCourseMetadata err: %v", err)
	}
	if err := store.AddCourseContent(ctx, []course.Chunk{
		{CourseTitle: "RAG Systems 101", LessonNumber: 1, LessonTitle: "Introduction to RAG", Content: "RAG combines retrieval with generation."},
	}); err != nil {
		t.Fatalf("AddCourseContent err: %v", err)
	}
	return store
}

func TestSearchToolFormatsResultsAndRecordsSources(t *testing.T) {
	store := seededStore(t)
	tool := tools.NewCourseSearchTool(store, 5)

	out, err := tool.Execute(context.Background(), map[string]any{"query": "retrieval"})
	if err != nil {
		t.Fatalf("Execute err: %v", err)
	}
	if !strings.Contains(out, "[RAG Systems 101 - Lesson 1]") {
		t.Fatalf("missing provenance header in output:\n%s", out)
	}

	sources := tool.LastSources()
	if len(sources) != 1 || sources[0] != "RAG Systems 101 - Lesson 1: Introduction to RAG" {
		t.Fatalf("unexpected sources: %v", sources)
	}

	tool.ResetSources()
	if got := tool.LastSources(); len(got) != 0 {
		t.Fatalf("expected sources cleared, got %v", got)
	}
}

func TestSearchToolNoMatches(t *testing.T) {
	store := seededStore(t)
	tool := tools.NewCourseSearchTool(store, 5)

	out, err := tool.Execute(context.Background(), map[string]any{"query": "zzzz", "lesson_number": float64(2)})
	if err != nil {
		t.Fatalf("Execute err: %v", err)
	}
	if !strings.Contains(out, "No relevant content found") {
		t.Fatalf("unexpected output: %s", out)
	}
	if len(tool.LastSources()) != 0 {
		t.Fatal("no sources should be recorded for an empty search")
	}
}

func TestSearchToolUnknownCourse(t *testing.T) {
	store := seededStore(t)
	tool := tools.NewCourseSearchTool(store, 5)

	out, err := tool.Execute(context.Background(), map[string]any{"query": "retrieval", "course_title": "Missing Course"})
	if err != nil {
		t.Fatalf("Execute err: %v", err)
	}
	if !strings.Contains(out, "No course found matching 'Missing Course'") {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestOutlineTool(t *testing.T) {
	store := seededStore(t)
	tool := tools.NewCourseOutlineTool(store)

	out, err := tool.Execute(context.Background(), map[string]any{"course_title": "RAG Systems"})
	if err != nil {
		t.Fatalf("Execute err: %v", err)
	}
	for _, want := range []string{
		"Course: RAG Systems 101",
		"Instructor: Dr. Jane Smith",
		"Lessons (2):",
		"1. Introduction to RAG",
		"2. Vector Databases",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("outline missing %q:\n%s", want, out)
		}
	}
}

func TestOutlineToolRequiresTitle(t *testing.T) {
	tool := tools.NewCourseOutlineTool(seededStore(t))

	if _, err := tool.Execute(context.Background(), map[string]any{}); err == nil {
		t.Fatal("expected error for missing course_title")
	}
}

func TestManagerDefinitionsAndDispatch(t *testing.T) {
	store := seededStore(t)
	mgr := tools.NewManager(
		tools.NewCourseSearchTool(store, 5),
		tools.NewCourseOutlineTool(store),
	)

	defs := mgr.Definitions()
	if len(defs) != 2 {
		t.Fatalf("expected 2 definitions, got %d", len(defs))
	}
	if defs[0].Name != "search_course_content" || defs[1].Name != "get_course_outline" {
		t.Fatalf("unexpected definition order: %s, %s", defs[0].Name, defs[1].Name)
	}

	out, err := mgr.Execute(context.Background(), "search_course_content", map[string]any{"query": "generation"})
	if err != nil {
		t.Fatalf("Execute err: %v", err)
	}
	if !strings.Contains(out, "RAG combines retrieval") {
		t.Fatalf("unexpected search output: %s", out)
	}

	if sources := mgr.LastSources(); len(sources) != 1 {
		t.Fatalf("expected 1 aggregated source, got %v", sources)
	}
	mgr.ResetSources()
	if sources := mgr.LastSources(); len(sources) != 0 {
		t.Fatalf("expected sources reset, got %v", sources)
	}
}

func TestManagerUnknownTool(t *testing.T) {
	mgr := tools.NewManager()

	if _, err := mgr.Execute(context.Background(), "nope", nil); err == nil {
		t.Fatal("expected error for unknown tool")
	}
}
