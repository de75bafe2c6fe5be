package rag_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/studyforge/courserag/internal/model/course"
	"github.com/studyforge/courserag/internal/service/docproc"
	"github.com/studyforge/courserag/internal/service/rag"
	"github.com/studyforge/courserag/internal/service/session"
	"github.com/studyforge/courserag/internal/service/tools"
	"github.com/studyforge/courserag/internal/service/vectorstore"
)

// fakeGenerator records calls and returns a canned answer.
type fakeGenerator struct {
	answer      string
	err         error
	calls       int
	lastQuery   string
	lastHistory string
	lastContext string
}

func (g *fakeGenerator) GenerateResponse(_ context.Context, query, history, searchContext string) (string, error) {
	g.calls++
	g.lastQuery = query
	g.lastHistory = history
	g.lastContext = searchContext
	return g.answer, g.err
}

func newTestService(t *testing.T, gen rag.Generator) (*rag.Service, *session.Service, *vectorstore.MemoryStore) {
	t.Helper()
	ctx := context.Background()

	store := vectorstore.NewMemoryStore()
	if err := store.AddCourseMetadata(ctx, course.Course{
		Title: "RAG Systems 101",
		Lessons: []course.Lesson{
			{Number: 1, Title: "Introduction to RAG"},
		},
	}); err != nil {
		t.Fatalf("AddCourseMetadata err: %v", err)
	}
	if err := store.AddCourseContent(ctx, []course.Chunk{
		{CourseTitle: "RAG Systems 101", LessonNumber: 1, LessonTitle: "Introduction to RAG", Content: "RAG combines retrieval with generation."},
	}); err != nil {
		t.Fatalf("AddCourseContent err: %v", err)
	}

	sessions := session.NewService(2)
	toolMgr := tools.NewManager(
		tools.NewCourseSearchTool(store, 5),
		tools.NewCourseOutlineTool(store),
	)
	svc := rag.NewService(docproc.NewProcessor(800, 100), store, gen, sessions, toolMgr)
	return svc, sessions, store
}

func TestQueryWithoutSessionIsStateless(t *testing.T) {
	gen := &fakeGenerator{answer: "Test answer"}
	svc, sessions, _ := newTestService(t, gen)

	answer, sources, err := svc.Query(context.Background(), "What is RAG?", "")
	if err != nil {
		t.Fatalf("Query err: %v", err)
	}
	if answer != "Test answer" {
		t.Fatalf("unexpected answer: %s", answer)
	}
	if len(sources) != 1 {
		t.Fatalf("expected retrieval sources, got %v", sources)
	}
	if gen.lastHistory != "" {
		t.Fatalf("expected no history for stateless query, got %q", gen.lastHistory)
	}

	// Nothing recorded anywhere: a later query still sees no history.
	if _, ok := sessions.ConversationHistory(""); ok {
		t.Fatal("stateless query must not create history")
	}
}

func TestQueryWithSessionRecordsExactlyOneExchange(t *testing.T) {
	gen := &fakeGenerator{answer: "Follow-up answer"}
	svc, sessions, _ := newTestService(t, gen)

	id := sessions.CreateSession()
	if _, _, err := svc.Query(context.Background(), "Tell me more", id); err != nil {
		t.Fatalf("Query err: %v", err)
	}

	msgs := sessions.Messages(id)
	if len(msgs) != 2 {
		t.Fatalf("expected exactly one recorded exchange, got %d messages", len(msgs))
	}
	if msgs[0].Content != "Tell me more" || msgs[1].Content != "Follow-up answer" {
		t.Fatalf("unexpected recorded exchange: %+v", msgs)
	}
}

func TestQueryPassesHistoryToGenerator(t *testing.T) {
	gen := &fakeGenerator{answer: "A2"}
	svc, sessions, _ := newTestService(t, gen)

	id := sessions.CreateSession()
	sessions.AddExchange(id, "Q1", "A1")

	if _, _, err := svc.Query(context.Background(), "Q2", id); err != nil {
		t.Fatalf("Query err: %v", err)
	}
	if !strings.Contains(gen.lastHistory, "User: Q1") || !strings.Contains(gen.lastHistory, "Assistant: A1") {
		t.Fatalf("history not forwarded to generator: %q", gen.lastHistory)
	}
	if !strings.Contains(gen.lastContext, "RAG combines retrieval") {
		t.Fatalf("search context not forwarded: %q", gen.lastContext)
	}
}

func TestQueryGeneratorFailureRecordsNothing(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("model unavailable")}
	svc, sessions, _ := newTestService(t, gen)

	id := sessions.CreateSession()
	if _, _, err := svc.Query(context.Background(), "boom", id); err == nil {
		t.Fatal("expected generator error")
	}
	if got := len(sessions.Messages(id)); got != 0 {
		t.Fatalf("failed query must not record an exchange, got %d messages", got)
	}
}

func TestQueryWithoutGenerator(t *testing.T) {
	svc, _, _ := newTestService(t, nil)

	_, _, err := svc.Query(context.Background(), "hi", "")
	if !errors.Is(err, rag.ErrGeneratorUnavailable) {
		t.Fatalf("expected ErrGeneratorUnavailable, got %v", err)
	}
}

func TestQueryResetsSourcesBetweenQueries(t *testing.T) {
	gen := &fakeGenerator{answer: "ok"}
	svc, _, _ := newTestService(t, gen)
	ctx := context.Background()

	if _, sources, err := svc.Query(ctx, "retrieval", ""); err != nil || len(sources) != 1 {
		t.Fatalf("first query: sources=%v err=%v", sources, err)
	}

	// Second query matches nothing, so no stale sources may leak.
	if _, sources, err := svc.Query(ctx, "zzzz", ""); err != nil {
		t.Fatalf("second query err: %v", err)
	} else if len(sources) != 0 {
		t.Fatalf("expected no sources for unmatched query, got %v", sources)
	}
}

func TestCourseAnalytics(t *testing.T) {
	svc, _, _ := newTestService(t, nil)

	analytics, err := svc.CourseAnalytics(context.Background())
	if err != nil {
		t.Fatalf("CourseAnalytics err: %v", err)
	}
	if analytics.TotalCourses != 1 {
		t.Fatalf("expected 1 course, got %d", analytics.TotalCourses)
	}
	if len(analytics.CourseTitles) != 1 || analytics.CourseTitles[0] != "RAG Systems 101" {
		t.Fatalf("unexpected titles: %v", analytics.CourseTitles)
	}
}

func TestCourseOutline(t *testing.T) {
	svc, _, _ := newTestService(t, nil)

	out, err := svc.CourseOutline(context.Background(), "RAG Systems 101")
	if err != nil {
		t.Fatalf("CourseOutline err: %v", err)
	}
	if !strings.Contains(out, "1. Introduction to RAG") {
		t.Fatalf("unexpected outline: %s", out)
	}
}

func writeCourseFile(t *testing.T, dir, name, title string) {
	t.Helper()
	content := fmt.Sprintf("Course Title: %s\n\nLesson 1: Basics\nContent about %s.\n", title, title)
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write course file: %v", err)
	}
}

func TestAddCourseFolderLoadsNewCourses(t *testing.T) {
	svc, _, store := newTestService(t, nil)
	dir := t.TempDir()
	writeCourseFile(t, dir, "a.txt", "Course A")
	writeCourseFile(t, dir, "b.txt", "Course B")

	courses, chunks, err := svc.AddCourseFolder(context.Background(), dir, false)
	if err != nil {
		t.Fatalf("AddCourseFolder err: %v", err)
	}
	if courses != 2 || chunks != 2 {
		t.Fatalf("expected 2 courses / 2 chunks, got %d / %d", courses, chunks)
	}

	count, _ := store.CourseCount(context.Background())
	if count != 3 { // seeded course plus the two loaded ones
		t.Fatalf("expected 3 courses in store, got %d", count)
	}
}

func TestAddCourseFolderSkipsExisting(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	dir := t.TempDir()
	writeCourseFile(t, dir, "seed.txt", "RAG Systems 101")

	courses, chunks, err := svc.AddCourseFolder(context.Background(), dir, false)
	if err != nil {
		t.Fatalf("AddCourseFolder err: %v", err)
	}
	if courses != 0 || chunks != 0 {
		t.Fatalf("expected existing course to be skipped, got %d / %d", courses, chunks)
	}
}

func TestAddCourseFolderRecoversPerFile(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	dir := t.TempDir()
	writeCourseFile(t, dir, "good.txt", "Course Good")
	if err := os.WriteFile(filepath.Join(dir, "bad.txt"), []byte("no header here\n"), 0o644); err != nil {
		t.Fatalf("write bad file: %v", err)
	}

	courses, _, err := svc.AddCourseFolder(context.Background(), dir, false)
	if err != nil {
		t.Fatalf("AddCourseFolder err: %v", err)
	}
	if courses != 1 {
		t.Fatalf("expected the good file to load despite the bad one, got %d", courses)
	}
}

func TestAddCourseFolderClearExisting(t *testing.T) {
	svc, _, store := newTestService(t, nil)
	dir := t.TempDir()
	writeCourseFile(t, dir, "only.txt", "Course Only")

	if _, _, err := svc.AddCourseFolder(context.Background(), dir, true); err != nil {
		t.Fatalf("AddCourseFolder err: %v", err)
	}

	titles, _ := store.ExistingCourseTitles(context.Background())
	if len(titles) != 1 || titles[0] != "Course Only" {
		t.Fatalf("expected store cleared then reloaded, got %v", titles)
	}
}

func TestAddCourseFolderMissingDir(t *testing.T) {
	svc, _, _ := newTestService(t, nil)

	if _, _, err := svc.AddCourseFolder(context.Background(), filepath.Join(t.TempDir(), "absent"), false); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestAddCourseDocument(t *testing.T) {
	svc, _, store := newTestService(t, nil)
	dir := t.TempDir()
	writeCourseFile(t, dir, "one.txt", "Course One")

	c, chunks, err := svc.AddCourseDocument(context.Background(), filepath.Join(dir, "one.txt"))
	if err != nil {
		t.Fatalf("AddCourseDocument err: %v", err)
	}
	if c.Title != "Course One" || chunks != 1 {
		t.Fatalf("unexpected result: %+v chunks=%d", c, chunks)
	}

	count, _ := store.CourseCount(context.Background())
	if count != 2 {
		t.Fatalf("expected course stored, count=%d", count)
	}
}
