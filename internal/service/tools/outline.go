package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/studyforge/courserag/internal/service/vectorstore"
)

// CourseOutlineTool renders a course's title, link, instructor, and
// lesson list.
type CourseOutlineTool struct {
	store vectorstore.Store
}

func NewCourseOutlineTool(store vectorstore.Store) *CourseOutlineTool {
	return &CourseOutlineTool{store: store}
}

func (t *CourseOutlineTool) Definition() Definition {
	return Definition{
		Name:        "get_course_outline",
		Description: "Get a course's outline: title, link, instructor, and its numbered lessons",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"course_title": map[string]any{"type": "string", "description": "The course to outline"},
			},
			"required": []string{"course_title"},
		},
	}
}

func (t *CourseOutlineTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	title := stringArg(args, "course_title")
	if title == "" {
		return "", fmt.Errorf("course_title argument is required")
	}

	c, err := t.store.CourseOutline(ctx, title)
	if err != nil {
		if errors.Is(err, vectorstore.ErrCourseNotFound) {
			return fmt.Sprintf("No course found matching '%s'", title), nil
		}
		return "", fmt.Errorf("get course outline: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Course: %s\n", c.Title)
	if c.Link != "" {
		fmt.Fprintf(&b, "Link: %s\n", c.Link)
	}
	if c.Instructor != "" {
		fmt.Fprintf(&b, "Instructor: %s\n", c.Instructor)
	}
	fmt.Fprintf(&b, "Lessons (%d):\n", len(c.Lessons))
	for _, lesson := range c.Lessons {
		fmt.Fprintf(&b, "  %d. %s\n", lesson.Number, lesson.Title)
	}
	return b.String(), nil
}
