package docproc

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/studyforge/courserag/internal/model/course"
)

const (
	DefaultChunkSize    = 800
	DefaultChunkOverlap = 100
)

var lessonMarker = regexp.MustCompile(`^Lesson\s+(\d+):\s*(.*)$`)

// Processor parses course documents and splits lesson content into
// overlapping retrieval chunks.
type Processor struct {
	chunkSize    int
	chunkOverlap int
}

// NewProcessor builds a processor with the given chunking parameters.
// Non-positive values fall back to the defaults.
func NewProcessor(chunkSize, chunkOverlap int) *Processor {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = DefaultChunkOverlap
	}
	return &Processor{chunkSize: chunkSize, chunkOverlap: chunkOverlap}
}

// ProcessCourseDocument parses a course file of the form:
//
//	Course Title: <title>
//	Course Link: <url>
//	Course Instructor: <name>
//
//	Lesson 1: <lesson title>
//	Lesson Link: <url>
//	<content...>
//
// and returns the course plus its content chunks.
func (p *Processor) ProcessCourseDocument(path string) (course.Course, []course.Chunk, error) {
	f, err := os.Open(path)
	if err != nil {
		return course.Course{}, nil, fmt.Errorf("open course document: %w", err)
	}
	defer f.Close()

	var c course.Course
	var current *course.Lesson
	var content strings.Builder

	flush := func() {
		if current == nil {
			return
		}
		current.Content = strings.TrimSpace(content.String())
		c.Lessons = append(c.Lessons, *current)
		current = nil
		content.Reset()
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		if m := lessonMarker.FindStringSubmatch(trimmed); m != nil {
			flush()
			number, _ := strconv.Atoi(m[1])
			current = &course.Lesson{Number: number, Title: strings.TrimSpace(m[2])}
			continue
		}

		switch {
		case current == nil && strings.HasPrefix(trimmed, "Course Title:"):
			c.Title = strings.TrimSpace(strings.TrimPrefix(trimmed, "Course Title:"))
		case current == nil && strings.HasPrefix(trimmed, "Course Link:"):
			c.Link = strings.TrimSpace(strings.TrimPrefix(trimmed, "Course Link:"))
		case current == nil && strings.HasPrefix(trimmed, "Course Instructor:"):
			c.Instructor = strings.TrimSpace(strings.TrimPrefix(trimmed, "Course Instructor:"))
		case current != nil && strings.HasPrefix(trimmed, "Lesson Link:") && current.Link == "":
			current.Link = strings.TrimSpace(strings.TrimPrefix(trimmed, "Lesson Link:"))
		case current != nil:
			content.WriteString(line)
			content.WriteString("\n")
		}
	}
	if err := scanner.Err(); err != nil {
		return course.Course{}, nil, fmt.Errorf("read course document: %w", err)
	}
	flush()

	if c.Title == "" {
		return course.Course{}, nil, fmt.Errorf("course document %s has no Course Title header", path)
	}

	return c, p.buildChunks(c), nil
}

// buildChunks splits each lesson's content into sentence-aligned chunks
// prefixed with course/lesson provenance so a chunk stays meaningful on
// its own when retrieved.
func (p *Processor) buildChunks(c course.Course) []course.Chunk {
	var chunks []course.Chunk
	for _, lesson := range c.Lessons {
		index := 0
		for _, text := range p.chunkText(lesson.Content) {
			chunks = append(chunks, course.Chunk{
				CourseTitle:  c.Title,
				CourseLink:   c.Link,
				LessonNumber: lesson.Number,
				LessonTitle:  lesson.Title,
				LessonLink:   lesson.Link,
				Content:      fmt.Sprintf("Course %s Lesson %d content: %s", c.Title, lesson.Number, text),
				ChunkIndex:   index,
			})
			index++
		}
	}
	return chunks
}

// chunkText packs sentences greedily into chunks of at most chunkSize
// characters, carrying up to chunkOverlap trailing characters of the
// previous chunk into the next one.
func (p *Processor) chunkText(text string) []string {
	text = strings.TrimSpace(strings.Join(strings.Fields(text), " "))
	if text == "" {
		return nil
	}

	sentences := splitSentences(text)

	var chunks []string
	var buf strings.Builder
	for _, sentence := range sentences {
		if buf.Len() > 0 && buf.Len()+1+len(sentence) > p.chunkSize {
			chunk := buf.String()
			chunks = append(chunks, chunk)
			buf.Reset()
			if p.chunkOverlap > 0 {
				buf.WriteString(overlapTail(chunk, p.chunkOverlap))
			}
		}
		if buf.Len() > 0 {
			buf.WriteString(" ")
		}
		buf.WriteString(sentence)
	}
	if buf.Len() > 0 {
		chunks = append(chunks, buf.String())
	}
	return chunks
}

// splitSentences breaks text after terminal punctuation followed by a
// space. Oversized unpunctuated runs come back as one sentence and are
// carried whole into a chunk.
func splitSentences(text string) []string {
	var sentences []string
	start := 0
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		switch runes[i] {
		case '.', '!', '?':
			if i+1 == len(runes) || runes[i+1] == ' ' {
				sentence := strings.TrimSpace(string(runes[start : i+1]))
				if sentence != "" {
					sentences = append(sentences, sentence)
				}
				start = i + 1
			}
		}
	}
	if tail := strings.TrimSpace(string(runes[start:])); tail != "" {
		sentences = append(sentences, tail)
	}
	return sentences
}

// overlapTail returns the last maxLen bytes of chunk, snapped forward
// to a word boundary, or to a rune boundary when the tail has no space.
func overlapTail(chunk string, maxLen int) string {
	if len(chunk) <= maxLen {
		return chunk
	}
	start := len(chunk) - maxLen
	if idx := strings.IndexByte(chunk[start:], ' '); idx >= 0 {
		return chunk[start+idx+1:]
	}
	for start < len(chunk) && !utf8.RuneStart(chunk[start]) {
		start++
	}
	return chunk[start:]
}
