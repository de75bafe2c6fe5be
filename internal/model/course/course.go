package course

// Course describes a parsed course document and its lessons.
type Course struct {
	Title      string   `json:"title"`
	Link       string   `json:"link,omitempty"`
	Instructor string   `json:"instructor,omitempty"`
	Lessons    []Lesson `json:"lessons"`
}

// Lesson is a single numbered unit inside a course.
type Lesson struct {
	Number  int    `json:"number"`
	Title   string `json:"title"`
	Link    string `json:"link,omitempty"`
	Content string `json:"content"`
}

// Chunk is a retrieval unit produced by the document processor and
// stored in the vector store alongside its course/lesson provenance.
type Chunk struct {
	CourseTitle  string `json:"courseTitle"`
	CourseLink   string `json:"courseLink,omitempty"`
	LessonNumber int    `json:"lessonNumber"`
	LessonTitle  string `json:"lessonTitle"`
	LessonLink   string `json:"lessonLink,omitempty"`
	Content      string `json:"content"`
	ChunkIndex   int    `json:"chunkIndex"`
}

// SearchResult is a chunk returned by a content search, with enough
// provenance for tools to cite it as a source.
type SearchResult struct {
	CourseTitle  string `json:"courseTitle"`
	LessonNumber int    `json:"lessonNumber"`
	LessonTitle  string `json:"lessonTitle"`
	Content      string `json:"content"`
}
