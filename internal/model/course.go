package model

import "time"

// Course represents a course in the catalogue.
type Course struct {
	ID              string    `json:"_id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Category        string    `json:"category"`
	Price           float64   `json:"price"`
	Level           string    `json:"level"`
	Thumbnail       string    `json:"thumbnail"`
	InstructorName  string    `json:"instructorName,omitempty"`
	Modules         []Module  `json:"modules"`
	EnrollmentCount int       `json:"enrollmentCount"`
	Rating          float64   `json:"rating"`
	RatingCount     int       `json:"ratingCount"`
	IsEnrolled      bool      `json:"isEnrolled"`
	IsActive        bool      `json:"isActive"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Module groups lessons inside a course.
type Module struct {
	ID         string   `json:"_id"`
	Title      string   `json:"title"`
	Subcourses []Lesson `json:"subcourses"`
}

// Lesson is a single playable unit of a module.
type Lesson struct {
	ID          string     `json:"_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	VideoURL    string     `json:"videoUrl"`
	Order       int        `json:"order"`
	Duration    int        `json:"duration"` // seconds
	Materials   []Material `json:"materials,omitempty"`
}

// Material is a downloadable attachment of a lesson.
type Material struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Type string `json:"type,omitempty"`
}

// LessonIDs returns every lesson ID across all modules, in module order.
func (c *Course) LessonIDs() []string {
	ids := make([]string, 0, c.LessonCount())
	for _, m := range c.Modules {
		for _, l := range m.Subcourses {
			ids = append(ids, l.ID)
		}
	}
	return ids
}

// LessonCount returns the total number of lessons in the course.
func (c *Course) LessonCount() int {
	n := 0
	for _, m := range c.Modules {
		n += len(m.Subcourses)
	}
	return n
}

// FindLesson looks a lesson up by ID.
func (c *Course) FindLesson(id string) (*Lesson, bool) {
	for mi := range c.Modules {
		for li := range c.Modules[mi].Subcourses {
			if c.Modules[mi].Subcourses[li].ID == id {
				return &c.Modules[mi].Subcourses[li], true
			}
		}
	}
	return nil, false
}

// Review is a learner's rating of a finished course.
type Review struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}
