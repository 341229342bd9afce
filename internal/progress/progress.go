// Package progress derives course completion state from server progress.
package progress

import (
	"lms-client/internal/model"
)

// CompletedSet returns the set of completed lesson IDs.
func CompletedSet(p *model.Progress) map[string]struct{} {
	if p == nil {
		return map[string]struct{}{}
	}
	set := make(map[string]struct{}, len(p.CompletedLessons))
	for _, cl := range p.CompletedLessons {
		set[cl.LessonID] = struct{}{}
	}
	return set
}

// IsLessonCompleted reports whether lessonID appears in the progress.
func IsLessonCompleted(p *model.Progress, lessonID string) bool {
	_, ok := CompletedSet(p)[lessonID]
	return ok
}

// AllLessonsCompleted is true iff every lesson across all modules appears in
// the completed list. A course without lessons is vacuously completed.
func AllLessonsCompleted(course *model.Course, p *model.Progress) bool {
	done := CompletedSet(p)
	for _, id := range course.LessonIDs() {
		if _, ok := done[id]; !ok {
			return false
		}
	}
	return true
}

// EligibleForCertificate additionally requires the course to have lessons.
func EligibleForCertificate(course *model.Course, p *model.Progress) bool {
	return course.LessonCount() > 0 && AllLessonsCompleted(course, p)
}

// NextLesson returns the first lesson, in module order, that is not completed.
func NextLesson(course *model.Course, p *model.Progress) (*model.Lesson, bool) {
	done := CompletedSet(p)
	for mi := range course.Modules {
		for li := range course.Modules[mi].Subcourses {
			l := &course.Modules[mi].Subcourses[li]
			if _, ok := done[l.ID]; !ok {
				return l, true
			}
		}
	}
	return nil, false
}

// Summary is a display-ready view of a learner's progress.
type Summary struct {
	CompletedLessons int
	TotalLessons     int
	Percentage       float64 // server value, shown verbatim
	Completed        bool
}

// Summarize combines the server percentage with the client-side completion check.
func Summarize(course *model.Course, p *model.Progress) Summary {
	s := Summary{
		TotalLessons: course.LessonCount(),
		Completed:    AllLessonsCompleted(course, p),
	}
	if p != nil {
		s.Percentage = p.CompletionPercentage
	}
	done := CompletedSet(p)
	for _, id := range course.LessonIDs() {
		if _, ok := done[id]; ok {
			s.CompletedLessons++
		}
	}
	return s
}
