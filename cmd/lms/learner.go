package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"lms-client/internal/listing"
	"lms-client/internal/media"
	"lms-client/internal/model"
	"lms-client/internal/progress"
	"lms-client/internal/service"
)

func cmdLogin(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "login", "login [-email EMAIL]")
	email := fs.String("email", "", "account email")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}

	if *email == "" {
		line, err := a.readLine("Email: ")
		if err != nil {
			return err
		}
		*email = line
	}
	password, err := a.readPassword()
	if err != nil {
		return err
	}

	user, err := a.auth.Login(ctx, *email, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Logged in as %s <%s> (%s)\n", user.Name, user.Email, user.Role)
	return nil
}

func cmdLogout(ctx context.Context, a *app, args []string) error {
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, "Logged out")
	return nil
}

func cmdWhoami(ctx context.Context, a *app, args []string) error {
	user, err := a.auth.Me(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "%s <%s>\nrole: %s\nid: %s\n", user.Name, user.Email, user.Role, user.ID)
	return nil
}

func cmdCourses(ctx context.Context, a *app, args []string) error {
	usage := "courses [-search Q] [-category C] [-level L] [-sort KEY] [-desc] [-page N] [-size N]"
	fs := newFlagSet(a, "courses", usage)
	search := fs.String("search", "", "search title, description and instructor")
	category := fs.String("category", "", "filter by category")
	level := fs.String("level", "", "filter by level")
	sortKey := fs.String("sort", "", "sort by title, price, enrollments, rating or createdAt")
	desc := fs.Bool("desc", false, "sort descending")
	page := fs.Int("page", 1, "page number")
	size := fs.Int("size", 10, "page size")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}

	courses, err := a.courses.List(ctx)
	if err != nil {
		return err
	}

	filters := map[string]string{}
	if *category != "" {
		filters["category"] = *category
	}
	if *level != "" {
		filters["level"] = *level
	}
	result, err := listing.Apply(courses, listing.CourseSpec(), listing.Query{
		Search:   *search,
		Filters:  filters,
		SortKey:  *sortKey,
		Desc:     *desc,
		Page:     *page,
		PageSize: *size,
	})
	if err != nil {
		return err
	}

	tw := a.table()
	fmt.Fprintln(tw, "ID\tTITLE\tCATEGORY\tLEVEL\tPRICE\tRATING\tENROLLED")
	for _, c := range result.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%.1f\t%s\n",
			c.ID, c.Title, c.Category, c.Level, formatMoney(c.Price), c.Rating, yesNo(c.IsEnrolled))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	printPageFooter(a, result.Page, result.TotalPages, result.Total)
	return nil
}

func cmdCourse(ctx context.Context, a *app, args []string) error {
	if err := wantArgs(args, 1, "course <courseId>"); err != nil {
		return err
	}

	detail, err := a.courses.Detail(ctx, args[0])
	if err != nil {
		return err
	}
	course := detail.Course

	fmt.Fprintf(a.stdout, "%s\n", course.Title)
	fmt.Fprintf(a.stdout, "%s | %s | %s\n", course.Category, course.Level, formatMoney(course.Price))
	if course.InstructorName != "" {
		fmt.Fprintf(a.stdout, "Instructor: %s\n", course.InstructorName)
	}
	if course.Description != "" {
		fmt.Fprintf(a.stdout, "\n%s\n", course.Description)
	}

	watched := map[string]bool{}
	if course.IsEnrolled {
		ids, err := a.progress.Watched(ctx, course.ID)
		if err != nil {
			a.logger.Warn().Err(err).Msg("failed to read watched lessons")
		}
		for _, id := range ids {
			watched[id] = true
		}
	}

	for _, m := range course.Modules {
		fmt.Fprintf(a.stdout, "\n%s\n", m.Title)
		for _, l := range m.Subcourses {
			mark := " "
			if progress.IsLessonCompleted(detail.Progress, l.ID) {
				mark = "x"
			} else if watched[l.ID] {
				mark = "~"
			}
			fmt.Fprintf(a.stdout, "  [%s] %s (%s)", mark, l.Title, l.ID)
			if embed, ok := media.EmbedURL(l.VideoURL); ok && course.IsEnrolled {
				fmt.Fprintf(a.stdout, " %s", embed)
			}
			fmt.Fprintln(a.stdout)
		}
	}

	fmt.Fprintln(a.stdout)
	if !course.IsEnrolled {
		fmt.Fprintf(a.stdout, "Not enrolled. Run 'lms enroll %s' to buy this course.\n", course.ID)
		return nil
	}
	printSummary(a, detail)
	if next, ok := progress.NextLesson(course, detail.Progress); ok {
		fmt.Fprintf(a.stdout, "Next lesson: %s (%s)\n", next.Title, next.ID)
	}
	return nil
}

func cmdProgress(ctx context.Context, a *app, args []string) error {
	if err := wantArgs(args, 1, "progress <courseId>"); err != nil {
		return err
	}

	detail, err := a.courses.Detail(ctx, args[0])
	if err != nil {
		return err
	}
	printSummary(a, detail)
	if progress.EligibleForCertificate(detail.Course, detail.Progress) {
		fmt.Fprintln(a.stdout, "Certificate: eligible")
	} else {
		fmt.Fprintln(a.stdout, "Certificate: complete every lesson to unlock")
	}
	return nil
}

func printSummary(a *app, detail *service.CourseDetail) {
	s := detail.Summary
	fmt.Fprintf(a.stdout, "Progress: %d/%d lessons, %.0f%%\n", s.CompletedLessons, s.TotalLessons, s.Percentage)
	if s.Completed {
		fmt.Fprintln(a.stdout, "Status: completed")
	}
}

func cmdComplete(ctx context.Context, a *app, args []string) error {
	usage := "complete [-time SECONDS] <courseId> <lessonId>"
	fs := newFlagSet(a, "complete", usage)
	timeSpent := fs.Int("time", 0, "seconds spent on the lesson")
	pos, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if err := wantArgs(pos, 2, usage); err != nil {
		return err
	}
	courseID, lessonID := pos[0], pos[1]

	p, err := a.progress.MarkComplete(ctx, courseID, lessonID, *timeSpent)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Lesson completed. Course progress: %.0f%%\n", p.CompletionPercentage)

	course, err := a.courses.Get(ctx, courseID)
	if err != nil {
		a.logger.Warn().Err(err).Msg("failed to refresh course for review prompt")
		return nil
	}
	return a.maybePromptReview(ctx, course, p)
}

// maybePromptReview asks for a review once per completed course.
func (a *app) maybePromptReview(ctx context.Context, course *model.Course, p *model.Progress) error {
	prompt, err := a.progress.ShouldPromptReview(ctx, course, p)
	if err != nil || !prompt {
		return err
	}

	fmt.Fprintf(a.stdout, "You completed %s!\n", course.Title)
	answer, err := a.readLine("Rate this course 1-5 (blank to skip): ")
	if err != nil {
		return err
	}
	if answer != "" {
		rating, err := strconv.Atoi(answer)
		if err != nil || rating < 1 || rating > 5 {
			return fmt.Errorf("rating must be a number from 1 to 5")
		}
		comment, err := a.readLine("Comment: ")
		if err != nil {
			return err
		}
		if err := a.courses.SubmitReview(ctx, course.ID, model.Review{Rating: rating, Comment: comment}); err != nil {
			return err
		}
		fmt.Fprintln(a.stdout, "Thanks for your review!")
	}
	return a.progress.MarkReviewPrompted(ctx, course.ID)
}

func cmdWatched(ctx context.Context, a *app, args []string) error {
	if err := wantArgs(args, 2, "watched <courseId> <lessonId>"); err != nil {
		return err
	}
	if err := a.progress.MarkWatched(ctx, args[0], args[1]); err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, "Marked as watched")
	return nil
}

func cmdReview(ctx context.Context, a *app, args []string) error {
	usage := "review -rating N [-comment TEXT] <courseId>"
	fs := newFlagSet(a, "review", usage)
	rating := fs.Int("rating", 0, "rating from 1 to 5")
	comment := fs.String("comment", "", "review text")
	pos, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if err := wantArgs(pos, 1, usage); err != nil {
		return err
	}
	if *rating < 1 || *rating > 5 {
		return fmt.Errorf("rating must be a number from 1 to 5")
	}

	if err := a.courses.SubmitReview(ctx, pos[0], model.Review{Rating: *rating, Comment: *comment}); err != nil {
		return err
	}
	if err := a.progress.MarkReviewPrompted(ctx, pos[0]); err != nil {
		a.logger.Warn().Err(err).Msg("failed to record review prompt")
	}
	fmt.Fprintln(a.stdout, "Review submitted")
	return nil
}

func cmdEnrollments(ctx context.Context, a *app, args []string) error {
	enrollments, err := a.enrollments.MyEnrollments(ctx)
	if err != nil {
		return err
	}
	if len(enrollments) == 0 {
		fmt.Fprintln(a.stdout, "No enrollments yet")
		return nil
	}

	tw := a.table()
	fmt.Fprintln(tw, "COURSE\tTITLE\tPROGRESS\tSTATUS\tENROLLED")
	for _, e := range enrollments {
		title := ""
		if e.Course != nil {
			title = e.Course.Title
		}
		fmt.Fprintf(tw, "%s\t%s\t%.0f%%\t%s\t%s\n", e.CourseID, title, e.Progress, e.Status, e.EnrolledAt.Format("2006-01-02"))
	}
	return tw.Flush()
}

func cmdCertificates(ctx context.Context, a *app, args []string) error {
	certs, err := a.certificates.List(ctx)
	if err != nil {
		return err
	}
	if len(certs) == 0 {
		fmt.Fprintln(a.stdout, "No certificates yet")
		return nil
	}

	tw := a.table()
	fmt.Fprintln(tw, "ID\tCOURSE\tISSUED\tGRADE\tSCORE")
	for _, c := range certs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.0f\n", c.CertificateID, c.CourseName, c.IssueDate.Format("2006-01-02"), c.Grade, c.FinalScore)
	}
	return tw.Flush()
}

func cmdCertificate(ctx context.Context, a *app, args []string) error {
	usage := "certificate download [-dir DIR] [-s3] <certificateId>"
	if len(args) == 0 || args[0] != "download" {
		return fmt.Errorf("usage: lms %s", usage)
	}
	fs := newFlagSet(a, "certificate download", usage)
	dir := fs.String("dir", defaultDownloadDir(), "directory to save the PDF in")
	toS3 := fs.Bool("s3", false, "archive to the configured S3 bucket instead")
	pos, err := parseArgs(fs, args[1:])
	if err != nil {
		return err
	}
	if err := wantArgs(pos, 1, usage); err != nil {
		return err
	}

	sink, err := a.certificateSink(ctx, *dir, *toS3)
	if err != nil {
		return err
	}
	location, err := a.certificates.Download(ctx, pos[0], sink)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return fmt.Errorf("certificate %s not found", pos[0])
		}
		return err
	}
	fmt.Fprintf(a.stdout, "Certificate saved to %s\n", location)
	return nil
}

func printPageFooter(a *app, page, totalPages, total int) {
	if totalPages == 0 {
		fmt.Fprintln(a.stdout, "No results")
		return
	}
	fmt.Fprintf(a.stdout, "Page %d of %d (%d total)\n", page, totalPages, total)
}
