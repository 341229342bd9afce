package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
)

type command struct {
	name    string
	usage   string
	summary string
	run     func(ctx context.Context, a *app, args []string) error
}

func commandTable() []command {
	return []command{
		{"login", "login [-email EMAIL]", "log in and store the session", cmdLogin},
		{"logout", "logout", "clear the stored session", cmdLogout},
		{"whoami", "whoami", "show the logged-in user", cmdWhoami},
		{"courses", "courses [-search Q] [-category C] [-level L] [-sort KEY] [-desc] [-page N] [-size N]", "browse the catalog", cmdCourses},
		{"course", "course <courseId>", "show a course with your progress", cmdCourse},
		{"progress", "progress <courseId>", "show progress and certificate eligibility", cmdProgress},
		{"complete", "complete [-time SECONDS] <courseId> <lessonId>", "mark a lesson complete", cmdComplete},
		{"watched", "watched <courseId> <lessonId>", "record that a lesson video was watched", cmdWatched},
		{"review", "review -rating N [-comment TEXT] <courseId>", "review a course", cmdReview},
		{"promo", "promo <courseId> <code>", "price a course with a promo code", cmdPromo},
		{"checkout", "checkout [-promo CODE] -name -email -phone -address -city -state -postal -country <courseId>", "buy a course with billing details", cmdCheckout},
		{"enroll", "enroll [-promo CODE] <courseId>", "quick purchase from the course page", cmdEnroll},
		{"enrollments", "enrollments", "list your enrollments", cmdEnrollments},
		{"certificates", "certificates", "list your certificates", cmdCertificates},
		{"certificate", "certificate download [-dir DIR] [-s3] <certificateId>", "download a certificate PDF", cmdCertificate},
		{"upload", "upload image|video <path>", "validate and upload a file", cmdUpload},
		{"admin", "admin <users|user|coupons|coupon|courses|course|reports> ...", "admin panels", cmdAdmin},
	}
}

func findCommand(name string) (command, bool) {
	for _, c := range commandTable() {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: lms <command> [flags] [args]")
	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, c := range commandTable() {
		fmt.Fprintf(tw, "  %s\t%s\n", c.name, c.summary)
	}
	_ = tw.Flush()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'lms <command> -h' for command flags.")
}

func newFlagSet(a *app, name, usage string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	fs.Usage = func() {
		fmt.Fprintf(a.stderr, "Usage: lms %s\n", usage)
		fs.PrintDefaults()
	}
	return fs
}

// parseArgs parses flags wherever they appear and returns the positional
// arguments in order.
func parseArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

// wantArgs checks the positional argument count.
func wantArgs(args []string, n int, usage string) error {
	if len(args) != n {
		return fmt.Errorf("usage: lms %s", usage)
	}
	return nil
}

// readLine prompts on stderr and reads one trimmed line from stdin.
func (a *app) readLine(prompt string) (string, error) {
	fmt.Fprint(a.stderr, prompt)
	if a.in == nil {
		a.in = bufio.NewReader(a.stdin)
	}
	line, err := a.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (a *app) table() *tabwriter.Writer {
	return tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
}

func formatMoney(amount float64) string {
	return "₹" + strconv.FormatFloat(amount, 'f', 2, 64)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
