package main

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	"lms-client/internal/coupon"
	"lms-client/internal/listing"
	"lms-client/internal/model"
)

const adminUsage = "admin <users|user|coupons|coupon|courses|course|reports> ..."

func cmdAdmin(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: lms %s", adminUsage)
	}

	user, err := a.session.RequireUser()
	if err != nil {
		return err
	}
	if user.Role != model.RoleAdmin {
		return fmt.Errorf("admin access required")
	}

	switch args[0] {
	case "users":
		return adminUsers(ctx, a, args[1:])
	case "user":
		return adminUser(ctx, a, args[1:])
	case "coupons":
		return adminCoupons(ctx, a, args[1:])
	case "coupon":
		return adminCoupon(ctx, a, args[1:])
	case "courses":
		return adminCourses(ctx, a, args[1:])
	case "course":
		return adminCourse(ctx, a, args[1:])
	case "reports":
		return adminReports(ctx, a)
	default:
		return fmt.Errorf("unknown admin command %q; usage: lms %s", args[0], adminUsage)
	}
}

// listFlags registers the shared table flags; filterKeys become -<key> flags.
type listFlags struct {
	search  *string
	sortKey *string
	desc    *bool
	page    *int
	size    *int
	filters map[string]*string
}

func newListFlags(fs *flag.FlagSet, filterKeys ...string) *listFlags {
	lf := &listFlags{
		search:  fs.String("search", "", "case-insensitive search"),
		sortKey: fs.String("sort", "", "sort key"),
		desc:    fs.Bool("desc", false, "sort descending"),
		page:    fs.Int("page", 1, "page number"),
		size:    fs.Int("size", 10, "page size"),
		filters: map[string]*string{},
	}
	for _, key := range filterKeys {
		lf.filters[key] = fs.String(key, "", "filter by "+key)
	}
	return lf
}

func (lf *listFlags) query() listing.Query {
	filters := map[string]string{}
	for key, v := range lf.filters {
		if *v != "" {
			filters[key] = *v
		}
	}
	return listing.Query{
		Search:   *lf.search,
		Filters:  filters,
		SortKey:  *lf.sortKey,
		Desc:     *lf.desc,
		Page:     *lf.page,
		PageSize: *lf.size,
	}
}

func adminUsers(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "admin users", "admin users [-search Q] [-role R] [-status active|inactive] [-sort name|email|createdAt] [-desc] [-page N] [-size N]")
	lf := newListFlags(fs, "role", "status")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}

	page, err := a.admin.ListUsers(ctx, lf.query())
	if err != nil {
		return err
	}

	tw := a.table()
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tROLE\tACTIVE\tJOINED")
	for _, u := range page.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, u.Role, yesNo(u.IsActive), u.CreatedAt.Format("2006-01-02"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	printPageFooter(a, page.Page, page.TotalPages, page.Total)
	return nil
}

func adminUser(ctx context.Context, a *app, args []string) error {
	usage := "admin user role <id> <role> | activate <id> | deactivate <id> | delete [-yes] <id>"
	if len(args) == 0 {
		return fmt.Errorf("usage: lms %s", usage)
	}

	switch args[0] {
	case "role":
		if err := wantArgs(args[1:], 2, usage); err != nil {
			return err
		}
		user, err := a.admin.UpdateUserRole(ctx, args[1], args[2])
		if err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "%s is now %s\n", user.Email, user.Role)
	case "activate", "deactivate":
		if err := wantArgs(args[1:], 1, usage); err != nil {
			return err
		}
		user, err := a.admin.SetUserActive(ctx, args[1], args[0] == "activate")
		if err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "%s active: %s\n", user.Email, yesNo(user.IsActive))
	case "delete":
		id, ok, err := a.confirmDelete("user", args[1:], usage)
		if err != nil || !ok {
			return err
		}
		if err := a.admin.DeleteUser(ctx, id); err != nil {
			return err
		}
		fmt.Fprintln(a.stdout, "User deleted")
	default:
		return fmt.Errorf("usage: lms %s", usage)
	}
	return nil
}

func adminCoupons(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "admin coupons", "admin coupons [-search Q] [-type percentage|fixed] [-status active|inactive|expired|scheduled] [-scope global|course] [-sort code|discount|validUntil|usedCount|createdAt] [-desc] [-page N] [-size N]")
	lf := newListFlags(fs, "type", "status", "scope")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}

	page, err := a.admin.ListCoupons(ctx, lf.query())
	if err != nil {
		return err
	}

	now := a.now()
	tw := a.table()
	fmt.Fprintln(tw, "ID\tCODE\tDISCOUNT\tVALID UNTIL\tUSED\tSTATUS")
	for _, c := range page.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			c.ID, c.Code, formatDiscount(c.DiscountType, c.DiscountValue), c.ValidUntil.Format("2006-01-02"),
			formatUsage(c.UsedCount, c.UsageLimit), listing.CouponStatus(c, now))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	printPageFooter(a, page.Page, page.TotalPages, page.Total)
	return nil
}

func adminCoupon(ctx context.Context, a *app, args []string) error {
	usage := "admin coupon create|update <id>|toggle <id>|delete [-yes] <id>|import [-dry-run] [-concurrency N] <path>"
	if len(args) == 0 {
		return fmt.Errorf("usage: lms %s", usage)
	}

	switch args[0] {
	case "create":
		return adminCouponSave(ctx, a, "", args[1:])
	case "update":
		if len(args) < 2 {
			return fmt.Errorf("usage: lms admin coupon update <id> [flags]")
		}
		return adminCouponSave(ctx, a, args[1], args[2:])
	case "toggle":
		if err := wantArgs(args[1:], 1, usage); err != nil {
			return err
		}
		c, err := a.admin.ToggleCoupon(ctx, args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "%s active: %s\n", c.Code, yesNo(c.IsActive))
	case "delete":
		id, ok, err := a.confirmDelete("coupon", args[1:], usage)
		if err != nil || !ok {
			return err
		}
		if err := a.admin.DeleteCoupon(ctx, id); err != nil {
			return err
		}
		fmt.Fprintln(a.stdout, "Coupon deleted")
	case "import":
		return adminCouponImport(ctx, a, args[1:])
	default:
		return fmt.Errorf("usage: lms %s", usage)
	}
	return nil
}

// adminCouponSave creates a coupon when id is empty and otherwise updates the
// existing coupon with only the flags that were given.
func adminCouponSave(ctx context.Context, a *app, id string, args []string) error {
	name := "admin coupon create"
	if id != "" {
		name = "admin coupon update"
	}
	fs := newFlagSet(a, name, name+" -code CODE -description TEXT -type percentage|fixed -value N -from DATE -until DATE [flags]")
	code := fs.String("code", "", "coupon code")
	description := fs.String("description", "", "description")
	discountType := fs.String("type", model.DiscountPercentage, "percentage or fixed")
	value := fs.Float64("value", 0, "discount value")
	from := fs.String("from", "", "valid from (YYYY-MM-DD or RFC3339)")
	until := fs.String("until", "", "valid until (YYYY-MM-DD or RFC3339)")
	usageLimit := fs.Int("usage-limit", 0, "total uses allowed, 0 for unlimited")
	perUser := fs.Int("per-user", 1, "uses allowed per user")
	minPurchase := fs.Float64("min-purchase", 0, "minimum purchase amount")
	active := fs.Bool("active", true, "coupon is active")
	global := fs.Bool("global", true, "applies to every course")
	courses := fs.String("courses", "", "comma-separated course IDs when not global")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}

	draft := model.CouponDraft{}
	if id != "" {
		existing, err := a.admin.GetCoupon(ctx, id)
		if err != nil {
			return err
		}
		draft = existing.Draft()
	}

	var parseErr error
	set := func(f *flag.Flag) {
		switch f.Name {
		case "code":
			draft.Code = *code
		case "description":
			draft.Description = *description
		case "type":
			draft.DiscountType = *discountType
		case "value":
			draft.DiscountValue = *value
		case "from":
			if *from == "" {
				return
			}
			t, err := parseDate(*from)
			if err != nil {
				parseErr = err
			}
			draft.ValidFrom = t
		case "until":
			if *until == "" {
				return
			}
			t, err := parseDate(*until)
			if err != nil {
				parseErr = err
			}
			draft.ValidUntil = t
		case "usage-limit":
			draft.UsageLimit = *usageLimit
		case "per-user":
			draft.PerUserLimit = *perUser
		case "min-purchase":
			draft.MinPurchaseAmount = *minPurchase
		case "active":
			draft.IsActive = *active
		case "global":
			draft.IsGlobal = *global
		case "courses":
			draft.ApplicableCourses = splitList(*courses)
		}
	}
	if id == "" {
		// a new coupon takes every default
		fs.VisitAll(set)
	} else {
		fs.Visit(set)
	}
	if parseErr != nil {
		return parseErr
	}

	var saved *model.Coupon
	var err error
	if id == "" {
		saved, err = a.admin.CreateCoupon(ctx, &draft)
	} else {
		saved, err = a.admin.UpdateCoupon(ctx, id, &draft)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Coupon %s saved (%s)\n", saved.Code, saved.ID)
	return nil
}

func adminCouponImport(ctx context.Context, a *app, args []string) error {
	usage := "admin coupon import [-dry-run] [-concurrency N] <path>"
	fs := newFlagSet(a, "admin coupon import", usage)
	dryRun := fs.Bool("dry-run", false, "validate only, create nothing")
	concurrency := fs.Int("concurrency", coupon.DefaultImportConcurrency, "concurrent create calls")
	pos, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if err := wantArgs(pos, 1, usage); err != nil {
		return err
	}

	importer := coupon.NewImporter(a.couponLoader(ctx), a.coupons, coupon.CreatorFunc(a.admin.CreateCoupon), a.logger).
		WithConcurrency(*concurrency)
	report, err := importer.Import(ctx, pos[0], *dryRun)
	if err != nil {
		return err
	}

	tw := a.table()
	fmt.Fprintln(tw, "LINE\tCODE\tSTATUS\tDETAIL")
	for _, o := range report.Outcomes {
		detail := o.Message
		if detail == "" {
			detail = o.CouponID
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", o.Line, o.Code, o.Status, detail)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "%s: %d created, %d valid, %d invalid, %d failed\n",
		report.Source, report.Created, report.Valid, report.Invalid, report.Failed)
	if report.Failed > 0 {
		return fmt.Errorf("%d coupons failed to import", report.Failed)
	}
	return nil
}

func adminCourses(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "admin courses", "admin courses [-search Q] [-category C] [-level L] [-status active|inactive] [-sort title|price|enrollments|rating|createdAt] [-desc] [-page N] [-size N]")
	lf := newListFlags(fs, "category", "level", "status")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}

	page, err := a.admin.ListCourses(ctx, lf.query())
	if err != nil {
		return err
	}

	tw := a.table()
	fmt.Fprintln(tw, "ID\tTITLE\tCATEGORY\tPRICE\tENROLLMENTS\tACTIVE")
	for _, c := range page.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n", c.ID, c.Title, c.Category, formatMoney(c.Price), c.EnrollmentCount, yesNo(c.IsActive))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	printPageFooter(a, page.Page, page.TotalPages, page.Total)
	return nil
}

func adminCourse(ctx context.Context, a *app, args []string) error {
	usage := "admin course activate <id> | deactivate <id> | delete [-yes] <id>"
	if len(args) == 0 {
		return fmt.Errorf("usage: lms %s", usage)
	}

	switch args[0] {
	case "activate", "deactivate":
		if err := wantArgs(args[1:], 1, usage); err != nil {
			return err
		}
		active := args[0] == "activate"
		if err := a.admin.SetCourseActive(ctx, args[1], active); err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "Course active: %s\n", yesNo(active))
	case "delete":
		id, ok, err := a.confirmDelete("course", args[1:], usage)
		if err != nil || !ok {
			return err
		}
		if err := a.admin.DeleteCourse(ctx, id); err != nil {
			return err
		}
		fmt.Fprintln(a.stdout, "Course deleted")
	default:
		return fmt.Errorf("usage: lms %s", usage)
	}
	return nil
}

func adminReports(ctx context.Context, a *app) error {
	r, err := a.admin.Reports(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "Users:       %d\n", r.TotalUsers)
	fmt.Fprintf(a.stdout, "Courses:     %d\n", r.TotalCourses)
	fmt.Fprintf(a.stdout, "Enrollments: %d\n", r.TotalEnrollments)
	fmt.Fprintf(a.stdout, "Revenue:     %s\n", formatMoney(r.TotalRevenue))
	if len(r.MonthlyRevenue) == 0 {
		return nil
	}

	fmt.Fprintln(a.stdout)
	tw := a.table()
	fmt.Fprintln(tw, "MONTH\tREVENUE")
	for _, m := range r.MonthlyRevenue {
		fmt.Fprintf(tw, "%s\t%s\n", m.Month, formatMoney(m.Revenue))
	}
	return tw.Flush()
}

// confirmDelete parses "[-yes] <id>" and asks for confirmation unless -yes.
func (a *app) confirmDelete(kind string, args []string, usage string) (string, bool, error) {
	fs := newFlagSet(a, "delete", usage)
	yes := fs.Bool("yes", false, "skip confirmation")
	pos, err := parseArgs(fs, args)
	if err != nil {
		return "", false, err
	}
	if err := wantArgs(pos, 1, usage); err != nil {
		return "", false, err
	}
	if *yes {
		return pos[0], true, nil
	}

	answer, err := a.readLine(fmt.Sprintf("Delete %s %s? [y/N] ", kind, pos[0]))
	if err != nil {
		return "", false, err
	}
	if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
		fmt.Fprintln(a.stdout, "Cancelled")
		return "", false, nil
	}
	return pos[0], true, nil
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD or RFC3339", s)
	}
	return t, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func formatDiscount(discountType string, value float64) string {
	if discountType == model.DiscountPercentage {
		return fmt.Sprintf("%g%%", value)
	}
	return formatMoney(value)
}

func formatUsage(used, limit int) string {
	if limit == 0 {
		return fmt.Sprintf("%d/∞", used)
	}
	return fmt.Sprintf("%d/%d", used, limit)
}
