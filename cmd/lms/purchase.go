package main

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"lms-client/internal/checkout"
	"lms-client/internal/model"
	"lms-client/internal/upload"
)

func cmdPromo(ctx context.Context, a *app, args []string) error {
	if err := wantArgs(args, 2, "promo <courseId> <code>"); err != nil {
		return err
	}

	course, err := a.courses.Get(ctx, args[0])
	if err != nil {
		return err
	}
	quote, err := a.promos.Apply(ctx, args[1], course.ID, course.Price)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "Price:    %s\n", formatMoney(quote.Price))
	fmt.Fprintf(a.stdout, "Discount: -%s (%s)\n", formatMoney(quote.DiscountAmount), quote.PromoCode)
	fmt.Fprintf(a.stdout, "Total:    %s\n", formatMoney(quote.FinalPrice))
	return nil
}

func cmdCheckout(ctx context.Context, a *app, args []string) error {
	usage := "checkout [-promo CODE] -name -email -phone -address -city -state -postal -country <courseId>"
	fs := newFlagSet(a, "checkout", usage)
	promo := fs.String("promo", "", "promo code")
	billing := &model.BillingInfo{}
	fs.StringVar(&billing.FullName, "name", "", "full name")
	fs.StringVar(&billing.Email, "email", "", "email address")
	fs.StringVar(&billing.Phone, "phone", "", "phone number")
	fs.StringVar(&billing.Address, "address", "", "street address")
	fs.StringVar(&billing.City, "city", "", "city")
	fs.StringVar(&billing.State, "state", "", "state")
	fs.StringVar(&billing.PostalCode, "postal", "", "postal code")
	fs.StringVar(&billing.Country, "country", "India", "country")
	pos, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if err := wantArgs(pos, 1, usage); err != nil {
		return err
	}

	return a.purchase(ctx, pos[0], *promo, billing)
}

func cmdEnroll(ctx context.Context, a *app, args []string) error {
	usage := "enroll [-promo CODE] <courseId>"
	fs := newFlagSet(a, "enroll", usage)
	promo := fs.String("promo", "", "promo code")
	pos, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if err := wantArgs(pos, 1, usage); err != nil {
		return err
	}

	return a.purchase(ctx, pos[0], *promo, nil)
}

// purchase runs the checkout flow for a course. billing is nil for the quick
// purchase from the course page.
func (a *app) purchase(ctx context.Context, courseID, promo string, billing *model.BillingInfo) error {
	user, err := a.session.RequireUser()
	if err != nil {
		return err
	}

	course, err := a.courses.Get(ctx, courseID)
	if err != nil {
		return err
	}
	if course.IsEnrolled {
		fmt.Fprintf(a.stdout, "You are already enrolled in %s\n", course.Title)
		return nil
	}

	result, err := a.checkout.Run(ctx, checkout.Request{
		CourseID:       course.ID,
		CourseTitle:    course.Title,
		Price:          course.Price,
		PromoCode:      promo,
		Billing:        billing,
		RequireBilling: billing != nil,
		Buyer:          &user,
	})
	if err != nil {
		if errors.Is(err, model.ErrPaymentDismissed) {
			fmt.Fprintln(a.stdout, "Payment cancelled")
			return nil
		}
		return err
	}

	fmt.Fprintf(a.stdout, "Payment successful: %s paid for %s\n", formatMoney(result.Quote.FinalPrice), course.Title)
	fmt.Fprintf(a.stdout, "Order: %s\nPayment: %s\n", result.OrderID, result.PaymentID)
	if result.Enrolled {
		fmt.Fprintln(a.stdout, "You are now enrolled.")
	} else {
		fmt.Fprintln(a.stdout, "Enrollment is being confirmed; check 'lms enrollments' shortly.")
	}
	fmt.Fprintf(a.stdout, "Next: %s\n", result.SuccessRoute)
	return nil
}

func cmdUpload(ctx context.Context, a *app, args []string) error {
	usage := "upload image|video <path>"
	if err := wantArgs(args, 2, usage); err != nil {
		return err
	}

	kind := upload.Kind(args[0])
	if _, err := upload.PolicyFor(kind); err != nil {
		return fmt.Errorf("usage: lms %s", usage)
	}

	var mu sync.Mutex
	lastPct := -1
	result, err := a.uploader.UploadFile(ctx, kind, args[1], func(sent, total int64) {
		if total <= 0 {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		pct := int(sent * 100 / total)
		if pct/10 != lastPct/10 {
			lastPct = pct
			fmt.Fprintf(a.stderr, "\rUploading... %3d%%", pct)
		}
	})
	mu.Lock()
	if lastPct >= 0 {
		fmt.Fprintln(a.stderr)
	}
	mu.Unlock()
	if err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "Uploaded: %s\n", result.URL)
	return nil
}
