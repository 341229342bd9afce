package listing

import (
	"cmp"
	"time"

	"lms-client/internal/model"
)

// Coupon statuses derived for the coupon table's status filter.
const (
	CouponStatusActive    = "active"
	CouponStatusInactive  = "inactive"
	CouponStatusExpired   = "expired"
	CouponStatusScheduled = "scheduled"
)

// UserSpec drives the admin users table.
func UserSpec() Spec[model.User] {
	return Spec[model.User]{
		SearchFields: func(u model.User) []string { return []string{u.Name, u.Email} },
		Filters: map[string]func(model.User) string{
			"role":   func(u model.User) string { return u.Role },
			"status": func(u model.User) string { return activeLabel(u.IsActive) },
		},
		Sorters: map[string]func(a, b model.User) int{
			"name":      func(a, b model.User) int { return CompareStrings(a.Name, b.Name) },
			"email":     func(a, b model.User) int { return CompareStrings(a.Email, b.Email) },
			"createdAt": func(a, b model.User) int { return a.CreatedAt.Compare(b.CreatedAt) },
		},
	}
}

// CouponSpec drives the admin coupons table; now decides expired/scheduled.
func CouponSpec(now time.Time) Spec[model.Coupon] {
	return Spec[model.Coupon]{
		SearchFields: func(c model.Coupon) []string { return []string{c.Code, c.Description} },
		Filters: map[string]func(model.Coupon) string{
			"type":   func(c model.Coupon) string { return c.DiscountType },
			"status": func(c model.Coupon) string { return CouponStatus(c, now) },
			"scope": func(c model.Coupon) string {
				if c.IsGlobal {
					return "global"
				}
				return "course"
			},
		},
		Sorters: map[string]func(a, b model.Coupon) int{
			"code":       func(a, b model.Coupon) int { return CompareStrings(a.Code, b.Code) },
			"discount":   func(a, b model.Coupon) int { return cmp.Compare(a.DiscountValue, b.DiscountValue) },
			"validUntil": func(a, b model.Coupon) int { return a.ValidUntil.Compare(b.ValidUntil) },
			"usedCount":  func(a, b model.Coupon) int { return cmp.Compare(a.UsedCount, b.UsedCount) },
			"createdAt":  func(a, b model.Coupon) int { return a.CreatedAt.Compare(b.CreatedAt) },
		},
	}
}

// CourseSpec drives the admin courses table.
func CourseSpec() Spec[model.Course] {
	return Spec[model.Course]{
		SearchFields: func(c model.Course) []string { return []string{c.Title, c.Description, c.InstructorName} },
		Filters: map[string]func(model.Course) string{
			"category": func(c model.Course) string { return c.Category },
			"level":    func(c model.Course) string { return c.Level },
			"status":   func(c model.Course) string { return activeLabel(c.IsActive) },
		},
		Sorters: map[string]func(a, b model.Course) int{
			"title":       func(a, b model.Course) int { return CompareStrings(a.Title, b.Title) },
			"price":       func(a, b model.Course) int { return cmp.Compare(a.Price, b.Price) },
			"enrollments": func(a, b model.Course) int { return cmp.Compare(a.EnrollmentCount, b.EnrollmentCount) },
			"rating":      func(a, b model.Course) int { return cmp.Compare(a.Rating, b.Rating) },
			"createdAt":   func(a, b model.Course) int { return a.CreatedAt.Compare(b.CreatedAt) },
		},
	}
}

// CouponStatus classifies a coupon at time now.
func CouponStatus(c model.Coupon, now time.Time) string {
	switch {
	case !c.IsActive:
		return CouponStatusInactive
	case !c.ValidUntil.IsZero() && now.After(c.ValidUntil):
		return CouponStatusExpired
	case c.UsageLimit > 0 && c.UsedCount >= c.UsageLimit:
		return CouponStatusExpired
	case now.Before(c.ValidFrom):
		return CouponStatusScheduled
	default:
		return CouponStatusActive
	}
}

func activeLabel(active bool) string {
	if active {
		return "active"
	}
	return "inactive"
}
