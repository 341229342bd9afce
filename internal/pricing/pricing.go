// Package pricing holds the promo-code discount arithmetic shown at checkout.
package pricing

import (
	"math"

	"lms-client/internal/model"
)

// Quote is the price breakdown after applying a promo code.
type Quote struct {
	Price          float64 `json:"price"`
	DiscountAmount float64 `json:"discountAmount"`
	FinalPrice     float64 `json:"finalPrice"`
	PromoCode      string  `json:"promoCode,omitempty"`
}

// DiscountAmount returns the amount taken off price. Percentage discounts are
// price*discount/100; fixed discounts (and unknown types) are taken at face value.
func DiscountAmount(price, discount float64, discountType string) float64 {
	if discountType == model.DiscountPercentage {
		return price * discount / 100
	}
	return discount
}

// FinalPrice is max(0, price - discountAmount).
func FinalPrice(price, discountAmount float64) float64 {
	return math.Max(0, price-discountAmount)
}

// Apply prices a course with an optional promo result.
func Apply(price float64, promo *model.PromoResult) Quote {
	if promo == nil {
		return Quote{Price: price, FinalPrice: price}
	}
	amount := DiscountAmount(price, promo.Discount, promo.DiscountType)
	return Quote{
		Price:          price,
		DiscountAmount: amount,
		FinalPrice:     FinalPrice(price, amount),
		PromoCode:      promo.Code,
	}
}

// ToMinorUnits converts an amount to the provider's minor units (paise).
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
