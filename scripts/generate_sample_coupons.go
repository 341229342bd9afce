//go:build ignore

package main

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"lms-client/internal/model"
)

// generateSampleCoupons writes a gzipped JSON-lines coupon import file for
// 'lms admin coupon import'. Lines 1-4 are valid; the rest each break one rule.
func main() {
	dataDir := "data/coupons"

	// Create directory if it doesn't exist
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	from := time.Now().UTC().Truncate(24 * time.Hour)
	until := from.AddDate(0, 3, 0)

	drafts := []model.CouponDraft{
		{Code: "WELCOME10", Description: "10% off for new learners", DiscountType: model.DiscountPercentage, DiscountValue: 10, ValidFrom: from, ValidUntil: until, PerUserLimit: 1, IsActive: true, IsGlobal: true},
		{Code: "SAVE20", Description: "20% off any course", DiscountType: model.DiscountPercentage, DiscountValue: 20, ValidFrom: from, ValidUntil: until, UsageLimit: 500, PerUserLimit: 1, IsActive: true, IsGlobal: true},
		{Code: "FLAT200", Description: "₹200 off", DiscountType: model.DiscountFixed, DiscountValue: 200, ValidFrom: from, ValidUntil: until, MinPurchaseAmount: 999, PerUserLimit: 1, IsActive: true, IsGlobal: true},
		{Code: "GOLANG50", Description: "Half price Go course", DiscountType: model.DiscountPercentage, DiscountValue: 50, ValidFrom: from, ValidUntil: until, UsageLimit: 50, PerUserLimit: 1, IsActive: true, ApplicableCourses: []string{"go-for-beginners"}},
		{Code: "", Description: "missing code", DiscountType: model.DiscountPercentage, DiscountValue: 10, ValidFrom: from, ValidUntil: until},
		{Code: "TOOMUCH", Description: "over 100 percent", DiscountType: model.DiscountPercentage, DiscountValue: 150, ValidFrom: from, ValidUntil: until},
		{Code: "BACKWARDS", Description: "ends before it starts", DiscountType: model.DiscountFixed, DiscountValue: 100, ValidFrom: until, ValidUntil: from},
		{Code: "NEGATIVE", Description: "negative usage limit", DiscountType: model.DiscountFixed, DiscountValue: 100, ValidFrom: from, ValidUntil: until, UsageLimit: -1},
	}

	filePath := filepath.Join(dataDir, "coupons.jsonl.gz")
	if err := createCouponFile(filePath, drafts); err != nil {
		log.Fatalf("Failed to create %s: %v", filePath, err)
	}

	fmt.Printf("Created %s with %d drafts\n", filePath, len(drafts))
	fmt.Println("\nValid drafts: WELCOME10, SAVE20, FLAT200, GOLANG50")
	fmt.Println("Invalid drafts: line 5 (no code), TOOMUCH, BACKWARDS, NEGATIVE")
	fmt.Printf("\nTry: lms admin coupon import -dry-run %s\n", filePath)
}

func createCouponFile(filePath string, drafts []model.CouponDraft) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	defer gzipWriter.Close()

	enc := json.NewEncoder(gzipWriter)
	for _, draft := range drafts {
		if err := enc.Encode(draft); err != nil {
			return fmt.Errorf("failed to write coupon: %w", err)
		}
	}

	return nil
}
