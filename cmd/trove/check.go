package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/trovehq/trove/internal/engine"
	"github.com/trovehq/trove/internal/model"
)

func checkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check a candidate purchase against a user's existing records",
		Long: `Compare a newly captured purchase against a user's stored records
before inserting it. The verdict references the first stored record that
crosses the duplicate threshold, in storage order.`,
		RunE: runCheck,
	}

	cmd.Flags().String("user", "", "Owning user ID (required)")
	cmd.Flags().String("name", "", "Product name (required)")
	cmd.Flags().Float64("price", 0, "Purchase price")
	cmd.Flags().String("date", "", "Purchase date (YYYY-MM-DD)")
	cmd.Flags().String("retailer", "", "Retailer name")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func runCheck(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	userID, _ := cmd.Flags().GetString("user")
	name, _ := cmd.Flags().GetString("name")
	price, _ := cmd.Flags().GetFloat64("price")
	dateStr, _ := cmd.Flags().GetString("date")
	retailer, _ := cmd.Flags().GetString("retailer")

	var purchaseDate time.Time
	if dateStr != "" {
		parsed, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return fmt.Errorf("invalid --date %q (want YYYY-MM-DD): %w", dateStr, err)
		}
		purchaseDate = parsed
	}

	detCfg, err := detectorConfig()
	if err != nil {
		return err
	}

	store, err := openStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	engCfg := engine.DefaultConfig()
	engCfg.Detector = detCfg
	eng := engine.NewWithConfig(store, engCfg)

	candidate := &model.PurchaseRecord{
		UserID:       userID,
		ProductName:  name,
		Price:        price,
		PurchaseDate: purchaseDate,
		Retailer:     retailer,
	}

	verdict, err := eng.CheckNewRecord(ctx, candidate)
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	if !verdict.IsDuplicate {
		fmt.Println("No duplicate found.")
		return nil
	}

	fmt.Printf("Duplicate of record %s (confidence %.3f)\n", verdict.ExistingID, verdict.Confidence)
	if verdict.Reason != "" {
		fmt.Printf("  reason: %s\n", verdict.Reason)
	}
	fmt.Printf("  similarity: name=%.2f price=%.2f date=%.2f retailer=%.2f\n",
		verdict.Similarity.Name, verdict.Similarity.Price,
		verdict.Similarity.Date, verdict.Similarity.Retailer)
	return nil
}
