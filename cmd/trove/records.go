package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/trovehq/trove/internal/common"
	"github.com/trovehq/trove/internal/model"
)

func recordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records",
		Short: "Manage stored purchase records",
	}

	cmd.AddCommand(recordsAddCmd())
	cmd.AddCommand(recordsListCmd())
	cmd.AddCommand(recordsHistoryCmd())

	return cmd
}

func recordsAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a purchase record",
		RunE:  runRecordsAdd,
	}

	cmd.Flags().String("id", "", "Record ID (generated when omitted)")
	cmd.Flags().String("user", "", "Owning user ID (required)")
	cmd.Flags().String("name", "", "Product name (required)")
	cmd.Flags().Float64("price", 0, "Purchase price")
	cmd.Flags().String("date", "", "Purchase date (YYYY-MM-DD)")
	cmd.Flags().String("retailer", "", "Retailer name")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func runRecordsAdd(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	id, _ := cmd.Flags().GetString("id")
	userID, _ := cmd.Flags().GetString("user")
	name, _ := cmd.Flags().GetString("name")
	price, _ := cmd.Flags().GetFloat64("price")
	dateStr, _ := cmd.Flags().GetString("date")
	retailer, _ := cmd.Flags().GetString("retailer")

	if id == "" {
		id = common.UUIDProvider{}.NewID()
	}

	var purchaseDate time.Time
	if dateStr != "" {
		parsed, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return fmt.Errorf("invalid --date %q (want YYYY-MM-DD): %w", dateStr, err)
		}
		purchaseDate = parsed
	}

	store, err := openStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	rec := model.PurchaseRecord{
		ID:           id,
		UserID:       userID,
		ProductName:  name,
		Price:        price,
		PurchaseDate: purchaseDate,
		Retailer:     retailer,
		CreatedAt:    time.Now().UTC(),
	}
	if err := store.SaveRecords(ctx, []model.PurchaseRecord{rec}); err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}

	fmt.Printf("Saved record %s\n", id)
	return nil
}

func recordsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a user's active purchase records",
		RunE:  runRecordsList,
	}

	cmd.Flags().String("user", "", "Owning user ID (required)")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func runRecordsList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	userID, _ := cmd.Flags().GetString("user")

	store, err := openStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	records, err := store.GetRecordsForUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to list records: %w", err)
	}

	if len(records) == 0 {
		fmt.Printf("No active records for user %s.\n", userID)
		return nil
	}

	for _, rec := range records {
		date := "-"
		if !rec.PurchaseDate.IsZero() {
			date = rec.PurchaseDate.Format("2006-01-02")
		}
		fmt.Printf("%s  %-40s  %8.2f  %s  %s\n",
			rec.ID, rec.ProductName, rec.Price, date, rec.Retailer)
	}
	return nil
}

func recordsHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show a user's consolidation history",
		RunE:  runRecordsHistory,
	}

	cmd.Flags().String("user", "", "Owning user ID (required)")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func runRecordsHistory(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	userID, _ := cmd.Flags().GetString("user")

	store, err := openStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	entries, err := store.GetConsolidationLog(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load consolidation history: %w", err)
	}

	if len(entries) == 0 {
		fmt.Printf("No consolidation history for user %s.\n", userID)
		return nil
	}

	for _, entry := range entries {
		fmt.Printf("%s  scan %s: kept %s, archived [%s]\n",
			entry.CreatedAt.Format(time.RFC3339),
			entry.ScanID,
			entry.PrimaryID,
			strings.Join(entry.ArchivedIDs, ", "))
	}
	return nil
}
