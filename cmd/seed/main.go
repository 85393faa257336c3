package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/ikkim/minishop-backend/config"
	"github.com/ikkim/minishop-backend/internal/app/model"
	"github.com/ikkim/minishop-backend/internal/app/repository"
	"github.com/ikkim/minishop-backend/internal/db"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const batchSize = 500

// Column layout of the goods sheet; the first row is a header.
const (
	colName = iota
	colCategory
	colPrice
	colOldPrice
	colFreight
	colInventory
	colCover
	minColumns
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/seed/main.go <xlsx_file_path>")
	}
	filePath := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	categoryRepo := repository.NewCategoryRepository(db.GetDB())
	goodsRepo := repository.NewGoodsRepository(db.GetDB())

	categories, err := categoryRepo.FindAll()
	if err != nil {
		log.Fatal("Failed to load categories:", err)
	}
	categoryIDs := make(map[string]uint, len(categories))
	for _, c := range categories {
		categoryIDs[c.Name] = c.ID
	}

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	goods, err := readGoodsFromXLSX(filePath, categoryIDs)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Total goods to import: %d\n", len(goods))

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	if err := goodsRepo.BulkCreate(goods, batchSize); err != nil {
		log.Fatal("Failed to bulk create goods:", err)
	}

	fmt.Printf("Import completed successfully! Total goods imported: %d\n", len(goods))
}

func readGoodsFromXLSX(filePath string, categoryIDs map[string]uint) ([]model.Goods, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in XLSX file")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no data found in XLSX file")
	}

	var goods []model.Goods
	seen := make(map[string]bool)
	skipped := 0

	for i, row := range rows {
		if i == 0 {
			continue
		}

		g, err := parseGoodsRow(row, categoryIDs)
		if err != nil {
			fmt.Printf("  row %d skipped: %v\n", i+1, err)
			skipped++
			continue
		}

		key := fmt.Sprintf("%d|%s", g.CategoryID, g.Name)
		if seen[key] {
			skipped++
			continue
		}
		seen[key] = true
		goods = append(goods, *g)
	}

	fmt.Printf("\nSummary:\n")
	fmt.Printf("  Total rows: %d\n", len(rows)-1)
	fmt.Printf("  Valid goods: %d\n", len(goods))
	fmt.Printf("  Skipped rows: %d\n", skipped)

	return goods, nil
}

func parseGoodsRow(row []string, categoryIDs map[string]uint) (*model.Goods, error) {
	if len(row) < colInventory+1 {
		return nil, fmt.Errorf("expected at least %d columns, got %d", colInventory+1, len(row))
	}
	for len(row) < minColumns {
		row = append(row, "")
	}

	name := strings.TrimSpace(row[colName])
	if name == "" {
		return nil, fmt.Errorf("missing name")
	}

	categoryID, ok := categoryIDs[strings.TrimSpace(row[colCategory])]
	if !ok {
		return nil, fmt.Errorf("unknown category %q", row[colCategory])
	}

	price, err := parseMoney(row[colPrice])
	if err != nil {
		return nil, fmt.Errorf("price: %w", err)
	}

	oldPrice := price
	if s := strings.TrimSpace(row[colOldPrice]); s != "" {
		if oldPrice, err = parseMoney(s); err != nil {
			return nil, fmt.Errorf("old_price: %w", err)
		}
	}

	freight := decimal.Zero
	if s := strings.TrimSpace(row[colFreight]); s != "" {
		if freight, err = parseMoney(s); err != nil {
			return nil, fmt.Errorf("freight: %w", err)
		}
	}

	inventory, err := strconv.Atoi(strings.TrimSpace(row[colInventory]))
	if err != nil || inventory < 0 {
		return nil, fmt.Errorf("invalid inventory %q", row[colInventory])
	}

	return &model.Goods{
		CategoryID: categoryID,
		Name:       name,
		Cover:      strings.TrimSpace(row[colCover]),
		Price:      price,
		OldPrice:   oldPrice,
		Freight:    freight,
		Inventory:  inventory,
	}, nil
}

func parseMoney(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("negative amount %s", s)
	}
	return d.Round(2), nil
}
