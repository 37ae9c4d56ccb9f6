package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"
	"gorm.io/gorm"
)

// ShoppingListLinesPerPage is the fixed page break of the rendered
// document.
const ShoppingListLinesPerPage = 37

// ShoppingListFilename is the attachment name served to the client.
const ShoppingListFilename = "shopping_list.pdf"

// ShoppingItem is one merged line of the shopping list: all cart recipes
// referencing the same ingredient collapse into a single summed amount.
type ShoppingItem struct {
	Name   string
	Unit   string
	Amount int
}

// ShoppingListService aggregates ingredient amounts across every recipe
// in a user's cart and renders the result as a paginated PDF.
type ShoppingListService struct {
	db *gorm.DB
}

func NewShoppingListService(db *gorm.DB) *ShoppingListService {
	return &ShoppingListService{db: db}
}

// Aggregate sums ingredient amounts over the user's cart recipes, grouped
// by ingredient name and unit, sorted ascending by raw ingredient name.
// An empty cart yields an empty slice.
func (s *ShoppingListService) Aggregate(ctx context.Context, userID uuid.UUID) ([]ShoppingItem, error) {
	var items []ShoppingItem
	err := s.db.WithContext(ctx).
		Table("ingredient_amounts").
		Select("ingredients.name AS name, ingredients.measurement_unit AS unit, SUM(ingredient_amounts.amount) AS amount").
		Joins("JOIN ingredients ON ingredients.id = ingredient_amounts.ingredient_id").
		Joins("JOIN shopping_cart_entries ON shopping_cart_entries.recipe_id = ingredient_amounts.recipe_id").
		Where("shopping_cart_entries.user_id = ?", userID).
		Group("ingredients.name, ingredients.measurement_unit").
		Order("ingredients.name ASC").
		Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// FormatLines renders the document body, one line per merged ingredient.
func FormatLines(items []ShoppingItem) []string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = fmt.Sprintf("%s(%s) - %d", capitalize(item.Name), item.Unit, item.Amount)
	}
	return lines
}

// PaginateLines chunks lines into pages of perPage lines. Zero lines
// still produce a single empty page so the document is always valid.
func PaginateLines(lines []string, perPage int) [][]string {
	if len(lines) == 0 {
		return [][]string{{}}
	}
	var pages [][]string
	for start := 0; start < len(lines); start += perPage {
		end := start + perPage
		if end > len(lines) {
			end = len(lines)
		}
		pages = append(pages, lines[start:end])
	}
	return pages
}

// BuildDocument aggregates the user's cart and renders the PDF bytes.
func (s *ShoppingListService) BuildDocument(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	items, err := s.Aggregate(ctx, userID)
	if err != nil {
		return nil, err
	}
	return RenderShoppingListPDF(FormatLines(items))
}

// RenderShoppingListPDF writes the lines into a letter-format PDF,
// breaking to a fresh page every ShoppingListLinesPerPage lines.
func RenderShoppingListPDF(lines []string) ([]byte, error) {
	pdf := gofpdf.New("P", "pt", "Letter", "")
	pdf.SetFont("Helvetica", "", 15)

	for _, page := range PaginateLines(lines, ShoppingListLinesPerPage) {
		pdf.AddPage()
		pdf.SetXY(72, 72)
		for _, line := range page {
			pdf.CellFormat(0, 18, line, "", 1, "L", false, 0, "")
			pdf.SetX(72)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// capitalize upper-cases the first rune and lower-cases the rest, the way
// the rendered list has always displayed ingredient names.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(strings.ToLower(s))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
