package service

import (
	"context"
	"io"

	"costeo/report"
)

// ReportService renders menu costing and ingredient price lists.
type ReportService struct {
	menus       *MenuService
	ingredients *IngredientService
}

func NewReportService(menus *MenuService, ingredients *IngredientService) *ReportService {
	return &ReportService{menus: menus, ingredients: ingredients}
}

func (s *ReportService) MenuCosts(ctx context.Context, scope Scope, menuID uint) (*MenuPricing, error) {
	return s.menus.Pricing(ctx, scope, menuID)
}

// WriteMenuCosts writes the menu costing as a workbook and returns the menu name.
func (s *ReportService) WriteMenuCosts(ctx context.Context, scope Scope, menuID uint, w io.Writer) (string, error) {
	p, err := s.menus.Pricing(ctx, scope, menuID)
	if err != nil {
		return "", err
	}
	rows := make([]report.MenuCostRow, 0, len(p.Items))
	for _, it := range p.Items {
		rows = append(rows, report.MenuCostRow{
			Dish:           it.Dish,
			Cost:           it.Cost,
			SalePrice:      it.SalePrice,
			Profit:         it.Profit,
			MarginPercent:  it.MarginPercent,
			CostPercent:    it.CostPercent,
			SuggestedPrice: it.SuggestedPrice,
		})
	}
	return p.Name, report.WriteMenuCosts(w, rows)
}

func (s *ReportService) WriteIngredients(ctx context.Context, scope Scope, hotelID uint, w io.Writer) error {
	rows, err := s.ingredients.PriceList(ctx, scope, hotelID)
	if err != nil {
		return err
	}
	return report.WriteIngredients(w, rows)
}
