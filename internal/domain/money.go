package domain

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Money values leave the process as strings with exactly two decimal places.
// Decoding keeps decimal's default behaviour, which accepts both forms.

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func (p Product) MarshalJSON() ([]byte, error) {
	type plain Product
	return json.Marshal(struct {
		plain
		Price string `json:"price"`
	}{plain(p), money(p.Price)})
}

func (s Sale) MarshalJSON() ([]byte, error) {
	type plain Sale
	return json.Marshal(struct {
		plain
		TotalAmount string `json:"total_amount"`
	}{plain(s), money(s.TotalAmount)})
}

// SaleWithItems needs its own encoder; the one promoted from Sale would drop
// the items.
func (s SaleWithItems) MarshalJSON() ([]byte, error) {
	type plain Sale
	items := s.Items
	if items == nil {
		items = []SaleItem{}
	}
	return json.Marshal(struct {
		plain
		TotalAmount string     `json:"total_amount"`
		Items       []SaleItem `json:"items"`
	}{plain(s.Sale), money(s.TotalAmount), items})
}

func (i SaleItem) MarshalJSON() ([]byte, error) {
	type plain SaleItem
	return json.Marshal(struct {
		plain
		UnitPrice  string `json:"unit_price"`
		TotalPrice string `json:"total_price"`
	}{plain(i), money(i.UnitPrice), money(i.TotalPrice)})
}

func (s SalesSummary) MarshalJSON() ([]byte, error) {
	type plain SalesSummary
	return json.Marshal(struct {
		plain
		TotalAmount string `json:"total_amount"`
		AverageSale string `json:"average_sale"`
	}{plain(s), money(s.TotalAmount), money(s.AverageSale)})
}

func (b BestSellingProduct) MarshalJSON() ([]byte, error) {
	type plain BestSellingProduct
	return json.Marshal(struct {
		plain
		TotalRevenue string `json:"total_revenue"`
	}{plain(b), money(b.TotalRevenue)})
}

func (i InventoryReportItem) MarshalJSON() ([]byte, error) {
	type plain InventoryReportItem
	return json.Marshal(struct {
		plain
		Price      string `json:"price"`
		StockValue string `json:"stock_value"`
	}{plain(i), money(i.Price), money(i.StockValue())})
}
