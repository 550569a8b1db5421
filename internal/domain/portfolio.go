package domain

// SortKey identifies a sortable column of the portfolio table.
type SortKey string

const (
	SortByCustomer     SortKey = "cliente"
	SortBySalesperson  SortKey = "vendedor"
	SortByTotalSpent   SortKey = "total_gasto"
	SortBySaleCount    SortKey = "qtd_vendas"
	SortByItemCount    SortKey = "qtd_produtos"
	SortByLastPurchase SortKey = "ultima_compra"
)

// ValidSortKey reports whether k names a sortable column.
func ValidSortKey(k SortKey) bool {
	switch k {
	case SortByCustomer, SortBySalesperson, SortByTotalSpent,
		SortBySaleCount, SortByItemCount, SortByLastPurchase:
		return true
	}
	return false
}

// PortfolioQuery selects, orders and windows the customer feed.
// Salesperson "" (or "Todos") means no filter, which also enables the
// grouped view. Page is 1-based.
type PortfolioQuery struct {
	Salesperson string
	SortKey     SortKey
	Descending  bool
	Page        int
}

// PortfolioView is one displayed slice of the portfolio plus the metrics the
// caller renders alongside it. Rows is the page window; Top by lifetime spend
// is computed within the filter scope regardless of the active sort.
type PortfolioView struct {
	Rows           []CustomerActivity `json:"rows"`
	Top            []CustomerActivity `json:"top"`
	Salespeople    []string           `json:"vendedores"`
	TotalCustomers int                `json:"total_clientes"`
	TotalRevenue   float64            `json:"faturamento_total"`
	Page           int                `json:"pagina"`
	PageCount      int                `json:"total_paginas"`
	Grouped        bool               `json:"agrupado"`
}

// DashboardStats is the cached KPI snapshot served to the dashboard.
type DashboardStats struct {
	Revenue         float64             `json:"faturamento"`
	EstimatedProfit float64             `json:"lucro_estimado"`
	OrderCount      int                 `json:"total_pedidos"`
	Categories      []CategoryAnalytics `json:"categorias"`
	Evolution       []MonthlySales      `json:"evolucao"`
}
