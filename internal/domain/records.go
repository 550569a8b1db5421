package domain

import "time"

// Product is one row of the read-only catalog (gemini_produtos).
type Product struct {
	SKU        string  `json:"sku"`
	Name       string  `json:"nome_produto"`
	Category   string  `json:"categoria_produto"`
	Department string  `json:"departamento"`
	Brand      string  `json:"marca"`
	Size       string  `json:"tamanho"`
	Color      string  `json:"cor"`
	Gender     string  `json:"genero"`
	ListPrice  float64 `json:"valor_venda"`
	StockQty   int     `json:"quantidade_estoque"`
}

// SaleLineItem is one sold line (gemini_vendas_itens). TransactionID ties it
// to exactly one SaleHeader. Size is the size as recorded at the register and
// may differ in formatting from the catalog size ("6" vs "06" vs "Tam 6").
type SaleLineItem struct {
	TransactionID string    `json:"movimentacao"`
	SKU           string    `json:"sku"`
	Quantity      int       `json:"quantidade"`
	LineValue     float64   `json:"valor"`
	Size          string    `json:"tamanho"`
	Color         string    `json:"cor"`
	CustomerName  string    `json:"nome"`
	Salesperson   string    `json:"vendedor"`
	OccurredAt    time.Time `json:"data"`
}

// SaleHeader is one sale event (gemini_vendas_geral), unique per TransactionID.
type SaleHeader struct {
	TransactionID string    `json:"movimentacao"`
	CustomerName  string    `json:"nome"`
	Phone         string    `json:"telefone"`
	Total         float64   `json:"total_venda"`
	Operation     string    `json:"tipo_operacao"`
	Salesperson   string    `json:"vendedor"`
	OccurredAt    time.Time `json:"data"`
}

// CustomerActivity is one row of the portfolio view
// (gemini_vw_relatorio_carteira_clientes): lifetime aggregates per customer.
// LastPurchase is an ISO date string ("2024-03-15"); ISO dates sort
// lexicographically, so the view's date stays a string.
type CustomerActivity struct {
	Customer           string  `json:"cliente"`
	PrimarySalesperson string  `json:"vendedor_responsavel"`
	LastSalesperson    string  `json:"ultimo_vendedor"`
	TotalSpent         float64 `json:"total_gasto_acumulado"`
	ItemCount          int     `json:"qtd_produtos_total"`
	SaleCount          int     `json:"qtd_vendas"`
	LastPurchase       string  `json:"data_ultima_compra"`
	RecentPreferences  string  `json:"ultimas_preferencias"`
	Phone              string  `json:"telefone"`
}

// RankedCustomer is one row of the inactivity ranking view
// (gemini_vw_ranking_clientes), ordered by InactiveDays descending at source.
type RankedCustomer struct {
	Name         string  `json:"cliente_nome"`
	Phone        string  `json:"telefone"`
	TotalSpent   float64 `json:"total_gasto"`
	LastPurchase string  `json:"ultima_compra"`
	InactiveDays int     `json:"dias_sem_comprar"`
}

// CategoryAnalytics is one row of gemini_vw_analytics_categorias.
type CategoryAnalytics struct {
	Category        string  `json:"categoria_produto"`
	OrderCount      int     `json:"qtd_pedidos"`
	UnitsSold       int     `json:"pecas_vendidas"`
	GrossRevenue    float64 `json:"faturamento_bruto"`
	EstimatedProfit float64 `json:"lucro_estimado"`
	AvgUnitPrice    float64 `json:"preco_medio_peca"`
}

// MonthlySales is one row of gemini_vw_analise_mensal. Month is "YYYY-MM".
type MonthlySales struct {
	Month      string  `json:"mes_ano"`
	SaleCount  int     `json:"total_atendimentos"`
	NetRevenue float64 `json:"faturamento_liquido_real"`
	Operation  string  `json:"tipo_operacao"`
}
