package domain

import "time"

// MatchRequest is the target product profile for one affinity run.
// Brand matches case-insensitively as a substring. Size is format-tolerant
// ("6" matches "06" and "Tam 6"). Gender "" or "Unissex" matches all.
// WindowDays bounds how far back purchase history counts; zero means the
// configured default.
type MatchRequest struct {
	Brand      string `json:"marca" binding:"required"`
	Size       string `json:"tamanho"`
	Gender     string `json:"genero"`
	Category   string `json:"categoria"`
	WindowDays int    `json:"janela_dias"`
}

// AffinityMatch is one customer identified as a likely buyer of the searched
// product profile. Unique per normalized phone within a run.
type AffinityMatch struct {
	CustomerName string    `json:"cliente_nome"`
	Phone        string    `json:"telefone"`
	Reason       string    `json:"motivo"`
	LastPurchase time.Time `json:"ultima_compra_data"`
	TotalSpent   float64   `json:"total_gasto_historico"`
}
