package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/modainteligente/backend/internal/domain"
)

// Store is a read-only record store over a direct Postgres connection. It
// reads the same tables and views as the hosted PostgREST endpoint, for
// deployments that sit next to the database.
type Store struct {
	db *sql.DB
}

// Open connects to Postgres and verifies the connection.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTransport, err)
	}
	return db, nil
}

// NewStore creates a store over an open connection pool.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Products implements domain.RecordStore.
func (s *Store) Products(ctx context.Context, q domain.Query) ([]domain.Product, error) {
	query, args := buildSelect("gemini_produtos",
		[]string{"sku", "nome_produto", "categoria_produto", "departamento", "marca", "tamanho", "cor", "genero", "valor_venda", "quantidade_estoque"}, q)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var out []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.SKU, &p.Name, &p.Category, &p.Department, &p.Brand, &p.Size, &p.Color, &p.Gender, &p.ListPrice, &p.StockQty); err != nil {
			return nil, classify(err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// SaleItems implements domain.RecordStore.
func (s *Store) SaleItems(ctx context.Context, q domain.Query) ([]domain.SaleLineItem, error) {
	query, args := buildSelect("gemini_vendas_itens",
		[]string{"movimentacao", "sku", "quantidade", "valor", "tamanho", "cor", "nome", "vendedor", "data"}, q)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var out []domain.SaleLineItem
	for rows.Next() {
		var it domain.SaleLineItem
		if err := rows.Scan(&it.TransactionID, &it.SKU, &it.Quantity, &it.LineValue, &it.Size, &it.Color, &it.CustomerName, &it.Salesperson, &it.OccurredAt); err != nil {
			return nil, classify(err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// SaleHeaders implements domain.RecordStore.
func (s *Store) SaleHeaders(ctx context.Context, q domain.Query) ([]domain.SaleHeader, error) {
	query, args := buildSelect("gemini_vendas_geral",
		[]string{"movimentacao", "nome", "telefone", "total_venda", "tipo_operacao", "vendedor", "data"}, q)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var out []domain.SaleHeader
	for rows.Next() {
		var h domain.SaleHeader
		if err := rows.Scan(&h.TransactionID, &h.CustomerName, &h.Phone, &h.Total, &h.Operation, &h.Salesperson, &h.OccurredAt); err != nil {
			return nil, classify(err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// CustomerActivities implements domain.RecordStore.
func (s *Store) CustomerActivities(ctx context.Context, q domain.Query) ([]domain.CustomerActivity, error) {
	query, args := buildSelect("gemini_vw_relatorio_carteira_clientes",
		[]string{"cliente", "vendedor_responsavel", "ultimo_vendedor", "total_gasto_acumulado", "qtd_produtos_total", "qtd_vendas", "data_ultima_compra", "ultimas_preferencias", "telefone"}, q)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var out []domain.CustomerActivity
	for rows.Next() {
		var a domain.CustomerActivity
		if err := rows.Scan(&a.Customer, &a.PrimarySalesperson, &a.LastSalesperson, &a.TotalSpent, &a.ItemCount, &a.SaleCount, &a.LastPurchase, &a.RecentPreferences, &a.Phone); err != nil {
			return nil, classify(err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// CustomerRanking implements domain.RecordStore.
func (s *Store) CustomerRanking(ctx context.Context, q domain.Query) ([]domain.RankedCustomer, error) {
	query, args := buildSelect("gemini_vw_ranking_clientes",
		[]string{"cliente_nome", "telefone", "total_gasto", "ultima_compra", "dias_sem_comprar"}, q)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var out []domain.RankedCustomer
	for rows.Next() {
		var r domain.RankedCustomer
		if err := rows.Scan(&r.Name, &r.Phone, &r.TotalSpent, &r.LastPurchase, &r.InactiveDays); err != nil {
			return nil, classify(err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// CategoryAnalytics implements domain.RecordStore.
func (s *Store) CategoryAnalytics(ctx context.Context, q domain.Query) ([]domain.CategoryAnalytics, error) {
	query, args := buildSelect("gemini_vw_analytics_categorias",
		[]string{"categoria_produto", "qtd_pedidos", "pecas_vendidas", "faturamento_bruto", "lucro_estimado", "preco_medio_peca"}, q)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var out []domain.CategoryAnalytics
	for rows.Next() {
		var c domain.CategoryAnalytics
		if err := rows.Scan(&c.Category, &c.OrderCount, &c.UnitsSold, &c.GrossRevenue, &c.EstimatedProfit, &c.AvgUnitPrice); err != nil {
			return nil, classify(err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// MonthlySales implements domain.RecordStore.
func (s *Store) MonthlySales(ctx context.Context, q domain.Query) ([]domain.MonthlySales, error) {
	query, args := buildSelect("gemini_vw_analise_mensal",
		[]string{"mes_ano", "total_atendimentos", "faturamento_liquido_real", "tipo_operacao"}, q)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var out []domain.MonthlySales
	for rows.Next() {
		var m domain.MonthlySales
		if err := rows.Scan(&m.Month, &m.SaleCount, &m.NetRevenue, &m.Operation); err != nil {
			return nil, classify(err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// buildSelect compiles a domain.Query into a parameterized SELECT.
func buildSelect(table string, columns []string, q domain.Query) (string, []interface{}) {
	var sb strings.Builder
	var args []interface{}

	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(columns, ", "))
	sb.WriteString(" FROM ")
	sb.WriteString(table)

	var parts []string
	for _, cond := range q.Where {
		part, arg := condSQL(cond, len(args)+1)
		parts = append(parts, part)
		args = append(args, arg)
	}
	if len(q.Or) > 0 {
		var orParts []string
		for _, cond := range q.Or {
			part, arg := condSQL(cond, len(args)+1)
			orParts = append(orParts, part)
			args = append(args, arg)
		}
		parts = append(parts, "("+strings.Join(orParts, " OR ")+")")
	}
	if len(parts) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(parts, " AND "))
	}

	if q.OrderBy != "" {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(q.OrderBy)
		if q.Descending {
			sb.WriteString(" DESC")
		} else {
			sb.WriteString(" ASC")
		}
	}

	if q.Limit > 0 {
		fmt.Fprintf(&sb, " LIMIT %d", q.Limit)
	}

	return sb.String(), args
}

// condSQL renders one predicate with its placeholder index and argument.
func condSQL(cond domain.Cond, n int) (string, interface{}) {
	switch cond.Op {
	case domain.OpILike:
		return fmt.Sprintf("%s ILIKE $%d", cond.Field, n), "%" + cond.Value + "%"
	case domain.OpIn:
		return fmt.Sprintf("%s = ANY($%d)", cond.Field, n), pq.Array(cond.Values)
	case domain.OpGt:
		return fmt.Sprintf("%s > $%d", cond.Field, n), cond.Value
	case domain.OpGte:
		return fmt.Sprintf("%s >= $%d", cond.Field, n), cond.Value
	case domain.OpLte:
		return fmt.Sprintf("%s <= $%d", cond.Field, n), cond.Value
	default:
		return fmt.Sprintf("%s = $%d", cond.Field, n), cond.Value
	}
}

// classify maps database errors to the store error taxonomy: server-side
// rejections are query errors, everything else is transport.
func classify(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return fmt.Errorf("%w: %s", domain.ErrQuery, pqErr.Message)
	}
	return fmt.Errorf("%w: %v", domain.ErrTransport, err)
}
