package budgets

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"opsdesk/schemas"
)

const MYSQL_LEGACY_LIMIT = 500

// MySQLLedger reads the pre-migration "lancamentos" table.
type MySQLLedger struct {
	db *sql.DB
}

func NewMySQLLedger(db *sql.DB) *MySQLLedger {
	return &MySQLLedger{db: db}
}

func (l *MySQLLedger) List(ctx context.Context, filter Filter) ([]schemas.TransactionOld, error) {
	query, args := legacyQuery(filter)

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query legacy transactions from MySQL: %w", err)
	}
	defer rows.Close()

	list := []schemas.TransactionOld{}
	for rows.Next() {
		var (
			tx          schemas.TransactionOld
			description sql.NullString
			paidTo      sql.NullString
			date        sql.NullTime
		)
		if err := rows.Scan(&tx.ID, &tx.Type, &tx.Category, &tx.Amount, &description, &paidTo, &date); err != nil {
			return nil, fmt.Errorf("failed to scan legacy transaction row: %w", err)
		}
		tx.Description = description.String
		tx.PaidTo = paidTo.String
		if date.Valid {
			tx.Date = &date.Time
		}
		list = append(list, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating legacy transaction rows: %w", err)
	}
	return list, nil
}

func legacyQuery(filter Filter) (string, []any) {
	var (
		where []string
		args  []any
	)
	if filter.Start != nil {
		where = append(where, "data >= ?")
		args = append(args, *filter.Start)
	}
	if filter.End != nil {
		where = append(where, "data < ?")
		args = append(args, *filter.End)
	}
	if filter.Type != "" {
		where = append(where, "tipo = ?")
		args = append(args, filter.Type)
	}
	if filter.Category != "" {
		where = append(where, "categoria = ?")
		args = append(args, filter.Category)
	}

	query := "SELECT id, tipo, categoria, valor, descricao, pago_para, data FROM lancamentos"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY data DESC LIMIT %d", MYSQL_LEGACY_LIMIT)
	return query, args
}
