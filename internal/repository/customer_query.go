package repository

import (
	"fmt"
	"strings"

	appErrors "github.com/unclebandit/customer-address-backend/internal/errors"
	"github.com/unclebandit/customer-address-backend/internal/model"
)

// sortColumns is the allow-list for sort_by. Values are the qualified column names
// written into ORDER BY; caller input never reaches the statement text.
var sortColumns = map[string]string{
	"id":           "c.id",
	"first_name":   "c.first_name",
	"last_name":    "c.last_name",
	"phone_number": "c.phone_number",
}

var sortOrders = map[string]string{
	"ASC":  "ASC",
	"DESC": "DESC",
}

const (
	customerColumns = "c.id, c.first_name, c.last_name, c.phone_number"
	customersFrom   = " FROM customers c"
	addressesJoin   = " JOIN addresses a ON a.customer_id = c.id"
)

// IsSortColumn reports whether name is an accepted sort_by value.
func IsSortColumn(name string) bool {
	_, ok := sortColumns[name]
	return ok
}

// IsSortOrder reports whether order is an accepted order value (case-insensitive).
func IsSortOrder(order string) bool {
	_, ok := sortOrders[strings.ToUpper(order)]
	return ok
}

// customerQuery collects predicate/argument pairs for the customer listing and renders
// both the page query and the count query from the same predicate list.
type customerQuery struct {
	join       bool
	conditions []string
	args       []any
}

func newCustomerQuery(f model.CustomerFilter) *customerQuery {
	q := &customerQuery{join: f.HasAddressFilter()}

	if f.Search != "" {
		pattern := containsPattern(f.Search)
		q.where("(c.first_name ILIKE %s OR c.last_name ILIKE %s OR c.phone_number ILIKE %s)", pattern, pattern, pattern)
	}
	if f.City != "" {
		q.where("a.city ILIKE %s", containsPattern(f.City))
	}
	if f.State != "" {
		q.where("a.state ILIKE %s", containsPattern(f.State))
	}
	if f.PinCode != "" {
		q.where("a.pin_code ILIKE %s", containsPattern(f.PinCode))
	}
	return q
}

// where appends one predicate. Each %s in expr is replaced by the next positional
// placeholder and bound to the matching value.
func (q *customerQuery) where(expr string, values ...any) {
	placeholders := make([]any, len(values))
	for i, v := range values {
		q.args = append(q.args, v)
		placeholders[i] = fmt.Sprintf("$%d", len(q.args))
	}
	q.conditions = append(q.conditions, fmt.Sprintf(expr, placeholders...))
}

func (q *customerQuery) from() string {
	if q.join {
		return customersFrom + addressesJoin
	}
	return customersFrom
}

func (q *customerQuery) whereClause() string {
	if len(q.conditions) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(q.conditions, " AND ")
}

// countSQL counts distinct customers matching the predicates, independent of paging.
func (q *customerQuery) countSQL() (string, []any) {
	selectExpr := "SELECT COUNT(*)"
	if q.join {
		selectExpr = "SELECT COUNT(DISTINCT c.id)"
	}
	return selectExpr + q.from() + q.whereClause(), q.args
}

// pageSQL renders the page query. sortBy/order must already be allow-listed.
func (q *customerQuery) pageSQL(sortBy, order string, limit, offset int) (string, []any, error) {
	column, ok := sortColumns[sortBy]
	if !ok {
		return "", nil, appErrors.NewValidation("Invalid sort_by value %q.", sortBy)
	}
	direction, ok := sortOrders[strings.ToUpper(order)]
	if !ok {
		return "", nil, appErrors.NewValidation("Invalid order value %q.", order)
	}

	var sb strings.Builder
	sb.WriteString("SELECT " + customerColumns)
	sb.WriteString(q.from())
	sb.WriteString(q.whereClause())
	if q.join {
		sb.WriteString(" GROUP BY c.id")
	}
	sb.WriteString(" ORDER BY " + column + " " + direction)
	if column != "c.id" {
		sb.WriteString(", c.id ASC")
	}

	args := append([]any{}, q.args...)
	args = append(args, limit, offset)
	fmt.Fprintf(&sb, " LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	return sb.String(), args, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern turns user text into an ILIKE substring pattern that matches it literally.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
