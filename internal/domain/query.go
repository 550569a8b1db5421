package domain

// Op is a predicate operator supported by the record store.
type Op string

const (
	OpEq    Op = "eq"
	OpILike Op = "ilike"
	OpGt    Op = "gt"
	OpGte   Op = "gte"
	OpLte   Op = "lte"
	OpIn    Op = "in"
)

// Cond is a single field/operator/value predicate. OpIn uses Values; every
// other operator uses Value.
type Cond struct {
	Field  string
	Op     Op
	Value  string
	Values []string
}

// Query describes one filtered read of a table: conjoined Where conditions,
// at most one OR group, an optional ordering key, and a result cap.
// A zero Query selects everything in store order.
type Query struct {
	Where      []Cond
	Or         []Cond // disjunction, ANDed with Where as a single group
	OrderBy    string
	Descending bool
	Limit      int
}

// Eq appends an equality condition and returns the query for chaining.
func (q Query) Eq(field, value string) Query {
	q.Where = append(q.Where, Cond{Field: field, Op: OpEq, Value: value})
	return q
}

// ILike appends a case-insensitive substring condition.
func (q Query) ILike(field, value string) Query {
	q.Where = append(q.Where, Cond{Field: field, Op: OpILike, Value: value})
	return q
}

// Gt appends a strictly-greater condition.
func (q Query) Gt(field, value string) Query {
	q.Where = append(q.Where, Cond{Field: field, Op: OpGt, Value: value})
	return q
}

// In appends a set-membership condition.
func (q Query) In(field string, values []string) Query {
	q.Where = append(q.Where, Cond{Field: field, Op: OpIn, Values: values})
	return q
}

// OrGroup sets the query's single OR group.
func (q Query) OrGroup(conds ...Cond) Query {
	q.Or = conds
	return q
}

// Order sets the ordering key and direction.
func (q Query) Order(field string, descending bool) Query {
	q.OrderBy = field
	q.Descending = descending
	return q
}

// Cap sets the result-count limit.
func (q Query) Cap(n int) Query {
	q.Limit = n
	return q
}
