package commands

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/schema-forge/cli/internal/ui"
	"github.com/satishbabariya/schema-forge/migrate/executor"
	migratesql "github.com/satishbabariya/schema-forge/migrate/sqlgen"
	"github.com/satishbabariya/schema-forge/query/filter"
	"github.com/satishbabariya/schema-forge/query/resolve"
	querysql "github.com/satishbabariya/schema-forge/query/sqlgen"
	"github.com/satishbabariya/schema-forge/schema"
)

var queryCmd = &cobra.Command{
	Use:   "query <Schema> [files or dirs...]",
	Short: "Compile a query to SQL and optionally run it",
	Long: `Compile a query to SQL and optionally run it.

Conditions are path<op>value with op one of = != > >= < <= ~= (contains)
and ^= (starts with). Values are read as the type of the field; null
matches missing values. All conditions must hold.`,
	Example: `  schemaforge query Contact --where company.industry=saas --where score>=10 --order name:desc --limit 20
  schemaforge query Contact --where name~=ada --run`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

var (
	queryWhere  []string
	queryOrder  []string
	queryLimit  int
	queryOffset int
	queryRun    bool
)

func init() {
	queryCmd.Flags().StringArrayVar(&queryWhere, "where", nil, "condition path<op>value (repeatable)")
	queryCmd.Flags().StringArrayVar(&queryOrder, "order", nil, "sort by path[:asc|:desc] (repeatable)")
	queryCmd.Flags().IntVar(&queryLimit, "limit", 0, "maximum number of rows")
	queryCmd.Flags().IntVar(&queryOffset, "offset", 0, "rows to skip")
	queryCmd.Flags().BoolVar(&queryRun, "run", false, "execute against database_url and print the rows")

	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	batch, err := loadBatch(args[1:])
	if err != nil {
		return err
	}
	q, err := buildQuery(batch, schema.SchemaName(args[0]), queryWhere, queryOrder)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("limit") {
		q = q.WithLimit(queryLimit)
	}
	if cmd.Flags().Changed("offset") {
		q = q.WithOffset(queryOffset)
	}

	dialect, err := migratesql.ParseDialect(cfg.Provider)
	if err != nil {
		return err
	}
	st, err := querysql.NewCompiler(dialect, batch).Select(q)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, st.SQL)
	for i, arg := range st.Args {
		fmt.Fprintf(out, "  %s = %v\n", dialect.Placeholder(i+1), arg)
	}
	if !queryRun {
		return nil
	}

	if cfg.DatabaseURL == "" {
		return fmt.Errorf("database_url is not set")
	}
	db, _, err := executor.Open(cfg.Provider, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()
	rows, err := db.QueryContext(cmd.Context(), st.SQL, st.Args...)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()
	return printRows(rows)
}

func printRows(rows *sql.Rows) error {
	cols, err := rows.Columns()
	if err != nil {
		return err
	}
	var table [][]string
	for rows.Next() {
		vals := make([]sql.NullString, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return err
		}
		row := make([]string, len(cols))
		for i, v := range vals {
			if v.Valid {
				row[i] = v.String
			} else {
				row[i] = "NULL"
			}
		}
		table = append(table, row)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if err := ui.PrintTable(cols, table); err != nil {
		return err
	}
	ui.PrintInfo("%d row(s)", len(table))
	return nil
}

// conditionOps are tried longest first so that >= is not read as >.
var conditionOps = []string{"!=", ">=", "<=", "~=", "^=", "=", ">", "<"}

// buildQuery turns --where and --order flags into a query over root.
func buildQuery(batch []schema.SchemaDefinition, root schema.SchemaName, where, order []string) (filter.Query, error) {
	q := filter.NewQuery(root)
	var conds []filter.Filter
	for _, w := range where {
		f, err := parseCondition(batch, root, w)
		if err != nil {
			return filter.Query{}, err
		}
		conds = append(conds, f)
	}
	switch len(conds) {
	case 0:
	case 1:
		q = q.Where(conds[0])
	default:
		q = q.Where(filter.AllOf(conds...))
	}

	for _, o := range order {
		raw, dir, _ := strings.Cut(o, ":")
		path, err := filter.ParsePath(raw)
		if err != nil {
			return filter.Query{}, err
		}
		switch strings.ToLower(dir) {
		case "", "asc":
			q = q.OrderBy(path, filter.Asc)
		case "desc":
			q = q.OrderBy(path, filter.Desc)
		default:
			return filter.Query{}, fmt.Errorf("invalid sort direction %q in %q", dir, o)
		}
	}
	return q, nil
}

func parseCondition(batch []schema.SchemaDefinition, root schema.SchemaName, cond string) (filter.Filter, error) {
	idx, op := -1, ""
	for i := 0; i < len(cond) && idx < 0; i++ {
		for _, candidate := range conditionOps {
			if strings.HasPrefix(cond[i:], candidate) {
				idx, op = i, candidate
				break
			}
		}
	}
	if idx <= 0 {
		return nil, fmt.Errorf("invalid condition %q: want path<op>value", cond)
	}
	path, err := filter.ParsePath(cond[:idx])
	if err != nil {
		return nil, err
	}
	raw := cond[idx+len(op):]

	switch op {
	case "~=":
		return filter.ContainsText(path, raw), nil
	case "^=":
		return filter.HasPrefix(path, raw), nil
	}

	res, err := resolve.Resolve(batch, root, path)
	if err != nil {
		return nil, err
	}
	v, err := parseValue(res.Type(), raw)
	if err != nil {
		return nil, fmt.Errorf("invalid value in %q: %w", cond, err)
	}
	switch op {
	case "=":
		return filter.Eq(path, v), nil
	case "!=":
		return filter.Ne(path, v), nil
	case ">":
		return filter.Gt(path, v), nil
	case ">=":
		return filter.Gte(path, v), nil
	case "<":
		return filter.Lt(path, v), nil
	default:
		return filter.Lte(path, v), nil
	}
}

// parseValue reads raw as a literal of the field type t.
func parseValue(t schema.FieldType, raw string) (filter.Value, error) {
	if raw == "null" {
		return filter.Null{}, nil
	}
	switch t.Kind() {
	case schema.KindInteger:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, err
		}
		return filter.Integer(n), nil
	case schema.KindFloat:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, err
		}
		return filter.Float(f), nil
	case schema.KindBoolean:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, err
		}
		return filter.Boolean(b), nil
	case schema.KindDateTime:
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, err
		}
		return filter.DateTime(ts), nil
	}
	return filter.Text(raw), nil
}
