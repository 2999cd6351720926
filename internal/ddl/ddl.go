package ddl

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/xwb1989/sqlparser"

	"github.com/turbolytics/hydrator/internal/config"
	"github.com/turbolytics/hydrator/internal/hydrate"
)

var ErrNotCreateTable = errors.New("not a create table statement")

/*
Column definitions map onto fields as follows:

  NOT NULL without a default      -> required
  NULL (or no null constraint)    -> nullable
  DEFAULT <literal>               -> default
  DEFAULT NULL                    -> default null
  DEFAULT CURRENT_TIMESTAMP, AUTO_INCREMENT -> optional, the database fills it
*/

// ColumnToField converts a parsed column definition into a config field.
func ColumnToField(col *sqlparser.ColumnDefinition) (config.Field, error) {
	f := config.Field{
		Name: col.Name.String(),
	}

	t, err := fieldType(col.Type.Type)
	if err != nil {
		return config.Field{}, fmt.Errorf("column %q: %w", f.Name, err)
	}
	if t != hydrate.TypeAny {
		f.Type = string(t)
	}

	notNull := bool(col.Type.NotNull)
	f.Nullable = !notNull

	def, hasDefault, generated, err := columnDefault(col.Type.Default, t)
	if err != nil {
		return config.Field{}, fmt.Errorf("column %q default: %w", f.Name, err)
	}
	if hasDefault {
		if err := f.Default.Encode(def); err != nil {
			return config.Field{}, fmt.Errorf("column %q default: %w", f.Name, err)
		}
	}

	f.Required = notNull && !hasDefault && !generated && !bool(col.Type.Autoincrement)
	return f, nil
}

func fieldType(sqlType string) (hydrate.FieldType, error) {
	switch strings.ToLower(sqlType) {
	case "bit", "tinyint", "smallint", "mediumint", "int", "integer", "bigint", "year":
		return hydrate.TypeInteger, nil
	case "float", "double", "real", "decimal", "numeric":
		return hydrate.TypeNumber, nil
	case "char", "varchar", "text", "tinytext", "mediumtext", "longtext",
		"enum", "set", "date", "time", "datetime", "timestamp":
		return hydrate.TypeString, nil
	case "bool", "boolean":
		return hydrate.TypeBool, nil
	case "json", "binary", "varbinary", "blob", "tinyblob", "mediumblob", "longblob":
		return hydrate.TypeAny, nil
	default:
		return "", fmt.Errorf("unsupported data type: %q", sqlType)
	}
}

// columnDefault returns the literal default of a column. generated is true
// when the database computes the value itself. Quoted defaults of numeric
// columns are parsed, since mysqldump quotes every default.
func columnDefault(v *sqlparser.SQLVal, t hydrate.FieldType) (def any, ok bool, generated bool, err error) {
	if v == nil {
		return nil, false, false, nil
	}

	s := string(v.Val)
	switch v.Type {
	case sqlparser.StrVal:
		switch t {
		case hydrate.TypeInteger:
			i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
			if err != nil {
				return nil, false, false, err
			}
			return i, true, false, nil
		case hydrate.TypeNumber:
			f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, false, false, err
			}
			return f, true, false, nil
		}
		return s, true, false, nil
	case sqlparser.IntVal:
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, false, false, err
		}
		return i, true, false, nil
	case sqlparser.FloatVal:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, false, false, err
		}
		return f, true, false, nil
	case sqlparser.ValArg:
		if strings.EqualFold(s, "null") {
			return nil, true, false, nil
		}
		return nil, false, true, nil
	}
	return nil, false, true, nil
}

// ParseCreateTable turns a CREATE TABLE statement into a record named after
// the table.
func ParseCreateTable(query string) (config.Record, error) {
	stmt, err := sqlparser.Parse(query)
	if err != nil {
		return config.Record{}, err
	}

	create, ok := stmt.(*sqlparser.DDL)
	if !ok || create.Action != sqlparser.CreateStr {
		return config.Record{}, ErrNotCreateTable
	}
	// the parser hands back a partial statement for DDL it cannot fully read
	if create.TableSpec == nil {
		return config.Record{}, fmt.Errorf("%w: unsupported table definition", ErrNotCreateTable)
	}

	r := config.Record{
		Name: create.NewName.Name.String(),
	}
	for _, col := range create.TableSpec.Columns {
		f, err := ColumnToField(col)
		if err != nil {
			return config.Record{}, err
		}
		r.Fields = append(r.Fields, f)
	}

	// fail on anything a spec would reject
	if _, err := r.Spec(); err != nil {
		return config.Record{}, err
	}
	return r, nil
}
