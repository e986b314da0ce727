package sqldb

import (
	"fmt"
	"regexp"
	"strings"

	"customer-notes/internal/errs"
	"customer-notes/internal/model"
)

// TimeLayout формат хранения времени: фиксированная ширина, UTC.
// Лексикографический порядок строк совпадает с порядком времени.
const TimeLayout = "2006-01-02T15:04:05.000000Z"

const noteColumns = "id, titulo, contenido, cliente, clientPhone, noteType, estado, fecha_creacion, fecha_modificacion"

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ValidateIdentifier проверяет имя таблицы: это единственное значение, которое подставляется в текст запроса
func ValidateIdentifier(name string) error {
	if !identifierPattern.MatchString(name) {
		return errs.New(errs.Validation, fmt.Sprintf("invalid table identifier %q", name))
	}
	return nil
}

// escapeLike экранирует спецсимволы LIKE, чтобы ввод пользователя искался как подстрока
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// statements шаблоны запросов для одной таблицы, собираются один раз
type statements struct {
	table      string
	insert     string
	selectByID string
	update     string
	setStatus  string
	stats      string
	recent     string
	coverage   string
	describe   string
}

func newStatements(table string) (statements, error) {
	if err := ValidateIdentifier(table); err != nil {
		return statements{}, err
	}
	t := `"` + table + `"`
	active := fmt.Sprintf("estado = '%s'", model.StatusActive)

	return statements{
		table: table,
		insert: "INSERT INTO " + t +
			" (titulo, contenido, cliente, clientPhone, noteType, estado, fecha_creacion, fecha_modificacion)" +
			" VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		selectByID: "SELECT " + noteColumns + " FROM " + t + " WHERE id = ? AND " + active,
		update: "UPDATE " + t +
			" SET titulo = ?, contenido = ?, cliente = ?, clientPhone = ?, noteType = ?, estado = ?, fecha_modificacion = ?" +
			" WHERE id = ? AND " + active,
		setStatus: "UPDATE " + t + " SET estado = ?, fecha_modificacion = ? WHERE id = ? AND " + active,
		stats: "SELECT estado, COUNT(*) AS total," +
			" COALESCE(SUM(CASE WHEN fecha_creacion >= ? AND fecha_creacion < ? THEN 1 ELSE 0 END), 0) AS hoy" +
			" FROM " + t + " GROUP BY estado ORDER BY estado",
		recent: "SELECT " + noteColumns + " FROM " + t + " ORDER BY fecha_creacion DESC, id DESC LIMIT ?",
		coverage: "SELECT COUNT(*) AS total," +
			" COALESCE(SUM(CASE WHEN clientPhone <> '' THEN 1 ELSE 0 END), 0) AS with_phone," +
			" COALESCE(SUM(CASE WHEN cliente <> '' THEN 1 ELSE 0 END), 0) AS with_customer" +
			" FROM " + t + " WHERE " + active,
		describe: `SELECT name, type, "notnull" AS not_null, COALESCE(dflt_value, '') AS dflt_value, pk FROM pragma_table_info(?) ORDER BY cid`,
	}, nil
}

// list строит выборку активных заметок с необязательными условиями.
// Значения пользователя передаются только как аргументы.
func (s statements) list(f model.Filter) (string, []any) {
	conditions := []string{fmt.Sprintf("estado = '%s'", model.StatusActive)}
	var args []any

	if f.Customer != "" {
		conditions = append(conditions, `cliente LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(f.Customer)+"%")
	}
	if f.Title != "" {
		conditions = append(conditions, `titulo LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(f.Title)+"%")
	}

	query := "SELECT " + noteColumns + ` FROM "` + s.table + `" WHERE ` +
		strings.Join(conditions, " AND ") +
		" ORDER BY fecha_creacion DESC, id DESC"

	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	return query, args
}
