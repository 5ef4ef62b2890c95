package helpers

import (
	"strings"

	"github.com/Masterminds/squirrel"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsPattern turns user text into an ILIKE pattern matching it anywhere
func ContainsPattern(q string) string {
	return "%" + likeEscaper.Replace(strings.TrimSpace(q)) + "%"
}

// ILikeAny matches q against any of the given columns, case-insensitively
func ILikeAny(q string, columns ...string) squirrel.Or {
	pattern := ContainsPattern(q)
	or := make(squirrel.Or, 0, len(columns))
	for _, col := range columns {
		or = append(or, squirrel.ILike{col: pattern})
	}
	return or
}

// PairsIn builds "(a = x AND b = y) OR ..." for composite key membership.
// An empty pair list yields a predicate that is always false.
func PairsIn(colA, colB string, pairs [][2]int64) squirrel.Sqlizer {
	if len(pairs) == 0 {
		return squirrel.Expr("1 = 0")
	}
	or := make(squirrel.Or, 0, len(pairs))
	for _, p := range pairs {
		or = append(or, squirrel.Eq{colA: p[0], colB: p[1]})
	}
	return or
}
