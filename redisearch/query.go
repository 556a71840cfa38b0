package redisearch

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/WiserTogether/sunburnt"
)

// translate renders a query as an FT.SEARCH query string. The empty query
// matches everything.
func (b *Backend) translate(q sunburnt.Query) (string, error) {
	preds := q.Predicates()
	if len(preds) == 0 {
		return "*", nil
	}

	parts := make([]string, 0, len(preds))
	for _, p := range preds {
		part, err := b.translatePredicate(p)
		if err != nil {
			return "", err
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, " "), nil
}

func (b *Backend) translatePredicate(p sunburnt.Predicate) (string, error) {
	ft, ok := b.schema.FieldType(p.Field)
	if !ok {
		return "", fmt.Errorf("field %q not in schema", p.Field)
	}

	switch p.Op {
	case sunburnt.OpEqual:
		if ft == FieldNumeric {
			v, err := numericValue(p.Value)
			if err != nil {
				return "", fmt.Errorf("field %q: %w", p.Field, err)
			}
			return fmt.Sprintf("@%s:[%s %s]", p.Field, v, v), nil
		}
		return fmt.Sprintf("@%s:{%s}", p.Field, tagEscaper.Replace(fmt.Sprint(p.Value))), nil

	case sunburnt.OpLessThan:
		if ft != FieldNumeric {
			return "", fmt.Errorf("field %q: range predicate requires a numeric field", p.Field)
		}
		v, err := numericValue(p.Value)
		if err != nil {
			return "", fmt.Errorf("field %q: %w", p.Field, err)
		}
		return fmt.Sprintf("@%s:[-inf (%s]", p.Field, v), nil

	default:
		return "", fmt.Errorf("field %q: unsupported operator %d", p.Field, p.Op)
	}
}

// numericValue renders a predicate value for a numeric range bound.
// Timestamps use epoch millis, matching the stored hash representation.
func numericValue(v any) (string, error) {
	switch x := v.(type) {
	case time.Time:
		return strconv.FormatInt(x.UnixMilli(), 10), nil
	case int:
		return strconv.Itoa(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32), nil
	default:
		return "", fmt.Errorf("value %v (%T) is not numeric", v, v)
	}
}

var tagEscaper = strings.NewReplacer(
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	" ", "\\ ",
)
