package format

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

var monthsRU = [...]string{"января", "февраля", "марта", "апреля", "мая", "июня", "июля", "августа", "сентября", "октября", "ноября", "декабря"}

var monthsKK = [...]string{"қаңтар", "ақпан", "наурыз", "сәуір", "мамыр", "маусым", "шілде", "тамыз", "қыркүйек", "қазан", "қараша", "желтоқсан"}

// Date formats t as a long calendar date in lang. Unknown languages get the
// English form; the zero time yields "".
func Date(t time.Time, lang string) string {
	if t.IsZero() {
		return ""
	}
	switch strings.ToLower(lang) {
	case "ru":
		return fmt.Sprintf("%d %s %d", t.Day(), monthsRU[t.Month()-1], t.Year())
	case "kk":
		return fmt.Sprintf("%d жылғы %d %s", t.Year(), t.Day(), monthsKK[t.Month()-1])
	default:
		return t.Format("January 2, 2006")
	}
}

// Percent renders v as a CSS percentage with two decimals.
func Percent(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64) + "%"
}
