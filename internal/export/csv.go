package export

import (
	"bufio"
	"io"
	"regexp"
	"strings"

	"github.com/PabloGalante/studybuddy/internal/logstore"
)

// Header is the first CSV line. It is written unquoted.
var Header = []string{"timestamp", "userText", "assistantText", "sources"}

var newlines = regexp.MustCompile(`\n+`)

// ToCSV writes rows as CSV. Every field is quoted, runs of newlines inside
// texts collapse to one space, sources are joined with "; " and lines are
// separated by \n without a trailing newline.
func ToCSV(rows []logstore.Record, w io.Writer) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(strings.Join(Header, ",")); err != nil {
		return err
	}
	for _, r := range rows {
		fields := []string{
			quote(r.Timestamp),
			quote(newlines.ReplaceAllString(r.UserText, " ")),
			quote(newlines.ReplaceAllString(r.AssistantText, " ")),
			quote(strings.Join(r.Sources, "; ")),
		}
		if _, err := bw.WriteString("\n" + strings.Join(fields, ",")); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
