package export

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	ContentTypePDF  = "application/pdf"
	ContentTypeCSV  = "text/csv; charset=utf-8"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// File is a rendered download. Name is the ASCII fallback filename; UTF8Name,
// when set, carries the Japanese variant.
type File struct {
	Name        string
	UTF8Name    string
	ContentType string
	Data        []byte
}

// FileName builds the "<prefix>_YYYYMMDD.<ext>" names used by every download.
func FileName(prefix string, t time.Time, ext string) string {
	return fmt.Sprintf("%s_%s.%s", prefix, t.Format("20060102"), ext)
}

// ContentDisposition returns an attachment header value with an RFC 5987
// filename* parameter when the file has a UTF-8 name.
func (f File) ContentDisposition() string {
	name := strings.ReplaceAll(f.Name, `"`, "")
	if f.UTF8Name == "" {
		return fmt.Sprintf(`attachment; filename="%s"`, name)
	}
	return fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`, name, url.PathEscape(f.UTF8Name))
}
