package upload

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

// DOI 形如 10.XXXX/...，XXXX 为 4-9 位数字
var doiPattern = regexp.MustCompile(`10\.\d{4,9}/[^\s<>"{}|\\^~\[\]` + "`" + `]+`)

// 只在前几页查找 DOI
const doiSearchPages = 3

// Metadata PDF 元数据，字段缺失时为 nil
type Metadata struct {
	PageCount *int
	DOI       *string
}

// Inspect 读取页数与前几页中的第一个 DOI
// 解析库在畸形文件上可能 panic，统一转换为错误
func Inspect(filePath string) (meta Metadata, err error) {
	defer func() {
		if r := recover(); r != nil {
			meta = Metadata{}
			err = fmt.Errorf("解析 PDF 失败: %v", r)
		}
	}()

	f, r, err := pdf.Open(filePath)
	if err != nil {
		return Metadata{}, err
	}
	defer f.Close()

	pages := r.NumPage()
	meta.PageCount = &pages

	limit := doiSearchPages
	if pages < limit {
		limit = pages
	}
	for i := 1; i <= limit; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if doi := FindDOI(text); doi != "" {
			meta.DOI = &doi
			break
		}
	}
	return meta, nil
}

// FindDOI 返回文本中第一个 DOI，去掉末尾标点
func FindDOI(text string) string {
	m := doiPattern.FindString(text)
	return strings.TrimRight(m, ".,;:)")
}
