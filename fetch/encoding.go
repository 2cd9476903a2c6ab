package fetch

import (
	"bufio"
	"io"
	"strings"

	"github.com/saintfish/chardet"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

// chardet 的名字与 WHATWG 标签不一致的部分
var chardetAliases = map[string]string{
	"gb-18030": "gb18030",
}

// minConfidence is the lowest chardet score trusted over the windows-1252
// fallback.
const minConfidence = 50

// DetermineEncoding sniffs the first 1024 bytes of r: BOM, the charset of
// contentType, then <meta>. When none of them names an encoding the bytes are
// handed to chardet.
func DetermineEncoding(r *bufio.Reader, contentType string) encoding.Encoding {
	bytes, err := r.Peek(1024)

	if err != nil && err != io.EOF {
		zap.L().Error("fetch failed", zap.Error(err))

		return unicode.UTF8
	}

	e, name, certain := charset.DetermineEncoding(bytes, contentType)
	if certain || name != "windows-1252" {
		return e
	}

	if d := detect(bytes); d != nil {
		return d
	}

	return e
}

func detect(b []byte) encoding.Encoding {
	if len(b) == 0 {
		return nil
	}

	res, err := chardet.NewTextDetector().DetectBest(b)
	if err != nil || res == nil || res.Confidence < minConfidence {
		return nil
	}

	label := strings.ToLower(res.Charset)
	if alias, ok := chardetAliases[label]; ok {
		label = alias
	}
	e, _ := charset.Lookup(label)

	return e
}
