package normalizer

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// nonAnswerPhrases 文字性否定回答（"没睡"、"不记得"），出现即视为未作答
var nonAnswerPhrases = []string{
	"non ho dormito",
	"non dormito",
	"non ho chiuso occhio",
	"non ricordo",
	"non mi ricordo",
	"non lo so",
	"non so",
	"didn't sleep",
	"did not sleep",
	"didnt sleep",
	"no sleep",
	"don't remember",
	"do not remember",
	"dont remember",
	"can't remember",
	"not sure",
}

// nonAnswerWords 时长字段中的否定 / 零值词，按单词匹配
var nonAnswerWords = map[string]bool{
	"non":         true,
	"no":          true,
	"nessuno":     true,
	"nessuna":     true,
	"niente":      true,
	"nulla":       true,
	"mai":         true,
	"zero":        true,
	"secondi":     true,
	"secondo":     true,
	"subito":      true,
	"seconds":     true,
	"none":        true,
	"nothing":     true,
	"never":       true,
	"not":         true,
	"didn't":      true,
	"didnt":       true,
	"don't":       true,
	"dont":        true,
	"immediately": true,
}

var (
	digitRun       = regexp.MustCompile(`\d+`)
	nonDigitColon  = regexp.MustCompile(`[^0-9:]`)
	digitSpaceRun  = regexp.MustCompile(`(\d)\s+(\d)`)
	timeWithSecond = regexp.MustCompile(`^(\d{1,2}):(\d{2}):\d{2}$`)
)

// cleanText 小写、NFC、统一撇号、去首尾空白
func cleanText(s string) string {
	s = norm.NFC.String(s)
	s = strings.NewReplacer("’", "'", "‘", "'").Replace(s)
	return strings.TrimSpace(cases.Lower(language.Und).String(s))
}

func hasDigit(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}

// isNonAnswerPhrase 是否包含否定回答短语
func isNonAnswerPhrase(s string) bool {
	for _, p := range nonAnswerPhrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

// isNonAnswer 是否包含否定回答短语或否定词
func isNonAnswer(s string) bool {
	if isNonAnswerPhrase(s) {
		return true
	}
	words := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})
	for _, w := range words {
		if nonAnswerWords[w] {
			return true
		}
	}
	return false
}

// unifySeparators 统一分隔符为冒号：". , ; '" -> ":"
// 没有显式分隔符时，数字之间的空白也视为分隔符（"7 30" -> "7:30"）
func unifySeparators(s string) string {
	s = strings.NewReplacer(";", ":", ",", ":", ".", ":", "'", ":").Replace(s)
	if !strings.Contains(s, ":") {
		if loc := digitSpaceRun.FindStringSubmatchIndex(s); loc != nil {
			// 只替换第一处
			s = s[:loc[3]] + ":" + s[loc[4]:]
		}
	}
	return s
}

// normalizeTimeText 时刻字符串标准化：只保留数字和一个冒号
func normalizeTimeText(s string) string {
	s = unifySeparators(s)
	s = nonDigitColon.ReplaceAllString(s, "")
	if m := timeWithSecond.FindStringSubmatch(s); m != nil {
		s = m[1] + ":" + m[2]
	}
	if strings.Count(s, ":") > 1 {
		first := strings.Index(s, ":")
		s = s[:first+1] + strings.ReplaceAll(s[first+1:], ":", "")
	}
	return s
}

// normalizeDurationText 时长字符串标准化：去空白、统一分隔符
func normalizeDurationText(s string) string {
	s = strings.Join(strings.Fields(s), "")
	return strings.NewReplacer(";", ":", ",", ":", ".", ":").Replace(s)
}

// digitsOnly 去掉所有非数字字符
func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// atoi 解析纯数字串，过长的串视为无效
func atoi(digits string) (int, bool) {
	if digits == "" || len(digits) > 9 {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return n, true
}

// numbers 提取所有数字串
func numbers(s string) []float64 {
	var out []float64
	for _, d := range digitRun.FindAllString(s, -1) {
		if v, err := strconv.ParseFloat(d, 64); err == nil {
			out = append(out, v)
		}
	}
	return out
}

// slashMean "10/15" -> 12.5
func slashMean(s string) (float64, bool) {
	if !strings.Contains(s, "/") {
		return 0, false
	}
	nums := numbers(s)
	if len(nums) < 2 {
		return 0, false
	}
	return (nums[0] + nums[1]) / 2, true
}

// firstNumber 第一个数字串
func firstNumber(s string) (float64, bool) {
	nums := numbers(s)
	if len(nums) == 0 {
		return 0, false
	}
	return nums[0], true
}

// toFloat 数值类型转换为 float64
func toFloat(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int8:
		f = float64(n)
	case int16:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint8:
		f = float64(n)
	case uint16:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// isBlank 空单元格
func isBlank(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	case float64:
		return math.IsNaN(val)
	}
	return false
}
