package normalizer

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// nameKey 姓名比较键：NFC、小写、合并空白、去掉 "." 和 ","
func nameKey(raw string) string {
	s := norm.NFC.String(raw)
	s = strings.NewReplacer(".", "", ",", "").Replace(s)
	s = cases.Lower(language.Und).String(s)
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeAliases 规范化别名表的键，供 CanonicalName 使用
func NormalizeAliases(aliases map[string]string) map[string]string {
	out := make(map[string]string, len(aliases))
	for k, v := range aliases {
		key := nameKey(k)
		if key == "" || strings.TrimSpace(v) == "" {
			continue
		}
		out[key] = strings.TrimSpace(v)
	}
	return out
}

// CanonicalName 规范化受访者姓名
//
// 先按别名表（键需经 NormalizeAliases 处理）查找已知写法，找不到时每个单词首字母大写。
// 空白输入返回 nil。
func CanonicalName(raw string, aliases map[string]string) *string {
	key := nameKey(raw)
	if key == "" {
		return nil
	}
	if canonical, ok := aliases[key]; ok {
		return &canonical
	}
	title := cases.Title(language.Und)
	words := strings.Fields(key)
	for i, w := range words {
		words[i] = title.String(w)
	}
	name := strings.Join(words, " ")
	return &name
}

// MergeSimilarNames 对一次上传中的所有规范化姓名做启发式合并，返回 源姓名 -> 目标姓名
//
// 规则按优先级（每个源姓名第一个命中的规则生效）：
//  1. 两个词、词相同但顺序不同（"Raia Claudia" / "Claudia Raia"）：合并到字典序较小者
//  2. 较短姓名的每个词都出现在较长姓名中（"Maria" / "Maria Iob"）：短的合并到长的
//  3. 两个词、首词相同、其中一个第二个词是另一个第二个词的首字母（"Sarah C" / "Sarah Cetola"）：缩写合并到全称
//
// 这是尽力而为的身份合并，不保证正确；结果与输入顺序无关（按排序后的姓名遍历），
// 链式映射会被展开为最终目标。
func MergeSimilarNames(names []string) map[string]string {
	distinct := distinctSorted(names)
	tokens := make(map[string][]string, len(distinct))
	for _, n := range distinct {
		tokens[n] = strings.Fields(cases.Lower(language.Und).String(n))
	}

	merge := make(map[string]string)
	for _, name := range distinct {
		if _, done := merge[name]; done {
			continue
		}
		parts := tokens[name]
		for _, other := range distinct {
			if other == name {
				continue
			}
			otherParts := tokens[other]

			if reorderedPair(parts, otherParts) {
				lo, hi := name, other
				if hi < lo {
					lo, hi = hi, lo
				}
				if _, ok := merge[hi]; !ok {
					merge[hi] = lo
				}
				continue
			}
			if _, done := merge[name]; done {
				break
			}
			if len(parts) < len(otherParts) && allContained(parts, otherParts) {
				merge[name] = other
				break
			}
			if initialOf(parts, otherParts) {
				merge[name] = other
				break
			}
		}
	}
	return resolveChains(merge)
}

// ApplyMerge 返回合并后的姓名
func ApplyMerge(name *string, merge map[string]string) *string {
	if name == nil {
		return nil
	}
	if target, ok := merge[*name]; ok {
		return &target
	}
	out := *name
	return &out
}

func distinctSorted(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func reorderedPair(a, b []string) bool {
	if len(a) != 2 || len(b) != 2 {
		return false
	}
	return a[0] == b[1] && a[1] == b[0] && a[0] != a[1]
}

func allContained(short, long []string) bool {
	set := make(map[string]bool, len(long))
	for _, t := range long {
		set[t] = true
	}
	for _, t := range short {
		if !set[t] {
			return false
		}
	}
	return true
}

func initialOf(short, full []string) bool {
	if len(short) != 2 || len(full) != 2 || short[0] != full[0] {
		return false
	}
	initial := []rune(short[1])
	return len(initial) == 1 && len([]rune(full[1])) > 1 && strings.HasPrefix(full[1], short[1])
}

// resolveChains 展开 a -> b -> c 为 a -> c，遇到环时保留第一跳
func resolveChains(merge map[string]string) map[string]string {
	out := make(map[string]string, len(merge))
	for src := range merge {
		target := merge[src]
		visited := map[string]bool{src: true}
		for {
			next, ok := merge[target]
			if !ok || visited[next] {
				break
			}
			visited[target] = true
			target = next
		}
		if target != src {
			out[src] = target
		}
	}
	return out
}
