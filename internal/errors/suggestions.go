package errors

import (
	"strings"

	"github.com/tangzhangming/kite/internal/i18n"
)

// ============================================================================
// 修复建议
// ============================================================================

// 错误码对应的默认建议（不需要参数的那部分）
var defaultSuggestions = map[string][]string{
	E0200: {i18n.HintConvertValue},
	E0203: {i18n.HintAddReturn},
	E0110: {i18n.HintRenameShadowing},
	E0700: {i18n.HintExtensionABI},
	E0800: {i18n.HintBreakImport},
}

// GetSuggestions 根据错误码生成默认修复建议
func GetSuggestions(code string) []string {
	ids := defaultSuggestions[code]
	if len(ids) == 0 {
		return nil
	}
	hints := make([]string, 0, len(ids))
	for _, id := range ids {
		hints = append(hints, i18n.T(id))
	}
	return hints
}

// DidYouMean 在候选名称中查找相似名称并生成建议，找不到时返回空串
func DidYouMean(name string, candidates []string) string {
	maxDistance := 2
	if len(name) <= 3 {
		maxDistance = 1
	}
	similar := FindSimilar(name, candidates, maxDistance)
	if similar == "" || similar == name {
		return ""
	}
	return i18n.T(i18n.HintDidYouMean, similar)
}

// ============================================================================
// 相似名称查找
// ============================================================================

// FindSimilar 查找相似的名称
func FindSimilar(name string, candidates []string, maxDistance int) string {
	if len(candidates) == 0 {
		return ""
	}

	bestMatch := ""
	bestDistance := maxDistance + 1

	for _, candidate := range candidates {
		distance := levenshteinDistance(name, candidate)
		if distance < bestDistance {
			bestDistance = distance
			bestMatch = candidate
		}
	}

	if bestDistance <= maxDistance {
		return bestMatch
	}
	return ""
}

// levenshteinDistance 计算 Levenshtein 编辑距离（忽略大小写）
func levenshteinDistance(s1, s2 string) int {
	r1 := []rune(strings.ToLower(s1))
	r2 := []rune(strings.ToLower(s2))
	if len(r1) == 0 {
		return len(r2)
	}
	if len(r2) == 0 {
		return len(r1)
	}

	prev := make([]int, len(r2)+1)
	curr := make([]int, len(r2)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(r1); i++ {
		curr[0] = i
		for j := 1; j <= len(r2); j++ {
			cost := 1
			if r1[i-1] == r2[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(r2)]
}

func min3(a, b, c int) int {
	if a < b {
		if a < c {
			return a
		}
		return c
	}
	if b < c {
		return b
	}
	return c
}
