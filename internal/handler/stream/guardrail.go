package stream

import (
	"fmt"
	"regexp"
	"strings"
)

// sensitiveWords 输入中出现这些单词时拒绝回答
var sensitiveWords = map[string]struct{}{
	"kill": {},
	"evil": {},
}

var nonWord = regexp.MustCompile(`\W+`)

// SensitiveInputError 表示输入被敏感词过滤器拦截
type SensitiveInputError struct {
	Word string
}

func (e *SensitiveInputError) Error() string {
	return fmt.Sprintf("sensitive word detected: %s", e.Word)
}

// CheckInput 不区分大小写地按非单词字符切分输入，命中敏感词时返回错误
func CheckInput(message string) error {
	for _, word := range nonWord.Split(strings.ToLower(message), -1) {
		if _, hit := sensitiveWords[word]; hit {
			return &SensitiveInputError{Word: word}
		}
	}
	return nil
}
