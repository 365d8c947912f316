package service

import (
	"html"
	"strings"
	"unicode/utf8"

	"Lumen_Blog/internal/apperr"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
)

const (
	MaxAuthorNameRunes = 80
	MaxBodyRunes       = 2000
	MaxTitleRunes      = 200
)

var (
	validate = validator.New()
	// 评论是纯文本，所有标签都剥掉
	plainText = bluemonday.StrictPolicy()
	// 文章正文允许常见排版标签
	richText = bluemonday.UGCPolicy()
)

// stripTags 剥掉标签后再反转义：StrictPolicy会把剩下的文本转义成HTML实体，存库的必须是原文
func stripTags(raw string) string {
	return strings.TrimSpace(html.UnescapeString(plainText.Sanitize(strings.TrimSpace(raw))))
}

// cleanText 1、剥掉HTML得到原文 2、检查非空 3、按原文的字符数检查长度
func cleanText(op, field, raw string, maxRunes int) (string, error) {
	v := stripTags(raw)
	if v == "" {
		return "", apperr.Validation(op, "%s must not be blank", field)
	}
	if utf8.RuneCountInString(v) > maxRunes {
		return "", apperr.Validation(op, "%s exceeds %d characters", field, maxRunes)
	}
	return v, nil
}

// cleanEmail 空字符串视为不填，返回nil
func cleanEmail(op string, raw *string) (*string, error) {
	if raw == nil {
		return nil, nil
	}
	v := strings.TrimSpace(*raw)
	if v == "" {
		return nil, nil
	}
	if err := validate.Var(v, "email,max=255"); err != nil {
		return nil, apperr.Validation(op, "author email %q is invalid", v)
	}
	return &v, nil
}
