package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeLawName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "산업안전보건법", "산업안전보건법"},
		{"inner spaces", "산업안전보건기준에 관한 규칙", "산업안전보건기준에관한규칙"},
		{"full width space", "재난　및　안전관리　기본법", "재난및안전관리기본법"},
		{"interpunct", "재난·및·안전관리·기본법", "재난및안전관리기본법"},
		{"katakana middle dot", "재난・및・안전관리기본법", "재난및안전관리기본법"},
		{"surrounding whitespace", "  산업안전보건법 \n", "산업안전보건법"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeLawName(tt.in))
		})
	}
}

func TestNormalizeLawNameIdempotent(t *testing.T) {
	inputs := []string{
		"산업안전보건기준에 관한 규칙",
		"재난·및·안전관리 기본법",
		"중대재해 처벌 등에 관한 법률",
	}
	for _, in := range inputs {
		once := NormalizeLawName(in)
		assert.Equal(t, once, NormalizeLawName(once), "input: %s", in)
	}
}

func TestNormalizeArticleNumber(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"제38조", "38"},
		{"38", "38"},
		{" 38 ", "38"},
		{"３８", "38"},
		{"제1조", "1"},
		{"조문 없음", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeArticleNumber(tt.in), "input: %q", tt.in)
	}
}
