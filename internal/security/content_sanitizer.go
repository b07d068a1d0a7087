// Package security はアプリケーションのセキュリティ機能を提供する。
//
// ContentSanitizerService は掲載情報や通知メッセージなど、利用者が入力した
// テキストを保存前に無害化する。bluemondayの許可リストベースのポリシーを使う。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// ContentSanitizerService は入力テキストのサニタイズ機能のインターフェース。
type ContentSanitizerService interface {
	// Sanitize は説明文などのリッチテキストを無害化する。
	// 許可タグ（p, br, ul, ol, li, strong, em）のみを残し、属性はすべて除去する。
	Sanitize(rawHTML string) string

	// SanitizeText はタイトルや氏名などのプレーンテキストからタグを除去し、前後の空白を落とす。
	// 結果はHTMLエスケープされない素のテキスト。
	SanitizeText(raw string) string
}

// contentSanitizer はContentSanitizerServiceの実装。
// bluemondayのポリシーはスレッドセーフに共有できる。
type contentSanitizer struct {
	richPolicy  *bluemonday.Policy
	plainPolicy *bluemonday.Policy
}

// NewContentSanitizer はContentSanitizerServiceの新しいインスタンスを生成する。
func NewContentSanitizer() *contentSanitizer {
	rich := bluemonday.NewPolicy()
	// script, iframe, style, on*属性は許可リストにないため除去される
	rich.AllowElements(
		"p", "br", "ul", "ol", "li",
		"strong", "em",
	)

	return &contentSanitizer{
		richPolicy:  rich,
		plainPolicy: bluemonday.StrictPolicy(),
	}
}

// Sanitize は説明文を無害化する。
func (s *contentSanitizer) Sanitize(rawHTML string) string {
	return strings.TrimSpace(s.richPolicy.Sanitize(rawHTML))
}

// SanitizeText はタグを除去したプレーンテキストを返す。
func (s *contentSanitizer) SanitizeText(raw string) string {
	return strings.TrimSpace(html.UnescapeString(s.plainPolicy.Sanitize(raw)))
}
