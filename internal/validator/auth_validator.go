package validator

import (
	"errors"
	"regexp"
	"strings"
)

var (
	// 入力が不正
	ErrInvalidInput = errors.New("invalid input")

	// 確認用パスワードが一致しない
	ErrPasswordMismatch = errors.New("password mismatch")
)

// サインアップフォームの入力検証。
// パスワードポリシーや重複チェックはusecase側で行い、
// ここではフォームとして成立しているかだけを見る。
type RegisterForm struct {
	Email                string
	Password             string
	PasswordConfirmation string
	FullName             string
}

func (f RegisterForm) Validate() error {
	email := strings.TrimSpace(f.Email)

	// 必須チェック
	if email == "" || f.Password == "" {
		return ErrInvalidInput
	}

	// email形式
	if !isEmailLike(email) {
		return ErrInvalidInput
	}

	// 確認用パスワード
	if f.Password != f.PasswordConfirmation {
		return ErrPasswordMismatch
	}

	return nil
}

// ログインフォームの入力検証
type LoginForm struct {
	Email    string
	Password string
}

func (f LoginForm) Validate() error {
	email := strings.TrimSpace(f.Email)

	if email == "" || f.Password == "" {
		return ErrInvalidInput
	}

	if !isEmailLike(email) {
		return ErrInvalidInput
	}

	return nil
}

var emailLike = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// 簡易メール形式をチェック
func isEmailLike(s string) bool {
	return emailLike.MatchString(s)
}
