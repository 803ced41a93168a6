package models

import "errors"

var (
	// ErrUserNotFound is returned by stores when no account matches.
	ErrUserNotFound = errors.New("user not found")

	ErrDuplicateUsername = errors.New("이미 존재하는 아이디입니다.")
	ErrDuplicateEmail    = errors.New("이미 존재하는 이메일입니다.")

	// ErrAuthenticationFailed covers both an unknown username and a wrong
	// password. Callers must not be able to tell the two apart.
	ErrAuthenticationFailed = errors.New("로그인 실패: 아이디 또는 비밀번호를 확인하세요")

	// ErrTokenInvalid is returned for malformed, mis-signed or expired tokens.
	ErrTokenInvalid = errors.New("invalid token")
)
