package handlers

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// fieldMessages maps "<Field>.<tag>" to the message shown to the client.
var fieldMessages = map[string]string{
	"Username.required":  "아이디는 필수입니다.",
	"Username.min":       "아이디는 4자 이상 50자 이하여야 합니다.",
	"Username.max":       "아이디는 4자 이상 50자 이하여야 합니다.",
	"Email.required":     "이메일은 필수입니다.",
	"Email.email":        "이메일 형식이 올바르지 않습니다.",
	"Email.max":          "이메일은 100자 이하여야 합니다.",
	"Password.required":  "비밀번호는 필수입니다.",
	"Password.min":       "비밀번호는 8자 이상이어야 합니다.",
	"Password.bcryptmax": "비밀번호는 72자 이하여야 합니다.",
	"Nickname.max":       "닉네임은 50자 이하여야 합니다.",
}

// validationErrors turns a validator error into field -> message.
func validationErrors(err error) map[string]string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return map[string]string{"_": err.Error()}
	}

	messages := make(map[string]string, len(fieldErrs))
	for _, e := range fieldErrs {
		if msg, ok := fieldMessages[e.StructField()+"."+e.Tag()]; ok {
			messages[e.Field()] = msg
			continue
		}
		messages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return messages
}
