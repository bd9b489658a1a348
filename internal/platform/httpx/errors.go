// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"
)

// Sentinel errors for domain layer.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrDuplicate    = errors.New("duplicate entry")
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

// Localized messages shown to portal users.
const (
	MsgNotFound     = "指定されたデータが見つかりません。"
	MsgValidation   = "入力内容に誤りがあります。"
	MsgConflict     = "現在の状態ではこの操作を実行できません。"
	MsgForbidden    = "この操作を行う権限がありません。"
	MsgUnauthorized = "ログインが必要です。"
	MsgInternal     = "予期しないエラーが発生しました。"
)

// RespondError maps domain errors to HTTP responses using RFC7807.
// Only validation and conflict details are echoed back; everything else
// gets the generic localized message.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", MsgNotFound)
	case errors.Is(err, ErrDuplicate):
		Problem(w, http.StatusConflict, "Duplicate", MsgConflict)
	case errors.Is(err, ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", MsgValidation+" "+err.Error())
	case errors.Is(err, ErrConflict):
		Problem(w, http.StatusConflict, "Conflict", MsgConflict+" "+err.Error())
	case errors.Is(err, ErrForbidden):
		Problem(w, http.StatusForbidden, "Forbidden", MsgForbidden)
	case errors.Is(err, ErrUnauthorized):
		Problem(w, http.StatusUnauthorized, "Unauthorized", MsgUnauthorized)
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", MsgInternal)
	}
}
