package error

import "net/http"

type ErrorCode string

const (
	UnknownError           ErrorCode = "unknown_error"
	InternalServerError    ErrorCode = "internal_server_error"
	BadRequest             ErrorCode = "bad_request"
	ValidationError        ErrorCode = "validation_error"
	AuthenticationRequired ErrorCode = "authentication_required"
	InvalidAccessToken     ErrorCode = "invalid_access_token"
	ExpiredAccessToken     ErrorCode = "expired_access_token"
	InvalidCredentials     ErrorCode = "invalid_credentials"
	RecipeNotFound         ErrorCode = "recipe_not_found"
	TagNotFound            ErrorCode = "tag_not_found"
	IngredientNotFound     ErrorCode = "ingredient_not_found"
	UserNotFound           ErrorCode = "user_not_found"
)

var errorCodeToStatusCode = map[ErrorCode]int{
	UnknownError:           0, // No error code - unknown
	InternalServerError:    http.StatusInternalServerError,
	BadRequest:             http.StatusBadRequest,
	ValidationError:        http.StatusBadRequest,
	AuthenticationRequired: http.StatusUnauthorized,
	InvalidAccessToken:     http.StatusUnauthorized,
	ExpiredAccessToken:     http.StatusUnauthorized,
	InvalidCredentials:     http.StatusUnauthorized,
	RecipeNotFound:         http.StatusNotFound,
	TagNotFound:            http.StatusNotFound,
	IngredientNotFound:     http.StatusNotFound,
	UserNotFound:           http.StatusNotFound,
}

func (ec ErrorCode) StatusCode() int {
	return errorCodeToStatusCode[ec]
}

func (ec ErrorCode) String() string {
	return string(ec)
}
