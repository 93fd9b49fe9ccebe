package handler

import (
	"go-deposit-api/common"
	"net/http"
)

// ErrorHandlingMiddleware adapts a handler returning *common.AppError to http.HandlerFunc.
func ErrorHandlingMiddleware(next func(http.ResponseWriter, *http.Request) *common.AppError) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := next(w, r); err != nil {
			err.Send(w)
		}
	}
}
