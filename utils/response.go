package utils

import (
	"github.com/go-playground/validator/v10"
	"github.com/kataras/iris/v12"
)

func CreateError(status int, code, message string, ctx iris.Context) {
	ctx.StopWithJSON(status, iris.Map{"error": code, "message": message})
}

func CreateInternalServerError(ctx iris.Context) {
	CreateError(iris.StatusInternalServerError, "internal_server_error", "Something went wrong, please try again.", ctx)
}

func CreateNotFound(ctx iris.Context) {
	CreateError(iris.StatusNotFound, "not_found", "Resource not found.", ctx)
}

func CreateForbidden(ctx iris.Context, message string) {
	CreateError(iris.StatusForbidden, "forbidden", message, ctx)
}

func CreateConflict(ctx iris.Context, message string) {
	CreateError(iris.StatusConflict, "conflict", message, ctx)
}

func CreateEmailAlreadyRegistered(ctx iris.Context) {
	CreateConflict(ctx, "A user with this email already exists.")
}

type validationError struct {
	Field string `json:"field"`
	Tag   string `json:"tag"`
	Value string `json:"value,omitempty"`
}

// HandleValidationErrors maps ReadJSON failures to a 400 body. Struct
// validation failures include the offending fields.
func HandleValidationErrors(err error, ctx iris.Context) {
	if errs, ok := err.(validator.ValidationErrors); ok {
		fields := make([]validationError, 0, len(errs))
		for _, e := range errs {
			fields = append(fields, validationError{
				Field: e.Field(),
				Tag:   e.Tag(),
				Value: e.Param(),
			})
		}
		ctx.StopWithJSON(iris.StatusBadRequest, iris.Map{
			"error":   "validation",
			"message": "Request body failed validation.",
			"fields":  fields,
		})
		return
	}

	CreateError(iris.StatusBadRequest, "validation", err.Error(), ctx)
}
