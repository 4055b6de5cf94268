package httpkit

import (
	"net/http"

	"educare/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// BindJSON decodes the request body into dst and validates it. On failure
// it writes a 400 response and returns false.
func BindJSON(c *gin.Context, val *validator.Validator, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return false
	}
	return validate(c, val, dst)
}

// BindQuery decodes query parameters into dst and validates it.
func BindQuery(c *gin.Context, val *validator.Validator, dst interface{}) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return false
	}
	return validate(c, val, dst)
}

// ParamUUID parses the named path parameter. On failure it writes a 400
// response and returns false.
func ParamUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid "+name, nil)
		return uuid.Nil, false
	}
	return id, true
}

func validate(c *gin.Context, val *validator.Validator, dst interface{}) bool {
	if val == nil {
		return true
	}
	if err := val.Struct(dst); err != nil {
		Error(c, http.StatusBadRequest, msgValidationFailed, validator.Details(err))
		return false
	}
	return true
}
