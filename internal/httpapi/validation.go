package httpapi

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/mmynk/invoicer/internal/middleware"
)

var validatorOnce sync.Once

// setupValidator teaches gin's validator about decimals and makes it report
// fields by their JSON or query name. Unknown JSON fields are rejected, so
// derived values such as totals cannot be posted.
func setupValidator() {
	validatorOnce.Do(func() {
		binding.EnableDecoderDisallowUnknownFields = true

		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return fld.Name
		})
		v.RegisterCustomTypeFunc(func(field reflect.Value) any {
			if d, ok := field.Interface().(decimal.Decimal); ok {
				return d.InexactFloat64()
			}
			return nil
		}, decimal.Decimal{})
	})
}

// FieldError describes one failed validation rule.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

// bindJSON decodes and validates the body, answering 400 on failure.
func bindJSON(c *gin.Context, obj any) bool {
	return checkBind(c, c.ShouldBindJSON(obj))
}

// bindQuery decodes and validates query parameters, answering 400 on failure.
func bindQuery(c *gin.Context, obj any) bool {
	return checkBind(c, c.ShouldBindQuery(obj))
}

func checkBind(c *gin.Context, err error) bool {
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, FieldError{Field: fe.Field(), Rule: fe.Tag(), Param: fe.Param()})
		}
		middleware.Abort(c, http.StatusBadRequest, middleware.CodeInvalidRequest, "validation failed", details)
		return false
	}

	middleware.Abort(c, http.StatusBadRequest, middleware.CodeInvalidRequest, "malformed request: "+err.Error(), nil)
	return false
}
