package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	cErr "joingo/internal/pkg/error"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// ValidationErrorResponse 輸出格式化的 validator error（欄位 json 名/型別/規則）
func ValidationErrorResponse(obj any, err error) string {
	var errs validator.ValidationErrors
	if errors.As(err, &errs) {
		var b strings.Builder
		b.WriteString("Validation error:")
		for _, fe := range errs {
			field := jsonFieldName(obj, fe.StructField())
			ftype := fieldType(obj, fe.StructField())
			b.WriteString(fmt.Sprintf(" field %q (type: %s) failed the '%s' rule (rules: %v);",
				field, ftype, fe.Tag(), getFieldFormat(obj, fe.StructField())))
		}
		return strings.TrimSuffix(b.String(), ";")
	}
	return "Invalid request body"
}

func structType(obj any) reflect.Type {
	t := reflect.TypeOf(obj)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}

func jsonFieldName(obj any, structField string) string {
	t := structType(obj)
	if t == nil || t.Kind() != reflect.Struct {
		return structField
	}
	if f, ok := t.FieldByName(structField); ok {
		tag := f.Tag.Get("json")
		if tag == "" {
			tag = f.Tag.Get("form")
		}
		if tag != "" && tag != "-" {
			return strings.Split(tag, ",")[0]
		}
	}
	return structField
}

func fieldType(obj any, structField string) string {
	t := structType(obj)
	if t == nil || t.Kind() != reflect.Struct {
		return ""
	}
	if f, ok := t.FieldByName(structField); ok {
		ft := f.Type
		if ft.Kind() == reflect.Ptr {
			ft = ft.Elem()
		}
		return ft.Kind().String()
	}
	return ""
}

func getFieldFormat(obj any, structField string) []string {
	t := structType(obj)
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}
	if f, ok := t.FieldByName(structField); ok {
		if tag := f.Tag.Get("binding"); tag != "" {
			return strings.Split(tag, ",")
		}
	}
	return nil
}

// BindAndValidate 綁定 JSON body；cause 供 span 記錄，responseErr 回給前端
func BindAndValidate(c *gin.Context, req any) (cause error, responseErr error) {
	if err := c.ShouldBindJSON(req); err != nil {
		return err, cErr.ValidateErr(ValidationErrorResponse(req, err))
	}
	return nil, nil
}

// BindQuery 綁定 query string
func BindQuery(c *gin.Context, req any) (cause error, responseErr error) {
	if err := c.ShouldBindQuery(req); err != nil {
		return err, cErr.BadRequestParams(ValidationErrorResponse(req, err))
	}
	return nil, nil
}

func GetIntQuery(c *gin.Context, key string, defaultVal int) (int, error) {
	if v := c.Query(key); v != "" {
		return strconv.Atoi(v)
	}
	return defaultVal, nil
}
