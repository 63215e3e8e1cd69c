package handler

import (
	"net/http"
	"reflect"

	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Registra decimal.Decimal como tipo numérico para que los tags min=0,
	// gt=0, required funcionen sin panickear ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate bindea el body JSON y corre los tags del validador.
// Devuelve false y escribe la respuesta de error si algo falla; el caller
// debe retornar sin escribir otra respuesta.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON inválido: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// bindQueryAndValidate es la variante para filtros de query string.
func bindQueryAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Query inválida: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// respondError traduce el error de dominio al código HTTP que le corresponde.
// Los errores sin etiquetar no se escriben acá: se acumulan en el contexto y
// el middleware ErrorHandler responde el 500 genérico. Un solo escritor por
// respuesta.
func respondError(c *gin.Context, err error) {
	status := apierror.Status(err)
	if status == http.StatusInternalServerError && !apierror.IsKind(err, apierror.KindInternal) {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(status, apierror.New(err.Error()))
}
