package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type form struct {
	RUT    string `form:"rut" validate:"required,rut"`
	Correo string `form:"correo" validate:"omitempty,email"`
	Estado string `form:"estado" validate:"omitempty,oneof=VIGENTE TERMINADO"`
	Horas  int    `form:"horas_semanales" validate:"gte=0"`
}

func TestStruct(t *testing.T) {
	v := Struct(form{RUT: "12.345.671-8", Correo: "ana@example.cl", Estado: "VIGENTE"})
	assert.True(t, v.Empty(), "%v", v)

	v = Struct(form{Correo: "nope", Estado: "OTRO", Horas: -1})
	assert.Equal(t, Violations{
		"rut":             "required",
		"correo":          "invalid_email",
		"estado":          "invalid_option",
		"horas_semanales": "must_be_positive",
	}, v)
}

func TestRUTFormat(t *testing.T) {
	for _, ok := range []string{"12.345.671-8", "12345671-8", "9.876.543-K", "98765430", "5123456", "1-9", "123456-7", "123.456-K"} {
		assert.True(t, Struct(form{RUT: ok}).Empty(), ok)
	}
	for _, bad := range []string{"12-345", "abc", "12.345.671-88", "1.23-4", "12-"} {
		assert.Equal(t, "invalid_rut", Struct(form{RUT: bad})["rut"], bad)
	}
}

func TestAddKeepsFirstCode(t *testing.T) {
	v := make(Violations)
	v.Add("obra_id", "required")
	v.Add("obra_id", "other")
	neg, pos := -1.0, 10.0
	NonNegative("sueldo_base", &neg, v)
	NonNegative("uf_plan_salud", &pos, v)
	NonNegative("bono", nil, v)
	assert.Equal(t, Violations{
		"obra_id":     "required",
		"sueldo_base": "must_be_positive",
	}, v)
}
