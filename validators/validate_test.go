package validators

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidCPF(t *testing.T) {
	assert.True(t, ValidCPF("529.982.247-25"))
	assert.True(t, ValidCPF("52998224725"))
	assert.False(t, ValidCPF("529.982.247-24"))
	assert.False(t, ValidCPF("111.111.111-11"))
	assert.False(t, ValidCPF("1234"))
	assert.False(t, ValidCPF("529a98224725"))
}

func TestStructUsesJSONNames(t *testing.T) {
	type item struct {
		CourseID uint `json:"courseId" validate:"required"`
	}
	type req struct {
		Email string `json:"customerEmail" validate:"required,email"`
		CPF   string `json:"customerCpf" validate:"omitempty,cpf"`
		Items []item `json:"items" validate:"required,min=1,dive"`
	}

	errs := Struct(req{Email: "nope", CPF: "123", Items: []item{{}}})
	assert.Equal(t, "Invalid email!", errs["customerEmail"])
	assert.Equal(t, "Invalid CPF!", errs["customerCpf"])
	assert.Equal(t, "This field is required!", errs["items[0].courseId"])

	assert.Nil(t, Struct(req{Email: "a@b.co", Items: []item{{CourseID: 1}}}))
}
