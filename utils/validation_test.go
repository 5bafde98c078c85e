package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateDocument(t *testing.T) {
	cases := []struct {
		name     string
		document string
		valid    bool
	}{
		{"valid cpf", "52998224725", true},
		{"formatted cpf", "529.982.247-25", true},
		{"cpf with wrong check digit", "52998224724", false},
		{"cpf with repeated digits", "11111111111", false},
		{"valid cnpj", "11222333000181", true},
		{"formatted cnpj", "11.222.333/0001-81", true},
		{"cnpj with wrong check digit", "11222333000182", false},
		{"cnpj with repeated digits", "00000000000000", false},
		{"wrong length", "1234567", false},
		{"empty", "", false},
		{"letters only", "not-a-document", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ok, _ := ValidateDocument(tc.document)
			assert.Equal(t, tc.valid, ok)
		})
	}
}

func TestOnlyDigits(t *testing.T) {
	assert.Equal(t, "11222333000181", OnlyDigits("11.222.333/0001-81"))
	assert.Equal(t, "52998224725", OnlyDigits("529.982.247-25"))
	assert.Equal(t, "", OnlyDigits("abc"))
	assert.Equal(t, "", OnlyDigits(""))
}

func TestValidatePassword(t *testing.T) {
	cases := []struct {
		name     string
		password string
		valid    bool
	}{
		{"too short", "Ab1", false},
		{"missing uppercase", "senha123forte", false},
		{"missing lowercase", "SENHA123FORTE", false},
		{"missing number", "SenhaForte", false},
		{"acceptable", "Senha123", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ok, message := ValidatePassword(tc.password)
			assert.Equal(t, tc.valid, ok)
			if !tc.valid {
				assert.NotEmpty(t, message)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	ok, _ := ValidateEmail("financeiro@sabormineiro.com.br")
	assert.True(t, ok)

	for _, email := range []string{"", "plain", "missing@tld", "@no-user.com"} {
		ok, message := ValidateEmail(email)
		assert.False(t, ok, email)
		assert.NotEmpty(t, message)
	}
}

func TestValidateName(t *testing.T) {
	ok, _ := ValidateName("Jo")
	assert.True(t, ok)

	ok, _ = ValidateName(" a ")
	assert.False(t, ok)

	ok, _ = ValidateName(strings.Repeat("x", 121))
	assert.False(t, ok)
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "hello", SanitizeString("  hello  "))
	assert.NotContains(t, SanitizeString("<script>alert(1)</script>"), "<script>")
	assert.NotContains(t, SanitizeString("before<b>bold</b>after"), "<b>")
}
