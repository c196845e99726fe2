package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsCardNumber(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"Valid visa test number", "4111111111111111", true},
		{"Valid with spaces", "4111 1111 1111 1111", true},
		{"Valid with dashes", "4111-1111-1111-1111", true},
		{"Bad checksum", "4111111111111112", false},
		{"Too short", "79927398713", false},
		{"Letters", "4111abcd11111111", false},
		{"Empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsCardNumber(tt.input))
		})
	}
}

func TestMaskCard(t *testing.T) {
	assert.Equal(t, "************1111", MaskCard("4111 1111 1111 1111"))
	assert.Equal(t, "12", MaskCard("12"))
}

type payload struct {
	Username string `validate:"required,min=3,max=50,alphanum"`
	Email    string `validate:"required,email"`
	Amount   string `validate:"required,amount"`
	Card     string `validate:"omitempty,card"`
	Days     int    `validate:"omitempty,gte=1,lte=30"`
}

func TestStruct(t *testing.T) {
	ok := payload{Username: "alice", Email: "alice@example.com", Amount: "10.50", Card: "4111111111111111", Days: 7}
	assert.NoError(t, Struct(ok))

	bad := payload{Username: "al", Email: "nope", Amount: "1.234", Card: "1234", Days: 40}
	err := Struct(bad)
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "username must be at least 3 characters")
		assert.Contains(t, err.Error(), "email must be a valid email")
		assert.Contains(t, err.Error(), "amount must be a number with at most two decimal places")
		assert.Contains(t, err.Error(), "card is not a valid card number")
		assert.Contains(t, err.Error(), "days is out of range")
	}

	missing := payload{}
	err = Struct(missing)
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "username is required")
	}
}

func TestAmountTag(t *testing.T) {
	tests := []struct {
		amount string
		valid  bool
	}{
		{"10", true},
		{"999999999999.99", true},
		{"1e2", false},
		{"1e-10000000", false},
		{"1E+5", false},
		{"1000000000000", false},
		{"12.345", false},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			err := Struct(payload{Username: "alice", Email: "alice@example.com", Amount: tt.amount})
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
