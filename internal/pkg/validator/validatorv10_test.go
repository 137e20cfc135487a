package validator_test

import (
	"errors"
	"testing"

	"github.com/shandysiswandi/seedauth/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	EncryptedSeed string `validate:"required,base64"`
	StudentID     string `validate:"omitempty,alphanum"`
}

func TestV10Validator_Validate(t *testing.T) {
	t.Parallel()

	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	tests := []struct {
		name   string
		in     sample
		fields map[string]string
	}{
		{name: "valid", in: sample{EncryptedSeed: "aGVsbG8=", StudentID: "23A91A4414"}},
		{name: "missing seed", in: sample{}, fields: map[string]string{"encrypted_seed": "EncryptedSeed is a required field"}},
		{name: "not base64", in: sample{EncryptedSeed: "!!"}, fields: map[string]string{"encrypted_seed": "EncryptedSeed must be a valid Base64 string"}},
		{name: "bad student id", in: sample{EncryptedSeed: "aGVsbG8=", StudentID: "a-b"}, fields: map[string]string{"student_id": "StudentID can only contain alphanumeric characters"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := v.Validate(tt.in)
			if tt.fields == nil {
				assert.NoError(t, err)
				return
			}

			var verr validator.V10ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, map[string]string(verr), tt.fields)
			assert.NotEmpty(t, verr.Error())
		})
	}
}

func TestV10Validator_NotAStruct(t *testing.T) {
	t.Parallel()

	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	err = v.Validate("plain string")
	require.Error(t, err)

	var verr validator.V10ValidationError
	assert.False(t, errors.As(err, &verr))
}
