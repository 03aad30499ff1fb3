package validator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string `validate:"required"`
	Email string `validate:"required,simple_email"`
}

func TestIsEmail(t *testing.T) {
	valid := []string{"a@b.co", "jean.dupont@example.ci", "x+tag@sub.domain.org"}
	for _, s := range valid {
		require.True(t, IsEmail(s), s)
	}

	invalid := []string{"abc", "a@b", "@b.co", "a b@c.co", "a@b.", "a@@b.co", ""}
	for _, s := range invalid {
		require.False(t, IsEmail(s), s)
	}
}

func TestValidate(t *testing.T) {
	ctx := context.Background()

	require.NoError(t, Validate(ctx, payload{Name: "Awa", Email: "awa@example.ci"}))

	err := Validate(ctx, payload{Email: "awa@example.ci"})
	var fe *FieldError
	require.True(t, errors.As(err, &fe))
	require.Equal(t, "Name", fe.Field)
	require.Equal(t, TagRequired, fe.Tag)

	err = Validate(ctx, payload{Name: "Awa", Email: "abc"})
	require.True(t, errors.As(err, &fe))
	require.Equal(t, "Email", fe.Field)
	require.Equal(t, TagSimpleEmail, fe.Tag)
}
