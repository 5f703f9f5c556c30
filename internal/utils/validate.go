package util

import (
	"context"
	"errors"

	"voicelog/internal/utils/crypto"

	"github.com/go-playground/validator/v10"
)

// ValidateCtx executes v.StructCtx and surfaces the password strength rule
// with its own message instead of the generic validator error.
func ValidateCtx(ctx context.Context, v *validator.Validate, req any) error {
	err := v.StructCtx(ctx, req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			if fe.Tag() == "password" {
				return crypto.ErrPasswordStrength
			}
		}
	}
	return err
}
