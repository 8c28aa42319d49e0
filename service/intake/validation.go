package intake

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/viant/budgetflow/model"
)

func newValidator() (*validator.Validate, error) {
	vld := validator.New(validator.WithRequiredStructEnabled())
	if err := vld.RegisterValidation("positive_decimal", func(fl validator.FieldLevel) bool {
		value, ok := fl.Field().Interface().(decimal.Decimal)
		return ok && value.IsPositive()
	}); err != nil {
		return nil, fmt.Errorf("registering positive_decimal: %w", err)
	}
	if err := vld.RegisterValidation("amount_scale", func(fl validator.FieldLevel) bool {
		value, ok := fl.Field().Interface().(decimal.Decimal)
		return ok && model.WithinScale(value)
	}); err != nil {
		return nil, fmt.Errorf("registering amount_scale: %w", err)
	}
	return vld, nil
}

func (s *Service) validate(input *Input) error {
	if input == nil {
		return model.NewError(model.KindValidation, "request input is required")
	}
	if err := s.validator.Struct(input); err != nil {
		var fieldErrors validator.ValidationErrors
		if errors.As(err, &fieldErrors) && len(fieldErrors) > 0 {
			return formatFieldError(fieldErrors[0])
		}
		return model.WrapError(model.KindValidation, err, "invalid request input")
	}
	if !input.Amount.IsPositive() {
		return model.NewError(model.KindValidation, "amount must be greater than zero")
	}
	return nil
}

func formatFieldError(fe validator.FieldError) error {
	switch fe.Tag() {
	case "required":
		return model.NewError(model.KindValidation, "%s is required", fe.Field())
	case "max":
		return model.NewError(model.KindValidation, "%s must be at most %s characters", fe.Field(), fe.Param())
	case "positive_decimal":
		return model.NewError(model.KindValidation, "%s must be greater than zero", fe.Field())
	case "amount_scale":
		return model.NewError(model.KindValidation, "%s must have at most %d fractional digits", fe.Field(), model.AmountScale)
	}
	return model.NewError(model.KindValidation, "%s failed %s check", fe.Field(), fe.Tag())
}
