package validation

import (
	"fmt"
	"strings"

	"github.com/Payphone-Digital/storefront/internal/constants"
)

// CustomMessage returns the per-tag messages for a struct field, or nil.
func CustomMessage(field string) map[string]string {
	var customValidationMessages = map[string]map[string]string{
		"Email": {
			"required":     constants.MsgEmailRequired,
			"emailpattern": constants.MsgEmailInvalid,
			"min":          constants.MsgEmailLength,
			"max":          constants.MsgEmailLength,
		},
		"Password": {
			"required": constants.MsgPasswordRequired,
			"min":      constants.MsgPasswordLength,
			"max":      constants.MsgPasswordLength,
		},
		"NewPassword": {
			"required": constants.MsgPasswordRequired,
			"min":      constants.MsgNewPasswordLength,
			"max":      constants.MsgNewPasswordLength,
		},
		"ConfirmPassword": {
			"required": constants.MsgConfirmRequired,
			"min":      constants.MsgConfirmLength,
			"max":      constants.MsgConfirmLength,
			"eqfield":  constants.MsgConfirmMismatch,
		},
		"Name": {
			"required": constants.MsgProductNameMissing,
			"notblank": constants.MsgProductNameMissing,
		},
		"PriceMin": {
			"numeric":          constants.MsgPriceNotNumeric,
			"pricerange":       constants.MsgPriceRangeInvalid,
			"required_without": constants.MsgPriceRequired,
		},
		"PriceMax": {
			"numeric":          constants.MsgPriceNotNumeric,
			"pricerange":       constants.MsgPriceRangeInvalid,
			"required_without": constants.MsgPriceRequired,
		},
		"BuyCount": {
			"required": constants.MsgBuyCountInvalid,
			"gte":      constants.MsgBuyCountInvalid,
		},
	}
	return customValidationMessages[field]
}

// DefaultMessage is the fallback message for a field and tag.
func DefaultMessage(field, tag string) string {
	field = strings.ToLower(field)

	switch tag {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email", "emailpattern":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "numeric":
		return fmt.Sprintf("%s must be numeric", field)
	case "min":
		return fmt.Sprintf("%s is too short", field)
	case "max":
		return fmt.Sprintf("%s is too long", field)
	case "gte":
		return fmt.Sprintf("%s is below the minimum", field)
	case "lte":
		return fmt.Sprintf("%s is above the maximum", field)
	case "oneof":
		return fmt.Sprintf("%s has an unsupported value", field)
	case "eqfield":
		return fmt.Sprintf("%s does not match", field)
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "datetime":
		return fmt.Sprintf("%s must be a valid date", field)
	default:
		return fmt.Sprintf("%s is not valid", field)
	}
}
