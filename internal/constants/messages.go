package constants

// Form validation messages shown to shoppers.
const (
	MsgEmailRequired      = "Email is required"
	MsgEmailInvalid       = "Email is not valid"
	MsgEmailLength        = "Email length must be from 5 - 160 characters"
	MsgPasswordRequired   = "Password is required"
	MsgPasswordLength     = "Password length must be from 6 - 160 characters"
	MsgConfirmRequired    = "Confirm password is required"
	MsgConfirmLength      = "Confirm password length must be from 6 - 160 characters"
	MsgConfirmMismatch    = "Confirm_password does not match"
	MsgNewPasswordLength  = "New password length must be from 6 - 160 characters"
	MsgProductNameMissing = "Product name is required"
	MsgPriceRequired      = "At least one price is required"
	MsgPriceNotNumeric    = "Price must be a whole number"
	MsgPriceRangeInvalid  = "Maximum price must be greater than or equal to minimum price"
	MsgBuyCountInvalid    = "Buy count must be at least 1"
	MsgValidationFailed   = "Validation failed"
	MsgInvalidJSON        = "Invalid JSON body"
)
