// Package validation holds the registration form rules. Rules run in a
// fixed order and the first failure is the only one reported.
package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"restockd_backend/internal/address"
	"restockd_backend/platform/phone"
	platformvalidator "restockd_backend/platform/validator"

	"github.com/go-playground/validator/v10"
)

// Role is the kind of registrant.
type Role string

const (
	RoleDonor    Role = "Donor"
	RoleFoodBank Role = "Food Bank"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleDonor || r == RoleFoodBank
}

// MinPasswordLength counts characters, not bytes.
const MinPasswordLength = 6

// PhoneDigits is the number of digits a phone number must contain.
const PhoneDigits = 10

const (
	MsgRoleRequired         = "Please select a role."
	MsgPasswordMismatch     = "Passwords do not match."
	MsgPasswordTooShort     = "Password must be at least 6 characters."
	MsgInvalidEmail         = "Please enter a valid email address."
	MsgInvalidPhone         = "Phone number must be exactly 10 digits."
	MsgInvalidState         = "State must be a 2-letter code (e.g., IL, CA, NY)."
	MsgInvalidZip           = "Zip code must be 5 digits (e.g., 60616) or 5+4 format (e.g., 60616-1234)."
	MsgDonorNameRequired    = "Please enter your first and last name."
	MsgFoodBankNameRequired = "Please enter the food bank name."
)

// Custom validator tags registered by NewEngine.
const (
	TagLooseEmail  = "loose_email"
	TagStateCode   = "state_code"
	TagZipCode     = "zip_code"
	TagPhoneDigits = "phone_digits"
)

var (
	// Whitespace here is any Unicode separator plus \t\n\v\f\r and BOM.
	looseEmailPattern = regexp.MustCompile(`^[^\s\v\p{Z}\x{feff}@]+@[^\s\v\p{Z}\x{feff}@]+\.[^\s\v\p{Z}\x{feff}@]+$`)
	stateCodePattern  = regexp.MustCompile(`^[A-Za-z]{2}$`)
	zipCodePattern    = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
)

// Snapshot is the registration form at submission time.
type Snapshot struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Role            Role   `json:"role"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	FoodBankName    string `json:"foodBankName"`
	Phone           string `json:"phone"`
	address.CanonicalAddress
}

// Normalized returns a copy ready for storage: the state code is upper-cased.
func (s Snapshot) Normalized() Snapshot {
	s.State = strings.ToUpper(s.State)
	return s
}

// Verdict is the outcome of validation. Message is set only when invalid.
type Verdict struct {
	Valid   bool   `json:"valid"`
	Message string `json:"error,omitempty"`
}

func valid() Verdict { return Verdict{Valid: true} }

func invalid(message string) Verdict { return Verdict{Message: message} }

type rule struct {
	message string
	// credential rules concern the password pair and are skipped for
	// profile data submitted after sign-up.
	credential bool
	ok         func(s Snapshot) bool
}

// Engine evaluates the rules. It performs no I/O.
type Engine struct {
	val   *platformvalidator.Validator
	rules []rule
}

// NewEngine registers the custom tags on val and builds the rule list.
func NewEngine(val *platformvalidator.Validator) (*Engine, error) {
	for tag, fn := range map[string]validator.Func{
		TagLooseEmail:  matches(looseEmailPattern),
		TagStateCode:   matches(stateCodePattern),
		TagZipCode:     matches(zipCodePattern),
		TagPhoneDigits: phoneDigits,
	} {
		if err := val.RegisterValidation(tag, fn); err != nil {
			return nil, err
		}
	}

	e := &Engine{val: val}
	e.rules = []rule{
		{message: MsgRoleRequired, ok: func(s Snapshot) bool { return s.Role != "" }},
		{message: MsgPasswordMismatch, credential: true, ok: func(s Snapshot) bool { return s.Password == s.ConfirmPassword }},
		{message: MsgPasswordTooShort, credential: true, ok: func(s Snapshot) bool {
			return utf8.RuneCountInString(s.Password) >= MinPasswordLength
		}},
		{message: MsgInvalidEmail, ok: e.field(func(s Snapshot) string { return s.Email }, TagLooseEmail)},
		{message: MsgInvalidPhone, ok: e.field(func(s Snapshot) string { return s.Phone }, TagPhoneDigits)},
		{message: MsgInvalidState, ok: e.field(func(s Snapshot) string { return s.State }, TagStateCode)},
		{message: MsgInvalidZip, ok: e.field(func(s Snapshot) string { return s.PostalCode }, TagZipCode)},
		{message: MsgDonorNameRequired, ok: func(s Snapshot) bool {
			return s.Role != RoleDonor || (s.FirstName != "" && s.LastName != "")
		}},
		{message: MsgFoodBankNameRequired, ok: func(s Snapshot) bool {
			return s.Role != RoleFoodBank || s.FoodBankName != ""
		}},
	}
	return e, nil
}

// MustNewEngine is NewEngine for package initialisation.
func MustNewEngine(val *platformvalidator.Validator) *Engine {
	e, err := NewEngine(val)
	if err != nil {
		panic(err)
	}
	return e
}

// Validate runs every rule and reports the first failure.
func (e *Engine) Validate(s Snapshot) Verdict {
	return e.run(s, true)
}

// ValidateProfile runs every rule except the password ones. Used for
// profile data, which never carries credentials.
func (e *Engine) ValidateProfile(s Snapshot) Verdict {
	return e.run(s, false)
}

func (e *Engine) run(s Snapshot, withCredentials bool) Verdict {
	for _, r := range e.rules {
		if r.credential && !withCredentials {
			continue
		}
		if !r.ok(s) {
			return invalid(r.message)
		}
	}
	return valid()
}

func (e *Engine) field(get func(Snapshot) string, tag string) func(Snapshot) bool {
	return func(s Snapshot) bool {
		return e.val.Var(get(s), tag) == nil
	}
}

func matches(pattern *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return pattern.MatchString(fl.Field().String())
	}
}

func phoneDigits(fl validator.FieldLevel) bool {
	return len(phone.Digits(fl.Field().String())) == PhoneDigits
}
