// Package validation checks user input before any network call is made and
// reports failures with the messages shown to the user.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/dmitrijs2005/mediahub/internal/client/models"
	"github.com/go-playground/validator/v10"
)

const DefaultMaxUploadSize = 10 << 20

const (
	MsgFileTooLarge  = "File size exceeds 10MB limit"
	MsgWrongFileType = "Please select an image or video file"
	MsgNoFile        = "Please select a file to update"
)

// FieldError is a single failed rule.
type FieldError struct {
	Field   string
	Message string
}

// Errors collects every failed rule of one form.
type Errors []FieldError

func (e Errors) Error() string {
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Message
	}
	return strings.Join(msgs, "; ")
}

// messages maps "<Struct>.<field>.<tag>" to the user-facing text.
var messages = map[string]string{
	"SignInForm.email.required":    "Email is required",
	"SignInForm.email.email":       "Invalid email format",
	"SignInForm.password.required": "Password is required",

	"SignUpForm.fullName.required":        "Full name is required",
	"SignUpForm.fullName.min":             "Name is too short",
	"SignUpForm.fullName.max":             "Name is too long",
	"SignUpForm.email.required":           "Email is required",
	"SignUpForm.email.email":              "Invalid email",
	"SignUpForm.password.required":        "Password is required",
	"SignUpForm.password.min":             "Password must be at least 8 characters",
	"SignUpForm.confirmPassword.required": "Please confirm your password",
	"SignUpForm.confirmPassword.eqfield":  "Passwords must match",

	"UploadFile.FileName.required":     MsgNoFile,
	"UploadFile.Size.gt":               MsgNoFile,
	"UploadFile.ContentType.required":  MsgWrongFileType,
	"UploadFile.ContentType.mediatype": MsgWrongFileType,
}

// Validator wraps a configured validator.Validate.
type Validator struct {
	v             *validator.Validate
	maxUploadSize int64
}

func New(maxUploadSize int64) (*Validator, error) {
	if maxUploadSize <= 0 {
		maxUploadSize = DefaultMaxUploadSize
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	if err := v.RegisterValidation("mediatype", validateMediaType); err != nil {
		return nil, fmt.Errorf("failed to register mediatype validator: %w", err)
	}

	return &Validator{v: v, maxUploadSize: maxUploadSize}, nil
}

// validateMediaType accepts image/* and video/* content types.
func validateMediaType(fl validator.FieldLevel) bool {
	ct := fl.Field().String()
	return strings.HasPrefix(ct, "image/") || strings.HasPrefix(ct, "video/")
}

func (v *Validator) SignIn(f models.SignInForm) error {
	return v.check(f)
}

func (v *Validator) SignUp(f models.SignUpForm) error {
	return v.check(f)
}

// Upload checks a file for upload or update. A nil file is reported as
// missing.
func (v *Validator) Upload(f *models.UploadFile) error {
	if f == nil {
		return Errors{{Field: "file", Message: MsgNoFile}}
	}
	if f.Size > v.maxUploadSize {
		return Errors{{Field: "file", Message: MsgFileTooLarge}}
	}
	return v.check(f)
}

func (v *Validator) check(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}

	out := make(Errors, 0, len(ve))
	for _, fe := range ve {
		out = append(out, FieldError{Field: fe.Field(), Message: message(fe)})
	}
	return out
}

func message(fe validator.FieldError) string {
	if m, ok := messages[fe.Namespace()+"."+fe.Tag()]; ok {
		return m
	}
	return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
}
