// Package forms validates user input locally before any request is made.
package forms

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
)

// Field names.
const (
	FieldIdentifier    = "identifier"
	FieldUsername      = "username"
	FieldEmail         = "email"
	FieldPassword      = "password"
	FieldConfirm       = "confirm_password"
	FieldPhone         = "phone"
	FieldDateOfBirth   = "date_of_birth"
	FieldGender        = "gender"
	FieldSchoolCollege = "school_college"
	FieldCity          = "city"
	FieldState         = "state"
)

// Minimum lengths for signup.
const (
	MinUsernameLen = 3
	MinPasswordLen = 6
)

var emailRe = regexp.MustCompile(`\S+@\S+\.\S+`)

// ValidationError collects per-field messages. It is never sent anywhere.
type ValidationError struct {
	FieldErrors map[string]string
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.FieldErrors))
	for f := range e.FieldErrors {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = fmt.Sprintf("%s: %s", f, e.FieldErrors[f])
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// Field returns the message for field, or "".
func (e *ValidationError) Field(field string) string {
	if e == nil {
		return ""
	}
	return e.FieldErrors[field]
}

// FieldErrors returns the per-field messages carried by err, or nil when err
// is not a validation failure.
func FieldErrors(err error) map[string]string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.FieldErrors
	}
	return nil
}

type collector map[string]string

func (c collector) add(field, msg string) {
	if _, ok := c[field]; !ok {
		c[field] = msg
	}
}

func (c collector) err() error {
	if len(c) == 0 {
		return nil
	}
	return &ValidationError{FieldErrors: c}
}

// Login holds the login form.
type Login struct {
	Identifier string
	Password   string
}

// Validate checks both fields are present.
func (f Login) Validate() error {
	c := collector{}
	if strings.TrimSpace(f.Identifier) == "" {
		c.add(FieldIdentifier, "Username or email is required")
	}
	if f.Password == "" {
		c.add(FieldPassword, "Password is required")
	}
	return c.err()
}

// Signup holds the signup form.
type Signup struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
}

// Validate applies the signup rules.
func (f Signup) Validate() error {
	c := collector{}

	switch user := strings.TrimSpace(f.Username); {
	case user == "":
		c.add(FieldUsername, "Username is required")
	case len([]rune(user)) < MinUsernameLen:
		c.add(FieldUsername, fmt.Sprintf("Username must be at least %d characters", MinUsernameLen))
	}

	switch email := strings.TrimSpace(f.Email); {
	case email == "":
		c.add(FieldEmail, "Email is required")
	case !emailRe.MatchString(email):
		c.add(FieldEmail, "Email is invalid")
	}

	switch {
	case f.Password == "":
		c.add(FieldPassword, "Password is required")
	case len([]rune(f.Password)) < MinPasswordLen:
		c.add(FieldPassword, fmt.Sprintf("Password must be at least %d characters", MinPasswordLen))
	}

	if f.Password != f.ConfirmPassword {
		c.add(FieldConfirm, "Passwords do not match")
	}
	return c.err()
}

// Genders lists the accepted profile gender values.
var Genders = []string{"Male", "Female", "Other", "Prefer not to say"}

// IndianStates lists the accepted profile states and union territories.
var IndianStates = []string{
	"Andhra Pradesh", "Arunachal Pradesh", "Assam", "Bihar", "Chhattisgarh",
	"Goa", "Gujarat", "Haryana", "Himachal Pradesh", "Jharkhand", "Karnataka",
	"Kerala", "Madhya Pradesh", "Maharashtra", "Manipur", "Meghalaya", "Mizoram",
	"Nagaland", "Odisha", "Punjab", "Rajasthan", "Sikkim", "Tamil Nadu",
	"Telangana", "Tripura", "Uttar Pradesh", "Uttarakhand", "West Bengal",
	"Delhi", "Jammu and Kashmir", "Ladakh", "Puducherry",
}

// Profile holds the editable profile fields. All are optional.
type Profile struct {
	Phone         string
	DateOfBirth   string
	Gender        string
	SchoolCollege string
	City          string
	State         string
}

// Validate checks the format of every non-empty field.
func (f Profile) Validate() error {
	c := collector{}

	if p := strings.TrimSpace(f.Phone); p != "" {
		if n := phoneDigits(p); n < 7 || n > 15 {
			c.add(FieldPhone, "Phone number must have 7 to 15 digits")
		}
	}

	if d := strings.TrimSpace(f.DateOfBirth); d != "" {
		dob, err := time.Parse(time.DateOnly, d)
		if err != nil {
			c.add(FieldDateOfBirth, "Date of birth must be YYYY-MM-DD")
		} else if dob.After(time.Now()) {
			c.add(FieldDateOfBirth, "Date of birth is in the future")
		}
	}

	if g := strings.TrimSpace(f.Gender); g != "" && CanonicalGender(g) == "" {
		c.add(FieldGender, "Select a gender from the list")
	}

	if s := strings.TrimSpace(f.State); s != "" && CanonicalState(s) == "" {
		c.add(FieldState, "Select a state from the list")
	}
	return c.err()
}

// phoneDigits counts digits in p, or returns -1 if p holds anything other
// than digits, '+', spaces and dashes.
func phoneDigits(p string) int {
	n := 0
	for _, r := range p {
		switch {
		case r >= '0' && r <= '9':
			n++
		case r == '+' || r == ' ' || r == '-':
		default:
			return -1
		}
	}
	return n
}

// CanonicalGender returns the listed spelling of g, or "".
func CanonicalGender(g string) string {
	return canonical(Genders, g)
}

// CanonicalState returns the listed spelling of s, or "".
func CanonicalState(s string) string {
	return canonical(IndianStates, s)
}

func canonical(list []string, v string) string {
	v = strings.TrimSpace(v)
	for _, item := range list {
		if strings.EqualFold(item, v) {
			return item
		}
	}
	return ""
}
