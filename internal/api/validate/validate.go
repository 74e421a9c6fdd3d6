package validate

import (
	"fmt"
	"regexp"
)

var emailRx = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// titleRx allows letters, digits, spaces, hyphen and underscore.
var titleRx = regexp.MustCompile(`^[A-Za-z0-9 _\-]+$`)

func Email(v string) error {
	if v == "" {
		return fmt.Errorf("email is required")
	}
	if len(v) > 320 || !emailRx.MatchString(v) {
		return fmt.Errorf("invalid email")
	}
	return nil
}

func NonEmpty(field, v string) error {
	if v == "" {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}

// ProjectTitle validates a project title: 1-100 bytes of letters, digits,
// spaces, hyphen or underscore.
func ProjectTitle(v string) error {
	if v == "" {
		return fmt.Errorf("title is required")
	}
	if len(v) > 100 {
		return fmt.Errorf("title exceeds 100 characters")
	}
	if !titleRx.MatchString(v) {
		return fmt.Errorf("title contains invalid characters")
	}
	return nil
}

// -------- Request specific helpers ----------

// Register validates input for user registration. All fields are mandatory.
func Register(email, password, name, surname string) error {
	if err := Email(email); err != nil {
		return err
	}
	if err := NonEmpty("password", password); err != nil {
		return err
	}
	if err := NonEmpty("name", name); err != nil {
		return err
	}
	return NonEmpty("surname", surname)
}

// Login validates login input.
func Login(email, password string) error {
	if err := NonEmpty("email", email); err != nil {
		return err
	}
	return NonEmpty("password", password)
}
