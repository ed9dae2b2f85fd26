package sambatool

// Credentials authenticate a samba-tool invocation against the DC.
// The zero value is valid and renders empty flag values.
type Credentials struct {
	username string
	password string
}

// NewCredentials returns credentials for the given user. No validation is
// performed; empty values are passed to samba-tool unchanged.
func NewCredentials(username, password string) Credentials {
	return Credentials{username: username, password: password}
}

// Username returns the user name.
func (c Credentials) Username() string {
	return c.username
}

// flags renders the two trailing credential tokens.
func (c Credentials) flags() []string {
	return []string{
		"--username=" + c.username,
		"--password=" + c.password,
	}
}

// redactedFlags renders the credential tokens with the password masked.
func (c Credentials) redactedFlags() []string {
	password := ""
	if c.password != "" {
		password = redacted
	}
	return []string{
		"--username=" + c.username,
		"--password=" + password,
	}
}

const redacted = "********"
