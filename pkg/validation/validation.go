// Package validation provides input validators for the identifiers
// and values jirakit sends to the API. Validators normalize where it
// is safe (key casing) and reject everything else before a request is
// built, so API round trips never pay for malformed input.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jirakit/jirakit/pkg/errors"
)

var (
	issueKeyPattern   = regexp.MustCompile(`^[A-Z][A-Z0-9]*-\d+$`)
	projectKeyPattern = regexp.MustCompile(`^[A-Z][A-Z0-9]*$`)
	timeSpentPattern  = regexp.MustCompile(`^\d+[wdhm](\s+\d+[wdhm])*$`)

	validate = validator.New()
)

// IssueKey validates and normalizes an issue key like PROJ-123
func IssueKey(key string) (string, error) {
	key = strings.ToUpper(strings.TrimSpace(key))
	if key == "" {
		return "", errors.NewMissingFieldError("issue key")
	}
	if !issueKeyPattern.MatchString(key) {
		return "", errors.NewInvalidFormatError("issue key", "PROJECT-123")
	}
	return key, nil
}

// ProjectKey validates and normalizes a project key like PROJ
func ProjectKey(key string) (string, error) {
	key = strings.ToUpper(strings.TrimSpace(key))
	if key == "" {
		return "", errors.NewMissingFieldError("project key")
	}
	if !projectKeyPattern.MatchString(key) {
		return "", errors.NewInvalidFormatError("project key", "PROJ")
	}
	return key, nil
}

// Email validates an email address
func Email(email string) error {
	if err := validate.Var(email, "required,email"); err != nil {
		return errors.NewInvalidFormatError("email", "user@example.com")
	}
	return nil
}

// URL validates an absolute http(s) URL
func URL(raw string) error {
	if err := validate.Var(raw, "required,url"); err != nil {
		return errors.NewInvalidFormatError("url", "https://example.atlassian.net")
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		return errors.NewInvalidFormatError("url", "https://example.atlassian.net")
	}
	return nil
}

// Date validates a calendar date in Jira's YYYY-MM-DD form
func Date(value string) error {
	if value == "" {
		return errors.NewMissingFieldError("date")
	}
	if _, err := time.Parse("2006-01-02", value); err != nil {
		return errors.NewInvalidFormatError("date", "YYYY-MM-DD")
	}
	return nil
}

// TimeSpent validates a worklog duration like "2h 30m" or "1d"
func TimeSpent(value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return errors.NewMissingFieldError("time spent")
	}
	if !timeSpentPattern.MatchString(value) {
		return errors.NewInvalidFormatError("time spent", "2w 4d 6h 45m")
	}
	return nil
}

// JQL rejects queries that are empty or have unbalanced quoting, the
// two failure modes worth catching before the API does.
func JQL(query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return errors.NewMissingFieldError("jql query")
	}
	if strings.Count(query, `"`)%2 != 0 {
		return errors.NewInvalidInputError("jql query has unbalanced double quotes")
	}
	if strings.Count(query, "'")%2 != 0 {
		return errors.NewInvalidInputError("jql query has unbalanced single quotes")
	}
	if strings.Count(query, "(") != strings.Count(query, ")") {
		return errors.NewInvalidInputError("jql query has unbalanced parentheses")
	}
	return nil
}

// Required rejects empty values
func Required(value, name string) error {
	if strings.TrimSpace(value) == "" {
		return errors.NewMissingFieldError(name)
	}
	return nil
}

// Choice rejects values outside the allowed set
func Choice(value, name string, choices ...string) error {
	for _, c := range choices {
		if value == c {
			return nil
		}
	}
	return errors.NewInvalidInputError(
		fmt.Sprintf("%s must be one of: %s", name, strings.Join(choices, ", ")))
}

// All runs checks in order and returns the first failure
func All(checks ...func() error) error {
	for _, check := range checks {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}
