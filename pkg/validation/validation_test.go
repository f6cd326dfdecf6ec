package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueKey(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		key, err := IssueKey("PROJ-123")
		require.NoError(t, err)
		assert.Equal(t, "PROJ-123", key)
	})

	t.Run("normalizes case and whitespace", func(t *testing.T) {
		key, err := IssueKey("  proj-7 ")
		require.NoError(t, err)
		assert.Equal(t, "PROJ-7", key)
	})

	t.Run("invalid", func(t *testing.T) {
		for _, bad := range []string{"", "PROJ", "123-PROJ", "PROJ-", "1PROJ-2", "PROJ 123"} {
			_, err := IssueKey(bad)
			assert.Error(t, err, "expected error for %q", bad)
		}
	})
}

func TestProjectKey(t *testing.T) {
	key, err := ProjectKey("proj")
	require.NoError(t, err)
	assert.Equal(t, "PROJ", key)

	for _, bad := range []string{"", "1ABC", "A-B", "A B"} {
		_, err := ProjectKey(bad)
		assert.Error(t, err, "expected error for %q", bad)
	}
}

func TestEmail(t *testing.T) {
	assert.NoError(t, Email("user@example.com"))
	assert.Error(t, Email(""))
	assert.Error(t, Email("not-an-email"))
}

func TestURL(t *testing.T) {
	assert.NoError(t, URL("https://example.atlassian.net"))
	assert.Error(t, URL(""))
	assert.Error(t, URL("ftp://example.com"))
	assert.Error(t, URL("example.com"))
}

func TestDate(t *testing.T) {
	assert.NoError(t, Date("2026-08-31"))
	assert.Error(t, Date(""))
	assert.Error(t, Date("31-08-2026"))
	assert.Error(t, Date("2026-13-01"))
	assert.Error(t, Date("2026-02-30"))
}

func TestTimeSpent(t *testing.T) {
	for _, good := range []string{"30m", "2h", "1d", "1w", "2h 30m", "1w 2d 3h 45m"} {
		assert.NoError(t, TimeSpent(good), "expected %q to validate", good)
	}
	for _, bad := range []string{"", "2x", "h30", "2h30", "two hours"} {
		assert.Error(t, TimeSpent(bad), "expected error for %q", bad)
	}
}

func TestJQL(t *testing.T) {
	assert.NoError(t, JQL(`project = PROJ AND status = "In Progress"`))
	assert.Error(t, JQL(""))
	assert.Error(t, JQL(`summary ~ "unbalanced`))
	assert.Error(t, JQL(`status in ('Open'`))
}

func TestChoice(t *testing.T) {
	assert.NoError(t, Choice("basic", "auth mode", "basic", "bearer", "connect"))
	assert.Error(t, Choice("oauth", "auth mode", "basic", "bearer", "connect"))
}

func TestAll(t *testing.T) {
	err := All(
		func() error { return Required("x", "field") },
		func() error { return Date("2026-01-01") },
	)
	assert.NoError(t, err)

	err = All(
		func() error { return Required("", "field") },
		func() error { t.Fatal("second check must not run"); return nil },
	)
	assert.Error(t, err)
}
