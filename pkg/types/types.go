// Package types defines the core types shared across jirakit packages
package types

import (
	"time"
)

// ErrorType categorizes errors by their origin
type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "validation"
	ErrorTypeNotFound     ErrorType = "not_found"
	ErrorTypeUnauthorized ErrorType = "unauthorized"
	ErrorTypeInternal     ErrorType = "internal"
	ErrorTypeExternal     ErrorType = "external"
)

// AuthMode selects how API requests are authenticated
type AuthMode string

const (
	AuthModeBasic   AuthMode = "basic"   // email + API token (Jira Cloud)
	AuthModeBearer  AuthMode = "bearer"  // personal access token (Jira Data Center)
	AuthModeConnect AuthMode = "connect" // Atlassian Connect JWT
)

// User represents a Jira directory user
type User struct {
	AccountID    string `json:"accountId"`
	DisplayName  string `json:"displayName"`
	EmailAddress string `json:"emailAddress,omitempty"`
	Active       bool   `json:"active"`
}

// NamedRef is the id/key/name reference shape Jira uses for most
// linked entities (projects, statuses, priorities, parents).
type NamedRef struct {
	ID   string `json:"id,omitempty"`
	Key  string `json:"key,omitempty"`
	Name string `json:"name,omitempty"`
}

// IssueType represents a Jira issue type
type IssueType struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Subtask     bool   `json:"subtask"`
}

// IssueFields holds the fields block of an issue payload. Description
// bodies travel as ADF documents and are kept as raw JSON-compatible
// values; pkg/adf extracts text from them for display.
type IssueFields struct {
	Summary     string                 `json:"summary,omitempty"`
	Description map[string]interface{} `json:"description,omitempty"`
	Project     *NamedRef              `json:"project,omitempty"`
	IssueType   *IssueType             `json:"issuetype,omitempty"`
	Parent      *NamedRef              `json:"parent,omitempty"`
	Status      *NamedRef              `json:"status,omitempty"`
	Priority    *NamedRef              `json:"priority,omitempty"`
	Assignee    *User                  `json:"assignee,omitempty"`
	Reporter    *User                  `json:"reporter,omitempty"`
	DueDate     string                 `json:"duedate,omitempty"`
	Labels      []string               `json:"labels,omitempty"`
	Created     string                 `json:"created,omitempty"`
	Updated     string                 `json:"updated,omitempty"`
}

// Issue represents a Jira issue
type Issue struct {
	ID     string       `json:"id,omitempty"`
	Key    string       `json:"key"`
	Self   string       `json:"self,omitempty"`
	Fields *IssueFields `json:"fields,omitempty"`
}

// SearchResult represents a JQL search response page
type SearchResult struct {
	StartAt    int     `json:"startAt"`
	MaxResults int     `json:"maxResults"`
	Total      int     `json:"total"`
	Issues     []Issue `json:"issues"`
}

// Project represents a Jira project
type Project struct {
	ID             string      `json:"id"`
	Key            string      `json:"key"`
	Name           string      `json:"name"`
	ProjectTypeKey string      `json:"projectTypeKey,omitempty"`
	Lead           *User       `json:"lead,omitempty"`
	IssueTypes     []IssueType `json:"issueTypes,omitempty"`
}

// Transition represents an available workflow transition
type Transition struct {
	ID   string    `json:"id"`
	Name string    `json:"name"`
	To   *NamedRef `json:"to,omitempty"`
}

// TransitionsResult wraps the transitions endpoint response
type TransitionsResult struct {
	Transitions []Transition `json:"transitions"`
}

// Comment represents an issue comment. Body is an ADF document
// produced by pkg/adf.
type Comment struct {
	ID      string                 `json:"id,omitempty"`
	Author  *User                  `json:"author,omitempty"`
	Body    map[string]interface{} `json:"body,omitempty"`
	Created string                 `json:"created,omitempty"`
	Updated string                 `json:"updated,omitempty"`
}

// Worklog represents a time tracking entry on an issue
type Worklog struct {
	ID               string                 `json:"id,omitempty"`
	Author           *User                  `json:"author,omitempty"`
	Comment          map[string]interface{} `json:"comment,omitempty"`
	TimeSpent        string                 `json:"timeSpent,omitempty"`
	TimeSpentSeconds int                    `json:"timeSpentSeconds,omitempty"`
	Started          string                 `json:"started,omitempty"`
	Created          string                 `json:"created,omitempty"`
}

// WorklogPage represents a paginated worklog listing
type WorklogPage struct {
	StartAt    int       `json:"startAt"`
	MaxResults int       `json:"maxResults"`
	Total      int       `json:"total"`
	Worklogs   []Worklog `json:"worklogs"`
}

// Attachment represents attachment metadata
type Attachment struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	Author   *User  `json:"author,omitempty"`
	Created  string `json:"created,omitempty"`
	Size     int64  `json:"size"`
	MimeType string `json:"mimeType,omitempty"`
	Content  string `json:"content,omitempty"` // download URL
}

// Watchers represents the watcher list for an issue
type Watchers struct {
	IsWatching bool   `json:"isWatching"`
	WatchCount int    `json:"watchCount"`
	Watchers   []User `json:"watchers"`
}

// APIErrorBody is the error payload shape Jira returns on 4xx/5xx
type APIErrorBody struct {
	ErrorMessages []string          `json:"errorMessages,omitempty"`
	Errors        map[string]string `json:"errors,omitempty"`
	Message       string            `json:"message,omitempty"`
}

// RequestStats records client-side request accounting for metrics
type RequestStats struct {
	Method     string
	Endpoint   string
	StatusCode int
	Duration   time.Duration
}
