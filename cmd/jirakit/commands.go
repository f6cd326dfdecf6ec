package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/jirakit/jirakit/pkg/adf"
	"github.com/jirakit/jirakit/pkg/client"
	"github.com/jirakit/jirakit/pkg/config"
	"github.com/jirakit/jirakit/pkg/errors"
	"github.com/jirakit/jirakit/pkg/interfaces"
	"github.com/jirakit/jirakit/pkg/types"
)

type app struct {
	client *client.Client
	cfg    *config.Config
	logger interfaces.Logger
	json   bool
}

func (a *app) dispatch(ctx context.Context, command string, args []string) error {
	switch command {
	case "me":
		return a.me(ctx)
	case "search":
		return a.search(ctx, args)
	case "issue":
		return a.issue(ctx, args)
	case "comment":
		return a.comment(ctx, args)
	case "worklog":
		return a.worklog(ctx, args)
	case "watcher":
		return a.watcher(ctx, args)
	case "attach":
		return a.attach(ctx, args)
	case "user":
		return a.user(ctx, args)
	case "project":
		return a.project(ctx, args)
	case "bulk":
		return a.bulk(ctx, args)
	default:
		return errors.NewInvalidInputError(fmt.Sprintf("unknown command: %s", command))
	}
}

func (a *app) me(ctx context.Context) error {
	user, err := a.client.Ping(ctx)
	if err != nil {
		return err
	}
	if a.json {
		return printJSON(user)
	}
	fmt.Printf("%s <%s> (%s)\n", user.DisplayName, user.EmailAddress, user.AccountID)
	return nil
}

func (a *app) search(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	max := fs.Int("max", 50, "Maximum results")
	start := fs.Int("start", 0, "Result offset")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errors.NewMissingFieldError("jql query")
	}

	result, err := a.client.Search(ctx, strings.Join(fs.Args(), " "), *start, *max, nil)
	if err != nil {
		return err
	}
	if a.json {
		return printJSON(result)
	}

	w := newTable()
	fmt.Fprintln(w, "KEY\tTYPE\tSTATUS\tSUMMARY")
	for _, issue := range result.Issues {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			issue.Key,
			fieldName(issue, func(f *types.IssueFields) string {
				if f.IssueType != nil {
					return f.IssueType.Name
				}
				return ""
			}),
			fieldName(issue, func(f *types.IssueFields) string {
				if f.Status != nil {
					return f.Status.Name
				}
				return ""
			}),
			fieldName(issue, func(f *types.IssueFields) string { return f.Summary }),
		)
	}
	w.Flush()
	fmt.Printf("\n%d of %d issues\n", len(result.Issues), result.Total)
	return nil
}

func (a *app) issue(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.NewMissingFieldError("issue subcommand")
	}
	sub, rest := args[0], args[1:]

	switch sub {
	case "get":
		if len(rest) < 1 {
			return errors.NewMissingFieldError("issue key")
		}
		issue, err := a.client.GetIssue(ctx, rest[0])
		if err != nil {
			return err
		}
		if a.json {
			return printJSON(issue)
		}
		printIssue(issue)
		return nil

	case "create":
		fs := flag.NewFlagSet("issue create", flag.ContinueOnError)
		project := fs.String("project", "", "Project key")
		summary := fs.String("summary", "", "Issue summary")
		description := fs.String("description", "", "Description markdown")
		issueType := fs.String("type", "Task", "Issue type name")
		priority := fs.String("priority", "", "Priority name")
		assignee := fs.String("assignee", "", "Assignee account id")
		labels := fs.String("labels", "", "Comma-separated labels")
		dueDate := fs.String("due", "", "Due date (YYYY-MM-DD)")
		if err := fs.Parse(rest); err != nil {
			return err
		}

		created, err := a.client.CreateIssue(ctx, client.CreateIssueInput{
			ProjectKey:  *project,
			Summary:     *summary,
			Description: *description,
			IssueType:   *issueType,
			Priority:    *priority,
			AssigneeID:  *assignee,
			Labels:      splitLabels(*labels),
			DueDate:     *dueDate,
		})
		if err != nil {
			return err
		}
		if a.json {
			return printJSON(created)
		}
		fmt.Printf("created %s\n", created.Key)
		return nil

	case "update":
		if len(rest) < 1 {
			return errors.NewMissingFieldError("issue key")
		}
		key := rest[0]
		fs := flag.NewFlagSet("issue update", flag.ContinueOnError)
		summary := fs.String("summary", "", "New summary")
		description := fs.String("description", "", "New description markdown")
		priority := fs.String("priority", "", "New priority name")
		assignee := fs.String("assignee", "", "New assignee account id")
		labels := fs.String("labels", "", "Replacement comma-separated labels")
		dueDate := fs.String("due", "", "New due date (YYYY-MM-DD)")
		if err := fs.Parse(rest[1:]); err != nil {
			return err
		}

		input := client.UpdateIssueInput{}
		fs.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "summary":
				input.Summary = summary
			case "description":
				input.Description = description
			case "priority":
				input.Priority = priority
			case "assignee":
				input.AssigneeID = assignee
			case "labels":
				input.Labels = splitLabels(*labels)
			case "due":
				input.DueDate = dueDate
			}
		})

		if err := a.client.UpdateIssue(ctx, key, input); err != nil {
			return err
		}
		fmt.Printf("updated %s\n", strings.ToUpper(key))
		return nil

	case "delete":
		if len(rest) < 1 {
			return errors.NewMissingFieldError("issue key")
		}
		fs := flag.NewFlagSet("issue delete", flag.ContinueOnError)
		cascade := fs.Bool("subtasks", false, "Also delete subtasks")
		if err := fs.Parse(rest[1:]); err != nil {
			return err
		}
		if err := a.client.DeleteIssue(ctx, rest[0], *cascade); err != nil {
			return err
		}
		fmt.Printf("deleted %s\n", strings.ToUpper(rest[0]))
		return nil

	case "assign":
		if len(rest) < 2 {
			return errors.NewMissingFieldError("issue key and account id")
		}
		if err := a.client.AssignIssue(ctx, rest[0], rest[1]); err != nil {
			return err
		}
		fmt.Printf("assigned %s\n", strings.ToUpper(rest[0]))
		return nil

	case "transitions":
		if len(rest) < 1 {
			return errors.NewMissingFieldError("issue key")
		}
		transitions, err := a.client.GetTransitions(ctx, rest[0])
		if err != nil {
			return err
		}
		if a.json {
			return printJSON(transitions)
		}
		w := newTable()
		fmt.Fprintln(w, "ID\tNAME\tTO")
		for _, t := range transitions {
			to := ""
			if t.To != nil {
				to = t.To.Name
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", t.ID, t.Name, to)
		}
		return w.Flush()

	case "transition":
		if len(rest) < 2 {
			return errors.NewMissingFieldError("issue key and transition")
		}
		if err := a.client.TransitionIssue(ctx, rest[0], strings.Join(rest[1:], " ")); err != nil {
			return err
		}
		fmt.Printf("transitioned %s\n", strings.ToUpper(rest[0]))
		return nil

	case "subtask":
		if len(rest) < 1 {
			return errors.NewMissingFieldError("parent issue key")
		}
		fs := flag.NewFlagSet("issue subtask", flag.ContinueOnError)
		summary := fs.String("summary", "", "Subtask summary")
		description := fs.String("description", "", "Description markdown")
		if err := fs.Parse(rest[1:]); err != nil {
			return err
		}
		created, err := a.client.CreateSubtask(ctx, rest[0], *summary, *description)
		if err != nil {
			return err
		}
		fmt.Printf("created %s\n", created.Key)
		return nil

	default:
		return errors.NewInvalidInputError("unknown issue subcommand: " + sub)
	}
}

func (a *app) comment(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errors.NewMissingFieldError("comment subcommand and issue key")
	}
	sub, key := args[0], args[1]

	switch sub {
	case "add":
		fs := flag.NewFlagSet("comment add", flag.ContinueOnError)
		body := fs.String("body", "", "Comment markdown")
		if err := fs.Parse(args[2:]); err != nil {
			return err
		}
		text := *body
		if text == "" && fs.NArg() > 0 {
			text = strings.Join(fs.Args(), " ")
		}
		comment, err := a.client.AddComment(ctx, key, text)
		if err != nil {
			return err
		}
		fmt.Printf("comment %s added\n", comment.ID)
		return nil

	case "update":
		if len(args) < 3 {
			return errors.NewMissingFieldError("comment id")
		}
		fs := flag.NewFlagSet("comment update", flag.ContinueOnError)
		body := fs.String("body", "", "Replacement comment markdown")
		if err := fs.Parse(args[3:]); err != nil {
			return err
		}
		comment, err := a.client.UpdateComment(ctx, key, args[2], *body)
		if err != nil {
			return err
		}
		fmt.Printf("comment %s updated\n", comment.ID)
		return nil

	case "delete":
		if len(args) < 3 {
			return errors.NewMissingFieldError("comment id")
		}
		if err := a.client.DeleteComment(ctx, key, args[2]); err != nil {
			return err
		}
		fmt.Println("comment deleted")
		return nil

	case "list":
		comments, err := a.client.GetComments(ctx, key)
		if err != nil {
			return err
		}
		if a.json {
			return printJSON(comments)
		}
		for _, comment := range comments {
			author := ""
			if comment.Author != nil {
				author = comment.Author.DisplayName
			}
			fmt.Printf("[%s] %s (%s)\n%s\n\n", comment.ID, author, comment.Created,
				adf.PlainTextFromMap(comment.Body))
		}
		return nil

	default:
		return errors.NewInvalidInputError("unknown comment subcommand: " + sub)
	}
}

func (a *app) worklog(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errors.NewMissingFieldError("worklog subcommand and issue key")
	}
	sub, key := args[0], args[1]

	switch sub {
	case "add":
		fs := flag.NewFlagSet("worklog add", flag.ContinueOnError)
		timeSpent := fs.String("time", "", "Time spent, e.g. 2h 30m")
		started := fs.String("started", "", "Start timestamp (RFC 3339)")
		comment := fs.String("comment", "", "Worklog comment markdown")
		if err := fs.Parse(args[2:]); err != nil {
			return err
		}
		worklog, err := a.client.AddWorklog(ctx, key, *timeSpent, *started, *comment)
		if err != nil {
			return err
		}
		fmt.Printf("worklog %s added (%s)\n", worklog.ID, worklog.TimeSpent)
		return nil

	case "list":
		page, err := a.client.ListWorklogs(ctx, key)
		if err != nil {
			return err
		}
		if a.json {
			return printJSON(page)
		}
		w := newTable()
		fmt.Fprintln(w, "ID\tAUTHOR\tTIME\tSTARTED")
		for _, entry := range page.Worklogs {
			author := ""
			if entry.Author != nil {
				author = entry.Author.DisplayName
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", entry.ID, author, entry.TimeSpent, entry.Started)
		}
		return w.Flush()

	case "update":
		if len(args) < 3 {
			return errors.NewMissingFieldError("worklog id")
		}
		fs := flag.NewFlagSet("worklog update", flag.ContinueOnError)
		timeSpent := fs.String("time", "", "New time spent")
		comment := fs.String("comment", "", "New comment markdown")
		if err := fs.Parse(args[3:]); err != nil {
			return err
		}
		worklog, err := a.client.UpdateWorklog(ctx, key, args[2], *timeSpent, *comment)
		if err != nil {
			return err
		}
		fmt.Printf("worklog %s updated\n", worklog.ID)
		return nil

	case "delete":
		if len(args) < 3 {
			return errors.NewMissingFieldError("worklog id")
		}
		if err := a.client.DeleteWorklog(ctx, key, args[2]); err != nil {
			return err
		}
		fmt.Println("worklog deleted")
		return nil

	default:
		return errors.NewInvalidInputError("unknown worklog subcommand: " + sub)
	}
}

func (a *app) watcher(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errors.NewMissingFieldError("watcher subcommand and issue key")
	}
	sub, key := args[0], args[1]

	switch sub {
	case "list":
		watchers, err := a.client.GetWatchers(ctx, key)
		if err != nil {
			return err
		}
		if a.json {
			return printJSON(watchers)
		}
		fmt.Printf("%d watcher(s)\n", watchers.WatchCount)
		for _, user := range watchers.Watchers {
			fmt.Printf("  %s (%s)\n", user.DisplayName, user.AccountID)
		}
		return nil

	case "add":
		if len(args) < 3 {
			return errors.NewMissingFieldError("account id")
		}
		return a.client.AddWatcher(ctx, key, args[2])

	case "remove":
		if len(args) < 3 {
			return errors.NewMissingFieldError("account id")
		}
		return a.client.RemoveWatcher(ctx, key, args[2])

	default:
		return errors.NewInvalidInputError("unknown watcher subcommand: " + sub)
	}
}

func (a *app) attach(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errors.NewMissingFieldError("attach subcommand and argument")
	}
	sub := args[0]

	switch sub {
	case "upload":
		if len(args) < 3 {
			return errors.NewMissingFieldError("file path")
		}
		attachments, err := a.client.UploadAttachment(ctx, args[1], args[2])
		if err != nil {
			return err
		}
		for _, att := range attachments {
			fmt.Printf("uploaded %s (%s)\n", att.Filename, att.ID)
		}
		return nil

	case "list":
		attachments, err := a.client.ListAttachments(ctx, args[1])
		if err != nil {
			return err
		}
		if a.json {
			return printJSON(attachments)
		}
		w := newTable()
		fmt.Fprintln(w, "ID\tFILE\tSIZE\tAUTHOR")
		for _, att := range attachments {
			author := ""
			if att.Author != nil {
				author = att.Author.DisplayName
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", att.ID, att.Filename, att.Size, author)
		}
		return w.Flush()

	case "download":
		if len(args) < 3 {
			return errors.NewMissingFieldError("destination path")
		}
		data, err := a.client.DownloadAttachment(ctx, args[1])
		if err != nil {
			return err
		}
		if err := os.WriteFile(args[2], data, 0o644); err != nil {
			return errors.NewFileError(err.Error())
		}
		fmt.Printf("wrote %d bytes to %s\n", len(data), args[2])
		return nil

	case "delete":
		if err := a.client.DeleteAttachment(ctx, args[1]); err != nil {
			return err
		}
		fmt.Println("attachment deleted")
		return nil

	default:
		return errors.NewInvalidInputError("unknown attach subcommand: " + sub)
	}
}

func (a *app) user(ctx context.Context, args []string) error {
	if len(args) < 2 || args[0] != "search" {
		return errors.NewInvalidInputError("usage: user search <query>")
	}
	users, err := a.client.SearchUsers(ctx, strings.Join(args[1:], " "), 20)
	if err != nil {
		return err
	}
	if a.json {
		return printJSON(users)
	}
	w := newTable()
	fmt.Fprintln(w, "ACCOUNT ID\tNAME\tEMAIL\tACTIVE")
	for _, user := range users {
		fmt.Fprintf(w, "%s\t%s\t%s\t%t\n", user.AccountID, user.DisplayName, user.EmailAddress, user.Active)
	}
	return w.Flush()
}

func (a *app) project(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.NewMissingFieldError("project subcommand")
	}
	switch args[0] {
	case "list":
		projects, err := a.client.ListProjects(ctx, 0, 50)
		if err != nil {
			return err
		}
		if a.json {
			return printJSON(projects)
		}
		w := newTable()
		fmt.Fprintln(w, "KEY\tNAME\tTYPE")
		for _, p := range projects {
			fmt.Fprintf(w, "%s\t%s\t%s\n", p.Key, p.Name, p.ProjectTypeKey)
		}
		return w.Flush()

	case "get":
		if len(args) < 2 {
			return errors.NewMissingFieldError("project key")
		}
		project, err := a.client.GetProject(ctx, args[1])
		if err != nil {
			return err
		}
		if a.json {
			return printJSON(project)
		}
		fmt.Printf("%s: %s\n", project.Key, project.Name)
		if len(project.IssueTypes) > 0 {
			fmt.Println("issue types:")
			for _, it := range project.IssueTypes {
				marker := ""
				if it.Subtask {
					marker = " (subtask)"
				}
				fmt.Printf("  %s%s\n", it.Name, marker)
			}
		}
		return nil

	default:
		return errors.NewInvalidInputError("unknown project subcommand: " + args[0])
	}
}

func (a *app) bulk(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return errors.NewInvalidInputError("usage: bulk <transition|assign|comment|watch|unwatch> <value> <key>...")
	}
	sub, value, keys := args[0], args[1], args[2:]

	var result *client.BulkResult
	switch sub {
	case "transition":
		result = a.client.BulkTransition(ctx, keys, value)
	case "assign":
		result = a.client.BulkAssign(ctx, keys, value)
	case "comment":
		result = a.client.BulkComment(ctx, keys, value)
	case "watch":
		result = a.client.BulkWatch(ctx, keys, value)
	case "unwatch":
		result = a.client.BulkUnwatch(ctx, keys, value)
	default:
		return errors.NewInvalidInputError("unknown bulk subcommand: " + sub)
	}

	for _, key := range result.Succeeded {
		fmt.Printf("ok   %s\n", key)
	}
	for key, err := range result.Failed {
		fmt.Printf("fail %s: %v\n", key, err)
	}
	return result.Err()
}

func runConfig(cfg *config.Config, args []string) error {
	if len(args) == 0 {
		return errors.NewMissingFieldError("config subcommand")
	}
	switch args[0] {
	case "show":
		for key, value := range cfg.Redacted() {
			fmt.Printf("%s: %s\n", key, value)
		}
		return nil

	case "init":
		path := defaultConfigPath()
		if len(args) > 1 {
			path = args[1]
		}
		if err := cfg.SaveFile(path); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", path)
		return nil

	default:
		return errors.NewInvalidInputError("unknown config subcommand: " + args[0])
	}
}

func printIssue(issue *types.Issue) {
	fmt.Printf("%s", issue.Key)
	if issue.Fields == nil {
		fmt.Println()
		return
	}
	f := issue.Fields
	fmt.Printf(": %s\n", f.Summary)
	if f.Status != nil {
		fmt.Printf("status:   %s\n", f.Status.Name)
	}
	if f.IssueType != nil {
		fmt.Printf("type:     %s\n", f.IssueType.Name)
	}
	if f.Priority != nil {
		fmt.Printf("priority: %s\n", f.Priority.Name)
	}
	if f.Assignee != nil {
		fmt.Printf("assignee: %s\n", f.Assignee.DisplayName)
	}
	if f.DueDate != "" {
		fmt.Printf("due:      %s\n", f.DueDate)
	}
	if len(f.Labels) > 0 {
		fmt.Printf("labels:   %s\n", strings.Join(f.Labels, ", "))
	}
	if description := adf.PlainTextFromMap(f.Description); description != "" {
		fmt.Printf("\n%s\n", description)
	}
}

func fieldName(issue types.Issue, pick func(*types.IssueFields) string) string {
	if issue.Fields == nil {
		return ""
	}
	return pick(issue.Fields)
}

func splitLabels(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	labels := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			labels = append(labels, p)
		}
	}
	return labels
}

func newTable() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.NewInternalErrorWithCause("failed to encode output", err)
	}
	fmt.Println(string(data))
	return nil
}
