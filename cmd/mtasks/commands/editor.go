package commands

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"mtasks/internal/application/dto"
	"mtasks/internal/infrastructure/serialization"
	"mtasks/pkg/dateutil"
	"mtasks/pkg/slug"
)

// taskTemplate is the editable form of a new task
type taskTemplate struct {
	Title       string
	Description string
	Category    string
	Priority    string
	Due         string
}

// editTaskDraft opens $EDITOR on a frontmatter template and reads it back
func editTaskDraft(tmpl taskTemplate) (taskTemplate, error) {
	if tmpl.Category == "" {
		tmpl.Category = "personal"
	}
	if tmpl.Priority == "" {
		tmpl.Priority = "medium"
	}

	header := map[string]any{
		"category": tmpl.Category,
		"priority": tmpl.Priority,
		"due":      tmpl.Due,
	}
	body := "# " + tmpl.Title
	if tmpl.Description != "" {
		body += "\n\n" + tmpl.Description
	}
	data, err := serialization.SerializeFrontmatter(header, body)
	if err != nil {
		return tmpl, err
	}

	edited, err := openEditor(data, tmpl.Title)
	if err != nil {
		return tmpl, fmt.Errorf("failed to open editor: %w", err)
	}

	doc, err := serialization.ParseFrontmatter(edited)
	if err != nil {
		return tmpl, fmt.Errorf("failed to parse task frontmatter: %w", err)
	}
	title, description, err := parseMarkdownTask(doc.Content)
	if err != nil {
		return tmpl, err
	}

	return taskTemplate{
		Title:       title,
		Description: description,
		Category:    frontmatterString(doc.Frontmatter, "category"),
		Priority:    frontmatterString(doc.Frontmatter, "priority"),
		Due:         frontmatterString(doc.Frontmatter, "due"),
	}, nil
}

// templateFromTask fills the editable form with a stored task
func templateFromTask(task dto.TaskDTO) taskTemplate {
	tmpl := taskTemplate{
		Title:       task.Title,
		Description: task.Description,
		Category:    strings.ToLower(task.Category),
		Priority:    strings.ToLower(task.Priority),
	}
	if task.DueDate != nil {
		tmpl.Due = task.DueDate.In(time.Local).Format(dateutil.DayLayout)
	}
	return tmpl
}

// updateFromTemplates turns the edits between before and after into an
// update request. Unchanged fields are left out.
func updateFromTemplates(before, after taskTemplate) (dto.UpdateTaskRequest, error) {
	var req dto.UpdateTaskRequest
	if after.Title != before.Title {
		req.Title = &after.Title
	}
	if after.Description != before.Description {
		req.Description = &after.Description
	}
	if !strings.EqualFold(after.Category, before.Category) {
		req.Category = &after.Category
	}
	if !strings.EqualFold(after.Priority, before.Priority) {
		req.Priority = &after.Priority
	}
	if after.Due != before.Due {
		if after.Due == "" {
			req.ClearDueDate = true
		} else {
			due, err := parseDue(after.Due)
			if err != nil {
				return req, err
			}
			req.DueDate = due
		}
	}
	return req, nil
}

func isEmptyUpdate(req dto.UpdateTaskRequest) bool {
	return req.Title == nil && req.Description == nil && req.Category == nil &&
		req.Priority == nil && req.DueDate == nil && !req.ClearDueDate && req.Completed == nil
}

func frontmatterString(header map[string]any, key string) string {
	switch v := header[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case time.Time:
		return v.Format(dateutil.DayLayout)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// editorTempPattern names the temp file after the task so editors show
// something recognisable
func editorTempPattern(title string) string {
	return "mtasks-" + slug.Generate(title) + "-*.md"
}

func openEditor(content []byte, title string) ([]byte, error) {
	tmpFile, err := os.CreateTemp("", editorTempPattern(title))
	if err != nil {
		return nil, err
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)

	if _, err := tmpFile.Write(content); err != nil {
		tmpFile.Close()
		return nil, err
	}
	tmpFile.Close()

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}

	cmd := buildEditorCommand(editor, tmpPath, findFirstHeadingLine(string(content)))
	cleanup, err := attachEditorIO(cmd)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	if err := cmd.Run(); err != nil {
		return nil, err
	}
	return os.ReadFile(tmpPath)
}

func attachEditorIO(cmd *exec.Cmd) (func(), error) {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return nil, err
	}

	if (stat.Mode() & os.ModeCharDevice) != 0 {
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		return func() {}, nil
	}

	tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("no interactive terminal available (run without piping)")
	}

	cmd.Stdin = tty
	cmd.Stdout = tty
	cmd.Stderr = tty

	return func() {
		_ = tty.Close()
	}, nil
}

func buildEditorCommand(editor, path string, line int) *exec.Cmd {
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return exec.Command("vi", path)
	}

	editorName := filepath.Base(parts[0])
	if line > 0 && isViStyleEditor(editorName) {
		parts = append(parts, fmt.Sprintf("+%d", line))
	}
	parts = append(parts, path)

	return exec.Command(parts[0], parts[1:]...)
}

func isViStyleEditor(editor string) bool {
	switch editor {
	case "vi", "vim", "nvim":
		return true
	default:
		return false
	}
}

func findFirstHeadingLine(content string) int {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			return i + 1
		}
	}
	return 0
}

// parseMarkdownTask extracts title and description from markdown content
func parseMarkdownTask(content string) (string, string, error) {
	lines := strings.Split(content, "\n")

	var title string
	var descriptionLines []string
	foundTitle := false

	for _, line := range lines {
		trimmedLine := strings.TrimSpace(line)

		if !foundTitle && strings.HasPrefix(trimmedLine, "#") {
			title = strings.TrimSpace(strings.TrimLeft(trimmedLine, "#"))
			foundTitle = true
			continue
		}
		if foundTitle {
			descriptionLines = append(descriptionLines, line)
		}
	}

	if !foundTitle || title == "" {
		return "", "", fmt.Errorf("no title found. Please add a line starting with '# ' followed by the task title")
	}

	description := strings.TrimSpace(strings.Join(descriptionLines, "\n"))
	return title, description, nil
}

// confirm asks a yes/no question on the terminal
func confirm(prompt string) bool {
	fmt.Print(prompt)
	line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	return strings.TrimSpace(line) == "yes"
}
