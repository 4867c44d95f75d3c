package rank

import "strings"

// ComposeQuery builds the single ranking query from the persona role and the
// job-to-be-done task.
func ComposeQuery(role, task string) string {
	role = strings.TrimSpace(role)
	task = strings.TrimSpace(task)
	switch {
	case role == "":
		return task
	case task == "":
		return role
	default:
		return role + ". Task: " + task
	}
}
