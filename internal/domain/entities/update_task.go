package entities

// UpdateTask is a deferred edit of the target repository. Creating a task
// never touches the repository; Action does.
type UpdateTask struct {
	Action      func() error
	UsedInfos   []DependencyInfo
	LogMessages []string
	// Preview is a human readable diff of the edit, shown in dry-run mode.
	Preview string
}

// NewUpdateTask creates an UpdateTask.
func NewUpdateTask(action func() error, usedInfos []DependencyInfo, logMessages ...string) UpdateTask {
	return UpdateTask{Action: action, UsedInfos: usedInfos, LogMessages: logMessages}
}

// ApplyUpdateTasks runs every task action in order and returns the union of
// the infos they used. It stops at the first failing action.
func ApplyUpdateTasks(tasks []UpdateTask) ([]DependencyInfo, error) {
	var used []DependencyInfo
	for _, task := range tasks {
		if err := task.Action(); err != nil {
			return used, err
		}
		used = UnionInfos(used, task.UsedInfos)
	}
	return used, nil
}
