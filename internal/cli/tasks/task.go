package tasks

type TaskCmd struct {
	Add      TaskAddCmd      `cmd:"" help:"Add a study task."`
	Edit     TaskEditCmd     `cmd:"" help:"Edit an existing task."`
	List     TaskListCmd     `cmd:"" help:"List tasks."`
	Delete   TaskDeleteCmd   `cmd:"" help:"Delete a task (soft delete)."`
	Restore  TaskRestoreCmd  `cmd:"" help:"Restore a deleted task."`
	Progress TaskProgressCmd `cmd:"" help:"Record minutes already studied."`
}
