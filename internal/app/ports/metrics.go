package ports

type CommandMetrics interface {
	RecordSuccess(command string)
	RecordRejected(command string)
}

type ScriptMetrics interface {
	RecordRun(faulted bool)
}
