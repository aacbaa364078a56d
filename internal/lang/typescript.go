package lang

func init() {
	Register(ecmaScript(TypeScript, ".ts", ".mts", ".cts"))
}
