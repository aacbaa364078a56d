package lang

func init() {
	Register(ecmaScript(TSX, ".tsx"))
}
