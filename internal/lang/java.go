package lang

func init() {
	Register(&LanguageSpec{
		Language:       Java,
		FileExtensions: []string{".java"},
		Calls: []CallSpec{
			{Kind: "method_invocation", CalleeField: "name", ReceiverField: "object", ArgumentsField: "arguments"},
		},
		IdentifierNodeTypes: []string{"identifier"},
		ArgumentListTypes:   []string{"argument_list"},
		SkipArgumentTypes:   []string{"line_comment", "block_comment"},
		StringNodeTypes:     []string{"string_literal"},
		StringPartTypes:     []string{"string_fragment", "escape_sequence"},
		Unquote:             unquoteJava,
	})
}
