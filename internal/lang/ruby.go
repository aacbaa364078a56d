package lang

func init() {
	Register(&LanguageSpec{
		Language:       Ruby,
		FileExtensions: []string{".rb", ".rake"},
		Calls: []CallSpec{
			{
				Kind:             "call",
				CalleeField:      "method",
				ReceiverField:    "receiver",
				OperatorField:    "operator",
				OptionalOperator: "&.",
				ArgumentsField:   "arguments",
			},
		},
		IdentifierNodeTypes: []string{"identifier", "constant"},
		ArgumentListTypes:   []string{"argument_list"},
		SkipArgumentTypes:   []string{"comment"},
		StringNodeTypes:     []string{"string"},
		StringPartTypes:     []string{"string_content", "escape_sequence"},
		Unquote:             unquoteRuby,
	})
}
