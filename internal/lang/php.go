package lang

func init() {
	Register(&LanguageSpec{
		Language:       PHP,
		FileExtensions: []string{".php", ".phtml"},
		Calls: []CallSpec{
			{Kind: "function_call_expression", CalleeField: "function", ArgumentsField: "arguments"},
			{Kind: "member_call_expression", CalleeField: "name", ArgumentsField: "arguments", Shape: ShapeMember},
			{Kind: "scoped_call_expression", CalleeField: "name", ArgumentsField: "arguments", Shape: ShapeMember},
			{Kind: "nullsafe_member_call_expression", CalleeField: "name", ArgumentsField: "arguments", Shape: ShapeOptionalMember},
		},
		IdentifierNodeTypes:  []string{"name", "qualified_name"},
		QualifierSeparator:   `\`,
		ArgumentListTypes:    []string{"arguments"},
		ArgumentWrapperTypes: []string{"argument"},
		SkipArgumentTypes:    []string{"comment"},
		StringNodeTypes:      []string{"string", "encapsed_string"},
		StringPartTypes:      []string{"string_content", "string_value", "escape_sequence"},
		Unquote:              unquotePHP,
	})
}
