package lang

func init() {
	Register(&LanguageSpec{
		Language:       Rust,
		FileExtensions: []string{".rs"},
		Calls: []CallSpec{
			{Kind: "call_expression", CalleeField: "function", ArgumentsField: "arguments"},
		},
		// gettextrs::gettext("x") resolves like a member call
		Members: []MemberSpec{
			{Kind: "field_expression", PropertyField: "field"},
			{Kind: "scoped_identifier", PropertyField: "name"},
		},
		IdentifierNodeTypes: []string{"identifier", "field_identifier"},
		ArgumentListTypes:   []string{"arguments"},
		SkipArgumentTypes:   []string{"attribute_item", "line_comment", "block_comment"},
		StringNodeTypes:     []string{"string_literal", "raw_string_literal"},
		StringPartTypes:     []string{"string_content", "escape_sequence"},
		Unquote:             unquoteRust,
	})
}
