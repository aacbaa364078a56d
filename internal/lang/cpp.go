package lang

func init() {
	Register(&LanguageSpec{
		Language:       CPP,
		FileExtensions: []string{".cpp", ".cc", ".cxx", ".hpp", ".hh", ".hxx"},
		Calls: []CallSpec{
			{Kind: "call_expression", CalleeField: "function", ArgumentsField: "arguments"},
		},
		Members: []MemberSpec{
			{Kind: "field_expression", PropertyField: "field"},
			// ns::tr(...) and Class::tr(...)
			{Kind: "qualified_identifier", PropertyField: "name"},
		},
		IdentifierNodeTypes: []string{"identifier", "field_identifier"},
		ArgumentListTypes:   []string{"argument_list"},
		SkipArgumentTypes:   []string{"comment"},
		StringNodeTypes:     []string{"string_literal", "raw_string_literal"},
		StringPartTypes: []string{
			"string_content",
			"escape_sequence",
			"raw_string_delimiter",
			"raw_string_content",
		},
		ConcatNodeTypes: []string{"concatenated_string"},
		Unquote:         unquoteC,
	})
}
