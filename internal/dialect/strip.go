package dialect

import "strings"

// stripOptions select the lexical features of a dialect's SQL grammar that
// matter when blanking out string literals and comments.
type stripOptions struct {
	// hashComments treats # as a line comment (MySQL).
	hashComments bool
	// backslashEscapes honors \' inside single-quoted strings (MySQL).
	backslashEscapes bool
	// dollarQuoting strips $$...$$ and $tag$...$tag$ strings (PostgreSQL).
	dollarQuoting bool
	// backticks skips over `quoted` identifiers (MySQL, SQLite).
	backticks bool
	// brackets skips over [quoted] identifiers (SQLite, SQL Server).
	brackets bool
}

// stripSQL blanks string literals and removes comments so keyword checks
// cannot false-positive on quoted content. Identifier quoting is preserved;
// string literals are replaced by '' and comments by a single space.
func stripSQL(sqlText string, opts stripOptions) string {
	var result strings.Builder
	i := 0
	n := len(sqlText)

	for i < n {
		// Line comment: --
		if i+1 < n && sqlText[i] == '-' && sqlText[i+1] == '-' {
			for i < n && sqlText[i] != '\n' {
				i++
			}
			result.WriteByte(' ')
			continue
		}

		// Line comment: # (MySQL only)
		if opts.hashComments && sqlText[i] == '#' {
			for i < n && sqlText[i] != '\n' {
				i++
			}
			result.WriteByte(' ')
			continue
		}

		// Block comment: /* */
		if i+1 < n && sqlText[i] == '/' && sqlText[i+1] == '*' {
			i += 2
			for i+1 < n && !(sqlText[i] == '*' && sqlText[i+1] == '/') {
				i++
			}
			i += 2
			result.WriteByte(' ')
			continue
		}

		// Dollar-quoted string: $$...$$ or $tag$...$tag$
		if opts.dollarQuoting && sqlText[i] == '$' {
			if tagEnd := strings.Index(sqlText[i+1:], "$"); tagEnd >= 0 {
				tag := sqlText[i : i+tagEnd+2]
				if closeIdx := strings.Index(sqlText[i+len(tag):], tag); closeIdx >= 0 {
					i += len(tag) + closeIdx + len(tag)
					result.WriteString("''")
					continue
				}
			}
		}

		// Single-quoted string
		if sqlText[i] == '\'' {
			i++
			for i < n {
				if opts.backslashEscapes && sqlText[i] == '\\' && i+1 < n {
					i += 2
					continue
				}
				if sqlText[i] == '\'' {
					if i+1 < n && sqlText[i+1] == '\'' {
						i += 2 // escaped quote ''
						continue
					}
					i++
					break
				}
				i++
			}
			result.WriteString("''")
			continue
		}

		// Double-quoted identifier (standard SQL)
		if sqlText[i] == '"' {
			result.WriteByte('"')
			i++
			for i < n {
				if sqlText[i] == '"' {
					if i+1 < n && sqlText[i+1] == '"' {
						result.WriteString(`""`)
						i += 2
						continue
					}
					result.WriteByte('"')
					i++
					break
				}
				result.WriteByte(sqlText[i])
				i++
			}
			continue
		}

		// Backtick-quoted identifier
		if opts.backticks && sqlText[i] == '`' {
			result.WriteByte('`')
			i++
			for i < n && sqlText[i] != '`' {
				result.WriteByte(sqlText[i])
				i++
			}
			if i < n {
				result.WriteByte('`')
				i++
			}
			continue
		}

		// [bracket]-quoted identifier
		if opts.brackets && sqlText[i] == '[' {
			result.WriteByte('[')
			i++
			for i < n && sqlText[i] != ']' {
				result.WriteByte(sqlText[i])
				i++
			}
			if i < n {
				result.WriteByte(']')
				i++
			}
			continue
		}

		result.WriteByte(sqlText[i])
		i++
	}

	return result.String()
}
