// Package symbol parses the function names reported by the Go runtime and
// renders them as readable signatures.
//
// The compiler names func literals, go/defer statement wrappers, method values
// and range-over-func loop bodies after the function that contains them:
//
//	example.com/app.(*Server).serve.func1.2
//	example.com/app.main.gowrap1
//	example.com/app.sum-range1
//	example.com/app.T.String-fm
//
// Parse splits such a name into the declared function and the chain of
// generated scopes nested inside it.
package symbol

import (
	"net/url"
	"strconv"
	"strings"
)

// Kind classifies a generated scope.
type Kind int

const (
	// Function is a declared package-level function.
	Function Kind = iota
	// Method is a declared method.
	Method
	// Closure is a func literal.
	Closure
	// GoStatement is the wrapper the compiler emits for a go statement.
	GoStatement
	// DeferStatement is the wrapper the compiler emits for a defer statement.
	DeferStatement
	// RangeBody is the loop body of a range-over-func statement.
	RangeBody
)

// Scope is one compiler-generated level below the declared function.
type Scope struct {
	Kind  Kind
	Index int
}

// Symbol is a parsed runtime function name.
type Symbol struct {
	Raw string
	// Package is the unescaped import path.
	Package string
	// Receiver is "T" or "*T" for methods.
	Receiver    string
	Name        string
	MethodValue bool
	// Scopes are ordered outermost first.
	Scopes []Scope
}

// Parse parses a name as returned by runtime.Frame.Function or
// runtime.FuncForPC(pc).Name().
func Parse(raw string) Symbol {
	s := Symbol{Raw: raw}
	pkg, rest := splitPackage(raw)
	s.Package = pkg
	if rest == "" {
		return s
	}

	parts := splitDots(rest)
	i := 1
	head := parts[0]
	switch {
	case strings.HasPrefix(head, "("):
		s.Receiver = strings.TrimSuffix(strings.TrimPrefix(head, "("), ")")
		if len(parts) > 1 {
			s.Name = parts[1]
			i = 2
		}
	case head == "glob" && len(parts) > 1 && parts[1] == "":
		// package-level closures before go1.22
		s.Name = "init"
		i = 2
	case len(parts) > 1 && isDeclared(parts[1]):
		s.Receiver = head
		s.Name = parts[1]
		i = 2
	default:
		s.Name = head
	}

	var suffixes []string
	s.Name, suffixes = splitSuffixes(s.Name)
	s.applySuffixes(suffixes)

	for _, part := range parts[i:] {
		if part == "" {
			continue
		}
		base, suffixes := splitSuffixes(part)
		switch {
		case hasIndex(base, "func"):
			s.Scopes = append(s.Scopes, Scope{Kind: Closure, Index: index(base, "func")})
		case hasIndex(base, "gowrap"):
			s.Scopes = append(s.Scopes, Scope{Kind: GoStatement, Index: index(base, "gowrap")})
		case hasIndex(base, "deferwrap"):
			s.Scopes = append(s.Scopes, Scope{Kind: DeferStatement, Index: index(base, "deferwrap")})
		case isNumber(base):
			n, _ := strconv.Atoi(base)
			if s.Name == "init" && len(s.Scopes) == 0 {
				// init.0, init.1: multiple init functions in one package
				break
			}
			s.Scopes = append(s.Scopes, Scope{Kind: Closure, Index: n})
		default:
			s.Name += "." + base
		}
		s.applySuffixes(suffixes)
	}
	return s
}

func (s *Symbol) applySuffixes(suffixes []string) {
	for _, sfx := range suffixes {
		switch {
		case sfx == "fm":
			s.MethodValue = true
		case hasIndex(sfx, "range"):
			s.Scopes = append(s.Scopes, Scope{Kind: RangeBody, Index: index(sfx, "range")})
		}
	}
}

// Kind reports the innermost scope kind, or Method/Function for frames of
// the declared function itself.
func (s Symbol) Kind() Kind {
	if n := len(s.Scopes); n > 0 {
		return s.Scopes[n-1].Kind
	}
	if s.Receiver != "" {
		return Method
	}
	return Function
}

// Generated reports whether the frame belongs to compiler-generated code.
func (s Symbol) Generated() bool {
	return len(s.Scopes) > 0 || s.MethodValue
}

// IsRuntime reports whether the symbol lives in package runtime.
func (s Symbol) IsRuntime() bool {
	return s.Package == "runtime"
}

// PackageName returns the last import path element without a major version
// suffix.
func (s Symbol) PackageName() string {
	p := s.Package
	if isMajorVersion(p[strings.LastIndex(p, "/")+1:]) {
		if slash := strings.LastIndex(p, "/"); slash > 0 {
			p = p[:slash]
		}
	}
	p = p[strings.LastIndex(p, "/")+1:]
	if dot := strings.LastIndex(p, "."); dot > 0 && isMajorVersion(p[dot+1:]) {
		p = p[:dot]
	}
	return p
}

// Render returns the readable signature. With fullPath the import path
// qualifies the name instead of the package name.
func (s Symbol) Render(fullPath bool) string {
	if s.Name == "" && s.Receiver == "" {
		return s.Raw
	}
	qualifier := s.PackageName()
	if fullPath {
		qualifier = s.Package
	}

	var b strings.Builder
	if s.MethodValue {
		b.WriteString("method value ")
	}
	if s.Receiver != "" {
		b.WriteByte('(')
		recv := s.Receiver
		if strings.HasPrefix(recv, "*") {
			b.WriteByte('*')
			recv = recv[1:]
		}
		writeQualified(&b, qualifier, recv)
		b.WriteString(").")
		b.WriteString(s.Name)
	} else {
		writeQualified(&b, qualifier, s.Name)
	}
	b.WriteString("()")

	out := b.String()
	for _, sc := range s.Scopes {
		out = sc.describe() + " in " + out
	}
	return out
}

func (sc Scope) describe() string {
	var what string
	switch sc.Kind {
	case Closure:
		what = "func literal"
	case GoStatement:
		what = "go statement"
	case DeferStatement:
		what = "defer statement"
	case RangeBody:
		what = "range-over-func body"
	}
	return what + " #" + strconv.Itoa(sc.Index)
}

func writeQualified(b *strings.Builder, qualifier, name string) {
	if qualifier != "" {
		b.WriteString(qualifier)
		b.WriteByte('.')
	}
	b.WriteString(name)
}

// splitPackage splits at the first dot after the last slash. The linker
// escapes dots in the final path element, so that dot ends the import path.
func splitPackage(raw string) (string, string) {
	slash := strings.LastIndex(raw, "/")
	dot := strings.IndexByte(raw[slash+1:], '.')
	if dot < 0 {
		return "", raw
	}
	dot += slash + 1
	pkg := raw[:dot]
	if strings.IndexByte(pkg, '%') >= 0 {
		if u, err := url.PathUnescape(pkg); err == nil {
			pkg = u
		}
	}
	return pkg, raw[dot+1:]
}

// splitDots splits on dots outside of parentheses and brackets.
func splitDots(s string) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case '.':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}

// splitSuffixes separates "-fm" and "-rangeN" markers from a name element.
func splitSuffixes(s string) (string, []string) {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
		case '-':
			if depth == 0 {
				return s[:i], strings.Split(s[i+1:], "-")
			}
		}
	}
	return s, nil
}

// isDeclared reports whether a second name element is a method name rather
// than a generated scope.
func isDeclared(s string) bool {
	base, _ := splitSuffixes(s)
	if base == "" || isNumber(base) {
		return false
	}
	for _, prefix := range []string{"func", "gowrap", "deferwrap"} {
		if hasIndex(base, prefix) {
			return false
		}
	}
	return true
}

func hasIndex(s, prefix string) bool {
	return strings.HasPrefix(s, prefix) && len(s) > len(prefix) && isNumber(s[len(prefix):])
}

func index(s, prefix string) int {
	n, _ := strconv.Atoi(s[len(prefix):])
	return n
}

func isNumber(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func isMajorVersion(s string) bool {
	return len(s) > 1 && s[0] == 'v' && isNumber(s[1:])
}
