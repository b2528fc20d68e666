package domain

// ResourceKind identifies what a linked resource is
type ResourceKind string

const (
	KindScript     ResourceKind = "script"
	KindStylesheet ResourceKind = "stylesheet"
)

// Extension returns the file extension guaranteed on saved resources of this kind.
func (k ResourceKind) Extension() string {
	switch k {
	case KindScript:
		return ".js"
	case KindStylesheet:
		return ".css"
	default:
		return ""
	}
}

// IsValid checks if the kind is known
func (k ResourceKind) IsValid() bool {
	return k == KindScript || k == KindStylesheet
}

// String returns the string representation
func (k ResourceKind) String() string {
	return string(k)
}

// Page is the outcome of extracting a single web page.
type Page struct {
	URL string

	// Scripts and Stylesheets hold absolute URLs in document order.
	// Duplicates are kept.
	Scripts     []string
	Stylesheets []string

	// HTML is the parsed document serialized back to text
	HTML string
}

// ResourceCount returns the number of discovered resources
func (p *Page) ResourceCount() int {
	return len(p.Scripts) + len(p.Stylesheets)
}
