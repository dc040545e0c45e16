package browser

// Strategy names a way of finding elements. The values are the W3C WebDriver location
// strategies plus the legacy ones that Selenium still accepts.
type Strategy string

const (
	ByID        Strategy = "id"
	ByXPath     Strategy = "xpath"
	ByCSS       Strategy = "css selector"
	ByName      Strategy = "name"
	ByLinkText  Strategy = "link text"
	ByTagName   Strategy = "tag name"
	ByClassName Strategy = "class name"
)

// Locator describes how to find an element. It is a plain value: it is resolved against the
// live page every time it is used, and found elements are never cached.
type Locator struct {
	Strategy Strategy
	Selector string
}

func ID(id string) Locator               { return Locator{ByID, id} }
func XPath(expr string) Locator          { return Locator{ByXPath, expr} }
func CSS(selector string) Locator        { return Locator{ByCSS, selector} }
func Name(name string) Locator           { return Locator{ByName, name} }
func LinkText(text string) Locator       { return Locator{ByLinkText, text} }
func TagName(tag string) Locator         { return Locator{ByTagName, tag} }
func ClassName(className string) Locator { return Locator{ByClassName, className} }

func (l Locator) String() string {
	return "By." + string(l.Strategy) + ": " + l.Selector
}
