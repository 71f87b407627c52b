package orders

// PartKind distinguishes the two catalog tables.
type PartKind string

const (
	PartHead PartKind = "head"
	PartBody PartKind = "body"
)

var partModels = map[string]string{
	"1": "Roll-a-thor",
	"2": "Peanut crusher",
	"3": "D.A.V.E",
	"4": "Andy Roid",
	"5": "Spanner mate",
	"6": "Drillbit 2000",
}

// Catalog maps part codes to the labels shown by the order form.
type Catalog struct {
	heads  map[string]string
	bodies map[string]string
}

// DefaultCatalog is the RobotSpareBin part catalog.
var DefaultCatalog = NewCatalog(partModels)

// NewCatalog builds a catalog where every model code has a "<model> head" and a
// "<model> body" entry. The input map is copied.
func NewCatalog(models map[string]string) *Catalog {
	c := &Catalog{
		heads:  make(map[string]string, len(models)),
		bodies: make(map[string]string, len(models)),
	}
	for code, model := range models {
		c.heads[code] = model + " head"
		c.bodies[code] = model + " body"
	}
	return c
}

// HeadPart resolves a head code. Unmapped codes return a *LookupError.
func (c *Catalog) HeadPart(code string) (string, error) {
	return c.lookup(PartHead, c.heads, code)
}

// BodyPart resolves a body code. Unmapped codes return a *LookupError.
func (c *Catalog) BodyPart(code string) (string, error) {
	return c.lookup(PartBody, c.bodies, code)
}

func (c *Catalog) lookup(kind PartKind, table map[string]string, code string) (string, error) {
	name, ok := table[code]
	if !ok {
		return "", &LookupError{Kind: kind, Code: code}
	}
	return name, nil
}
