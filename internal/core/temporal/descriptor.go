package temporal

// Dimension tags what kind of entity a fragment carries
type Dimension string

const (
	// DimTime is the plain date and time dimension
	DimTime Dimension = "time"
	// DimDuration is the duration dimension
	DimDuration Dimension = "duration"
)

// DatetimeEntityType is the only entity type the merge engine accepts
const DatetimeEntityType = "duckling:datetime"

// Fragment is a recognized span of the source text
// Start and End are byte offsets, End is exclusive
type Fragment struct {
	Start int
	End   int
	Value Value
	Dim   Dimension
}

// Text returns the source slice the fragment covers, or "" when offsets do not fit
func (f Fragment) Text(src string) string {
	if f.Start < 0 || f.End > len(src) || f.Start > f.End {
		return ""
	}
	return src[f.Start:f.End]
}

// Descriptor is the unit the merge engine works on
type Descriptor struct {
	Content     string
	Position    int
	Probability float64
	Value       Value
	Initial     bool
}

// Carried marks d as the value carried over from a previous turn
func (d Descriptor) Carried() Descriptor {
	d.Initial = true
	return d
}
