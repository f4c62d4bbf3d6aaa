// Package wizard models the booking form as a linear sequence of sections.
//
// The state is a single index. Next and Prev are pure and clamp at the ends, and
// View derives which section is shown and which navigation controls are enabled.
// There is no validation between steps.
package wizard

// FieldKind selects how a form field is rendered
type FieldKind string

const (
	KindNumber FieldKind = "number"
	KindStop   FieldKind = "stop"
	KindTel    FieldKind = "tel"
	KindEmail  FieldKind = "email"
)

// Field is one input inside a step
type Field struct {
	Name        string
	Label       string
	Kind        FieldKind
	Placeholder string
}

// Step is one form section
type Step struct {
	Title  string
	Fields []Field
}

// Steps is the fixed sequence of booking form sections
var Steps = []Step{
	{
		Title: "Number of Seats",
		Fields: []Field{
			{Name: "seats", Label: "Number of Seats", Kind: KindNumber, Placeholder: "Enter number of seats"},
		},
	},
	{
		Title: "Departure and Arrival",
		Fields: []Field{
			{Name: "departure", Label: "Departure", Kind: KindStop, Placeholder: "Select Departure"},
			{Name: "arrival", Label: "Arrival", Kind: KindStop, Placeholder: "Select Arrival"},
		},
	},
	{
		Title: "Contact Information",
		Fields: []Field{
			{Name: "phone", Label: "Phone Number", Kind: KindTel, Placeholder: "Enter your phone number"},
			{Name: "email", Label: "Email", Kind: KindEmail, Placeholder: "Enter your email"},
		},
	},
}

// State is the current step index. The zero value is the first step.
type State struct {
	index int
}

// At returns the state for index, clamped to the valid range
func At(index int) State {
	last := len(Steps) - 1
	switch {
	case index < 0:
		index = 0
	case index > last:
		index = last
	}
	return State{index: index}
}

// Index returns the current step index
func (s State) Index() int { return s.index }

// IsFirst reports whether the first step is current
func (s State) IsFirst() bool { return s.index == 0 }

// IsLast reports whether the last step is current
func (s State) IsLast() bool { return s.index == len(Steps)-1 }

// Next advances one step unless already at the last step
func (s State) Next() State {
	if s.IsLast() {
		return s
	}
	return State{index: s.index + 1}
}

// Prev goes back one step unless already at the first step
func (s State) Prev() State {
	if s.IsFirst() {
		return s
	}
	return State{index: s.index - 1}
}

// View is the rendering of a state: one visible section and the navigation control states
type View struct {
	Index          int
	Visible        []bool
	PrevDisabled   bool
	NextDisabled   bool
	SubmitDisabled bool
}

// View derives section visibility and control states from s
func (s State) View() View {
	visible := make([]bool, len(Steps))
	visible[s.index] = true

	return View{
		Index:          s.index,
		Visible:        visible,
		PrevDisabled:   s.IsFirst(),
		NextDisabled:   s.IsLast(),
		SubmitDisabled: !s.IsLast(),
	}
}
