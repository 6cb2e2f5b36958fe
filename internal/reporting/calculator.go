package reporting

// Result is what the calculator shows for a valid base date.
type Result struct {
	Window
	Reminder  Reminder
	GoogleURL string
	ICS       string
}

// Calculator turns raw user input into a Result.
type Calculator struct {
	ics *ICSBuilder
}

// NewCalculator returns a Calculator that renders calendar files with ics.
// A nil builder gets the default one.
func NewCalculator(ics *ICSBuilder) *Calculator {
	if ics == nil {
		ics = NewICSBuilder()
	}
	return &Calculator{ics: ics}
}

// Calculate runs the whole pipeline for input. It returns false when input is
// empty or not a date; the caller shows its prompt instead of an error.
func (c *Calculator) Calculate(input string, f Formatter) (*Result, bool) {
	base, ok := ParseBaseDate(input)
	if !ok {
		return nil, false
	}
	return c.CalculateDate(base, f), true
}

// CalculateDate is Calculate for an already parsed date.
func (c *Calculator) CalculateDate(base Date, f Formatter) *Result {
	window := Compute(base)
	reminder := window.Reminder(f)
	return &Result{
		Window:    window,
		Reminder:  reminder,
		GoogleURL: GoogleCalendarURL(reminder),
		ICS:       c.ics.Build(reminder),
	}
}
