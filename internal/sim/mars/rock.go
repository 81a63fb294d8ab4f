package mars

// Rock is inert grid content. It never acts; its location is updated by
// whichever rover carries it.
type Rock struct {
	loc      Location
	PickedUp bool
}

func NewRock(loc Location) *Rock {
	return &Rock{loc: loc}
}

func (r *Rock) Location() Location       { return r.loc }
func (r *Rock) SetLocation(loc Location) { r.loc = loc }

func (r *Rock) Act(Environment) {}
