package model

type Room struct {
	ID       string   `json:"id" bson:"_id" yaml:"id"`
	Name     string   `json:"name" bson:"name" yaml:"name"`
	Building string   `json:"building" bson:"building" yaml:"building"`
	Capacity int      `json:"capacity" bson:"capacity" yaml:"capacity"`
	Features []string `json:"features" bson:"features" yaml:"features"`
	Active   bool     `json:"active" bson:"active" yaml:"active"`
}

// Label is the user-facing room reference, e.g. "A-Room 101".
func (r *Room) Label() string {
	return r.Building + "-" + r.Name
}

func (r *Room) HasFeature(feature string) bool {
	for _, f := range r.Features {
		if f == feature {
			return true
		}
	}
	return false
}
