package entity

type Consultant struct {
	Id        uint
	FirstName string
	LastName  string
	Email     string
}

func (c *Consultant) DisplayName() string {
	name := c.FirstName
	if c.LastName != "" {
		if name != "" {
			name += " "
		}
		name += c.LastName
	}
	if name == "" {
		return "Consultant"
	}
	return name
}
