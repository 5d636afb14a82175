package model

// Catalog is an ordered, read-only list of templates.
type Catalog []Template

// DefaultCatalog returns the built-in templates.
func DefaultCatalog() Catalog {
	return Catalog{
		{
			ID:           "short-focus",
			Name:         "Quick Sprint",
			FocusMinutes: 20,
			BreakMinutes: 5,
			Description:  "Perfect for smaller tasks or when starting out",
		},
		{
			ID:           "standard",
			Name:         "Classic Pomodoro",
			FocusMinutes: 25,
			BreakMinutes: 5,
			Description:  "The traditional Pomodoro technique",
		},
		{
			ID:           "extended",
			Name:         "Deep Work",
			FocusMinutes: 40,
			BreakMinutes: 10,
			Description:  "Extended focus for complex tasks",
		},
		{
			ID:           "ultra",
			Name:         "Flow State",
			FocusMinutes: 50,
			BreakMinutes: 10,
			Description:  "Maximum focus for deep concentration",
		},
	}
}

// Find returns the template with the given ID.
func (catalog Catalog) Find(id string) (Template, bool) {
	for _, template := range catalog {
		if template.ID == id {
			return template, true
		}
	}
	return Template{}, false
}

// IndexOf returns the position of the template ID, or -1.
func (catalog Catalog) IndexOf(id string) int {
	for index, template := range catalog {
		if template.ID == id {
			return index
		}
	}
	return -1
}

// Names returns template names in catalog order.
func (catalog Catalog) Names() []string {
	names := make([]string, 0, len(catalog))
	for _, template := range catalog {
		names = append(names, template.Name)
	}
	return names
}

// Valid drops templates that fail validation or repeat an earlier ID.
func (catalog Catalog) Valid() Catalog {
	seen := make(map[string]bool, len(catalog))
	valid := make(Catalog, 0, len(catalog))
	for _, template := range catalog {
		if template.ID == "" || seen[template.ID] || template.Validate() != nil {
			continue
		}
		seen[template.ID] = true
		valid = append(valid, template)
	}
	return valid
}
