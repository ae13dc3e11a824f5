package carbon

// Emission factors in kg CO2 per unit.
var factors = map[string]float64{
	"car":         0.21,  // km
	"bus":         0.089, // km
	"train":       0.041, // km
	"flight":      0.255, // km
	"electricity": 0.92,  // kWh
	"natural_gas": 2.04,  // m3
	"water":       0.34,  // litre
	"meat":        27.0,  // kg
	"vegetables":  2.0,   // kg
	"dairy":       3.2,   // kg
	"waste":       0.5,   // kg
}

var activityOrder = []string{
	"car", "bus", "train", "flight",
	"electricity", "natural_gas", "water",
	"meat", "vegetables", "dairy",
	"waste",
}

// Categories lists the category values offered by the log form.
var Categories = []string{"transport", "energy", "food", "waste", "water", "general"}

const DefaultCategory = "general"

// categoryOf maps an activity type to its natural category.
var categoryOf = map[string]string{
	"car":         "transport",
	"bus":         "transport",
	"train":       "transport",
	"flight":      "transport",
	"electricity": "energy",
	"natural_gas": "energy",
	"water":       "water",
	"meat":        "food",
	"vegetables":  "food",
	"dairy":       "food",
	"waste":       "waste",
}

type alternative struct {
	Name               string
	ReductionPercent   int
	Description        string
	CostSavings        string
	ImplementationTime string
}

var alternatives = map[string]alternative{
	"car": {
		Name:               "Electric Car",
		ReductionPercent:   70,
		Description:        "Switch to electric vehicle reduces emissions by 70%",
		CostSavings:        "Save $500-800/year on fuel",
		ImplementationTime: "1-2 months",
	},
	"bus": {
		Name:               "Bicycle/Walk",
		ReductionPercent:   100,
		Description:        "Use bicycle for short trips eliminates emissions",
		CostSavings:        "No fuel cost",
		ImplementationTime: "Immediate",
	},
	"train": {
		Name:               "Already Eco-Friendly",
		ReductionPercent:   0,
		Description:        "Train is already 95% more efficient than car",
		CostSavings:        "Lowest carbon transport",
		ImplementationTime: "N/A",
	},
	"flight": {
		Name:               "Video Conference",
		ReductionPercent:   100,
		Description:        "Video conferencing eliminates travel emissions",
		CostSavings:        "Save on travel costs",
		ImplementationTime: "Immediate",
	},
	"electricity": {
		Name:               "Solar/Renewable",
		ReductionPercent:   85,
		Description:        "Switch to renewable energy reduces emissions significantly",
		CostSavings:        "Save $200-400/year",
		ImplementationTime: "3-6 months",
	},
	"natural_gas": {
		Name:               "Heat Pump",
		ReductionPercent:   50,
		Description:        "Modern heat pumps are more efficient",
		CostSavings:        "Save 30% on heating",
		ImplementationTime: "2-4 months",
	},
	"meat": {
		Name:               "Vegetarian Days",
		ReductionPercent:   80,
		Description:        "Reduce meat by 2-3 days/week cuts emissions significantly",
		CostSavings:        "Save $40-60/month",
		ImplementationTime: "1 week",
	},
	"vegetables": {
		Name:               "Local Produce",
		ReductionPercent:   30,
		Description:        "Buy local vegetables to reduce transport emissions",
		CostSavings:        "Support local farmers",
		ImplementationTime: "Immediate",
	},
	"dairy": {
		Name:               "Plant-based Alternatives",
		ReductionPercent:   75,
		Description:        "Plant-based dairy alternatives have 75% lower emissions",
		CostSavings:        "Often cheaper",
		ImplementationTime: "1-2 weeks",
	},
}

// ActivityTypes returns the known types in display order.
func ActivityTypes() []string {
	return append([]string(nil), activityOrder...)
}

// Factor returns the emission factor for an activity type.
func Factor(activity string) (float64, bool) {
	f, ok := factors[activity]
	return f, ok
}

// CategoryFor suggests a category for an activity type.
func CategoryFor(activity string) string {
	if c, ok := categoryOf[activity]; ok {
		return c
	}
	return DefaultCategory
}

// NewCatalog returns a copy of the factor table.
func NewCatalog() Catalog {
	fs := make(map[string]float64, len(factors))
	for k, v := range factors {
		fs[k] = v
	}
	return Catalog{Types: ActivityTypes(), Factors: fs}
}
