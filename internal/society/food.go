package society

// SpoilAge is the age, in rounds, at which an unconsumed food unit is
// considered spoiled.
const SpoilAge = 4

// FoodUnit is a single unit of stored food with an age counter.
type FoodUnit struct {
	Consumed bool `json:"consumed"`
	Age      int  `json:"age"`
}

// Spoiled reports whether the unit has aged past the spoilage limit.
func (f *FoodUnit) Spoiled() bool {
	return f.Age >= SpoilAge
}

// ProgressRound ages the unit by one round. Already-consumed units do
// not age further.
func (f *FoodUnit) ProgressRound() {
	if !f.Consumed {
		f.Age++
	}
}

// FoodBreakdown summarizes the stock by freshness for display.
type FoodBreakdown struct {
	Fresh    int `json:"fresh"`
	Spoiling int `json:"spoiling"`
	Spoiled  int `json:"spoiled"`
}

// Breakdown classifies a food stock by age.
func Breakdown(stock []FoodUnit) FoodBreakdown {
	var b FoodBreakdown
	for i := range stock {
		f := &stock[i]
		switch {
		case f.Consumed || f.Spoiled():
			b.Spoiled++
		case f.Age == 0:
			b.Fresh++
		default:
			b.Spoiling++
		}
	}
	return b
}
