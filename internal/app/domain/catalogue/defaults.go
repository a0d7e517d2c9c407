package catalogue

// Defaults returns the stock cookie lineup loaded on first run. The first
// ingredient of each product is its batter, which the batter filter matches
// against.
func Defaults() []Product {
	return []Product{
		{
			Shortname:   "chocolatechip",
			Name:        "Chocolate Chip",
			Description: "The classic, loaded with semi-sweet chips.",
			Ingredients: "chocolate chip batter,semi-sweet chocolate chips,brown sugar",
			Price:       2.00,
		},
		{
			Shortname:   "sugar",
			Name:        "Sugar Cookie",
			Description: "Soft-baked with a dusting of sparkling sugar.",
			Ingredients: "sugar batter,vanilla,sparkling sugar",
			Price:       1.50,
		},
		{
			Shortname:   "snickerdoodle",
			Name:        "Snickerdoodle",
			Description: "Cinnamon-sugar rolled and chewy in the middle.",
			Ingredients: "sugar batter,cinnamon,cream of tartar",
			Price:       2.00,
		},
		{
			Shortname:   "oatmealraisin",
			Name:        "Oatmeal Raisin",
			Description: "Hearty oats with plump raisins.",
			Ingredients: "oatmeal batter,raisins,cinnamon",
			Price:       2.25,
		},
		{
			Shortname:   "peanutbutter",
			Name:        "Peanut Butter",
			Description: "Crosshatched and packed with roasted peanut flavor.",
			Ingredients: "peanut butter batter,roasted peanuts,honey",
			Price:       2.50,
		},
		{
			Shortname:   "doublechocolate",
			Name:        "Double Chocolate",
			Description: "Cocoa batter with dark chocolate chunks.",
			Ingredients: "chocolate batter,dark chocolate chunks,sea salt",
			Price:       2.75,
		},
	}
}
