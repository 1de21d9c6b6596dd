package directory

// DemoCatalog returns the static demo store list served in place of a backend.
func DemoCatalog() []Store {
	return []Store{
		{ID: 1, Name: "Zara", Category: CategoryWomenClothing, Floor: 1, HasPromotions: true, Description: "Popular womenswear label"},
		{ID: 2, Name: "Adidas", Category: CategorySportswear, Floor: 2, HasLoyaltyProgram: true, Description: "Sportswear and footwear"},
		{ID: 3, Name: "H&M", Category: CategoryWomenClothing, Floor: 1, Description: "Fashion at accessible prices"},
		{ID: 4, Name: "Samsung", Category: CategoryAppliances, Floor: 3, Description: "Electronics and home appliances"},
		{ID: 5, Name: "Apple Store", Category: CategoryAppliances, Floor: 2, IsNew: true, Description: "Official Apple retailer"},
		{ID: 6, Name: "Nike", Category: CategorySportswear, Floor: 2, Description: "Sneakers and athletic apparel"},
		{ID: 7, Name: "Lego", Category: CategoryToys, Floor: 3, HasPromotions: true, Description: "Building sets and toys for kids"},
		{ID: 8, Name: "Bershka", Category: CategoryWomenClothing, Floor: 1, Description: "Streetwear for young shoppers"},
		{ID: 9, Name: "Calvin Klein", Category: CategoryUnderwear, Floor: 2, Description: "Underwear and accessories"},
		{ID: 10, Name: "Xiaomi", Category: CategoryAppliances, Floor: 3, TemporarilyClosed: true, Description: "Smartphones and smart devices"},
		{ID: 11, Name: "Mango", Category: CategoryWomenClothing, Floor: 1, Description: "Elegant womenswear"},
		{ID: 12, Name: "Hugo Boss", Category: CategoryMenClothing, Floor: 2, Description: "Premium menswear"},
	}
}
