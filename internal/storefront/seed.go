package storefront

import (
	"strconv"
	"time"
)

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }
func boolPtr(b bool) *bool    { return &b }

const unsplash = "https://images.unsplash.com/"

func seedCategories() []Category {
	img := func(photo string) *string {
		return strPtr(unsplash + photo + "?ixlib=rb-4.0.3&auto=format&fit=crop&w=400&h=250")
	}
	return []Category{
		{ID: "electronics", Name: "Electronics", Slug: "electronics", Description: strPtr("Phones, Laptops & More"), ImageURL: img("photo-1498049794561-7780e7231661")},
		{ID: "fashion", Name: "Fashion", Slug: "fashion", Description: strPtr("Traditional & Modern Wear"), ImageURL: img("photo-1434389677669-e08b4cac3105")},
		{ID: "home-garden", Name: "Home & Garden", Slug: "home-garden", Description: strPtr("Furniture & Décor"), ImageURL: img("photo-1586023492125-27b2c045efd7")},
		{ID: "local-crafts", Name: "Local Crafts", Slug: "local-crafts", Description: strPtr("Traditional Handicrafts"), ImageURL: img("photo-1578662996442-48f60103fc96")},
		{ID: "health-beauty", Name: "Health & Beauty", Slug: "health-beauty", Description: strPtr("Personal Care Products"), ImageURL: img("photo-1556228578-0d85b1a4d571")},
		{ID: "sports", Name: "Sports", Slug: "sports", Description: strPtr("Sports & Fitness Equipment"), ImageURL: img("photo-1571019613454-1cb2f99b2d8b")},
		{ID: "books", Name: "Books", Slug: "books", Description: strPtr("Educational & Literature"), ImageURL: img("photo-1481627834876-b7833e8f5570")},
	}
}

func seedSellers() []Seller {
	img := func(photo string) *string {
		return strPtr(unsplash + photo + "?ixlib=rb-4.0.3&auto=format&fit=crop&w=200&h=200")
	}
	return []Seller{
		{ID: "tech-solutions", Name: "Tech Solutions Sudan", Description: strPtr("Electronics & Mobile Devices"), ImageURL: img("photo-1560472354-b33ff0c44a43"), Rating: strPtr("4.9"), TotalReviews: intPtr(234), IsVerified: boolPtr(true)},
		{ID: "heritage-crafts", Name: "Sudanese Heritage Crafts", Description: strPtr("Traditional Handcrafts"), ImageURL: img("photo-1507003211169-0a1dd7228f2d"), Rating: strPtr("5.0"), TotalReviews: intPtr(89), IsVerified: boolPtr(true)},
		{ID: "nile-fashion", Name: "Nile Fashion House", Description: strPtr("Fashion & Accessories"), ImageURL: img("photo-1573496359142-b8d87734a5a2"), Rating: strPtr("4.7"), TotalReviews: intPtr(156), IsVerified: boolPtr(true)},
	}
}

func seedProducts(now time.Time) []Product {
	photo := func(id string, w, h int) string {
		return unsplash + id + "?ixlib=rb-4.0.3&auto=format&fit=crop&w=" + strconv.Itoa(w) + "&h=" + strconv.Itoa(h)
	}
	return []Product{
		{
			ID:            "samsung-a54",
			Name:          "Samsung Galaxy A54",
			Description:   "The Samsung Galaxy A54 features a 6.4-inch Super AMOLED display, 50MP triple camera system, and 5000mAh battery. Perfect for capturing memories and staying connected with family and friends.",
			Price:         "89000.00",
			OriginalPrice: strPtr("95000.00"),
			ImageURL:      photo("photo-1511707171634-5f897ff02aa9", 400, 300),
			Images: []string{
				photo("photo-1511707171634-5f897ff02aa9", 600, 400),
				photo("photo-1511707171634-5f897ff02aa9", 100, 100),
			},
			CategoryID:   strPtr("electronics"),
			SellerID:     strPtr("tech-solutions"),
			Stock:        intPtr(25),
			Rating:       strPtr("4.5"),
			TotalReviews: intPtr(234),
			IsActive:     boolPtr(true),
			CreatedAt:    now,
		},
		{
			ID:           "traditional-thobe",
			Name:         "Traditional Sudanese Thobe",
			Description:  "Authentic Sudanese thobe made from high-quality cotton fabric. Perfect for traditional occasions and daily wear. Available in various colors and sizes.",
			Price:        "15500.00",
			ImageURL:     photo("photo-1596755094514-f87e34085b2c", 400, 300),
			Images:       []string{photo("photo-1596755094514-f87e34085b2c", 600, 400)},
			CategoryID:   strPtr("fashion"),
			SellerID:     strPtr("nile-fashion"),
			Stock:        intPtr(50),
			Rating:       strPtr("5.0"),
			TotalReviews: intPtr(89),
			IsActive:     boolPtr(true),
			CreatedAt:    now,
		},
		{
			ID:            "hp-pavilion-laptop",
			Name:          `HP Pavilion 15.6" Laptop`,
			Description:   "HP Pavilion laptop with Intel Core i5 processor, 8GB RAM, 256GB SSD. Perfect for students and professionals. Comes with Windows 11 and one year warranty.",
			Price:         "125000.00",
			OriginalPrice: strPtr("135000.00"),
			ImageURL:      photo("photo-1496181133206-80ce9b88a853", 400, 300),
			Images:        []string{photo("photo-1496181133206-80ce9b88a853", 600, 400)},
			CategoryID:    strPtr("electronics"),
			SellerID:      strPtr("tech-solutions"),
			Stock:         intPtr(15),
			Rating:        strPtr("4.0"),
			TotalReviews:  intPtr(156),
			IsActive:      boolPtr(true),
			CreatedAt:     now,
		},
		{
			ID:           "clay-pottery-set",
			Name:         "Handcrafted Clay Pottery Set",
			Description:  "Beautiful handcrafted pottery set made by local artisans. Includes traditional designs and patterns. Perfect for home decoration or as gifts.",
			Price:        "8750.00",
			ImageURL:     photo("photo-1578662996442-48f60103fc96", 400, 300),
			Images:       []string{photo("photo-1578662996442-48f60103fc96", 600, 400)},
			CategoryID:   strPtr("local-crafts"),
			SellerID:     strPtr("heritage-crafts"),
			Stock:        intPtr(30),
			Rating:       strPtr("5.0"),
			TotalReviews: intPtr(67),
			IsActive:     boolPtr(true),
			CreatedAt:    now,
		},
	}
}
