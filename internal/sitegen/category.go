package sitegen

import "strings"

// Category is the closed set of site styles the assembler knows how to
// build. Anything unrecognized resolves to CategoryGeneric.
type Category string

const (
	CategoryHotel      Category = "hotel"
	CategoryRestaurant Category = "restaurant"
	CategoryHealthcare Category = "healthcare"
	CategoryLegal      Category = "legal"
	CategoryBeauty     Category = "beauty"
	CategoryFitness    Category = "fitness"
	CategoryAutomotive Category = "automotive"
	CategoryRealEstate Category = "real-estate"
	CategoryTech       Category = "tech"
	CategoryGeneric    Category = "generic"
)

var categoryKeywords = []struct {
	category Category
	keywords []string
}{
	{CategoryHotel, []string{"hotel", "motel", "inn", "resort", "lodging", "hostel"}},
	{CategoryRestaurant, []string{"restaurant", "cafe", "coffee", "bakery", "bar", "food", "pizzeria", "diner", "bistro"}},
	{CategoryHealthcare, []string{"health", "clinic", "dental", "dentist", "doctor", "medical", "hospital", "pharmacy", "therapy"}},
	{CategoryLegal, []string{"law", "legal", "attorney", "lawyer", "notary"}},
	{CategoryBeauty, []string{"beauty", "salon", "spa", "barber", "hair", "nail", "cosmetic"}},
	{CategoryFitness, []string{"gym", "fitness", "yoga", "pilates", "crossfit", "training"}},
	{CategoryAutomotive, []string{"auto", "car", "mechanic", "tire", "garage", "dealership"}},
	{CategoryRealEstate, []string{"real estate", "realtor", "realty", "property", "broker"}},
	{CategoryTech, []string{"tech", "software", "it ", "computer", "web", "digital", "startup"}},
}

// ParseCategory maps a free-form business category string onto the closed
// set. Matching is case-insensitive substring lookup; the first table entry
// that matches wins.
func ParseCategory(raw string) Category {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if normalized == "" {
		return CategoryGeneric
	}
	for _, entry := range categoryKeywords {
		for _, keyword := range entry.keywords {
			if strings.Contains(normalized, keyword) {
				return entry.category
			}
		}
	}
	return CategoryGeneric
}

// Palette is the two-color brand scheme derived from the category.
type Palette struct {
	Primary string
	Accent  string
}

// CategoryProfile holds the deterministic presentation defaults substituted
// when the business record is sparse.
type CategoryProfile struct {
	Palette     Palette
	Tagline     string
	Description string
	Services    []string
	CTALabel    string
}

var genericProfile = CategoryProfile{
	Palette:     Palette{Primary: "#6366f1", Accent: "#f59e0b"},
	Tagline:     "Creative. Modern. Local.",
	Description: "A trusted local business serving the community with quality and care.",
	Services:    []string{"Our Services", "Consultations", "Custom Solutions", "Customer Support"},
	CTALabel:    "Get in Touch",
}

var CategoryProfiles = map[Category]CategoryProfile{
	CategoryHotel: {
		Palette:     Palette{Primary: "#1e3a5f", Accent: "#c9a227"},
		Tagline:     "Your home away from home",
		Description: "Comfortable rooms, warm hospitality and an unforgettable stay in the heart of the city.",
		Services:    []string{"Deluxe Rooms", "Free Breakfast", "Airport Shuttle", "24/7 Concierge"},
		CTALabel:    "Book Your Stay",
	},
	CategoryRestaurant: {
		Palette:     Palette{Primary: "#7c2d12", Accent: "#f59e0b"},
		Tagline:     "Fresh ingredients, honest cooking",
		Description: "Seasonal dishes made from scratch every day, served in a warm and welcoming space.",
		Services:    []string{"Lunch & Dinner", "Private Events", "Takeaway", "Catering"},
		CTALabel:    "Reserve a Table",
	},
	CategoryHealthcare: {
		Palette:     Palette{Primary: "#0e7490", Accent: "#22c55e"},
		Tagline:     "Care you can count on",
		Description: "Modern, patient-first care delivered by an experienced and compassionate team.",
		Services:    []string{"General Consultations", "Preventive Care", "Diagnostics", "Telehealth"},
		CTALabel:    "Book an Appointment",
	},
	CategoryLegal: {
		Palette:     Palette{Primary: "#1f2937", Accent: "#b45309"},
		Tagline:     "Counsel you can trust",
		Description: "Clear, pragmatic legal advice for individuals and businesses alike.",
		Services:    []string{"Business Law", "Family Law", "Contracts", "Litigation"},
		CTALabel:    "Request a Consultation",
	},
	CategoryBeauty: {
		Palette:     Palette{Primary: "#9d174d", Accent: "#f9a8d4"},
		Tagline:     "Look good, feel better",
		Description: "Treatments and styling tailored to you, in a relaxed and friendly studio.",
		Services:    []string{"Hair Styling", "Skin Care", "Manicure & Pedicure", "Bridal Packages"},
		CTALabel:    "Book a Session",
	},
	CategoryFitness: {
		Palette:     Palette{Primary: "#166534", Accent: "#facc15"},
		Tagline:     "Stronger every day",
		Description: "Coaching, classes and equipment to help you reach your goals at your own pace.",
		Services:    []string{"Personal Training", "Group Classes", "Nutrition Plans", "Open Gym"},
		CTALabel:    "Start Training",
	},
	CategoryAutomotive: {
		Palette:     Palette{Primary: "#111827", Accent: "#ef4444"},
		Tagline:     "Keeping you on the road",
		Description: "Honest diagnostics and quality repairs, done right the first time.",
		Services:    []string{"Maintenance", "Diagnostics", "Tires & Brakes", "Inspections"},
		CTALabel:    "Schedule Service",
	},
	CategoryRealEstate: {
		Palette:     Palette{Primary: "#0f766e", Accent: "#eab308"},
		Tagline:     "Find your place",
		Description: "Local market expertise for buying, selling and renting with confidence.",
		Services:    []string{"Buying", "Selling", "Rentals", "Valuations"},
		CTALabel:    "Browse Listings",
	},
	CategoryTech: {
		Palette:     Palette{Primary: "#312e81", Accent: "#06b6d4"},
		Tagline:     "Technology that works for you",
		Description: "Software, infrastructure and support that keep your business moving.",
		Services:    []string{"Web Development", "Cloud & Hosting", "IT Support", "Consulting"},
		CTALabel:    "Start a Project",
	},
	CategoryGeneric: genericProfile,
}

// ProfileFor returns the presentation defaults for a category, falling back
// to the generic profile for anything outside the table.
func ProfileFor(category Category) CategoryProfile {
	if profile, ok := CategoryProfiles[category]; ok {
		return profile
	}
	return genericProfile
}

// PaletteFor is the palette-only lookup used by the content and campaign
// builders.
func PaletteFor(category Category) Palette {
	return ProfileFor(category).Palette
}
