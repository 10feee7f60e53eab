package domain

// PostCategory is a closed set of article archetypes; each category owns its
// prompt template, tag seeds and viral phrases via CategoryProfile.
type PostCategory string

const (
	CategoryLifehack    PostCategory = "lifehack"
	CategoryBudget      PostCategory = "budget"
	CategoryComparison  PostCategory = "comparison"
	CategoryWeekend     PostCategory = "weekend"
	CategoryMistake     PostCategory = "mistake"
	CategoryDestination PostCategory = "destination"
)

// CategoryProfile bundles the per-category behavior knobs so components read
// one table instead of branching on the category in several places.
type CategoryProfile struct {
	SystemPrompt string
	UserPrompt   string
	TagSeeds     []string
	ViralPhrases []string
}

var categoryProfiles = map[PostCategory]CategoryProfile{
	CategoryLifehack: {
		SystemPrompt: "You are a travel writer for a popular blog. Write practical, specific articles full of concrete numbers and steps. Respond only with JSON.",
		UserPrompt:   "Write a travel lifehack article about %s. Include at least five concrete tips with numbers.",
		TagSeeds:     []string{"travelhacks", "traveltips"},
		ViralPhrases: []string{"nobody tells you", "secret", "hack"},
	},
	CategoryBudget: {
		SystemPrompt: "You are a budget travel expert. Every claim needs a price or a percentage. Respond only with JSON.",
		UserPrompt:   "Write a budget travel article about %s. Include real price ranges and where to save.",
		TagSeeds:     []string{"budgettravel", "cheapflights"},
		ViralPhrases: []string{"for free", "under", "save"},
	},
	CategoryComparison: {
		SystemPrompt: "You are a travel analyst comparing destinations head to head. Be opinionated and specific. Respond only with JSON.",
		UserPrompt:   "Write a comparison article about %s. End with a clear verdict.",
		TagSeeds:     []string{"travelcompare", "versus"},
		ViralPhrases: []string{"vs", "which is better", "verdict"},
	},
	CategoryWeekend: {
		SystemPrompt: "You are a weekend-getaway columnist. Itineraries, hours, and walking distances matter. Respond only with JSON.",
		UserPrompt:   "Write a weekend trip article about %s with a two-day itinerary.",
		TagSeeds:     []string{"weekendtrip", "citybreak"},
		ViralPhrases: []string{"48 hours", "weekend", "itinerary"},
	},
	CategoryMistake: {
		SystemPrompt: "You are a seasoned traveler warning readers about common mistakes. Be direct. Respond only with JSON.",
		UserPrompt:   "Write an article about the biggest mistakes travelers make with %s and how to avoid them.",
		TagSeeds:     []string{"travelmistakes", "traveltips"},
		ViralPhrases: []string{"never", "stop doing", "mistake"},
	},
	CategoryDestination: {
		SystemPrompt: "You are a destination guide author. Paint the place, then get practical. Respond only with JSON.",
		UserPrompt:   "Write a destination guide about %s: when to go, what it costs, what to skip.",
		TagSeeds:     []string{"wanderlust", "destinations"},
		ViralPhrases: []string{"hidden gem", "underrated", "bucket list"},
	},
}

// Profile returns the behavior table for a category, falling back to the
// destination profile for unknown values.
func (c PostCategory) Profile() CategoryProfile {
	if p, ok := categoryProfiles[c]; ok {
		return p
	}
	return categoryProfiles[CategoryDestination]
}

// Valid reports whether the category is one of the known archetypes.
func (c PostCategory) Valid() bool {
	_, ok := categoryProfiles[c]
	return ok
}

// Categories lists all known categories in a stable order.
func Categories() []PostCategory {
	return []PostCategory{
		CategoryLifehack,
		CategoryBudget,
		CategoryComparison,
		CategoryWeekend,
		CategoryMistake,
		CategoryDestination,
	}
}
