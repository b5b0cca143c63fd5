package aiflows

import (
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// ListingDescriptionInput describes the property to write copy for.
type ListingDescriptionInput struct {
	Title     string `json:"title" binding:"required,max=200"`
	Address   string `json:"address" binding:"required,max=300"`
	City      string `json:"city" binding:"required,max=120"`
	Price     int64  `json:"price" binding:"required,gt=0"`
	Bedrooms  int    `json:"bedrooms" binding:"gte=0,lte=50"`
	Bathrooms int    `json:"bathrooms" binding:"gte=0,lte=50"`
	AreaSqm   int    `json:"areaSqm" binding:"gte=0"`
	Notes     string `json:"notes" binding:"max=2000"`
}

// ListingDescription is generated marketing copy for a listing.
type ListingDescription struct {
	Description string   `json:"description"`
	Highlights  []string `json:"highlights"`
}

func listingDescriptionPrompt(in ListingDescriptionInput) string {
	var b strings.Builder
	b.WriteString("You are a real estate copywriter. Write an enticing but factual listing description.\n\n")
	fmt.Fprintf(&b, "Title: %s\n", in.Title)
	fmt.Fprintf(&b, "Address: %s, %s\n", in.Address, in.City)
	fmt.Fprintf(&b, "Price: %d\n", in.Price)
	fmt.Fprintf(&b, "Bedrooms: %d, Bathrooms: %d, Area: %d sqm\n", in.Bedrooms, in.Bathrooms, in.AreaSqm)
	if strings.TrimSpace(in.Notes) != "" {
		fmt.Fprintf(&b, "Agent notes: %s\n", in.Notes)
	}
	b.WriteString("\nKeep the description under 180 words. Provide 3 to 5 short highlights.")
	return b.String()
}

func listingDescriptionSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"description": {Type: genai.TypeString},
			"highlights": {
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeString},
			},
		},
		Required: []string{"description", "highlights"},
	}
}

// CMAInput describes the property to analyze.
type CMAInput struct {
	Address  string `json:"address" binding:"required,max=300"`
	City     string `json:"city" binding:"required,max=120"`
	Price    int64  `json:"price" binding:"required,gt=0"`
	Bedrooms int    `json:"bedrooms" binding:"gte=0,lte=50"`
	AreaSqm  int    `json:"areaSqm" binding:"gte=0"`
}

// CMAReport is a generated comparative market analysis.
type CMAReport struct {
	Summary       string   `json:"summary"`
	EstimateLow   int64    `json:"estimateLow"`
	EstimateHigh  int64    `json:"estimateHigh"`
	Opportunities []string `json:"opportunities"`
	Risks         []string `json:"risks"`
}

func cmaPrompt(in CMAInput) string {
	var b strings.Builder
	b.WriteString("You are a real estate market analyst. Produce a concise comparative market analysis.\n\n")
	fmt.Fprintf(&b, "Subject property: %s, %s\n", in.Address, in.City)
	fmt.Fprintf(&b, "Asking price: %d\n", in.Price)
	fmt.Fprintf(&b, "Bedrooms: %d, Area: %d sqm\n", in.Bedrooms, in.AreaSqm)
	b.WriteString("\nEstimate a realistic value range around the asking price, and list pricing opportunities and risks.")
	return b.String()
}

func cmaSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"summary":      {Type: genai.TypeString},
			"estimateLow":  {Type: genai.TypeInteger},
			"estimateHigh": {Type: genai.TypeInteger},
			"opportunities": {
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeString},
			},
			"risks": {
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeString},
			},
		},
		Required: []string{"summary", "estimateLow", "estimateHigh"},
	}
}

// ChatInput is one visitor message to the public-site assistant.
type ChatInput struct {
	Message string `json:"message" binding:"required,max=2000"`
	// History holds prior turns, oldest first, as "visitor:" / "assistant:"
	// prefixed lines.
	History []string `json:"history" binding:"max=40"`
}

// chatResult is the model's structured reply. Contact fields are filled only
// when the visitor volunteered them.
type chatResult struct {
	Reply        string `json:"reply"`
	CaptureReady bool   `json:"captureReady"`
	VisitorName  string `json:"visitorName"`
	VisitorEmail string `json:"visitorEmail"`
	VisitorPhone string `json:"visitorPhone"`
	Interest     string `json:"interest"`
}

func chatPrompt(in ChatInput) string {
	var b strings.Builder
	b.WriteString("You are a friendly assistant on a real estate agency's website. ")
	b.WriteString("Answer questions about buying, selling, and viewing properties. ")
	b.WriteString("If the visitor shares their name and email, set captureReady to true and copy their contact details into the response fields verbatim. ")
	b.WriteString("Never invent contact details.\n\n")
	if len(in.History) > 0 {
		b.WriteString("Conversation so far:\n")
		for _, line := range in.History {
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "visitor: %s\n", in.Message)
	return b.String()
}

func chatSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"reply":        {Type: genai.TypeString},
			"captureReady": {Type: genai.TypeBoolean},
			"visitorName":  {Type: genai.TypeString},
			"visitorEmail": {Type: genai.TypeString},
			"visitorPhone": {Type: genai.TypeString},
			"interest":     {Type: genai.TypeString},
		},
		Required: []string{"reply", "captureReady"},
	}
}
