package openai

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/partdex/internal/domain"
)

func enhancePrompt(req domain.EnhanceRequest) string {
	var b strings.Builder
	b.WriteString("You are an expert in mechanical engineering and fasteners.\n")
	b.WriteString("Enhance this search query for a fastener/component database:\n\n")
	fmt.Fprintf(&b, "Original Query: %q\n", req.Query)
	if req.Context != "" {
		fmt.Fprintf(&b, "Context: %s\n", req.Context)
	}
	if req.UserRole != "" {
		fmt.Fprintf(&b, "User Role: %s\n", req.UserRole)
	}
	b.WriteString(`
Please provide:
1. An enhanced search query that captures the user's intent
2. 3-5 specific search suggestions
3. Relevant filters (material, type, standard, size range, etc.)

Respond in JSON format:
{
  "enhancedQuery": "improved query",
  "suggestions": ["suggestion1", "suggestion2", "suggestion3"],
  "filters": {
    "material": ["steel", "stainless"],
    "type": ["bolt", "screw"],
    "standard": ["ISO", "DIN"]
  }
}
`)
	return b.String()
}

func recommendPrompt(req domain.RecommendRequest) string {
	var b strings.Builder
	b.WriteString("You are an expert mechanical engineer specializing in fasteners and components.\n")
	b.WriteString("Provide component recommendations based on these requirements:\n\n")
	fmt.Fprintf(&b, "Requirements: %q\n", req.Requirements)
	if req.Application != "" {
		fmt.Fprintf(&b, "Application: %s\n", req.Application)
	}
	if len(req.Constraints) > 0 {
		fmt.Fprintf(&b, "Constraints: %s\n", strings.Join(req.Constraints, ", "))
	}
	if req.Budget != nil && *req.Budget > 0 {
		fmt.Fprintf(&b, "Budget consideration: $%.2f\n", *req.Budget)
	}
	b.WriteString(`
Please recommend 3-5 specific fastener/component options with:
1. Component type
2. Recommended material
3. Applicable standard (ISO, DIN, ANSI, etc.)
4. Brief reasoning
5. Confidence level (0-1)

Also suggest 2-3 alternative options to consider.

Respond in JSON format:
{
  "recommendations": [
    {
      "type": "hex bolt",
      "material": "stainless steel 316",
      "standard": "ISO 4017",
      "reasoning": "Corrosion resistance for marine application",
      "confidence": 0.9
    }
  ],
  "alternativeOptions": ["option1", "option2"]
}
`)
	return b.String()
}
