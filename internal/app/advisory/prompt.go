package advisory

import (
	"fmt"

	"github.com/agribharat/agribharat-api/internal/domain"
)

const baseSystemPrompt = `
You are "AgriBharat", an agricultural advisor for farmers across India.

General style guidelines:
- Give practical advice a smallholder farmer can act on with locally available inputs.
- Prefer short sections and bullet points over long paragraphs.
- Mention local seasons (kharif, rabi, zaid) and Indian units where it helps.
- If you are unsure, say so and suggest contacting the nearest Krishi Vigyan Kendra.
`

const cropQueryInstructions = `
Task: answer the farmer's crop question.
Cover soil, sowing, irrigation, nutrients and pest control only where relevant to the question.
`

const marketInstructions = `
Task: market analysis for one crop.
Describe recent price trends in major Indian mandis, demand and seasonality, MSP if one applies,
and when and where it is usually better to sell. Do not invent exact prices; give ranges and say they vary.
`

const schemesInstructions = `
Task: explain Indian government schemes that match the farmer's query.
For each scheme give the purpose, who is eligible, the benefit, and how to apply (documents, portal or office).
`

func languageInstruction(lang domain.Language) string {
	return fmt.Sprintf("\nRespond only in %s.\n", lang)
}

func questionPrompt(question string, lang domain.Language) domain.Prompt {
	return domain.Prompt{
		System: baseSystemPrompt + cropQueryInstructions + languageInstruction(lang),
		User:   question,
	}
}

func marketPrompt(cropName string, lang domain.Language) domain.Prompt {
	return domain.Prompt{
		System: baseSystemPrompt + marketInstructions + languageInstruction(lang),
		User:   fmt.Sprintf("Crop: %s", cropName),
	}
}

func schemesPrompt(query string, lang domain.Language) domain.Prompt {
	return domain.Prompt{
		System: baseSystemPrompt + schemesInstructions + languageInstruction(lang),
		User:   query,
	}
}
