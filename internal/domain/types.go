package domain

import (
	"strings"
	"time"
)

type SessionID string
type ConsultationID string

type Timestamp = time.Time

// Language is one of the six languages responses can be rendered in.
type Language string

const (
	LanguageEnglish   Language = "English"
	LanguageHindi     Language = "Hindi"
	LanguageTelugu    Language = "Telugu"
	LanguageKannada   Language = "Kannada"
	LanguageMalayalam Language = "Malayalam"
	LanguageTamil     Language = "Tamil"
)

const DefaultLanguage = LanguageEnglish

// Languages lists the supported languages in display order.
var Languages = []Language{
	LanguageEnglish,
	LanguageHindi,
	LanguageTelugu,
	LanguageKannada,
	LanguageMalayalam,
	LanguageTamil,
}

// ParseLanguage matches a language name case-insensitively.
func ParseLanguage(s string) (Language, bool) {
	s = strings.TrimSpace(s)
	for _, l := range Languages {
		if strings.EqualFold(s, string(l)) {
			return l, true
		}
	}
	return "", false
}

func (l Language) Valid() bool {
	for _, known := range Languages {
		if l == known {
			return true
		}
	}
	return false
}

// ConsultationType tags which of the four request kinds produced a record.
type ConsultationType string

const (
	TypeCropQuery         ConsultationType = "crop_query"
	TypeDiseaseAnalysis   ConsultationType = "disease_analysis"
	TypeMarketAnalysis    ConsultationType = "market_analysis"
	TypeGovernmentSchemes ConsultationType = "government_schemes"
)
