package normalizer

import (
	"strings"

	"puma/crawler/internal/domain"
)

// GenderKeyword maps a title substring to a gender label
type GenderKeyword struct {
	Keyword string
	Label   string
}

// GenderKeywords is checked in order; the first keyword found in the title wins.
// Narrower keywords that contain broader ones must come first.
var GenderKeywords = []GenderKeyword{
	{Keyword: "男大童", Label: domain.GenderBigBoy},
	{Keyword: "男女", Label: domain.GenderUnisexAdults},
	{Keyword: "女", Label: domain.GenderWomen},
	{Keyword: "男", Label: domain.GenderMen},
	{Keyword: "儿童", Label: domain.GenderKid},
}

// DefaultGender applies when no keyword matches
const DefaultGender = domain.GenderUnisexAdults

// CareKeywords mark a description line as material or care information
var CareKeywords = []string{"棉", "聚酯纤维", "氨纶", "纤维", "皮革", "织物", "人造革"}

// Gender maps a product title to a gender label
func Gender(name string) string {
	for _, g := range GenderKeywords {
		if strings.Contains(name, g.Keyword) {
			return g.Label
		}
	}
	return DefaultGender
}

func isCare(line string) bool {
	for _, term := range CareKeywords {
		if strings.Contains(line, term) {
			return true
		}
	}
	return false
}

// SplitCare partitions description lines: lines mentioning a care keyword go
// to care, everything else to description
func SplitCare(lines []string) (description, care []string) {
	description, care = []string{}, []string{}
	for _, line := range lines {
		if isCare(line) {
			care = append(care, line)
		} else {
			description = append(description, line)
		}
	}
	return description, care
}
