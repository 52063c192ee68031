package normalizer

import (
	"testing"

	"puma/crawler/internal/domain"

	"github.com/stretchr/testify/require"
)

func TestGender(t *testing.T) {
	testCases := []struct {
		name     string
		title    string
		expected string
	}{
		{"Unisex before men", "男女同款", domain.GenderUnisexAdults},
		{"Big boy before men", "男大童训练鞋", domain.GenderBigBoy},
		{"Women before men when both appear apart", "男童女款卫衣", domain.GenderWomen},
		{"Women", "女子跑步鞋", domain.GenderWomen},
		{"Men", "男子休闲鞋", domain.GenderMen},
		{"Kid", "儿童运动鞋", domain.GenderKid},
		{"No keyword", "PUMA 背包", domain.GenderUnisexAdults},
		{"Empty", "", domain.GenderUnisexAdults},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, Gender(tc.title))
		})
	}
}

func TestSplitCarePartition(t *testing.T) {
	inputs := [][]string{
		{},
		{"轻盈缓震", "鞋面：织物", "外底：橡胶", "65%棉 35%聚酯纤维", "人造革"},
		{"只有描述"},
		{"氨纶", "皮革"},
		{"重复", "重复", "棉", "棉"},
	}

	for _, lines := range inputs {
		description, care := SplitCare(lines)
		require.Len(t, append(append([]string{}, description...), care...), len(lines))

		inCare := map[string]bool{}
		for _, line := range care {
			require.True(t, isCare(line))
			inCare[line] = true
		}
		for _, line := range description {
			require.False(t, isCare(line))
			require.False(t, inCare[line])
		}
		for _, line := range lines {
			require.True(t, contains(description, line) || contains(care, line))
		}
	}
}

func TestSplitCareEmpty(t *testing.T) {
	description, care := SplitCare(TextLines(""))
	require.NotNil(t, description)
	require.NotNil(t, care)
	require.Empty(t, description)
	require.Empty(t, care)
}

func contains(lines []string, line string) bool {
	for _, l := range lines {
		if l == line {
			return true
		}
	}
	return false
}
