package valueobject

import (
	"testing"

	"github.com/matryer/is"
)

func TestParsePriority(t *testing.T) {
	is := is.New(t)

	p, err := ParsePriority(" high ")
	is.NoErr(err)
	is.Equal(p, PriorityHigh)

	p, err = ParsePriority("m")
	is.NoErr(err)
	is.Equal(p, PriorityMedium)

	_, err = ParsePriority("critical")
	is.True(err != nil)
}

func TestPriority_Rank(t *testing.T) {
	is := is.New(t)
	is.True(PriorityHigh.Rank() < PriorityMedium.Rank())
	is.True(PriorityMedium.Rank() < PriorityLow.Rank())
	is.True(PriorityLow.Rank() < Priority("bogus").Rank())
	is.True(!PriorityAll.IsValid())
}

func TestParseCategory(t *testing.T) {
	is := is.New(t)

	c, err := ParseCategory("URGENT")
	is.NoErr(err)
	is.Equal(c, CategoryUrgent)
	is.Equal(c.Key(), "urgent")

	_, err = ParseCategory("All")
	is.True(err != nil)
}

func TestTaskFilter_IsEmpty(t *testing.T) {
	is := is.New(t)

	is.True(TaskFilter{}.IsEmpty())
	is.True(TaskFilter{Category: CategoryAll, Priority: PriorityAll}.IsEmpty())
	is.True(!TaskFilter{SearchQuery: "milk"}.IsEmpty())
	is.True(!TaskFilter{}.WithCompleted(false).IsEmpty())
}
